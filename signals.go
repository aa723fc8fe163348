package stagefx

import (
	"math"
	"runtime"

	"github.com/hajimehoshi/ebiten/v2"
)

// PlatformSignals is the capability both effects use to observe their host:
// size changes of the observed container, pointer activity over it, and the
// current device profile. Callbacks run on the goroutine that delivers them
// (the host's update loop). Each On* call returns a function that removes
// the subscription; calling it more than once is harmless.
type PlatformSignals interface {
	OnResize(fn func(width, height int)) (cancel func())
	OnPointer(fn func(PointerEvent)) (cancel func())
	QueryDevice() DeviceInfo
}

// --- Subscription registry ---

type resizeHandler struct {
	id uint32
	fn func(width, height int)
}

type pointerHandler struct {
	id uint32
	fn func(PointerEvent)
}

// signalRegistry stores subscribers for one signal source.
type signalRegistry struct {
	resize  []resizeHandler
	pointer []pointerHandler
	nextID  uint32
}

func (r *signalRegistry) addResize(fn func(int, int)) func() {
	r.nextID++
	id := r.nextID
	r.resize = append(r.resize, resizeHandler{id: id, fn: fn})
	return func() { r.resize = removeResizeHandler(r.resize, id) }
}

func (r *signalRegistry) addPointer(fn func(PointerEvent)) func() {
	r.nextID++
	id := r.nextID
	r.pointer = append(r.pointer, pointerHandler{id: id, fn: fn})
	return func() { r.pointer = removePointerHandler(r.pointer, id) }
}

// emitResize calls every resize subscriber. Subscribers removed by an
// earlier callback in the same emission are skipped.
func (r *signalRegistry) emitResize(w, h int) {
	handlers := append([]resizeHandler(nil), r.resize...)
	for _, h0 := range handlers {
		if hasResizeHandler(r.resize, h0.id) {
			h0.fn(w, h)
		}
	}
}

func (r *signalRegistry) emitPointer(ev PointerEvent) {
	handlers := append([]pointerHandler(nil), r.pointer...)
	for _, h := range handlers {
		if hasPointerHandler(r.pointer, h.id) {
			h.fn(ev)
		}
	}
}

func (r *signalRegistry) subscribers() int {
	return len(r.resize) + len(r.pointer)
}

func removeResizeHandler(s []resizeHandler, id uint32) []resizeHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = resizeHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removePointerHandler(s []pointerHandler, id uint32) []pointerHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = pointerHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func hasResizeHandler(s []resizeHandler, id uint32) bool {
	for i := range s {
		if s[i].id == id {
			return true
		}
	}
	return false
}

func hasPointerHandler(s []pointerHandler, id uint32) bool {
	for i := range s {
		if s[i].id == id {
			return true
		}
	}
	return false
}

// --- Ebitengine signals ---

// RegionFunc maps the host's logical screen size to the observed container.
type RegionFunc func(screenW, screenH int) Rect

// FullScreen observes the whole logical screen.
func FullScreen(screenW, screenH int) Rect {
	return Rect{Width: float64(screenW), Height: float64(screenH)}
}

// EbitenSignals polls Ebitengine input and window state once per Poll and
// reports it for one container region. Call SetScreenSize from the game's
// Layout and Poll from its Update.
type EbitenSignals struct {
	reg    signalRegistry
	region RegionFunc

	screenW, screenH int
	bounds           Rect
	inside           bool
	lastX, lastY     float64
	coarse           bool
	touchIDs         []ebiten.TouchID
}

// NewEbitenSignals creates signals for the container produced by region.
// A nil region observes the full screen.
func NewEbitenSignals(region RegionFunc) *EbitenSignals {
	if region == nil {
		region = FullScreen
	}
	return &EbitenSignals{
		region: region,
		coarse: touchFirst(runtime.GOOS),
		lastX:  math.NaN(),
		lastY:  math.NaN(),
	}
}

// touchFirst reports whether goos is a platform whose primary pointer is a
// finger. Elsewhere the pointer turns coarse on the first touch.
func touchFirst(goos string) bool {
	return goos == "android" || goos == "ios"
}

// OnResize implements PlatformSignals.
func (s *EbitenSignals) OnResize(fn func(width, height int)) func() {
	return s.reg.addResize(fn)
}

// OnPointer implements PlatformSignals.
func (s *EbitenSignals) OnPointer(fn func(PointerEvent)) func() {
	return s.reg.addPointer(fn)
}

// QueryDevice implements PlatformSignals.
func (s *EbitenSignals) QueryDevice() DeviceInfo {
	dpr := 1.0
	if m := ebiten.Monitor(); m != nil {
		dpr = m.DeviceScaleFactor()
	}
	return DeviceInfo{
		Width:      s.screenW,
		Height:     s.screenH,
		Coarse:     s.coarse,
		PixelRatio: dpr,
	}
}

// Bounds returns the container rectangle in screen coordinates.
func (s *EbitenSignals) Bounds() Rect {
	return s.bounds
}

// SetScreenSize records the logical screen size. A change that alters the
// container's integer size notifies resize subscribers.
func (s *EbitenSignals) SetScreenSize(w, h int) {
	if w == s.screenW && h == s.screenH {
		return
	}
	s.screenW, s.screenH = w, h
	prev := s.bounds
	s.bounds = s.region(w, h)
	if int(prev.Width) != int(s.bounds.Width) || int(prev.Height) != int(s.bounds.Height) {
		s.reg.emitResize(int(s.bounds.Width), int(s.bounds.Height))
	}
}

// Poll reads the current pointer and emits enter, move and leave events in
// container-local coordinates. Touch input marks the device as coarse.
func (s *EbitenSignals) Poll() {
	s.touchIDs = ebiten.AppendTouchIDs(s.touchIDs[:0])
	if len(s.touchIDs) > 0 {
		s.coarse = true
		tx, ty := ebiten.TouchPosition(s.touchIDs[0])
		s.track(float64(tx), float64(ty), true)
		return
	}
	if s.coarse {
		// A lifted finger leaves the container.
		s.track(s.lastX, s.lastY, false)
		return
	}
	mx, my := ebiten.CursorPosition()
	s.track(float64(mx), float64(my), true)
}

// track runs the enter/move/leave state machine for one pointer sample.
func (s *EbitenSignals) track(x, y float64, present bool) {
	in := present && s.bounds.Contains(x, y)
	lx, ly := x-s.bounds.X, y-s.bounds.Y
	switch {
	case in && !s.inside:
		s.inside = true
		s.reg.emitPointer(PointerEvent{Kind: PointerEnter, X: lx, Y: ly})
		s.reg.emitPointer(PointerEvent{Kind: PointerMove, X: lx, Y: ly})
	case in && (x != s.lastX || y != s.lastY):
		s.reg.emitPointer(PointerEvent{Kind: PointerMove, X: lx, Y: ly})
	case !in && s.inside:
		s.inside = false
		s.reg.emitPointer(PointerEvent{Kind: PointerLeave, X: lx, Y: ly})
	}
	s.lastX, s.lastY = x, y
}
