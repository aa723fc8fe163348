package stagefx

import (
	"math"
	"time"
)

const (
	// DefaultMaxPixelRatio caps the device pixel ratio used for glyph buffers.
	DefaultMaxPixelRatio = 2.0

	phaseStep      = 0.016
	driftPhaseStep = 0.02
	driftAmplitude = 0.035 // of the CSS width
	pointerSmooth  = 0.2
)

// LiquidMode is the kind of frame the last Tick composed.
type LiquidMode uint8

const (
	// ModeNone means no frame has been composed (unmounted, closed or degraded).
	ModeNone LiquidMode = iota
	// ModeIdle is the pristine glyph buffer.
	ModeIdle
	// ModeDrift is the glyph buffer shifted by the touch-device drift.
	ModeDrift
	// ModeShatter is a displaced frame around the pointer.
	ModeShatter
)

// String returns the mode name.
func (m LiquidMode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDrift:
		return "drift"
	case ModeShatter:
		return "shatter"
	default:
		return "none"
	}
}

// LiquidOption configures a LiquidText.
type LiquidOption func(*LiquidText)

// WithRasterizer replaces the default gg text rasterizer.
func WithRasterizer(r GlyphRasterizer) LiquidOption {
	return func(l *LiquidText) { l.rasterizer = r }
}

// WithSignals subscribes the effect to a host's resize and pointer signals
// on Mount.
func WithSignals(s PlatformSignals) LiquidOption {
	return func(l *LiquidText) { l.signals = s }
}

// WithStyle replaces DefaultGlyphStyle.
func WithStyle(st GlyphStyle) LiquidOption {
	return func(l *LiquidText) { l.style = st }
}

// WithPixelRatio pins the device pixel ratio instead of querying the host.
// It is still capped by the configured maximum.
func WithPixelRatio(dpr float64) LiquidOption {
	return func(l *LiquidText) { l.fixedDPR = dpr }
}

// WithLiquidConfig applies a LiquidConfig. The config text replaces the
// constructor's text when it is non-empty.
func WithLiquidConfig(cfg LiquidConfig) LiquidOption {
	return func(l *LiquidText) {
		if cfg.Text != "" {
			l.text = cfg.Text
		}
		if cfg.Style.HeightFill != 0 {
			l.style = cfg.Style
		}
		if cfg.MaxPixelRatio > 0 {
			l.maxDPR = cfg.MaxPixelRatio
		}
	}
}

// LiquidText renders a styled word into a pixel buffer and, while a fine
// pointer hovers it, shatters the glyph pixels away from the pointer. On
// coarse-pointer devices it drifts the word sideways instead.
//
// All methods must be called from the host's update goroutine.
type LiquidText struct {
	text       string
	style      GlyphStyle
	maxDPR     float64
	fixedDPR   float64
	rasterizer GlyphRasterizer
	ownRaster  *TextRasterizer
	signals    PlatformSignals
	cancels    []func()
	debug      bool

	cssW, cssH int
	dpr        float64
	coarse     bool

	glyph      *GlyphPixelBuffer
	frame      *PixelBuffer
	field      FieldParams
	generation uint64
	stale      bool
	degraded   bool
	mounted    bool
	closed     bool

	hover            bool
	mouseX, mouseY   float64 // device pixels
	smoothX, smoothY float64
	phase            float64
	driftPhase       float64

	mode  LiquidMode
	stats DisplaceStats
}

// NewLiquidText creates an unmounted effect for text.
func NewLiquidText(text string, opts ...LiquidOption) *LiquidText {
	l := &LiquidText{
		text:   text,
		style:  DefaultGlyphStyle(),
		maxDPR: DefaultMaxPixelRatio,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Mount sizes the effect to a width×height CSS pixel container, builds the
// glyph buffer and subscribes to the configured signals.
func (l *LiquidText) Mount(width, height int) {
	if l.closed || l.mounted {
		return
	}
	l.mounted = true
	if l.rasterizer == nil {
		r, err := NewTextRasterizer(nil)
		if err != nil {
			Logger().Warn("liquid text: no rasterizer", "error", err)
		} else {
			l.rasterizer, l.ownRaster = r, r
		}
	}
	if l.signals != nil {
		l.cancels = append(l.cancels,
			l.signals.OnResize(l.Resize),
			l.signals.OnPointer(l.handlePointer),
		)
	}
	l.Resize(width, height)
}

// Resize rebuilds the glyph buffer for a width×height CSS pixel container
// and recentres the pointer. The old buffer generation is invalid as soon
// as Resize returns.
func (l *LiquidText) Resize(width, height int) {
	if l.closed {
		return
	}
	l.cssW, l.cssH = max(width, 1), max(height, 1)
	info := DeviceInfo{PixelRatio: l.fixedDPR}
	if l.signals != nil {
		dev := l.signals.QueryDevice()
		l.coarse = dev.Coarse
		if l.fixedDPR <= 0 {
			info.PixelRatio = dev.PixelRatio
		}
	}
	l.dpr = info.effectivePixelRatio(l.maxDPR)
	l.rebuild()
}

// SetText replaces the rendered text. The buffer is rebuilt before the next
// Tick composes a frame.
func (l *LiquidText) SetText(text string) {
	if l.closed || text == l.text {
		return
	}
	l.text = text
	l.stale = true
}

// Text returns the current text.
func (l *LiquidText) Text() string { return l.text }

// rebuild rasterizes the current text at the current size. On failure the
// effect degrades and composes nothing until a later rebuild succeeds.
func (l *LiquidText) rebuild() {
	l.stale = false
	if !l.mounted {
		return
	}
	w := int(math.Floor(float64(l.cssW) * l.dpr))
	h := int(math.Floor(float64(l.cssH) * l.dpr))
	w, h = max(w, 1), max(h, 1)

	l.generation++
	g, err := BuildGlyphBuffer(l.rasterizer, GlyphRequest{
		Text:       l.text,
		Width:      w,
		Height:     h,
		PixelRatio: l.dpr,
		Coarse:     l.coarse,
		Style:      l.style,
	}, l.generation)
	if err != nil {
		Logger().Warn("liquid text: rendering disabled", "text", l.text, "error", err)
		l.glyph, l.frame = nil, nil
		l.degraded = true
		l.mode = ModeNone
		return
	}
	l.degraded = false
	l.glyph = g
	l.frame = g.Original.Clone()
	l.field = NewFieldParams(w, h)
	l.mouseX, l.mouseY = float64(w)/2, float64(h)/2
	l.smoothX, l.smoothY = l.mouseX, l.mouseY
	l.mode = ModeIdle
	Logger().Debug("liquid text: glyph buffer built",
		"text", l.text, "width", w, "height", h, "dpr", l.dpr,
		"opaque", len(g.Opaque), "generation", g.Generation)
}

func (l *LiquidText) handlePointer(ev PointerEvent) {
	l.syncCoarse()
	switch ev.Kind {
	case PointerEnter:
		l.PointerEnter()
		l.PointerMove(ev.X, ev.Y)
	case PointerMove:
		l.PointerMove(ev.X, ev.Y)
	case PointerLeave:
		l.PointerLeave()
	}
}

// syncCoarse follows the host's pointer kind, which may only become known
// after mount (a first touch). Turning coarse ends any hover.
func (l *LiquidText) syncCoarse() {
	if l.closed || l.signals == nil {
		return
	}
	coarse := l.signals.QueryDevice().Coarse
	if coarse == l.coarse {
		return
	}
	l.coarse = coarse
	if coarse {
		l.hover = false
	}
	l.stale = true
}

// PointerEnter starts hover. Coarse-pointer devices ignore hover.
func (l *LiquidText) PointerEnter() {
	if l.closed || l.coarse {
		return
	}
	l.hover = true
}

// PointerMove records the pointer at container-local CSS coordinates.
func (l *LiquidText) PointerMove(x, y float64) {
	if l.closed || l.coarse {
		return
	}
	l.mouseX, l.mouseY = x*l.dpr, y*l.dpr
}

// PointerLeave ends hover; the next Tick restores the pristine buffer.
func (l *LiquidText) PointerLeave() {
	if l.closed {
		return
	}
	l.hover = false
}

// Tick composes one frame.
func (l *LiquidText) Tick() {
	if l.closed || !l.mounted {
		return
	}
	l.syncCoarse()
	if l.stale {
		l.rebuild()
	}
	if l.degraded || l.glyph == nil {
		return
	}
	var start time.Time
	if l.debug {
		start = time.Now()
	}

	l.phase += phaseStep
	l.stats = DisplaceStats{}
	switch {
	case l.coarse:
		l.driftPhase += driftPhaseStep
		shift := math.Sin(l.driftPhase) * float64(l.cssW) * driftAmplitude * l.dpr
		l.frame.CopyShifted(l.glyph.Original, int(math.Round(shift)))
		l.mode = ModeDrift
	case l.hover:
		l.smoothX += (l.mouseX - l.smoothX) * pointerSmooth
		l.smoothY += (l.mouseY - l.smoothY) * pointerSmooth
		stats, err := Displace(l.frame, l.glyph, l.smoothX, l.smoothY, l.phase, l.field)
		if err != nil {
			// The frame was sized for another generation; start over from this one.
			l.frame = l.glyph.Original.Clone()
			Logger().Warn("liquid text: stale frame discarded", "generation", l.glyph.Generation, "error", err)
			l.mode = ModeIdle
			break
		}
		l.stats = stats
		l.mode = ModeShatter
	default:
		l.frame.CopyFrom(l.glyph.Original)
		l.mode = ModeIdle
	}

	if l.debug {
		logFrameStats("liquid", frameStats{
			mode:     l.mode.String(),
			opaque:   len(l.glyph.Opaque),
			stats:    l.stats,
			duration: time.Since(start),
		})
	}
}

// Frame returns the last composed frame, or nil when nothing can be drawn.
// The buffer is reused by the next Tick.
func (l *LiquidText) Frame() *PixelBuffer {
	if l.closed || l.degraded {
		return nil
	}
	return l.frame
}

// Glyph returns the current glyph buffer.
func (l *LiquidText) Glyph() *GlyphPixelBuffer { return l.glyph }

// Mode returns the kind of frame the last Tick composed.
func (l *LiquidText) Mode() LiquidMode { return l.mode }

// Stats returns the displacement counters of the last Tick.
func (l *LiquidText) Stats() DisplaceStats { return l.stats }

// Degraded reports whether rasterization failed and nothing is drawn.
func (l *LiquidText) Degraded() bool { return l.degraded }

// Hovering reports whether a fine pointer is over the effect.
func (l *LiquidText) Hovering() bool { return l.hover }

// PixelRatio returns the effective device pixel ratio.
func (l *LiquidText) PixelRatio() float64 { return l.dpr }

// SmoothedPointer returns the smoothed pointer in device pixels.
func (l *LiquidText) SmoothedPointer() (x, y float64) { return l.smoothX, l.smoothY }

// SetDebug enables per-frame stats logging at Debug level.
func (l *LiquidText) SetDebug(on bool) { l.debug = on }

// Close unsubscribes from the host and stops composing frames. It is
// idempotent.
func (l *LiquidText) Close() {
	if l.closed {
		return
	}
	l.closed = true
	for _, cancel := range l.cancels {
		cancel()
	}
	l.cancels = nil
	l.hover = false
	l.mode = ModeNone
	if l.ownRaster != nil {
		_ = l.ownRaster.Close()
	}
}
