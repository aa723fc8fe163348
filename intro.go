package stagefx

import (
	"image"
	"time"

	"github.com/tanema/gween/ease"
)

// LoaderPhase is the intro's act.
type LoaderPhase uint8

const (
	PhaseRevealing LoaderPhase = iota
	PhaseTypography
	PhaseSplitting
	// PhaseDone is entered once the split finishes; the sequencer no longer draws.
	PhaseDone
)

// String returns the phase name.
func (p LoaderPhase) String() string {
	switch p {
	case PhaseRevealing:
		return "revealing"
	case PhaseTypography:
		return "typography"
	case PhaseSplitting:
		return "splitting"
	default:
		return "done"
	}
}

// Keyframe timing shared by tiles and cells.
var (
	revealTimes = []float64{0, 0.32, 0.62, 0.82, 1}
	splitTimes  = []float64{0, 0.42, 1}
	cellSplit   = []float64{0, 0.4, 1}
)

const (
	cellRevealDuration = 0.95
	cellSplitDuration  = 0.56
	tileSplitDuration  = 0.62

	rippleRings    = 3
	rippleDuration = 1.2
	rippleStagger  = 0.22
	rippleFrom     = 0.08
	rippleTo       = 2.5
	rippleOpacity  = 0.35

	overlayFadeIn  = 0.4
	overlayFadeOut = 0.25
)

// Eases approximating the cubic-bezier curves the choreography was tuned with.
var (
	revealEase ease.TweenFunc = ease.OutExpo  // cubic-bezier(0.16, 1, 0.3, 1)
	splitEase  ease.TweenFunc = ease.OutQuint // cubic-bezier(0.22, 1, 0.36, 1)
)

// Pose is a sampled animation state of one tile or cell.
type Pose struct {
	Opacity float64
	Scale   float64
	// Y is the vertical offset in pixels, negative is up.
	Y float64
	// RotX and RotY are 3-D tilts in degrees.
	RotX, RotY float64
	// Blur is the blur radius in pixels.
	Blur float64
}

// restPose is a settled, fully visible pose.
var restPose = Pose{Opacity: 1, Scale: 1}

type poseTracks struct {
	opacity, scale, y, rotX, rotY, blur *Track
}

func holdPose(p Pose) poseTracks {
	return poseTracks{
		opacity: Hold(p.Opacity), scale: Hold(p.Scale), y: Hold(p.Y),
		rotX: Hold(p.RotX), rotY: Hold(p.RotY), blur: Hold(p.Blur),
	}
}

func (pt *poseTracks) update(dt float32) {
	pt.opacity.Update(dt)
	pt.scale.Update(dt)
	pt.y.Update(dt)
	pt.rotX.Update(dt)
	pt.rotY.Update(dt)
	pt.blur.Update(dt)
}

func (pt *poseTracks) pose() Pose {
	return Pose{
		Opacity: pt.opacity.Value(), Scale: pt.scale.Value(), Y: pt.y.Value(),
		RotX: pt.rotX.Value(), RotY: pt.rotY.Value(), Blur: pt.blur.Value(),
	}
}

func (pt *poseTracks) done() bool {
	return pt.opacity.Done() && pt.scale.Done() && pt.y.Done() &&
		pt.rotX.Done() && pt.rotY.Done() && pt.blur.Done()
}

type tileAnim struct {
	tile  poseTracks
	cells []poseTracks
}

type ripple struct {
	scale, opacity *Track
}

// IntroOption configures an IntroSequencer.
type IntroOption func(*IntroSequencer)

// WithClock replaces the system clock, typically with a manual clock in tests.
func WithClock(c Clock) IntroOption {
	return func(s *IntroSequencer) { s.clock = c }
}

// WithIntroSignals reads the device tier from, and follows resizes of, a host.
func WithIntroSignals(p PlatformSignals) IntroOption {
	return func(s *IntroSequencer) { s.signals = p }
}

// WithImages supplies the tile images. Missing or nil entries leave their
// tile slot empty.
func WithImages(imgs []image.Image) IntroOption {
	return func(s *IntroSequencer) { s.images = imgs }
}

// WithOnComplete registers the callback invoked once the intro finishes.
func WithOnComplete(fn func()) IntroOption {
	return func(s *IntroSequencer) { s.onComplete = fn }
}

// WithHandoffTarget sets the host element the wordmark hands off to.
func WithHandoffTarget(t HandoffTarget) IntroOption {
	return func(s *IntroSequencer) { s.handoff = t }
}

// IntroSequencer plays the three-act opening: tiles reveal in a wave from
// the centre, a wordmark overlay fades in over them, then the tiles split
// away and the sequencer completes. Phase changes are driven by its own
// timers against its Clock; tile and cell animations never hold a phase
// back.
//
// All methods must be called from the host's update goroutine.
type IntroSequencer struct {
	cfg        IntroConfig
	clock      Clock
	signals    PlatformSignals
	images     []image.Image
	onComplete func()
	handoff    HandoffTarget

	timers  timerSet
	cancels []func()
	debug   bool

	phase     LoaderPhase
	started   bool
	closed    bool
	completed bool
	startAt   time.Time
	phaseAt   time.Time
	last      time.Time
	now       time.Time

	device  DeviceInfo
	tier    DeviceTier
	layout  TileLayout
	tiles   []TileRuntime
	choreo  map[DeviceTier][]TileRuntime
	anims   []tileAnim
	ripples [rippleRings]ripple
	overlay *Track

	gfx introGraphics
}

// NewIntroSequencer creates a sequencer. Nothing runs until Start.
func NewIntroSequencer(cfg IntroConfig, opts ...IntroOption) *IntroSequencer {
	if err := cfg.Validate(); err != nil {
		Logger().Warn("intro: using default timings", "error", err)
		cfg.Timings = DefaultTimings()
	}
	if cfg.Wordmark == "" {
		cfg.Wordmark = DefaultWordmark
	}
	s := &IntroSequencer{
		cfg:    cfg,
		clock:  SystemClock{},
		choreo: make(map[DeviceTier][]TileRuntime),
	}
	for _, o := range opts {
		o(s)
	}
	s.overlay = Hold(0)
	return s
}

// Start mounts the intro: it reads the device tier, enters revealing and
// schedules the three phase timers. Calling Start again is a no-op.
func (s *IntroSequencer) Start() {
	if s.started || s.closed {
		return
	}
	s.started = true
	now := s.clock.Now()
	s.startAt, s.last, s.now = now, now, now

	if s.signals != nil {
		s.device = s.signals.QueryDevice()
		s.cancels = append(s.cancels, s.signals.OnResize(s.handleResize))
	}
	s.setTier(ClassifyTier(s.device))

	t := s.cfg.Timings
	s.timers.schedule(now.Add(t.Reveal), func() { s.enterPhase(PhaseTypography, now.Add(t.Reveal)) })
	s.timers.schedule(now.Add(t.Reveal+t.Typography), func() {
		s.enterPhase(PhaseSplitting, now.Add(t.Reveal+t.Typography))
	})
	s.timers.schedule(now.Add(t.Total()), s.finish)
	s.enterPhase(PhaseRevealing, now)
}

// Update advances the intro to the clock's current time: visual tracks move
// by the elapsed time, then every due phase timer fires in order.
func (s *IntroSequencer) Update() {
	if !s.started || s.closed || s.phase == PhaseDone {
		return
	}
	now := s.clock.Now()
	dt := now.Sub(s.last)
	s.last, s.now = now, now
	if dt > 0 {
		s.advance(float32(dt.Seconds()))
	}
	s.timers.fire(now)
}

// Skip jumps to the split. Pending phase timers are cancelled before the
// finish timer is scheduled one split duration from now, so onComplete still
// fires exactly once. Skipping during the split, after completion or before
// Start does nothing.
func (s *IntroSequencer) Skip() {
	if !s.started || s.closed || s.phase >= PhaseSplitting {
		return
	}
	now := s.clock.Now()
	if dt := now.Sub(s.last); dt > 0 {
		s.advance(float32(dt.Seconds()))
	}
	s.last, s.now = now, now
	s.timers.cancelAll()
	s.enterPhase(PhaseSplitting, now)
	s.timers.schedule(now.Add(s.cfg.Timings.Split), s.finish)
	Logger().Debug("intro: skipped", "elapsed", now.Sub(s.startAt))
}

// Close unmounts the intro: timers and subscriptions are released and
// onComplete is never called afterwards. Close is idempotent.
func (s *IntroSequencer) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.release()
	s.gfx.dispose()
}

func (s *IntroSequencer) release() {
	s.timers.stop()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}

// finish completes the intro and notifies the host once.
func (s *IntroSequencer) finish() {
	if s.completed {
		return
	}
	s.completed = true
	s.phase = PhaseDone
	s.release()
	Logger().Debug("intro: complete", "elapsed", s.now.Sub(s.startAt))
	if s.onComplete != nil {
		s.onComplete()
	}
}

// enterPhase switches phase and rebuilds the visual tracks as if the phase
// had begun at `at`. Cells still mid-reveal when typography starts keep
// their reveal tracks, which end at rest.
func (s *IntroSequencer) enterPhase(p LoaderPhase, at time.Time) {
	from, prev := s.phase, s.anims
	s.phase = p
	s.phaseAt = at
	s.buildTracks()
	if late := s.now.Sub(at); late > 0 {
		s.advance(float32(late.Seconds()))
	}
	if from == PhaseRevealing && p == PhaseTypography {
		s.carryCells(prev)
	}
	Logger().Debug("intro: phase", "phase", p.String(), "tier", s.tier.String(), "tiles", len(s.tiles))
}

func (s *IntroSequencer) handleResize(_, _ int) {
	if s.closed || s.phase == PhaseDone {
		return
	}
	// The tier follows the viewport, which may be larger than the container
	// the signals observe.
	s.device = s.signals.QueryDevice()
	tier := ClassifyTier(s.device)
	if tier == s.tier {
		return
	}
	s.setTier(tier)
	s.buildTracks()
	if since := s.now.Sub(s.phaseAt); since > 0 {
		s.advance(float32(since.Seconds()))
	}
	Logger().Debug("intro: tier changed", "tier", tier.String())
}

// setTier selects the layout and the memoised choreography for tier.
func (s *IntroSequencer) setTier(tier DeviceTier) {
	s.tier = tier
	s.layout = LayoutFor(tier)
	tiles, ok := s.choreo[tier]
	if !ok {
		tiles = Choreograph(s.layout, tier)
		s.choreo[tier] = tiles
	}
	s.tiles = tiles
}

// buildTracks creates the tile, cell, ripple and overlay tracks for the
// current phase.
func (s *IntroSequencer) buildTracks() {
	s.anims = make([]tileAnim, len(s.tiles))
	for i := range s.tiles {
		s.anims[i] = s.tileTracks(&s.tiles[i])
	}

	switch s.phase {
	case PhaseRevealing:
		for r := range s.ripples {
			delay := float64(r) * rippleStagger
			s.ripples[r] = ripple{
				scale:   keyframesOrHold(delay, rippleDuration, []float64{rippleFrom, rippleTo}, nil, revealEase),
				opacity: keyframesOrHold(delay, rippleDuration, []float64{rippleOpacity, 0}, nil, revealEase),
			}
		}
		s.overlay = Hold(0)
	case PhaseTypography:
		s.overlay = keyframesOrHold(0, overlayFadeIn, []float64{s.overlay.Value(), 1}, nil, splitEase)
	case PhaseSplitting:
		s.overlay = keyframesOrHold(0, overlayFadeOut, []float64{s.overlay.Value(), 0}, nil, splitEase)
	}
}

func (s *IntroSequencer) tileTracks(rt *TileRuntime) tileAnim {
	a := tileAnim{cells: make([]poseTracks, len(rt.Cells))}
	tilt := float64(rt.TiltSign)
	norm := rt.CenterDistanceNorm

	switch s.phase {
	case PhaseSplitting:
		d := rt.SplitDelay
		kf := func(values []float64) *Track {
			return keyframesOrHold(d, tileSplitDuration, values, splitTimes, splitEase)
		}
		a.tile = poseTracks{
			opacity: kf([]float64{1, 1, 0.95}),
			scale:   kf([]float64{1, 1.005, 1}),
			y:       kf([]float64{0, -(2 + norm*4), 0}),
			rotX:    kf([]float64{0, 24, 78}),
			rotY:    kf([]float64{0, 6 * tilt, 18 * tilt}),
			blur:    kf([]float64{0, 0, 3}),
		}
	default:
		a.tile = holdPose(restPose)
	}

	for j := range rt.Cells {
		c := &rt.Cells[j]
		switch s.phase {
		case PhaseRevealing:
			lift := rt.Lift * (1 - c.LocalNormDistance*liftFalloff)
			kf := func(values []float64) *Track {
				return keyframesOrHold(c.RevealDelay, cellRevealDuration, values, revealTimes, revealEase)
			}
			a.cells[j] = poseTracks{
				opacity: kf([]float64{0, 1, 1, 1, 1}),
				scale:   kf([]float64{0.78, 1.07, 1, 1.012, 1}),
				y:       kf([]float64{28, -lift, 0, -lift * 0.32, 0}),
				rotX:    Hold(0),
				rotY:    Hold(0),
				blur:    kf([]float64{8, 0, 0, 0, 0}),
			}
		case PhaseSplitting:
			l := c.LocalNormDistance
			kf := func(values []float64) *Track {
				return keyframesOrHold(c.SplitDelay, cellSplitDuration, values, cellSplit, splitEase)
			}
			a.cells[j] = poseTracks{
				opacity: kf([]float64{1, 1, 0}),
				scale:   kf([]float64{1, 1.01, 0.92}),
				y:       kf([]float64{0, -(5 + l*9), -(14 + l*20)}),
				rotX:    kf([]float64{0, 18, 68}),
				rotY:    kf([]float64{0, 4 * tilt, 12 * tilt}),
				blur:    kf([]float64{0, 0, 2}),
			}
		default:
			a.cells[j] = holdPose(restPose)
		}
	}
	return a
}

// carryCells reuses unfinished cell tracks from prev. prev is already
// positioned at the current time, so it is merged after any catch-up.
func (s *IntroSequencer) carryCells(prev []tileAnim) {
	if len(prev) != len(s.anims) {
		return
	}
	for i := range s.anims {
		if len(prev[i].cells) != len(s.anims[i].cells) {
			continue
		}
		for j := range prev[i].cells {
			if !prev[i].cells[j].done() {
				s.anims[i].cells[j] = prev[i].cells[j]
			}
		}
	}
}

// advance moves every visual track forward by dt seconds.
func (s *IntroSequencer) advance(dt float32) {
	for i := range s.anims {
		s.anims[i].tile.update(dt)
		for j := range s.anims[i].cells {
			s.anims[i].cells[j].update(dt)
		}
	}
	if s.phase == PhaseRevealing {
		for r := range s.ripples {
			s.ripples[r].scale.Update(dt)
			s.ripples[r].opacity.Update(dt)
		}
	}
	s.overlay.Update(dt)
}

// Phase returns the current act.
func (s *IntroSequencer) Phase() LoaderPhase { return s.phase }

// Visible reports whether the intro still draws: started, not closed and
// not finished.
func (s *IntroSequencer) Visible() bool {
	return s.started && !s.closed && s.phase != PhaseDone
}

// Completed reports whether onComplete has been delivered.
func (s *IntroSequencer) Completed() bool { return s.completed }

// Tier returns the device tier the grid is laid out for.
func (s *IntroSequencer) Tier() DeviceTier { return s.tier }

// Layout returns the active tile table.
func (s *IntroSequencer) Layout() TileLayout { return s.layout }

// Tiles returns the active choreography. The slice is shared; do not modify.
func (s *IntroSequencer) Tiles() []TileRuntime { return s.tiles }

// Elapsed returns the time since Start.
func (s *IntroSequencer) Elapsed() time.Duration {
	if !s.started {
		return 0
	}
	return s.now.Sub(s.startAt)
}

// PendingTimers returns the number of scheduled phase timers.
func (s *IntroSequencer) PendingTimers() int { return s.timers.len() }

// TilePose samples tile i.
func (s *IntroSequencer) TilePose(i int) Pose {
	if i < 0 || i >= len(s.anims) {
		return restPose
	}
	return s.anims[i].tile.pose()
}

// CellPose samples cell j of tile i.
func (s *IntroSequencer) CellPose(i, j int) Pose {
	if i < 0 || i >= len(s.anims) || j < 0 || j >= len(s.anims[i].cells) {
		return restPose
	}
	return s.anims[i].cells[j].pose()
}

// Settled reports whether every tile and cell track of the current phase has
// reached its last keyframe.
func (s *IntroSequencer) Settled() bool {
	for i := range s.anims {
		if !s.anims[i].tile.done() {
			return false
		}
		for j := range s.anims[i].cells {
			if !s.anims[i].cells[j].done() {
				return false
			}
		}
	}
	return true
}

// OverlayOpacity returns the wordmark overlay's current opacity.
func (s *IntroSequencer) OverlayOpacity() float64 { return s.overlay.Value() }

// SetDebug enables Debug-level frame stats.
func (s *IntroSequencer) SetDebug(on bool) { s.debug = on }

// tileImage returns the image for a tile, or nil when its slot is empty.
func (s *IntroSequencer) tileImage(spec TileSpec) image.Image {
	if spec.ImageIndex < 0 || spec.ImageIndex >= len(s.images) {
		return nil
	}
	return s.images[spec.ImageIndex]
}
