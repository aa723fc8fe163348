package stagefx

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
	// Config holds the effect settings; the zero value means DefaultConfig.
	Config *Config
	// Images are the intro tile images. Nil entries leave their tile empty.
	Images []image.Image
	// NoIntro starts directly on the liquid text.
	NoIntro bool
	// LiquidRegion places the liquid text on screen. Nil uses the lower
	// half of the screen.
	LiquidRegion RegionFunc
	// HandoffTarget is where the intro wordmark settles. Nil centres the
	// handoff on the liquid text region.
	HandoffTarget HandoffTarget
	// OnIntroComplete is called once the intro finishes.
	OnIntroComplete func()
	Debug           bool
}

// LowerHalf is a RegionFunc for the bottom half of the screen.
func LowerHalf(screenW, screenH int) Rect {
	return Rect{Y: float64(screenH) / 2, Width: float64(screenW), Height: float64(screenH) / 2}
}

// Stage is an ebiten.Game hosting the intro over a liquid text footer.
type Stage struct {
	Intro   *IntroSequencer
	Liquid  *LiquidText
	Signals *EbitenSignals

	view    *LiquidTextView
	fps     *FPSOverlay
	screenW int
	screenH int
	mounted bool
}

// NewStage builds the effects for cfg. The intro starts on the first Update.
func NewStage(cfg RunConfig) *Stage {
	c := DefaultConfig()
	if cfg.Config != nil {
		c = *cfg.Config
	}
	region := cfg.LiquidRegion
	if region == nil {
		region = LowerHalf
	}
	sig := NewEbitenSignals(region)
	st := &Stage{Signals: sig}

	// Layout keeps one logical pixel per screen pixel, so the glyph buffer
	// is built at that density.
	st.Liquid = NewLiquidText(c.Liquid.Text,
		WithLiquidConfig(c.Liquid),
		WithSignals(sig),
		WithPixelRatio(1),
	)
	st.Liquid.SetDebug(cfg.Debug)
	st.view = NewLiquidTextView(st.Liquid)

	if !cfg.NoIntro {
		target := cfg.HandoffTarget
		if target == nil {
			target = HandoffFunc(func() (Rect, bool) {
				b := sig.Bounds()
				return b, !b.Empty()
			})
		}
		st.Intro = NewIntroSequencer(c.Intro,
			WithIntroSignals(sig),
			WithImages(cfg.Images),
			WithHandoffTarget(target),
			WithOnComplete(cfg.OnIntroComplete),
		)
		st.Intro.SetDebug(cfg.Debug)
	}
	if cfg.ShowFPS {
		st.fps = NewFPSOverlay()
	}
	return st
}

// Update implements ebiten.Game.
func (s *Stage) Update() error {
	if !s.mounted && s.screenW > 0 {
		s.mounted = true
		b := s.Signals.Bounds()
		s.Liquid.Mount(int(b.Width), int(b.Height))
		if s.Intro != nil {
			s.Intro.Start()
		}
	}
	s.Signals.Poll()
	if s.Intro != nil {
		s.Intro.HandleInput(float64(s.screenW), float64(s.screenH))
		s.Intro.Update()
	}
	s.Liquid.Tick()
	if s.fps != nil {
		s.fps.Update(1 / float64(ebiten.TPS()))
	}
	return nil
}

// Draw implements ebiten.Game.
func (s *Stage) Draw(screen *ebiten.Image) {
	s.view.Bounds = s.Signals.Bounds()
	s.view.Draw(screen)
	if s.Intro != nil {
		s.Intro.Draw(screen)
	}
	if s.fps != nil {
		s.fps.Draw(screen)
	}
}

// Layout implements ebiten.Game. The logical screen follows the window.
func (s *Stage) Layout(outsideWidth, outsideHeight int) (int, int) {
	s.screenW, s.screenH = outsideWidth, outsideHeight
	s.Signals.SetScreenSize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Close releases both effects.
func (s *Stage) Close() {
	if s.Intro != nil {
		s.Intro.Close()
	}
	s.Liquid.Close()
	s.view.Dispose()
}

// Run opens a window and plays the stage until the window is closed.
func Run(cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.Title == "" {
		cfg.Title = "stagefx"
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	st := NewStage(cfg)
	defer st.Close()
	return ebiten.RunGame(st)
}
