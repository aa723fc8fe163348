// Package stagefx provides two opening-screen effects for [Ebitengine] and
// other frame-driven hosts.
//
// [IntroSequencer] plays a three-act intro: a grid of image tiles reveals in
// a wave from the centre, a wordmark overlay fades in over it, then the tiles
// split away and the sequencer reports completion exactly once. [LiquidText]
// renders a styled word into a pixel buffer and shatters its pixels away from
// a hovering pointer, or drifts it gently on touch devices.
//
// # Quick start
//
// The simplest way to see both effects is [Run]:
//
//	err := stagefx.Run(stagefx.RunConfig{
//		Title: "Intro", Width: 1280, Height: 720,
//		Images: stagefx.LoadImages(paths),
//	})
//
// For full control, drive the effects from your own [ebiten.Game]. Both are
// single-goroutine: call every method from Update or Draw.
//
//	sig := stagefx.NewEbitenSignals(nil)
//	intro := stagefx.NewIntroSequencer(stagefx.DefaultIntroConfig(),
//		stagefx.WithIntroSignals(sig),
//		stagefx.WithOnComplete(func() { log.Println("intro done") }),
//	)
//	intro.Start()
//
//	func (g *Game) Update() error { g.sig.Poll(); g.intro.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image) { g.intro.Draw(s) }
//
// # Host signals
//
// Effects observe their host through [PlatformSignals]: container resizes,
// pointer enter/move/leave, and the device profile. [EbitenSignals] polls
// Ebitengine; [SyntheticSignals] replays injected events for tests, scripted
// snapshots and non-graphical hosts.
//
// # Timing
//
// The intro's phases advance on its own timers against a [Clock]. Tile and
// cell animations are visual only and never hold a phase back. [WithClock]
// accepts any Clock, so tests step time by hand.
//
// # Logging
//
// The package logs through [log/slog]. Nothing is written until a logger is
// installed with [SetLogger].
//
// [Ebitengine]: https://ebitengine.org
package stagefx
