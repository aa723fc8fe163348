package stagefx

// HandoffTarget locates the host element the intro wordmark settles into,
// usually the page logo. ok is false when the element is absent.
type HandoffTarget interface {
	Bounds() (r Rect, ok bool)
}

// HandoffFunc adapts a function to HandoffTarget.
type HandoffFunc func() (Rect, bool)

// Bounds implements HandoffTarget.
func (f HandoffFunc) Bounds() (Rect, bool) { return f() }

// StaticTarget is a HandoffTarget at a fixed rectangle.
type StaticTarget Rect

// Bounds implements HandoffTarget.
func (t StaticTarget) Bounds() (Rect, bool) { return Rect(t), true }

// Handoff is where and how large the wordmark ends up.
type Handoff struct {
	Scale float64
	// Center is the wordmark centre in screen coordinates.
	Center Vec2
	// Fallback is true when the target could not be measured.
	Fallback bool
}

// Fixed handoff scales per tier when no target can be measured.
const (
	fallbackScaleMobile  = 0.32
	fallbackScaleTablet  = 0.26
	fallbackScaleDesktop = 0.22
)

// FallbackHandoffScale returns the fixed scale used for tier when the
// handoff target is missing.
func FallbackHandoffScale(tier DeviceTier) float64 {
	switch tier {
	case TierMobile:
		return fallbackScaleMobile
	case TierTablet:
		return fallbackScaleTablet
	default:
		return fallbackScaleDesktop
	}
}

// ComputeHandoff fits the wordmark rectangle into the target's bounds. A nil
// target, a missing element, or an empty rectangle on either side falls back
// to the tier's fixed scale centred a third of the way down the viewport.
func ComputeHandoff(target HandoffTarget, tier DeviceTier, wordmark, viewport Rect) Handoff {
	if target != nil && !wordmark.Empty() {
		if r, ok := target.Bounds(); ok && !r.Empty() {
			return Handoff{
				Scale:  min(r.Width/wordmark.Width, r.Height/wordmark.Height),
				Center: r.Center(),
			}
		}
	}
	return Handoff{
		Scale:    FallbackHandoffScale(tier),
		Center:   Vec2{X: viewport.X + viewport.Width/2, Y: viewport.Y + viewport.Height/3},
		Fallback: true,
	}
}
