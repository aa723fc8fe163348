package stagefx

// Viewport width breakpoints, in CSS pixels.
const (
	// MobileMaxWidth is the widest viewport still classified as mobile.
	MobileMaxWidth = 680

	// TabletMaxWidth is the widest viewport still classified as tablet.
	TabletMaxWidth = 1100
)

// DeviceTier classifies the viewport width. It selects grid density and
// layout for the intro.
type DeviceTier uint8

const (
	TierDesktop DeviceTier = iota // wide viewport
	TierTablet                    // medium viewport
	TierMobile                    // narrow viewport
)

// String returns the tier name.
func (t DeviceTier) String() string {
	switch t {
	case TierMobile:
		return "mobile"
	case TierTablet:
		return "tablet"
	default:
		return "desktop"
	}
}

// DeviceInfo is a snapshot of the viewport and pointer capability.
type DeviceInfo struct {
	Width, Height int
	// Coarse is true when the primary pointer is a finger rather than a mouse.
	Coarse bool
	// PixelRatio is the number of device pixels per CSS pixel. Zero means 1.
	PixelRatio float64
}

// ClassifyTier derives the device tier from a viewport snapshot. An unknown
// (zero) width classifies as desktop.
func ClassifyTier(info DeviceInfo) DeviceTier {
	switch {
	case info.Width <= 0:
		return TierDesktop
	case info.Width <= MobileMaxWidth:
		return TierMobile
	case info.Width <= TabletMaxWidth:
		return TierTablet
	default:
		return TierDesktop
	}
}

// QueryDeviceTier classifies the device currently reported by s. A nil s
// classifies as desktop.
func QueryDeviceTier(s PlatformSignals) DeviceTier {
	if s == nil {
		return TierDesktop
	}
	return ClassifyTier(s.QueryDevice())
}

// effectivePixelRatio returns the info's pixel ratio capped at max. A zero
// ratio reads as 1.
func (info DeviceInfo) effectivePixelRatio(max float64) float64 {
	dpr := info.PixelRatio
	if dpr <= 0 {
		dpr = 1
	}
	if max > 0 && dpr > max {
		dpr = max
	}
	return dpr
}
