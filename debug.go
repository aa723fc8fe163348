package stagefx

import "time"

// frameStats holds per-frame metrics. Only populated when a component's
// debug flag is set.
type frameStats struct {
	mode     string
	opaque   int
	stats    DisplaceStats
	drawn    int
	duration time.Duration
}

// logFrameStats writes one frame's metrics at Debug level.
func logFrameStats(component string, fs frameStats) {
	Logger().Debug("frame",
		"component", component,
		"mode", fs.mode,
		"opaque", fs.opaque,
		"influenced", fs.stats.Influenced,
		"dropped", fs.stats.Dropped,
		"clipped", fs.stats.Clipped,
		"drawn", fs.drawn,
		"duration", fs.duration,
	)
}
