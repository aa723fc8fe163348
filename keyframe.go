package stagefx

import (
	"errors"
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ErrInvalidKeyframes is returned when a keyframe list cannot form a track.
var ErrInvalidKeyframes = errors.New("stagefx: invalid keyframes")

// segment is one keyframe-to-keyframe interval of a Track.
type segment struct {
	tween    *gween.Tween
	duration float32
	spent    float32
	end      float64
}

// Track animates one value through a list of keyframes after an initial
// delay. Each interval is a gween tween with the track's easing function.
// Call Update(dt) each frame; Value reports the latest sample.
//
// There is no global animation manager. Owners advance their own tracks.
type Track struct {
	wait     float32
	segments []segment
	cursor   int
	value    float64
	done     bool
}

// Keyframes builds a Track that holds values[0] for delay seconds and then
// moves through values over duration seconds. times holds the normalised
// start of each keyframe in [0, 1] and must be non-decreasing, begin at 0 and
// end at 1; nil spaces the keyframes evenly.
func Keyframes(delay, duration float64, values, times []float64, fn ease.TweenFunc) (*Track, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("keyframes: %w: no values", ErrInvalidKeyframes)
	}
	if times == nil {
		times = evenTimes(len(values))
	}
	if len(times) != len(values) {
		return nil, fmt.Errorf("keyframes: %w: %d values, %d times", ErrInvalidKeyframes, len(values), len(times))
	}
	if times[0] != 0 || (len(times) > 1 && times[len(times)-1] != 1) {
		return nil, fmt.Errorf("keyframes: %w: times must span [0, 1]", ErrInvalidKeyframes)
	}
	if delay < 0 || duration < 0 {
		return nil, fmt.Errorf("keyframes: %w: negative delay or duration", ErrInvalidKeyframes)
	}
	if fn == nil {
		fn = ease.Linear
	}

	t := &Track{wait: float32(delay), value: values[0]}
	for i := 0; i+1 < len(values); i++ {
		if times[i+1] < times[i] {
			return nil, fmt.Errorf("keyframes: %w: times decrease at %d", ErrInvalidKeyframes, i+1)
		}
		d := float32((times[i+1] - times[i]) * duration)
		s := segment{duration: d, end: values[i+1]}
		if d > 0 {
			s.tween = gween.New(float32(values[i]), float32(values[i+1]), d, fn)
		}
		t.segments = append(t.segments, s)
	}
	t.done = len(t.segments) == 0
	return t, nil
}

// Hold returns a finished Track fixed at v.
func Hold(v float64) *Track {
	return &Track{value: v, done: true}
}

func evenTimes(n int) []float64 {
	times := make([]float64, n)
	if n == 1 {
		return times
	}
	for i := range times {
		times[i] = float64(i) / float64(n-1)
	}
	return times
}

// Update advances the track by dt seconds and returns the current value.
// Time left over at the end of one interval carries into the next.
func (t *Track) Update(dt float32) float64 {
	if t.done || dt <= 0 {
		return t.value
	}
	if t.wait > 0 {
		if dt <= t.wait {
			t.wait -= dt
			return t.value
		}
		dt -= t.wait
		t.wait = 0
	}

	for dt > 0 && t.cursor < len(t.segments) {
		s := &t.segments[t.cursor]
		if s.tween == nil {
			t.value = s.end
			t.cursor++
			continue
		}
		step := min(dt, s.duration-s.spent)
		val, finished := s.tween.Update(step)
		s.spent += step
		dt -= step
		t.value = float64(val)
		if finished || s.spent >= s.duration {
			t.value = s.end
			t.cursor++
		}
	}
	// Zero-length intervals complete without consuming time.
	for t.cursor < len(t.segments) && t.segments[t.cursor].tween == nil {
		t.value = t.segments[t.cursor].end
		t.cursor++
	}
	t.done = t.cursor >= len(t.segments)
	return t.value
}

// Value returns the most recent sample.
func (t *Track) Value() float64 {
	return t.value
}

// Done reports whether the track has reached its last keyframe.
func (t *Track) Done() bool {
	return t.done
}

// keyframesOrHold is Keyframes for the package's constant tables. An
// invalid table degrades to holding the last value.
func keyframesOrHold(delay, duration float64, values, times []float64, fn ease.TweenFunc) *Track {
	t, err := Keyframes(delay, duration, values, times, fn)
	if err != nil {
		Logger().Warn("keyframe table rejected", "err", err)
		if len(values) == 0 {
			return Hold(0)
		}
		return Hold(values[len(values)-1])
	}
	return t
}
