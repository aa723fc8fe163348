package stagefx

import "time"

// Clock provides the wall-clock readings that drive phase timers.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real monotonic clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock only moves when advanced. Headless hosts and tests use it to
// step time one frame at a time.
type ManualClock struct {
	now time.Time
}

// NewManualClock returns a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current reading.
func (c *ManualClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// timerID identifies a scheduled timer within one timerSet.
type timerID uint32

type timer struct {
	id  timerID
	due time.Time
	fn  func()
}

// timerSet holds one component's one-shot timers. Timers fire only from
// fire, on the caller's goroutine; nothing runs in the background.
type timerSet struct {
	pending []timer
	nextID  timerID
	stopped bool
}

// schedule registers fn to run once the clock reaches due. Scheduling on a
// stopped set is ignored and returns 0.
func (ts *timerSet) schedule(due time.Time, fn func()) timerID {
	if ts.stopped {
		return 0
	}
	ts.nextID++
	ts.pending = append(ts.pending, timer{id: ts.nextID, due: due, fn: fn})
	return ts.nextID
}

// cancel removes a pending timer. Unknown ids are ignored.
func (ts *timerSet) cancel(id timerID) {
	for i := range ts.pending {
		if ts.pending[i].id == id {
			copy(ts.pending[i:], ts.pending[i+1:])
			ts.pending[len(ts.pending)-1] = timer{}
			ts.pending = ts.pending[:len(ts.pending)-1]
			return
		}
	}
}

// cancelAll drops every pending timer.
func (ts *timerSet) cancelAll() {
	clear(ts.pending)
	ts.pending = ts.pending[:0]
}

// stop cancels everything and refuses further scheduling.
func (ts *timerSet) stop() {
	ts.cancelAll()
	ts.stopped = true
}

// len reports the number of pending timers.
func (ts *timerSet) len() int {
	return len(ts.pending)
}

// fire runs every timer due at or before now, earliest first, ties in
// scheduling order. A timer cancelled by an earlier callback in the same pass
// does not run. Returns the number of timers fired.
func (ts *timerSet) fire(now time.Time) int {
	fired := 0
	for !ts.stopped {
		next := -1
		for i := range ts.pending {
			if ts.pending[i].due.After(now) {
				continue
			}
			if next < 0 || ts.pending[i].due.Before(ts.pending[next].due) ||
				ts.pending[i].due.Equal(ts.pending[next].due) && ts.pending[i].id < ts.pending[next].id {
				next = i
			}
		}
		if next < 0 {
			break
		}
		t := ts.pending[next]
		ts.cancel(t.id)
		t.fn()
		fired++
	}
	return fired
}
