package stagefx

import (
	"reflect"
	"testing"
	"time"
)

var epoch = time.Unix(1_700_000_000, 0)

func TestManualClock(t *testing.T) {
	c := NewManualClock(epoch)
	if !c.Now().Equal(epoch) {
		t.Fatalf("Now = %v, want %v", c.Now(), epoch)
	}
	c.Advance(1500 * time.Millisecond)
	if got := c.Now().Sub(epoch); got != 1500*time.Millisecond {
		t.Errorf("advanced by %v, want 1.5s", got)
	}
}

func TestTimerSetFiresInDueOrder(t *testing.T) {
	var ts timerSet
	var order []string
	ts.schedule(epoch.Add(3*time.Second), func() { order = append(order, "c") })
	ts.schedule(epoch.Add(1*time.Second), func() { order = append(order, "a") })
	ts.schedule(epoch.Add(2*time.Second), func() { order = append(order, "b") })

	if n := ts.fire(epoch.Add(500 * time.Millisecond)); n != 0 {
		t.Errorf("fired %d timers early", n)
	}
	if n := ts.fire(epoch.Add(10 * time.Second)); n != 3 {
		t.Errorf("fired %d, want 3", n)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if ts.len() != 0 {
		t.Errorf("len = %d after firing all", ts.len())
	}
}

func TestTimerSetTiesFireInScheduleOrder(t *testing.T) {
	var ts timerSet
	var order []int
	due := epoch.Add(time.Second)
	for i := 0; i < 4; i++ {
		ts.schedule(due, func() { order = append(order, i) })
	}
	ts.fire(due)
	if want := []int{0, 1, 2, 3}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestTimerSetFiresAtExactDueTime(t *testing.T) {
	var ts timerSet
	fired := false
	ts.schedule(epoch, func() { fired = true })
	ts.fire(epoch)
	if !fired {
		t.Error("timer due at now should fire")
	}
}

func TestTimerSetCancel(t *testing.T) {
	var ts timerSet
	fired := false
	id := ts.schedule(epoch, func() { fired = true })
	ts.cancel(id)
	ts.cancel(id + 100) // unknown ids are ignored
	ts.fire(epoch.Add(time.Hour))
	if fired {
		t.Error("cancelled timer fired")
	}
}

func TestTimerSetCancelFromCallback(t *testing.T) {
	var ts timerSet
	secondFired := false
	var second timerID
	ts.schedule(epoch, func() { ts.cancel(second) })
	second = ts.schedule(epoch.Add(time.Millisecond), func() { secondFired = true })
	ts.fire(epoch.Add(time.Second))
	if secondFired {
		t.Error("timer cancelled by an earlier callback should not fire")
	}
}

func TestTimerSetScheduleFromCallback(t *testing.T) {
	var ts timerSet
	fired := 0
	ts.schedule(epoch, func() {
		fired++
		ts.schedule(epoch.Add(time.Second), func() { fired++ })
	})
	if n := ts.fire(epoch.Add(2 * time.Second)); n != 2 || fired != 2 {
		t.Errorf("fire = %d, fired = %d, want 2 and 2", n, fired)
	}
}

func TestTimerSetStop(t *testing.T) {
	var ts timerSet
	ts.schedule(epoch, func() {})
	ts.schedule(epoch, func() {})
	ts.cancelAll()
	if ts.len() != 0 {
		t.Errorf("len = %d after cancelAll", ts.len())
	}
	if id := ts.schedule(epoch, func() {}); id == 0 {
		t.Error("cancelAll should not stop the set")
	}

	ts.stop()
	if id := ts.schedule(epoch, func() {}); id != 0 {
		t.Errorf("schedule after stop = %d, want 0", id)
	}
	if n := ts.fire(epoch.Add(time.Hour)); n != 0 {
		t.Errorf("stopped set fired %d", n)
	}
}

func TestTimerSetStopFromCallback(t *testing.T) {
	var ts timerSet
	later := false
	ts.schedule(epoch, func() { ts.stop() })
	ts.schedule(epoch, func() { later = true })
	ts.fire(epoch)
	if later {
		t.Error("timer after stop should not fire")
	}
}
