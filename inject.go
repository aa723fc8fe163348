package stagefx

// syntheticEvent is one injected resize or pointer notification.
type syntheticEvent struct {
	resize        bool
	width, height int
	pointer       PointerEvent
}

// SyntheticSignals is a PlatformSignals driven by injected events instead of
// a real window. Injections are queued and delivered one per Poll, like real
// input arriving once per frame, or all at once with Flush. Tests, replay
// scripts and the terminal host use it.
type SyntheticSignals struct {
	reg    signalRegistry
	device DeviceInfo
	queue  []syntheticEvent
}

// NewSyntheticSignals creates signals reporting the given device profile.
func NewSyntheticSignals(device DeviceInfo) *SyntheticSignals {
	return &SyntheticSignals{device: device}
}

// OnResize implements PlatformSignals.
func (s *SyntheticSignals) OnResize(fn func(width, height int)) func() {
	return s.reg.addResize(fn)
}

// OnPointer implements PlatformSignals.
func (s *SyntheticSignals) OnPointer(fn func(PointerEvent)) func() {
	return s.reg.addPointer(fn)
}

// QueryDevice implements PlatformSignals.
func (s *SyntheticSignals) QueryDevice() DeviceInfo {
	return s.device
}

// SetDevice replaces the reported device profile. Subscribers are not
// notified. A delivered InjectResize also updates the profile's size: the
// synthetic container is the whole viewport.
func (s *SyntheticSignals) SetDevice(device DeviceInfo) {
	s.device = device
}

// Subscribers returns the number of live subscriptions.
func (s *SyntheticSignals) Subscribers() int {
	return s.reg.subscribers()
}

// Pending returns the number of queued injections.
func (s *SyntheticSignals) Pending() int {
	return len(s.queue)
}

// InjectResize queues a container resize to width×height CSS pixels.
func (s *SyntheticSignals) InjectResize(width, height int) {
	s.queue = append(s.queue, syntheticEvent{resize: true, width: width, height: height})
}

// InjectEnter queues the pointer entering the container at (x, y).
func (s *SyntheticSignals) InjectEnter(x, y float64) {
	s.queue = append(s.queue, syntheticEvent{pointer: PointerEvent{Kind: PointerEnter, X: x, Y: y}})
}

// InjectMove queues a pointer move to (x, y).
func (s *SyntheticSignals) InjectMove(x, y float64) {
	s.queue = append(s.queue, syntheticEvent{pointer: PointerEvent{Kind: PointerMove, X: x, Y: y}})
}

// InjectLeave queues the pointer leaving the container.
func (s *SyntheticSignals) InjectLeave() {
	s.queue = append(s.queue, syntheticEvent{pointer: PointerEvent{Kind: PointerLeave}})
}

// InjectSweep queues an enter at (fromX, fromY), linearly interpolated moves
// and a final move at (toX, toY). The sequence consumes `frames` polls.
// Minimum frames is 2 (enter + final move).
func (s *SyntheticSignals) InjectSweep(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectEnter(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(lerp(fromX, toX, t), lerp(fromY, toY, t))
	}
	s.InjectMove(toX, toY)
}

// Poll delivers the oldest queued injection. Returns false when the queue
// was empty.
func (s *SyntheticSignals) Poll() bool {
	if len(s.queue) == 0 {
		return false
	}
	evt := s.queue[0]
	copy(s.queue, s.queue[1:])
	s.queue = s.queue[:len(s.queue)-1]

	if evt.resize {
		s.device.Width, s.device.Height = evt.width, evt.height
		s.reg.emitResize(evt.width, evt.height)
	} else {
		s.reg.emitPointer(evt.pointer)
	}
	return true
}

// Flush delivers every queued injection and returns how many were delivered.
func (s *SyntheticSignals) Flush() int {
	n := 0
	for s.Poll() {
		n++
	}
	return n
}
