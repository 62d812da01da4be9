package modes

import (
	"sync"

	"go-fcb/debug"
	"go-fcb/footswitch"
)

// Stomp toggles a host CC between 0 and 127 on PRESS. The switch LED is
// lit while the CC is high.
type Stomp struct {
	sw   footswitch.Switch
	cc   uint8
	host Host
	leds LEDs

	mu sync.Mutex
	on bool
}

// NewStomp returns a stomp in the off state.
func NewStomp(sw footswitch.Switch, cc uint8, host Host, leds LEDs) *Stomp {
	return &Stomp{sw: sw, cc: cc, host: host, leds: leds}
}

func (s *Stomp) Layout() footswitch.Layout {
	l := footswitch.NewLayout()
	l.Listen(s.sw, footswitch.EventPress, func(footswitch.Event) { s.Toggle() })
	return l
}

// Toggle flips the stomp.
func (s *Stomp) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(!s.on)
}

// Set forces the stomp state and resends it.
func (s *Stomp) Set(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(on)
}

func (s *Stomp) set(on bool) {
	s.on = on
	value := uint8(0)
	if on {
		value = 127
	}
	debug.Log("mode", "stomp %s cc %d -> %d", s.sw, s.cc, value)
	sendCC(s.host, s.cc, value)
	setLED(s.leds, s.sw, on)
}

// Engaged reports whether the stomp is on.
func (s *Stomp) Engaged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}
