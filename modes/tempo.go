package modes

import (
	"math"
	"sync"
	"time"

	"go-fcb/debug"
	"go-fcb/footswitch"
	"go-fcb/led"
)

// Tap tempo limits
const (
	// TapReset is the gap after which previous taps are forgotten.
	TapReset = 2 * time.Second

	// MinTempo is the bpm sent as 0 on the tempo CC; the CC covers
	// MinTempo to MinTempo+127.
	MinTempo = 60
)

// TapTempo turns DOWN taps on one switch into a tempo, and toggles the
// metronome on LONG_PRESS. While the metronome runs the LED flashes on
// the beat.
type TapTempo struct {
	sw          footswitch.Switch
	metronomeCC uint8
	tempoCC     uint8
	host        Host
	leds        LEDs
	now         func() time.Time

	mu        sync.Mutex
	taps      []time.Time
	bpm       float64
	metronome bool
	onTempo   func(bpm float64)
}

// NewTapTempo starts at 120 bpm with the metronome off.
func NewTapTempo(sw footswitch.Switch, metronomeCC, tempoCC uint8, host Host, leds LEDs) *TapTempo {
	return &TapTempo{
		sw:          sw,
		metronomeCC: metronomeCC,
		tempoCC:     tempoCC,
		host:        host,
		leds:        leds,
		now:         time.Now,
		bpm:         120,
	}
}

func (t *TapTempo) Layout() footswitch.Layout {
	l := footswitch.NewLayout()
	l.Listen(t.sw, footswitch.EventDown, func(footswitch.Event) { t.Tap() })
	l.Listen(t.sw, footswitch.EventLongPress, func(footswitch.Event) { t.ToggleMetronome() })
	return l
}

// OnTempo sets a callback run whenever the tempo changes.
func (t *TapTempo) OnTempo(fn func(bpm float64)) {
	t.mu.Lock()
	t.onTempo = fn
	t.mu.Unlock()
}

// Tap records a tap. From the third tap on, the tempo is two beats over
// the time since the tap before last.
func (t *TapTempo) Tap() {
	t.mu.Lock()
	now := t.now()
	if n := len(t.taps); n > 0 && now.Sub(t.taps[n-1]) > TapReset {
		t.taps = t.taps[:0]
	}
	t.taps = append(t.taps, now)
	if len(t.taps) > 3 {
		t.taps = t.taps[len(t.taps)-3:]
	}

	if len(t.taps) < 3 {
		t.mu.Unlock()
		return
	}
	span := t.taps[2].Sub(t.taps[0]).Seconds()
	if span <= 0 {
		t.mu.Unlock()
		return
	}
	t.bpm = 120 / span
	bpm := t.bpm
	debug.Log("mode", "tap tempo %.1f bpm", bpm)

	sendCC(t.host, t.tempoCC, tempoValue(bpm))
	if t.metronome {
		t.drawLocked()
	}
	fn := t.onTempo
	t.mu.Unlock()

	if fn != nil {
		fn(bpm)
	}
}

// tempoValue maps bpm onto the tempo CC range.
func tempoValue(bpm float64) uint8 {
	v := math.Round(bpm) - MinTempo
	return uint8(math.Max(0, math.Min(127, v)))
}

// ToggleMetronome flips the metronome.
func (t *TapTempo) ToggleMetronome() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.metronome = !t.metronome
	value := uint8(0)
	if t.metronome {
		value = 127
	}
	debug.Log("mode", "metronome %v", t.metronome)
	sendCC(t.host, t.metronomeCC, value)
	t.drawLocked()
}

func (t *TapTempo) drawLocked() {
	addr, ok := switchLED(t.sw)
	if !ok {
		return
	}
	var err error
	if t.metronome {
		err = t.leds.BlinkOn(addr, beatPeriod(t.bpm))
	} else {
		err = t.leds.Off(addr)
	}
	if err != nil {
		debug.Log("mode", "tempo led: %v", err)
	}
}

// beatPeriod is the dark part of a blink cycle lasting one beat.
func beatPeriod(bpm float64) time.Duration {
	beat := time.Duration(float64(time.Minute) / bpm)
	if beat <= 2*led.OnPhase {
		return led.OnPhase
	}
	return beat - led.OnPhase
}

// Tempo returns the current bpm.
func (t *TapTempo) Tempo() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

// Metronome reports whether the metronome is on.
func (t *TapTempo) Metronome() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.metronome
}
