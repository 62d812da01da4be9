package footswitch

import (
	"context"
	"errors"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-fcb/debug"
)

// Controller numbers used by the foot controller on MIDI channel 1.
const (
	ControlSwitchDown uint8 = 104
	ControlSwitchUp   uint8 = 105

	// Expression pedals share the channel; Decode ignores them and
	// DecodeExpression reads them.
	ControlExpressionLeft  uint8 = 102
	ControlExpressionRight uint8 = 103

	controllerChannel uint8 = 0
)

// Decode turns a raw 3-byte message into a transition. Messages that are
// not footswitch control changes return ErrNotFootswitch; a footswitch
// control change with an out-of-range value returns ErrUnknownSwitchValue.
func Decode(msg []byte) (RawTransition, error) {
	if len(msg) != 3 {
		return RawTransition{}, ErrNotFootswitch
	}
	var ch, cc, val uint8
	if !gomidi.Message(msg).GetControlChange(&ch, &cc, &val) || ch != controllerChannel {
		return RawTransition{}, ErrNotFootswitch
	}

	var down bool
	switch cc {
	case ControlSwitchDown:
		down = true
	case ControlSwitchUp:
		down = false
	default:
		return RawTransition{}, ErrNotFootswitch
	}

	sw, err := SwitchForValue(val)
	if err != nil {
		return RawTransition{}, err
	}
	return RawTransition{Switch: sw, Down: down}, nil
}

// DecodeExpression returns the pedal's controller number and position if
// msg is an expression pedal control change from the foot controller.
func DecodeExpression(msg []byte) (cc, value uint8, ok bool) {
	if len(msg) != 3 {
		return 0, 0, false
	}
	var ch uint8
	if !gomidi.Message(msg).GetControlChange(&ch, &cc, &value) || ch != controllerChannel {
		return 0, 0, false
	}
	if cc != ControlExpressionLeft && cc != ControlExpressionRight {
		return 0, 0, false
	}
	return cc, value, true
}

// Encode is the inverse of Decode, used by simulators and tests.
func Encode(t RawTransition) []byte {
	cc := ControlSwitchUp
	if t.Down {
		cc = ControlSwitchDown
	}
	return gomidi.ControlChange(controllerChannel, cc, t.Switch.Value())
}

// Bus owns one Disambiguator per switch and routes transitions to them.
type Bus struct {
	channels map[Switch]*Disambiguator

	mu         sync.Mutex // serialises Install/Uninstall
	expression func(cc, value uint8)

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBus creates the 12 disambiguators. They do not process anything until
// Start is called.
func NewBus(opts Options) *Bus {
	b := &Bus{channels: make(map[Switch]*Disambiguator, NumSwitches)}
	for _, s := range All() {
		b.channels[s] = NewDisambiguator(s, opts)
	}
	return b
}

// Start runs every disambiguator in its own goroutine until ctx is
// cancelled or Close is called. Calling Start twice is a no-op.
func (b *Bus) Start(ctx context.Context) {
	b.runMu.Lock()
	defer b.runMu.Unlock()
	if b.cancel != nil {
		return
	}

	ctx, b.cancel = context.WithCancel(ctx)
	for _, d := range b.channels {
		b.wg.Add(1)
		go func(d *Disambiguator) {
			defer b.wg.Done()
			d.Run(ctx)
		}(d)
	}
	debug.Log("bus", "started %d switch loops", len(b.channels))
}

// Close stops every disambiguator and waits for them to exit.
func (b *Bus) Close() {
	b.runMu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.runMu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.wg.Wait()
}

// Channel returns the disambiguator for s.
func (b *Bus) Channel(s Switch) *Disambiguator {
	return b.channels[s]
}

// HandleMIDI decodes msg and dispatches it. Anything that is not a
// footswitch transition is dropped; an unknown switch value is logged.
// It is safe to use directly as a MIDI listener.
func (b *Bus) HandleMIDI(msg []byte) {
	t, err := Decode(msg)
	switch {
	case err == nil:
		b.Dispatch(t)
	case errors.Is(err, ErrNotFootswitch):
		if cc, value, ok := DecodeExpression(msg); ok {
			b.mu.Lock()
			fn := b.expression
			b.mu.Unlock()
			if fn != nil {
				fn(cc, value)
			}
		}
	default:
		debug.Log("bus", "dropping % X: %v", msg, err)
	}
}

// OnExpression sets fn to receive expression pedal movements from
// HandleMIDI. They bypass the disambiguators.
func (b *Bus) OnExpression(fn func(cc, value uint8)) {
	b.mu.Lock()
	b.expression = fn
	b.mu.Unlock()
}

// Dispatch routes a transition to its switch's disambiguator.
func (b *Bus) Dispatch(t RawTransition) {
	d, ok := b.channels[t.Switch]
	if !ok {
		debug.Log("bus", "dropping transition for %s", t.Switch)
		return
	}
	d.Signal(t.Down)
}

// Install registers every entry of l on the live disambiguators. Each
// switch's registrations change in a single swap.
func (b *Bus) Install(l Layout) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.install(l)
}

// Uninstall unregisters exactly the kinds present in l, leaving kinds that
// came from other layouts in place.
func (b *Bus) Uninstall(l Layout) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uninstall(l)
}

// Swap uninstalls old and installs next under one hold of the bus lock.
func (b *Bus) Swap(old, next Layout) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uninstall(old)
	b.install(next)
}

func (b *Bus) install(l Layout) {
	for s, m := range l.callbacks {
		if d, ok := b.channels[s]; ok {
			d.apply(m, 0)
		}
	}
	debug.Log("bus", "installed layout (%d entries)", l.Len())
}

func (b *Bus) uninstall(l Layout) {
	for s := range l.callbacks {
		if d, ok := b.channels[s]; ok {
			d.apply(nil, l.Kinds(s))
		}
	}
	debug.Log("bus", "uninstalled layout (%d entries)", l.Len())
}

// Observe sets fn as the observer on every switch.
func (b *Bus) Observe(fn Observer) {
	for _, d := range b.channels {
		d.SetObserver(fn)
	}
}

// Registered reports the kinds currently registered on every switch.
func (b *Bus) Registered() map[Switch]Kinds {
	out := make(map[Switch]Kinds, len(b.channels))
	for s, d := range b.channels {
		out[s] = d.Registered()
	}
	return out
}
