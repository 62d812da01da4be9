package footswitch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go-fcb/debug"
)

// Gesture timing windows
const (
	LongPressWindow   = 800 * time.Millisecond
	DoublePressWindow = 500 * time.Millisecond
)

// signalBufferDepth bounds how many undispatched edges a switch can queue.
const signalBufferDepth = 16

// Options tunes the gesture windows.
type Options struct {
	LongPress   time.Duration
	DoublePress time.Duration
}

// DefaultOptions returns the stock 800ms / 500ms windows.
func DefaultOptions() Options {
	return Options{LongPress: LongPressWindow, DoublePress: DoublePressWindow}
}

func (o Options) withDefaults() Options {
	if o.LongPress <= 0 {
		o.LongPress = LongPressWindow
	}
	if o.DoublePress <= 0 {
		o.DoublePress = DoublePressWindow
	}
	return o
}

// registrations is an immutable kind -> callback set. A new one is built
// for every change and swapped in whole.
type registrations map[EventKind]Callback

// Observer sees every notification a disambiguator produces, whether or
// not a callback was registered for it.
type Observer func(ev Event, delivered bool)

// state of the gesture currently in flight.
type state int

const (
	stateIdle state = iota
	stateAwaitingRelease
	stateLongPressHeld
	stateAwaitingSecondDown
	stateAwaitingSecondUp
)

var stateNames = [...]string{
	stateIdle:               "idle",
	stateAwaitingRelease:    "awaiting-release",
	stateLongPressHeld:      "long-press-held",
	stateAwaitingSecondDown: "awaiting-second-down",
	stateAwaitingSecondUp:   "awaiting-second-up",
}

func (s state) String() string { return stateNames[s] }

// signal is one raw edge together with the registrations that were live
// when it was dispatched.
type signal struct {
	down bool
	regs registrations
}

// Disambiguator owns the gesture state machine for one switch. Raw edges
// arrive through Signal and are processed by a single goroutine started
// with Run, so notifications for a switch are strictly ordered.
type Disambiguator struct {
	sw   Switch
	opts Options

	regMu sync.Mutex // serialises writers; readers use regs.Load
	regs  atomic.Pointer[registrations]

	observer atomic.Pointer[Observer]

	in chan signal
}

// NewDisambiguator creates the state machine for s. Call Run to start it.
func NewDisambiguator(s Switch, opts Options) *Disambiguator {
	d := &Disambiguator{
		sw:   s,
		opts: opts.withDefaults(),
		in:   make(chan signal, signalBufferDepth),
	}
	empty := registrations{}
	d.regs.Store(&empty)
	return d
}

// Switch returns the switch this disambiguator watches.
func (d *Disambiguator) Switch() Switch { return d.sw }

// Register sets the callback for kind. A gesture already in flight keeps
// the registrations it captured when its deciding edge was dispatched.
func (d *Disambiguator) Register(kind EventKind, cb Callback) {
	d.update(func(next registrations) { next[kind] = cb })
}

// Unregister removes the callback for kind. Removing a kind that was never
// registered is a no-op and returns false.
func (d *Disambiguator) Unregister(kind EventKind) bool {
	removed := false
	d.update(func(next registrations) {
		if _, ok := next[kind]; ok {
			delete(next, kind)
			removed = true
		}
	})
	if !removed {
		debug.Log("fsw", "%s: unregister %s: not registered", d.sw, kind)
	}
	return removed
}

// Registered returns the set of kinds that currently have a callback.
func (d *Disambiguator) Registered() Kinds {
	var ks Kinds
	for kind := range *d.regs.Load() {
		ks = ks.With(kind)
	}
	return ks
}

// apply registers and unregisters a batch in one atomic swap.
func (d *Disambiguator) apply(set map[EventKind]Callback, clear Kinds) {
	d.update(func(next registrations) {
		for _, kind := range AllKinds {
			if clear.Has(kind) {
				delete(next, kind)
			}
		}
		for kind, cb := range set {
			next[kind] = cb
		}
	})
}

func (d *Disambiguator) update(fn func(next registrations)) {
	d.regMu.Lock()
	defer d.regMu.Unlock()

	cur := *d.regs.Load()
	next := make(registrations, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	fn(next)
	d.regs.Store(&next)
}

// SetObserver installs fn to see every notification. nil removes it.
func (d *Disambiguator) SetObserver(fn Observer) {
	if fn == nil {
		d.observer.Store(nil)
		return
	}
	d.observer.Store(&fn)
}

// Signal queues a raw edge. It never blocks; if the queue is full the edge
// is dropped and logged.
func (d *Disambiguator) Signal(down bool) {
	sig := signal{down: down, regs: *d.regs.Load()}
	select {
	case d.in <- sig:
	default:
		debug.Log("fsw", "%s: input queue full, dropping down=%v", d.sw, down)
	}
}

// Run processes edges until ctx is cancelled.
func (d *Disambiguator) Run(ctx context.Context) {
	var (
		st      = stateIdle
		timer   *time.Timer
		timeout <-chan time.Time

		// pending is the snapshot timer-driven notifications go to: the
		// opening DOWN's while waiting for release, the deciding UP's while
		// waiting for a second DOWN.
		pending registrations
	)

	arm := func(window time.Duration) {
		if timer != nil {
			timer.Stop()
		}
		timer = time.NewTimer(window)
		timeout = timer.C
	}
	disarm := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
		}
		timeout = nil
	}
	defer disarm()

	for {
		select {
		case <-ctx.Done():
			return

		case sig := <-d.in:
			switch {
			case st == stateIdle && sig.down:
				d.notify(sig.regs, EventDown)
				pending = sig.regs
				arm(d.opts.LongPress)
				st = stateAwaitingRelease

			case st == stateAwaitingRelease && !sig.down:
				disarm()
				d.notify(sig.regs, EventUp)
				// Decide with the registrations live when this UP was dispatched.
				if _, ok := sig.regs[EventDoublePress]; !ok {
					d.notify(sig.regs, EventPress)
					st = stateIdle
				} else {
					pending = sig.regs
					arm(d.opts.DoublePress)
					st = stateAwaitingSecondDown
				}

			case st == stateLongPressHeld && !sig.down:
				d.notify(sig.regs, EventUp)
				st = stateIdle

			case st == stateAwaitingSecondDown && sig.down:
				disarm()
				d.notify(sig.regs, EventDown)
				st = stateAwaitingSecondUp

			case st == stateAwaitingSecondUp && !sig.down:
				d.notify(sig.regs, EventUp)
				d.notify(sig.regs, EventDoublePress)
				st = stateIdle

			default:
				debug.Log("fsw", "%s: ignoring down=%v while %s", d.sw, sig.down, st)
			}

		case <-timeout:
			timer, timeout = nil, nil
			switch st {
			case stateAwaitingRelease:
				d.notify(pending, EventLongPress)
				st = stateLongPressHeld
			case stateAwaitingSecondDown:
				d.notify(pending, EventPress)
				st = stateIdle
			}
			pending = nil
		}
	}
}

// notify delivers kind to its callback if one is registered. A panicking
// callback is logged and does not stop the loop.
func (d *Disambiguator) notify(regs registrations, kind EventKind) {
	ev := Event{Switch: d.sw, Kind: kind}
	cb, ok := regs[kind]

	if obs := d.observer.Load(); obs != nil {
		(*obs)(ev, ok)
	}
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			debug.Log("fsw", "%s: callback panicked: %v", ev, r)
		}
	}()
	cb(ev)
}
