// Package board switches between modes. UP and DOWN cycle through the
// modes; the current mode's layout is installed on the bus and its LEDs
// are drawn, and a row of indicator LEDs shows which mode is current.
package board

import (
	"fmt"
	"sync"

	"go-fcb/debug"
	"go-fcb/footswitch"
)

// Mode is what the board switches between.
type Mode interface {
	Name() string
	Layout() footswitch.Layout
	Activate()
	Deactivate()
}

// layoutNotifier is implemented by modes whose layout can change while
// they are current.
type layoutNotifier interface {
	OnLayoutChanged(fn func())
}

// Bus is where layouts are installed.
type Bus interface {
	Install(l footswitch.Layout)
	Uninstall(l footswitch.Layout)
	Swap(old, next footswitch.Layout)
}

// LEDs drives the mode indicators.
type LEDs interface {
	On(addr int) error
	Off(addr int) error
}

// Board owns the mode list and the navigation switches.
type Board struct {
	bus      Bus
	leds     LEDs
	modeLEDs []int
	nav      footswitch.Layout

	mu        sync.Mutex
	modes     []Mode
	current   int // -1 before the first mode is added
	installed footswitch.Layout
	onChange  func(index int, m Mode)
}

// New installs the navigation layout (UP press: previous mode, DOWN
// press: next mode). modeLEDs[i] indicates mode i; modes past the end
// have no indicator.
func New(bus Bus, leds LEDs, modeLEDs []int) *Board {
	b := &Board{
		bus:      bus,
		leds:     leds,
		modeLEDs: modeLEDs,
		current:  -1,
	}
	b.nav = footswitch.NewLayout()
	b.nav.Listen(footswitch.Up, footswitch.EventPress, func(footswitch.Event) { b.Prev() })
	b.nav.Listen(footswitch.Down, footswitch.EventPress, func(footswitch.Event) { b.Next() })
	bus.Install(b.nav)
	return b
}

// Add appends a mode. The first mode added becomes current; later ones
// start deactivated.
func (b *Board) Add(m Mode) {
	b.mu.Lock()
	index := len(b.modes)
	b.modes = append(b.modes, m)
	first := b.current < 0
	b.mu.Unlock()

	if n, ok := m.(layoutNotifier); ok {
		n.OnLayoutChanged(func() { b.relayoutIf(index) })
	}

	if first {
		b.Next()
		return
	}
	m.Deactivate()
}

// Next moves to the following mode, wrapping to the first.
func (b *Board) Next() {
	b.mu.Lock()
	debug.Log("board", "next mode")
	if len(b.modes) == 0 {
		b.mu.Unlock()
		return
	}
	changed := b.setLocked((b.current + 1) % len(b.modes))
	b.mu.Unlock()
	changed()
}

// Prev moves to the preceding mode, wrapping to the last.
func (b *Board) Prev() {
	b.mu.Lock()
	debug.Log("board", "previous mode")
	if len(b.modes) == 0 {
		b.mu.Unlock()
		return
	}
	i := b.current - 1
	if i < 0 {
		i = len(b.modes) - 1
	}
	changed := b.setLocked(i)
	b.mu.Unlock()
	changed()
}

// SetMode makes mode i current.
func (b *Board) SetMode(i int) error {
	b.mu.Lock()
	if i < 0 || i >= len(b.modes) {
		b.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownMode, i)
	}
	changed := b.setLocked(i)
	b.mu.Unlock()
	changed()
	return nil
}

// setLocked makes mode i current and returns the OnModeChanged
// notification, to be called once b.mu is released.
func (b *Board) setLocked(i int) func() {
	if i == b.current {
		debug.Log("board", "mode %d already current", i)
		return func() {}
	}

	if b.current >= 0 {
		old := b.modes[b.current]
		old.Deactivate()
		b.bus.Uninstall(b.installed)
		b.modeLED(b.current, false)
	}

	next := b.modes[i]
	next.Activate()
	b.installed = next.Layout()
	b.bus.Install(b.installed)
	b.current = i
	b.modeLED(i, true)
	debug.Log("board", "mode %d: %s", i, next.Name())

	fn := b.onChange
	if fn == nil {
		return func() {}
	}
	return func() { fn(i, next) }
}

func (b *Board) modeLED(i int, on bool) {
	if i >= len(b.modeLEDs) {
		return
	}
	var err error
	if on {
		err = b.leds.On(b.modeLEDs[i])
	} else {
		err = b.leds.Off(b.modeLEDs[i])
	}
	if err != nil {
		debug.Log("board", "mode led %d: %v", b.modeLEDs[i], err)
	}
}

// Redraw activates the current mode again, which redraws its LEDs, and
// relights its indicator. Used after the controller loses power.
func (b *Board) Redraw() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current < 0 {
		return
	}
	b.modes[b.current].Activate()
	b.modeLED(b.current, true)
}

// Relayout reinstalls the current mode's layout.
func (b *Board) Relayout() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.relayoutLocked()
}

func (b *Board) relayoutIf(index int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index == b.current {
		b.relayoutLocked()
	}
}

func (b *Board) relayoutLocked() {
	if b.current < 0 {
		return
	}
	next := b.modes[b.current].Layout()
	b.bus.Swap(b.installed, next)
	b.installed = next
	debug.Log("board", "relayout %s (%d entries)", b.modes[b.current].Name(), next.Len())
}

// OnModeChanged sets fn to be called after every mode change. The board
// is unlocked by then, so fn may query it or change mode again.
func (b *Board) OnModeChanged(fn func(index int, m Mode)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Current returns the current mode and its index, or -1 and nil.
func (b *Board) Current() (int, Mode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current < 0 {
		return -1, nil
	}
	return b.current, b.modes[b.current]
}

// Names lists the modes in order.
func (b *Board) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.modes))
	for i, m := range b.modes {
		names[i] = m.Name()
	}
	return names
}

// Close uninstalls the navigation and the current mode's layout.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current >= 0 {
		b.bus.Uninstall(b.installed)
		b.modes[b.current].Deactivate()
	}
	b.bus.Uninstall(b.nav)
}
