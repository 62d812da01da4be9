// Package modes holds the board's modes and the components they are built
// from. A component owns a few switches and their LEDs and contributes a
// footswitch.Layout; a Mode unions its components' layouts and owns a
// scoped LED controller that is drawn only while the mode is current.
package modes

import (
	"sync"
	"time"

	"go-fcb/debug"
	"go-fcb/footswitch"
	"go-fcb/led"
)

// Host receives the messages modes produce.
type Host interface {
	SendCC(controller, value uint8) error
	SendProgramChange(program uint8) error
}

// LEDs is the part of led.Controller components use.
type LEDs interface {
	On(addr int) error
	Off(addr int) error
	BlinkOn(addr int, period time.Duration) error
}

// Component contributes callbacks to a mode.
type Component interface {
	Layout() footswitch.Layout
}

// layoutNotifier is implemented by components whose layout can change
// after construction.
type layoutNotifier interface {
	OnLayoutChanged(fn func())
}

// Mode is a named set of components sharing one scoped LED controller.
type Mode struct {
	name string
	leds *led.Controller

	mu         sync.Mutex
	components []Component
	onChange   func()
}

// New returns a mode drawing to leds. The controller should be a scoped
// copy so that deactivating the mode leaves other modes' memory alone.
func New(name string, leds *led.Controller, components ...Component) *Mode {
	m := &Mode{name: name, leds: leds}
	for _, c := range components {
		m.watch(c)
	}
	m.components = components
	return m
}

func (m *Mode) watch(c Component) {
	if n, ok := c.(layoutNotifier); ok {
		n.OnLayoutChanged(m.layoutChanged)
	}
}

func (m *Mode) layoutChanged() {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (m *Mode) Name() string {
	return m.name
}

// LEDs returns the mode's scoped controller.
func (m *Mode) LEDs() *led.Controller {
	return m.leds
}

// Add appends a component and reports the layout change.
func (m *Mode) Add(c Component) {
	m.watch(c)
	m.mu.Lock()
	m.components = append(m.components, c)
	m.mu.Unlock()
	m.layoutChanged()
}

// Components returns the mode's components in order.
func (m *Mode) Components() []Component {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Component(nil), m.components...)
}

// Layout is the union of every component's layout, later components
// winning on collision.
func (m *Mode) Layout() footswitch.Layout {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := footswitch.NewLayout()
	for _, c := range m.components {
		l.Union(c.Layout())
	}
	return l
}

// OnLayoutChanged sets fn to be called whenever Layout would return
// something different.
func (m *Mode) OnLayoutChanged(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Activate redraws the mode's LEDs.
func (m *Mode) Activate() {
	debug.Log("mode", "%s: activate", m.name)
	m.leds.Activate()
}

// Deactivate stops drawing; LED state is remembered.
func (m *Mode) Deactivate() {
	debug.Log("mode", "%s: deactivate", m.name)
	m.leds.Deactivate()
}

// switchLED returns the LED address of a numbered switch, logging and
// returning false for UP/DOWN.
func switchLED(s footswitch.Switch) (int, bool) {
	addr, err := s.LEDAddress()
	if err != nil {
		debug.Log("mode", "%v", err)
		return 0, false
	}
	return addr, true
}

func setLED(leds LEDs, s footswitch.Switch, on bool) {
	addr, ok := switchLED(s)
	if !ok {
		return
	}
	var err error
	if on {
		err = leds.On(addr)
	} else {
		err = leds.Off(addr)
	}
	if err != nil {
		debug.Log("mode", "%s led: %v", s, err)
	}
}

func sendCC(host Host, cc, value uint8) {
	if err := host.SendCC(cc, value); err != nil {
		debug.Log("mode", "send cc %d=%d: %v", cc, value, err)
	}
}
