package modes

import (
	"fmt"

	"go-fcb/config"
	"go-fcb/footswitch"
	"go-fcb/led"
)

// switchAddresses are the LEDs of the ten numbered switches.
func switchAddresses() []int {
	var addrs []int
	for _, s := range footswitch.NumberedSwitches() {
		addrs = append(addrs, s.MustLEDAddress())
	}
	return addrs
}

// FromConfig builds a mode described by mc. The mode draws to a copy of
// parent scoped to the numbered switches' LEDs.
func FromConfig(mc config.ModeConfig, host Host, parent *led.Controller) (*Mode, error) {
	leds, err := parent.Copy(switchAddresses()...)
	if err != nil {
		return nil, err
	}

	switch mc.Type {
	case config.ModeStomp:
		return NewStompMode(mc.Name, mc.BaseCC, host, leds), nil
	case config.ModeSession:
		m, _, _ := NewSessionMode(mc.Name, mc, host, leds)
		return m, nil
	case config.ModeMacro:
		macro, err := NewMacro(mc.BaseCC, mc.Bindings, host, leds)
		if err != nil {
			return nil, fmt.Errorf("mode %q: %w", mc.Name, err)
		}
		return New(mc.Name, leds, macro), nil
	}
	return nil, fmt.Errorf("mode %q: unknown type %q", mc.Name, mc.Type)
}

// NewStompMode puts a Stomp on every numbered switch, switch n sending CC
// baseCC+n-1.
func NewStompMode(name string, baseCC uint8, host Host, leds *led.Controller) *Mode {
	var components []Component
	for i, s := range footswitch.NumberedSwitches() {
		components = append(components, NewStomp(s, baseCC+uint8(i), host, leds))
	}
	return New(name, leds, components...)
}

// NewSessionMode selects patches on 1-4, taps tempo on 5 and toggles
// stomps on 6-8.
func NewSessionMode(name string, mc config.ModeConfig, host Host, leds *led.Controller) (*Mode, *PatchSelector, *TapTempo) {
	patches := NewPatchSelector(
		[]footswitch.Switch{footswitch.One, footswitch.Two, footswitch.Three, footswitch.Four},
		mc.BaseProgram, host, leds)
	tempo := NewTapTempo(footswitch.Five, mc.MetronomeCC, mc.TempoCC, host, leds)

	components := []Component{patches, tempo}
	for i, s := range []footswitch.Switch{footswitch.Six, footswitch.Seven, footswitch.Eight} {
		components = append(components, NewStomp(s, mc.BaseCC+uint8(i), host, leds))
	}
	return New(name, leds, components...), patches, tempo
}

// ReloadBindings replaces the bindings of every macro in m. Modes without
// a macro are left alone.
func ReloadBindings(m *Mode, bindings []string) error {
	for _, c := range m.Components() {
		if macro, ok := c.(*Macro); ok {
			if err := macro.Reload(bindings); err != nil {
				return fmt.Errorf("mode %q: %w", m.Name(), err)
			}
		}
	}
	return nil
}
