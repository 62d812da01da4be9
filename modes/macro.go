package modes

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go-fcb/debug"
	"go-fcb/footswitch"
)

// ActionKind is what a binding does to its parameter.
type ActionKind int

const (
	// ActionToggle flips between Min and Max.
	ActionToggle ActionKind = iota
	// ActionSet writes Value.
	ActionSet
	// ActionExpression hands the parameter to the expression pedal
	// sending Pedal, which then drives it until reassigned.
	ActionExpression
)

// Binding is one parsed token of the form
//
//	#s<switch><event><action>
//
// switch is 1-9, or 0 for switch 10. event is one of d (down), u (up),
// p (press), 2 (double press) or h (hold). action is t (toggle 0-127),
// t<min>-<max> (toggle between min and max), s<value> (set), el (assign
// to the left expression pedal) or er (assign to the right one).
type Binding struct {
	Switch footswitch.Switch
	Kind   footswitch.EventKind
	Action ActionKind
	Min    uint8
	Max    uint8
	Value  uint8
	Pedal  uint8 // expression controller number for ActionExpression
}

var bindingEvents = map[byte]footswitch.EventKind{
	'd': footswitch.EventDown,
	'u': footswitch.EventUp,
	'p': footswitch.EventPress,
	'2': footswitch.EventDoublePress,
	'h': footswitch.EventLongPress,
}

// ParseBinding parses a single token.
func ParseBinding(tok string) (Binding, error) {
	bad := func(reason string) (Binding, error) {
		return Binding{}, fmt.Errorf("%w: %q: %s", ErrInvalidBinding, tok, reason)
	}

	if !strings.HasPrefix(tok, "#s") {
		return bad("must start with #s")
	}
	if len(tok) < 5 {
		return bad("too short")
	}

	var b Binding
	switch d := tok[2]; {
	case d == '0':
		b.Switch = footswitch.Ten
	case d >= '1' && d <= '9':
		b.Switch = footswitch.Switch(d - '0')
	default:
		return bad("switch must be a digit")
	}

	kind, ok := bindingEvents[tok[3]]
	if !ok {
		return bad("unknown event")
	}
	b.Kind = kind

	act := tok[4:]
	switch {
	case act == "t":
		b.Action, b.Min, b.Max = ActionToggle, 0, 127
	case act == "el":
		b.Action, b.Pedal = ActionExpression, footswitch.ControlExpressionLeft
	case act == "er":
		b.Action, b.Pedal = ActionExpression, footswitch.ControlExpressionRight
	case act[0] == 't':
		lo, hi, found := strings.Cut(act[1:], "-")
		if !found {
			return bad("toggle range must be <min>-<max>")
		}
		minV, err1 := parseValue(lo)
		maxV, err2 := parseValue(hi)
		if err1 != nil || err2 != nil {
			return bad("toggle range must be numbers 0-127")
		}
		b.Action, b.Min, b.Max = ActionToggle, minV, maxV
	case act[0] == 's':
		v, err := parseValue(act[1:])
		if err != nil {
			return bad("set value must be a number 0-127")
		}
		b.Action, b.Value = ActionSet, v
	default:
		return bad("unknown action")
	}
	return b, nil
}

func parseValue(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil || v > 127 {
		return 0, fmt.Errorf("bad value %q", s)
	}
	return uint8(v), nil
}

// ParseParameter splits a parameter definition such as
// "Wah #s5hs127 #s5us0" into its label and bindings.
func ParseParameter(def string) (label string, bindings []Binding, err error) {
	var words []string
	for _, tok := range strings.Fields(def) {
		if !strings.HasPrefix(tok, "#s") {
			words = append(words, tok)
			continue
		}
		b, err := ParseBinding(tok)
		if err != nil {
			return "", nil, err
		}
		bindings = append(bindings, b)
	}
	return strings.Join(words, " "), bindings, nil
}

// Param is one host CC driven by macro bindings.
type Param struct {
	Label string
	CC    uint8

	mu    sync.Mutex
	value uint8
}

// Value returns the last value sent.
func (p *Param) Value() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Macro drives host parameters from definitions like "Drive #s1pt".
// Each definition is one parameter, sent on consecutive CCs from a base.
type Macro struct {
	host Host
	leds LEDs

	mu       sync.Mutex
	baseCC   uint8
	params   []*Param
	actions  map[footswitch.Switch]map[footswitch.EventKind][]func()
	watches  map[footswitch.Switch]ledWatch
	pedals   map[uint8]*Param // expression cc -> assigned parameter
	onChange func()
}

// ledWatch lights a switch while a toggled parameter is above the
// midpoint of its range.
type ledWatch struct {
	param     *Param
	threshold int // doubled midpoint, compared against 2*value
}

// NewMacro parses defs; definition i drives CC baseCC+i.
func NewMacro(baseCC uint8, defs []string, host Host, leds LEDs) (*Macro, error) {
	m := &Macro{host: host, leds: leds, baseCC: baseCC}
	if err := m.load(defs); err != nil {
		return nil, err
	}
	m.drawAll()
	return m, nil
}

// Reload replaces every parameter. On error the macro is unchanged.
// Parameter values reset to 0.
func (m *Macro) Reload(defs []string) error {
	m.mu.Lock()
	old := m.watches
	m.mu.Unlock()

	if err := m.load(defs); err != nil {
		return err
	}

	m.mu.Lock()
	for sw := range old {
		if _, ok := m.watches[sw]; !ok {
			setLED(m.leds, sw, false)
		}
	}
	fn := m.onChange
	m.mu.Unlock()
	m.drawAll()

	if fn != nil {
		fn()
	}
	return nil
}

// OnLayoutChanged sets fn to be called after Reload.
func (m *Macro) OnLayoutChanged(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

func (m *Macro) load(defs []string) error {
	if int(m.baseCC)+len(defs) > 128 {
		return fmt.Errorf("%w: %d parameters from cc %d exceed 127", ErrInvalidBinding, len(defs), m.baseCC)
	}

	params := make([]*Param, 0, len(defs))
	actions := make(map[footswitch.Switch]map[footswitch.EventKind][]func())
	watches := make(map[footswitch.Switch]ledWatch)

	for i, def := range defs {
		label, bindings, err := ParseParameter(def)
		if err != nil {
			return err
		}
		p := &Param{Label: label, CC: m.baseCC + uint8(i)}
		params = append(params, p)

		for _, b := range bindings {
			if actions[b.Switch] == nil {
				actions[b.Switch] = make(map[footswitch.EventKind][]func())
			}
			actions[b.Switch][b.Kind] = append(actions[b.Switch][b.Kind], m.action(p, b))
			if b.Action == ActionToggle {
				watches[b.Switch] = ledWatch{param: p, threshold: int(b.Min) + int(b.Max)}
			}
		}
	}

	m.mu.Lock()
	m.params, m.actions, m.watches = params, actions, watches
	m.pedals = make(map[uint8]*Param)
	m.mu.Unlock()
	debug.Log("mode", "macro loaded %d parameters", len(params))
	return nil
}

func (m *Macro) action(p *Param, b Binding) func() {
	switch b.Action {
	case ActionToggle:
		return func() {
			m.update(p, func(cur uint8) uint8 {
				// Below the midpoint goes to max, otherwise to min.
				if 2*int(cur) < int(b.Min)+int(b.Max) {
					return b.Max
				}
				return b.Min
			})
		}
	case ActionExpression:
		return func() {
			m.mu.Lock()
			m.pedals[b.Pedal] = p
			m.mu.Unlock()
			debug.Log("mode", "macro %q on expression cc %d", p.Label, b.Pedal)
		}
	default:
		return func() { m.update(p, func(uint8) uint8 { return b.Value }) }
	}
}

// Expression forwards a pedal movement to the parameter assigned to that
// pedal. It reports false if no parameter is assigned.
func (m *Macro) Expression(cc, value uint8) bool {
	m.mu.Lock()
	p := m.pedals[cc]
	m.mu.Unlock()
	if p == nil {
		return false
	}
	m.update(p, func(uint8) uint8 { return value })
	return true
}

// Assigned returns the parameter the pedal sending cc drives, or nil.
func (m *Macro) Assigned(cc uint8) *Param {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pedals[cc]
}

func (m *Macro) update(p *Param, next func(cur uint8) uint8) {
	p.mu.Lock()
	v := next(p.value)
	p.value = v
	p.mu.Unlock()

	debug.Log("mode", "macro %q cc %d -> %d", p.Label, p.CC, v)
	sendCC(m.host, p.CC, v)
	m.drawAll()
}

func (m *Macro) drawAll() {
	m.mu.Lock()
	watches := m.watches
	m.mu.Unlock()

	for sw, w := range watches {
		setLED(m.leds, sw, 2*int(w.param.Value()) > w.threshold)
	}
}

func (m *Macro) Layout() footswitch.Layout {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := footswitch.NewLayout()
	for sw, kinds := range m.actions {
		for kind, fns := range kinds {
			l.Listen(sw, kind, func(footswitch.Event) {
				for _, fn := range fns {
					fn()
				}
			})
		}
	}
	return l
}

// Params returns the parameters in CC order.
func (m *Macro) Params() []*Param {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Param(nil), m.params...)
}
