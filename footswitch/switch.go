// Package footswitch turns raw down/up transitions from a 12-switch foot
// controller into gestures and routes them to the callbacks of the active
// layout.
package footswitch

import "fmt"

// Switch identifies one of the 12 physical foot switches.
type Switch int

const (
	One Switch = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Up
	Down
)

// NumSwitches is the number of physical switches on the board.
const NumSwitches = 12

var switchNames = [...]string{
	One:   "ONE",
	Two:   "TWO",
	Three: "THREE",
	Four:  "FOUR",
	Five:  "FIVE",
	Six:   "SIX",
	Seven: "SEVEN",
	Eight: "EIGHT",
	Nine:  "NINE",
	Ten:   "TEN",
	Up:    "UP",
	Down:  "DOWN",
}

// valueSwitches maps the controller value byte to a switch.
var valueSwitches = [NumSwitches]Switch{
	0:  Ten,
	1:  One,
	2:  Two,
	3:  Three,
	4:  Four,
	5:  Five,
	6:  Six,
	7:  Seven,
	8:  Eight,
	9:  Nine,
	10: Up,
	11: Down,
}

func (s Switch) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Switch(%d)", int(s))
	}
	return switchNames[s]
}

// Valid reports whether s is one of the 12 known switches.
func (s Switch) Valid() bool {
	return s >= One && s <= Down
}

// Numbered reports whether s is one of ONE..TEN.
func (s Switch) Numbered() bool {
	return s >= One && s <= Ten
}

// LEDAddress returns the LED address under the switch. TEN sits on
// address 0; UP and DOWN have no LED.
func (s Switch) LEDAddress() (int, error) {
	if !s.Numbered() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidLEDAddress, s)
	}
	if s == Ten {
		return 0, nil
	}
	return int(s), nil
}

// MustLEDAddress is LEDAddress for callers that only ever pass numbered
// switches. It panics otherwise.
func (s Switch) MustLEDAddress() int {
	addr, err := s.LEDAddress()
	if err != nil {
		panic(err)
	}
	return addr
}

// Value returns the controller value byte that identifies s on the wire.
func (s Switch) Value() uint8 {
	for v, sw := range valueSwitches {
		if sw == s {
			return uint8(v)
		}
	}
	return 0xff
}

// SwitchForValue maps a controller value byte to its switch.
func SwitchForValue(v uint8) (Switch, error) {
	if int(v) >= len(valueSwitches) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownSwitchValue, v)
	}
	return valueSwitches[v], nil
}

// All returns every switch in declaration order.
func All() []Switch {
	out := make([]Switch, 0, NumSwitches)
	for s := One; s <= Down; s++ {
		out = append(out, s)
	}
	return out
}

// BottomRow is ONE..FIVE.
func BottomRow() []Switch {
	return []Switch{One, Two, Three, Four, Five}
}

// TopRow is SIX..TEN.
func TopRow() []Switch {
	return []Switch{Six, Seven, Eight, Nine, Ten}
}

// NumberedSwitches is ONE..TEN.
func NumberedSwitches() []Switch {
	return append(BottomRow(), TopRow()...)
}
