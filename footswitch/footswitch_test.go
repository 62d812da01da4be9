package footswitch

import (
	"errors"
	"testing"
)

func TestSwitchForValue(t *testing.T) {
	tests := []struct {
		value uint8
		want  Switch
	}{
		{0, Ten},
		{1, One},
		{5, Five},
		{9, Nine},
		{10, Up},
		{11, Down},
	}

	for _, tt := range tests {
		got, err := SwitchForValue(tt.value)
		if err != nil {
			t.Fatalf("SwitchForValue(%d) error: %v", tt.value, err)
		}
		if got != tt.want {
			t.Errorf("SwitchForValue(%d) = %s, want %s", tt.value, got, tt.want)
		}
		if got.Value() != tt.value {
			t.Errorf("%s.Value() = %d, want %d", got, got.Value(), tt.value)
		}
	}

	if _, err := SwitchForValue(12); !errors.Is(err, ErrUnknownSwitchValue) {
		t.Errorf("SwitchForValue(12) error = %v, want ErrUnknownSwitchValue", err)
	}
}

func TestLEDAddress(t *testing.T) {
	for _, s := range NumberedSwitches() {
		addr, err := s.LEDAddress()
		if err != nil {
			t.Fatalf("%s.LEDAddress() error: %v", s, err)
		}
		want := int(s)
		if s == Ten {
			want = 0
		}
		if addr != want {
			t.Errorf("%s.LEDAddress() = %d, want %d", s, addr, want)
		}
	}

	for _, s := range []Switch{Up, Down} {
		if _, err := s.LEDAddress(); !errors.Is(err, ErrInvalidLEDAddress) {
			t.Errorf("%s.LEDAddress() error = %v, want ErrInvalidLEDAddress", s, err)
		}
	}
}

func TestMustLEDAddressPanicsForNavigation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for UP")
		}
	}()
	Up.MustLEDAddress()
}

func TestDecode(t *testing.T) {
	for v := uint8(0); v < NumSwitches; v++ {
		want, _ := SwitchForValue(v)

		got, err := Decode([]byte{0xB0, ControlSwitchDown, v})
		if err != nil {
			t.Fatalf("decode down %d: %v", v, err)
		}
		if got != (RawTransition{Switch: want, Down: true}) {
			t.Errorf("decode down %d = %v", v, got)
		}

		got, err = Decode([]byte{0xB0, ControlSwitchUp, v})
		if err != nil {
			t.Fatalf("decode up %d: %v", v, err)
		}
		if got != (RawTransition{Switch: want, Down: false}) {
			t.Errorf("decode up %d = %v", v, got)
		}
	}
}

func TestDecodeIgnored(t *testing.T) {
	tests := []struct {
		name string
		msg  []byte
		want error
	}{
		{"empty", nil, ErrNotFootswitch},
		{"short", []byte{0xB0, ControlSwitchDown}, ErrNotFootswitch},
		{"note on", []byte{0x90, 60, 100}, ErrNotFootswitch},
		{"other channel", []byte{0xB1, ControlSwitchDown, 1}, ErrNotFootswitch},
		{"expression pedal", []byte{0xB0, ControlExpressionLeft, 64}, ErrNotFootswitch},
		{"led echo", []byte{0xB0, 106, 3}, ErrNotFootswitch},
		{"unknown value", []byte{0xB0, ControlSwitchDown, 12}, ErrUnknownSwitchValue},
		{"unknown value up", []byte{0xB0, ControlSwitchUp, 127}, ErrUnknownSwitchValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.msg)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode(% X) error = %v, want %v", tt.msg, err, tt.want)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, s := range All() {
		for _, down := range []bool{true, false} {
			in := RawTransition{Switch: s, Down: down}
			out, err := Decode(Encode(in))
			if err != nil || out != in {
				t.Errorf("Decode(Encode(%v)) = %v, %v", in, out, err)
			}
		}
	}
}

func TestLayoutUnion(t *testing.T) {
	var calls []string
	cb := func(name string) Callback {
		return func(Event) { calls = append(calls, name) }
	}

	a := NewLayout()
	a.Listen(One, EventPress, cb("a-press"))
	a.Listen(One, EventDown, cb("a-down"))

	b := NewLayout()
	b.Listen(One, EventPress, cb("b-press"))
	b.Listen(Two, EventLongPress, cb("b-long"))

	a.Union(b)

	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}
	if got := a.Kinds(One); got != Kinds(0).With(EventPress).With(EventDown) {
		t.Errorf("Kinds(One) = %s", got)
	}
	press, ok := a.Callback(One, EventPress)
	if !ok {
		t.Fatal("missing One/PRESS")
	}
	press(Event{})
	if len(calls) != 1 || calls[0] != "b-press" {
		t.Errorf("union did not let later entry win: %v", calls)
	}
	if b.Len() != 2 {
		t.Errorf("union modified its argument: Len() = %d", b.Len())
	}

	var seen []Event
	a.Each(func(s Switch, kind EventKind, _ Callback) {
		seen = append(seen, Event{Switch: s, Kind: kind})
	})
	want := []Event{{One, EventDown}, {One, EventPress}, {Two, EventLongPress}}
	if len(seen) != len(want) {
		t.Fatalf("Each visited %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Each[%d] = %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestZeroLayoutListen(t *testing.T) {
	var l Layout
	l.Listen(Up, EventPress, func(Event) {})
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
	if got := l.Switches(); len(got) != 1 || got[0] != Up {
		t.Errorf("Switches() = %v", got)
	}
}

func TestKindsString(t *testing.T) {
	ks := Kinds(0).With(EventDoublePress).With(EventDown)
	if got := ks.String(); got != "DOWN|DOUBLE_PRESS" {
		t.Errorf("String() = %q", got)
	}
}
