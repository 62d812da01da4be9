package midi

import (
	"errors"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestMatchesPort(t *testing.T) {
	tests := []struct {
		name, match string
		want        bool
	}{
		{"FCB1010 MIDI 1", "fcb1010", true},
		{"UMC1820:UMC1820 MIDI 1 20:0", "umc", true},
		{"IAC Driver Bus 1", "iac driver", true},
		{"IAC Driver Bus 1", "fcb", false},
		{"anything", "", false},
		{"anything", "   ", false},
	}

	for _, tt := range tests {
		if got := MatchesPort(tt.name, tt.match); got != tt.want {
			t.Errorf("MatchesPort(%q, %q) = %v, want %v", tt.name, tt.match, got, tt.want)
		}
	}
}

func TestOutputDetachedDrops(t *testing.T) {
	o := NewOutput(0)
	if o.Connected() {
		t.Fatal("new output reports connected")
	}
	if err := o.SendCC(106, 3); err != nil {
		t.Errorf("detached SendCC error: %v", err)
	}
}

func TestOutputAttach(t *testing.T) {
	var got []gomidi.Message
	o := NewOutput(2)
	o.Attach("test", func(msg gomidi.Message) error {
		got = append(got, msg)
		return nil
	})

	if !o.Connected() || o.Name() != "test" {
		t.Fatalf("Connected() = %v, Name() = %q", o.Connected(), o.Name())
	}

	o.SendCC(106, 7)
	o.SendProgramChange(12)

	if len(got) != 2 {
		t.Fatalf("sent %d messages, want 2", len(got))
	}

	var ch, cc, val uint8
	if !got[0].GetControlChange(&ch, &cc, &val) || ch != 2 || cc != 106 || val != 7 {
		t.Errorf("first message = %v", got[0])
	}
	var program uint8
	if !got[1].GetProgramChange(&ch, &program) || ch != 2 || program != 12 {
		t.Errorf("second message = %v", got[1])
	}

	o.Detach()
	o.SendCC(107, 7)
	if len(got) != 2 {
		t.Errorf("detached output still sent: %v", got[2:])
	}
}

func TestOutputSendError(t *testing.T) {
	want := errors.New("unplugged")
	o := NewOutput(0)
	o.Attach("test", func(gomidi.Message) error { return want })
	if err := o.SendCC(1, 1); !errors.Is(err, want) {
		t.Errorf("SendCC error = %v, want %v", err, want)
	}
}

func TestOutputChannelMasked(t *testing.T) {
	if got := NewOutput(17).Channel(); got != 1 {
		t.Errorf("Channel() = %d, want 1", got)
	}
}

func TestDeviceEventTypeString(t *testing.T) {
	if DeviceConnected.String() != "connected" || DeviceDisconnected.String() != "disconnected" {
		t.Error("unexpected DeviceEventType strings")
	}
	if ControllerFootswitch.String() != "footswitch" {
		t.Errorf("ControllerFootswitch = %q", ControllerFootswitch.String())
	}
}
