package midi

import (
	"fmt"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-fcb/debug"
)

// Output is a send target that can be attached to and detached from a
// port while the rest of the program keeps a reference to it. Messages
// sent while detached are dropped.
type Output struct {
	mu      sync.RWMutex
	name    string
	channel uint8
	send    func(msg gomidi.Message) error
}

// NewOutput returns a detached output sending on channel (0-15).
func NewOutput(channel uint8) *Output {
	return &Output{channel: channel & 0x0F}
}

// Attach routes messages to send. name is only used for logging.
func (o *Output) Attach(name string, send func(msg gomidi.Message) error) {
	o.mu.Lock()
	o.name, o.send = name, send
	o.mu.Unlock()
	debug.Log("midi", "output attached to %q", name)
}

// Detach drops messages until the next Attach.
func (o *Output) Detach() {
	o.mu.Lock()
	name := o.name
	o.name, o.send = "", nil
	o.mu.Unlock()
	if name != "" {
		debug.Log("midi", "output detached from %q", name)
	}
}

// Connected reports whether a port is attached.
func (o *Output) Connected() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.send != nil
}

// Name returns the attached port name, or "" when detached.
func (o *Output) Name() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.name
}

// Channel returns the channel messages are sent on.
func (o *Output) Channel() uint8 {
	return o.channel
}

// Send writes msg to the attached port.
func (o *Output) Send(msg gomidi.Message) error {
	o.mu.RLock()
	send := o.send
	o.mu.RUnlock()

	if send == nil {
		debug.LogEvery(50, "midi", "output detached, dropping %s", msg)
		return nil
	}
	return send(msg)
}

// SendCC sends a control change on the output's channel.
func (o *Output) SendCC(controller, value uint8) error {
	return o.Send(gomidi.ControlChange(o.channel, controller, value))
}

// SendProgramChange sends a program change on the output's channel.
func (o *Output) SendProgramChange(program uint8) error {
	return o.Send(gomidi.ProgramChange(o.channel, program))
}

// OpenOutput finds the output port whose name contains match (case
// insensitive) and attaches o to it. It returns the opened port so the
// caller can close it.
func (o *Output) OpenOutput(match string) (drivers.Out, error) {
	port, err := findOutPort(match)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", port.String(), err)
	}
	o.Attach(port.String(), send)
	return port, nil
}

func findOutPort(match string) (drivers.Out, error) {
	for _, p := range gomidi.GetOutPorts() {
		if MatchesPort(p.String(), match) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoPort, match)
}

// MatchesPort reports whether a port name contains match, ignoring case.
// An empty match never matches.
func MatchesPort(name, match string) bool {
	match = strings.TrimSpace(match)
	if match == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(match))
}
