package midi

import (
	"fmt"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-fcb/debug"
)

var inputCount uint64

// FootController handles the foot controller's port pair. Input goes to a
// Handler (normally the footswitch bus); output carries LED commands.
type FootController struct {
	id       string
	channel  uint8
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()
}

// NewFootController opens the ports. Either port may be nil.
func NewFootController(id string, channel uint8, inPort drivers.In, outPort drivers.Out, handler Handler) (*FootController, error) {
	fc := &FootController{
		id:      id,
		channel: channel,
		inPort:  inPort,
		outPort: outPort,
	}

	// Open output
	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		fc.send = send
	}

	// Open input
	if inPort != nil && handler != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			n := atomic.AddUint64(&inputCount, 1)
			if n%100 == 0 {
				debug.Log("midi", "%s: %d messages received", id, n)
			}
			handler([]byte(msg))
		}, gomidi.HandleError(func(err error) {
			debug.Log("midi", "%s: input error: %v", id, err)
		}))
		if err != nil {
			fc.closeOutput()
			return nil, fmt.Errorf("open input: %w", err)
		}
		fc.stopFunc = stop
	}

	debug.Log("midi", "opened foot controller %q (in=%v out=%v)", id, inPort != nil, outPort != nil)
	return fc, nil
}

func (fc *FootController) ID() string {
	return fc.id
}

func (fc *FootController) Type() ControllerType {
	return ControllerFootswitch
}

// Send writes a raw message to the controller.
func (fc *FootController) Send(msg gomidi.Message) error {
	if fc.send == nil {
		return nil
	}
	return fc.send(msg)
}

func (fc *FootController) SendCC(controller, value uint8) error {
	return fc.Send(gomidi.ControlChange(fc.channel, controller, value))
}

func (fc *FootController) Close() error {
	if fc.stopFunc != nil {
		fc.stopFunc()
		fc.stopFunc = nil
	}
	fc.closeOutput()
	debug.Log("midi", "closed foot controller %q", fc.id)
	return nil
}

func (fc *FootController) closeOutput() {
	if fc.outPort != nil && fc.outPort.IsOpen() {
		fc.outPort.Close()
	}
	fc.send = nil
}
