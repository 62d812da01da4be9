package midi

import (
	"context"
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-fcb/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// scanTimeout bounds a port listing; some MIDI backends hang.
const scanTimeout = 3 * time.Second

// DeviceManager handles hot-plug detection of the foot controller
type DeviceManager struct {
	match   string
	channel uint8
	handler Handler

	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
}

// NewDeviceManager creates a device manager that opens every input port
// whose name contains match and feeds its messages to handler.
func NewDeviceManager(match string, channel uint8, handler Handler) *DeviceManager {
	return &DeviceManager{
		match:       match,
		channel:     channel,
		handler:     handler,
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// FootController returns the first connected foot controller (or nil)
func (dm *DeviceManager) FootController() Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, c := range dm.controllers {
		if c.Type() == ControllerFootswitch {
			return c
		}
	}
	return nil
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

// Ports lists the current input and output ports, giving up after
// scanTimeout.
func Ports() ([]drivers.In, []drivers.Out, error) {
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.inPorts, r.outPorts, nil
	case <-time.After(scanTimeout):
		return nil, nil, fmt.Errorf("listing ports: timed out after %s", scanTimeout)
	}
}

// FindFootController opens the first port pair matching match. It is the
// one-shot form of what DeviceManager does on every poll.
func FindFootController(match string, channel uint8, handler Handler) (*FootController, error) {
	ins, outs, err := Ports()
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		if MatchesPort(in.String(), match) {
			return NewFootController(in.String(), channel, in, pairedOut(in.String(), match, outs), handler)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoController, match)
}

// pairedOut picks the output port for an input: the one with the same
// name if present, else the first that matches.
func pairedOut(inName, match string, outs []drivers.Out) drivers.Out {
	var fallback drivers.Out
	for _, op := range outs {
		if op.String() == inName {
			return op
		}
		if fallback == nil && MatchesPort(op.String(), match) {
			fallback = op
		}
	}
	return fallback
}

func (dm *DeviceManager) scan() {
	inPorts, outPorts, err := Ports()
	if err != nil {
		// Backend is hung - skip this scan
		debug.LogEvery(10, "midi", "scan skipped: %v", err)
		return
	}

	// Build map of what we see now
	seenIDs := make(map[string]bool)

	for i, inPort := range inPorts {
		if !MatchesPort(inPort.String(), dm.match) {
			continue
		}
		id := inPort.String()
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		fc, err := NewFootController(id, dm.channel, inPorts[i], pairedOut(id, dm.match, outPorts), dm.handler)
		if err != nil {
			debug.Log("midi", "open %q: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = fc
		dm.mu.Unlock()

		dm.emit(DeviceEvent{Type: DeviceConnected, Controller: fc, ID: id})
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []DeviceEvent
	for id, c := range dm.controllers {
		if seenIDs[id] {
			continue
		}
		c.Close()
		delete(dm.controllers, id)
		gone = append(gone, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
	dm.mu.Unlock()

	for _, ev := range gone {
		dm.emit(ev)
	}
}

func (dm *DeviceManager) emit(ev DeviceEvent) {
	debug.Log("midi", "device %s: %s", ev.Type, ev.ID)
	select {
	case dm.events <- ev:
	default:
		debug.Log("midi", "event queue full, dropping %s %s", ev.Type, ev.ID)
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// CloseDriver releases the MIDI backend. Call once on exit.
func CloseDriver() {
	gomidi.CloseDriver()
}
