// Package led drives the foot controller's indicator LEDs.
//
// A Controller remembers the last command sent to each address. While
// active it also emits them; while inactive it only records, and Activate
// redraws everything it remembers. The same redraw is used after the
// hardware lost power.
package led

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go-fcb/debug"
)

// Control numbers understood by the controller. The value is the address.
const (
	ControlOn  uint8 = 106
	ControlOff uint8 = 107
)

// NumAddresses is the size of the LED address space (0-22).
const NumAddresses = 23

// Blink timing
const (
	FastBlink = 300 * time.Millisecond
	SlowBlink = 800 * time.Millisecond

	// OnPhase is how long the first half of every blink cycle lasts.
	OnPhase = 100 * time.Millisecond
)

// Transport sends one control change to the hardware.
type Transport interface {
	SendCC(controller, value uint8) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(controller, value uint8) error

func (f TransportFunc) SendCC(controller, value uint8) error { return f(controller, value) }

// CommandKind is what was last asked of an LED.
type CommandKind int

const (
	CommandOff CommandKind = iota
	CommandOn
	CommandBlinkOn
	CommandBlinkOff
)

var commandNames = [...]string{
	CommandOff:      "off",
	CommandOn:       "on",
	CommandBlinkOn:  "blink-on",
	CommandBlinkOff: "blink-off",
}

func (k CommandKind) String() string {
	if k < 0 || int(k) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[k]
}

// Command is a remembered LED command. Period only applies to blinks.
type Command struct {
	Kind   CommandKind
	Period time.Duration
}

func (c Command) String() string {
	switch c.Kind {
	case CommandBlinkOn, CommandBlinkOff:
		return fmt.Sprintf("%s/%s", c.Kind, c.Period)
	}
	return c.Kind.String()
}

// Blinking reports whether the command runs a blink loop.
func (c Command) Blinking() bool {
	return c.Kind == CommandBlinkOn || c.Kind == CommandBlinkOff
}

type slot struct {
	mu   sync.Mutex
	cmd  Command
	set  bool
	stop chan struct{} // closed to end the running blink loop, nil if none
}

// Controller drives a set of addresses over a Transport.
type Controller struct {
	transport Transport
	slots     [NumAddresses]*slot // nil for addresses this controller does not own
	active    atomic.Bool
}

// New returns an active controller owning every address. Each address in
// initializeOff is turned off immediately.
func New(t Transport, initializeOff ...int) (*Controller, error) {
	c := &Controller{transport: t}
	for i := range c.slots {
		c.slots[i] = &slot{}
	}
	c.active.Store(true)
	if err := c.initOff(initializeOff); err != nil {
		return nil, err
	}
	return c, nil
}

// Copy returns an inactive sibling controller sharing the transport but
// owning only addrs. Each address is remembered as off without sending
// anything, so the first Activate clears whatever another controller
// left lit there. Its memory is independent of c.
func (c *Controller) Copy(addrs ...int) (*Controller, error) {
	cp := &Controller{transport: c.transport}
	for _, addr := range addrs {
		if addr < 0 || addr >= NumAddresses {
			return nil, fmt.Errorf("%w: %d", ErrAddressOutOfRange, addr)
		}
		cp.slots[addr] = &slot{cmd: Command{Kind: CommandOff}, set: true}
	}
	return cp, nil
}

func (c *Controller) initOff(addrs []int) error {
	for _, addr := range addrs {
		if err := c.Off(addr); err != nil {
			return err
		}
	}
	return nil
}

// On lights addr.
func (c *Controller) On(addr int) error {
	return c.command(addr, Command{Kind: CommandOn})
}

// Off darkens addr.
func (c *Controller) Off(addr int) error {
	return c.command(addr, Command{Kind: CommandOff})
}

// BlinkOn blinks addr, mostly dark with a short flash every period. A
// period <= 0 means SlowBlink.
func (c *Controller) BlinkOn(addr int, period time.Duration) error {
	return c.command(addr, Command{Kind: CommandBlinkOn, Period: blinkPeriod(period)})
}

// BlinkOff blinks addr, mostly lit with a short gap every period.
func (c *Controller) BlinkOff(addr int, period time.Duration) error {
	return c.command(addr, Command{Kind: CommandBlinkOff, Period: blinkPeriod(period)})
}

func blinkPeriod(p time.Duration) time.Duration {
	if p <= 0 {
		return SlowBlink
	}
	return p
}

func (c *Controller) slot(addr int) (*slot, error) {
	if addr < 0 || addr >= NumAddresses {
		return nil, fmt.Errorf("%w: %d", ErrAddressOutOfRange, addr)
	}
	s := c.slots[addr]
	if s == nil {
		return nil, fmt.Errorf("%w: %d", ErrAddressNotOwned, addr)
	}
	return s, nil
}

func (c *Controller) command(addr int, cmd Command) error {
	s, err := c.slot(addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.halt()
	s.cmd, s.set = cmd, true
	if c.active.Load() {
		c.run(addr, s)
	}
	return nil
}

// run executes the slot's remembered command. Caller holds s.mu.
func (c *Controller) run(addr int, s *slot) {
	switch s.cmd.Kind {
	case CommandOn:
		c.send(ControlOn, addr)
	case CommandOff:
		c.send(ControlOff, addr)
	case CommandBlinkOn:
		c.send(ControlOn, addr)
		s.stop = make(chan struct{})
		go c.blink(addr, s, s.stop, ControlOn, ControlOff, s.cmd.Period)
	case CommandBlinkOff:
		c.send(ControlOff, addr)
		s.stop = make(chan struct{})
		go c.blink(addr, s, s.stop, ControlOff, ControlOn, s.cmd.Period)
	}
}

// halt ends the slot's blink loop. Caller holds s.mu.
func (s *slot) halt() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// blink continues a cycle whose first phase was already emitted by run,
// alternating first (held for OnPhase) and second (held for period) until
// stop is closed. Every emission happens under the slot lock after
// checking stop, so a superseding command is never followed by a stale
// pulse.
func (c *Controller) blink(addr int, s *slot, stop <-chan struct{}, first, second uint8, period time.Duration) {
	ccs := [2]uint8{first, second}
	waits := [2]time.Duration{OnPhase, period}

	for i := 0; ; i ^= 1 {
		t := time.NewTimer(waits[i])
		select {
		case <-stop:
			t.Stop()
			return
		case <-t.C:
		}

		s.mu.Lock()
		select {
		case <-stop:
			s.mu.Unlock()
			return
		default:
		}
		c.send(ccs[i^1], addr)
		s.mu.Unlock()
	}
}

func (c *Controller) send(cc uint8, addr int) {
	if err := c.transport.SendCC(cc, uint8(addr)); err != nil {
		debug.Log("led", "send cc %d value %d: %v", cc, addr, err)
	}
}

// Activate resumes output and redraws every remembered command in
// address order. Calling it while already active is a redraw.
func (c *Controller) Activate() {
	c.active.Store(true)
	for addr, s := range c.slots {
		if s == nil {
			continue
		}
		s.mu.Lock()
		s.halt()
		if s.set {
			c.run(addr, s)
		}
		s.mu.Unlock()
	}
}

// Deactivate stops every blink loop and suppresses output. Commands
// issued while inactive are remembered for the next Activate.
func (c *Controller) Deactivate() {
	c.active.Store(false)
	for _, s := range c.slots {
		if s == nil {
			continue
		}
		s.mu.Lock()
		s.halt()
		s.mu.Unlock()
	}
}

// Active reports whether commands are being emitted.
func (c *Controller) Active() bool {
	return c.active.Load()
}

// Owns reports whether addr belongs to this controller.
func (c *Controller) Owns(addr int) bool {
	return addr >= 0 && addr < NumAddresses && c.slots[addr] != nil
}

// Addresses returns the owned addresses in ascending order.
func (c *Controller) Addresses() []int {
	var out []int
	for addr, s := range c.slots {
		if s != nil {
			out = append(out, addr)
		}
	}
	return out
}

// Last returns the remembered command for addr. ok is false if nothing
// was ever commanded or addr is not owned.
func (c *Controller) Last(addr int) (cmd Command, ok bool) {
	s, err := c.slot(addr)
	if err != nil {
		return Command{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd, s.set
}

// Snapshot returns every remembered command keyed by address.
func (c *Controller) Snapshot() map[int]Command {
	out := make(map[int]Command)
	for addr, s := range c.slots {
		if s == nil {
			continue
		}
		s.mu.Lock()
		if s.set {
			out[addr] = s.cmd
		}
		s.mu.Unlock()
	}
	return out
}

// String lists the remembered commands, for debug output.
func (c *Controller) String() string {
	snap := c.Snapshot()
	addrs := make([]int, 0, len(snap))
	for addr := range snap {
		addrs = append(addrs, addr)
	}
	sort.Ints(addrs)

	out := ""
	for i, addr := range addrs {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%d:%s", addr, snap[addr])
	}
	return out
}
