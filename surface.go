package main

import (
	"context"
	"fmt"

	"gitlab.com/gomidi/midi/v2/drivers"

	"go-fcb/board"
	"go-fcb/config"
	"go-fcb/debug"
	"go-fcb/footswitch"
	"go-fcb/led"
	"go-fcb/midi"
	"go-fcb/modes"
)

// surface is the running board: the bus fed by the controller's input,
// LEDs drawn over its output, and modes sending to the host.
type surface struct {
	cfg *config.Config

	bus      *footswitch.Bus
	ctrlOut  *midi.Output
	hostOut  *midi.Output
	hostPort drivers.Out
	mirror   *led.Mirror
	leds     *led.Controller
	board    *board.Board
	modes    map[string]*modes.Mode
	devices  *midi.DeviceManager

	// status repeats device events for the UI after they are handled.
	status chan midi.DeviceEvent
}

func newSurface(cfg *config.Config) (*surface, error) {
	s := &surface{
		cfg:     cfg,
		bus:     footswitch.NewBus(cfg.GestureOptions()),
		ctrlOut: midi.NewOutput(cfg.Controller.Channel),
		hostOut: midi.NewOutput(cfg.Host.Channel),
		modes:   make(map[string]*modes.Mode),
		status:  make(chan midi.DeviceEvent, 16),
	}
	s.mirror = led.NewMirror(s.ctrlOut)

	all := make([]int, led.NumAddresses)
	for i := range all {
		all[i] = i
	}
	leds, err := led.New(s.mirror, all...)
	if err != nil {
		return nil, err
	}
	s.leds = leds

	indicators, err := leds.Copy(cfg.LEDs.ModeAddresses...)
	if err != nil {
		return nil, fmt.Errorf("mode indicators: %w", err)
	}
	indicators.Activate()
	s.board = board.New(s.bus, indicators, cfg.LEDs.ModeAddresses)

	for _, mc := range cfg.Modes {
		m, err := modes.FromConfig(mc, s.hostOut, leds)
		if err != nil {
			return nil, err
		}
		s.modes[mc.Name] = m
		s.board.Add(m)
	}

	s.bus.OnExpression(s.expression)
	s.devices = midi.NewDeviceManager(cfg.Controller.Port, cfg.Controller.Channel, s.bus.HandleMIDI)
	return s, nil
}

// openHost attaches the host output. Without a host port the board still
// works; mode messages are dropped.
func (s *surface) openHost() error {
	port, err := s.hostOut.OpenOutput(s.cfg.Host.Port)
	if err != nil {
		return err
	}
	s.hostPort = port
	return nil
}

// observe routes every notification to the debug log and then to fn,
// which may be nil.
func (s *surface) observe(fn footswitch.Observer) {
	s.bus.Observe(func(ev footswitch.Event, delivered bool) {
		debug.Log("fsw", "%s delivered=%v", ev, delivered)
		if fn != nil {
			fn(ev, delivered)
		}
	})
}

// run starts the switch loops and handles device events until ctx is
// cancelled.
func (s *surface) run(ctx context.Context) {
	s.bus.Start(ctx)
	go s.devices.Run(ctx)

	for ev := range s.devices.Events() {
		s.handleDevice(ev)
		select {
		case s.status <- ev:
		default:
		}
	}
	close(s.status)
}

func (s *surface) handleDevice(ev midi.DeviceEvent) {
	switch ev.Type {
	case midi.DeviceConnected:
		fc, ok := ev.Controller.(*midi.FootController)
		if !ok {
			return
		}
		s.ctrlOut.Attach(ev.ID, fc.Send)

		// The controller may have lost power; clear it and draw again.
		s.leds.Activate()
		s.board.Redraw()

	case midi.DeviceDisconnected:
		if s.ctrlOut.Name() == ev.ID {
			s.ctrlOut.Detach()
		}
	}
}

// reload rereads the config and replaces macro bindings. Other changes
// need a restart.
func (s *surface) reload(load func() (*config.Config, error)) error {
	cfg, err := load()
	if err != nil {
		return err
	}
	for _, mc := range cfg.Modes {
		if mc.Type != config.ModeMacro {
			continue
		}
		m, ok := s.modes[mc.Name]
		if !ok {
			debug.Log("main", "reload: new mode %q needs a restart", mc.Name)
			continue
		}
		if err := modes.ReloadBindings(m, mc.Bindings); err != nil {
			return err
		}
	}
	debug.Log("main", "reloaded bindings")
	return nil
}

// expression hands a pedal movement to the current mode's macros.
func (s *surface) expression(cc, value uint8) {
	_, cur := s.board.Current()
	m, ok := cur.(*modes.Mode)
	if !ok {
		return
	}
	for _, c := range m.Components() {
		if macro, ok := c.(*modes.Macro); ok && macro.Expression(cc, value) {
			return
		}
	}
	debug.Log("main", "expression cc %d: no parameter assigned", cc)
}

// tempo returns the tap tempo of the first session mode, or nil.
func (s *surface) tempo() func() float64 {
	for _, mc := range s.cfg.Modes {
		m := s.modes[mc.Name]
		for _, c := range m.Components() {
			if t, ok := c.(*modes.TapTempo); ok {
				return t.Tempo
			}
		}
	}
	return nil
}

// close turns every LED off and releases the ports.
func (s *surface) close() {
	s.board.Close()
	for addr := 0; addr < led.NumAddresses; addr++ {
		s.leds.Off(addr)
	}
	s.bus.Close()
	if s.hostPort != nil && s.hostPort.IsOpen() {
		s.hostPort.Close()
	}
	midi.CloseDriver()
}
