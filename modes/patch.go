package modes

import (
	"sync"

	"go-fcb/debug"
	"go-fcb/footswitch"
)

// PatchSelector is a radio group: PRESS on one of its switches sends that
// switch's program change and lights only its LED.
type PatchSelector struct {
	switches []footswitch.Switch
	base     uint8
	host     Host
	leds     LEDs

	mu       sync.Mutex
	selected int // index into switches, -1 for none
	onSelect func(index int)
}

// NewPatchSelector maps switches[i] to program base+i.
func NewPatchSelector(switches []footswitch.Switch, base uint8, host Host, leds LEDs) *PatchSelector {
	return &PatchSelector{
		switches: switches,
		base:     base,
		host:     host,
		leds:     leds,
		selected: -1,
	}
}

func (p *PatchSelector) Layout() footswitch.Layout {
	l := footswitch.NewLayout()
	for i, sw := range p.switches {
		l.Listen(sw, footswitch.EventPress, func(footswitch.Event) { p.Select(i) })
	}
	return l
}

// OnSelect sets a callback run after every selection.
func (p *PatchSelector) OnSelect(fn func(index int)) {
	p.mu.Lock()
	p.onSelect = fn
	p.mu.Unlock()
}

// Select picks patch i. Selecting the current patch sends the program
// change again. Out-of-range indexes are ignored.
func (p *PatchSelector) Select(i int) {
	if i < 0 || i >= len(p.switches) {
		debug.Log("mode", "patch %d out of range (%d patches)", i, len(p.switches))
		return
	}

	p.mu.Lock()
	p.selected = i
	program := p.base + uint8(i)
	debug.Log("mode", "patch %d (program %d)", i, program)
	if err := p.host.SendProgramChange(program); err != nil {
		debug.Log("mode", "program change %d: %v", program, err)
	}
	for j, sw := range p.switches {
		setLED(p.leds, sw, j == i)
	}
	fn := p.onSelect
	p.mu.Unlock()

	if fn != nil {
		fn(i)
	}
}

// Selected returns the selected index, or -1.
func (p *PatchSelector) Selected() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}
