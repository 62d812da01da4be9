package board

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go-fcb/footswitch"
)

// fakeMode binds PRESS on one switch and records its lifecycle.
type fakeMode struct {
	name     string
	sw       footswitch.Switch
	kind     footswitch.EventKind
	mu       sync.Mutex
	log      []string
	onChange func()
}

func (m *fakeMode) Name() string { return m.name }

func (m *fakeMode) Layout() footswitch.Layout {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := footswitch.NewLayout()
	l.Listen(m.sw, m.kind, func(footswitch.Event) {})
	return l
}

func (m *fakeMode) Activate()   { m.record("activate") }
func (m *fakeMode) Deactivate() { m.record("deactivate") }

func (m *fakeMode) OnLayoutChanged(fn func()) { m.onChange = fn }

func (m *fakeMode) rebind(kind footswitch.EventKind) {
	m.mu.Lock()
	m.kind = kind
	m.mu.Unlock()
	m.onChange()
}

func (m *fakeMode) record(s string) {
	m.mu.Lock()
	m.log = append(m.log, s)
	m.mu.Unlock()
}

func (m *fakeMode) history() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.log, ",")
}

// fakeLEDs tracks which addresses are lit.
type fakeLEDs struct {
	mu  sync.Mutex
	lit map[int]bool
}

func newFakeLEDs() *fakeLEDs { return &fakeLEDs{lit: make(map[int]bool)} }

func (l *fakeLEDs) On(addr int) error  { return l.set(addr, true) }
func (l *fakeLEDs) Off(addr int) error { return l.set(addr, false) }

func (l *fakeLEDs) set(addr int, on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lit[addr] = on
	return nil
}

func (l *fakeLEDs) isLit(addr int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lit[addr]
}

func newBoard(t *testing.T) (*Board, *footswitch.Bus, *fakeLEDs, []*fakeMode) {
	t.Helper()
	bus := footswitch.NewBus(footswitch.DefaultOptions())
	leds := newFakeLEDs()
	b := New(bus, leds, []int{20, 21, 22})

	modes := []*fakeMode{
		{name: "a", sw: footswitch.One, kind: footswitch.EventPress},
		{name: "b", sw: footswitch.Two, kind: footswitch.EventPress},
		{name: "c", sw: footswitch.Three, kind: footswitch.EventPress},
	}
	for _, m := range modes {
		b.Add(m)
	}
	return b, bus, leds, modes
}

func currentIndex(b *Board) int {
	i, _ := b.Current()
	return i
}

func TestFirstModeBecomesCurrent(t *testing.T) {
	b, bus, leds, modes := newBoard(t)

	if currentIndex(b) != 0 {
		t.Fatalf("current = %d, want 0", currentIndex(b))
	}
	if got := modes[0].history(); got != "activate" {
		t.Errorf("mode a history = %q", got)
	}
	if got := modes[1].history(); got != "deactivate" {
		t.Errorf("mode b history = %q", got)
	}
	if !leds.isLit(20) || leds.isLit(21) {
		t.Errorf("mode leds 20=%v 21=%v", leds.isLit(20), leds.isLit(21))
	}

	reg := bus.Registered()
	if !reg[footswitch.One].Has(footswitch.EventPress) || reg[footswitch.Two] != 0 {
		t.Errorf("registered = %v", reg)
	}
	if !reg[footswitch.Up].Has(footswitch.EventPress) || !reg[footswitch.Down].Has(footswitch.EventPress) {
		t.Error("navigation layout not installed")
	}
}

func TestNextPrevWrap(t *testing.T) {
	b, _, _, _ := newBoard(t)

	var seen []int
	for i := 0; i < 4; i++ {
		b.Next()
		seen = append(seen, currentIndex(b))
	}
	if want := []int{1, 2, 0, 1}; !equalInts(seen, want) {
		t.Errorf("Next sequence = %v, want %v", seen, want)
	}

	seen = nil
	for i := 0; i < 3; i++ {
		b.Prev()
		seen = append(seen, currentIndex(b))
	}
	if want := []int{0, 2, 1}; !equalInts(seen, want) {
		t.Errorf("Prev sequence = %v, want %v", seen, want)
	}
}

func TestSetModeSwapsLayoutAndLEDs(t *testing.T) {
	b, bus, leds, modes := newBoard(t)

	var changed []string
	b.OnModeChanged(func(i int, m Mode) { changed = append(changed, m.Name()) })

	if err := b.SetMode(2); err != nil {
		t.Fatal(err)
	}

	reg := bus.Registered()
	if reg[footswitch.One] != 0 || !reg[footswitch.Three].Has(footswitch.EventPress) {
		t.Errorf("registered = %v", reg)
	}
	if leds.isLit(20) || !leds.isLit(22) {
		t.Errorf("mode leds 20=%v 22=%v", leds.isLit(20), leds.isLit(22))
	}
	if got := modes[0].history(); got != "activate,deactivate" {
		t.Errorf("mode a history = %q", got)
	}
	if got := modes[2].history(); got != "deactivate,activate" {
		t.Errorf("mode c history = %q", got)
	}

	// Already current: nothing happens.
	if err := b.SetMode(2); err != nil {
		t.Fatal(err)
	}
	if got := modes[2].history(); got != "deactivate,activate" {
		t.Errorf("re-selecting current mode changed history to %q", got)
	}
	if len(changed) != 1 || changed[0] != "c" {
		t.Errorf("OnModeChanged saw %v", changed)
	}

	if err := b.SetMode(3); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("SetMode(3) error = %v", err)
	}
}

func TestModeChangedCallbackCanQueryBoard(t *testing.T) {
	b, _, _, _ := newBoard(t)

	type seen struct {
		current int
		names   int
	}
	done := make(chan seen, 1)
	b.OnModeChanged(func(int, Mode) {
		i, _ := b.Current()
		done <- seen{current: i, names: len(b.Names())}
	})

	go b.Next()
	select {
	case got := <-done:
		if got.current != 1 || got.names != 3 {
			t.Errorf("callback saw %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("OnModeChanged callback blocked on the board")
	}
}

func TestModesWithoutIndicator(t *testing.T) {
	bus := footswitch.NewBus(footswitch.DefaultOptions())
	leds := newFakeLEDs()
	b := New(bus, leds, []int{20})
	b.Add(&fakeMode{name: "a", sw: footswitch.One, kind: footswitch.EventPress})
	b.Add(&fakeMode{name: "b", sw: footswitch.Two, kind: footswitch.EventPress})

	b.Next()
	if leds.isLit(20) {
		t.Error("indicator 20 still lit after leaving mode 0")
	}
	if got := b.Names(); len(got) != 2 || got[1] != "b" {
		t.Errorf("Names() = %v", got)
	}
}

func TestRelayoutOnlyForCurrentMode(t *testing.T) {
	b, bus, _, modes := newBoard(t)

	modes[0].rebind(footswitch.EventLongPress)
	reg := bus.Registered()[footswitch.One]
	if reg.Has(footswitch.EventPress) || !reg.Has(footswitch.EventLongPress) {
		t.Errorf("switch one after relayout = %s", reg)
	}

	// Mode b is not current; its change must not touch the bus.
	modes[1].rebind(footswitch.EventDoublePress)
	if got := bus.Registered()[footswitch.Two]; got != 0 {
		t.Errorf("inactive mode installed %s", got)
	}

	b.Next()
	if got := bus.Registered()[footswitch.Two]; got != footswitch.Kinds(footswitch.EventDoublePress) {
		t.Errorf("mode b layout = %s", got)
	}
}

func TestNavigationSwitchesChangeMode(t *testing.T) {
	b, bus, _, _ := newBoard(t)
	done := make(chan int, 4)
	b.OnModeChanged(func(i int, _ Mode) { done <- i })

	ok := false
	// Drive the callback the way the DOWN disambiguator would.
	down := bus.Channel(footswitch.Down)
	if down.Registered() != footswitch.Kinds(footswitch.EventPress) {
		t.Fatalf("DOWN registered = %s", down.Registered())
	}
	b.nav.Each(func(s footswitch.Switch, kind footswitch.EventKind, fn footswitch.Callback) {
		if s == footswitch.Down {
			fn(footswitch.Event{Switch: s, Kind: kind})
			ok = true
		}
	})
	if !ok {
		t.Fatal("no DOWN callback in navigation layout")
	}
	if got := <-done; got != 1 {
		t.Errorf("DOWN moved to %d, want 1", got)
	}
}

func TestRedraw(t *testing.T) {
	b, _, leds, modes := newBoard(t)
	leds.set(20, false)

	b.Redraw()
	if got := modes[0].history(); got != "activate,activate" {
		t.Errorf("mode a history = %q", got)
	}
	if !leds.isLit(20) {
		t.Error("indicator not relit")
	}
	if got := modes[1].history(); got != "deactivate" {
		t.Errorf("mode b history = %q", got)
	}
}

func TestClose(t *testing.T) {
	b, bus, _, modes := newBoard(t)
	b.Close()

	for s, k := range bus.Registered() {
		if k != 0 {
			t.Errorf("%s still has %s after Close", s, k)
		}
	}
	if got := modes[0].history(); got != "activate,deactivate" {
		t.Errorf("mode a history = %q", got)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
