package led

import "sync"

// Change is one physical LED transition seen by a Mirror.
type Change struct {
	Address int
	Lit     bool
}

// Mirror is a Transport that tracks which LEDs are physically lit and
// forwards every message to next (which may be nil, for simulation).
type Mirror struct {
	next Transport

	mu  sync.RWMutex
	lit [NumAddresses]bool

	changes chan Change
}

// NewMirror wraps next.
func NewMirror(next Transport) *Mirror {
	return &Mirror{next: next, changes: make(chan Change, 256)}
}

// SendCC records the state change and forwards it.
func (m *Mirror) SendCC(controller, value uint8) error {
	if int(value) < NumAddresses && (controller == ControlOn || controller == ControlOff) {
		lit := controller == ControlOn
		m.mu.Lock()
		changed := m.lit[value] != lit
		m.lit[value] = lit
		m.mu.Unlock()

		if changed {
			select {
			case m.changes <- Change{Address: int(value), Lit: lit}:
			default:
				// Slow reader; State is still authoritative.
			}
		}
	}

	if m.next == nil {
		return nil
	}
	return m.next.SendCC(controller, value)
}

// Lit reports whether addr is currently lit.
func (m *Mirror) Lit(addr int) bool {
	if addr < 0 || addr >= NumAddresses {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lit[addr]
}

// State returns the lit flag of every address.
func (m *Mirror) State() [NumAddresses]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lit
}

// Changes delivers lit/unlit transitions. Changes are dropped when the
// reader falls behind.
func (m *Mirror) Changes() <-chan Change {
	return m.changes
}
