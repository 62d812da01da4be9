package footswitch

import "strings"

// EventKind is one kind of notification a switch can produce. Kinds are
// independent bits so a set of them fits in a Kinds mask.
type EventKind uint8

const (
	// Physical events, the switch went down or up.
	EventDown EventKind = 1 << iota
	EventUp

	// Abstract events derived from the timing of downs and ups.
	EventPress
	EventLongPress
	EventDoublePress
)

// Kinds is a set of EventKind bits.
type Kinds uint8

// AllKinds lists every EventKind in notification order.
var AllKinds = []EventKind{EventDown, EventUp, EventPress, EventLongPress, EventDoublePress}

func (k EventKind) String() string {
	switch k {
	case EventDown:
		return "DOWN"
	case EventUp:
		return "UP"
	case EventPress:
		return "PRESS"
	case EventLongPress:
		return "LONG_PRESS"
	case EventDoublePress:
		return "DOUBLE_PRESS"
	}
	return "UNKNOWN"
}

// Has reports whether k is in the set.
func (ks Kinds) Has(k EventKind) bool {
	return ks&Kinds(k) != 0
}

// With returns the set plus k.
func (ks Kinds) With(k EventKind) Kinds {
	return ks | Kinds(k)
}

func (ks Kinds) String() string {
	var names []string
	for _, k := range AllKinds {
		if ks.Has(k) {
			names = append(names, k.String())
		}
	}
	return strings.Join(names, "|")
}

// Event is a single notification delivered to a callback.
type Event struct {
	Switch Switch
	Kind   EventKind
}

func (e Event) String() string {
	return e.Switch.String() + " " + e.Kind.String()
}

// Callback receives the notifications a layout registered for.
// Callbacks for one switch run sequentially on that switch's goroutine;
// callbacks for different switches may run concurrently.
type Callback func(Event)

// RawTransition is a single physical edge decoded from the controller.
type RawTransition struct {
	Switch Switch
	Down   bool
}

func (t RawTransition) String() string {
	if t.Down {
		return t.Switch.String() + " down"
	}
	return t.Switch.String() + " up"
}
