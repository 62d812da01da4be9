package footswitch

// Layout maps (switch, event kind) to the callback a mode wants to run.
// Build it with Listen, combine with Union, then hand it to Bus.Install.
type Layout struct {
	callbacks map[Switch]map[EventKind]Callback
}

// NewLayout returns an empty layout.
func NewLayout() Layout {
	return Layout{callbacks: make(map[Switch]map[EventKind]Callback)}
}

// Listen registers cb for kind on s, replacing any previous entry.
func (l *Layout) Listen(s Switch, kind EventKind, cb Callback) *Layout {
	if l.callbacks == nil {
		l.callbacks = make(map[Switch]map[EventKind]Callback)
	}
	m, ok := l.callbacks[s]
	if !ok {
		m = make(map[EventKind]Callback)
		l.callbacks[s] = m
	}
	m[kind] = cb
	return l
}

// Union copies every entry of other into l; entries of other win on
// collision. other is not modified.
func (l *Layout) Union(other Layout) *Layout {
	for s, m := range other.callbacks {
		for kind, cb := range m {
			l.Listen(s, kind, cb)
		}
	}
	return l
}

// Callback returns the callback for (s, kind).
func (l Layout) Callback(s Switch, kind EventKind) (Callback, bool) {
	cb, ok := l.callbacks[s][kind]
	return cb, ok
}

// Kinds returns the set of kinds registered for s.
func (l Layout) Kinds(s Switch) Kinds {
	var ks Kinds
	for kind := range l.callbacks[s] {
		ks = ks.With(kind)
	}
	return ks
}

// Switches returns the switches that have at least one entry, in
// declaration order.
func (l Layout) Switches() []Switch {
	var out []Switch
	for _, s := range All() {
		if len(l.callbacks[s]) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Len is the number of (switch, kind) entries.
func (l Layout) Len() int {
	n := 0
	for _, m := range l.callbacks {
		n += len(m)
	}
	return n
}

// Each calls fn for every entry.
func (l Layout) Each(fn func(s Switch, kind EventKind, cb Callback)) {
	for _, s := range l.Switches() {
		for _, kind := range AllKinds {
			if cb, ok := l.callbacks[s][kind]; ok {
				fn(s, kind, cb)
			}
		}
	}
}
