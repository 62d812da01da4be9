package tui

import (
	"time"

	"go-fcb/footswitch"
)

// Notification is one gesture the bus produced.
type Notification struct {
	Event     footswitch.Event
	Delivered bool
	At        time.Time
}

// Feed buffers bus notifications for the model. Its Observe method is a
// footswitch.Observer; when the buffer is full new notifications are
// dropped.
type Feed struct {
	events chan Notification
	now    func() time.Time
}

func NewFeed(size int) *Feed {
	return &Feed{events: make(chan Notification, size), now: time.Now}
}

func (f *Feed) Observe(ev footswitch.Event, delivered bool) {
	select {
	case f.events <- Notification{Event: ev, Delivered: delivered, At: f.now()}:
	default:
	}
}

func (f *Feed) Events() <-chan Notification {
	return f.events
}
