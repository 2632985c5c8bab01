package activity

import (
	"context"
	"time"
)

const feedBuffer = 64

// Feed is a Source signalled programmatically, e.g. by the terminal UI on
// every key press or mouse event.
type Feed struct {
	name   string
	events chan time.Time
	now    func() time.Time
}

// NewFeed creates a feed source
func NewFeed(name string) *Feed {
	return &Feed{
		name:   name,
		events: make(chan time.Time, feedBuffer),
		now:    time.Now,
	}
}

func (f *Feed) Name() string {
	return f.name
}

// Events returns the feed channel. A Feed has a single consumer.
func (f *Feed) Events(ctx context.Context) (<-chan time.Time, error) {
	return f.events, nil
}

// Signal reports activity now without blocking. When the buffer is full the
// oldest pending event is dropped.
func (f *Feed) Signal() {
	now := f.now()
	for {
		select {
		case f.events <- now:
			return
		default:
		}
		select {
		case <-f.events:
		default:
		}
	}
}
