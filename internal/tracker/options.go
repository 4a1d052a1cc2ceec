package tracker

import (
	"time"

	"github.com/benvon/flow/internal/events"
)

const (
	// DefaultTickInterval is how often the elapsed counter advances while tracking
	DefaultTickInterval = time.Second
	errorBufferSize     = 16
)

// Option configures a Tracker
type Option func(*Tracker)

// WithClock overrides the clock used for elapsed time
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithTickInterval overrides the tick period
func WithTickInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithLocation sets the zone used for the started-at label
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithPublisher sets the publisher for timer transition events
func WithPublisher(p events.Publisher) Option {
	return func(t *Tracker) {
		if p != nil {
			t.publisher = p
		}
	}
}
