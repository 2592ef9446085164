package core

import (
	"time"

	"github.com/benbjohnson/clock"
)

type wallClock struct {
	source clock.Clock
}

// NewClock adapts a benbjohnson clock (real or mock) to Clock. A nil source
// uses the wall clock.
func NewClock(source clock.Clock) Clock {
	if source == nil {
		source = clock.New()
	}
	return wallClock{source: source}
}

func (c wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.source.AfterFunc(d, f)
}
