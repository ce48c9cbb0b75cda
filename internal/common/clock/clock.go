package clock

import "time"

type Clock interface {
	Now() time.Time
}

// DefaultClock implements Clock using the system clock
type DefaultClock struct{}

func (c *DefaultClock) Now() time.Time {
	return time.Now()
}
