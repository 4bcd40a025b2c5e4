package archive

import "sync/atomic"

// CancelFlag is a cooperative cancellation flag that any goroutine may set.
// A nil flag is never set.
type CancelFlag struct {
	set atomic.Bool
}

// Set changes the flag.
func (c *CancelFlag) Set(canceled bool) {
	c.set.Store(canceled)
}

// IsSet reports whether cancellation was requested.
func (c *CancelFlag) IsSet() bool {
	if c == nil {
		return false
	}
	return c.set.Load()
}
