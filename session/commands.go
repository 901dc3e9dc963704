package session

import "github.com/plus3/blockfall/feedback"

// Commands buffers side effects that must not run while systems are still
// mutating the board. They are flushed once per frame, after the last system.
type Commands struct {
	notifications []feedback.Kind
	defers        []func()
}

func newCommands() *Commands {
	return &Commands{}
}

// Notify queues a feedback notification.
func (c *Commands) Notify(k feedback.Kind) {
	c.notifications = append(c.notifications, k)
}

// Defer queues a function to run after notifications are delivered.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Flush delivers queued notifications, runs deferred functions, and resets the buffer.
func (c *Commands) Flush(n feedback.Notifier) {
	for _, k := range c.notifications {
		n.Notify(k)
	}

	for _, fn := range c.defers {
		fn()
	}

	c.notifications = c.notifications[:0]
	c.defers = c.defers[:0]
}
