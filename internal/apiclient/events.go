package apiclient

import "time"

// AdminLoginLocation is where the application shell should send the user when the admin session ends
const AdminLoginLocation = "/admin-login"

// SessionInvalidated is published when an admin request is rejected with 401.
// By the time subscribers run, the stored admin token has been cleared.
type SessionInvalidated struct {
	Endpoint   string
	RedirectTo string
	At         time.Time
}

// OnSessionInvalidated registers fn to be called on every admin session invalidation.
// Subscribers run synchronously on the goroutine that made the failed call.
// The returned func removes the subscription.
func (c *Client) OnSessionInvalidated(fn func(SessionInvalidated)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListenerID
	c.nextListenerID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) publish(ev SessionInvalidated) {
	c.mu.Lock()
	fns := make([]func(SessionInvalidated), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
