package session

import (
	"log/slog"
	"sync"

	"github.com/aviravastra/storefront/internal/apiclient"
)

// Navigator moves the application to another location
type Navigator interface {
	Navigate(location string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(location string)

func (f NavigatorFunc) Navigate(location string) { f(location) }

// Shell is the outer application layer: it listens for forced admin logouts
// and sends the user to the admin login page.
type Shell struct {
	logger    *slog.Logger
	navigator Navigator

	mu          sync.Mutex
	unsubscribe func()
	last        *apiclient.SessionInvalidated
}

func NewShell(logger *slog.Logger, navigator Navigator) *Shell {
	return &Shell{logger: logger, navigator: navigator}
}

// Attach subscribes the shell to client. Attaching again replaces the previous subscription.
func (s *Shell) Attach(client *apiclient.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.unsubscribe = client.OnSessionInvalidated(s.handle)
}

func (s *Shell) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Invalidated returns the most recent forced logout seen by the shell
func (s *Shell) Invalidated() (apiclient.SessionInvalidated, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return apiclient.SessionInvalidated{}, false
	}
	return *s.last, true
}

func (s *Shell) handle(ev apiclient.SessionInvalidated) {
	s.mu.Lock()
	s.last = &ev
	s.mu.Unlock()

	s.logger.Warn("admin session invalidated",
		slog.String("endpoint", ev.Endpoint),
		slog.String("redirect_to", ev.RedirectTo),
	)
	s.navigator.Navigate(ev.RedirectTo)
}
