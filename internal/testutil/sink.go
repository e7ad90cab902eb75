// internal/testutil/sink.go
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/carehub/internal/app/store/audit"
)

// MemorySink collects audit events in memory. It satisfies
// auditlog.Sink so service tests can assert on the emitted trail without
// a database, and can be told to fail to exercise the audit-failure
// paths.
type MemorySink struct {
	mu     sync.Mutex
	events []audit.Event

	// Fail makes every Log call return an error.
	Fail bool
}

// Log records the event (or fails when Fail is set).
func (s *MemorySink) Log(ctx context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return errors.New("audit sink unavailable")
	}
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything logged so far.
func (s *MemorySink) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByAction returns the logged events with the given action.
func (s *MemorySink) ByAction(action string) []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
