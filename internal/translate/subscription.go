package translate

import (
	"context"
	"sync"
)

// Subscription serialises translation requests for a single consumer. Each
// request gets a monotonically increasing id; a newer request supersedes any
// older in-flight one, whose result is discarded on arrival so it can never
// overwrite newer state. Cancellation is logical only: the backend call is
// not aborted.
type Subscription struct {
	queue *Queue

	mu     sync.Mutex
	latest uint64
}

// Subscribe creates a Subscription bound to the queue.
func (q *Queue) Subscribe() *Subscription {
	return &Subscription{queue: q}
}

// Translate resolves text for this subscription. Disabled requests return
// the original text immediately. Superseded requests return the original
// text with ReasonSuperseded.
func (s *Subscription) Translate(ctx context.Context, text string, target Language, authToken string, enabled bool) Result {
	if !enabled {
		return fallback(text, ReasonDisabled)
	}

	s.mu.Lock()
	s.latest++
	id := s.latest
	s.mu.Unlock()

	res := s.queue.Translate(ctx, text, target, authToken)

	s.mu.Lock()
	superseded := id != s.latest
	s.mu.Unlock()

	if superseded {
		return fallback(text, ReasonSuperseded)
	}
	return res
}

// Cancel invalidates any in-flight request, as if a newer one had arrived.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	s.latest++
	s.mu.Unlock()
}
