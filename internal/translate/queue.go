// Package translate implements the shared translation request queue: a
// process-wide FIFO scheduler that spaces outbound calls, deduplicates via a
// cache, and trips a circuit breaker after repeated failures. Callers always
// get a usable string back; degradation to the original text is silent.
package translate

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ilisirali/EA/internal/observability"
)

// Language is a supported target language code.
type Language string

const (
	LanguageDutch   Language = "nl"
	LanguageEnglish Language = "en"
	LanguageTurkish Language = "tr"
	LanguageArabic  Language = "ar"
)

// KnownLanguage reports whether the code is one of the supported targets.
func KnownLanguage(code string) bool {
	switch Language(code) {
	case LanguageDutch, LanguageEnglish, LanguageTurkish, LanguageArabic:
		return true
	}
	return false
}

// Fallback reasons carried on non-translated results.
const (
	ReasonEmptyText    = "empty_text"
	ReasonDisabled     = "disabled"
	ReasonNoSession    = "no_session"
	ReasonCircuitOpen  = "circuit_open"
	ReasonBackendError = "backend_error"
	ReasonSuperseded   = "superseded"
	ReasonCanceled     = "canceled"
)

// Result is the outcome of a translation request. Translated distinguishes a
// real translation from a fallback to the original text; the UI treats both
// the same but observability must not.
type Result struct {
	Text       string
	Translated bool
	Cached     bool
	Reason     string
}

func fallback(text, reason string) Result {
	observability.RecordTranslation(reason)
	return Result{Text: text, Reason: reason}
}

// Backend performs a single translation call.
type Backend interface {
	Translate(ctx context.Context, text string, target Language, authToken string) (string, error)
}

// cacheKeyLength bounds the cache key to the first 100 runes of the source text.
const cacheKeyLength = 100

type cacheKey struct {
	prefix   string
	language Language
}

func keyFor(text string, target Language) cacheKey {
	runes := []rune(text)
	if len(runes) > cacheKeyLength {
		runes = runes[:cacheKeyLength]
	}
	return cacheKey{prefix: string(runes), language: target}
}

type task struct {
	text      string
	target    Language
	authToken string
	done      chan Result
}

func (t *task) resolve(res Result) {
	t.done <- res
	close(t.done)
}

// Queue is the process-wide translation scheduler. Construct exactly one per
// process and share it; all state lives for the lifetime of the queue.
type Queue struct {
	backend     Backend
	now         func() time.Time
	sleep       func(d time.Duration)
	minInterval time.Duration
	maxFailures int
	cooldown    time.Duration
	callTimeout time.Duration
	logger      *log.Logger

	mu                  sync.Mutex
	cache               map[cacheKey]string
	pending             []*task
	draining            bool
	lastRequest         time.Time
	consecutiveFailures int
	circuitOpenUntil    time.Time
}

// Option customises queue construction.
type Option func(*Queue)

// WithClock injects the time source and sleeper, so tests can run without
// real 2500 ms / 60 s waits.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(q *Queue) {
		q.now = now
		q.sleep = sleep
	}
}

// WithMinInterval overrides the global minimum spacing between dispatches.
func WithMinInterval(d time.Duration) Option {
	return func(q *Queue) { q.minInterval = d }
}

// WithFailureThreshold overrides the consecutive-failure count that opens the circuit.
func WithFailureThreshold(n int) Option {
	return func(q *Queue) { q.maxFailures = n }
}

// WithCooldown overrides how long the circuit stays open.
func WithCooldown(d time.Duration) Option {
	return func(q *Queue) { q.cooldown = d }
}

// WithCallTimeout overrides the per-dispatch backend timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(q *Queue) { q.callTimeout = d }
}

// WithLogger overrides the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(q *Queue) { q.logger = logger }
}

// NewQueue constructs a Queue with production defaults: 2500 ms spacing,
// circuit opens after 3 consecutive failures for 60 s.
func NewQueue(backend Backend, opts ...Option) *Queue {
	q := &Queue{
		backend:     backend,
		now:         time.Now,
		sleep:       time.Sleep,
		minInterval: 2500 * time.Millisecond,
		maxFailures: 3,
		cooldown:    time.Minute,
		callTimeout: 15 * time.Second,
		logger:      log.Default(),
		cache:       make(map[cacheKey]string),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Translate resolves text into the target language. It never returns an
// error: on any failure the original text comes back with a fallback reason.
// Empty text, a missing auth token, or a cache hit resolve synchronously
// without touching the queue.
func (q *Queue) Translate(ctx context.Context, text string, target Language, authToken string) Result {
	select {
	case res := <-q.Submit(ctx, text, target, authToken):
		return res
	case <-ctx.Done():
		return fallback(text, ReasonCanceled)
	}
}

// Submit enqueues a translation and returns the channel its result will be
// delivered on. The channel always receives exactly one Result.
func (q *Queue) Submit(ctx context.Context, text string, target Language, authToken string) <-chan Result {
	done := make(chan Result, 1)

	if strings.TrimSpace(text) == "" {
		done <- fallback(text, ReasonEmptyText)
		close(done)
		return done
	}
	if authToken == "" {
		done <- fallback(text, ReasonNoSession)
		close(done)
		return done
	}

	q.mu.Lock()
	if cached, ok := q.cache[keyFor(text, target)]; ok {
		q.mu.Unlock()
		observability.RecordTranslation("cached")
		done <- Result{Text: cached, Translated: true, Cached: true}
		close(done)
		return done
	}

	t := &task{text: text, target: target, authToken: authToken, done: done}
	q.pending = append(q.pending, t)
	observability.SetTranslationQueueDepth(len(q.pending))
	start := !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
	return done
}

// breakerOpen reports whether the circuit is open at the given instant.
// Callers must hold q.mu.
func (q *Queue) breakerOpen(now time.Time) bool {
	return q.consecutiveFailures >= q.maxFailures && now.Before(q.circuitOpenUntil)
}

// drain is the single active loop that dispatches pending tasks in FIFO
// order. Mutual exclusion is enforced by the draining flag: only the
// goroutine that flipped it runs this method.
func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if q.breakerOpen(q.now()) {
			dropped := q.pending
			q.pending = nil
			q.draining = false
			observability.SetTranslationQueueDepth(0)
			q.mu.Unlock()
			for _, t := range dropped {
				t.resolve(fallback(t.text, ReasonCircuitOpen))
			}
			return
		}
		if q.consecutiveFailures >= q.maxFailures {
			// Cooldown has expired; the gauge must not keep reading open.
			observability.SetTranslationCircuitOpen(false)
		}

		if len(q.pending) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}

		t := q.pending[0]
		q.pending = q.pending[1:]
		observability.SetTranslationQueueDepth(len(q.pending))
		wait := q.minInterval - q.now().Sub(q.lastRequest)
		q.mu.Unlock()

		if wait > 0 {
			q.sleep(wait)
		}

		q.mu.Lock()
		q.lastRequest = q.now()
		q.mu.Unlock()

		q.dispatch(t)
	}
}

func (q *Queue) dispatch(t *task) {
	ctx, cancel := context.WithTimeout(context.Background(), q.callTimeout)
	translated, err := q.backend.Translate(ctx, t.text, t.target, t.authToken)
	cancel()

	if err != nil || translated == "" {
		q.mu.Lock()
		q.consecutiveFailures++
		if q.consecutiveFailures >= q.maxFailures {
			q.circuitOpenUntil = q.now().Add(q.cooldown)
			observability.SetTranslationCircuitOpen(true)
		}
		q.mu.Unlock()
		if err != nil {
			q.logger.Printf("translate: backend failure: %v", err)
		}
		t.resolve(fallback(t.text, ReasonBackendError))
		return
	}

	q.mu.Lock()
	q.consecutiveFailures = 0
	q.cache[keyFor(t.text, t.target)] = translated
	observability.SetTranslationCircuitOpen(false)
	q.mu.Unlock()

	observability.RecordTranslation("translated")
	t.resolve(Result{Text: translated, Translated: true})
}

// Cached returns the cached translation for the text prefix, if present.
func (q *Queue) Cached(text string, target Language) (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	cached, ok := q.cache[keyFor(text, target)]
	return cached, ok
}
