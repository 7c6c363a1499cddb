package suggest

import (
	"sync"
	"time"
)

// Window is a sliding log of request timestamps over a trailing span
type Window struct {
	mu     sync.Mutex
	limit  int
	span   time.Duration
	stamps []time.Time
}

// NewWindow creates a window allowing limit requests per span
func NewWindow(limit int, span time.Duration) *Window {
	return &Window{limit: limit, span: span}
}

// prune drops stamps older than the span. A stamp exactly span old is kept.
func (w *Window) prune(now time.Time) {
	cutoff := now.Add(-w.span)
	i := 0
	for i < len(w.stamps) && w.stamps[i].Before(cutoff) {
		i++
	}
	w.stamps = w.stamps[i:]
}

// Limited reports whether the window is at or above its cap
func (w *Window) Limited(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(now)
	return len(w.stamps) >= w.limit
}

// Reserve records a request if the cap allows it
func (w *Window) Reserve(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(now)
	if len(w.stamps) >= w.limit {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}

// Count returns the number of requests in the window
func (w *Window) Count(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(now)
	return len(w.stamps)
}

// RetryAfter returns how long until the oldest request ages out
func (w *Window) RetryAfter(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(now)
	if len(w.stamps) < w.limit {
		return 0
	}
	return w.stamps[0].Add(w.span).Sub(now)
}
