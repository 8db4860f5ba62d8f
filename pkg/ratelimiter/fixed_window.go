package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindow implements the RateLimiter interface using a fixed window
// counter: at most limit requests per window.
type FixedWindow struct {
	limit  int
	window time.Duration

	mu    sync.Mutex
	count int
	start time.Time
}

// NewFixedWindow creates a FixedWindow allowing limit requests per window.
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:  limit,
		window: window,
		start:  time.Now(),
	}
}

// Allow resets the counter when the window has rolled over, then admits
// the request if the count is under the limit.
func (fw *FixedWindow) Allow() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := time.Now()
	if now.After(fw.start.Add(fw.window)) {
		fw.start = now
		fw.count = 0
	}

	if fw.count < fw.limit {
		fw.count++
		return true
	}
	return false
}
