package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State uint8

const (
	// StateClosed allows requests through and counts failures.
	StateClosed State = iota
	// StateOpen rejects requests until the open timeout elapses.
	StateOpen
	// StateHalfOpen lets trial requests through to probe recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned when the breaker rejects a request outright.
var ErrOpen = errors.New("circuit breaker is open")

// Settings configures a Breaker.
type Settings struct {
	// FailureThreshold is the number of consecutive failures that trips
	// the circuit while closed.
	FailureThreshold uint32
	// SuccessThreshold is the number of consecutive successes while
	// half-open that closes the circuit again.
	SuccessThreshold uint32
	// Timeout is how long the circuit stays open before allowing probes.
	Timeout time.Duration
}

// Breaker guards a downstream dependency. A run of failures opens the
// circuit; after Timeout it admits probe requests and closes again once
// SuccessThreshold of them succeed in a row.
type Breaker struct {
	settings Settings

	mu        sync.Mutex
	state     State
	failures  uint32
	successes uint32
	openedAt  time.Time
}

// New creates a closed Breaker with the given settings.
func New(settings Settings) *Breaker {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.SuccessThreshold == 0 {
		settings.SuccessThreshold = 1
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	return &Breaker{settings: settings, state: StateClosed}
}

// State returns the current state, accounting for an elapsed open timeout.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeProbe()
	return b.state
}

// Do runs fn under the breaker. While open it returns ErrOpen without
// calling fn; otherwise fn's error is returned and counted.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	b.maybeProbe()
	if b.state == StateOpen {
		b.mu.Unlock()
		return ErrOpen
	}
	b.mu.Unlock()

	err := fn()
	b.record(err == nil)
	return err
}

// maybeProbe moves an expired open circuit to half-open. Callers hold b.mu.
func (b *Breaker) maybeProbe() {
	if b.state == StateOpen && time.Since(b.openedAt) > b.settings.Timeout {
		b.state = StateHalfOpen
		b.successes = 0
	}
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !success {
		switch b.state {
		case StateHalfOpen:
			b.trip()
		case StateClosed:
			b.failures++
			if b.failures >= b.settings.FailureThreshold {
				b.trip()
			}
		}
		return
	}

	switch b.state {
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.settings.SuccessThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
		}
	case StateClosed:
		b.failures = 0
	}
}

// trip opens the circuit. Callers hold b.mu.
func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = time.Now()
	b.failures = 0
	b.successes = 0
}
