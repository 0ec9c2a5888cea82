package gateway

import (
	"sync"
	"time"
)

// BreakerState is one of the three circuit breaker states.
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// breakerConfig tunes how many consecutive failures open the circuit,
// how long it stays open before probing, and how many consecutive
// half-open successes are needed to close it again.
type breakerConfig struct {
	FailureThreshold int
	OpenDuration     time.Duration
	HalfOpenSuccess  int
}

func defaultBreakerConfig() breakerConfig {
	return breakerConfig{
		FailureThreshold: 5,
		OpenDuration:     30 * time.Second,
		HalfOpenSuccess:  2,
	}
}

// breaker is a per-model circuit breaker. It is safe for concurrent use.
//
// State transitions:
//
//	closed -[FailureThreshold consecutive failures]-> open
//	open -[OpenDuration elapses]-> half_open (next call allowed through as a probe)
//	half_open -[probe fails]-> open
//	half_open -[HalfOpenSuccess consecutive probe successes]-> closed
type breaker struct {
	mu sync.Mutex
	cfg breakerConfig

	state            BreakerState
	consecutiveFails int
	halfOpenSuccess  int
	openedAt         time.Time
}

func newBreaker(cfg breakerConfig) *breaker {
	return &breaker{cfg: cfg, state: BreakerClosed}
}

// Allow reports whether a call should be attempted right now, and
// transitions open -> half_open once the open window has elapsed.
func (b *breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerHalfOpen:
		return true
	case BreakerOpen:
		if time.Since(b.openedAt) >= b.cfg.OpenDuration {
			b.state = BreakerHalfOpen
			b.halfOpenSuccess = 0
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess advances the breaker's state on a successful call.
func (b *breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerHalfOpen:
		b.halfOpenSuccess++
		if b.halfOpenSuccess >= b.cfg.HalfOpenSuccess {
			b.state = BreakerClosed
			b.consecutiveFails = 0
		}
	case BreakerClosed:
		b.consecutiveFails = 0
	}
}

// RecordFailure advances the breaker's state on a failed call.
func (b *breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.openedAt = time.Now()
	case BreakerClosed:
		b.consecutiveFails++
		if b.consecutiveFails >= b.cfg.FailureThreshold {
			b.state = BreakerOpen
			b.openedAt = time.Now()
		}
	}
}

// State returns the breaker's current state without mutating it.
func (b *breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
