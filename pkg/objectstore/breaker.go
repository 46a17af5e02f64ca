package objectstore

import (
	"sync"
	"time"
)

// breakerState is one of the three states from §4.2.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// circuitBreaker is a shared per-client breaker, independent of any one
// request's goroutine. The state machine is the three-state
// closed/open/half-open design from §4.2; the mutex-guarded struct shape
// follows the pack's own rate-limiting circuit breaker.
type circuitBreaker struct {
	mu sync.Mutex

	state            breakerState
	failureThreshold int
	recoveryTimeout  time.Duration

	failures       int
	openedAt       time.Time
	halfOpenInUse  bool
}

func newCircuitBreaker(failureThreshold int, recoveryTimeout time.Duration) *circuitBreaker {
	return &circuitBreaker{
		state:            breakerClosed,
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
	}
}

// ErrCircuitOpen is returned by allow() when the breaker is rejecting
// requests.
type circuitOpenError struct{}

func (circuitOpenError) Error() string { return "circuit breaker open" }

// ErrCircuitOpen is the sentinel objectstore callers can match against.
var ErrCircuitOpen error = circuitOpenError{}

// allow reports whether a request may proceed, transitioning open→half-open
// once the recovery timeout has elapsed. It also reserves the single
// half-open probe slot so concurrent callers don't all rush through at
// once.
func (b *circuitBreaker) allow() (probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return false, nil
	case breakerOpen:
		if time.Since(b.openedAt) >= b.recoveryTimeout {
			b.state = breakerHalfOpen
			b.halfOpenInUse = true
			return true, nil
		}
		return false, ErrCircuitOpen
	case breakerHalfOpen:
		if b.halfOpenInUse {
			return false, ErrCircuitOpen
		}
		b.halfOpenInUse = true
		return true, nil
	}
	return false, nil
}

func (b *circuitBreaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = breakerClosed
	b.failures = 0
	b.halfOpenInUse = false
}

func (b *circuitBreaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerHalfOpen {
		b.state = breakerOpen
		b.openedAt = time.Now()
		b.halfOpenInUse = false
		return
	}

	b.failures++
	if b.failures >= b.failureThreshold {
		b.state = breakerOpen
		b.openedAt = time.Now()
	}
}

// gaugeValue maps state to the metrics.CircuitBreakerState convention
// (0=closed, 1=half_open, 2=open).
func (b *circuitBreaker) gaugeValue() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case breakerHalfOpen:
		return 1
	case breakerOpen:
		return 2
	default:
		return 0
	}
}
