package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker is open and rejecting
// embedding calls to prevent cascading failures.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig tunes the breaker around an Embedder.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures required to
	// trip the circuit. Default: 3.
	MaxFailures uint32

	// Timeout is how long the circuit stays open before moving to
	// half-open. Default: 30 seconds.
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of consecutive successes in
	// half-open state needed to close the circuit. Default: 2.
	HalfOpenMaxSuccesses uint32
}

// DefaultCircuitBreakerConfig returns the documented defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:          3,
		Timeout:              30 * time.Second,
		HalfOpenMaxSuccesses: 2,
	}
}

// CircuitBreakerEmbedder wraps an Embedder in the circuit breaker
// pattern. Closed passes calls through; after MaxFailures consecutive
// failures the circuit opens and calls fail fast with ErrCircuitOpen;
// after Timeout it half-opens and lets test calls through until
// HalfOpenMaxSuccesses close it again.
type CircuitBreakerEmbedder struct {
	inner   Embedder
	breaker *gobreaker.CircuitBreaker
}

var _ Embedder = (*CircuitBreakerEmbedder)(nil)

// NewCircuitBreakerEmbedder wraps an embedder with the given breaker
// configuration. Zero-value fields fall back to the defaults.
func NewCircuitBreakerEmbedder(inner Embedder, config CircuitBreakerConfig) *CircuitBreakerEmbedder {
	defaults := DefaultCircuitBreakerConfig()
	if config.MaxFailures == 0 {
		config.MaxFailures = defaults.MaxFailures
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.HalfOpenMaxSuccesses == 0 {
		config.HalfOpenMaxSuccesses = defaults.HalfOpenMaxSuccesses
	}

	settings := gobreaker.Settings{
		Name:        "EmbedderCircuitBreaker",
		MaxRequests: config.HalfOpenMaxSuccesses,
		Interval:    0, // never clear counts periodically
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
	}

	return &CircuitBreakerEmbedder{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Embed runs the wrapped embedder through the breaker.
func (e *CircuitBreakerEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	result, err := e.breaker.Execute(func() (interface{}, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return e.inner.Embed(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	return result.([]float64), nil
}

// State reports the breaker state: "closed", "open", or "half-open".
func (e *CircuitBreakerEmbedder) State() string {
	switch e.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
