package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"moviepicker/internal/metrics"
)

// BreakerSettings tunes when a Breaker opens.
type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	OpenTimeout  time.Duration
}

// DefaultBreakerSettings opens after at least 10 requests with a 60% failure
// rate and probes again after two minutes.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:  10,
		FailureRatio: 0.6,
		Interval:     time.Minute,
		OpenTimeout:  2 * time.Minute,
	}
}

// Breaker guards calls to one upstream API.
type Breaker struct {
	name   string
	cb     *gobreaker.CircuitBreaker[any]
	logger *slog.Logger
}

// NewBreaker constructs a circuit breaker named after the upstream it guards.
func NewBreaker(name string, settings BreakerSettings, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	b := &Breaker{name: name, logger: logger}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", stateLabel(from)),
				slog.String("to", stateLabel(to)),
				slog.String("event_type", "circuit_breaker_transition"),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateLabel(from), stateLabel(to)).Inc()
		},
		IsSuccessful: isBreakerSuccess,
	})
	return b
}

// Name returns the upstream name.
func (b *Breaker) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Guard runs fn through the breaker. A nil breaker runs fn directly. Calls
// rejected by an open circuit fail with ErrUnavailable.
func Guard[T any](b *Breaker, fn func() (T, error)) (T, error) {
	if b == nil {
		return fn()
	}
	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	var zero T
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.UpstreamRequests.WithLabelValues(b.name, "rejected").Inc()
			return zero, Wrap(ErrUnavailable, b.name, "", "circuit open", err)
		}
		metrics.UpstreamRequests.WithLabelValues(b.name, "failure").Inc()
		if typed, ok := result.(T); ok {
			return typed, err
		}
		return zero, err
	}
	metrics.UpstreamRequests.WithLabelValues(b.name, "success").Inc()
	typed, ok := result.(T)
	if !ok {
		return zero, nil
	}
	return typed, nil
}

// Caller mistakes and cancellations say nothing about upstream health.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrValidation):
		return true
	default:
		return false
	}
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateLabel(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
