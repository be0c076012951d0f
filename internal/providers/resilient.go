package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

type resilientResponder struct {
	next       Responder
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	baseDelay  time.Duration
}

// NewResilientResponder retries transient failures with exponential backoff
// and stops calling next while its circuit breaker is open.
func NewResilientResponder(next Responder, cfg config.ResilienceConfig) Responder {
	failures := cfg.BreakerFailures
	if failures <= 0 {
		failures = 5
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        next.GetProviderName(),
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		IsSuccessful: func(err error) bool {
			// a bad answer is not an outage
			return err == nil || errors.Is(err, common.ErrMalformedResponse)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warnf("[Responder] circuit %s: %s -> %s", name, from, to)
		},
	})

	return &resilientResponder{
		next:       next,
		breaker:    breaker,
		maxRetries: cfg.MaxRetries,
		baseDelay:  baseDelay,
	}
}

func (r *resilientResponder) GetProviderName() string {
	return r.next.GetProviderName()
}

func (r *resilientResponder) Respond(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
	var resp *common.AIResponse
	attempt := 0

	op := func() error {
		attempt++
		out, err := r.breaker.Execute(func() (interface{}, error) {
			return r.next.Respond(ctx, req)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(fmt.Errorf("%s circuit open: %w", r.next.GetProviderName(), common.ErrServiceUnavailable))
			}
			if !isRetryable(ctx, err) {
				return backoff.Permanent(err)
			}
			logger.Log.Warnf("[Responder] %s attempt %d failed: %v", r.next.GetProviderName(), attempt, err)
			return err
		}
		resp = out.(*common.AIResponse)
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.baseDelay
	policy.MaxElapsedTime = 0

	var b backoff.BackOff = policy
	if r.maxRetries >= 0 {
		b = backoff.WithMaxRetries(policy, uint64(r.maxRetries))
	}

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, common.ErrMalformedResponse) {
		return false
	}
	var statusErr *common.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return true
}
