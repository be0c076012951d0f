package providers_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/testutil"
)

func fastResilience() config.ResilienceConfig {
	return config.ResilienceConfig{
		MaxRetries:      2,
		RetryBaseDelay:  time.Millisecond,
		BreakerFailures: 3,
		BreakerTimeout:  time.Minute,
	}
}

func TestResilientRetriesTransientErrors(t *testing.T) {
	calls := 0
	next := &testutil.MockResponder{
		Name: "flaky",
		RespondFunc: func(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error) {
			calls++
			if calls < 3 {
				return nil, &common.StatusError{Provider: "flaky", StatusCode: 503}
			}
			return &common.AIResponse{Response: "ok"}, nil
		},
	}

	r := providers.NewResilientResponder(next, fastResilience())
	resp, err := r.Respond(context.Background(), common.RespondRequest{Prompt: "q"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Response != "ok" {
		t.Errorf("Expected ok, got %q", resp.Response)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestResilientDoesNotRetryPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"malformed", fmt.Errorf("bad json: %w", common.ErrMalformedResponse)},
		{"unauthorized", &common.StatusError{Provider: "x", StatusCode: 401}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := testutil.FailingResponder(tt.err)
			r := providers.NewResilientResponder(next, fastResilience())

			_, err := r.Respond(context.Background(), common.RespondRequest{Prompt: "q"})
			if !errors.Is(err, tt.err) && err.Error() != tt.err.Error() {
				t.Errorf("Expected original error, got %v", err)
			}
			if next.CallCount() != 1 {
				t.Errorf("Expected a single call, got %d", next.CallCount())
			}
		})
	}
}

func TestResilientGivesUpAfterMaxRetries(t *testing.T) {
	next := testutil.FailingResponder(fmt.Errorf("dial tcp: %w", common.ErrServiceUnavailable))
	r := providers.NewResilientResponder(next, config.ResilienceConfig{
		MaxRetries:      1,
		RetryBaseDelay:  time.Millisecond,
		BreakerFailures: 10,
		BreakerTimeout:  time.Minute,
	})

	_, err := r.Respond(context.Background(), common.RespondRequest{Prompt: "q"})
	if !errors.Is(err, common.ErrServiceUnavailable) {
		t.Errorf("Expected ErrServiceUnavailable, got %v", err)
	}
	if next.CallCount() != 2 {
		t.Errorf("Expected initial call plus one retry, got %d", next.CallCount())
	}
}

func TestResilientOpensCircuit(t *testing.T) {
	next := testutil.FailingResponder(fmt.Errorf("down: %w", common.ErrServiceUnavailable))
	r := providers.NewResilientResponder(next, config.ResilienceConfig{
		MaxRetries:      0,
		RetryBaseDelay:  time.Millisecond,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	})

	for i := 0; i < 2; i++ {
		r.Respond(context.Background(), common.RespondRequest{Prompt: "q"})
	}
	before := next.CallCount()

	_, err := r.Respond(context.Background(), common.RespondRequest{Prompt: "q"})
	if !errors.Is(err, common.ErrServiceUnavailable) {
		t.Errorf("Expected ErrServiceUnavailable from open circuit, got %v", err)
	}
	if next.CallCount() != before {
		t.Error("Open circuit must not reach the wrapped responder")
	}
}

func TestResilientMalformedDoesNotTripBreaker(t *testing.T) {
	next := testutil.FailingResponder(common.ErrMalformedResponse)
	r := providers.NewResilientResponder(next, config.ResilienceConfig{
		MaxRetries:      0,
		RetryBaseDelay:  time.Millisecond,
		BreakerFailures: 1,
		BreakerTimeout:  time.Minute,
	})

	for i := 0; i < 3; i++ {
		r.Respond(context.Background(), common.RespondRequest{Prompt: "q"})
	}
	if next.CallCount() != 3 {
		t.Errorf("Expected every call to reach the responder, got %d", next.CallCount())
	}
}
