// workflows/session_sweeper.go
package workflows

import (
	"context"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/wizard"
)

// SessionSweeper expires idle wizard sessions on a schedule
type SessionSweeper struct {
	store  *wizard.Store
	client inngestgo.Client
}

func NewSessionSweeper(store *wizard.Store) *SessionSweeper {
	return &SessionSweeper{store: store}
}

func (p *SessionSweeper) SetClient(client inngestgo.Client) {
	p.client = client
}

func (p *SessionSweeper) SweepSessions() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "geo-session-sweeper",
			Name: "Expire Idle Wizard Sessions",
		},
		inngestgo.CronTrigger("*/15 * * * *"),
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			summary, err := step.Run(ctx, "sweep-expired-sessions", func(ctx context.Context) (map[string]interface{}, error) {
				return p.sweep(time.Now()), nil
			})
			if err != nil {
				return nil, err
			}
			return summary, nil
		},
	)

	if err != nil {
		logger.Log.Errorf("[SessionSweeper] Failed to create sweeper function: %v", err)
	}

	return fn
}

// Run sweeps every interval until ctx is done. Used when inngest is not configured.
func (p *SessionSweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			p.sweep(now)
		}
	}
}

func (p *SessionSweeper) sweep(now time.Time) map[string]interface{} {
	removed := p.store.Sweep(now)
	return map[string]interface{}{
		"executed_at":     now.UTC().Format(time.RFC3339),
		"expired":         removed,
		"active_sessions": p.store.Len(),
	}
}
