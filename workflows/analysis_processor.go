// workflows/analysis_processor.go
package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/metrics"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/wizard"
	"github.com/AI-Template-SDK/senso-geo-wizard/services"
)

const AnalysisRequestedEventName = "geo/analysis.requested"

// AnalysisProcessor runs wizard analyses as a durable inngest function
type AnalysisProcessor struct {
	analysis services.AnalysisService
	store    *wizard.Store
	runner   *wizard.Runner
	alerter  *Alerter
	metrics  *metrics.Metrics
	client   inngestgo.Client
}

func NewAnalysisProcessor(analysis services.AnalysisService, store *wizard.Store, runner *wizard.Runner, alerter *Alerter, m *metrics.Metrics) *AnalysisProcessor {
	return &AnalysisProcessor{
		analysis: analysis,
		store:    store,
		runner:   runner,
		alerter:  alerter,
		metrics:  m,
	}
}

func (p *AnalysisProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// AnalysisRequestedEvent represents the input event for one analysis run
type AnalysisRequestedEvent struct {
	SessionID   string `json:"session_id"`
	RunID       string `json:"run_id"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}

// Dispatch publishes the event that starts ProcessAnalysis
func (p *AnalysisProcessor) Dispatch(ctx context.Context, sessionID, runID string) error {
	if p.client == nil {
		return errors.New("inngest client is not configured")
	}
	evt := inngestgo.Event{
		Name: AnalysisRequestedEventName,
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"run_id":       runID,
			"triggered_by": "wizard",
		},
	}
	if _, err := p.client.Send(ctx, evt); err != nil {
		return fmt.Errorf("failed to send %s: %w", AnalysisRequestedEventName, err)
	}
	logger.Log.Infof("[AnalysisProcessor] 📨 Queued analysis %s for session %s", runID, sessionID)
	return nil
}

func (p *AnalysisProcessor) ProcessAnalysis() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "geo-analysis-processor",
			Name:    "GEO Visibility Analysis",
			Retries: inngestgo.IntPtr(0), // failures roll the session back, so a retry would be stale
		},
		inngestgo.EventTrigger(AnalysisRequestedEventName, nil),
		func(ctx context.Context, input inngestgo.Input[AnalysisRequestedEvent]) (any, error) {
			evt := input.Event.Data
			logger.Log.Infof("[AnalysisProcessor] 🚀 Starting analysis %s for session %s", evt.RunID, evt.SessionID)

			snapshot, err := step.Run(ctx, "load-session", func(ctx context.Context) (*wizard.Session, error) {
				return p.loadSession(evt)
			})
			if err != nil {
				return nil, p.fail(ctx, evt, "load-session", err)
			}

			analyzed, err := step.Run(ctx, "analyze-prompts", func(ctx context.Context) ([]models.PromptAnalysisResult, error) {
				return p.analyzePrompts(ctx, snapshot)
			})
			if err != nil {
				return nil, p.fail(ctx, evt, "analyze-prompts", err)
			}

			report, err := step.Run(ctx, "aggregate-report", func(ctx context.Context) (*models.AnalysisReport, error) {
				return p.aggregateReport(snapshot, analyzed), nil
			})
			if err != nil {
				return nil, p.fail(ctx, evt, "aggregate-report", err)
			}

			_, err = step.Run(ctx, "complete-session", func(ctx context.Context) (string, error) {
				return p.completeSession(ctx, evt, report)
			})
			if err != nil {
				// Reset or expired sessions still get the report as function output
				logger.Log.Warnf("[AnalysisProcessor] Could not store report for session %s: %v", evt.SessionID, err)
			}

			p.metrics.RecordWorkflowRun(true)
			return map[string]interface{}{
				"status":        "success",
				"session_id":    evt.SessionID,
				"run_id":        evt.RunID,
				"overall_score": report.OverallScore,
				"report":        report,
			}, nil
		},
	)

	if err != nil {
		logger.Log.Errorf("[AnalysisProcessor] Failed to create analysis function: %v", err)
	}

	return fn
}

func (p *AnalysisProcessor) loadSession(evt AnalysisRequestedEvent) (*wizard.Session, error) {
	snapshot, err := p.store.Get(evt.SessionID)
	if err != nil {
		return nil, err
	}
	if snapshot.Step != wizard.StepAnalyzing || snapshot.AnalysisRunID != evt.RunID {
		return nil, fmt.Errorf("%w: session %s is not running analysis %s", wizard.ErrInvalidTransition, evt.SessionID, evt.RunID)
	}
	if snapshot.Profile == nil {
		return nil, fmt.Errorf("session %s has no brand profile", evt.SessionID)
	}
	return snapshot, nil
}

func (p *AnalysisProcessor) analyzePrompts(ctx context.Context, snapshot *wizard.Session) ([]models.PromptAnalysisResult, error) {
	return p.analysis.AnalyzePrompts(ctx, *snapshot.Profile, snapshot.Prompts)
}

func (p *AnalysisProcessor) aggregateReport(snapshot *wizard.Session, analyzed []models.PromptAnalysisResult) *models.AnalysisReport {
	return p.analysis.BuildReport(*snapshot.Profile, snapshot.Topics, analyzed)
}

func (p *AnalysisProcessor) completeSession(ctx context.Context, evt AnalysisRequestedEvent, report *models.AnalysisReport) (string, error) {
	session, err := p.runner.Commit(ctx, evt.SessionID, evt.RunID, report, nil)
	if err != nil {
		return "", err
	}
	return string(session.Step), nil
}

// fail returns the session to PromptPreview, alerts, and hands the error back to inngest
func (p *AnalysisProcessor) fail(ctx context.Context, evt AnalysisRequestedEvent, stage string, err error) error {
	p.metrics.RecordWorkflowRun(false)

	// A superseded run has nothing to roll back or alert on
	if errors.Is(err, wizard.ErrInvalidTransition) || errors.Is(err, wizard.ErrSessionNotFound) {
		logger.Log.Warnf("[AnalysisProcessor] Skipping stale analysis %s for session %s: %v", evt.RunID, evt.SessionID, err)
		return err
	}

	// Runner.Commit alerts through its notifier
	if _, commitErr := p.runner.Commit(ctx, evt.SessionID, evt.RunID, nil, err); commitErr != nil && !errors.Is(commitErr, err) {
		logger.Log.Warnf("[AnalysisProcessor] Could not roll back session %s: %v", evt.SessionID, commitErr)
		p.alerter.ReportPipelineFailure(ctx, "geo-analysis", evt.SessionID, stage, err)
	}
	return fmt.Errorf("%s failed: %w", stage, err)
}
