package workflows

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
)

type SlackPayload struct {
	Text string `json:"text"`
}

// Alerter reports pipeline failures to a Slack webhook and, when enabled, Sentry
type Alerter struct {
	webhookURL string
	sentry     bool
	client     *http.Client
}

func NewAlerter(webhookURL string, sentryEnabled bool) *Alerter {
	return &Alerter{
		webhookURL: webhookURL,
		sentry:     sentryEnabled,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// ReportErrorToSlack posts an error message to the alerts channel.
func (a *Alerter) ReportErrorToSlack(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if a.webhookURL == "" {
		return errors.New("slack webhook URL is not configured")
	}

	message := fmt.Sprintf(
		":rotating_light: *GEO Pipeline Error*\n"+
			"*Time:* %s\n"+
			"*Error:* ```%s```",
		time.Now().UTC().Format(time.RFC3339),
		err.Error(),
	)

	body, err := json.Marshal(SlackPayload{Text: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// ReportPipelineFailure reports a failed pipeline with context to every configured sink.
func (a *Alerter) ReportPipelineFailure(ctx context.Context, pipeline, sessionID, reason string, err error) {
	if a == nil || err == nil {
		return
	}
	if pipeline == "" {
		pipeline = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}

	reportErr := fmt.Errorf("pipeline failed: pipeline=%s reason=%s session_id=%s error=%w",
		pipeline, reason, sessionID, err)

	if a.sentry {
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("pipeline", pipeline)
			scope.SetTag("reason", reason)
			scope.SetTag("session_id", sessionID)
			sentry.CaptureException(reportErr)
		})
	}

	if a.webhookURL == "" {
		return
	}
	if slackErr := a.ReportErrorToSlack(ctx, reportErr); slackErr != nil {
		logger.Log.Warnf("[Alerts] Failed to report to Slack: %v", slackErr)
	}
}

// AnalysisFailed reports a wizard analysis run that ended in failure.
// Cancelled runs are not alerted.
func (a *Alerter) AnalysisFailed(ctx context.Context, sessionID string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	a.ReportPipelineFailure(context.WithoutCancel(ctx), "geo-analysis", sessionID, "analysis_failed", err)
}
