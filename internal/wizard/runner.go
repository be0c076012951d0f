package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
)

// Analyzer runs the per-prompt analysis and aggregation for a session snapshot
type Analyzer interface {
	RunAnalysis(ctx context.Context, profile models.BrandProfile, topics []models.Topic, prompts []models.PromptAnalysisResult) (*models.AnalysisReport, error)
}

// Dispatcher starts an analysis run that was begun with BeginAnalysis
type Dispatcher interface {
	Dispatch(ctx context.Context, sessionID, runID string) error
}

// FailureNotifier is told about runs that end in FailAnalysis
type FailureNotifier interface {
	AnalysisFailed(ctx context.Context, sessionID string, err error)
}

// Runner executes analysis runs against a Store
type Runner struct {
	store    *Store
	analyzer Analyzer
	notifier FailureNotifier
	wg       sync.WaitGroup
}

func NewRunner(store *Store, analyzer Analyzer, notifier FailureNotifier) *Runner {
	return &Runner{store: store, analyzer: analyzer, notifier: notifier}
}

// Run analyzes the session's prompts and commits the outcome for runID.
// A run superseded by a reset or a newer run is dropped without error.
func (r *Runner) Run(ctx context.Context, sessionID, runID string) (*Session, error) {
	snapshot, err := r.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkRun(snapshot, runID); err != nil {
		return nil, err
	}
	if snapshot.Profile == nil {
		return nil, fmt.Errorf("session %s has no brand profile", sessionID)
	}

	logger.Log.Infof("[Wizard] 🔎 Analysis %s started for session %s (%d prompts)", runID, sessionID, len(snapshot.Prompts))
	report, runErr := r.analyzer.RunAnalysis(ctx, *snapshot.Profile, snapshot.Topics, snapshot.Prompts)
	return r.Commit(ctx, sessionID, runID, report, runErr)
}

// Commit stores a finished run's report, or its error, on the session
func (r *Runner) Commit(ctx context.Context, sessionID, runID string, report *models.AnalysisReport, runErr error) (*Session, error) {
	if runErr == nil && report == nil {
		runErr = errors.New("analysis produced no report")
	}

	updated, err := r.store.Update(sessionID, func(s *Session) error {
		if runErr != nil {
			return FailAnalysis(s, runID, runErr)
		}
		return CompleteAnalysis(s, runID, report)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrSessionNotFound) {
			logger.Log.Warnf("[Wizard] ⚠️ Dropping result of analysis %s for session %s: %v", runID, sessionID, err)
		}
		return nil, err
	}

	if runErr != nil {
		logger.Log.Warnf("[Wizard] ❌ Analysis %s failed for session %s: %v", runID, sessionID, runErr)
		if r.notifier != nil {
			r.notifier.AnalysisFailed(ctx, sessionID, runErr)
		}
		return updated, runErr
	}

	logger.Log.Infof("[Wizard] ✅ Analysis %s complete for session %s (score %d)", runID, sessionID, report.OverallScore)
	return updated, nil
}

// Dispatch runs the analysis on a background goroutine
func (r *Runner) Dispatch(_ context.Context, sessionID, runID string) error {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_, _ = r.Run(context.Background(), sessionID, runID)
	}()
	return nil
}

// Wait blocks until background runs finish
func (r *Runner) Wait() {
	r.wg.Wait()
}
