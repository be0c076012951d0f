package wizard

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
)

// --- State machine for the visibility wizard ---
//
// Steps run strictly in StepOrder. Moving forward one step at a time is
// guarded by CanEnter; moving back is allowed to any earlier step except
// Analyzing, which is only entered by BeginAnalysis.

type Step string

const (
	StepWelcome        Step = "Welcome"
	StepInput          Step = "Input"
	StepTopicSelection Step = "TopicSelection"
	StepPromptPreview  Step = "PromptPreview"
	StepAnalyzing      Step = "Analyzing"
	StepDashboard      Step = "Dashboard"
)

var StepOrder = []Step{StepWelcome, StepInput, StepTopicSelection, StepPromptPreview, StepAnalyzing, StepDashboard}

var (
	ErrInvalidTransition = errors.New("invalid wizard transition")
	ErrSessionNotFound   = errors.New("wizard session not found")
)

// timeNow is swapped in tests
var timeNow = time.Now

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func profileValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidateProfile checks the brand profile is complete enough to analyze
func ValidateProfile(p models.BrandProfile) error {
	if err := profileValidator().Struct(p); err != nil {
		return fmt.Errorf("invalid brand profile: %w", err)
	}
	if models.HostOf(p.Website) == "" {
		return fmt.Errorf("invalid brand profile: website %q has no host", p.Website)
	}
	return nil
}

// StepIndex returns the position of step in StepOrder, or -1
func StepIndex(step Step) int {
	for i, s := range StepOrder {
		if s == step {
			return i
		}
	}
	return -1
}

// Session is one run of the wizard. All state is in memory.
type Session struct {
	ID        string                        `json:"id"`
	Step      Step                          `json:"step"`
	Profile   *models.BrandProfile          `json:"profile,omitempty"`
	Topics    []models.Topic                `json:"topics"`
	Prompts   []models.PromptAnalysisResult `json:"prompts"`
	Report    *models.AnalysisReport        `json:"report,omitempty"`
	LastError string                        `json:"lastError,omitempty"`

	// AnalysisRunID identifies the analysis in flight; stale completions are rejected
	AnalysisRunID string `json:"analysisRunId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewSession() *Session {
	now := timeNow().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Step:      StepWelcome,
		Topics:    []models.Topic{},
		Prompts:   []models.PromptAnalysisResult{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SelectedTopics returns the topics currently selected
func (s *Session) SelectedTopics() []models.Topic {
	var selected []models.Topic
	for _, t := range s.Topics {
		if t.Selected {
			selected = append(selected, t)
		}
	}
	return selected
}

// CanEnter checks the guard for moving into target from the step before it
func CanEnter(s *Session, target Step) error {
	switch target {
	case StepWelcome, StepInput:
		return nil
	case StepTopicSelection:
		if s.Profile == nil {
			return fmt.Errorf("%w: a brand profile is required", ErrInvalidTransition)
		}
		return ValidateProfile(*s.Profile)
	case StepPromptPreview:
		if len(s.SelectedTopics()) == 0 {
			return fmt.Errorf("%w: select at least one topic", ErrInvalidTransition)
		}
		return nil
	case StepAnalyzing:
		if len(s.Prompts) == 0 {
			return fmt.Errorf("%w: no prompts to analyze", ErrInvalidTransition)
		}
		return nil
	case StepDashboard:
		if s.Report == nil {
			return fmt.Errorf("%w: no completed report", ErrInvalidTransition)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown step %q", ErrInvalidTransition, target)
}

// Advance moves s forward exactly one step if the guard allows it.
// Analyzing and Dashboard are entered through BeginAnalysis and CompleteAnalysis.
func Advance(s *Session, target Step) error {
	idx := StepIndex(s.Step)
	if StepIndex(target) != idx+1 {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, s.Step, target)
	}
	if target == StepAnalyzing || target == StepDashboard {
		return fmt.Errorf("%w: %s is entered by running an analysis", ErrInvalidTransition, target)
	}
	if err := CanEnter(s, target); err != nil {
		return err
	}

	s.Step = target
	s.LastError = ""
	touch(s)
	return nil
}

// Back moves s to the previous non-Analyzing step
func Back(s *Session) error {
	switch s.Step {
	case StepWelcome:
		return fmt.Errorf("%w: already at the first step", ErrInvalidTransition)
	case StepAnalyzing:
		return fmt.Errorf("%w: analysis in progress", ErrInvalidTransition)
	}

	prev := StepOrder[StepIndex(s.Step)-1]
	if prev == StepAnalyzing {
		prev = StepPromptPreview
	}
	s.Step = prev
	touch(s)
	return nil
}

// Reset discards everything collected and returns to Welcome
func Reset(s *Session) {
	s.Step = StepWelcome
	s.Profile = nil
	s.Topics = []models.Topic{}
	s.Prompts = []models.PromptAnalysisResult{}
	s.Report = nil
	s.LastError = ""
	s.AnalysisRunID = ""
	touch(s)
}

// SubmitProfile stores the profile and suggested topics and enters TopicSelection.
// Anything derived from an earlier profile is discarded.
func SubmitProfile(s *Session, profile models.BrandProfile, topics []models.Topic) error {
	if s.Step != StepInput {
		return fmt.Errorf("%w: profile can only be submitted at %s (current: %s)", ErrInvalidTransition, StepInput, s.Step)
	}
	if err := ValidateProfile(profile); err != nil {
		return err
	}

	p := profile
	p.Competitors = append([]models.Competitor(nil), profile.Competitors...)
	s.Profile = &p
	s.Topics = append([]models.Topic(nil), topics...)
	s.Prompts = []models.PromptAnalysisResult{}
	s.Report = nil
	return Advance(s, StepTopicSelection)
}

// AddTopic appends a user topic during TopicSelection
func AddTopic(s *Session, topic models.Topic) error {
	if s.Step != StepTopicSelection {
		return fmt.Errorf("%w: topics can only change at %s (current: %s)", ErrInvalidTransition, StepTopicSelection, s.Step)
	}
	if strings.TrimSpace(topic.Name) == "" {
		return fmt.Errorf("topic name is required")
	}
	for _, t := range s.Topics {
		if t.ID == topic.ID {
			return fmt.Errorf("topic %q already exists", topic.ID)
		}
	}
	s.Topics = append(s.Topics, topic)
	touch(s)
	return nil
}

// SetTopicSelected toggles a topic during TopicSelection
func SetTopicSelected(s *Session, topicID string, selected bool) error {
	if s.Step != StepTopicSelection {
		return fmt.Errorf("%w: topics can only change at %s (current: %s)", ErrInvalidTransition, StepTopicSelection, s.Step)
	}
	for i := range s.Topics {
		if s.Topics[i].ID == topicID {
			s.Topics[i].Selected = selected
			touch(s)
			return nil
		}
	}
	return fmt.Errorf("topic %q not found", topicID)
}

// SetPrompts stores generated prompts and enters PromptPreview
func SetPrompts(s *Session, prompts []models.PromptAnalysisResult) error {
	if s.Step != StepTopicSelection {
		return fmt.Errorf("%w: prompts are generated from %s (current: %s)", ErrInvalidTransition, StepTopicSelection, s.Step)
	}
	if err := CanEnter(s, StepPromptPreview); err != nil {
		return err
	}
	s.Prompts = append([]models.PromptAnalysisResult(nil), prompts...)
	s.Report = nil
	return Advance(s, StepPromptPreview)
}

// EditPrompt replaces a prompt's text during PromptPreview
func EditPrompt(s *Session, promptID, text string) error {
	if s.Step != StepPromptPreview {
		return fmt.Errorf("%w: prompts can only be edited at %s (current: %s)", ErrInvalidTransition, StepPromptPreview, s.Step)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("prompt text is required")
	}
	for i := range s.Prompts {
		if s.Prompts[i].ID == promptID {
			s.Prompts[i].Text = text
			s.Prompts[i].IsEdited = true
			touch(s)
			return nil
		}
	}
	return fmt.Errorf("prompt %q not found", promptID)
}

// BeginAnalysis enters Analyzing and returns the new run id
func BeginAnalysis(s *Session) (string, error) {
	if s.Step != StepPromptPreview {
		return "", fmt.Errorf("%w: analysis starts from %s (current: %s)", ErrInvalidTransition, StepPromptPreview, s.Step)
	}
	if err := CanEnter(s, StepAnalyzing); err != nil {
		return "", err
	}

	s.Step = StepAnalyzing
	s.AnalysisRunID = uuid.NewString()
	s.LastError = ""
	s.Report = nil
	touch(s)
	return s.AnalysisRunID, nil
}

// CompleteAnalysis stores the report of run runID and enters Dashboard
func CompleteAnalysis(s *Session, runID string, report *models.AnalysisReport) error {
	if err := checkRun(s, runID); err != nil {
		return err
	}
	s.Report = report
	if err := CanEnter(s, StepDashboard); err != nil {
		return err
	}

	s.Prompts = append([]models.PromptAnalysisResult(nil), report.PromptsGenerated...)
	s.Step = StepDashboard
	s.AnalysisRunID = ""
	touch(s)
	return nil
}

// FailAnalysis returns s to PromptPreview with the error recorded
func FailAnalysis(s *Session, runID string, cause error) error {
	if err := checkRun(s, runID); err != nil {
		return err
	}
	s.Step = StepPromptPreview
	s.AnalysisRunID = ""
	if cause != nil {
		s.LastError = cause.Error()
	}
	touch(s)
	return nil
}

func checkRun(s *Session, runID string) error {
	if s.Step != StepAnalyzing {
		return fmt.Errorf("%w: no analysis in progress (current: %s)", ErrInvalidTransition, s.Step)
	}
	if s.AnalysisRunID != runID {
		return fmt.Errorf("%w: stale analysis run %s", ErrInvalidTransition, runID)
	}
	return nil
}

func touch(s *Session) {
	s.UpdatedAt = timeNow().UTC()
}
