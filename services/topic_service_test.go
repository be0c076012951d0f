package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/mock"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/testutil"
	"github.com/AI-Template-SDK/senso-geo-wizard/services"
)

func TestSuggestTopicsFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unavailable", fmt.Errorf("quota: %w", common.ErrServiceUnavailable)},
		{"malformed", fmt.Errorf("bad json: %w", common.ErrMalformedResponse)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := services.NewTopicService(testutil.FailingResponder(tt.err), nil)
			topics := svc.SuggestTopics(context.Background(), testutil.SampleProfile())

			if len(topics) != 5 {
				t.Fatalf("Expected 5 default topics, got %d", len(topics))
			}
			expected := []string{
				"CRM Software Tools",
				"Acme vs Competitors",
				"Best Pricing & ROI",
				"Integration Capabilities",
				"User Reviews & Sentiment",
			}
			for i, topic := range topics {
				if topic.Name != expected[i] {
					t.Errorf("Topic %d: expected %q, got %q", i, expected[i], topic.Name)
				}
				if topic.ID != fmt.Sprintf("topic-%d", i+1) {
					t.Errorf("Topic %d: unexpected id %q", i, topic.ID)
				}
				if !topic.Selected {
					t.Errorf("Topic %d: expected selected", i)
				}
			}
			if topics[0].Justification != "High search volume for general CRM solutions." {
				t.Errorf("Unexpected justification: %q", topics[0].Justification)
			}
		})
	}
}

func TestSuggestTopicsWithMockResponderUsesDefaults(t *testing.T) {
	svc := services.NewTopicService(mock.NewProvider(1, 0), nil)
	topics := svc.SuggestTopics(context.Background(), testutil.SampleProfile())
	if len(topics) != 5 || topics[1].Name != "Acme vs Competitors" {
		t.Errorf("Expected the default topics, got %+v", topics)
	}
}

func TestSuggestTopicsParsesStructuredAnswer(t *testing.T) {
	body := "```json\n" + `{"topics":[
		{"name":"CRM for Startups","justification":"Fast growing segment."},
		{"name":"  ","justification":"blank names are skipped"},
		{"name":"Pipeline Automation","justification":"Frequent how-to queries."}
	]}` + "\n```"
	responder := testutil.TextResponder(body)

	topics := services.NewTopicService(responder, nil).SuggestTopics(context.Background(), testutil.SampleProfile())
	if len(topics) != 2 {
		t.Fatalf("Expected 2 topics, got %d: %+v", len(topics), topics)
	}
	if topics[0].ID != "topic-1" || topics[1].ID != "topic-2" {
		t.Errorf("Expected sequential ids, got %s and %s", topics[0].ID, topics[1].ID)
	}
	if topics[1].Name != "Pipeline Automation" || !topics[1].Selected {
		t.Errorf("Unexpected topic: %+v", topics[1])
	}

	req := responder.Requests()[0]
	if req.Schema == nil || req.SchemaName != "topic_suggestions" {
		t.Error("Expected a structured output request")
	}
	if !strings.Contains(req.Prompt, "Beta") {
		t.Error("Expected competitors in the prompt")
	}
}

func TestSuggestTopicsEmptyListFallsBack(t *testing.T) {
	topics := services.NewTopicService(testutil.TextResponder(`{"topics":[]}`), nil).
		SuggestTopics(context.Background(), testutil.SampleProfile())
	if len(topics) != 5 {
		t.Errorf("Expected defaults for an empty suggestion list, got %d", len(topics))
	}
}

func TestNewCustomTopic(t *testing.T) {
	svc := services.NewTopicService(testutil.TextResponder(""), nil)
	a := svc.NewCustomTopic("  Security & Compliance ")
	b := svc.NewCustomTopic("Security & Compliance")

	if a.Name != "Security & Compliance" {
		t.Errorf("Expected trimmed name, got %q", a.Name)
	}
	if !a.Selected {
		t.Error("Expected custom topics to start selected")
	}
	if a.ID == b.ID || !strings.HasPrefix(a.ID, "custom-") {
		t.Errorf("Expected unique custom ids, got %q and %q", a.ID, b.ID)
	}
}
