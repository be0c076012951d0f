package providers

import (
	"context"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/providers/common"
)

// Responder is an answer engine: it takes a prompt and returns free text plus
// optional grounding citations. Implementations are safe for concurrent use.
type Responder interface {
	Respond(ctx context.Context, req common.RespondRequest) (*common.AIResponse, error)
	GetProviderName() string
}
