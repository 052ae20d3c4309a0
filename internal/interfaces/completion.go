package interfaces

import (
	"context"

	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// CompletionRequest is a provider-agnostic text completion request.
type CompletionRequest struct {
	// System is an optional system instruction prepended to the exchange.
	System string

	// Prompt is the user-facing prompt text.
	Prompt string

	// MaxTokens limits the response length. Zero uses the provider default.
	MaxTokens int

	// Temperature overrides the provider default when > 0.
	Temperature float32
}

// CompletionProvider generates text completions. Implementations wrap a
// specific LLM API (Claude, Gemini) and handle their own retry behavior.
type CompletionProvider interface {
	// Generate produces a completion for the request. Callers that must not
	// fail (synthesis, per-page analysis) handle the error by degrading to
	// a fallback string.
	Generate(ctx context.Context, req CompletionRequest) (string, error)

	// ModelInfo reports the provider and model behind this instance.
	ModelInfo() models.ModelInfo
}
