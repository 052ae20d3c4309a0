package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/FellowTraveler/WebRAgent/internal/common"
	"github.com/FellowTraveler/WebRAgent/internal/interfaces"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

// DetectProvider determines the provider type from a model string.
// Model strings can be:
// - "claude-haiku-3-5-20241022" -> Claude
// - "claude/claude-haiku-3-5-20241022" -> Claude (with prefix)
// - "gemini-3-flash-preview" -> Gemini
// - Empty string or no match -> fallback
func DetectProvider(model string, fallback ProviderType) ProviderType {
	model = strings.ToLower(model)

	if strings.HasPrefix(model, "claude/") || strings.HasPrefix(model, "anthropic/") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini/") || strings.HasPrefix(model, "google/") {
		return ProviderGemini
	}
	if strings.HasPrefix(model, "claude-") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini-") {
		return ProviderGemini
	}

	return fallback
}

// ApplyModelOverride points the configuration at model, inferring the
// provider from its name. Unrecognized names keep the configured provider
// and set its model.
func ApplyModelOverride(cfg *common.Config, model string) {
	name := model
	for _, prefix := range []string{"claude/", "anthropic/", "gemini/", "google/"} {
		name = strings.TrimPrefix(name, prefix)
	}

	switch DetectProvider(model, ProviderType(cfg.LLM.DefaultProvider)) {
	case ProviderClaude:
		cfg.LLM.DefaultProvider = common.LLMProviderClaude
		cfg.Claude.Model = name
	case ProviderGemini:
		cfg.LLM.DefaultProvider = common.LLMProviderGemini
		cfg.Gemini.Model = name
	}
}

// NewProvider creates the configured completion provider. An unknown
// provider name falls back to Gemini with a warning.
func NewProvider(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (interfaces.CompletionProvider, error) {
	switch cfg.LLM.DefaultProvider {
	case common.LLMProviderClaude:
		return NewClaudeProvider(&cfg.Claude, logger)
	case common.LLMProviderGemini:
		return NewGeminiProvider(ctx, &cfg.Gemini, logger)
	default:
		logger.Warn().
			Str("provider", string(cfg.LLM.DefaultProvider)).
			Msg("Unknown LLM provider, falling back to Gemini")
		return NewGeminiProvider(ctx, &cfg.Gemini, logger)
	}
}

// ClaudeProvider generates completions through the Anthropic API.
type ClaudeProvider struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
	retryConfig *RetryConfig
	logger      arbor.ILogger
}

// NewClaudeProvider creates a Claude-backed completion provider.
func NewClaudeProvider(cfg *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is not configured")
	}

	return &ClaudeProvider{
		client:      anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		retryConfig: NewDefaultRetryConfig(),
		logger:      logger,
	}, nil
}

// Generate produces a completion for the request via the Claude API,
// retrying on rate limits.
func (p *ClaudeProvider) Generate(ctx context.Context, req interfaces.CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	temp := req.Temperature
	if temp <= 0 {
		temp = p.temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	var resp *anthropic.Message
	var apiErr error

	for attempt := 0; attempt <= p.retryConfig.MaxRetries; attempt++ {
		resp, apiErr = p.client.Messages.New(ctx, params)
		if apiErr == nil {
			break
		}

		if attempt == p.retryConfig.MaxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * 2 * time.Second
		if IsRateLimitError(apiErr) {
			backoff = p.retryConfig.CalculateBackoff(attempt, 0)
		}

		p.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Claude API call")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	if apiErr != nil {
		return "", fmt.Errorf("Claude API call failed after %d retries: %w", p.retryConfig.MaxRetries, apiErr)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Claude API")
	}

	return text.String(), nil
}

// ModelInfo reports the provider and model behind this instance.
func (p *ClaudeProvider) ModelInfo() models.ModelInfo {
	return models.ModelInfo{
		Provider: string(ProviderClaude),
		Model:    p.model,
	}
}

// GeminiProvider generates completions through the Google Gemini API.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
	retryConfig *RetryConfig
	logger      arbor.ILogger
}

// NewGeminiProvider creates a Gemini-backed completion provider.
func NewGeminiProvider(ctx context.Context, cfg *common.GeminiConfig, logger arbor.ILogger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		retryConfig: NewDefaultRetryConfig(),
		logger:      logger,
	}, nil
}

// Generate produces a completion for the request via the Gemini API,
// retrying on rate limits with API-suggested delays when present.
func (p *GeminiProvider) Generate(ctx context.Context, req interfaces.CompletionRequest) (string, error) {
	temp := req.Temperature
	if temp <= 0 {
		temp = p.temperature
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	contents := genai.Text(req.Prompt)

	var resp *genai.GenerateContentResponse
	var apiErr error

	for attempt := 0; attempt <= p.retryConfig.MaxRetries; attempt++ {
		resp, apiErr = p.client.Models.GenerateContent(ctx, p.model, contents, config)
		if apiErr == nil {
			break
		}

		if attempt == p.retryConfig.MaxRetries {
			break
		}

		var backoff time.Duration
		if IsRateLimitError(apiErr) {
			apiDelay := ExtractRetryDelay(apiErr)
			backoff = p.retryConfig.CalculateBackoff(attempt, apiDelay)
		} else {
			backoff = time.Duration(attempt+1) * 2 * time.Second
		}

		p.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Gemini API call")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	if apiErr != nil {
		return "", fmt.Errorf("Gemini API call failed after %d retries: %w", p.retryConfig.MaxRetries, apiErr)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini API")
	}

	responseText := resp.Text()
	if responseText == "" {
		return "", fmt.Errorf("empty text in Gemini response")
	}

	return responseText, nil
}

// ModelInfo reports the provider and model behind this instance.
func (p *GeminiProvider) ModelInfo() models.ModelInfo {
	return models.ModelInfo{
		Provider: string(ProviderGemini),
		Model:    p.model,
	}
}
