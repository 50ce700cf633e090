package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mindwell/wellness-api/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

const followUpSystemPrompt = "You are a caring assistant on a mental-wellness platform. " +
	"Given a user's recent messages, write one short empathetic follow-up question " +
	"(under 100 characters) inviting them to continue. Respond with the question only, no quotes."

// OpenAIProvider implements the PromptProvider interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// RegisterOpenAI registers the OpenAI provider factory
func RegisterOpenAI(r *ProviderRegistry) {
	r.Register("openai", func(config map[string]string) (PromptProvider, error) {
		return NewOpenAIProvider(config["api_key"], config["model"]), nil
	})
}

// SynthesizeFollowUp generates a short follow-up question from recent chat
// history. Generation failures degrade to the static fallback, never to an
// error the caller must surface.
func (p *OpenAIProvider) SynthesizeFollowUp(ctx context.Context, rec *models.RecommendationPayload, history []*models.ChatEntry) (string, error) {
	userMessages := RecentUserMessages(history)
	if len(userMessages) == 0 {
		return FallbackFollowUp, nil
	}

	prompt := p.buildFollowUpPrompt(rec, userMessages)
	content, err := p.complete(ctx, "synthesize_follow_up", followUpSystemPrompt, prompt)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("prompt_synthesis_fallback",
				zap.String("operation", "synthesize_follow_up"),
				zap.Error(err),
			)
		}
		return FallbackFollowUp, nil
	}

	result := PostProcessPrompt(content, MaxPromptLength)
	if result == "" {
		return FallbackFollowUp, nil
	}
	return result, nil
}

// MusicPrompt maps averaged chat sentiment onto a fixed mood template. Pure
// templating, no API call.
func (p *OpenAIProvider) MusicPrompt(_ context.Context, history []*models.ChatEntry) (string, error) {
	return MoodPromptFor(AverageSentiment(history)), nil
}

func (p *OpenAIProvider) buildFollowUpPrompt(rec *models.RecommendationPayload, userMessages []string) string {
	var b strings.Builder
	b.WriteString("The user's recent messages:\n")
	for _, msg := range userMessages {
		b.WriteString("- ")
		b.WriteString(msg)
		b.WriteString("\n")
	}
	if rec != nil && rec.PageDisplayName != "" {
		fmt.Fprintf(&b, "\nWe are inviting them back to %s.\n", rec.PageDisplayName)
	}
	b.WriteString("\nWrite the follow-up question.")
	return b.String()
}

// complete sends a chat completion request and returns the first choice content
func (p *OpenAIProvider) complete(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(userPrompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(userPrompt)),
			zap.String("prompt_preview", SanitizePrompt(userPrompt, true)),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Duration("latency_ms", latency),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to generate prompt: %w", apiErr)
		}
		return "", fmt.Errorf("failed to generate prompt: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}
