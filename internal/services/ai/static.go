package ai

import (
	"context"

	"github.com/mindwell/wellness-api/internal/models"
)

// StaticProvider serves canned prompts without any external calls. Used when
// no API key is configured.
type StaticProvider struct{}

// NewStaticProvider creates a static prompt provider
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

// RegisterStatic registers the static provider factory
func RegisterStatic(r *ProviderRegistry) {
	r.Register("static", func(map[string]string) (PromptProvider, error) {
		return NewStaticProvider(), nil
	})
}

// SynthesizeFollowUp returns the static empathetic fallback
func (p *StaticProvider) SynthesizeFollowUp(_ context.Context, _ *models.RecommendationPayload, _ []*models.ChatEntry) (string, error) {
	return FallbackFollowUp, nil
}

// MusicPrompt maps averaged chat sentiment onto a fixed mood template
func (p *StaticProvider) MusicPrompt(_ context.Context, history []*models.ChatEntry) (string, error) {
	return MoodPromptFor(AverageSentiment(history)), nil
}

var (
	_ PromptProvider = (*OpenAIProvider)(nil)
	_ PromptProvider = (*StaticProvider)(nil)
)
