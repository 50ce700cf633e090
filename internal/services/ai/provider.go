package ai

import (
	"context"

	"github.com/mindwell/wellness-api/internal/models"
)

// PromptProvider is the interface for AI prompt synthesis providers
type PromptProvider interface {
	// SynthesizeFollowUp generates a short, personalized follow-up message for
	// a recommendation, grounded in the user's recent chat history
	SynthesizeFollowUp(ctx context.Context, rec *models.RecommendationPayload, history []*models.ChatEntry) (string, error)

	// MusicPrompt generates a music-generation prompt matched to the user's
	// recent emotional state
	MusicPrompt(ctx context.Context, history []*models.ChatEntry) (string, error)
}

// ProviderFactory creates a prompt provider based on the provider type
type ProviderFactory func(config map[string]string) (PromptProvider, error)

// ProviderRegistry stores available prompt providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (PromptProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "prompt provider not found: " + e.Name
}
