package ai

import (
	"errors"
	"testing"
)

func TestProviderRegistry(t *testing.T) {
	t.Parallel()

	registry := NewProviderRegistry()
	RegisterOpenAI(registry)
	RegisterStatic(registry)

	provider, err := registry.GetProvider("static", nil)
	if err != nil {
		t.Fatalf("GetProvider(static): %v", err)
	}
	if _, ok := provider.(*StaticProvider); !ok {
		t.Errorf("provider type = %T, want *StaticProvider", provider)
	}

	provider, err = registry.GetProvider("openai", map[string]string{"api_key": "sk-test", "model": "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("GetProvider(openai): %v", err)
	}
	if _, ok := provider.(*OpenAIProvider); !ok {
		t.Errorf("provider type = %T, want *OpenAIProvider", provider)
	}
}

func TestProviderRegistryUnknown(t *testing.T) {
	t.Parallel()

	registry := NewProviderRegistry()

	_, err := registry.GetProvider("anthropic", nil)
	if err == nil {
		t.Fatal("expected error for unregistered provider")
	}

	var notFound *ErrProviderNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("error type = %T, want *ErrProviderNotFound", err)
	}
}
