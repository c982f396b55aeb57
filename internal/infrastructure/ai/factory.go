// Package ai talks to the language models used by the fallback recognizer.
//
// Anthropic and OpenAI compatible endpoints go through a small HTTP provider
// with per-dialect adapters; Ollama goes through its official client.
package ai

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// Factory creates providers from model definitions and shares one HTTP client.
type Factory struct {
	httpClient *http.Client
}

// NewFactory creates a provider factory.
func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
	}
}

// ForModel implements ports.ProviderFactory.
func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Provider, error) {
	switch kind := providerKind(model); kind {
	case domain.ProviderKindAnthropic:
		return newHTTPProvider("anthropic", model, f.httpClient, anthropicAdapter()), nil
	case domain.ProviderKindOpenAI:
		return newHTTPProvider("openai", model, f.httpClient, openaiAdapter()), nil
	case domain.ProviderKindOllama:
		return newOllamaProvider(model, f.httpClient)
	default:
		return nil, fmt.Errorf("model %s: cannot infer provider from endpoint %q; set provider explicitly", model.Name, model.Endpoint)
	}
}

// providerKind prefers the explicit provider field and otherwise guesses from
// the endpoint and the model name.
func providerKind(model domain.ModelDefinition) domain.ProviderKind {
	if model.Provider != "" && model.Provider != domain.ProviderKindUnknown {
		return model.Provider
	}
	return inferProviderKind(model.Endpoint, model.Name)
}

func inferProviderKind(endpoint string, name string) domain.ProviderKind {
	nameLower := strings.ToLower(name)

	switch {
	case strings.Contains(endpoint, "anthropic.com"):
		return domain.ProviderKindAnthropic
	case strings.Contains(endpoint, "openai.com"):
		return domain.ProviderKindOpenAI
	case strings.Contains(nameLower, "ollama"), strings.Contains(endpoint, "11434"), strings.Contains(endpoint, "localhost"):
		return domain.ProviderKindOllama
	default:
		return domain.ProviderKindUnknown
	}
}

var _ ports.ProviderFactory = (*Factory)(nil)
