package ai

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ollama/ollama/api"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// DefaultOllamaURL is used when a model has no endpoint.
const DefaultOllamaURL = "http://localhost:11434"

type ollamaProvider struct {
	model  domain.ModelDefinition
	client *api.Client
}

func newOllamaProvider(model domain.ModelDefinition, httpClient *http.Client) (ports.Provider, error) {
	base, err := ollamaBaseURL(model.Endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", model.Name)
	}
	return &ollamaProvider{
		model:  model,
		client: api.NewClient(base, httpClient),
	}, nil
}

// ollamaBaseURL keeps scheme and host only; endpoints copied from other tools
// often carry an API path such as /v1/chat/completions.
func ollamaBaseURL(endpoint string) (*url.URL, error) {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultOllamaURL
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "parse ollama endpoint")
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Newf("invalid ollama endpoint %q", endpoint)
	}
	return &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}, nil
}

func (o *ollamaProvider) Name() string {
	return "ollama"
}

func (o *ollamaProvider) Model() domain.ModelDefinition {
	return o.model
}

func (o *ollamaProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	rendered, err := renderPromptMessages(o.model, req)
	if err != nil {
		return ports.ProviderResponse{}, errors.Wrap(err, "render prompt")
	}

	messages := make([]api.Message, 0, len(rendered))
	for _, msg := range rendered {
		messages = append(messages, api.Message{Role: strings.ToLower(msg.Role), Content: msg.Content})
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    defaultString(o.model.ModelID, o.model.Name),
		Messages: messages,
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": classificationTemperature,
			"num_predict": defaultInt(o.model.MaxTokens, domain.DefaultMaxTokens),
		},
	}

	var reply strings.Builder
	err = o.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return ports.ProviderResponse{}, errors.Wrap(err, "ollama chat")
	}

	return ports.ProviderResponse{
		Text:     strings.TrimSpace(reply.String()),
		Provider: o.Name(),
	}, nil
}
