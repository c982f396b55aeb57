package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

var testRequest = ports.ProviderRequest{
	Utterance:   "could you tidy things up",
	StateDigest: "branch: main",
	Vocabulary:  []domain.IntentKind{domain.IntentCommitStaged, domain.IntentCleanUntracked},
}

func TestFactoryForModel(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		name     string
		model    domain.ModelDefinition
		wantName string
		wantErr  bool
	}{
		{name: "anthropic endpoint", model: domain.ModelDefinition{Name: "claude", Endpoint: "https://api.anthropic.com/v1/messages"}, wantName: "anthropic"},
		{name: "openai endpoint", model: domain.ModelDefinition{Name: "gpt", Endpoint: "https://api.openai.com/v1/chat/completions"}, wantName: "openai"},
		{name: "local ollama", model: domain.ModelDefinition{Name: "llama", Endpoint: "http://localhost:11434"}, wantName: "ollama"},
		{name: "explicit provider wins", model: domain.ModelDefinition{Name: "proxy", Provider: domain.ProviderKindOpenAI, Endpoint: "https://llm.internal/v1/chat"}, wantName: "openai"},
		{name: "unknown endpoint", model: domain.ModelDefinition{Name: "mystery", Endpoint: "https://llm.internal"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := factory.ForModel(tt.model)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, provider.Name())
			assert.Equal(t, tt.model, provider.Model())
		})
	}
}

func TestAnthropicProviderGenerate(t *testing.T) {
	t.Setenv("TEST_ANTHROPIC_KEY", "secret")

	var captured anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":" clean_untracked\n"}]}`))
	}))
	defer server.Close()

	model := domain.ModelDefinition{Name: "claude", Provider: domain.ProviderKindAnthropic, Endpoint: server.URL, AuthEnvVar: "TEST_ANTHROPIC_KEY", ModelID: "claude-test"}
	provider, err := NewFactory().ForModel(model)
	require.NoError(t, err)

	resp, err := provider.Generate(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "clean_untracked", resp.Text)
	assert.Equal(t, "anthropic", resp.Provider)

	assert.Equal(t, "claude-test", captured.Model)
	assert.Equal(t, domain.DefaultMaxTokens, captured.MaxTokens)
	assert.Contains(t, captured.System, "commit_staged, clean_untracked")
	assert.Contains(t, captured.System, "branch: main")
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "could you tidy things up", captured.Messages[0].Content[0].Text)
}

func TestOpenAIProviderGenerate(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	t.Setenv("TEST_OPENAI_ORG", "org-1")

	var captured chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("authorization"))
		assert.Equal(t, "org-1", r.Header.Get("OpenAI-Organization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"create_branch\nbranch: feature/login"}}]}`))
	}))
	defer server.Close()

	model := domain.ModelDefinition{Name: "gpt", Provider: domain.ProviderKindOpenAI, Endpoint: server.URL, AuthEnvVar: "TEST_OPENAI_KEY", OrgEnvVar: "TEST_OPENAI_ORG", ModelID: "gpt-test"}
	provider, err := NewFactory().ForModel(model)
	require.NoError(t, err)

	resp, err := provider.Generate(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "create_branch\nbranch: feature/login", resp.Text)

	assert.Equal(t, "gpt-test", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
}

func TestHTTPProviderErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	t.Run("status code", func(t *testing.T) {
		t.Setenv("TEST_OPENAI_KEY", "sk-test")
		model := domain.ModelDefinition{Name: "gpt", Provider: domain.ProviderKindOpenAI, Endpoint: server.URL, AuthEnvVar: "TEST_OPENAI_KEY"}
		provider, err := NewFactory().ForModel(model)
		require.NoError(t, err)
		_, err = provider.Generate(context.Background(), testRequest)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("missing key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		model := domain.ModelDefinition{Name: "gpt", Provider: domain.ProviderKindOpenAI, Endpoint: server.URL, AuthEnvVar: "TEST_UNSET_KEY"}
		provider, err := NewFactory().ForModel(model)
		require.NoError(t, err)
		_, err = provider.Generate(context.Background(), testRequest)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing API key")
	})
}

func TestOllamaProviderGenerate(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"stash"},"done":true}` + "\n"))
	}))
	defer server.Close()

	model := domain.ModelDefinition{Name: "local", Provider: domain.ProviderKindOllama, Endpoint: server.URL + "/v1/chat/completions", ModelID: "llama3"}
	provider, err := NewFactory().ForModel(model)
	require.NoError(t, err)

	resp, err := provider.Generate(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "stash", resp.Text)
	assert.Equal(t, "ollama", resp.Provider)
	assert.Equal(t, "llama3", captured["model"])
	assert.Equal(t, false, captured["stream"])
}

func TestOllamaBaseURL(t *testing.T) {
	base, err := ollamaBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaURL, base.String())

	base, err = ollamaBaseURL("http://gpu-box:11434/api/chat")
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434", base.String())

	_, err = ollamaBaseURL("gpu-box")
	assert.Error(t, err)
}

func TestRenderPromptMessagesCustomTemplate(t *testing.T) {
	model := domain.ModelDefinition{Prompt: []domain.PromptMessage{
		{Role: "system", Content: "Tags: {{.Vocabulary}}"},
	}}

	messages, err := renderPromptMessages(model, testRequest)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Tags: commit_staged, clean_untracked", messages[0].Content)
	assert.Equal(t, domain.PromptMessage{Role: "user", Content: "could you tidy things up"}, messages[1])

	_, err = renderPromptMessages(domain.ModelDefinition{Prompt: []domain.PromptMessage{{Role: "user", Content: "{{.Nope"}}}, testRequest)
	assert.Error(t, err)
}

type stubProvider struct {
	text  string
	err   error
	calls int
	last  ports.ProviderRequest
}

func (p *stubProvider) Name() string                  { return "stub" }
func (p *stubProvider) Model() domain.ModelDefinition { return domain.ModelDefinition{Name: "stub"} }
func (p *stubProvider) Generate(_ context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	p.calls++
	p.last = req
	return ports.ProviderResponse{Text: p.text, Provider: "stub"}, p.err
}

type stubFactory struct {
	provider *stubProvider
	err      error
	builds   int
}

func (f *stubFactory) ForModel(domain.ModelDefinition) (ports.Provider, error) {
	f.builds++
	if f.err != nil {
		return nil, f.err
	}
	return f.provider, nil
}

func fallbackConfig() domain.Config {
	return domain.Config{Fallback: domain.FallbackSettings{
		Enabled:      true,
		DefaultModel: "stub",
		Models:       []domain.ModelDefinition{{Name: "stub", Endpoint: "http://localhost:11434"}},
	}}
}

func TestSummarizer(t *testing.T) {
	t.Run("returns provider text", func(t *testing.T) {
		factory := &stubFactory{provider: &stubProvider{text: "clean_untracked"}}
		summarizer, err := NewSummarizer(fallbackConfig(), factory)
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			text, err := summarizer.Summarize(context.Background(), "tidy up", "branch: main")
			require.NoError(t, err)
			assert.Equal(t, "clean_untracked", text)
		}
		assert.Equal(t, 1, factory.builds)
		assert.Equal(t, 2, factory.provider.calls)
		assert.Equal(t, domain.Vocabulary(), factory.provider.last.Vocabulary)
		assert.Equal(t, "branch: main", factory.provider.last.StateDigest)
	})

	t.Run("empty answer is an error", func(t *testing.T) {
		summarizer, err := NewSummarizer(fallbackConfig(), &stubFactory{provider: &stubProvider{}})
		require.NoError(t, err)
		_, err = summarizer.Summarize(context.Background(), "tidy up", "")
		assert.Error(t, err)
	})

	t.Run("factory error is sticky", func(t *testing.T) {
		boom := errors.New("no provider")
		factory := &stubFactory{err: boom}
		summarizer, err := NewSummarizer(fallbackConfig(), factory)
		require.NoError(t, err)
		_, err = summarizer.Summarize(context.Background(), "tidy up", "")
		assert.ErrorIs(t, err, boom)
		_, err = summarizer.Summarize(context.Background(), "tidy up", "")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, factory.builds)
	})

	t.Run("missing default model", func(t *testing.T) {
		_, err := NewSummarizer(domain.Config{}, nil)
		assert.Error(t, err)
	})
}
