// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The assistant pipeline depends only on these
// interfaces; git inspection, caching, model providers and terminal I/O are
// concrete adapters wired together in internal/app.
package ports

import (
	"context"

	"github.com/doeshing/gitflow-ai/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.gitflow/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// StateReader inspects a working tree without modifying it.
type StateReader interface {
	Read(ctx context.Context, repositoryPath string) (domain.RepositoryState, error)
}

// IntentRecognizer ranks vocabulary intents for an utterance. The result is
// never empty and is sorted by confidence, highest first.
type IntentRecognizer interface {
	Recognize(ctx context.Context, utterance string, state domain.RepositoryState) []domain.Intent
}

// CommandGenerator maps an intent to git invocations. A non-nil clarification
// means a required parameter is missing and no candidates are returned.
type CommandGenerator interface {
	Generate(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification)
}

// SafetyClassifier assigns risk tiers, warnings and alternatives.
type SafetyClassifier interface {
	Classify(candidates []domain.CommandCandidate, state domain.RepositoryState) domain.Classification
}

// ResponseCache memoizes responses by cache key. Do runs compute at most once
// per key across concurrent callers; hit is true when no computation ran.
type ResponseCache interface {
	Get(key string) (domain.AssistantResponse, bool)
	Put(key string, resp domain.AssistantResponse)
	Do(ctx context.Context, key string, compute func(context.Context) (domain.AssistantResponse, error)) (resp domain.AssistantResponse, hit bool, err error)
}

// ResponseStore is a persistent second tier behind the in-memory cache.
type ResponseStore interface {
	Get(key string) (domain.AssistantResponse, bool, error)
	Set(key string, resp domain.AssistantResponse) error
	Len() (int, error)
	Clear() error
	Path() string
	Close() error
}

// FallbackSummarizer is the generative recognizer consulted when no rule is
// confident enough. It returns free text that is parsed for a vocabulary tag.
type FallbackSummarizer interface {
	Summarize(ctx context.Context, utterance string, stateDigest string) (string, error)
}

// ProviderFactory builds AI provider instances based on model definitions.
// It abstracts the creation of different provider types (Anthropic, OpenAI, Ollama).
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (Provider, error)
}

// Provider wraps one model API.
type Provider interface {
	Name() string
	Model() domain.ModelDefinition
	Generate(context.Context, ProviderRequest) (ProviderResponse, error)
}

// ProviderRequest contains all data needed to classify an utterance remotely.
type ProviderRequest struct {
	Utterance   string
	StateDigest string
	Vocabulary  []domain.IntentKind
}

// ProviderResponse contains the raw model output.
type ProviderResponse struct {
	Text     string
	Provider string
}

// CommandExecutor runs a candidate against a repository.
type CommandExecutor interface {
	Execute(ctx context.Context, repositoryPath string, candidate domain.CommandCandidate) (domain.ExecutionResult, error)
}

// ConfirmationPrompter handles interactive user confirmations for risky operations.
type ConfirmationPrompter interface {
	Confirm(candidate domain.CommandCandidate, warnings []string) (bool, error)
	Enabled() bool
}

// Clipboard provides cross-platform clipboard integration for copying commands.
type Clipboard interface {
	Copy(text string) error
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
