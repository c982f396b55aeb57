// Package domain defines core entities and value objects for gitflow.
//
// This file contains the model definitions used by the optional generative
// fallback recognizer.
package domain

// ProviderKind identifies the API dialect of a model endpoint.
type ProviderKind string

const (
	ProviderKindAnthropic ProviderKind = "anthropic"
	ProviderKindOpenAI    ProviderKind = "openai"
	ProviderKindOllama    ProviderKind = "ollama"
	ProviderKindUnknown   ProviderKind = "unknown"
)

// ModelDefinition describes an AI provider declared in the config file.
type ModelDefinition struct {
	Name       string          `yaml:"name" mapstructure:"name"`
	Provider   ProviderKind    `yaml:"provider,omitempty" mapstructure:"provider"`
	Endpoint   string          `yaml:"endpoint" mapstructure:"endpoint"`
	AuthEnvVar string          `yaml:"auth_env_var,omitempty" mapstructure:"auth_env_var"`
	OrgEnvVar  string          `yaml:"org_env_var,omitempty" mapstructure:"org_env_var"`
	ModelID    string          `yaml:"model_id" mapstructure:"model_id"`
	MaxTokens  int             `yaml:"max_tokens,omitempty" mapstructure:"max_tokens"`
	Prompt     []PromptMessage `yaml:"prompt,omitempty" mapstructure:"prompt"`
}

// PromptMessage follows the role/content pair required by most chat APIs.
type PromptMessage struct {
	Role    string `yaml:"role" mapstructure:"role"`
	Content string `yaml:"content" mapstructure:"content"`
}
