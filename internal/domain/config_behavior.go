package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// GetDefaultModel retrieves the fallback model selected by fallback.default_model.
// Returns an error if the model is not found.
func (c *Config) GetDefaultModel() (ModelDefinition, error) {
	if c.Fallback.DefaultModel == "" {
		return ModelDefinition{}, fmt.Errorf("no default model configured")
	}

	for _, model := range c.Fallback.Models {
		if model.Name == c.Fallback.DefaultModel {
			return model, nil
		}
	}

	return ModelDefinition{}, fmt.Errorf("default model %s not found in configuration", c.Fallback.DefaultModel)
}

// FindModelByName searches for a model by its name
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Fallback.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a model with the given name exists in the configuration
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}

// IsFallbackEnabled reports whether the generative recognizer should be wired.
func (c *Config) IsFallbackEnabled() bool {
	return c.Fallback.Enabled && c.Fallback.DefaultModel != ""
}

// IsProtectedBranch reports whether commits on branch deserve extra caution.
func (c *Config) IsProtectedBranch(branch string) bool {
	return slices.Contains(c.GetProtectedBranches(), branch)
}

// GetProtectedBranches returns the configured protected branches, defaulting to main and master.
func (c *Config) GetProtectedBranches() []string {
	if len(c.Safety.ProtectedBranches) == 0 {
		return []string{"main", "master"}
	}
	var out []string
	for _, branch := range c.Safety.ProtectedBranches {
		if branch = strings.TrimSpace(branch); branch != "" {
			out = append(out, branch)
		}
	}
	return out
}

// GetMaxRecentCommits returns the bound on recent commits captured per state.
func (c *Config) GetMaxRecentCommits() int {
	if c.State.MaxRecentCommits <= 0 {
		return DefaultMaxRecentCommits
	}
	return c.State.MaxRecentCommits
}

// GetGitTimeout returns the per-command timeout for inspection commands.
func (c *Config) GetGitTimeout() time.Duration {
	return parseDurationOr(c.State.GitTimeout, DefaultGitTimeout)
}

// GetConfidenceThreshold returns the rule score below which the fallback runs.
func (c *Config) GetConfidenceThreshold() float64 {
	if c.Recognizer.ConfidenceThreshold <= 0 || c.Recognizer.ConfidenceThreshold > 1 {
		return DefaultConfidenceThreshold
	}
	return c.Recognizer.ConfidenceThreshold
}

// GetFuzzyMinTokenLength returns the shortest token eligible for typo matching.
func (c *Config) GetFuzzyMinTokenLength() int {
	if c.Recognizer.FuzzyMinTokenLength <= 0 {
		return DefaultFuzzyMinTokenLength
	}
	return c.Recognizer.FuzzyMinTokenLength
}

// GetFallbackTimeout bounds a single fallback call.
func (c *Config) GetFallbackTimeout() time.Duration {
	return parseDurationOr(c.Fallback.Timeout, DefaultFallbackTimeout)
}

// GetCacheMaxEntries returns the maximum number of cache entries
func (c *Config) GetCacheMaxEntries() int {
	if c.Cache.MaxEntries <= 0 {
		return DefaultMaxCacheEntries
	}
	return c.Cache.MaxEntries
}

// GetCacheTTL returns how long persisted responses remain valid.
func (c *Config) GetCacheTTL() time.Duration {
	return parseDurationOr(c.Cache.TTL, DefaultCacheTTL)
}

// GetServerAddr returns the HTTP listen address.
func (c *Config) GetServerAddr() string {
	if c.Server.Addr == "" {
		return DefaultServerAddr
	}
	return c.Server.Addr
}

// ValidateConsistency checks the internal consistency of the configuration
func (c *Config) ValidateConsistency() error {
	if c.Fallback.DefaultModel != "" && !c.HasModel(c.Fallback.DefaultModel) {
		return fmt.Errorf("fallback model %s does not exist in models list", c.Fallback.DefaultModel)
	}

	if c.Fallback.Enabled && c.Fallback.DefaultModel == "" {
		return fmt.Errorf("fallback is enabled but no default model is set")
	}

	return nil
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
