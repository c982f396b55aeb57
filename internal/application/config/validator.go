package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/gitflow-ai/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validatePreferences(cfg.Preferences); err != nil {
		return err
	}
	if err := validateState(cfg.State); err != nil {
		return err
	}
	if err := validateRecognizer(cfg.Recognizer); err != nil {
		return err
	}
	if err := validateFallback(cfg.Fallback); err != nil {
		return err
	}
	if err := validateSafety(cfg.Safety); err != nil {
		return err
	}
	if err := validateCache(cfg.Cache); err != nil {
		return err
	}
	return cfg.ValidateConsistency()
}

func validatePreferences(prefs domain.Preferences) error {
	switch strings.ToLower(prefs.Output) {
	case "", "text", "json":
	default:
		return fmt.Errorf("preferences.output must be text|json, got %s", prefs.Output)
	}
	switch strings.ToLower(prefs.Color) {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("preferences.color must be auto|always|never, got %s", prefs.Color)
	}
	return nil
}

func validateState(state domain.StateSettings) error {
	if state.MaxRecentCommits < 0 {
		return errors.New("state.max_recent_commits must be >= 0")
	}
	return validateDuration("state.git_timeout", state.GitTimeout)
}

func validateRecognizer(rec domain.RecognizerSettings) error {
	if rec.ConfidenceThreshold < 0 || rec.ConfidenceThreshold > 1 {
		return fmt.Errorf("recognizer.confidence_threshold must be within [0, 1], got %v", rec.ConfidenceThreshold)
	}
	if rec.FuzzyMinTokenLength < 0 {
		return errors.New("recognizer.fuzzy_min_token_length must be >= 0")
	}
	return nil
}

func validateFallback(fallback domain.FallbackSettings) error {
	if err := validateDuration("fallback.timeout", fallback.Timeout); err != nil {
		return err
	}
	seen := map[string]bool{}
	for i, model := range fallback.Models {
		if model.Name == "" {
			return fmt.Errorf("fallback.models[%d].name must be set", i)
		}
		if seen[model.Name] {
			return fmt.Errorf("fallback model %s is declared twice", model.Name)
		}
		seen[model.Name] = true
		switch model.Provider {
		case "", domain.ProviderKindAnthropic, domain.ProviderKindOpenAI, domain.ProviderKindOllama:
		default:
			return fmt.Errorf("fallback model %s: provider must be anthropic|openai|ollama, got %s", model.Name, model.Provider)
		}
		if model.Endpoint == "" && model.Provider != domain.ProviderKindOllama {
			return fmt.Errorf("fallback model %s: endpoint must be set", model.Name)
		}
		if model.MaxTokens < 0 {
			return fmt.Errorf("fallback model %s: max_tokens must be >= 0", model.Name)
		}
	}
	return nil
}

func validateSafety(safety domain.SafetySettings) error {
	for _, branch := range safety.ProtectedBranches {
		if strings.TrimSpace(branch) == "" {
			return errors.New("safety.protected_branches must not contain empty names")
		}
	}
	return nil
}

func validateCache(cache domain.CacheSettings) error {
	if err := validateDuration("cache.ttl", cache.TTL); err != nil {
		return err
	}
	if cache.MaxEntries < 0 {
		return errors.New("cache.max_entries must be >= 0")
	}
	return nil
}

func validateDuration(key, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s invalid: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive", key)
	}
	return nil
}
