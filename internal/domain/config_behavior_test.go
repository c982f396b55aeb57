package domain_test

import (
	"testing"
	"time"

	"github.com/doeshing/gitflow-ai/internal/domain"
)

// TestConfig_GetDefaultModel tests retrieving the fallback model
func TestConfig_GetDefaultModel(t *testing.T) {
	tests := []struct {
		name        string
		config      domain.Config
		wantError   bool
		wantModelID string
	}{
		{
			name: "returns default model successfully",
			config: domain.Config{
				Fallback: domain.FallbackSettings{
					DefaultModel: "local",
					Models: []domain.ModelDefinition{
						{Name: "local", ModelID: "llama3.2"},
						{Name: "gpt4", ModelID: "gpt-4o"},
					},
				},
			},
			wantModelID: "llama3.2",
		},
		{
			name: "returns error when default model not found",
			config: domain.Config{
				Fallback: domain.FallbackSettings{
					DefaultModel: "nonexistent",
					Models:       []domain.ModelDefinition{{Name: "local"}},
				},
			},
			wantError: true,
		},
		{
			name: "returns error when no default model configured",
			config: domain.Config{
				Fallback: domain.FallbackSettings{
					Models: []domain.ModelDefinition{{Name: "local"}},
				},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := tt.config.GetDefaultModel()

			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if model.ModelID != tt.wantModelID {
				t.Errorf("got model ID %s, want %s", model.ModelID, tt.wantModelID)
			}
		})
	}
}

// TestConfig_IsProtectedBranch tests the protected branch defaults
func TestConfig_IsProtectedBranch(t *testing.T) {
	tests := []struct {
		name      string
		protected []string
		branch    string
		want      bool
	}{
		{name: "default main", branch: "main", want: true},
		{name: "default master", branch: "master", want: true},
		{name: "default feature", branch: "feature/x", want: false},
		{name: "custom list replaces defaults", protected: []string{"develop"}, branch: "main", want: false},
		{name: "custom list matches", protected: []string{"develop", " release "}, branch: "release", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.Config{Safety: domain.SafetySettings{ProtectedBranches: tt.protected}}
			if got := cfg.IsProtectedBranch(tt.branch); got != tt.want {
				t.Errorf("IsProtectedBranch(%q) = %v, want %v", tt.branch, got, tt.want)
			}
		})
	}
}

// TestConfig_Defaults tests getters fall back when values are unset or invalid
func TestConfig_Defaults(t *testing.T) {
	var cfg domain.Config
	cfg.Cache.TTL = "not-a-duration"
	cfg.Recognizer.ConfidenceThreshold = 1.5

	if got := cfg.GetMaxRecentCommits(); got != domain.DefaultMaxRecentCommits {
		t.Errorf("GetMaxRecentCommits() = %d", got)
	}
	if got := cfg.GetCacheTTL(); got != domain.DefaultCacheTTL {
		t.Errorf("GetCacheTTL() = %s", got)
	}
	if got := cfg.GetConfidenceThreshold(); got != domain.DefaultConfidenceThreshold {
		t.Errorf("GetConfidenceThreshold() = %v", got)
	}
	if got := cfg.GetGitTimeout(); got != domain.DefaultGitTimeout {
		t.Errorf("GetGitTimeout() = %s", got)
	}

	cfg.State.GitTimeout = "750ms"
	if got := cfg.GetGitTimeout(); got != 750*time.Millisecond {
		t.Errorf("GetGitTimeout() = %s, want 750ms", got)
	}
}

// TestConfig_ValidateConsistency tests fallback consistency checks
func TestConfig_ValidateConsistency(t *testing.T) {
	tests := []struct {
		name      string
		fallback  domain.FallbackSettings
		wantError bool
	}{
		{name: "disabled and empty", fallback: domain.FallbackSettings{}},
		{name: "enabled without model", fallback: domain.FallbackSettings{Enabled: true}, wantError: true},
		{name: "unknown default model", fallback: domain.FallbackSettings{DefaultModel: "x"}, wantError: true},
		{
			name: "enabled with model",
			fallback: domain.FallbackSettings{
				Enabled:      true,
				DefaultModel: "local",
				Models:       []domain.ModelDefinition{{Name: "local"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.Config{Fallback: tt.fallback}
			err := cfg.ValidateConsistency()
			if tt.wantError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
