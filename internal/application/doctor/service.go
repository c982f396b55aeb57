package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	appconfig "github.com/doeshing/gitflow-ai/internal/application/config"
	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider  ports.ConfigProvider
	StateReader     ports.StateReader
	ProviderFactory ports.ProviderFactory
	Store           ports.ResponseStore

	// LookPath finds the git binary; exec.LookPath when nil.
	LookPath func(string) (string, error)
}

// Run executes checks and returns a report. The error is non-nil only when
// the configuration itself cannot be loaded.
func (s *Service) Run(ctx context.Context, repositoryPath string) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format version %s", cfg.ConfigFormatVersion)))
	}

	checks = append(checks, s.gitCheck())

	if s.StateReader != nil {
		checks = append(checks, s.repositoryCheck(ctx, repositoryPath))
	}

	checks = append(checks, s.fallbackCheck(cfg))

	if s.Store != nil {
		if n, err := s.Store.Len(); err != nil {
			checks = append(checks, fail("Response cache", err.Error()))
		} else {
			checks = append(checks, ok("Response cache", fmt.Sprintf("%d entries in %s", n, s.Store.Path())))
		}
	} else {
		checks = append(checks, warn("Response cache", "persistent tier disabled; responses are cached in memory only"))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) gitCheck() domain.HealthCheck {
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath("git")
	if err != nil {
		return fail("Git binary", "git not found in PATH")
	}
	return ok("Git binary", path)
}

func (s *Service) repositoryCheck(ctx context.Context, path string) domain.HealthCheck {
	if path == "" {
		path = "."
	}
	state, err := s.StateReader.Read(ctx, path)
	switch {
	case err == nil:
		return ok("Repository", fmt.Sprintf("%s on branch %s", path, state.CurrentBranch))
	case domain.IsRepositoryUnavailable(err):
		return warn("Repository", fmt.Sprintf("%s is not a git working tree", path))
	default:
		return fail("Repository", err.Error())
	}
}

func (s *Service) fallbackCheck(cfg domain.Config) domain.HealthCheck {
	if !cfg.IsFallbackEnabled() {
		return ok("Fallback model", "disabled; rule-based recognition only")
	}
	model, err := cfg.GetDefaultModel()
	if err != nil {
		return fail("Fallback model", err.Error())
	}
	if s.ProviderFactory != nil {
		if _, err := s.ProviderFactory.ForModel(model); err != nil {
			return fail("Fallback model", err.Error())
		}
	}
	switch providerKind(model) {
	case domain.ProviderKindAnthropic:
		if envMissing(model.AuthEnvVar, "ANTHROPIC_API_KEY") {
			return warn("Fallback model", "ANTHROPIC_API_KEY missing")
		}
	case domain.ProviderKindOpenAI:
		if envMissing(model.AuthEnvVar, "OPENAI_API_KEY") {
			return warn("Fallback model", "OPENAI_API_KEY missing")
		}
	}
	return ok("Fallback model", fmt.Sprintf("%s (%s)", model.Name, defaultString(model.ModelID, model.Name)))
}

func providerKind(model domain.ModelDefinition) domain.ProviderKind {
	if model.Provider != "" {
		return model.Provider
	}
	switch {
	case strings.Contains(model.Endpoint, "anthropic.com"):
		return domain.ProviderKindAnthropic
	case strings.Contains(model.Endpoint, "openai.com"):
		return domain.ProviderKindOpenAI
	default:
		return domain.ProviderKindUnknown
	}
}

func envMissing(primary, fallback string) bool {
	if primary != "" && os.Getenv(primary) != "" {
		return false
	}
	if fallback != "" && os.Getenv(fallback) != "" {
		return false
	}
	return true
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
