package app

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/doeshing/gitflow-ai/internal/application/assist"
	appconfig "github.com/doeshing/gitflow-ai/internal/application/config"
	"github.com/doeshing/gitflow-ai/internal/application/doctor"
	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/ai"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/cache"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/config"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/executor"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/generator"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/gitstate"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/intent"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/safety"
	"github.com/doeshing/gitflow-ai/internal/pkg/logger"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// Options selects how the container is built.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config        domain.Config
	ConfigLoader  *config.FileLoader
	Logger        ports.Logger
	StateReader   ports.StateReader
	Assistant     domain.Assistant
	Cache         *cache.ResponseCache
	Executor      ports.CommandExecutor
	DoctorService *doctor.Service

	// Filled in by the CLI layer.
	Prompter  ports.ConfirmationPrompter
	Clipboard ports.Clipboard
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	log := logger.New(opts.Verbose)

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		return nil, errors.WithHint(
			fmt.Errorf("invalid configuration %s: %w", cfgLoader.Path(), err),
			"fix the file or run `gitflow config reset`",
		)
	}

	reader := gitstate.NewReader(cfg, log)
	factory := ai.NewFactory()

	classifier, err := safety.NewClassifier(cfg)
	if err != nil {
		log.Warn("risk rules ignored", map[string]interface{}{"error": err.Error(), "file": cfg.Safety.RulesFile})
		cfg.Safety.RulesFile = ""
		if classifier, err = safety.NewClassifier(cfg); err != nil {
			return nil, err
		}
	}

	var store ports.ResponseStore
	if cfg.Cache.Persistent {
		sqliteStore, err := cache.NewSQLiteStore(cfg.Cache.Path, cfg.GetCacheMaxEntries(), cfg.GetCacheTTL())
		if err != nil {
			log.Warn("persistent cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			store = sqliteStore
		}
	}
	responses, err := cache.NewResponseCache(cfg.GetCacheMaxEntries(), store, log)
	if err != nil {
		return nil, err
	}

	assistant := &assist.Service{
		StateReader: reader,
		Recognizer:  intent.NewRecognizer(cfg, fallbackSummarizer(cfg, factory, log), log),
		Generator:   generator.NewGenerator(),
		Classifier:  classifier,
		Cache:       responses,
		Logger:      log,
	}

	doctorService := &doctor.Service{
		ConfigProvider:  cfgLoader,
		StateReader:     reader,
		ProviderFactory: factory,
		Store:           store,
	}

	return &Container{
		Config:        cfg,
		ConfigLoader:  cfgLoader,
		Logger:        log,
		StateReader:   reader,
		Assistant:     assistant,
		Cache:         responses,
		Executor:      executor.NewGitExecutor(""),
		DoctorService: doctorService,
	}, nil
}

// Close releases the persistent cache.
func (c *Container) Close() error {
	if c == nil || c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}

// fallbackSummarizer returns nil unless the generative fallback is enabled
// and its default model resolves.
func fallbackSummarizer(cfg domain.Config, factory ports.ProviderFactory, log ports.Logger) ports.FallbackSummarizer {
	if !cfg.IsFallbackEnabled() {
		return nil
	}
	summarizer, err := ai.NewSummarizer(cfg, factory)
	if err != nil {
		log.Warn("intent fallback disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}
	log.Debug("intent fallback enabled", map[string]interface{}{"model": summarizer.Model().Name})
	return summarizer
}
