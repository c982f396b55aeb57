package ai

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// Summarizer implements ports.FallbackSummarizer on top of the configured
// default model. The provider is built on first use.
type Summarizer struct {
	model   domain.ModelDefinition
	factory ports.ProviderFactory

	once     sync.Once
	provider ports.Provider
	err      error
}

// NewSummarizer returns a summarizer for cfg's default fallback model.
func NewSummarizer(cfg domain.Config, factory ports.ProviderFactory) (*Summarizer, error) {
	model, err := cfg.GetDefaultModel()
	if err != nil {
		return nil, err
	}
	if factory == nil {
		factory = NewFactory()
	}
	return &Summarizer{model: model, factory: factory}, nil
}

// Model returns the model definition used for every call.
func (s *Summarizer) Model() domain.ModelDefinition {
	return s.model
}

// Summarize implements ports.FallbackSummarizer.
func (s *Summarizer) Summarize(ctx context.Context, utterance string, stateDigest string) (string, error) {
	s.once.Do(func() {
		s.provider, s.err = s.factory.ForModel(s.model)
	})
	if s.err != nil {
		return "", s.err
	}

	resp, err := s.provider.Generate(ctx, ports.ProviderRequest{
		Utterance:   utterance,
		StateDigest: stateDigest,
		Vocabulary:  domain.Vocabulary(),
	})
	if err != nil {
		return "", err
	}
	if resp.Text == "" {
		return "", errors.Newf("%s returned an empty answer", s.provider.Name())
	}
	return resp.Text, nil
}

var _ ports.FallbackSummarizer = (*Summarizer)(nil)
