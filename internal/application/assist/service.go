// Package assist runs the assistant pipeline: read repository state, recognise
// the intent, generate git commands and classify their risk.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// Service orchestrates one assistant invocation end-to-end.
type Service struct {
	StateReader ports.StateReader
	Recognizer  ports.IntentRecognizer
	Generator   ports.CommandGenerator
	Classifier  ports.SafetyClassifier
	Cache       ports.ResponseCache
	Logger      ports.Logger
}

// Assist implements domain.Assistant. Only repository errors are returned;
// recognition problems and missing parameters are reported in the response.
func (s *Service) Assist(ctx context.Context, req domain.AssistRequest) (domain.AssistResult, error) {
	if s.StateReader == nil || s.Recognizer == nil || s.Generator == nil ||
		s.Classifier == nil || s.Logger == nil {
		return domain.AssistResult{}, errors.New("assist.Service dependencies not satisfied")
	}

	requestID := uuid.NewString()
	started := time.Now()

	path := req.RepositoryPath
	if path == "" {
		path = "."
	}

	state, err := s.StateReader.Read(ctx, path)
	if err != nil {
		s.Logger.Warn("repository state unavailable", map[string]interface{}{
			"request_id": requestID,
			"repository": path,
			"error":      err.Error(),
		})
		return domain.AssistResult{}, err
	}

	fingerprint := state.Fingerprint()
	compute := func(ctx context.Context) (domain.AssistantResponse, error) {
		return s.Respond(ctx, req.Utterance, state), nil
	}

	var (
		resp domain.AssistantResponse
		hit  bool
	)
	if s.Cache != nil {
		resp, hit, err = s.Cache.Do(ctx, domain.CacheKey(req.Utterance, fingerprint), compute)
		if err != nil {
			return domain.AssistResult{}, fmt.Errorf("compute response: %w", err)
		}
	} else {
		resp, _ = compute(ctx)
	}

	s.Logger.Info("assist completed", map[string]interface{}{
		"request_id":  requestID,
		"intent":      string(resp.Intent.Kind),
		"confidence":  resp.Intent.Confidence,
		"commands":    len(resp.Commands),
		"from_cache":  hit,
		"duration_ms": time.Since(started).Milliseconds(),
	})

	return domain.AssistResult{
		Response:  resp,
		State:     state,
		FromCache: hit,
		RequestID: requestID,
	}, nil
}

// Respond builds the response for an already captured state. It never fails
// and does not touch the cache.
func (s *Service) Respond(ctx context.Context, utterance string, state domain.RepositoryState) domain.AssistantResponse {
	intents := s.Recognizer.Recognize(ctx, utterance, state)
	if len(intents) == 0 {
		intents = []domain.Intent{domain.UnknownIntent()}
	}
	top := intents[0]

	resp := domain.AssistantResponse{
		Intent:      top,
		Intents:     intents,
		Fingerprint: state.Fingerprint(),
	}

	candidates, clarification := s.Generator.Generate(top, state)
	if clarification != nil {
		if s.Logger != nil {
			s.Logger.Debug("clarification requested", map[string]interface{}{
				"error": domain.ClarificationNeeded(*clarification).Error(),
			})
		}
		resp.Clarification = clarification
		resp.Interpretation = interpretation(top, true)
		return resp.Clone()
	}

	classified := s.Classifier.Classify(candidates, state)
	resp.Commands = classified.Candidates
	resp.Warnings = classified.Warnings
	resp.Alternatives = classified.Alternatives
	resp.Interpretation = interpretation(top, false)
	return resp.Clone()
}

func interpretation(intent domain.Intent, needsInput bool) string {
	if intent.Kind == domain.IntentUnknown {
		return "I couldn't identify a specific Git operation in your request."
	}
	text := "I understand you want to " + strings.TrimSuffix(intent.Describe(), ".")
	if needsInput {
		return text + ", but I need more information."
	}
	return text + "."
}

var _ domain.Assistant = (*Service)(nil)
