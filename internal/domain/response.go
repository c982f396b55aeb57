package domain

import (
	"context"
	"slices"
)

// Clarification asks the user for a parameter the recognizer could not extract.
type Clarification struct {
	Intent    IntentKind `json:"intent"`
	Parameter string     `json:"parameter"`
	Question  string     `json:"question"`
}

// AssistantResponse is the complete answer to one utterance.
type AssistantResponse struct {
	Interpretation string             `json:"interpretation"`
	Intent         Intent             `json:"intent"`
	Intents        []Intent           `json:"intents"`
	Commands       []CommandCandidate `json:"commands"`
	Warnings       []string           `json:"warnings"`
	Alternatives   []CommandCandidate `json:"alternatives"`
	Clarification  *Clarification     `json:"clarification,omitempty"`
	Fingerprint    string             `json:"fingerprint"`
}

// NeedsClarification reports whether the response is a request for more input.
func (r AssistantResponse) NeedsClarification() bool {
	return r.Clarification != nil
}

// Primary returns the first executable candidate.
func (r AssistantResponse) Primary() (CommandCandidate, bool) {
	for _, candidate := range r.Commands {
		if !candidate.Guidance {
			return candidate, true
		}
	}
	return CommandCandidate{}, false
}

// Cacheable reports whether the response is fully determined by the
// utterance and the state fingerprint.
func (r AssistantResponse) Cacheable() bool {
	return !r.Intent.Kind.DependsOnRemote()
}

// RequiresConfirmation reports whether any command needs explicit approval.
func (r AssistantResponse) RequiresConfirmation() bool {
	for _, candidate := range r.Commands {
		if candidate.RequiresConfirmation() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so cached values are never shared with callers.
func (r AssistantResponse) Clone() AssistantResponse {
	out := r
	out.Intent = r.Intent.Clone()
	out.Intents = make([]Intent, len(r.Intents))
	for i, intent := range r.Intents {
		out.Intents[i] = intent.Clone()
	}
	out.Commands = cloneCandidates(r.Commands)
	out.Alternatives = cloneCandidates(r.Alternatives)
	out.Warnings = slices.Clone(r.Warnings)
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	if r.Clarification != nil {
		clarification := *r.Clarification
		out.Clarification = &clarification
	}
	return out
}

func cloneCandidates(candidates []CommandCandidate) []CommandCandidate {
	out := make([]CommandCandidate, len(candidates))
	for i, candidate := range candidates {
		out[i] = candidate.Clone()
	}
	return out
}

// AssistRequest is the input of one assistant invocation.
type AssistRequest struct {
	Utterance      string
	RepositoryPath string
}

// AssistResult wraps a response with per-invocation metadata that is not
// part of the cached value.
type AssistResult struct {
	Response  AssistantResponse `json:"response"`
	State     RepositoryState   `json:"state"`
	FromCache bool              `json:"from_cache"`
	RequestID string            `json:"request_id"`
}

// Assistant turns an utterance into a response for a repository.
type Assistant interface {
	Assist(ctx context.Context, req AssistRequest) (AssistResult, error)
}
