package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/gitflow-ai/internal/app"
	"github.com/doeshing/gitflow-ai/internal/domain"
)

type stubAssistant struct {
	result   domain.AssistResult
	err      error
	requests []domain.AssistRequest
}

func (s *stubAssistant) Assist(_ context.Context, req domain.AssistRequest) (domain.AssistResult, error) {
	s.requests = append(s.requests, req)
	return s.result, s.err
}

type stubStates struct {
	state domain.RepositoryState
}

func (s *stubStates) Read(context.Context, string) (domain.RepositoryState, error) {
	return s.state, nil
}

type stubExecutor struct {
	ran []domain.CommandCandidate
}

func (s *stubExecutor) Execute(_ context.Context, _ string, candidate domain.CommandCandidate) (domain.ExecutionResult, error) {
	s.ran = append(s.ran, candidate)
	return domain.ExecutionResult{Ran: true, Stdout: "done\n"}, nil
}

type stubPrompter struct {
	answer bool
	asked  int
}

func (s *stubPrompter) Confirm(domain.CommandCandidate, []string) (bool, error) {
	s.asked++
	return s.answer, nil
}

func (s *stubPrompter) Enabled() bool { return true }

type stubClipboard struct {
	copied string
}

func (s *stubClipboard) Copy(text string) error {
	s.copied = text
	return nil
}

func (s *stubClipboard) Enabled() bool { return true }

func resultWith(tier domain.RiskTier, candidate domain.CommandCandidate, warnings ...string) domain.AssistResult {
	intent := domain.Intent{Kind: domain.IntentUndoCommitDiscard, Confidence: 0.9, Source: domain.SourceRule}
	return domain.AssistResult{
		Response: domain.AssistantResponse{
			Interpretation: "I understand you want to undo the last commit.",
			Intent:         intent,
			Intents:        []domain.Intent{intent},
			Commands:       []domain.CommandCandidate{candidate.Classified(tier, false)},
			Warnings:       warnings,
		},
		State:     domain.RepositoryState{CurrentBranch: "feature/login"},
		RequestID: "req-42",
	}
}

var hardReset = domain.CommandCandidate{
	Verb:        "reset",
	Args:        []string{"--hard", "HEAD~1"},
	Description: "Discard the last commit and its changes",
}

var statusCandidate = domain.CommandCandidate{Verb: "status", Description: "Show the working tree status"}

type harness struct {
	assistant *stubAssistant
	executor  *stubExecutor
	prompter  *stubPrompter
	clipboard *stubClipboard
	container *app.Container
}

func newHarness(result domain.AssistResult) *harness {
	h := &harness{
		assistant: &stubAssistant{result: result},
		executor:  &stubExecutor{},
		prompter:  &stubPrompter{},
		clipboard: &stubClipboard{},
	}
	h.container = &app.Container{
		Assistant:   h.assistant,
		StateReader: &stubStates{state: result.State},
		Executor:    h.executor,
		Prompter:    h.prompter,
		Clipboard:   h.clipboard,
	}
	return h
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd(h.container)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestAskRendersResponse(t *testing.T) {
	h := newHarness(resultWith(domain.RiskDestructive, hardReset, "This discards committed work"))

	out, _, err := h.run(t, "", "ask", "--repo", "/work/app", "undo", "my", "last", "commit")
	require.NoError(t, err)

	require.Len(t, h.assistant.requests, 1)
	assert.Equal(t, domain.AssistRequest{Utterance: "undo my last commit", RepositoryPath: "/work/app"}, h.assistant.requests[0])
	assert.Contains(t, out, "I understand you want to undo the last commit.")
	assert.Contains(t, out, "[DESTRUCTIVE] git reset --hard HEAD~1")
	assert.Contains(t, out, "requires confirmation")
	assert.Contains(t, out, "This discards committed work")
	assert.Contains(t, out, "Branch:    feature/login")
	assert.Empty(t, h.executor.ran)
}

func TestRootForwardsQueryToAsk(t *testing.T) {
	h := newHarness(resultWith(domain.RiskSafe, statusCandidate))

	out, _, err := h.run(t, "", "what", "changed")
	require.NoError(t, err)
	require.Len(t, h.assistant.requests, 1)
	assert.Equal(t, "what changed", h.assistant.requests[0].Utterance)
	assert.Equal(t, ".", h.assistant.requests[0].RepositoryPath)
	assert.Contains(t, out, "[SAFE] git status")
}

func TestRootWithoutArgsShowsHelp(t *testing.T) {
	h := newHarness(resultWith(domain.RiskSafe, statusCandidate))

	out, _, err := h.run(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "gitflow")
	assert.Empty(t, h.assistant.requests)
}

func TestAskJSON(t *testing.T) {
	h := newHarness(resultWith(domain.RiskSafe, statusCandidate))

	out, _, err := h.run(t, "", "ask", "--json", "status")
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "status", payload["query"])
	assert.Equal(t, "req-42", payload["request_id"])
	assert.Nil(t, payload["execution"])

	response := payload["response"].(map[string]interface{})
	commands := response["commands"].([]interface{})
	require.Len(t, commands, 1)
	assert.Equal(t, "git status", commands[0].(map[string]interface{})["command"])
}

func TestAskRequiresQuery(t *testing.T) {
	h := newHarness(resultWith(domain.RiskSafe, statusCandidate))

	_, _, err := h.run(t, "", "ask")
	require.Error(t, err)
	assert.Empty(t, h.assistant.requests)
}

func TestAskPropagatesRepositoryErrors(t *testing.T) {
	h := newHarness(domain.AssistResult{})
	h.assistant.err = domain.RepositoryUnavailable(errors.New("not a git repository"), "/tmp", "run git init")

	_, _, err := h.run(t, "", "ask", "status")
	require.Error(t, err)
	assert.True(t, domain.IsRepositoryUnavailable(err))
}

func TestAskRun(t *testing.T) {
	tests := []struct {
		name       string
		tier       domain.RiskTier
		candidate  domain.CommandCandidate
		confirm    bool
		wantAsked  int
		wantRan    int
		wantStderr string
	}{
		{name: "safe runs without prompt", tier: domain.RiskSafe, candidate: statusCandidate, wantRan: 1},
		{name: "destructive declined", tier: domain.RiskDestructive, candidate: hardReset, wantAsked: 1, wantStderr: "Cancelled."},
		{name: "destructive confirmed", tier: domain.RiskDestructive, candidate: hardReset, confirm: true, wantAsked: 1, wantRan: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(resultWith(tt.tier, tt.candidate))
			h.prompter.answer = tt.confirm

			out, stderr, err := h.run(t, "", "ask", "--run", "do it")
			require.NoError(t, err)
			assert.Equal(t, tt.wantAsked, h.prompter.asked)
			assert.Len(t, h.executor.ran, tt.wantRan)
			if tt.wantRan > 0 {
				assert.Contains(t, out, "done")
			}
			if tt.wantStderr != "" {
				assert.Contains(t, stderr, tt.wantStderr)
			}
		})
	}
}

func TestAskRunNeverExecutesGuidance(t *testing.T) {
	guidance := domain.CommandCandidate{Description: "Nothing to undo yet", Guidance: true}
	h := newHarness(resultWith(domain.RiskSafe, guidance))

	_, stderr, err := h.run(t, "", "ask", "--run", "undo")
	require.NoError(t, err)
	assert.Empty(t, h.executor.ran)
	assert.Contains(t, stderr, "Nothing to run.")
}

func TestAskCopiesPrimaryCommand(t *testing.T) {
	h := newHarness(resultWith(domain.RiskSafe, statusCandidate))

	_, _, err := h.run(t, "", "ask", "--copy", "status")
	require.NoError(t, err)
	assert.Equal(t, "git status", h.clipboard.copied)
}

func TestAskInteractive(t *testing.T) {
	h := newHarness(resultWith(domain.RiskSafe, statusCandidate))

	out, _, err := h.run(t, "status\n\nwhat changed\nquit\nignored\n", "ask", "--interactive")
	require.NoError(t, err)
	require.Len(t, h.assistant.requests, 2)
	assert.Equal(t, "status", h.assistant.requests[0].Utterance)
	assert.Equal(t, "what changed", h.assistant.requests[1].Utterance)
	assert.Contains(t, out, "interactive mode")
}

func TestAskInteractiveStopsAtEOF(t *testing.T) {
	h := newHarness(resultWith(domain.RiskSafe, statusCandidate))

	_, _, err := h.run(t, "status", "ask", "-i")
	require.NoError(t, err)
	assert.Len(t, h.assistant.requests, 1)
}

func TestStatusCommand(t *testing.T) {
	h := newHarness(resultWith(domain.RiskSafe, statusCandidate))
	h.container.StateReader = &stubStates{state: domain.RepositoryState{
		CurrentBranch: "main",
		StagedFiles:   []domain.FileChange{{Path: "a.go", Kind: domain.ChangeAdded}},
	}}

	out, _, err := h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Branch:    main")
	assert.Contains(t, out, "State:     has changes")
	assert.Contains(t, out, "You have staged changes ready to commit")
}

func TestDemoRunsEveryQuery(t *testing.T) {
	h := newHarness(resultWith(domain.RiskSafe, statusCandidate))

	out, _, err := h.run(t, "", "demo")
	require.NoError(t, err)
	require.Len(t, h.assistant.requests, len(demoQueries))
	for i, query := range demoQueries {
		assert.Equal(t, query, h.assistant.requests[i].Utterance)
	}
	assert.Contains(t, out, "Demo completed.")
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(resultWith(domain.RiskSafe, statusCandidate))

	out, _, err := h.run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gitflow version")
	assert.Contains(t, out, "Go version:")
}

func TestRunConfigGet(t *testing.T) {
	cfg := domain.Config{
		Cache:  domain.CacheSettings{TTL: "24h", MaxEntries: 256},
		Safety: domain.SafetySettings{ProtectedBranches: []string{"main", "master"}},
	}

	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "cache.ttl", want: "24h\n"},
		{key: "cache.max_entries", want: "256\n"},
		{key: "safety.protected_branches", want: "- main\n- master\n"},
		{key: "cache.missing", wantErr: true},
		{key: "cache.ttl.deeper", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			var out bytes.Buffer
			err := runConfigGet(&out, cfg, tt.key)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}
