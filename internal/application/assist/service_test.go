package assist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/cache"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/generator"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/intent"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/safety"
	"github.com/doeshing/gitflow-ai/internal/pkg/logger"
)

type stubReader struct {
	state domain.RepositoryState
	err   error
	mu    sync.Mutex
	calls int
}

func (r *stubReader) Read(context.Context, string) (domain.RepositoryState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.state, r.err
}

type countingRecognizer struct {
	inner interface {
		Recognize(context.Context, string, domain.RepositoryState) []domain.Intent
	}
	mu    sync.Mutex
	calls int
}

func (r *countingRecognizer) Recognize(ctx context.Context, utterance string, state domain.RepositoryState) []domain.Intent {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.inner.Recognize(ctx, utterance, state)
}

func featureState() domain.RepositoryState {
	return domain.RepositoryState{
		Path:          "/repo",
		CurrentBranch: "feature/x",
		StagedFiles:   []domain.FileChange{{Path: "app.go", Kind: domain.ChangeModified}},
		Remotes:       []domain.Remote{{Name: "origin", URL: "git@example.com:a.git"}},
		RecentCommits: []domain.Commit{{Hash: "0123456789abcdef", Author: "dev", Message: "init"}},
		Tracking:      &domain.Tracking{Upstream: "origin/feature/x"},
	}
}

func newService(t *testing.T, reader *stubReader) (*Service, *countingRecognizer) {
	t.Helper()
	classifier, err := safety.NewClassifier(domain.Config{})
	require.NoError(t, err)
	responses, err := cache.NewResponseCache(16, nil, logger.NewNop())
	require.NoError(t, err)
	recognizer := &countingRecognizer{inner: intent.NewRecognizer(domain.Config{}, nil, logger.NewNop())}
	return &Service{
		StateReader: reader,
		Recognizer:  recognizer,
		Generator:   generator.NewGenerator(),
		Classifier:  classifier,
		Cache:       responses,
		Logger:      logger.NewNop(),
	}, recognizer
}

func assist(t *testing.T, svc *Service, utterance string) domain.AssistResult {
	t.Helper()
	result, err := svc.Assist(context.Background(), domain.AssistRequest{Utterance: utterance, RepositoryPath: "/repo"})
	require.NoError(t, err)
	return result
}

func commandLines(candidates []domain.CommandCandidate) []string {
	lines := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		lines = append(lines, candidate.CommandLine())
	}
	return lines
}

func TestAssistCommitOnFeatureBranch(t *testing.T) {
	svc, _ := newService(t, &stubReader{state: featureState()})

	resp := assist(t, svc, "How do I commit my changes?").Response

	assert.Equal(t, domain.IntentCommitStaged, resp.Intent.Kind)
	assert.Equal(t, []string{`git commit -m "<message>"`}, commandLines(resp.Commands))
	assert.Equal(t, domain.RiskSafe, resp.Commands[0].Risk)
	assert.False(t, resp.RequiresConfirmation())
	assert.Empty(t, resp.Warnings)
	assert.Empty(t, resp.Alternatives)
	assert.Equal(t, "I understand you want to commit your changes.", resp.Interpretation)
}

func TestAssistUndoKeepChanges(t *testing.T) {
	svc, _ := newService(t, &stubReader{state: featureState()})

	resp := assist(t, svc, "undo my last commit but keep the changes").Response

	assert.Equal(t, domain.IntentUndoCommitKeep, resp.Intent.Kind)
	require.Len(t, resp.Commands, 1)
	assert.Equal(t, "git reset --soft HEAD~1", resp.Commands[0].CommandLine())
	assert.Equal(t, domain.RiskDestructive, resp.Commands[0].Risk)
	assert.True(t, resp.Commands[0].RequiresConfirmation())
	assert.NotEmpty(t, resp.Warnings)
	assert.Contains(t, commandLines(resp.Alternatives), "git revert --no-edit HEAD")
}

func TestAssistCommitOnProtectedBranch(t *testing.T) {
	state := featureState()
	state.CurrentBranch = "main"
	svc, _ := newService(t, &stubReader{state: state})

	resp := assist(t, svc, "How do I commit my changes?").Response

	require.NotEmpty(t, resp.Commands)
	commit := resp.Commands[len(resp.Commands)-1]
	assert.Equal(t, domain.RiskModerate, commit.Risk)
	assert.True(t, commit.RequiresConfirmation())
	require.NotEmpty(t, resp.Warnings)
	assert.Contains(t, resp.Warnings[0], "feature branch")
	assert.Empty(t, resp.Alternatives)
}

func TestAssistUnknownUtterance(t *testing.T) {
	svc, _ := newService(t, &stubReader{state: featureState()})

	resp := assist(t, svc, "xyzzy plugh frobnicate").Response

	assert.Equal(t, []domain.Intent{domain.UnknownIntent()}, resp.Intents)
	assert.Equal(t, []string{"git help -g"}, commandLines(resp.Commands))
	assert.Equal(t, domain.RiskSafe, resp.Commands[0].Risk)
	assert.Equal(t, "I couldn't identify a specific Git operation in your request.", resp.Interpretation)
}

func TestAssistClarification(t *testing.T) {
	svc, _ := newService(t, &stubReader{state: featureState()})

	resp := assist(t, svc, "create a new branch").Response

	assert.Equal(t, domain.IntentCreateBranch, resp.Intent.Kind)
	require.NotNil(t, resp.Clarification)
	assert.Equal(t, domain.ParamBranch, resp.Clarification.Parameter)
	assert.Empty(t, resp.Commands)
	assert.Contains(t, resp.Interpretation, "need more information")
}

func TestAssistNothingToUndo(t *testing.T) {
	state := featureState()
	state.RecentCommits = nil
	svc, _ := newService(t, &stubReader{state: state})

	resp := assist(t, svc, "undo last commit").Response

	require.Len(t, resp.Commands, 1)
	assert.True(t, resp.Commands[0].Guidance)
	assert.Equal(t, domain.RiskSafe, resp.Commands[0].Risk)
	assert.Nil(t, resp.Commands[0].Argv())
}

func TestAssistUsesCache(t *testing.T) {
	reader := &stubReader{state: featureState()}
	svc, recognizer := newService(t, reader)

	first := assist(t, svc, "show the diff")
	second := assist(t, svc, "  show the  diff ")

	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, recognizer.calls)
	assert.Equal(t, 2, reader.calls)
	assert.NotEqual(t, first.RequestID, second.RequestID)

	a, err := json.Marshal(first.Response)
	require.NoError(t, err)
	b, err := json.Marshal(second.Response)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestAssistCacheKeepsParameterCase(t *testing.T) {
	tests := []struct {
		name   string
		first  string
		second string
		want   []string
	}{
		{
			name:   "branch name",
			first:  "create a branch called Feature-Login",
			second: "create a branch called feature-login",
			want:   []string{"git switch -c feature-login"},
		},
		{
			name:   "commit message",
			first:  `commit with message "Fix Login Bug"`,
			second: `commit with message "fix login bug"`,
			want:   []string{`git commit -m "fix login bug"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, recognizer := newService(t, &stubReader{state: featureState()})

			assist(t, svc, tt.first)
			second := assist(t, svc, tt.second)

			assert.False(t, second.FromCache)
			assert.Equal(t, 2, recognizer.calls)
			assert.Equal(t, tt.want, commandLines(second.Response.Commands))
		})
	}
}

func TestAssistRemoteDependentResponsesFollowState(t *testing.T) {
	state := featureState()
	state.Remotes = nil
	state.Tracking = nil
	reader := &stubReader{state: state}
	svc, recognizer := newService(t, reader)

	first := assist(t, svc, "push my commits")
	require.Len(t, first.Response.Commands, 1)
	assert.True(t, first.Response.Commands[0].Guidance)
	assert.Equal(t, "No remote configured", first.Response.Commands[0].Description)

	reader.state.Remotes = []domain.Remote{{Name: "origin", URL: "git@example.com:a.git"}}
	second := assist(t, svc, "push my commits")
	assert.False(t, second.FromCache)
	assert.Equal(t, []string{"git push -u origin feature/x"}, commandLines(second.Response.Commands))

	reader.state.Tracking = &domain.Tracking{Upstream: "origin/feature/x", Behind: 2}
	third := assist(t, svc, "push my commits")
	assert.False(t, third.FromCache)
	assert.Equal(t, []string{"git push"}, commandLines(third.Response.Commands))
	assert.Contains(t, third.Response.Commands[0].Explanation, "2 commit(s)")

	assert.Equal(t, 3, recognizer.calls)
	assert.Equal(t, first.Response.Fingerprint, third.Response.Fingerprint)
}

func TestAssistResponsesAreDeterministic(t *testing.T) {
	svc, _ := newService(t, &stubReader{state: featureState()})
	svc.Cache = nil

	for _, utterance := range []string{"undo last commit", "push my changes", "merge main", "xyzzy plugh"} {
		a, err := json.Marshal(assist(t, svc, utterance).Response)
		require.NoError(t, err)
		b, err := json.Marshal(assist(t, svc, utterance).Response)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), utterance)
	}
}

func TestAssistPropagatesRepositoryErrors(t *testing.T) {
	cause := domain.RepositoryUnavailable(errors.New("not a git repository"), "/tmp/x", "run git init")
	svc, recognizer := newService(t, &stubReader{err: cause})

	_, err := svc.Assist(context.Background(), domain.AssistRequest{Utterance: "status", RepositoryPath: "/tmp/x"})
	require.Error(t, err)
	assert.True(t, domain.IsRepositoryUnavailable(err))
	assert.Zero(t, recognizer.calls)
}

func TestAssistRequiresDependencies(t *testing.T) {
	_, err := (&Service{}).Assist(context.Background(), domain.AssistRequest{Utterance: "status"})
	assert.Error(t, err)
}
