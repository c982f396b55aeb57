package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/pkg/logger"
)

type stubSummarizer struct {
	answer string
	err    error
	calls  int
}

func (s *stubSummarizer) Summarize(_ context.Context, _ string, _ string) (string, error) {
	s.calls++
	return s.answer, s.err
}

func newRecognizer(fallback *stubSummarizer) *Recognizer {
	if fallback == nil {
		return NewRecognizer(domain.Config{}, nil, logger.NewNop())
	}
	return NewRecognizer(domain.Config{}, fallback, logger.NewNop())
}

func cleanState() domain.RepositoryState {
	return domain.RepositoryState{
		CurrentBranch: "main",
		Remotes:       []domain.Remote{{Name: "origin", URL: "git@example.com:a.git"}},
		RecentCommits: []domain.Commit{{Hash: "abc1234def", Message: "init"}},
	}
}

func TestRecognizeTopIntent(t *testing.T) {
	tests := []struct {
		utterance string
		want      domain.IntentKind
		params    map[string]string
	}{
		{"undo my last commit but keep the changes", domain.IntentUndoCommitKeep, nil},
		{"undo last commit", domain.IntentUndoCommitKeep, nil},
		{"undo my last commit and discard the changes", domain.IntentUndoCommitDiscard, nil},
		{"revert the last commit", domain.IntentRevertCommit, nil},
		{"create a new branch called feature/login", domain.IntentCreateBranch, map[string]string{"branch": "feature/login"}},
		{"switch to main", domain.IntentSwitchBranch, map[string]string{"branch": "main"}},
		{"force delete branch experiment", domain.IntentDeleteBranch, map[string]string{"branch": "experiment", "force": "true"}},
		{"delete the old-feature branch", domain.IntentDeleteBranch, map[string]string{"branch": "old-feature"}},
		{"list all branches", domain.IntentListBranches, nil},
		{"merge feature/x", domain.IntentMergeBranch, map[string]string{"target": "feature/x"}},
		{"rebase onto main", domain.IntentRebaseBranch, map[string]string{"target": "main"}},
		{"stash my changes", domain.IntentStash, nil},
		{"pop the stash", domain.IntentStashPop, nil},
		{"unstage everything", domain.IntentUnstageChanges, nil},
		{"stage README.md", domain.IntentStageChanges, map[string]string{"target": "README.md"}},
		{"How do I commit my changes?", domain.IntentCommitStaged, nil},
		{`commit with message "fix login"`, domain.IntentCommitStaged, map[string]string{"message": "fix login"}},
		{"push my changes to origin", domain.IntentPush, map[string]string{"remote": "origin"}},
		{"force push", domain.IntentForcePush, nil},
		{"pull the latest changes", domain.IntentPull, nil},
		{"I have merge conflicts", domain.IntentResolveConflict, nil},
		{"what changed?", domain.IntentCheckStatus, nil},
		{"show me the commit history", domain.IntentShowLog, nil},
		{"show the diff", domain.IntentShowDiff, nil},
		{"discard my changes", domain.IntentDiscardChanges, nil},
		{"remove untracked files", domain.IntentCleanUntracked, nil},
		{"undo git add", domain.IntentUnstageChanges, nil},
		{"un-add everything", domain.IntentUnstageChanges, nil},
		{"checkout the file app.go", domain.IntentDiscardChanges, map[string]string{"target": "app.go"}},
		{"restore docs/readme.md", domain.IntentDiscardChanges, map[string]string{"target": "docs/readme.md"}},
		{"reset to origin/main", domain.IntentShowLog, nil},
		{"how do I rollback", domain.IntentShowLog, nil},
	}

	recognizer := newRecognizer(nil)
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			intents := recognizer.Recognize(context.Background(), tt.utterance, cleanState())
			require.NotEmpty(t, intents)
			top := intents[0]
			assert.Equal(t, tt.want, top.Kind)
			assert.GreaterOrEqual(t, top.Confidence, domain.DefaultConfidenceThreshold)
			assert.Equal(t, tt.params, top.Params)
		})
	}
}

func TestRecognizeRanksByConfidence(t *testing.T) {
	intents := newRecognizer(nil).Recognize(context.Background(), "pop the stash", cleanState())
	require.GreaterOrEqual(t, len(intents), 2)
	assert.Equal(t, domain.IntentStashPop, intents[0].Kind)
	assert.Equal(t, domain.IntentStash, intents[1].Kind)

	seen := map[domain.IntentKind]bool{}
	for i, intent := range intents {
		assert.False(t, seen[intent.Kind], "duplicate %s", intent.Kind)
		seen[intent.Kind] = true
		if i > 0 {
			assert.LessOrEqual(t, intent.Confidence, intents[i-1].Confidence)
		}
	}
}

func TestRecognizeToleratesTypos(t *testing.T) {
	intents := newRecognizer(nil).Recognize(context.Background(), "comit my changes", cleanState())
	require.NotEmpty(t, intents)
	assert.Equal(t, domain.IntentCommitStaged, intents[0].Kind)
	assert.Equal(t, domain.SourceFuzzy, intents[0].Source)
	assert.Less(t, intents[0].Confidence, 0.9)
}

func TestRecognizeToleratesSwappedLetters(t *testing.T) {
	intents := newRecognizer(nil).Recognize(context.Background(), "commti my changes", cleanState())
	require.NotEmpty(t, intents)
	assert.Equal(t, domain.IntentCommitStaged, intents[0].Kind)
	assert.Equal(t, domain.SourceFuzzy, intents[0].Source)
}

func TestTransposed(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"commti", "commit", true},
		{"ocmmit", "commit", true},
		{"commit", "commit", false},
		{"cmomti", "commit", false},
		{"commits", "commit", false},
		{"comm", "moc", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, transposed(tt.a, tt.b), "%s/%s", tt.a, tt.b)
	}
}

func TestRecognizeVagueUndoListsCommits(t *testing.T) {
	intents := newRecognizer(nil).Recognize(context.Background(), "reset to origin/main", cleanState())
	require.NotEmpty(t, intents)
	assert.Equal(t, domain.IntentShowLog, intents[0].Kind)
	assert.Equal(t, catchallConfidence, intents[0].Confidence)

	// Specific undo requests still outrank the catchall.
	specific := newRecognizer(nil).Recognize(context.Background(), "undo my last commit", cleanState())
	assert.Equal(t, domain.IntentUndoCommitKeep, specific[0].Kind)
}

func TestRecognizeMissingParameterLowersConfidence(t *testing.T) {
	recognizer := newRecognizer(nil)
	named := recognizer.Recognize(context.Background(), "create a new branch called api", cleanState())
	bare := recognizer.Recognize(context.Background(), "create a new branch", cleanState())

	require.Equal(t, domain.IntentCreateBranch, bare[0].Kind)
	assert.False(t, bare[0].HasParam(domain.ParamBranch))
	assert.Less(t, bare[0].Confidence, named[0].Confidence)
}

func TestRecognizeGibberishIsUnknown(t *testing.T) {
	for _, utterance := range []string{"xyzzy plugh frobnicate", "", "   "} {
		intents := newRecognizer(nil).Recognize(context.Background(), utterance, cleanState())
		assert.Equal(t, []domain.Intent{domain.UnknownIntent()}, intents, utterance)
	}
}

func TestRecognizeIsDeterministic(t *testing.T) {
	recognizer := newRecognizer(nil)
	first := recognizer.Recognize(context.Background(), "undo my last commit", cleanState())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, recognizer.Recognize(context.Background(), "undo my last commit", cleanState()))
	}
}

func TestRecognizeFallback(t *testing.T) {
	t.Run("used when rules are weak", func(t *testing.T) {
		stub := &stubSummarizer{answer: "clean_untracked"}
		intents := newRecognizer(stub).Recognize(context.Background(), "could you tidy things up", cleanState())
		require.NotEmpty(t, intents)
		assert.Equal(t, domain.IntentCleanUntracked, intents[0].Kind)
		assert.Equal(t, domain.SourceFallback, intents[0].Source)
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("skipped when rules are confident", func(t *testing.T) {
		stub := &stubSummarizer{answer: "push"}
		intents := newRecognizer(stub).Recognize(context.Background(), "show the diff", cleanState())
		assert.Equal(t, domain.IntentShowDiff, intents[0].Kind)
		assert.Zero(t, stub.calls)
	})

	t.Run("out of vocabulary answer is unknown", func(t *testing.T) {
		stub := &stubSummarizer{answer: "banana"}
		intents := newRecognizer(stub).Recognize(context.Background(), "could you tidy things up", cleanState())
		assert.Equal(t, []domain.Intent{domain.UnknownIntent()}, intents)
	})

	t.Run("failure degrades to rules only", func(t *testing.T) {
		stub := &stubSummarizer{err: errors.New("connection refused")}
		intents := newRecognizer(stub).Recognize(context.Background(), "could you tidy things up", cleanState())
		assert.Equal(t, []domain.Intent{domain.UnknownIntent()}, intents)
		assert.Equal(t, 1, stub.calls)
	})
}

func TestParseFallback(t *testing.T) {
	intent := parseFallback("create-branch\nbranch: feature/api\n")
	assert.Equal(t, domain.IntentCreateBranch, intent.Kind)
	assert.Equal(t, "feature/api", intent.Param(domain.ParamBranch))

	assert.Equal(t, domain.IntentUnknown, parseFallback("no idea").Kind)
}

func TestRuleTableCoversVocabulary(t *testing.T) {
	covered := map[domain.IntentKind]bool{}
	for _, rule := range Rules() {
		assert.False(t, covered[rule.Kind], "duplicate rule for %s", rule.Kind)
		covered[rule.Kind] = true
	}
	for _, kind := range domain.Vocabulary() {
		if kind == domain.IntentUnknown {
			continue
		}
		assert.True(t, covered[kind], "no rule for %s", kind)
	}
}
