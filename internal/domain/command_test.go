package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/gitflow-ai/internal/domain"
)

func TestRequiresConfirmationFollowsTierAndEscalation(t *testing.T) {
	base := domain.CommandCandidate{Verb: "merge", Args: []string{"feature"}}

	tests := []struct {
		name      string
		tier      domain.RiskTier
		escalated bool
		want      bool
	}{
		{name: "safe", tier: domain.RiskSafe, want: false},
		{name: "moderate baseline", tier: domain.RiskModerate, want: false},
		{name: "moderate escalated", tier: domain.RiskModerate, escalated: true, want: true},
		{name: "destructive", tier: domain.RiskDestructive, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.Classified(tt.tier, tt.escalated)
			assert.Equal(t, tt.want, got.RequiresConfirmation())
		})
	}
}

func TestRiskTierRaiseSaturates(t *testing.T) {
	assert.Equal(t, domain.RiskModerate, domain.RiskSafe.Raise(1))
	assert.Equal(t, domain.RiskDestructive, domain.RiskModerate.Raise(1))
	assert.Equal(t, domain.RiskDestructive, domain.RiskDestructive.Raise(1))
}

func TestCommandLineQuotesArguments(t *testing.T) {
	candidate := domain.CommandCandidate{Verb: "commit", Args: []string{"-m", "<message>"}}
	assert.Equal(t, `git commit -m "<message>"`, candidate.CommandLine())

	candidate = domain.CommandCandidate{Verb: "stash", Args: []string{"push", "-m", "Work in progress"}}
	assert.Equal(t, `git stash push -m "Work in progress"`, candidate.CommandLine())

	guidance := domain.CommandCandidate{Description: "Nothing to undo", Guidance: true}
	assert.Empty(t, guidance.CommandLine())
	assert.Nil(t, guidance.Argv())
}

func TestCandidateJSONKeepsEscalation(t *testing.T) {
	original := domain.CommandCandidate{Verb: "commit", Args: []string{"-m", "x"}}.Classified(domain.RiskModerate, true)

	raw, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"requires_confirmation":true`)
	assert.Contains(t, string(raw), `"risk":"moderate"`)

	var decoded domain.CommandCandidate
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded.RequiresConfirmation())
	assert.Equal(t, original.CommandLine(), decoded.CommandLine())
}

func TestParseIntentKind(t *testing.T) {
	kind, ok := domain.ParseIntentKind(" Create-Branch ")
	assert.True(t, ok)
	assert.Equal(t, domain.IntentCreateBranch, kind)

	kind, ok = domain.ParseIntentKind("teleport")
	assert.False(t, ok)
	assert.Equal(t, domain.IntentUnknown, kind)
}

func TestVocabularyIsClosedAndUnique(t *testing.T) {
	unknown := domain.UnknownIntent().Describe()
	seen := map[domain.IntentKind]bool{}
	for _, kind := range domain.Vocabulary() {
		assert.False(t, seen[kind], "duplicate %s", kind)
		seen[kind] = true
		if kind != domain.IntentUnknown {
			assert.NotEqual(t, unknown, domain.Intent{Kind: kind}.Describe(), "missing description for %s", kind)
		}
	}
	assert.Len(t, seen, 24)
}
