package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/gitflow-ai/internal/domain"
)

func TestPrompterConfirm(t *testing.T) {
	moderate := domain.CommandCandidate{Verb: "push"}.Classified(domain.RiskModerate, true)
	destructive := hardReset.Classified(domain.RiskDestructive, false)

	tests := []struct {
		name      string
		candidate domain.CommandCandidate
		input     string
		want      bool
	}{
		{name: "moderate accepts y", candidate: moderate, input: "y\n", want: true},
		{name: "moderate accepts YES", candidate: moderate, input: "YES\n", want: true},
		{name: "moderate defaults to no", candidate: moderate, input: "\n", want: false},
		{name: "destructive needs the full word", candidate: destructive, input: "y\n", want: false},
		{name: "destructive confirmed", candidate: destructive, input: "yes\n", want: true},
		{name: "destructive last line without newline", candidate: destructive, input: "yes", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(tt.candidate, []string{"rewrites published history"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), tt.candidate.CommandLine())
			assert.Contains(t, out.String(), "rewrites published history")
		})
	}
}

func TestPrompterEOF(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), io.Discard)

	_, err := p.Confirm(hardReset.Classified(domain.RiskDestructive, false), nil)
	assert.ErrorIs(t, err, io.EOF)
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer

	assert.True(t, colorEnabled(&buf, ColorAlways))
	assert.False(t, colorEnabled(&buf, ColorNever))
	assert.False(t, colorEnabled(&buf, ColorAuto))
}

func TestRendererWithoutColorIsPlainText(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, ColorNever)

	r.Health(domain.HealthReport{Checks: []domain.HealthCheck{
		{Name: "Git binary", Status: domain.HealthOK, Details: "/usr/bin/git"},
		{Name: "Response cache", Status: domain.HealthWarn, Details: "memory only"},
	}})

	assert.Equal(t, "[OK] Git binary - /usr/bin/git\n[WARN] Response cache - memory only\n", buf.String())
}
