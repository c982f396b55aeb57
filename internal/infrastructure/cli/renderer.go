package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/doeshing/gitflow-ai/internal/domain"
)

// Color modes accepted by preferences.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Renderer prints assistant output as ASCII text, colored by risk tier when
// the destination is a terminal.
type Renderer struct {
	out   io.Writer
	color bool

	heading     lipgloss.Style
	muted       lipgloss.Style
	safe        lipgloss.Style
	moderate    lipgloss.Style
	destructive lipgloss.Style
	failure     lipgloss.Style
}

// NewRenderer builds a renderer for out. mode is one of the Color* constants.
func NewRenderer(out io.Writer, mode string) *Renderer {
	r := lipgloss.NewRenderer(out)
	return &Renderer{
		out:         out,
		color:       colorEnabled(out, mode),
		heading:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		muted:       r.NewStyle().Foreground(lipgloss.Color("244")),
		safe:        r.NewStyle().Foreground(lipgloss.Color("82")),
		moderate:    r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		destructive: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		failure:     r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func colorEnabled(out io.Writer, mode string) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(out)
}

func isTerminal(w interface{}) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *Renderer) paint(style lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return style.Render(text)
}

func (r *Renderer) riskStyle(tier domain.RiskTier) lipgloss.Style {
	switch tier {
	case domain.RiskDestructive:
		return r.destructive
	case domain.RiskModerate:
		return r.moderate
	default:
		return r.safe
	}
}

// Response prints the interpretation, the ranked commands, warnings,
// alternatives and a short repository summary.
func (r *Renderer) Response(result domain.AssistResult) {
	resp := result.Response
	fmt.Fprintln(r.out, r.paint(r.heading, resp.Interpretation))
	if result.FromCache {
		fmt.Fprintln(r.out, r.paint(r.muted, "(served from cache)"))
	}

	if resp.Clarification != nil {
		fmt.Fprintf(r.out, "\n? %s\n", resp.Clarification.Question)
	}

	if len(resp.Commands) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.paint(r.heading, "Suggested commands:"))
		r.candidates(resp.Commands)
	}

	if len(resp.Warnings) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.paint(r.moderate, "Warnings:"))
		for _, warning := range resp.Warnings {
			fmt.Fprintf(r.out, "  - %s\n", warning)
		}
	}

	if len(resp.Alternatives) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.paint(r.heading, "Safer alternatives:"))
		r.candidates(resp.Alternatives)
	}

	fmt.Fprintln(r.out)
	r.summary(result.State)
}

func (r *Renderer) candidates(candidates []domain.CommandCandidate) {
	for i, candidate := range candidates {
		if candidate.Guidance {
			fmt.Fprintf(r.out, "  %d. %s\n", i+1, candidate.Description)
			if candidate.Explanation != "" {
				fmt.Fprintf(r.out, "     %s\n", r.paint(r.muted, candidate.Explanation))
			}
			continue
		}
		tag := fmt.Sprintf("[%s]", strings.ToUpper(candidate.Risk.String()))
		fmt.Fprintf(r.out, "  %d. %s %s\n", i+1, r.paint(r.riskStyle(candidate.Risk), tag), candidate.CommandLine())
		if candidate.Description != "" {
			fmt.Fprintf(r.out, "     %s\n", candidate.Description)
		}
		if candidate.Explanation != "" {
			fmt.Fprintf(r.out, "     %s\n", r.paint(r.muted, candidate.Explanation))
		}
		if candidate.RequiresConfirmation() {
			fmt.Fprintf(r.out, "     %s\n", r.paint(r.destructive, "requires confirmation"))
		}
	}
}

func (r *Renderer) summary(state domain.RepositoryState) {
	fmt.Fprintln(r.out, r.paint(r.heading, "Repository:"))
	fmt.Fprintf(r.out, "  Branch:    %s\n", state.CurrentBranch)
	if state.HasUpstream() {
		fmt.Fprintf(r.out, "  Upstream:  %s (ahead %d, behind %d)\n",
			state.Tracking.Upstream, state.Tracking.Ahead, state.Tracking.Behind)
	}
	fmt.Fprintf(r.out, "  Staged:    %d\n", len(state.StagedFiles))
	fmt.Fprintf(r.out, "  Unstaged:  %d\n", len(state.UnstagedFiles))
	fmt.Fprintf(r.out, "  Untracked: %d\n", len(state.UntrackedFiles))
	if state.HasConflicts() {
		fmt.Fprintf(r.out, "  Conflicts: %s\n", r.paint(r.failure, fmt.Sprintf("%d", len(state.ConflictedFiles))))
	}
	fmt.Fprintf(r.out, "  State:     %s\n", cleanLabel(state))
}

// Status prints the repository summary followed by insights.
func (r *Renderer) Status(state domain.RepositoryState) {
	r.summary(state)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.paint(r.heading, "Insights:"))
	for _, insight := range state.Insights() {
		fmt.Fprintf(r.out, "  - %s\n", insight.Message)
		if insight.Suggestion != "" {
			fmt.Fprintf(r.out, "    %s\n", r.paint(r.muted, "Try: "+insight.Suggestion))
		}
	}
}

// Execution prints the outcome of a --run invocation.
func (r *Renderer) Execution(candidate domain.CommandCandidate, result domain.ExecutionResult) {
	fmt.Fprintln(r.out)
	switch {
	case result.ExitCode != 0:
		fmt.Fprintf(r.out, "%s %s (exit %d)\n", r.paint(r.failure, "Command failed:"), candidate.CommandLine(), result.ExitCode)
	case result.Err != nil:
		fmt.Fprintf(r.out, "%s %v\n", r.paint(r.failure, "Command not run:"), result.Err)
	default:
		fmt.Fprintf(r.out, "%s %s (%dms)\n", r.paint(r.safe, "Ran"), candidate.CommandLine(), result.DurationMS)
	}
	if out := strings.TrimRight(result.Stdout, "\n"); out != "" {
		fmt.Fprintln(r.out, out)
	}
	if errOut := strings.TrimRight(result.Stderr, "\n"); errOut != "" {
		fmt.Fprintln(r.out, r.paint(r.muted, errOut))
	}
}

// Health prints one line per doctor check.
func (r *Renderer) Health(report domain.HealthReport) {
	for _, check := range report.Checks {
		style := r.safe
		switch check.Status {
		case domain.HealthWarn:
			style = r.moderate
		case domain.HealthError:
			style = r.failure
		}
		label := fmt.Sprintf("[%s]", strings.ToUpper(string(check.Status)))
		fmt.Fprintf(r.out, "%s %s - %s\n", r.paint(style, label), check.Name, check.Details)
	}
}

// Muted prints a de-emphasised line.
func (r *Renderer) Muted(format string, args ...interface{}) {
	fmt.Fprintln(r.out, r.paint(r.muted, fmt.Sprintf(format, args...)))
}

func cleanLabel(state domain.RepositoryState) string {
	if state.IsClean() {
		return "clean"
	}
	return "has changes"
}
