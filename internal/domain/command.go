package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// RiskTier orders candidates by how much damage a mistake can do.
type RiskTier int

const (
	RiskSafe RiskTier = iota
	RiskModerate
	RiskDestructive
)

func (t RiskTier) String() string {
	switch t {
	case RiskSafe:
		return "safe"
	case RiskModerate:
		return "moderate"
	case RiskDestructive:
		return "destructive"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseRiskTier accepts the lower-case tier names.
func ParseRiskTier(value string) (RiskTier, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "safe":
		return RiskSafe, nil
	case "moderate":
		return RiskModerate, nil
	case "destructive":
		return RiskDestructive, nil
	default:
		return RiskSafe, fmt.Errorf("unknown risk tier %q", value)
	}
}

// Raise moves the tier up by n steps, saturating at Destructive.
func (t RiskTier) Raise(n int) RiskTier {
	raised := t + RiskTier(n)
	if raised > RiskDestructive {
		return RiskDestructive
	}
	return raised
}

func (t RiskTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *RiskTier) UnmarshalText(text []byte) error {
	tier, err := ParseRiskTier(string(text))
	if err != nil {
		return err
	}
	*t = tier
	return nil
}

// CommandCandidate is one suggested git invocation.
//
// Guidance candidates explain why nothing should be run; they are never
// executed and always stay Safe. The tier and the escalation flag are set by
// the safety classifier through Classified.
type CommandCandidate struct {
	Verb        string
	Args        []string
	Description string
	Explanation string
	Risk        RiskTier
	Guidance    bool

	escalated bool
}

// Classified returns a copy carrying the given tier. escalated records that a
// state-based upgrade raised the tier above the table baseline.
func (c CommandCandidate) Classified(tier RiskTier, escalated bool) CommandCandidate {
	out := c.Clone()
	out.Risk = tier
	out.escalated = escalated
	return out
}

// Escalated reports whether a state-based upgrade fired for this candidate.
func (c CommandCandidate) Escalated() bool {
	return c.escalated
}

// RequiresConfirmation is true for Destructive candidates and for Moderate
// candidates whose tier was raised by repository state.
func (c CommandCandidate) RequiresConfirmation() bool {
	switch c.Risk {
	case RiskDestructive:
		return true
	case RiskModerate:
		return c.escalated
	default:
		return false
	}
}

// Argv returns the argument vector passed to the git binary.
func (c CommandCandidate) Argv() []string {
	if c.Guidance || c.Verb == "" {
		return nil
	}
	return append([]string{c.Verb}, c.Args...)
}

// CommandLine renders the candidate as a copy-pasteable shell line.
func (c CommandCandidate) CommandLine() string {
	argv := c.Argv()
	if len(argv) == 0 {
		return ""
	}
	parts := make([]string, 0, len(argv)+1)
	parts = append(parts, "git")
	for _, arg := range argv {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

// HasArg reports whether any of the given arguments is present verbatim.
func (c CommandCandidate) HasArg(args ...string) bool {
	for _, arg := range args {
		if slices.Contains(c.Args, arg) {
			return true
		}
	}
	return false
}

// Clone copies the argument slice.
func (c CommandCandidate) Clone() CommandCandidate {
	out := c
	out.Args = slices.Clone(c.Args)
	return out
}

func quoteArg(arg string) string {
	if arg == "" {
		return `""`
	}
	if strings.ContainsAny(arg, " \t\"'$`\\<>|&;*?") {
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`").Replace(arg) + `"`
	}
	return arg
}

type candidateJSON struct {
	Command              string   `json:"command"`
	Verb                 string   `json:"verb"`
	Args                 []string `json:"args"`
	Description          string   `json:"description"`
	Explanation          string   `json:"explanation,omitempty"`
	Risk                 RiskTier `json:"risk"`
	RequiresConfirmation bool     `json:"requires_confirmation"`
	Escalated            bool     `json:"escalated,omitempty"`
	Guidance             bool     `json:"guidance,omitempty"`
}

func (c CommandCandidate) MarshalJSON() ([]byte, error) {
	args := c.Args
	if args == nil {
		args = []string{}
	}
	return json.Marshal(candidateJSON{
		Command:              c.CommandLine(),
		Verb:                 c.Verb,
		Args:                 args,
		Description:          c.Description,
		Explanation:          c.Explanation,
		Risk:                 c.Risk,
		RequiresConfirmation: c.RequiresConfirmation(),
		Escalated:            c.escalated,
		Guidance:             c.Guidance,
	})
}

// UnmarshalJSON restores a candidate written by MarshalJSON. The
// requires_confirmation field is ignored and recomputed from tier and escalation.
func (c *CommandCandidate) UnmarshalJSON(data []byte) error {
	var raw candidateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = CommandCandidate{
		Verb:        raw.Verb,
		Args:        raw.Args,
		Description: raw.Description,
		Explanation: raw.Explanation,
		Risk:        raw.Risk,
		Guidance:    raw.Guidance,
		escalated:   raw.Escalated,
	}
	return nil
}

// Classification is the safety classifier's verdict for a candidate list.
type Classification struct {
	Candidates   []CommandCandidate
	Warnings     []string
	Alternatives []CommandCandidate
}

// HasDestructive reports whether any candidate is Destructive.
func HasDestructive(candidates []CommandCandidate) bool {
	for _, candidate := range candidates {
		if candidate.Risk == RiskDestructive {
			return true
		}
	}
	return false
}

// ExecutionResult captures the outcome of running a candidate.
type ExecutionResult struct {
	Ran        bool   `json:"ran"`
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMS int64  `json:"duration_ms"`
	Err        error  `json:"-"`
}
