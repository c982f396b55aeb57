// Package safety assigns risk tiers to command candidates and attaches
// warnings and safer alternatives.
package safety

import (
	"fmt"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

const (
	conflictWarning = "The repository has unresolved merge conflicts; resolve them before running anything else."
	fallbackMessage = "This command can permanently lose work."
)

// contextualVerbs warn about uncommitted tracked changes without a tier change.
var contextualVerbs = map[string]string{
	"push":     "pushing",
	"pull":     "pulling",
	"switch":   "switching branches",
	"checkout": "switching branches",
	"merge":    "merging",
	"rebase":   "rebasing",
}

// Classifier implements ports.SafetyClassifier.
type Classifier struct {
	builtins  []compiledRule
	overrides []compiledRule
	config    domain.Config
}

// NewClassifier builds the classifier from the safety section of the config.
// Override rules are read from safety.rules_file when it exists.
func NewClassifier(cfg domain.Config) (*Classifier, error) {
	overrides, err := loadOverrides(cfg.Safety.RulesFile)
	if err != nil {
		return nil, err
	}
	return &Classifier{
		builtins:  compileBuiltins(),
		overrides: overrides,
		config:    cfg,
	}, nil
}

// OverrideCount reports how many override rules were loaded.
func (c *Classifier) OverrideCount() int {
	return len(c.overrides)
}

type verdict struct {
	tier         domain.RiskTier
	message      string
	alternatives alternativeFunc
}

// baseline resolves the table tier. An override only applies when it raises
// the tier; unmatched verbs are Moderate.
func (c *Classifier) baseline(candidate domain.CommandCandidate) verdict {
	result := verdict{tier: domain.RiskModerate}
	for _, rule := range c.builtins {
		if rule.matches(candidate) {
			result = verdict{tier: rule.tier, message: rule.rule.Message, alternatives: rule.alternatives}
			break
		}
	}
	for _, rule := range c.overrides {
		if !rule.matches(candidate) {
			continue
		}
		if rule.tier > result.tier {
			result = verdict{tier: rule.tier, message: rule.rule.Message}
		}
		break
	}
	return result
}

// Classify implements ports.SafetyClassifier.
func (c *Classifier) Classify(candidates []domain.CommandCandidate, state domain.RepositoryState) domain.Classification {
	var (
		out       = domain.Classification{Candidates: make([]domain.CommandCandidate, 0, len(candidates))}
		seen      = map[string]bool{}
		verdicts  = make([]verdict, len(candidates))
		conflicts = state.HasConflicts()
		protected = c.config.IsProtectedBranch(state.CurrentBranch)
	)
	warn := func(message string) {
		if message != "" && !seen[message] {
			seen[message] = true
			out.Warnings = append(out.Warnings, message)
		}
	}

	for i, candidate := range candidates {
		if candidate.Guidance {
			out.Candidates = append(out.Candidates, candidate.Classified(domain.RiskSafe, false))
			continue
		}

		v := c.baseline(candidate)
		verdicts[i] = v
		tier, escalated := v.tier, false

		if tier == domain.RiskSafe && candidate.Verb == "commit" && protected {
			tier, escalated = domain.RiskModerate, true
			warn(fmt.Sprintf("You are committing directly to the protected branch '%s'; consider creating a feature branch first with 'git switch -c <name>'.", state.CurrentBranch))
		}
		if conflicts {
			tier, escalated = tier.Raise(1), true
			warn(conflictWarning)
		}
		if tier == domain.RiskDestructive {
			message := v.message
			if message == "" {
				message = fallbackMessage
			}
			warn(fmt.Sprintf("%s: %s", candidate.CommandLine(), message))
		}
		if action, ok := contextualVerbs[candidate.Verb]; ok && state.HasTrackedChanges() {
			warn(fmt.Sprintf("You have uncommitted changes to tracked files; commit or stash them before %s.", action))
		}

		out.Candidates = append(out.Candidates, candidate.Classified(tier, escalated))
	}

	if domain.HasDestructive(out.Candidates) {
		out.Alternatives = c.alternatives(out.Candidates, verdicts, state)
	}
	return out
}

func (c *Classifier) alternatives(classified []domain.CommandCandidate, verdicts []verdict, state domain.RepositoryState) []domain.CommandCandidate {
	var (
		out  []domain.CommandCandidate
		seen = map[string]bool{}
	)
	for i, candidate := range classified {
		if candidate.Risk != domain.RiskDestructive {
			continue
		}
		var proposals []domain.CommandCandidate
		if verdicts[i].alternatives != nil {
			proposals = verdicts[i].alternatives(candidate, state)
		}
		if len(proposals) == 0 {
			proposals = genericAlternatives(state)
		}
		for _, proposal := range proposals {
			line := proposal.CommandLine()
			if seen[line] || line == candidate.CommandLine() {
				continue
			}
			seen[line] = true
			out = append(out, proposal.Classified(c.baseline(proposal).tier, false))
		}
	}
	return out
}

var _ ports.SafetyClassifier = (*Classifier)(nil)
