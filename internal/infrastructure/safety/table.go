package safety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/doeshing/gitflow-ai/internal/domain"
)

// alternativeFunc proposes less destructive commands for a matched candidate.
type alternativeFunc func(candidate domain.CommandCandidate, state domain.RepositoryState) []domain.CommandCandidate

// RiskRule maps a git verb plus an argument pattern onto a tier. Args is a
// regular expression matched against the arguments joined by single spaces
// and padded with one space on each side; empty matches any arguments.
type RiskRule struct {
	Verb    string `yaml:"verb"`
	Args    string `yaml:"args"`
	Tier    string `yaml:"tier"`
	Message string `yaml:"message"`
}

type compiledRule struct {
	rule         RiskRule
	re           *regexp.Regexp
	tier         domain.RiskTier
	alternatives alternativeFunc
}

func (r compiledRule) matches(candidate domain.CommandCandidate) bool {
	if !strings.EqualFold(r.rule.Verb, candidate.Verb) {
		return false
	}
	return r.re == nil || r.re.MatchString(joinArgs(candidate.Args))
}

func joinArgs(args []string) string {
	return " " + strings.Join(args, " ") + " "
}

func compile(rule RiskRule, alternatives alternativeFunc) (compiledRule, error) {
	tier, err := domain.ParseRiskTier(rule.Tier)
	if err != nil {
		return compiledRule{}, fmt.Errorf("rule %s %q: %w", rule.Verb, rule.Args, err)
	}
	compiled := compiledRule{rule: rule, tier: tier, alternatives: alternatives}
	if rule.Args != "" {
		re, err := regexp.Compile(rule.Args)
		if err != nil {
			return compiledRule{}, fmt.Errorf("rule %s %q: %w", rule.Verb, rule.Args, err)
		}
		compiled.re = re
	}
	return compiled, nil
}

type builtin struct {
	rule         RiskRule
	alternatives alternativeFunc
}

func safe(verb string) builtin {
	return builtin{rule: RiskRule{Verb: verb, Tier: "safe"}}
}

func moderate(verb, args string) builtin {
	return builtin{rule: RiskRule{Verb: verb, Args: args, Tier: "moderate"}}
}

func destructive(verb, args, message string, alternatives alternativeFunc) builtin {
	return builtin{rule: RiskRule{Verb: verb, Args: args, Tier: "destructive", Message: message}, alternatives: alternatives}
}

// builtinTable is evaluated top to bottom; the first matching rule wins, so
// specific flag patterns precede the catch-all row for each verb.
var builtinTable = []builtin{
	destructive("reset", `\s--hard\s`,
		"A hard reset discards uncommitted work and removes commits from the branch.", hardResetAlternatives),
	destructive("reset", "",
		"Resetting rewrites branch history; commits that were already pushed will diverge from the remote.", resetAlternatives),

	moderate("push", `\s--force-with-lease(\s|=)`),
	destructive("push", `\s(--force|-f)\s`,
		"A force push overwrites the remote branch and can destroy commits pushed by others.", forcePushAlternatives),
	moderate("push", ""),

	destructive("branch", `\s-D\s`,
		"Force deleting a branch loses every commit that is not merged elsewhere.", branchDeleteAlternatives),
	moderate("branch", `\s(-d|--delete)\s`),
	safe("branch"),

	safe("clean").withArgs(`\s(--dry-run|-[a-zA-Z]*n[a-zA-Z]*)\s`),
	destructive("clean", `\s-[a-zA-Z]*f`,
		"Cleaning permanently deletes untracked files; git cannot recover them.", cleanAlternatives),
	moderate("clean", ""),

	destructive("checkout", `\s--\s`,
		"Checking out paths overwrites uncommitted changes in those files.", discardAlternatives),
	safe("checkout").withArgs(`\s-b\s`),
	moderate("checkout", ""),

	destructive("restore", `\s(--worktree|-W)\s`,
		"Restoring the working tree discards uncommitted edits permanently.", discardAlternatives),
	moderate("restore", `\s(--staged|-S)\s`),
	destructive("restore", "",
		"Restoring files discards uncommitted edits permanently.", discardAlternatives),

	destructive("stash", `\s(drop|clear)\s`,
		"Dropping stashes deletes saved work.", stashDropAlternatives),
	moderate("stash", `\s(pop|apply)\s`),
	safe("stash"),

	safe("switch").withArgs(`\s(-c|--create)\s`),
	moderate("switch", ""),

	moderate("merge", ""),
	moderate("rebase", ""),
	moderate("pull", ""),
	moderate("revert", ""),
	moderate("cherry-pick", ""),

	moderate("commit", `\s--amend\s`),
	safe("commit"),

	safe("status"),
	safe("diff"),
	safe("log"),
	safe("show"),
	safe("help"),
	safe("add"),
	safe("fetch"),
	safe("remote"),
	safe("mergetool"),
}

func (b builtin) withArgs(args string) builtin {
	b.rule.Args = args
	return b
}

func compileBuiltins() []compiledRule {
	rules := make([]compiledRule, 0, len(builtinTable))
	for _, entry := range builtinTable {
		compiled, err := compile(entry.rule, entry.alternatives)
		if err != nil {
			panic(err)
		}
		rules = append(rules, compiled)
	}
	return rules
}

func alt(verb, description string, args ...string) domain.CommandCandidate {
	return domain.CommandCandidate{Verb: verb, Args: args, Description: description}
}

func backupStash(message string) domain.CommandCandidate {
	return alt("stash", "Stash everything first so it can be restored", "push", "--include-untracked", "-m", message)
}

// refArgument returns the first positional argument or fallback.
func refArgument(candidate domain.CommandCandidate, fallback string) string {
	for _, arg := range candidate.Args {
		if !strings.HasPrefix(arg, "-") {
			return arg
		}
	}
	return fallback
}

func hardResetAlternatives(candidate domain.CommandCandidate, _ domain.RepositoryState) []domain.CommandCandidate {
	target := refArgument(candidate, "HEAD~1")
	return []domain.CommandCandidate{
		backupStash("Backup before reset"),
		alt("reset", "Reset but keep the changes staged", "--soft", target),
	}
}

func resetAlternatives(_ domain.CommandCandidate, state domain.RepositoryState) []domain.CommandCandidate {
	return []domain.CommandCandidate{
		alt("revert", "Undo with a new commit instead of rewriting history", "--no-edit", "HEAD"),
		backupBranch(state),
	}
}

func forcePushAlternatives(candidate domain.CommandCandidate, _ domain.RepositoryState) []domain.CommandCandidate {
	args := []string{"--force-with-lease"}
	for _, arg := range candidate.Args {
		if arg != "--force" && arg != "-f" {
			args = append(args, arg)
		}
	}
	return []domain.CommandCandidate{
		alt("push", "Force push only if nobody else pushed in the meantime", args...),
	}
}

func branchDeleteAlternatives(candidate domain.CommandCandidate, _ domain.RepositoryState) []domain.CommandCandidate {
	branch := refArgument(candidate, "")
	if branch == "" {
		return nil
	}
	return []domain.CommandCandidate{
		alt("branch", "Delete only if the branch is fully merged", "-d", branch),
	}
}

func cleanAlternatives(domain.CommandCandidate, domain.RepositoryState) []domain.CommandCandidate {
	return []domain.CommandCandidate{
		alt("clean", "Preview what would be deleted", "-nd"),
		backupStash("Backup of untracked files"),
	}
}

func discardAlternatives(domain.CommandCandidate, domain.RepositoryState) []domain.CommandCandidate {
	return []domain.CommandCandidate{
		alt("stash", "Stash the changes instead of throwing them away", "push", "-m", "Backup before discarding changes"),
	}
}

func stashDropAlternatives(domain.CommandCandidate, domain.RepositoryState) []domain.CommandCandidate {
	return []domain.CommandCandidate{
		alt("stash", "Review the stash list before dropping anything", "list"),
	}
}

// backupBranch marks the current commit so it can be recovered.
func backupBranch(state domain.RepositoryState) domain.CommandCandidate {
	name := "gitflow/backup"
	if state.HasCommits() {
		name += "-" + state.RecentCommits[0].ShortHash()
	}
	return alt("branch", "Create a backup branch at the current commit", name)
}

// genericAlternatives covers Destructive candidates without a dedicated entry,
// such as commands raised by a conflict upgrade or by an override rule.
func genericAlternatives(state domain.RepositoryState) []domain.CommandCandidate {
	var out []domain.CommandCandidate
	if state.HasCommits() {
		out = append(out, backupBranch(state))
	}
	if !state.HasConflicts() && !state.IsClean() {
		out = append(out, backupStash("Backup before a risky operation"))
	}
	if len(out) == 0 {
		out = append(out, alt("status", "Review the repository state before continuing"))
	}
	return out
}
