package intent

import (
	"regexp"

	"github.com/doeshing/gitflow-ai/internal/domain"
)

// extractor fills the parameter map from the raw utterance.
type extractor func(utterance string, state domain.RepositoryState) map[string]string

// Rule maps natural language onto one intent kind.
//
// Phrases score the base confidence, Patterns score base-0.05 and typo-tolerant
// Keywords score base-0.25. Excludes veto all three. Catchall patterns are
// checked last, ignore Excludes and score a flat catchallConfidence.
type Rule struct {
	Kind       domain.IntentKind
	Confidence float64
	Phrases    []string
	Patterns   []*regexp.Regexp
	Keywords   [][]string
	Excludes   []*regexp.Regexp
	Catchall   []*regexp.Regexp
	Required   []string
	Extract    extractor
}

func re(pattern string) *regexp.Regexp {
	return regexp.MustCompile(pattern)
}

// fileWord matches a file name token such as app.go or docs/readme.md.
const fileWord = `(^|\s)([\w.-]+/)*[\w-]+\.[a-z][a-z0-9]{0,7}(\s|$)`

const discardWords = `\b(discard|throw|throwing|lose|losing|hard|get rid|delete|erase|wipe|without keeping|dont keep|do not keep|not keep)\b`

// ruleTable is evaluated in declaration order; earlier rules win ties.
var ruleTable = []Rule{
	{
		Kind:       domain.IntentUndoCommitKeep,
		Confidence: 0.95,
		Phrases: []string{
			"undo last commit but keep", "undo my last commit but keep the changes",
			"undo commit keep changes", "uncommit", "soft reset", "reset soft",
		},
		Patterns: []*regexp.Regexp{
			re(`\b(undo|reset|take back|uncommit|roll ?back)\b.*\bcommit`),
			re(`\bcommit\b.*\b(undo|take back)\b`),
			re(`\bsoft\b.*\breset\b|\breset\b.*\bsoft\b`),
		},
		Keywords: [][]string{{"undo", "uncommit"}, {"commit"}},
		Excludes: []*regexp.Regexp{re(discardWords), re(`\brevert\b`), re(`\bpushed\b`)},
	},
	{
		Kind:       domain.IntentUndoCommitDiscard,
		Confidence: 0.95,
		Phrases:    []string{"hard reset", "reset hard", "undo last commit and discard"},
		Patterns: []*regexp.Regexp{
			re(`\b(undo|reset|remove|drop|delete|roll ?back)\b.*\bcommit.*` + discardWords),
			re(`\bhard\b.*\breset\b|\breset\b.*\bhard\b`),
			re(`\b(delete|remove|drop|destroy)\b.*\b(last|latest|previous) commit\b`),
		},
		Keywords: [][]string{{"undo", "reset"}, {"commit"}, {"discard"}},
	},
	{
		Kind:       domain.IntentRevertCommit,
		Confidence: 0.9,
		Phrases:    []string{"revert last commit", "revert the last commit", "revert my last commit"},
		Patterns: []*regexp.Regexp{
			re(`\brevert\b`),
			re(`\b(undo|reverse)\b.*\bpushed\b`),
		},
		Keywords: [][]string{{"revert"}},
		Excludes: []*regexp.Regexp{re(`\b(my|local|uncommitted|unstaged) (changes|modifications|edits)\b`)},
	},
	{
		Kind:       domain.IntentForcePush,
		Confidence: 0.95,
		Phrases:    []string{"force push", "push force", "push --force", "force-push", "push -f"},
		Patterns: []*regexp.Regexp{
			re(`\bforce\b.*\bpush`),
			re(`\bpush\b.*(--force|\bforce\b|\s-f\b)`),
			re(`\boverwrite\b.*\bremote\b`),
		},
		Keywords: [][]string{{"force"}, {"push"}},
		Extract:  extractRemote,
	},
	{
		Kind:       domain.IntentDeleteBranch,
		Confidence: 0.95,
		Patterns: []*regexp.Regexp{
			re(`\b(delete|remove|drop|get rid of)\b.*\bbranch`),
			re(`\bbranch\b.*\b(delete|remove)\b`),
			re(`\bbranch -d\b`),
		},
		Keywords: [][]string{{"delete", "remove"}, {"branch"}},
		Excludes: []*regexp.Regexp{re(`\buntracked\b`)},
		Required: []string{domain.ParamBranch},
		Extract:  extractDeleteBranch,
	},
	{
		Kind:       domain.IntentCreateBranch,
		Confidence: 0.95,
		Phrases: []string{
			"new branch", "create branch", "create a branch", "create a new branch",
			"make a branch", "make a new branch", "start a branch", "start a new branch",
		},
		Patterns: []*regexp.Regexp{
			re(`\b(create|make|start|open|new|add)\b.*\bbranch\b`),
			re(`\bcheckout -b\b`),
			re(`\bswitch -c\b`),
			re(`\bbranch off\b`),
		},
		Keywords: [][]string{{"create", "make"}, {"branch"}},
		Excludes: []*regexp.Regexp{re(`\b(delete|remove)\b`)},
		Required: []string{domain.ParamBranch},
		Extract:  extractCreateBranch,
	},
	{
		Kind:       domain.IntentSwitchBranch,
		Confidence: 0.9,
		Phrases:    []string{"switch branch", "switch branches", "change branch", "checkout branch"},
		Patterns: []*regexp.Regexp{
			re(`\b(switch|checkout|check out)\b`),
			re(`\b(go|move|jump|change) (back )?to\b.*\bbranch\b`),
			re(`\b(go|move|jump) (back )?to (the )?[a-z0-9._/-]+$`),
		},
		Keywords: [][]string{{"switch", "checkout"}},
		Excludes: []*regexp.Regexp{re(`\b(delete|remove)\b`), re(`\bfiles?\b`), re(fileWord)},
		Required: []string{domain.ParamBranch},
		Extract:  extractSwitchBranch,
	},
	{
		Kind:       domain.IntentListBranches,
		Confidence: 0.9,
		Phrases:    []string{"list branches", "show branches", "what branches", "which branches", "all branches"},
		Patterns: []*regexp.Regexp{
			re(`\b(list|show|see|view|display)\b.*\bbranches\b`),
			re(`\bbranches\b.*\b(exist|are there|do i have)\b`),
			re(`^branches$`),
			re(`\bwhich branch am i\b|\bwhat branch am i\b|\bcurrent branch\b`),
		},
		Keywords: [][]string{{"branches"}},
	},
	{
		Kind:       domain.IntentMergeBranch,
		Confidence: 0.9,
		Phrases:    []string{"merge branch"},
		Patterns:   []*regexp.Regexp{re(`\bmerge\b`)},
		Keywords:   [][]string{{"merge"}},
		Excludes:   []*regexp.Regexp{re(`\bconflicts?\b`), re(`\babort\b`)},
		Required:   []string{domain.ParamTarget},
		Extract:    extractMergeTarget,
	},
	{
		Kind:       domain.IntentRebaseBranch,
		Confidence: 0.9,
		Patterns:   []*regexp.Regexp{re(`\brebase\b`)},
		Keywords:   [][]string{{"rebase"}},
		Excludes:   []*regexp.Regexp{re(`\babort\b`)},
		Required:   []string{domain.ParamTarget},
		Extract:    extractRebaseTarget,
	},
	{
		Kind:       domain.IntentStashPop,
		Confidence: 0.95,
		Phrases:    []string{"stash pop", "pop stash", "pop the stash", "apply stash", "apply the stash", "unstash"},
		Patterns: []*regexp.Regexp{
			re(`\b(pop|apply|restore|bring back|get back|unstash)\b.*\bstash`),
			re(`\bstash(ed)?\b.*\b(back|pop|apply)\b`),
		},
		Keywords: [][]string{{"pop", "unstash"}, {"stash", "unstash"}},
	},
	{
		Kind:       domain.IntentStash,
		Confidence: 0.9,
		Phrases:    []string{"stash", "stash my changes", "shelve my changes", "save my work for later"},
		Patterns: []*regexp.Regexp{
			re(`\bstash`),
			re(`\b(save|shelve|park|put away)\b.*\b(changes|work)\b.*\b(later|temporar|for now|aside)`),
			re(`\bset (my )?(changes|work) aside\b`),
		},
		Keywords: [][]string{{"stash", "shelve"}},
	},
	{
		Kind:       domain.IntentUnstageChanges,
		Confidence: 0.95,
		Phrases:    []string{"unstage"},
		Patterns: []*regexp.Regexp{
			re(`\bunstage`),
			re(`\bundo\b.*\badd\b`),
			re(`\bun-?add\b`),
			re(`\b(remove|take)\b.*\bfrom (the )?(staging|index|stage)\b`),
			re(`\breset head\b`),
		},
		Keywords: [][]string{{"unstage"}},
		Extract:  extractPathTarget,
	},
	{
		Kind:       domain.IntentStageChanges,
		Confidence: 0.9,
		Phrases:    []string{"stage all", "stage my changes", "stage everything", "add all files", "git add"},
		Patterns: []*regexp.Regexp{
			re(`\bstage\b`),
			re(`\badd\b.*\b(files?|changes|everything|all)\b`),
			re(`\bstaging\b`),
		},
		Keywords: [][]string{{"stage"}},
		Excludes: []*regexp.Regexp{re(`\bbranch\b`), re(`\bremote\b`), re(`\b(undo|unstage|un-?add)\b`)},
		Extract:  extractPathTarget,
	},
	{
		Kind:       domain.IntentCommitStaged,
		Confidence: 0.9,
		Phrases: []string{
			"commit my changes", "commit changes", "commit everything",
			"commit my work", "make a commit", "save my changes",
		},
		Patterns: []*regexp.Regexp{re(`\bcommit\b`), re(`\bcheck in\b`)},
		Keywords: [][]string{{"commit"}},
		Excludes: []*regexp.Regexp{
			re(`\b(undo|revert|uncommit|amend|reset)\b`),
			re(`\b(last|previous|latest|recent) commits?\b`),
			re(`\bcommits\b`),
			re(`\b(history|log)\b`),
		},
		Extract: extractMessage,
	},
	{
		Kind:       domain.IntentPush,
		Confidence: 0.9,
		Phrases:    []string{"push", "push my changes", "push my commits", "push to remote"},
		Patterns: []*regexp.Regexp{
			re(`\bpush`),
			re(`\b(upload|publish|send)\b.*\b(commits?|changes|branch|remote)\b`),
		},
		Keywords: [][]string{{"push"}},
		Excludes: []*regexp.Regexp{re(`\bforce\b`), re(`--force`), re(`\bstash\b`)},
		Extract:  extractRemote,
	},
	{
		Kind:       domain.IntentPull,
		Confidence: 0.9,
		Phrases:    []string{"pull", "pull latest", "get latest", "get the latest changes", "update my branch", "sync with remote"},
		Patterns: []*regexp.Regexp{
			re(`\bpull\b`),
			re(`\b(fetch|get|grab|download)\b.*\b(latest|updates?|new commits)\b`),
			re(`\b(update|sync)\b.*\b(branch|repo|repository|remote|local)\b`),
		},
		Keywords: [][]string{{"pull"}},
		Excludes: []*regexp.Regexp{re(`\bpull request`)},
		Extract:  extractRemote,
	},
	{
		Kind:       domain.IntentResolveConflict,
		Confidence: 0.95,
		Phrases:    []string{"merge conflict", "merge conflicts", "resolve conflicts", "fix conflicts"},
		Patterns:   []*regexp.Regexp{re(`\bconflict`)},
		Keywords:   [][]string{{"conflict", "conflicts"}},
	},
	{
		Kind:       domain.IntentCheckStatus,
		Confidence: 0.85,
		Phrases:    []string{"status", "what changed", "whats changed", "what is going on", "where am i"},
		Patterns: []*regexp.Regexp{
			re(`\bstatus\b`),
			re(`\bwhat\b.*\b(changed|modified|going on|state)\b`),
			re(`\b(which|what) files\b`),
			re(`\bmodified files\b`),
		},
		Keywords: [][]string{{"status"}},
	},
	{
		Kind:       domain.IntentShowLog,
		Confidence: 0.85,
		Phrases:    []string{"log", "history", "commit history", "recent commits", "last commits"},
		Patterns: []*regexp.Regexp{
			re(`\b(log|history)\b`),
			re(`\b(show|list|see|view)\b.*\bcommits\b`),
			re(`\b(last|previous|latest|recent) commits?\b`),
		},
		Keywords: [][]string{{"history"}},
		Excludes: []*regexp.Regexp{re(`\b(undo|revert|reset|delete|remove|drop|uncommit|destroy)\b`)},
		// A vague undo lists recent commits to pick a target from.
		Catchall: []*regexp.Regexp{re(`\b(undo|revert|roll ?back|reset)\b`)},
	},
	{
		Kind:       domain.IntentShowDiff,
		Confidence: 0.85,
		Phrases:    []string{"diff", "show changes", "show my changes", "see my changes", "what did i change"},
		Patterns: []*regexp.Regexp{
			re(`\bdiff\b`),
			re(`\bdifferences?\b`),
			re(`\b(show|see|view|display)\b.*\bchanges\b`),
		},
		Keywords: [][]string{{"diff"}},
		Excludes: []*regexp.Regexp{re(`\b(discard|stash|commit|undo)\b`)},
	},
	{
		Kind:       domain.IntentDiscardChanges,
		Confidence: 0.9,
		Phrases: []string{
			"discard changes", "discard my changes", "throw away my changes",
			"reset my changes", "start over",
		},
		Patterns: []*regexp.Regexp{
			re(`\b(discard|throw away|throw out|get rid of|revert|undo|reset|drop|lose|wipe)\b.*\b(changes|modifications|edits|work)\b`),
			re(`\b(checkout|check out|restore)\b.*(\bfiles?\b|` + fileWord + `)`),
		},
		Keywords: [][]string{{"discard"}, {"changes"}},
		Excludes: []*regexp.Regexp{re(`\bcommit`), re(`\bstash`)},
		Extract:  extractPathTarget,
	},
	{
		Kind:       domain.IntentCleanUntracked,
		Confidence: 0.9,
		Phrases:    []string{"clean untracked", "remove untracked files", "delete untracked files", "git clean"},
		Patterns: []*regexp.Regexp{
			re(`\buntracked\b.*\b(remove|delete|clean|get rid|drop)\b`),
			re(`\b(remove|delete|clean|get rid of|drop)\b.*\buntracked\b`),
			re(`\bclean\b.*\b(working (tree|directory)|repo)\b`),
		},
		Keywords: [][]string{{"clean"}, {"untracked"}},
	},
}

// Rules returns the rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(ruleTable))
	copy(out, ruleTable)
	return out
}

func ruleFor(kind domain.IntentKind) (Rule, int, bool) {
	for i, rule := range ruleTable {
		if rule.Kind == kind {
			return rule, i, true
		}
	}
	return Rule{}, len(ruleTable), false
}
