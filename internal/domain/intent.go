package domain

import (
	"fmt"
	"maps"
	"strings"
)

// IntentKind is a tag from the closed vocabulary of supported operations.
type IntentKind string

const (
	IntentUndoCommitKeep    IntentKind = "undo_last_commit_keep_changes"
	IntentUndoCommitDiscard IntentKind = "undo_last_commit_discard_changes"
	IntentRevertCommit      IntentKind = "revert_last_commit"
	IntentCreateBranch      IntentKind = "create_branch"
	IntentSwitchBranch      IntentKind = "switch_branch"
	IntentDeleteBranch      IntentKind = "delete_branch"
	IntentListBranches      IntentKind = "list_branches"
	IntentMergeBranch       IntentKind = "merge_branch"
	IntentRebaseBranch      IntentKind = "rebase_branch"
	IntentStash             IntentKind = "stash"
	IntentStashPop          IntentKind = "stash_pop"
	IntentStageChanges      IntentKind = "stage_changes"
	IntentUnstageChanges    IntentKind = "unstage_changes"
	IntentCommitStaged      IntentKind = "commit_staged"
	IntentPush              IntentKind = "push"
	IntentForcePush         IntentKind = "force_push"
	IntentPull              IntentKind = "pull"
	IntentResolveConflict   IntentKind = "resolve_conflict"
	IntentCheckStatus       IntentKind = "check_status"
	IntentShowLog           IntentKind = "show_log"
	IntentShowDiff          IntentKind = "show_diff"
	IntentDiscardChanges    IntentKind = "discard_changes"
	IntentCleanUntracked    IntentKind = "clean_untracked"
	IntentUnknown           IntentKind = "unknown"
)

// Parameter names filled by extractors.
const (
	ParamBranch  = "branch"
	ParamTarget  = "target"
	ParamMessage = "message"
	ParamRemote  = "remote"
	ParamForce   = "force"
)

var vocabulary = []IntentKind{
	IntentUndoCommitKeep,
	IntentUndoCommitDiscard,
	IntentRevertCommit,
	IntentCreateBranch,
	IntentSwitchBranch,
	IntentDeleteBranch,
	IntentListBranches,
	IntentMergeBranch,
	IntentRebaseBranch,
	IntentStash,
	IntentStashPop,
	IntentStageChanges,
	IntentUnstageChanges,
	IntentCommitStaged,
	IntentPush,
	IntentForcePush,
	IntentPull,
	IntentResolveConflict,
	IntentCheckStatus,
	IntentShowLog,
	IntentShowDiff,
	IntentDiscardChanges,
	IntentCleanUntracked,
	IntentUnknown,
}

var descriptions = map[IntentKind]string{
	IntentUndoCommitKeep:    "undo your last commit while keeping its changes",
	IntentUndoCommitDiscard: "undo your last commit and discard its changes",
	IntentRevertCommit:      "revert your last commit with a new commit",
	IntentCreateBranch:      "create a new branch",
	IntentSwitchBranch:      "switch to another branch",
	IntentDeleteBranch:      "delete a branch",
	IntentListBranches:      "list branches",
	IntentMergeBranch:       "merge a branch into the current one",
	IntentRebaseBranch:      "rebase the current branch",
	IntentStash:             "stash your uncommitted changes",
	IntentStashPop:          "restore your most recent stash",
	IntentStageChanges:      "stage your changes",
	IntentUnstageChanges:    "unstage your changes",
	IntentCommitStaged:      "commit your changes",
	IntentPush:              "push your commits",
	IntentForcePush:         "force push your branch",
	IntentPull:              "pull the latest changes",
	IntentResolveConflict:   "resolve merge conflicts",
	IntentCheckStatus:       "check the repository status",
	IntentShowLog:           "see the commit history",
	IntentShowDiff:          "see what changed",
	IntentDiscardChanges:    "discard your uncommitted changes",
	IntentCleanUntracked:    "remove untracked files",
	IntentUnknown:           "do something I could not identify",
}

// Vocabulary returns every intent kind in declaration order.
func Vocabulary() []IntentKind {
	out := make([]IntentKind, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// ParseIntentKind maps free text onto the vocabulary. Hyphens and spaces are
// accepted in place of underscores.
func ParseIntentKind(raw string) (IntentKind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	for _, kind := range vocabulary {
		if string(kind) == normalized {
			return kind, true
		}
	}
	return IntentUnknown, false
}

// DependsOnRemote reports whether commands for the kind are built from the
// remotes and upstream tracking, which the state fingerprint leaves out.
func (k IntentKind) DependsOnRemote() bool {
	switch k {
	case IntentPush, IntentForcePush, IntentPull:
		return true
	}
	return false
}

// IntentSource records which recognition stage produced an intent.
type IntentSource string

const (
	SourceRule     IntentSource = "rule"
	SourceFuzzy    IntentSource = "fuzzy"
	SourceFallback IntentSource = "fallback"
	SourceDefault  IntentSource = "default"
)

// Intent is one classification of an utterance.
type Intent struct {
	Kind       IntentKind        `json:"kind"`
	Confidence float64           `json:"confidence"`
	Params     map[string]string `json:"params,omitempty"`
	Source     IntentSource      `json:"source"`
}

// UnknownIntent is returned when nothing in the vocabulary matched.
func UnknownIntent() Intent {
	return Intent{Kind: IntentUnknown, Confidence: 0, Source: SourceDefault}
}

// Param returns a parameter value or "".
func (i Intent) Param(name string) string {
	return i.Params[name]
}

// HasParam reports whether a non-empty parameter is present.
func (i Intent) HasParam(name string) bool {
	return strings.TrimSpace(i.Params[name]) != ""
}

// Clone copies the parameter map.
func (i Intent) Clone() Intent {
	out := i
	if i.Params != nil {
		out.Params = maps.Clone(i.Params)
	}
	return out
}

// Describe returns a short human description of the operation.
func (i Intent) Describe() string {
	base, ok := descriptions[i.Kind]
	if !ok {
		base = descriptions[IntentUnknown]
	}
	switch i.Kind {
	case IntentCreateBranch:
		if i.HasParam(ParamBranch) {
			return fmt.Sprintf("create a new branch '%s'", i.Param(ParamBranch))
		}
	case IntentSwitchBranch:
		if i.HasParam(ParamBranch) {
			return fmt.Sprintf("switch to branch '%s'", i.Param(ParamBranch))
		}
	case IntentDeleteBranch:
		if i.HasParam(ParamBranch) {
			return fmt.Sprintf("delete branch '%s'", i.Param(ParamBranch))
		}
	case IntentMergeBranch:
		if i.HasParam(ParamTarget) {
			return fmt.Sprintf("merge '%s' into the current branch", i.Param(ParamTarget))
		}
	case IntentRebaseBranch:
		if i.HasParam(ParamTarget) {
			return fmt.Sprintf("rebase the current branch onto '%s'", i.Param(ParamTarget))
		}
	}
	return base
}
