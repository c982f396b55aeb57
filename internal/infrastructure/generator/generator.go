// Package generator expands recognized intents into concrete git command
// candidates conditioned on the repository state.
package generator

import (
	"fmt"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// MessagePlaceholder stands in for a commit message the user did not give.
const MessagePlaceholder = "<message>"

type expander func(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification)

// Generator implements ports.CommandGenerator.
type Generator struct {
	expanders map[domain.IntentKind]expander
}

// NewGenerator returns a generator covering the whole intent vocabulary.
func NewGenerator() *Generator {
	return &Generator{expanders: map[domain.IntentKind]expander{
		domain.IntentUnknown:           expandUnknown,
		domain.IntentCheckStatus:       expandStatus,
		domain.IntentShowLog:           expandLog,
		domain.IntentShowDiff:          expandDiff,
		domain.IntentCommitStaged:      expandCommit,
		domain.IntentStageChanges:      expandStage,
		domain.IntentUnstageChanges:    expandUnstage,
		domain.IntentUndoCommitKeep:    expandUndoKeep,
		domain.IntentUndoCommitDiscard: expandUndoDiscard,
		domain.IntentRevertCommit:      expandRevert,
		domain.IntentCreateBranch:      expandCreateBranch,
		domain.IntentSwitchBranch:      expandSwitchBranch,
		domain.IntentDeleteBranch:      expandDeleteBranch,
		domain.IntentListBranches:      expandListBranches,
		domain.IntentMergeBranch:       expandMerge,
		domain.IntentRebaseBranch:      expandRebase,
		domain.IntentStash:             expandStash,
		domain.IntentStashPop:          expandStashPop,
		domain.IntentPush:              expandPush,
		domain.IntentForcePush:         expandForcePush,
		domain.IntentPull:              expandPull,
		domain.IntentResolveConflict:   expandResolveConflict,
		domain.IntentDiscardChanges:    expandDiscardChanges,
		domain.IntentCleanUntracked:    expandCleanUntracked,
	}}
}

// Generate implements ports.CommandGenerator. It returns either a non-empty
// candidate list or a clarification, never both.
func (g *Generator) Generate(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	expand, ok := g.expanders[intent.Kind]
	if !ok {
		expand = expandUnknown
	}
	candidates, clarification := expand(intent, state)
	if clarification != nil {
		return nil, clarification
	}
	if len(candidates) == 0 {
		return expandUnknown(intent, state)
	}
	return candidates, nil
}

func command(verb, description, explanation string, args ...string) domain.CommandCandidate {
	return domain.CommandCandidate{
		Verb:        verb,
		Args:        args,
		Description: description,
		Explanation: explanation,
	}
}

func guidance(description, explanation string) domain.CommandCandidate {
	return domain.CommandCandidate{
		Description: description,
		Explanation: explanation,
		Guidance:    true,
	}
}

func clarify(intent domain.Intent, parameter, question string) ([]domain.CommandCandidate, *domain.Clarification) {
	return nil, &domain.Clarification{Intent: intent.Kind, Parameter: parameter, Question: question}
}

func one(candidate domain.CommandCandidate) ([]domain.CommandCandidate, *domain.Clarification) {
	return []domain.CommandCandidate{candidate}, nil
}

func stashFirst(reason string) domain.CommandCandidate {
	return command("stash", "Stash your uncommitted changes",
		fmt.Sprintf("Saves your changes %s; bring them back with 'git stash pop'.", reason),
		"push", "-m", "WIP: "+reason)
}

func expandUnknown(domain.Intent, domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	return one(command("help", "List common git guides",
		"I couldn't map the request to a git operation; try rephrasing, e.g. 'undo my last commit' or 'create a branch called feature/x'.",
		"-g"))
}

func expandStatus(domain.Intent, domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	return one(command("status", "Show the working tree status",
		"Lists staged, unstaged and untracked files on the current branch."))
}

func expandLog(domain.Intent, domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	return one(command("log", "Show recent commit history",
		"Shows the last ten commits in one line each; use a hash from the list to reset or revert to it.", "--oneline", "-10"))
}

func expandDiff(_ domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	candidates := []domain.CommandCandidate{
		command("diff", "Show unstaged changes", "Compares the working tree with the index."),
	}
	if state.HasStaged() {
		candidates = append(candidates, command("diff", "Show staged changes",
			"Compares the index with the last commit.", "--staged"))
	}
	return candidates, nil
}

func expandCommit(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	if !state.HasStaged() && state.IsClean() {
		return one(guidance("Nothing to commit",
			"The working tree is clean; make some changes before committing."))
	}

	var candidates []domain.CommandCandidate
	if !state.HasStaged() {
		candidates = append(candidates, command("add", "Stage all changes",
			"Nothing is staged yet, so every change is added first.", "-A"))
	}
	message := intent.Param(domain.ParamMessage)
	if message == "" {
		message = MessagePlaceholder
	}
	candidates = append(candidates, command("commit", "Commit staged changes",
		"Records the staged changes as a new commit; replace the placeholder with a descriptive message.",
		"-m", message))
	return candidates, nil
}

func expandStage(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	if target := intent.Param(domain.ParamTarget); target != "" {
		return one(command("add", fmt.Sprintf("Stage %s", target),
			"Adds the file to the index for the next commit.", "--", target))
	}
	if len(state.UnstagedFiles) == 0 && len(state.UntrackedFiles) == 0 {
		return one(guidance("Nothing to stage", "There are no unstaged or untracked changes."))
	}
	return one(command("add", "Stage all changes",
		"Adds every modified, deleted and untracked file to the index.", "-A"))
}

func expandUnstage(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	if !state.HasStaged() {
		return one(guidance("Nothing is staged", "The index already matches the last commit."))
	}
	target := intent.Param(domain.ParamTarget)
	if target == "" {
		target = "."
	}
	return one(command("restore", "Unstage changes",
		"Moves changes out of the index; the files themselves are left untouched.", "--staged", target))
}

func noCommits(what string) ([]domain.CommandCandidate, *domain.Clarification) {
	return one(guidance("Nothing to "+what,
		"This branch has no commits yet, so there is no previous commit to "+what+"."))
}

func expandUndoKeep(_ domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	if !state.HasCommits() {
		return noCommits("undo")
	}
	return one(command("reset", "Undo the last commit and keep its changes",
		"Moves the branch back one commit; the changes stay staged.", "--soft", "HEAD~1"))
}

func expandUndoDiscard(_ domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	if !state.HasCommits() {
		return noCommits("undo")
	}
	return one(command("reset", "Undo the last commit and discard its changes",
		"Moves the branch back one commit and resets the working tree; the changes are lost.", "--hard", "HEAD~1"))
}

func expandRevert(_ domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	if !state.HasCommits() {
		return noCommits("revert")
	}
	return one(command("revert", "Revert the last commit",
		"Creates a new commit that undoes the last one; history is preserved, which is safe for pushed commits.",
		"--no-edit", "HEAD"))
}

func expandCreateBranch(intent domain.Intent, _ domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	branch := intent.Param(domain.ParamBranch)
	if branch == "" {
		return clarify(intent, domain.ParamBranch, "What should the new branch be called?")
	}
	return one(command("switch", fmt.Sprintf("Create and switch to branch '%s'", branch),
		"Creates the branch from the current commit; uncommitted changes come along.", "-c", branch))
}

func expandSwitchBranch(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	branch := intent.Param(domain.ParamBranch)
	if branch == "" {
		return clarify(intent, domain.ParamBranch, "Which branch do you want to switch to?")
	}
	if branch == state.CurrentBranch {
		return one(guidance(fmt.Sprintf("Already on '%s'", branch), "You are already on that branch."))
	}
	var candidates []domain.CommandCandidate
	if state.HasTrackedChanges() {
		candidates = append(candidates, stashFirst(fmt.Sprintf("before switching to %s", branch)))
	}
	candidates = append(candidates, command("switch", fmt.Sprintf("Switch to branch '%s'", branch),
		"Checks out the branch and updates the working tree.", branch))
	return candidates, nil
}

func expandDeleteBranch(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	branch := intent.Param(domain.ParamBranch)
	if branch == "" {
		return clarify(intent, domain.ParamBranch, "Which branch do you want to delete?")
	}
	if branch == state.CurrentBranch {
		return one(guidance(fmt.Sprintf("Cannot delete the current branch '%s'", branch),
			"Switch to another branch first, then delete this one."))
	}
	if intent.Param(domain.ParamForce) == "true" {
		return one(command("branch", fmt.Sprintf("Force delete branch '%s'", branch),
			"Deletes the branch even if it has commits that are not merged anywhere.", "-D", branch))
	}
	return one(command("branch", fmt.Sprintf("Delete branch '%s'", branch),
		"Deletes the branch only if it is fully merged.", "-d", branch))
}

func expandListBranches(domain.Intent, domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	return one(command("branch", "List local and remote branches",
		"The current branch is marked with an asterisk.", "-a"))
}

func expandMerge(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	target := intent.Param(domain.ParamTarget)
	if target == "" {
		return clarify(intent, domain.ParamTarget, fmt.Sprintf("Which branch should be merged into '%s'?", state.CurrentBranch))
	}
	if target == state.CurrentBranch {
		return one(guidance("Cannot merge a branch into itself",
			fmt.Sprintf("You are on '%s'; switch to the branch that should receive the merge.", target)))
	}
	var candidates []domain.CommandCandidate
	if !state.IsClean() {
		candidates = append(candidates, command("status", "Review uncommitted changes first",
			"Merging with a dirty working tree can fail or mix unrelated changes into the merge."))
	}
	candidates = append(candidates, command("merge", fmt.Sprintf("Merge '%s' into '%s'", target, state.CurrentBranch),
		"Brings the target branch's commits into the current branch.", target))
	return candidates, nil
}

func expandRebase(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	target := intent.Param(domain.ParamTarget)
	if target == "" {
		return clarify(intent, domain.ParamTarget, "Which branch should the current branch be rebased onto?")
	}
	if target == state.CurrentBranch {
		return one(guidance("Cannot rebase a branch onto itself", "Pick a different base branch."))
	}
	var candidates []domain.CommandCandidate
	if state.HasTrackedChanges() {
		candidates = append(candidates, stashFirst(fmt.Sprintf("before rebasing onto %s", target)))
	}
	candidates = append(candidates, command("rebase", fmt.Sprintf("Rebase '%s' onto '%s'", state.CurrentBranch, target),
		"Replays your commits on top of the target; commit hashes change.", target))
	return candidates, nil
}

func expandStash(_ domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	if state.IsClean() {
		return one(command("stash", "List existing stashes",
			"There are no changes to stash right now.", "list"))
	}
	args := []string{"push"}
	if len(state.UntrackedFiles) > 0 {
		args = append(args, "--include-untracked")
	}
	args = append(args, "-m", "Work in progress")
	return one(command("stash", "Stash your uncommitted changes",
		"Saves your changes and cleans the working tree; restore them later with 'git stash pop'.", args...))
}

func expandStashPop(domain.Intent, domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	return one(command("stash", "Restore the most recent stash",
		"Applies the latest stash and removes it from the stash list.", "pop"))
}

func pushTarget(intent domain.Intent, state domain.RepositoryState) string {
	if remote := intent.Param(domain.ParamRemote); remote != "" {
		return remote
	}
	return state.PrimaryRemote()
}

func expandPush(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	remote := pushTarget(intent, state)
	switch {
	case remote == "":
		return one(guidance("No remote configured",
			"Add one with 'git remote add origin <url>' before pushing."))
	case state.Detached:
		return one(guidance("HEAD is detached",
			"Create a branch for these commits before pushing them."))
	case !state.HasUpstream():
		return one(command("push", fmt.Sprintf("Publish '%s' to %s", state.CurrentBranch, remote),
			"The branch has no upstream yet; -u sets it so later pushes need no arguments.",
			"-u", remote, state.CurrentBranch))
	}
	explanation := "Uploads your local commits to the upstream branch."
	if state.Tracking.Behind > 0 {
		explanation = fmt.Sprintf("The upstream has %d commit(s) you do not have; pull first or the push will be rejected.", state.Tracking.Behind)
	}
	if intent.HasParam(domain.ParamRemote) {
		return one(command("push", fmt.Sprintf("Push '%s' to %s", state.CurrentBranch, remote), explanation, remote, state.CurrentBranch))
	}
	return one(command("push", "Push your commits", explanation))
}

func expandForcePush(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	remote := pushTarget(intent, state)
	if remote == "" {
		return one(guidance("No remote configured", "There is nothing to force push to."))
	}
	if state.Detached {
		return one(guidance("HEAD is detached", "Create a branch before pushing."))
	}
	return one(command("push", fmt.Sprintf("Force push '%s' to %s", state.CurrentBranch, remote),
		"Overwrites the remote branch, but refuses if someone else pushed in the meantime.",
		"--force-with-lease", remote, state.CurrentBranch))
}

func expandPull(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	remote := pushTarget(intent, state)
	if remote == "" {
		return one(guidance("No remote configured", "There is nowhere to pull from."))
	}
	var candidates []domain.CommandCandidate
	if state.HasTrackedChanges() {
		candidates = append(candidates, stashFirst("before pulling"))
	}
	if state.HasUpstream() && !intent.HasParam(domain.ParamRemote) {
		candidates = append(candidates, command("pull", "Pull the latest changes",
			"Fetches and merges the upstream branch."))
	} else {
		candidates = append(candidates, command("pull", fmt.Sprintf("Pull '%s' from %s", state.CurrentBranch, remote),
			"Fetches and merges the matching remote branch.", remote, state.CurrentBranch))
	}
	return candidates, nil
}

func expandResolveConflict(_ domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	if !state.HasConflicts() {
		return one(guidance("No merge conflicts", "There are no unresolved conflicts in the working tree."))
	}
	args := append([]string{"--"}, state.ConflictedFiles...)
	return []domain.CommandCandidate{
		command("diff", "List conflicted files",
			"Shows which files still contain conflict markers.", "--name-only", "--diff-filter=U"),
		command("add", "Mark the conflicts as resolved",
			"Run this after editing each file and removing the conflict markers.", args...),
	}, nil
}

func expandDiscardChanges(intent domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	if len(state.UnstagedFiles) == 0 {
		return one(guidance("Nothing to discard", "There are no unstaged changes to tracked files."))
	}
	target := intent.Param(domain.ParamTarget)
	if target == "" {
		target = "."
	}
	return one(command("restore", "Discard unstaged changes",
		"Resets tracked files to their staged version; the edits are lost.", target))
}

func expandCleanUntracked(_ domain.Intent, state domain.RepositoryState) ([]domain.CommandCandidate, *domain.Clarification) {
	if len(state.UntrackedFiles) == 0 {
		return one(guidance("No untracked files", "The working tree has no untracked files."))
	}
	return one(command("clean", "Remove untracked files and directories",
		"Deletes every untracked file; they cannot be recovered.", "-fd"))
}

var _ ports.CommandGenerator = (*Generator)(nil)
