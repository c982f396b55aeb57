package domain

import "fmt"

// Insight is an observation about a repository with an optional question the
// user could ask next.
type Insight struct {
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Insights summarises what deserves attention in s, most urgent first.
func (s RepositoryState) Insights() []Insight {
	var out []Insight
	if s.HasConflicts() {
		out = append(out, Insight{
			Message:    fmt.Sprintf("%d file(s) have merge conflicts", len(s.ConflictedFiles)),
			Suggestion: "how do I resolve the merge conflicts?",
		})
	}
	if s.Detached {
		out = append(out, Insight{
			Message:    "HEAD is detached; new commits will not belong to any branch",
			Suggestion: "create a new branch called <name>",
		})
	}
	if s.HasStaged() {
		out = append(out, Insight{
			Message:    "You have staged changes ready to commit",
			Suggestion: "how do I commit my changes?",
		})
	}
	if len(s.UnstagedFiles) > 0 {
		out = append(out, Insight{
			Message:    "You have unstaged changes",
			Suggestion: "how do I stage my files?",
		})
	}
	if len(s.UntrackedFiles) > 0 {
		out = append(out, Insight{Message: fmt.Sprintf("%d untracked file(s)", len(s.UntrackedFiles))})
	}
	if s.HasUpstream() {
		if s.Tracking.Behind > 0 {
			out = append(out, Insight{
				Message:    fmt.Sprintf("Your branch is %d commit(s) behind %s", s.Tracking.Behind, s.Tracking.Upstream),
				Suggestion: "pull the latest changes",
			})
		}
		if s.Tracking.Ahead > 0 {
			out = append(out, Insight{
				Message:    fmt.Sprintf("Your branch is %d commit(s) ahead of %s", s.Tracking.Ahead, s.Tracking.Upstream),
				Suggestion: "push my changes",
			})
		}
	} else if s.HasCommits() && !s.Detached && len(s.Remotes) > 0 {
		out = append(out, Insight{
			Message:    fmt.Sprintf("Branch '%s' has no upstream", s.CurrentBranch),
			Suggestion: "push my changes",
		})
	}
	if len(out) == 0 {
		out = append(out, Insight{Message: "Repository is clean and up to date"})
	}
	return out
}
