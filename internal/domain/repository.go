package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DetachedHeadName is reported as the current branch when HEAD is detached.
const DetachedHeadName = "HEAD (detached)"

// DefaultRemoteName is assumed when a push target has to be guessed.
const DefaultRemoteName = "origin"

// ChangeKind classifies a single path change reported by git status.
type ChangeKind string

const (
	ChangeAdded       ChangeKind = "added"
	ChangeModified    ChangeKind = "modified"
	ChangeDeleted     ChangeKind = "deleted"
	ChangeRenamed     ChangeKind = "renamed"
	ChangeCopied      ChangeKind = "copied"
	ChangeTypeChanged ChangeKind = "type_changed"
)

// FileChange is a path in the index or the working tree together with how it changed.
type FileChange struct {
	Path     string     `json:"path"`
	Kind     ChangeKind `json:"kind"`
	OrigPath string     `json:"orig_path,omitempty"`
}

// Remote is a configured remote (fetch URL).
type Remote struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Commit is a summary of one entry in the recent history of HEAD.
type Commit struct {
	Hash      string    `json:"hash"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ShortHash returns the abbreviated commit hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) > 8 {
		return c.Hash[:8]
	}
	return c.Hash
}

// Tracking describes the relationship to the upstream branch.
type Tracking struct {
	Upstream string `json:"upstream"`
	Ahead    int    `json:"ahead"`
	Behind   int    `json:"behind"`
}

// RepositoryState is a read-only snapshot of a working tree at one instant.
//
// Conflicted paths appear only in ConflictedFiles and untracked paths only in
// UntrackedFiles. A path may appear in both StagedFiles and UnstagedFiles when
// it has changes in the index and further changes in the working tree.
type RepositoryState struct {
	Path            string       `json:"path"`
	CurrentBranch   string       `json:"current_branch"`
	Detached        bool         `json:"detached"`
	StagedFiles     []FileChange `json:"staged_files"`
	UnstagedFiles   []FileChange `json:"unstaged_files"`
	UntrackedFiles  []string     `json:"untracked_files"`
	ConflictedFiles []string     `json:"conflicted_files"`
	Remotes         []Remote     `json:"remotes"`
	RecentCommits   []Commit     `json:"recent_commits"`
	Tracking        *Tracking    `json:"tracking,omitempty"`
}

// IsClean reports whether nothing is staged, modified, untracked or conflicted.
func (s RepositoryState) IsClean() bool {
	return len(s.StagedFiles) == 0 &&
		len(s.UnstagedFiles) == 0 &&
		len(s.UntrackedFiles) == 0 &&
		len(s.ConflictedFiles) == 0
}

// HasTrackedChanges reports staged or unstaged modifications to tracked files.
func (s RepositoryState) HasTrackedChanges() bool {
	return len(s.StagedFiles) > 0 || len(s.UnstagedFiles) > 0
}

// HasStaged reports whether the index differs from HEAD.
func (s RepositoryState) HasStaged() bool {
	return len(s.StagedFiles) > 0
}

// HasConflicts reports unresolved merge conflicts.
func (s RepositoryState) HasConflicts() bool {
	return len(s.ConflictedFiles) > 0
}

// HasCommits reports whether HEAD points at any commit.
func (s RepositoryState) HasCommits() bool {
	return len(s.RecentCommits) > 0
}

// HasUpstream reports whether the current branch tracks a remote branch.
func (s RepositoryState) HasUpstream() bool {
	return s.Tracking != nil && s.Tracking.Upstream != ""
}

// HasRemote reports whether a remote with the given name is configured.
func (s RepositoryState) HasRemote(name string) bool {
	for _, remote := range s.Remotes {
		if remote.Name == name {
			return true
		}
	}
	return false
}

// PrimaryRemote returns origin when configured, else the first remote, else "".
func (s RepositoryState) PrimaryRemote() string {
	if s.HasRemote(DefaultRemoteName) {
		return DefaultRemoteName
	}
	if len(s.Remotes) > 0 {
		return s.Remotes[0].Name
	}
	return ""
}

// Clone returns a deep copy that shares no backing arrays with s.
func (s RepositoryState) Clone() RepositoryState {
	out := s
	out.StagedFiles = slices.Clone(s.StagedFiles)
	out.UnstagedFiles = slices.Clone(s.UnstagedFiles)
	out.UntrackedFiles = slices.Clone(s.UntrackedFiles)
	out.ConflictedFiles = slices.Clone(s.ConflictedFiles)
	out.Remotes = slices.Clone(s.Remotes)
	out.RecentCommits = slices.Clone(s.RecentCommits)
	if s.Tracking != nil {
		tracking := *s.Tracking
		out.Tracking = &tracking
	}
	return out
}

// Digest renders a compact one-line summary used in prompts and logs.
func (s RepositoryState) Digest() string {
	parts := []string{
		fmt.Sprintf("branch=%s", s.CurrentBranch),
		fmt.Sprintf("staged=%d", len(s.StagedFiles)),
		fmt.Sprintf("unstaged=%d", len(s.UnstagedFiles)),
		fmt.Sprintf("untracked=%d", len(s.UntrackedFiles)),
		fmt.Sprintf("conflicts=%d", len(s.ConflictedFiles)),
		fmt.Sprintf("commits=%d", len(s.RecentCommits)),
	}
	if s.HasUpstream() {
		parts = append(parts, fmt.Sprintf("upstream=%s ahead=%d behind=%d", s.Tracking.Upstream, s.Tracking.Ahead, s.Tracking.Behind))
	}
	if len(s.Remotes) > 0 {
		names := make([]string, 0, len(s.Remotes))
		for _, remote := range s.Remotes {
			names = append(names, remote.Name)
		}
		parts = append(parts, "remotes="+strings.Join(names, ","))
	}
	return strings.Join(parts, " ")
}
