package domain

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"strings"
)

// EmptyHash is the SHA-256 of the empty string.
const EmptyHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// Fingerprint condenses the parts of a state that influence a response.
//
// Two states with the same branch, the same path sets (ignoring order) and the
// same recent commit hashes share a fingerprint. Remotes, authors, messages,
// timestamps and ahead/behind counts are excluded.
func (s RepositoryState) Fingerprint() string {
	composite := strings.Join([]string{
		"branch:" + s.CurrentBranch,
		"staged:" + hashString(changeList(s.StagedFiles)),
		"unstaged:" + hashString(changeList(s.UnstagedFiles)),
		"untracked:" + hashString(sortedList(s.UntrackedFiles)),
		"conflicted:" + hashString(sortedList(s.ConflictedFiles)),
		"commits:" + hashString(commitList(s.RecentCommits)),
	}, "\n")
	return hashString(composite)
}

// CacheKey derives the response cache key from an utterance and a fingerprint.
func CacheKey(utterance, fingerprint string) string {
	return hashString(NormalizeUtterance(utterance) + "\x00" + fingerprint)
}

// NormalizeUtterance trims and collapses whitespace. Case is kept because
// branch names, refs and commit messages are case-sensitive.
func NormalizeUtterance(utterance string) string {
	return strings.Join(strings.Fields(utterance), " ")
}

func changeList(changes []FileChange) string {
	lines := make([]string, 0, len(changes))
	for _, change := range changes {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", change.Kind, change.Path, change.OrigPath))
	}
	slices.Sort(lines)
	return strings.Join(lines, "\x00")
}

func sortedList(paths []string) string {
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	return strings.Join(sorted, "\x00")
}

func commitList(commits []Commit) string {
	hashes := make([]string, 0, len(commits))
	for _, commit := range commits {
		hashes = append(hashes, commit.Hash)
	}
	return strings.Join(hashes, "\x00")
}

func hashString(s string) string {
	if s == "" {
		return EmptyHash
	}
	h := sha256.New()
	h.Write([]byte(s))
	return fmt.Sprintf("%x", h.Sum(nil))
}
