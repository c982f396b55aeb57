package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TempGitRepo is a throwaway repository for integration tests.
type TempGitRepo struct {
	Path string
	T    *testing.T
}

// RequireGit skips the test when no git binary is available.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// NewEmptyGitRepo initialises a repository on branch main without commits.
func NewEmptyGitRepo(t *testing.T) *TempGitRepo {
	t.Helper()
	RequireGit(t)

	repo := &TempGitRepo{Path: t.TempDir(), T: t}
	repo.Git("init", "-q")
	repo.Git("symbolic-ref", "HEAD", "refs/heads/main")
	repo.Git("config", "user.name", "Test User")
	repo.Git("config", "user.email", "test@example.com")
	repo.Git("config", "commit.gpgsign", "false")
	return repo
}

// NewTempGitRepo initialises a repository with one commit containing README.md.
func NewTempGitRepo(t *testing.T) *TempGitRepo {
	t.Helper()
	repo := NewEmptyGitRepo(t)
	repo.WriteFile("README.md", "# Test Repository\n")
	repo.Git("add", ".")
	repo.Git("commit", "-q", "-m", "Initial commit")
	return repo
}

// Git runs a git command inside the repository and returns trimmed stdout.
func (r *TempGitRepo) Git(args ...string) string {
	r.T.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Path
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.T.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// WriteFile writes content relative to the repository root, creating parents.
func (r *TempGitRepo) WriteFile(name, content string) {
	r.T.Helper()
	path := filepath.Join(r.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.T.Fatalf("mkdir %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		r.T.Fatalf("write %s: %v", name, err)
	}
}

// Commit stages everything and commits it.
func (r *TempGitRepo) Commit(message string) {
	r.T.Helper()
	r.Git("add", "-A")
	r.Git("commit", "-q", "-m", message)
}
