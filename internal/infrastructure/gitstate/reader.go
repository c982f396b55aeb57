// Package gitstate reads repository snapshots by shelling out to git.
//
// Only inspection commands are run and optional index locks are disabled, so
// reading a repository never changes it.
package gitstate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// maxInflight bounds concurrent git processes per Read.
const maxInflight = 4

// Reader implements ports.StateReader.
type Reader struct {
	gitBinary  string
	timeout    time.Duration
	maxCommits int
	logger     ports.Logger
}

// NewReader builds a reader from the state section of the config.
func NewReader(cfg domain.Config, logger ports.Logger) *Reader {
	return &Reader{
		gitBinary:  "git",
		timeout:    cfg.GetGitTimeout(),
		maxCommits: cfg.GetMaxRecentCommits(),
		logger:     logger,
	}
}

// Read implements ports.StateReader.
func (r *Reader) Read(ctx context.Context, repositoryPath string) (domain.RepositoryState, error) {
	path, err := resolvePath(repositoryPath)
	if err != nil {
		return domain.RepositoryState{}, domain.RepositoryUnavailable(err, repositoryPath, "")
	}
	if err := checkDirectory(path); err != nil {
		return domain.RepositoryState{}, err
	}

	inside, err := r.output(ctx, path, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return domain.RepositoryState{}, classify(err, path)
	}
	if strings.TrimSpace(inside) != "true" {
		return domain.RepositoryState{}, domain.RepositoryUnavailable(nil, path, "the path is inside a .git directory or a bare repository")
	}

	var (
		report  statusReport
		remotes []domain.Remote
		commits []domain.Commit
		logErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInflight)

	g.Go(func() error {
		raw, err := r.output(gctx, path, "status", "--porcelain=v2", "--branch", "-z", "--untracked-files=all")
		if err != nil {
			return err
		}
		report, err = parseStatus(raw)
		return err
	})
	g.Go(func() error {
		raw, err := r.output(gctx, path, "remote", "-v")
		if err != nil {
			return err
		}
		remotes = parseRemotes(raw)
		return nil
	})
	g.Go(func() error {
		// An unborn branch makes git log fail; that is judged after Wait
		// once the status header says whether HEAD has a commit.
		commits, logErr = r.recentCommits(gctx, path)
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.RepositoryState{}, classify(err, path)
	}
	if logErr != nil {
		if !report.initial {
			return domain.RepositoryState{}, classify(logErr, path)
		}
		commits = nil
	}

	state := domain.RepositoryState{
		Path:            path,
		CurrentBranch:   report.branchName(),
		Detached:        report.detached,
		StagedFiles:     report.staged,
		UnstagedFiles:   report.unstaged,
		UntrackedFiles:  report.untracked,
		ConflictedFiles: report.conflicted,
		Remotes:         remotes,
		RecentCommits:   commits,
		Tracking:        report.tracking(),
	}

	if r.logger != nil {
		r.logger.Debug("repository state read", map[string]interface{}{
			"path":   path,
			"digest": state.Digest(),
		})
	}
	return state, nil
}

func (r *Reader) recentCommits(ctx context.Context, path string) ([]domain.Commit, error) {
	raw, err := r.output(ctx, path, "log", "-n", strconv.Itoa(r.maxCommits), "--format=%H%x1f%an%x1f%at%x1f%s%x1e")
	if err != nil {
		return nil, err
	}
	return parseCommits(raw), nil
}

func parseCommits(raw string) []domain.Commit {
	var commits []domain.Commit
	for _, record := range strings.Split(raw, "\x1e") {
		record = strings.Trim(record, "\r\n")
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, "\x1f", 4)
		if len(fields) != 4 {
			continue
		}
		commit := domain.Commit{Hash: fields[0], Author: fields[1], Message: fields[3]}
		if unix, err := strconv.ParseInt(fields[2], 10, 64); err == nil {
			commit.Timestamp = time.Unix(unix, 0).UTC()
		}
		commits = append(commits, commit)
	}
	return commits
}

// gitError carries stderr so failures can be classified.
type gitError struct {
	args   []string
	stderr string
	err    error
}

func (e *gitError) Error() string {
	msg := strings.TrimSpace(e.stderr)
	if msg == "" {
		msg = e.err.Error()
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.args, " "), msg)
}

func (e *gitError) Unwrap() error {
	return e.err
}

func (r *Reader) output(ctx context.Context, dir string, args ...string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, r.gitBinary, gitArgs(dir, args)...)
	cmd.Env = append(os.Environ(), "GIT_OPTIONAL_LOCKS=0", "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if r.logger != nil {
		r.logger.Debug("git", map[string]interface{}{
			"args":        strings.Join(args, " "),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
	if err != nil {
		if cctx.Err() != nil {
			err = fmt.Errorf("%w: %w", cctx.Err(), err)
		}
		return "", &gitError{args: args, stderr: stderr.String(), err: err}
	}
	return stdout.String(), nil
}

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = "."
	}
	return filepath.Abs(path)
}

func checkDirectory(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return domain.RepositoryUnavailable(err, path, "check the repository path")
	case errors.Is(err, fs.ErrPermission):
		return domain.AccessDenied(err, path)
	case err != nil:
		return domain.RepositoryUnavailable(err, path, "")
	case !info.IsDir():
		return domain.RepositoryUnavailable(nil, path, "the repository path must be a directory")
	}
	return nil
}

func classify(err error, path string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return domain.RepositoryUnavailable(err, path, "install git and make sure it is on PATH")
	}
	var gerr *gitError
	if errors.As(err, &gerr) {
		stderr := strings.ToLower(gerr.stderr)
		switch {
		case strings.Contains(stderr, "not a git repository"):
			return domain.RepositoryUnavailable(err, path, "run the command inside a working tree or pass --repo")
		case strings.Contains(stderr, "permission denied"), strings.Contains(stderr, "dubious ownership"):
			return domain.AccessDenied(err, path)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.RepositoryUnavailable(err, path, "git did not answer in time; raise state.git_timeout")
	}
	return domain.RepositoryUnavailable(err, path, "")
}

var _ ports.StateReader = (*Reader)(nil)
