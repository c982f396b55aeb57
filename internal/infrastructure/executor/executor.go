// Package executor runs suggested git commands on behalf of the user.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

var (
	// ErrGuidance is returned for candidates that explain instead of act.
	ErrGuidance = errors.New("guidance entries cannot be executed")
	// ErrPlaceholder is returned while a candidate still contains a <placeholder>.
	ErrPlaceholder = errors.New("command contains an unfilled placeholder")
)

// GitExecutor runs candidates as `git -C <repo> <verb> <args>` without a shell.
type GitExecutor struct {
	gitBinary string
}

// NewGitExecutor builds an executor; gitBinary defaults to "git".
func NewGitExecutor(gitBinary string) *GitExecutor {
	if gitBinary == "" {
		gitBinary = "git"
	}
	return &GitExecutor{gitBinary: gitBinary}
}

// Execute implements ports.CommandExecutor.
func (e *GitExecutor) Execute(ctx context.Context, repositoryPath string, candidate domain.CommandCandidate) (domain.ExecutionResult, error) {
	argv := candidate.Argv()
	if argv == nil {
		return domain.ExecutionResult{Err: ErrGuidance}, ErrGuidance
	}
	for _, arg := range argv {
		if strings.HasPrefix(arg, "<") && strings.HasSuffix(arg, ">") {
			err := fmt.Errorf("%w: %s", ErrPlaceholder, arg)
			return domain.ExecutionResult{Err: err}, err
		}
	}
	if repositoryPath == "" {
		repositoryPath = "."
	}

	c := exec.CommandContext(ctx, e.gitBinary, append([]string{"-C", repositoryPath}, argv...)...)
	c.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	duration := time.Since(start).Milliseconds()

	result := domain.ExecutionResult{
		Ran:        err == nil,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: duration,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		result.Err = err
		return result, err
	}
	if err != nil {
		result.Err = err
		return result, err
	}
	return result, nil
}

var _ ports.CommandExecutor = (*GitExecutor)(nil)
