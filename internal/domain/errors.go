package domain

import (
	cerr "github.com/cockroachdb/errors"
)

var (
	// ErrRepositoryUnavailable means the path is missing or not a Git working tree.
	ErrRepositoryUnavailable = cerr.New("repository unavailable")
	// ErrAccessDenied means the repository exists but cannot be read.
	ErrAccessDenied = cerr.New("repository access denied")
	// ErrClarificationNeeded signals a missing required parameter. It is
	// reported inside the response and never escapes the pipeline.
	ErrClarificationNeeded = cerr.New("clarification needed")
	// ErrRecognitionFallbackUnavailable wraps any failure of the generative
	// fallback. It is logged and swallowed.
	ErrRecognitionFallbackUnavailable = cerr.New("recognition fallback unavailable")
)

// RepositoryUnavailable builds an error matching ErrRepositoryUnavailable.
func RepositoryUnavailable(cause error, path, hint string) error {
	err := markCause(cause, ErrRepositoryUnavailable, "repository %s", path)
	if hint != "" {
		err = cerr.WithHint(err, hint)
	}
	return err
}

// AccessDenied builds an error matching ErrAccessDenied.
func AccessDenied(cause error, path string) error {
	err := markCause(cause, ErrAccessDenied, "read repository %s", path)
	return cerr.WithHint(err, "check the file permissions of the repository and its .git directory")
}

// FallbackUnavailable builds an error matching ErrRecognitionFallbackUnavailable.
func FallbackUnavailable(cause error) error {
	if cause == nil {
		return ErrRecognitionFallbackUnavailable
	}
	return cerr.Mark(cerr.Wrap(cause, "recognition fallback"), ErrRecognitionFallbackUnavailable)
}

// ClarificationNeeded builds an error matching ErrClarificationNeeded that
// carries the question as a hint.
func ClarificationNeeded(c Clarification) error {
	err := cerr.Wrapf(ErrClarificationNeeded, "%s: missing %s", c.Intent, c.Parameter)
	if c.Question != "" {
		err = cerr.WithHint(err, c.Question)
	}
	return err
}

// IsFatal reports errors that abort the pipeline.
func IsFatal(err error) bool {
	return IsRepositoryUnavailable(err) || IsAccessDenied(err)
}

// IsRepositoryUnavailable reports whether err is marked ErrRepositoryUnavailable.
func IsRepositoryUnavailable(err error) bool {
	return cerr.Is(err, ErrRepositoryUnavailable)
}

// IsAccessDenied reports whether err is marked ErrAccessDenied.
func IsAccessDenied(err error) bool {
	return cerr.Is(err, ErrAccessDenied)
}

// IsFallbackUnavailable reports whether err is marked ErrRecognitionFallbackUnavailable.
func IsFallbackUnavailable(err error) bool {
	return cerr.Is(err, ErrRecognitionFallbackUnavailable)
}

// Hints returns the user-facing hints attached anywhere in the chain.
func Hints(err error) []string {
	return cerr.GetAllHints(err)
}

func markCause(cause, sentinel error, format string, args ...interface{}) error {
	if cause == nil {
		return cerr.Wrapf(sentinel, format, args...)
	}
	return cerr.Mark(cerr.Wrapf(cause, format, args...), sentinel)
}
