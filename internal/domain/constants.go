package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultGitTimeout bounds each inspection command
	DefaultGitTimeout = 5 * time.Second
	// DefaultFallbackTimeout bounds one generative fallback call
	DefaultFallbackTimeout = 20 * time.Second
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
	// DefaultCacheTTL is how long persisted responses stay valid
	DefaultCacheTTL = 24 * time.Hour
)

// Limit constants
const (
	// DefaultMaxRecentCommits bounds RepositoryState.RecentCommits
	DefaultMaxRecentCommits = 10
	// DefaultMaxCacheEntries is the maximum number of cache entries
	DefaultMaxCacheEntries = 256
	// DefaultConfidenceThreshold is the score below which the fallback is consulted
	DefaultConfidenceThreshold = 0.5
	// DefaultFuzzyMinTokenLength is the shortest token eligible for typo matching
	DefaultFuzzyMinTokenLength = 4
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 256
)

// Server constants
const (
	// DefaultServerAddr is the listen address of `gitflow serve`
	DefaultServerAddr = "127.0.0.1:8080"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
