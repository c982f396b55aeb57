package domain

// Config mirrors ~/.gitflow/config.yaml.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version" mapstructure:"config_format_version"`
	Preferences         Preferences        `yaml:"preferences" mapstructure:"preferences"`
	State               StateSettings      `yaml:"state" mapstructure:"state"`
	Recognizer          RecognizerSettings `yaml:"recognizer" mapstructure:"recognizer"`
	Fallback            FallbackSettings   `yaml:"fallback" mapstructure:"fallback"`
	Safety              SafetySettings     `yaml:"safety" mapstructure:"safety"`
	Cache               CacheSettings      `yaml:"cache" mapstructure:"cache"`
	Server              ServerSettings     `yaml:"server" mapstructure:"server"`
}

// Preferences captures user level toggles.
type Preferences struct {
	Output string `yaml:"output" mapstructure:"output"`
	Color  string `yaml:"color" mapstructure:"color"`
}

// StateSettings configures repository inspection.
type StateSettings struct {
	MaxRecentCommits int    `yaml:"max_recent_commits" mapstructure:"max_recent_commits"`
	GitTimeout       string `yaml:"git_timeout" mapstructure:"git_timeout"`
}

// RecognizerSettings tunes intent recognition.
type RecognizerSettings struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	FuzzyMinTokenLength int     `yaml:"fuzzy_min_token_length" mapstructure:"fuzzy_min_token_length"`
}

// FallbackSettings configures the optional generative recognizer.
type FallbackSettings struct {
	Enabled      bool              `yaml:"enabled" mapstructure:"enabled"`
	DefaultModel string            `yaml:"default_model" mapstructure:"default_model"`
	Timeout      string            `yaml:"timeout" mapstructure:"timeout"`
	Models       []ModelDefinition `yaml:"models" mapstructure:"models"`
}

// SafetySettings controls risk classification.
type SafetySettings struct {
	ProtectedBranches []string `yaml:"protected_branches" mapstructure:"protected_branches"`
	RulesFile         string   `yaml:"rules_file" mapstructure:"rules_file"`
}

// CacheSettings controls the response cache.
type CacheSettings struct {
	MaxEntries int    `yaml:"max_entries" mapstructure:"max_entries"`
	TTL        string `yaml:"ttl" mapstructure:"ttl"`
	Persistent bool   `yaml:"persistent" mapstructure:"persistent"`
	Path       string `yaml:"path" mapstructure:"path"`
}

// ServerSettings configures `gitflow serve`.
type ServerSettings struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}
