package safety

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/gitflow-ai/internal/pkg/filesystem"
)

// RulesFile is the YAML schema of the override file.
type RulesFile struct {
	Rules []RiskRule `yaml:"rules"`
}

// loadOverrides reads the override file. A missing file means no overrides.
func loadOverrides(path string) ([]compiledRule, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	path = expandPath(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read risk rules %s: %w", path, err)
	}

	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse risk rules %s: %w", path, err)
	}

	rules := make([]compiledRule, 0, len(file.Rules))
	for _, rule := range file.Rules {
		if strings.TrimSpace(rule.Verb) == "" {
			return nil, fmt.Errorf("risk rules %s: rule without verb", path)
		}
		compiled, err := compile(rule, nil)
		if err != nil {
			return nil, fmt.Errorf("risk rules %s: %w", path, err)
		}
		rules = append(rules, compiled)
	}
	return rules, nil
}

// expandPath resolves ~/ and paths relative to ~/.gitflow.
func expandPath(path string) string {
	if expanded, ok := filesystem.ExpandHome(path); ok {
		return expanded
	}
	return filesystem.AppDir(path)
}
