package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	appconfig "github.com/doeshing/gitflow-ai/internal/application/config"
	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/infrastructure/config"
)

// demoQueries are run by `gitflow demo`.
var demoQueries = []string{
	"How do I check the status of my repository?",
	"I want to commit my changes",
	"How do I create a new branch?",
	"I made a mistake in my last commit, how do I fix it?",
	"How do I merge my feature branch safely?",
}

func newStatusCommand(s *session) *cobra.Command {
	var (
		repo       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show repository status with insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			state, err := container.StateReader.Read(cmd.Context(), repo)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"state":       state,
					"clean":       state.IsClean(),
					"fingerprint": state.Fingerprint(),
					"insights":    state.Insights(),
				})
			}
			NewRenderer(cmd.OutOrStdout(), container.Config.Preferences.Color).Status(state)
			return nil
		},
	}
	cmd.Flags().StringVarP(&repo, "repo", "r", ".", "Repository path")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print status as JSON")
	return cmd
}

func newDemoCommand(s *session) *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run sample requests against the current repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderer := NewRenderer(out, container.Config.Preferences.Color)
			for i, query := range demoQueries {
				fmt.Fprintf(out, "Demo %d/%d: %s\n", i+1, len(demoQueries), query)
				result, err := container.Assistant.Assist(cmd.Context(), domain.AssistRequest{
					Utterance:      query,
					RepositoryPath: repo,
				})
				if err != nil {
					return err
				}
				renderer.Response(result)
				fmt.Fprintln(out, strings.Repeat("-", 40))
			}
			fmt.Fprintln(out, "Demo completed. Try 'gitflow ask --interactive' for more.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&repo, "repo", "r", ".", "Repository path")
	return cmd
}

func newDoctorCommand(s *session) *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, git and model setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			if container.DoctorService == nil {
				return fmt.Errorf("doctor service unavailable")
			}
			report, err := container.DoctorService.Run(cmd.Context(), repo)
			NewRenderer(cmd.OutOrStdout(), container.Config.Preferences.Color).Health(report)
			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			if !report.Healthy() {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&repo, "repo", "r", ".", "Repository to check")
	return cmd
}

func newCacheCommand(s *session) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the response cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache settings and entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			if container.Cache == nil {
				return fmt.Errorf("response cache unavailable")
			}
			stats := container.Cache.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Memory entries: %d (max %d)\n", stats.Entries, container.Config.GetCacheMaxEntries())
			fmt.Fprintf(out, "TTL: %s\n", container.Config.GetCacheTTL())
			if stats.Persistent {
				fmt.Fprintf(out, "Persistent entries: %d\n", stats.PersistentEntries)
				fmt.Fprintf(out, "Database: %s\n", stats.Path)
			} else {
				fmt.Fprintln(out, "Persistent tier: disabled")
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			if container.Cache == nil {
				return fmt.Errorf("response cache unavailable")
			}
			if err := container.Cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}

	cacheCmd.AddCommand(statsCmd, clearCmd)
	return cacheCmd
}

func newConfigCommand(s *session) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect gitflow configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			return runConfigShow(cmd.OutOrStdout(), container.Config)
		},
	}

	var key string
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Print one configuration value (e.g. cache.ttl)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return fmt.Errorf("--key is required")
			}
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			return runConfigGet(cmd.OutOrStdout(), container.Config, key)
		},
	}
	getCmd.Flags().StringVar(&key, "key", "", "Dot separated key")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), configLoaderFor(s).Path())
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(cmd.Context(), cmd.OutOrStdout(), configLoaderFor(s))
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the configuration file to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := configLoaderFor(s)
			if err := loader.Reset(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration reset at %s\n", loader.Path())
			return nil
		},
	}

	configCmd.AddCommand(showCmd, getCmd, pathCmd, validateCmd, resetCmd)
	return configCmd
}

// configLoaderFor does not build the container, so path, validate and reset
// keep working when the file is invalid.
func configLoaderFor(s *session) *config.FileLoader {
	if s.container != nil && s.container.ConfigLoader != nil {
		return s.container.ConfigLoader
	}
	return config.NewFileLoader(s.opts.ConfigPath)
}

type configSource interface {
	Load(context.Context) (domain.Config, error)
	Path() string
}

func runConfigValidate(ctx context.Context, out io.Writer, loader configSource) error {
	cfg, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	if err := appconfig.Validate(cfg); err != nil {
		return fmt.Errorf("%s: %w", loader.Path(), err)
	}
	fmt.Fprintf(out, "Configuration valid: %s\n", loader.Path())
	return nil
}

func runConfigShow(out io.Writer, cfg domain.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigGet(out io.Writer, cfg domain.Config, key string) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var generic map[string]interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return err
	}
	value, ok := traverseKey(generic, strings.Split(key, "."))
	if !ok {
		return fmt.Errorf("key %s not found", key)
	}
	switch v := value.(type) {
	case map[string]interface{}, []interface{}:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(data))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, strings.Trim(string(data), `"`))
	}
	return nil
}

func traverseKey(data interface{}, path []string) (interface{}, bool) {
	if len(path) == 0 {
		return data, true
	}
	switch node := data.(type) {
	case map[string]interface{}:
		next, ok := node[path[0]]
		if !ok {
			return nil, false
		}
		return traverseKey(next, path[1:])
	default:
		return nil, false
	}
}
