package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/gitflow-ai/internal/app"
	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// session builds the container on first use so that persistent flags such
// as --config are parsed before anything is loaded.
type session struct {
	opts      Options
	build     func(context.Context, app.Options) (*app.Container, error)
	container *app.Container
}

func (s *session) load(ctx context.Context) (*app.Container, error) {
	if s.container != nil {
		return s.container, nil
	}
	container, err := s.build(ctx, app.Options{Verbose: s.opts.Verbose, ConfigPath: s.opts.ConfigPath})
	if err != nil {
		return nil, err
	}
	if container.Clipboard == nil {
		container.Clipboard = NewClipboard()
	}
	s.container = container
	return container, nil
}

func (s *session) close() error {
	return s.container.Close()
}

// Execute runs the CLI and releases the container afterwards.
func Execute(ctx context.Context, opts Options) error {
	s := &session{opts: opts, build: app.BuildContainer}
	defer s.close()
	return newRootCommand(s).ExecuteContext(ctx)
}

// NewRootCmd wires the cobra root command around an existing container.
func NewRootCmd(container *app.Container) *cobra.Command {
	return newRootCommand(&session{container: container})
}

func newRootCommand(s *session) *cobra.Command {
	askCmd := newAskCommand(s)

	root := &cobra.Command{
		Use:   "gitflow [query]",
		Short: "GitFlow AI - natural language Git assistant",
		Long: "GitFlow AI turns plain-English requests into Git commands, explains them " +
			"and flags the risky ones before anything touches your repository.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			askCmd.SetContext(cmd.Context())
			return askCmd.RunE(askCmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&s.opts.ConfigPath, "config", s.opts.ConfigPath, "Config file (default ~/.gitflow/config.yaml)")
	root.PersistentFlags().BoolVarP(&s.opts.Verbose, "verbose", "v", s.opts.Verbose, "Enable debug logging")

	root.AddCommand(askCmd)
	root.AddCommand(newStatusCommand(s))
	root.AddCommand(newDemoCommand(s))
	root.AddCommand(newServeCommand(s))
	root.AddCommand(newCacheCommand(s))
	root.AddCommand(newConfigCommand(s))
	root.AddCommand(newDoctorCommand(s))
	root.AddCommand(newVersionCommand())
	return root
}

type askOptions struct {
	repo        string
	json        bool
	interactive bool
	copy        bool
	run         bool
	timeout     time.Duration
}

func newAskCommand(s *session) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [natural language]",
		Short: "Suggest Git commands for a request",
		Example: `  gitflow ask "how do I commit my changes?"
  gitflow ask "undo my last commit but keep the changes" --run
  gitflow ask --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("json") && container.Config.Preferences.Output == "json" {
				opts.json = true
			}

			a := newAsker(cmd, container, opts)
			if opts.interactive {
				return a.loop(cmd.Context())
			}
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("provide a query or use --interactive")
			}
			return a.answer(cmd.Context(), query)
		},
	}

	cmd.Flags().StringVarP(&opts.repo, "repo", "r", ".", "Repository path")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the response as JSON")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Start an interactive session")
	cmd.Flags().BoolVarP(&opts.copy, "copy", "c", false, "Copy the primary command to the clipboard")
	cmd.Flags().BoolVar(&opts.run, "run", false, "Run the primary command (asks first when it is risky)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	return cmd
}

// asker answers queries for one invocation of the ask command.
type asker struct {
	opts      askOptions
	container *app.Container
	out       io.Writer
	errOut    io.Writer
	renderer  *Renderer
	prompter  *Prompter
	confirmer ports.ConfirmationPrompter
}

func newAsker(cmd *cobra.Command, container *app.Container, opts askOptions) *asker {
	prompter := NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	var confirmer ports.ConfirmationPrompter = prompter
	if container.Prompter != nil {
		confirmer = container.Prompter
	}
	return &asker{
		opts:      opts,
		container: container,
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
		renderer:  NewRenderer(cmd.OutOrStdout(), container.Config.Preferences.Color),
		prompter:  prompter,
		confirmer: confirmer,
	}
}

// askOutput is the --json document.
type askOutput struct {
	Query     string                   `json:"query"`
	RequestID string                   `json:"request_id"`
	FromCache bool                     `json:"from_cache"`
	Response  domain.AssistantResponse `json:"response"`
	Execution *domain.ExecutionResult  `json:"execution,omitempty"`
}

func (a *asker) loop(ctx context.Context) error {
	fmt.Fprintln(a.out, "GitFlow AI interactive mode. Type 'exit' or 'quit' to leave.")
	for {
		line, err := a.prompter.ReadLine("\n> ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.out)
			return nil
		}
		if err != nil {
			return err
		}
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit", "bye":
			return nil
		}
		if err := a.answer(ctx, line); err != nil {
			if domain.IsFatal(err) {
				return err
			}
			fmt.Fprintf(a.errOut, "error: %v\n", err)
		}
	}
}

func (a *asker) answer(ctx context.Context, query string) error {
	if a.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.timeout)
		defer cancel()
	}

	spinner := NewSpinner(a.errOut, "Thinking...")
	if !a.opts.json {
		spinner.Start()
	}
	result, err := a.container.Assistant.Assist(ctx, domain.AssistRequest{
		Utterance:      query,
		RepositoryPath: a.opts.repo,
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	if a.opts.copy {
		a.copyPrimary(result.Response)
	}

	if a.opts.json {
		output := askOutput{
			Query:     query,
			RequestID: result.RequestID,
			FromCache: result.FromCache,
			Response:  result.Response,
		}
		var runErr error
		if a.opts.run {
			output.Execution, runErr = a.runPrimary(ctx, result.Response)
		}
		if err := writeJSON(a.out, output); err != nil {
			return err
		}
		return runErr
	}

	a.renderer.Response(result)
	if !a.opts.run {
		return nil
	}
	_, err = a.runPrimary(ctx, result.Response)
	return err
}

func (a *asker) copyPrimary(resp domain.AssistantResponse) {
	primary, ok := resp.Primary()
	if !ok || a.container.Clipboard == nil {
		return
	}
	if err := a.container.Clipboard.Copy(primary.CommandLine()); err != nil {
		fmt.Fprintf(a.errOut, "warning: copy to clipboard failed: %v\n", err)
		return
	}
	fmt.Fprintf(a.errOut, "Copied: %s\n", primary.CommandLine())
}

// runPrimary executes the first executable candidate. Commands that require
// confirmation only run after the prompter approves them.
func (a *asker) runPrimary(ctx context.Context, resp domain.AssistantResponse) (*domain.ExecutionResult, error) {
	primary, ok := resp.Primary()
	if !ok || resp.NeedsClarification() {
		fmt.Fprintln(a.errOut, "Nothing to run.")
		return nil, nil
	}
	if a.container.Executor == nil {
		return nil, errors.New("command executor unavailable")
	}

	if primary.RequiresConfirmation() {
		if a.confirmer == nil || !a.confirmer.Enabled() {
			return nil, fmt.Errorf("%s requires confirmation and no prompt is available", primary.CommandLine())
		}
		confirmed, err := a.confirmer.Confirm(primary, resp.Warnings)
		if err != nil {
			return nil, fmt.Errorf("read confirmation: %w", err)
		}
		if !confirmed {
			fmt.Fprintln(a.errOut, "Cancelled.")
			return nil, nil
		}
	}

	result, err := a.container.Executor.Execute(ctx, a.opts.repo, primary)
	if !a.opts.json {
		a.renderer.Execution(primary, result)
	}
	if err != nil {
		return &result, fmt.Errorf("run %s: %w", primary.CommandLine(), err)
	}
	return &result, nil
}

func writeJSON(out io.Writer, value interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
