package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlgo/gqlsearch/config"
	"github.com/gqlgo/gqlsearch/explorer"
	"github.com/gqlgo/gqlsearch/render"
	"github.com/gqlgo/gqlsearch/search"
)

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfgFile string
	verbose bool
	output  string

	cfg *config.Config
	log *logrus.Logger
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd := a.rootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd.ExecuteContext(ctx)
}

func (a *app) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gqlsearch",
		Short: "Search a GraphQL schema for types, fields and arguments",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "version", "help", "completion", "__complete":
				return nil
			}

			return a.load(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: .gqlsearch.yml in the current or a parent directory)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "", "Output format (text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(render.FormatText), string(render.FormatJSON)}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(a.searchCommand())
	rootCmd.AddCommand(a.interactiveCommand())
	rootCmd.AddCommand(a.versionCommand())

	return rootCmd
}

func (a *app) load(ctx context.Context) error {
	a.log = logrus.New()
	a.log.SetOutput(a.stderr)
	if a.verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}

	cfgFile := a.cfgFile
	if cfgFile == "" {
		var err error
		cfgFile, err = config.FindConfigFile(".", config.DefaultFilenames)
		if err != nil {
			return fmt.Errorf("failed to find config file: %w", err)
		}
	}

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	a.log.WithField("config", cfgFile).Debug("config loaded")

	if a.output != "" {
		format, err := render.ParseFormat(a.output)
		if err != nil {
			return err
		}
		cfg.Search.Format = format
	}

	cfg.Log = a.log
	if err := cfg.LoadSchema(ctx); err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	a.cfg = cfg

	return nil
}

// within resolves the --within flag, falling back to the config default.
func (a *app) within(name string) (*ast.Definition, error) {
	if name == "" {
		name = a.cfg.Search.Within
	}
	if name == "" {
		return nil, nil
	}

	def := a.cfg.Schema.Types[name]
	if def == nil {
		return nil, fmt.Errorf("%w: %s", explorer.ErrUnknownType, name)
	}

	return def, nil
}

func (a *app) searchCommand() *cobra.Command {
	var (
		within          string
		noQueries       bool
		noMutations     bool
		noSubscriptions bool
		noOthers        bool
	)

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search the schema once and print the results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			def, err := a.within(within)
			if err != nil {
				return err
			}

			q := search.NewQuery()
			if len(args) > 0 {
				q.SearchText = args[0]
			}
			q.ShowQueries = !noQueries
			q.ShowMutations = !noMutations
			q.ShowSubscriptions = !noSubscriptions
			q.ShowOthers = !noOthers

			result := search.Match(a.cfg.Schema, def, q)
			a.log.WithFields(logrus.Fields{
				"searchText": q.SearchText,
				"matches":    result.Total(),
			}).Debug("search finished")

			return render.Layout(a.stdout, a.cfg.Search.Format, result.Layout(def))
		},
	}

	cmd.Flags().StringVar(&within, "within", "", "Focus on a type")
	cmd.Flags().BoolVar(&noQueries, "no-queries", false, "Hide the query root")
	cmd.Flags().BoolVar(&noMutations, "no-mutations", false, "Hide the mutation root")
	cmd.Flags().BoolVar(&noSubscriptions, "no-subscriptions", false, "Hide the subscription root")
	cmd.Flags().BoolVar(&noOthers, "no-others", false, "Hide every type that is not a root")

	return cmd
}

func (a *app) interactiveCommand() *cobra.Command {
	var within string

	cmd := &cobra.Command{
		Use:   "interactive [text]",
		Short: "Search the schema while typing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			def, err := a.within(within)
			if err != nil {
				return err
			}

			session := explorer.NewSession(a.cfg.Schema, a.stdout,
				explorer.WithFormat(a.cfg.Search.Format),
				explorer.WithLogger(a.log),
				explorer.WithWithin(def),
				explorer.WithControllerOptions(search.WithWait(a.cfg.Search.Wait)),
			)

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "gqlsearch> ",
				AutoComplete:    newCompleter(session),
				InterruptPrompt: "^C",
				EOFPrompt:       ".quit",
				Stdin:           io.NopCloser(a.stdin),
				Stdout:          a.stdout,
				Stderr:          a.stderr,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize REPL: %w", err)
			}
			defer func() { _ = rl.Close() }()

			_, _ = fmt.Fprintln(a.stdout, "Type .help for commands, .quit to exit")

			if len(args) > 0 {
				session.Controller().OnTextChange(args[0])
			}

			return repl(rl, session, a.stderr)
		},
	}

	cmd.Flags().StringVar(&within, "within", "", "Focus on a type")

	return cmd
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "gqlsearch v%s\n", version)
		},
	}
}

type lineReader interface {
	Readline() (string, error)
}

// repl feeds lines to session until .quit or end of input. Errors of a single
// line are reported and do not end the loop. A pending search is run before
// repl returns.
func repl(r lineReader, session *explorer.Session, stderr io.Writer) error {
	defer session.Close()

	for {
		line, err := r.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		quit, err := session.Handle(strings.TrimSpace(line))
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			continue
		}
		if quit {
			return nil
		}
	}
}

func newCompleter(session *explorer.Session) *readline.PrefixCompleter {
	var types []readline.PrefixCompleterInterface
	for _, name := range session.TypeNames() {
		types = append(types, readline.PcItem(name))
	}

	onOff := func(command string) readline.PrefixCompleterInterface {
		return readline.PcItem(command, readline.PcItem("on"), readline.PcItem("off"))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".within", types...),
		onOff(".query"),
		onOff(".mutation"),
		onOff(".subscription"),
		onOff(".other"),
		readline.PcItem(".clear"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
