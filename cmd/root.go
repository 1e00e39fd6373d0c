package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/catalog"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/mockdata"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/report"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/uia"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/uia/snapshot"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/xaml"
	"github.com/deepsourcelabs/xaml-sleuth/config"
	"github.com/deepsourcelabs/xaml-sleuth/logger"
	"github.com/deepsourcelabs/xaml-sleuth/watch"
)

// RunOptions holds the arguments for the root command.
type RunOptions struct {
	Target        string
	Runtime       bool
	MockData      string
	WindowTitle   string
	MaxDepth      int
	Report        string
	ReportFormat  string
	Verbose       bool
	ConfigPath    string
	Disable       []string
	Snapshot      string
	SearchTimeout time.Duration
	Watch         bool
}

var exampleUsage = `  # Check bindings and namespaces in a XAML file
  xaml-sleuth MainWindow.xaml

  # Resolve binding paths against mock data and save a SARIF report
  xaml-sleuth MainWindow.xaml --mock-data mock.json --report out.sarif --report-format sarif

  # Re-run on every save
  xaml-sleuth MainWindow.xaml --mock-data mock.yaml --watch

  # Inspect a running window from an accessibility-tree snapshot
  xaml-sleuth --runtime MyApp.exe --snapshot session.json --max-depth 3`

// NewRootCmd builds the xaml-sleuth command tree writing to stdout and stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &RunOptions{}

	rootCmd := &cobra.Command{
		Use:                   "xaml-sleuth <target> [--runtime] [--mock-data PATH] [--window-title NAME] [--max-depth N] [--report PATH] [--verbose]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.MaximumNArgs(1),
		Example:               exampleUsage,
		Short:                 "Finds data binding and namespace problems in WPF XAML files and running windows",
		Long: `xaml-sleuth inspects a XAML file (static mode) for malformed markup, missing
namespace declarations and binding paths that do not resolve against mock data.
With --runtime it walks the UI Automation tree of a live window instead and
reports text controls that render empty and controls without a name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && cmd.Flags().NFlag() == 0 {
				return cmd.Help()
			}
			if len(args) == 1 {
				opts.Target = args[0]
			}
			return runRootCommand(cmd, opts)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.Runtime, "runtime", false, "inspect a running window instead of a XAML file")
	flags.StringVar(&opts.MockData, "mock-data", "", "JSON or YAML file standing in for the data context (static mode)")
	flags.StringVar(&opts.WindowTitle, "window-title", "", "window to inspect; defaults to the target's file name without extension")
	flags.IntVar(&opts.MaxDepth, "max-depth", uia.DefaultMaxDepth, "maximum depth of the runtime control walk")
	flags.StringVar(&opts.Report, "report", "", "also save the report to this file")
	flags.StringVar(&opts.ReportFormat, "report-format", report.FormatText, fmt.Sprintf("format of the --report file: %s", strings.Join(report.Formats, ", ")))
	flags.BoolVar(&opts.Verbose, "verbose", false, "print resolved bindings and debug logs")
	flags.StringVar(&opts.ConfigPath, "config", "", fmt.Sprintf("config file (default is %s when present)", config.DefaultFile))
	flags.StringSliceVar(&opts.Disable, "disable", nil, "issue codes to drop from the report")
	flags.StringVar(&opts.Snapshot, "snapshot", "", "accessibility-tree snapshot used as the UI Automation backend")
	flags.DurationVar(&opts.SearchTimeout, "search-timeout", uia.DefaultSearchTimeout, "timeout of each window search stage")
	flags.BoolVar(&opts.Watch, "watch", false, "re-run the static analysis whenever the inputs change")

	rootCmd.AddCommand(newRulesCmd())

	return rootCmd
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	return execute(os.Args[1:], os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd(stdout, stderr)
	rootCmd.SetArgs(append([]string{}, args...))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "❌ %s\n", sentence(err.Error()))
		return 1
	}

	return 0
}

// runRootCommand executes a single analysis, or keeps re-running it in watch mode.
func runRootCommand(cmd *cobra.Command, opts *RunOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyConfig(opts, cfg, cmd); err != nil {
		return err
	}

	if err := validateOptions(opts); err != nil {
		return err
	}

	log := logger.NewLogger(cfg, "xaml-sleuth", opts.Verbose)

	rules, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to read rule catalog: %w", err)
	}
	warnUnknownCodes(log, rules, opts.Disable)

	stdout := cmd.OutOrStdout()

	if opts.Runtime {
		return runRuntime(cmd.Context(), stdout, opts, rules, log)
	}

	if err := runStatic(cmd.Context(), stdout, opts, rules, log); err != nil {
		return err
	}

	if !opts.Watch {
		return nil
	}

	return watchStatic(cmd, opts, rules, log)
}

func runStatic(ctx context.Context, stdout io.Writer, opts *RunOptions, rules catalog.Rules, log hclog.Logger) error {
	table, err := mockdata.Load(opts.MockData)
	if err != nil {
		return fmt.Errorf("failed to load mock data: %w", err)
	}

	analyzer := xaml.New(xaml.Options{
		Path:     opts.Target,
		MockData: table,
		Verbose:  opts.Verbose,
		Out:      stdout,
		Logger:   log,
	})

	return runAnalyzer(ctx, stdout, analyzer, opts, rules, log)
}

func runRuntime(ctx context.Context, stdout io.Writer, opts *RunOptions, rules catalog.Rules, log hclog.Logger) error {
	var backend uia.Backend
	if opts.Snapshot != "" {
		backend = snapshot.New(opts.Snapshot, log)
	}

	analyzer := uia.New(uia.Options{
		Backend:       backend,
		TargetPath:    opts.Target,
		WindowTitle:   opts.WindowTitle,
		MaxDepth:      opts.MaxDepth,
		SearchTimeout: opts.SearchTimeout,
		Logger:        log,
	})

	return runAnalyzer(ctx, stdout, analyzer, opts, rules, log)
}

func runAnalyzer(ctx context.Context, stdout io.Writer, analyzer analyzers.Analyzer, opts *RunOptions, rules catalog.Rules, log hclog.Logger) error {
	issues, err := analyzer.Run(ctx)
	if err != nil {
		return fmt.Errorf("%s analysis failed: %w", analyzer.String(), err)
	}

	issues = analyzers.FilterDisabled(issues, opts.Disable)
	log.Debug("analysis completed", "mode", analyzer.String(), "issues", len(issues))

	err = report.Emit(stdout, issues, analyzer.String(), report.Options{
		Path:   opts.Report,
		Format: opts.ReportFormat,
		Target: opts.Target,
		Rules:  rules,
	})
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// watchStatic re-runs the static analysis on every change to the XAML or
// mock-data file until SIGINT or SIGTERM. Failures of a single run are printed
// and the watch goes on.
func watchStatic(cmd *cobra.Command, opts *RunOptions, rules catalog.Rules, log hclog.Logger) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New([]string{opts.Target, opts.MockData}, log)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	log.Info("watching for changes", "target", opts.Target)

	return w.Run(ctx, func() {
		fmt.Fprintln(stdout)
		if err := runStatic(ctx, stdout, opts, rules, log); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "❌ %s\n", sentence(err.Error()))
		}
	})
}

func warnUnknownCodes(log hclog.Logger, rules catalog.Rules, codes []string) {
	for _, code := range codes {
		if _, ok := rules.Lookup(code); !ok {
			log.Warn("unknown issue code in disabled rules", "code", code)
		}
	}
}

// sentence upper-cases the first letter of an error message for display.
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
