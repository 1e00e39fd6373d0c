package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers"
	"github.com/deepsourcelabs/xaml-sleuth/analyzers/report"
	"github.com/deepsourcelabs/xaml-sleuth/config"
)

// applyConfig fills options that were not given on the command line from the
// config file. Disabled codes from both sources are merged.
func applyConfig(opts *RunOptions, cfg *config.Config, cmd *cobra.Command) error {
	flags := cmd.Flags()

	if !flags.Changed("mock-data") && cfg.Static.MockData != "" {
		opts.MockData = cfg.Static.MockData
	}
	if !flags.Changed("max-depth") && cfg.Runtime.MaxDepth != nil {
		opts.MaxDepth = *cfg.Runtime.MaxDepth
	}
	if !flags.Changed("snapshot") && cfg.Runtime.Snapshot != "" {
		opts.Snapshot = cfg.Runtime.Snapshot
	}
	if !flags.Changed("search-timeout") {
		timeout, err := cfg.Runtime.SearchTimeoutDuration()
		if err != nil {
			return err
		}
		if timeout > 0 {
			opts.SearchTimeout = timeout
		}
	}
	if !flags.Changed("report") && cfg.Report.Path != "" {
		opts.Report = cfg.Report.Path
	}
	if !flags.Changed("report-format") && cfg.Report.Format != "" {
		opts.ReportFormat = cfg.Report.Format
	}

	opts.Disable = append(append([]string{}, cfg.Rules.Disabled...), opts.Disable...)

	return nil
}

// validateOptions validates the merged options before any analysis starts.
func validateOptions(opts *RunOptions) error {
	if opts.MaxDepth < 0 {
		return fmt.Errorf("%w: the 'max-depth' flag must not be negative", analyzers.ErrInvalidArgument)
	}

	if opts.SearchTimeout <= 0 {
		return fmt.Errorf("%w: the 'search-timeout' flag must be positive", analyzers.ErrInvalidArgument)
	}

	if !isSupportedFormat(opts.ReportFormat) {
		return fmt.Errorf("%w: report format %q not supported. supported types include: %s",
			analyzers.ErrInvalidArgument, opts.ReportFormat, strings.Join(report.Formats, ", "))
	}

	if opts.Runtime {
		if opts.Watch {
			return fmt.Errorf("%w: the 'watch' flag is only available in static mode", analyzers.ErrInvalidArgument)
		}
		if opts.Target == "" && opts.WindowTitle == "" {
			return fmt.Errorf("%w: runtime mode requires a target executable or the 'window-title' flag", analyzers.ErrInvalidArgument)
		}
		return nil
	}

	if opts.Target == "" {
		return fmt.Errorf("%w: static analysis requires a XAML file path", analyzers.ErrInvalidArgument)
	}

	return nil
}

func isSupportedFormat(format string) bool {
	for _, f := range report.Formats {
		if f == format {
			return true
		}
	}
	return false
}
