package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deepsourcelabs/xaml-sleuth/analyzers/catalog"
)

func newRulesCmd() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:          "rules",
		Short:        "Lists or exports the issue catalog",
		SilenceUsage: true,
	}

	rulesCmd.AddCommand(&cobra.Command{
		Use:          "list",
		Short:        "Prints every issue code with its severity and title",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules, err := catalog.Default()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, rule := range rules {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rule.Code, rule.Severity, rule.Name, rule.Title)
			}
			return tw.Flush()
		},
	})

	rulesCmd.AddCommand(&cobra.Command{
		Use:          "export DIR",
		Short:        "Writes one <code>.toml file per issue code to DIR",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := catalog.Default()
			if err != nil {
				return err
			}

			if err := rules.BuildTOML(args[0]); err != nil {
				return fmt.Errorf("failed to export rules: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Exported %d rules to %s.\n", len(rules), args[0])
			return nil
		},
	})

	return rulesCmd
}
