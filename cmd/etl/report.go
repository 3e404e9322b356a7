package main

import (
	"github.com/spf13/cobra"

	"fashionetl/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the summary of the last CSV output",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := report.DefaultOptions()
		opts.Rows = cfg.ReportRows
		return report.Print(cmd.OutOrStdout(), cfg.CSVPath, opts)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
