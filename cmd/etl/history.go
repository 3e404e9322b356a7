package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"fashionetl/internal/db"
	"fashionetl/internal/repository"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs from the etl_runs table",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of runs")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	conn, driver, err := db.New(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	repo := &repository.RunRepository{DB: conn, Driver: driver}
	if err := repo.EnsureSchema(cmd.Context()); err != nil {
		return err
	}
	runs, err := repo.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Started", "Duration", "Pages", "Extracted", "Rows", "CSV", "Google Sheets", "Database", "Error")
	for _, run := range runs {
		pages := strconv.Itoa(run.Pages)
		if run.Partial {
			pages += "*"
		}
		t.Row(
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
			pages,
			strconv.Itoa(run.Extracted),
			strconv.Itoa(run.Transformed),
			run.Sinks["CSV"],
			run.Sinks["Google Sheets"],
			run.Sinks["Database"],
			run.Error,
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}
