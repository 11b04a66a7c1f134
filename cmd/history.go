package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ideate/internal/screens/history"
	"github.com/abhisek/ideate/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.RunRepo().ListRuns(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-8s  %-19s  %-10s  %9s  %6s  %-30s  %s\n",
			"Run", "Started", "Status", "Saved", "Failed", "Prompt", "Output")
		fmt.Fprintln(out, strings.Repeat("─", 110))
		for _, r := range runs {
			fmt.Fprintf(out, "%-8s  %-19s  %-10s  %9s  %6d  %-30s  %s\n",
				truncate(r.ID, 8),
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				history.Status(r),
				fmt.Sprintf("%d/%d", r.Completed, r.BatchSize),
				r.Failed,
				truncate(oneLine(r.Prompt), 30),
				r.OutputDir,
			)
			if r.ErrorMessage != "" {
				fmt.Fprintf(out, "          error: %s\n", r.ErrorMessage)
			}
		}
		return nil
	},
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
}
