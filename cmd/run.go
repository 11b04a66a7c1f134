package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/ideate/internal/ideation"
)

const defaultBatchSize = 100

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a batch of ideas without the console",
	Long: "Run one job and stream its log to stderr. Each saved file path is " +
		"printed to stdout. Ctrl+C stops after the current iteration; a second " +
		"Ctrl+C exits immediately.",
	RunE: func(cmd *cobra.Command, args []string) error {
		promptText, _ := cmd.Flags().GetString("prompt")
		count, _ := cmd.Flags().GetInt("count")
		outDir, _ := cmd.Flags().GetString("output")
		if outDir == "" {
			outDir = defaultOutputDir()
		}

		d, err := buildDeps(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		run, err := d.service.Start(cmd.Context(), ideation.StartInput{
			Prompt:    promptText,
			BatchSize: count,
			OutputDir: outDir,
		})
		if err != nil {
			return err
		}

		summary, err := drainRun(cmd.Context(), run, d.log, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if summary.Err != nil {
			return fmt.Errorf("run %s aborted: %w", summary.RunID, summary.Err)
		}
		return nil
	},
}

// runHandle is the part of *ideation.Run that drainRun needs.
type runHandle interface {
	Events() <-chan ideation.Event
	Cancel()
	Done() <-chan struct{}
}

// drainRun logs every event of run until its stream closes and returns
// the final summary. The first interrupt signal asks the job to stop;
// after that the default handler is restored.
func drainRun(ctx context.Context, run runHandle, log zerolog.Logger, out io.Writer) (ideation.Summary, error) {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var summary ideation.Summary
	g := new(errgroup.Group)

	g.Go(func() error {
		select {
		case <-sigCtx.Done():
			stop()
			if ctx.Err() == nil {
				log.Warn().Msg("stopping after the current iteration, interrupt again to exit")
			}
			run.Cancel()
		case <-run.Done():
		}
		return nil
	})

	g.Go(func() error {
		var finished bool
		for ev := range run.Events() {
			switch e := ev.(type) {
			case ideation.LogEvent:
				log.Info().Msg(e.Message)
			case ideation.ErrorEvent:
				log.Error().Err(e.Err).Msg(e.Message)
			case ideation.ItemCompletedEvent:
				log.Debug().Str("title", e.Title).Str("path", e.Path).Msg("item completed")
				fmt.Fprintln(out, e.Path)
			case ideation.ProgressEvent:
				log.Debug().Int("done", e.Done).Int("total", e.Total).Int("percent", e.Percent).Msg("progress")
			case ideation.FinishedEvent:
				summary = e.Summary
				finished = true
			}
		}
		if !finished {
			return fmt.Errorf("event stream closed without a finish event")
		}
		log.Info().
			Str("run", summary.RunID).
			Int("completed", summary.Completed).
			Int("failed", summary.Failed).
			Str("outcome", summary.Outcome()).
			Msg("run finished")
		return nil
	})

	err := g.Wait()
	return summary, err
}

// defaultOutputDir is ~/ideation_output, or ./ideation_output when the
// home directory is unknown.
func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ideation_output"
	}
	return filepath.Join(home, "ideation_output")
}

func init() {
	runCmd.Flags().StringP("prompt", "p", "", "Prompt sent on every iteration")
	runCmd.Flags().IntP("count", "n", defaultBatchSize, "Number of iterations")
	runCmd.Flags().StringP("output", "o", "", "Output directory (default ~/ideation_output)")
	_ = runCmd.MarkFlagRequired("prompt")
}
