package cmd

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/ideate/internal/app"
	"github.com/abhisek/ideate/internal/screens/prompt"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive console (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole(cmd)
	},
}

// runConsole builds dependencies and launches the TUI. Console logs are
// discarded since they would draw over the screen; --log-file still works.
func runConsole(cmd *cobra.Command) error {
	d, err := buildDeps(cmd, io.Discard)
	if err != nil {
		return err
	}
	defer d.Close()

	opts := app.Options{
		Starter: d.service,
		Model:   d.provider.ModelID(),
		Defaults: prompt.Defaults{
			BatchSize: strconv.Itoa(defaultBatchSize),
			OutputDir: defaultOutputDir(),
		},
		Stopper: d.service,
	}
	if d.store != nil {
		opts.History = d.store.RunRepo()
	}
	return app.Run(cmd.Context(), opts)
}
