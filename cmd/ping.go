package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the Ollama server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd, io.Discard)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.service.Ping(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is reachable (model %s)\n", d.cfg.Ollama.Host, d.provider.ModelID())
		return nil
	},
}
