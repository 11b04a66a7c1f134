package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: "Print the configuration after defaults, the config file, .env, " +
		"IDEATE_* variables and flags are applied. The output is a valid --config file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out, err := cfg.YAML()
		if err != nil {
			return fmt.Errorf("render config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
