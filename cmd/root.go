package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/abhisek/ideate/internal/config"
	"github.com/abhisek/ideate/internal/llm"
	"github.com/abhisek/ideate/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "ideate",
	Short: "Batch idea generator for a local Ollama model",
	Long: "ideate sends one prompt to an Ollama model many times and saves every " +
		"response as a markdown file named after its title.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"provider":     "provider",
	"ollama.host":  "host",
	"ollama.model": "model",
	"log.level":    "log-level",
	"log.file":     "log-file",
	"store.path":   "db",
	"metrics.addr": "metrics-addr",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file")
	pf.String("db", "", "Path to SQLite database file; turns on run history (overrides IDEATE_STORE_PATH)")
	pf.String("provider", "ollama", "LLM provider (ollama, mock)")
	pf.String("host", llm.DefaultHost, "Ollama host URL")
	pf.String("model", llm.DefaultModel, "Model to generate with")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-file", "", "Also write JSON logs to this file")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves and validates the effective configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")

	opts := config.DefaultOptions(file)
	opts.Flags = make(map[string]*pflag.Flag, len(flagKeys))
	for key, name := range flagKeys {
		opts.Flags[key] = cmd.Flags().Lookup(name)
	}

	cfg, err := config.Load(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path (from --db,
// IDEATE_STORE_PATH or the config file), then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.Store.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the history database regardless of store.enabled, for
// the read-only subcommands.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
