// Package config loads ideate's settings and builds the process logger.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/ideate/internal/ideation"
	"github.com/abhisek/ideate/internal/llm"
)

// EnvPrefix prefixes every environment variable, e.g. IDEATE_OLLAMA_HOST.
const EnvPrefix = "IDEATE"

// Config is the effective configuration of one ideate process.
type Config struct {
	Provider string        `mapstructure:"provider"`
	Ollama   OllamaConfig  `mapstructure:"ollama"`
	Retry    RetryConfig   `mapstructure:"retry"`
	Worker   WorkerConfig  `mapstructure:"worker"`
	Log      LogConfig     `mapstructure:"log"`
	Store    StoreConfig   `mapstructure:"store"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
}

type OllamaConfig struct {
	Host    string        `mapstructure:"host"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

type WorkerConfig struct {
	Backoff      time.Duration `mapstructure:"backoff"`
	Pace         time.Duration `mapstructure:"pace"`
	SystemPrompt string        `mapstructure:"system_prompt"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File, when set, receives JSON logs in addition to the console.
	File string `mapstructure:"file"`
}

// StoreConfig controls run history. Recording is on when Enabled is set
// or a Path is given; an empty Path means the default per-user location.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// MetricsConfig enables the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Options tells Load where to look beyond the built-in defaults.
type Options struct {
	// File is an optional YAML config file. A missing file is an error.
	File string

	// EnvFile is a dotenv file. Missing is fine; variables already in
	// the environment win over the file.
	EnvFile string

	// Flags maps config keys to command-line flags. Only flags the user
	// actually set override lower layers.
	Flags map[string]*pflag.Flag
}

// Load resolves configuration in order: defaults, YAML file, dotenv
// file, IDEATE_* environment variables, flags.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.File, err)
		}
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag --%s: %w", flag.Name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Store.Path != "" {
		cfg.Store.Enabled = true
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	cfg, err := Load(Options{})
	if err != nil {
		panic(fmt.Sprintf("default config does not load: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	llmDefaults := llm.DefaultConfig()
	workerDefaults := ideation.DefaultConfig()

	v.SetDefault("provider", llmDefaults.Provider)

	v.SetDefault("ollama.host", llm.DefaultHost)
	v.SetDefault("ollama.model", llm.DefaultModel)
	v.SetDefault("ollama.timeout", "0s")

	v.SetDefault("retry.max_attempts", llmDefaults.Retry.MaxAttempts)
	v.SetDefault("retry.initial_wait", llmDefaults.Retry.InitialWait.String())
	v.SetDefault("retry.max_wait", llmDefaults.Retry.MaxWait.String())
	v.SetDefault("retry.multiplier", llmDefaults.Retry.Multiplier)

	v.SetDefault("worker.backoff", workerDefaults.Backoff.String())
	v.SetDefault("worker.pace", workerDefaults.Pace.String())
	v.SetDefault("worker.system_prompt", workerDefaults.SystemPrompt)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "")

	v.SetDefault("metrics.addr", "")
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if err := c.LLM().Validate(); err != nil {
		return err
	}
	if c.Worker.Backoff < 0 {
		return fmt.Errorf("worker backoff must not be negative, got %s", c.Worker.Backoff)
	}
	if c.Worker.Pace < 0 {
		return fmt.Errorf("worker pace must not be negative, got %s", c.Worker.Pace)
	}
	if c.Ollama.Timeout < 0 {
		return fmt.Errorf("ollama timeout must not be negative, got %s", c.Ollama.Timeout)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return nil
}

// LLM returns the provider configuration.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider: c.Provider,
		Ollama: llm.OllamaConfig{
			Host:  c.Ollama.Host,
			Model: c.Ollama.Model,
		},
		Retry: llm.RetryConfig{
			MaxAttempts: c.Retry.MaxAttempts,
			InitialWait: c.Retry.InitialWait,
			MaxWait:     c.Retry.MaxWait,
			Multiplier:  c.Retry.Multiplier,
		},
		Timeout: c.Ollama.Timeout,
	}
}

// Ideation returns the batch loop configuration.
func (c *Config) Ideation() ideation.Config {
	cfg := ideation.DefaultConfig()
	cfg.Backoff = c.Worker.Backoff
	cfg.Pace = c.Worker.Pace
	if c.Worker.SystemPrompt != "" {
		cfg.SystemPrompt = c.Worker.SystemPrompt
	}
	return cfg
}

// YAML renders the configuration in the same shape the config file uses.
// Durations are written in Go duration syntax so the output can be fed
// back in with --config.
func (c *Config) YAML() ([]byte, error) {
	doc := map[string]any{
		"provider": c.Provider,
		"ollama": map[string]any{
			"host":    c.Ollama.Host,
			"model":   c.Ollama.Model,
			"timeout": c.Ollama.Timeout.String(),
		},
		"retry": map[string]any{
			"max_attempts": c.Retry.MaxAttempts,
			"initial_wait": c.Retry.InitialWait.String(),
			"max_wait":     c.Retry.MaxWait.String(),
			"multiplier":   c.Retry.Multiplier,
		},
		"worker": map[string]any{
			"backoff":       c.Worker.Backoff.String(),
			"pace":          c.Worker.Pace.String(),
			"system_prompt": c.Worker.SystemPrompt,
		},
		"log": map[string]any{
			"level": c.Log.Level,
			"file":  c.Log.File,
		},
		"store": map[string]any{
			"enabled": c.Store.Enabled,
			"path":    c.Store.Path,
		},
		"metrics": map[string]any{
			"addr": c.Metrics.Addr,
		},
	}
	return yaml.Marshal(doc)
}

// envFileFromEnv lets IDEATE_ENV_FILE point at a different dotenv file.
func envFileFromEnv(fallback string) string {
	if p := os.Getenv(EnvPrefix + "_ENV_FILE"); p != "" {
		return p
	}
	return fallback
}

// DefaultOptions returns Options for the usual CLI invocation: an
// optional YAML file and a .env in the working directory.
func DefaultOptions(file string) Options {
	return Options{File: file, EnvFile: envFileFromEnv(".env")}
}
