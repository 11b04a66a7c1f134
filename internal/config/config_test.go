package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/ideate/internal/ideation"
	"github.com/abhisek/ideate/internal/llm"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, llm.DefaultHost, cfg.Ollama.Host)
	assert.Equal(t, llm.DefaultModel, cfg.Ollama.Model)
	assert.Equal(t, 2*time.Second, cfg.Worker.Backoff)
	assert.Equal(t, 500*time.Millisecond, cfg.Worker.Pace)
	assert.Equal(t, ideation.DefaultSystemPrompt, cfg.Worker.SystemPrompt)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Store.Enabled)
	assert.Empty(t, cfg.Store.Path)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "ideate.yaml", `
ollama:
  host: http://from-file:11434
  model: from-file
worker:
  pace: 1s
log:
  level: debug
`)
	envFile := writeFile(t, dir, ".env", "IDEATE_OLLAMA_MODEL=from-dotenv\nIDEATE_WORKER_BACKOFF=5s\n")

	t.Setenv("IDEATE_OLLAMA_HOST", "http://from-env:11434")
	// godotenv.Load sets variables for the rest of the process.
	t.Setenv("IDEATE_OLLAMA_MODEL", "")
	t.Setenv("IDEATE_WORKER_BACKOFF", "")
	require.NoError(t, os.Unsetenv("IDEATE_OLLAMA_MODEL"))
	require.NoError(t, os.Unsetenv("IDEATE_WORKER_BACKOFF"))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "warn", "")
	require.NoError(t, fs.Parse([]string{"--log-level", "error"}))

	cfg, err := Load(Options{
		File:    file,
		EnvFile: envFile,
		Flags:   map[string]*pflag.Flag{"log.level": fs.Lookup("log-level")},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:11434", cfg.Ollama.Host, "env beats file")
	assert.Equal(t, "from-dotenv", cfg.Ollama.Model, "dotenv beats file")
	assert.Equal(t, 5*time.Second, cfg.Worker.Backoff)
	assert.Equal(t, time.Second, cfg.Worker.Pace, "file beats defaults")
	assert.Equal(t, "error", cfg.Log.Level, "flag beats everything")
}

func TestLoad_UnsetFlagDoesNotOverride(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("model", "flag-default", "")
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(Options{Flags: map[string]*pflag.Flag{"ollama.model": fs.Lookup("model")}})
	require.NoError(t, err)
	assert.Equal(t, llm.DefaultModel, cfg.Ollama.Model)
}

func TestLoad_EnvironmentBeatsDotenv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "IDEATE_STORE_PATH=/from/dotenv.db\n")
	t.Setenv("IDEATE_STORE_PATH", "/from/env.db")

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", cfg.Store.Path)
	assert.True(t, cfg.Store.Enabled, "a database path turns recording on")
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "nope.env")})
	assert.NoError(t, err)
}

func TestLoad_MissingConfigFileFails(t *testing.T) {
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad host", func(c *Config) { c.Ollama.Host = "localhost" }, true},
		{"negative backoff", func(c *Config) { c.Worker.Backoff = -time.Second }, true},
		{"negative pace", func(c *Config) { c.Worker.Pace = -time.Second }, true},
		{"negative timeout", func(c *Config) { c.Ollama.Timeout = -time.Second }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"zero retry attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Ollama.Model = "mistral"
	cfg.Ollama.Timeout = time.Minute
	cfg.Worker.Backoff = 0
	cfg.Worker.SystemPrompt = ""

	lc := cfg.LLM()
	assert.Equal(t, "mistral", lc.Ollama.Model)
	assert.Equal(t, time.Minute, lc.Timeout)

	ic := cfg.Ideation()
	assert.Equal(t, time.Duration(0), ic.Backoff)
	assert.Equal(t, ideation.DefaultSystemPrompt, ic.SystemPrompt)
}

func TestYAML_RoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Worker.Pace = 750 * time.Millisecond
	cfg.Store.Path = "/tmp/ideate.db"
	cfg.Store.Enabled = true

	out, err := cfg.YAML()
	require.NoError(t, err)

	var doc struct {
		Worker map[string]any `yaml:"worker"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "750ms", doc.Worker["pace"])

	path := writeFile(t, t.TempDir(), "out.yaml", string(out))
	back, err := Load(Options{File: path})
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "logs", "ideate.log")

	logger, closer, err := NewLogger(LogConfig{Level: "debug", File: logPath}, &buf)
	require.NoError(t, err)

	logger.Debug().Str("run", "abc").Msg("hello")
	require.NoError(t, closer.Close())

	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), "\x1b[", "no colour when not a terminal")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "abc", entry["run"])
}

func TestNewLogger_LevelFallback(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(LogConfig{Level: "nonsense"}, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
