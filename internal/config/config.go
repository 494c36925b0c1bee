// Package config loads agent-sync configuration from YAML and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/rcliao/agent-sync/internal/cache"
	"github.com/rcliao/agent-sync/internal/chunker"
	"github.com/rcliao/agent-sync/internal/planner"
)

// Config holds all agent-sync settings.
type Config struct {
	AgentID              string   `yaml:"agent_id" mapstructure:"agent_id"`
	BaseURL              string   `yaml:"base_url" mapstructure:"base_url"`
	APIKey               string   `yaml:"api_key" mapstructure:"api_key"`
	Model                string   `yaml:"model" mapstructure:"model"`
	DBPath               string   `yaml:"db_path" mapstructure:"db_path"`
	MaxChunkSize         int      `yaml:"max_chunk_size" mapstructure:"max_chunk_size"`
	FullReindexThreshold int      `yaml:"full_reindex_threshold" mapstructure:"full_reindex_threshold"`
	AnswerTTLSeconds     int      `yaml:"answer_ttl_seconds" mapstructure:"answer_ttl_seconds"`
	MemoryLabels         []string `yaml:"memory_labels" mapstructure:"memory_labels"`
	Ignore               []string `yaml:"ignore" mapstructure:"ignore"`
}

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:              "http://localhost:8283",
		DBPath:               defaultDBPath(),
		MaxChunkSize:         chunker.DefaultMaxChunkSize,
		FullReindexThreshold: planner.DefaultFullReindexThreshold,
		AnswerTTLSeconds:     int(cache.DefaultTTL.Seconds()),
		MemoryLabels:         []string{"persona", "human", "project"},
		Ignore: []string{
			".git/**",
			"node_modules/**",
			"vendor/**",
			"**/*.lock",
		},
	}
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "agent-sync")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "agent-sync")
}

func defaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".agent-sync", "sync.db")
}

// Load reads config from path, or from the standard search paths when
// path is empty. A missing file yields the defaults; env vars with the
// AGENT_SYNC_ prefix override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(configDir())
	}

	v.SetEnvPrefix("AGENT_SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only visits keys viper knows about, so every key must
	// be registered or env-only settings never apply.
	v.SetDefault("agent_id", cfg.AgentID)
	v.SetDefault("base_url", cfg.BaseURL)
	v.SetDefault("api_key", cfg.APIKey)
	v.SetDefault("model", cfg.Model)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("max_chunk_size", cfg.MaxChunkSize)
	v.SetDefault("full_reindex_threshold", cfg.FullReindexThreshold)
	v.SetDefault("answer_ttl_seconds", cfg.AnswerTTLSeconds)
	v.SetDefault("memory_labels", cfg.MemoryLabels)
	v.SetDefault("ignore", cfg.Ignore)

	if err := v.ReadInConfig(); err != nil {
		// A missing file in search-path mode means "use defaults";
		// an explicit --config path must exist.
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if path != "" || !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIKey = expandEnv(cfg.APIKey)
	return cfg, nil
}

// Validate checks that the settings needed for remote calls are set.
func (c *Config) Validate() error {
	if c.AgentID == "" {
		return fmt.Errorf("agent_id is required (set it in config or AGENT_SYNC_AGENT_ID)")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	return nil
}

// WriteStarter writes a commented starter config to the standard
// location and returns its path. Refuses to overwrite an existing file.
func WriteStarter() (string, error) {
	dir := configDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config already exists at %s", path)
	}

	starter := `# agent-sync configuration
agent_id: ""            # required: the remote agent to sync into
base_url: http://localhost:8283
api_key: $LETTA_API_KEY # $VARS are expanded from the environment
model: ""               # empty = the agent's default model

max_chunk_size: 4000
full_reindex_threshold: 500
answer_ttl_seconds: 900

memory_labels: [persona, human, project]

ignore:
  - ".git/**"
  - "node_modules/**"
  - "vendor/**"
  - "**/*.lock"
`
	if err := os.WriteFile(path, []byte(starter), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
