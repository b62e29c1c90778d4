package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API         APIConfig         `yaml:"api"`
	List        ListConfig        `yaml:"list"`
	Lookup      LookupConfig      `yaml:"lookup"`
	Credentials CredentialsConfig `yaml:"credentials"`
	History     HistoryConfig     `yaml:"history"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ListConfig struct {
	PageSize int `yaml:"page_size"`
}

type LookupConfig struct {
	Limit    int           `yaml:"limit"`
	Debounce time.Duration `yaml:"debounce"`
}

type CredentialsConfig struct {
	File string `yaml:"file"`
	// Hex-encoded 32-byte AES key; empty stores the token in plaintext.
	EncryptionKey string `yaml:"encryption_key"`
}

type HistoryConfig struct {
	File          string        `yaml:"file"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the metrics listener
}

func Load(path string) (*Config, error) {
	// A .env alongside the invocation is honored but never required.
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := expandEnvVars(string(data))

		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		List: ListConfig{
			PageSize: 10,
		},
		Lookup: LookupConfig{
			Limit:    15,
			Debounce: 300 * time.Millisecond,
		},
		Credentials: CredentialsConfig{
			File: filepath.Join(stateDir(), "access_token"),
		},
		History: HistoryConfig{
			File:          filepath.Join(stateDir(), "history.jsonl"),
			BatchSize:     20,
			FlushInterval: 2 * time.Second,
		},
	}
}

// stateDir is where the credential and history files live by default.
func stateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "roster")
	}
	return ".roster"
}

func expandEnvVars(s string) string {
	return os.ExpandEnv(s)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROSTER_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("ROSTER_CREDENTIALS_FILE"); v != "" {
		cfg.Credentials.File = v
	}
	if v := os.Getenv("ROSTER_ENCRYPTION_KEY"); v != "" {
		cfg.Credentials.EncryptionKey = v
	}
	if v := os.Getenv("ROSTER_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.List.PageSize <= 0 {
		return fmt.Errorf("list.page_size must be positive")
	}
	if c.Lookup.Limit <= 0 {
		return fmt.Errorf("lookup.limit must be positive")
	}
	if c.Lookup.Debounce <= 0 {
		return fmt.Errorf("lookup.debounce must be positive")
	}
	if c.Credentials.File == "" {
		return fmt.Errorf("credentials.file must not be empty")
	}
	if c.History.File == "" {
		return fmt.Errorf("history.file must not be empty")
	}
	if c.History.BatchSize <= 0 {
		return fmt.Errorf("history.batch_size must be positive")
	}
	if c.History.FlushInterval <= 0 {
		return fmt.Errorf("history.flush_interval must be positive")
	}
	return nil
}
