package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the raseed API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Auth     AuthConfig     `yaml:"auth"`
	Query    QueryConfig    `yaml:"query"`
	Wallet   WalletConfig   `yaml:"wallet"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// LLMConfig holds text generation settings.
type LLMConfig struct {
	Provider   string `yaml:"provider"` // gemini, openai (default: gemini)
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"` // openai only; empty = api.openai.com
	TimeoutSec int    `yaml:"timeout_sec"`
}

// QueryConfig holds query pipeline and pagination settings.
type QueryConfig struct {
	MaxResultReceipts int `yaml:"max_result_receipts"` // receipts attached to a result notice
	ExecLimit         int `yaml:"exec_limit"`          // max receipts fetched per filter
	DefaultPageSize   int `yaml:"default_page_size"`
	MaxPageSize       int `yaml:"max_page_size"`
}

// WalletConfig holds Google Wallet pass settings.
type WalletConfig struct {
	IssuerID    string `yaml:"issuer_id"`
	ClassSuffix string `yaml:"class_suffix"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case "openai":
			c.LLM.Model = "gpt-4o-mini"
		default:
			c.LLM.Model = "gemini-2.0-flash"
		}
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 30
	}
	if c.Query.MaxResultReceipts <= 0 {
		c.Query.MaxResultReceipts = 10
	}
	if c.Query.ExecLimit <= 0 {
		c.Query.ExecLimit = 1000
	}
	if c.Query.DefaultPageSize <= 0 {
		c.Query.DefaultPageSize = 20
	}
	if c.Query.MaxPageSize <= 0 {
		c.Query.MaxPageSize = 100
	}
	if c.Wallet.ClassSuffix == "" {
		c.Wallet.ClassSuffix = "receipt_pass_class"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "raseed:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
		// ok
	default:
		return fmt.Errorf("llm.provider must be \"gemini\" or \"openai\", got %q", c.LLM.Provider)
	}
	if c.Query.DefaultPageSize > c.Query.MaxPageSize {
		return fmt.Errorf(
			"query.default_page_size (%d) must not exceed query.max_page_size (%d)",
			c.Query.DefaultPageSize, c.Query.MaxPageSize,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
