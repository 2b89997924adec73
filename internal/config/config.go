package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"iqtrade/internal/logging"
	"iqtrade/pkg/questrade"
)

// Config represents the CLI configuration
type Config struct {
	Questrade QuestradeConfig `yaml:"questrade"`
	Output    OutputConfig    `yaml:"output"`
	Log       logging.Config  `yaml:"log"`
}

// QuestradeConfig holds API client settings
type QuestradeConfig struct {
	Secrets  string        `yaml:"secrets"`   // JSON file holding iq_refresh_token
	Persist  bool          `yaml:"persist"`   // write the rotated refresh token back
	LoginURL string        `yaml:"login_url"` // practice accounts use practicelogin
	Timeout  time.Duration `yaml:"timeout"`
	Account  string        `yaml:"account"` // default account number
}

// OutputConfig holds presentation settings
type OutputConfig struct {
	Format string `yaml:"format"` // table or json
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Questrade: QuestradeConfig{
			Secrets:  "secrets.json",
			Persist:  true,
			LoginURL: questrade.LoginURL,
			Timeout:  30 * time.Second,
		},
		Output: OutputConfig{
			Format: "table",
		},
		Log: logging.Config{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load loads configuration from a YAML file, then applies .env and
// environment overrides. A missing file means defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// .env is optional
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("IQTRADE_SECRETS"); v != "" {
		c.Questrade.Secrets = v
	}
	if v := os.Getenv("IQTRADE_LOGIN_URL"); v != "" {
		c.Questrade.LoginURL = v
	}
	if v := os.Getenv("IQTRADE_ACCOUNT"); v != "" {
		c.Questrade.Account = v
	}
	if v := os.Getenv("IQTRADE_PERSIST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("IQTRADE_PERSIST: %w", err)
		}
		c.Questrade.Persist = b
	}
	if v := os.Getenv("IQTRADE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Questrade.Secrets == "" {
		return fmt.Errorf("questrade.secrets is required")
	}
	if c.Questrade.LoginURL == "" {
		return fmt.Errorf("questrade.login_url is required")
	}
	if c.Questrade.Timeout <= 0 {
		return fmt.Errorf("questrade.timeout must be positive")
	}
	switch c.Output.Format {
	case "table", "json":
	default:
		return fmt.Errorf("output.format must be table or json, got %q", c.Output.Format)
	}
	return nil
}

// ClientOptions translates the settings into questrade client options.
func (c *Config) ClientOptions() []questrade.Option {
	return []questrade.Option{
		questrade.WithLoginURL(c.Questrade.LoginURL),
		questrade.WithTimeout(c.Questrade.Timeout),
		questrade.WithPersistence(c.Questrade.Persist),
	}
}
