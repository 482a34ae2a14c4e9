package config

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/nikogura/plclient/pkg/client"
	"github.com/nikogura/plclient/pkg/logging"
	"github.com/pkg/errors"
)

const (
	// DefaultBaseURL is the OpenPowerlifting site.
	DefaultBaseURL = client.DefaultBaseURL
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = client.DefaultUserAgent
	// DefaultMaxConcurrentRequests bounds in-flight requests per client.
	DefaultMaxConcurrentRequests = 4
	// DefaultRequestTimeout is applied by the CLI to each command.
	DefaultRequestTimeout = "30s"
)

// Environment variables that override file values.
const (
	EnvBaseURL   = "PLCLIENT_BASE_URL"
	EnvUserAgent = "PLCLIENT_USER_AGENT"
	EnvLogLevel  = "PLCLIENT_LOG_LEVEL"
	EnvLogFormat = "PLCLIENT_LOG_FORMAT"
)

// Config represents the application configuration.
type Config struct {
	BaseURL               string    `json:"base_url"`
	UserAgent             string    `json:"user_agent,omitempty"`
	MaxConcurrentRequests int64     `json:"max_concurrent_requests"`
	RequestTimeout        string    `json:"request_timeout"`
	Log                   LogConfig `json:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Default returns the built-in configuration.
func Default() (cfg Config) {
	cfg = Config{
		BaseURL:               DefaultBaseURL,
		UserAgent:             DefaultUserAgent,
		MaxConcurrentRequests: DefaultMaxConcurrentRequests,
		RequestTimeout:        DefaultRequestTimeout,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
	return cfg
}

// DefaultPath returns ~/.plclient/config.json.
func DefaultPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, ".plclient", "config.json")
	return path, err
}

// Load reads configuration from file with environment variable overrides.
// With an empty configPath the default location is used, and a missing
// default file is not an error. A .env file in the working directory, if
// present, is loaded before overrides are applied.
func Load(configPath string) (cfg Config, err error) {
	cfg = Default()

	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	var data []byte
	data, err = os.ReadFile(path)
	switch {
	case err == nil:
		err = json.Unmarshal(data, &cfg)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse config file: %s", path)
			return cfg, err
		}
	case os.IsNotExist(err) && configPath == "":
		err = nil
	case os.IsNotExist(err):
		err = errors.Errorf("config file not found: %s (run 'plclient init' to create)", path)
		return cfg, err
	default:
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	err = godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		err = errors.Wrap(err, "failed to load .env")
		return cfg, err
	}
	err = nil

	applyEnv(&cfg)

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() (err error) {
	if c.BaseURL == "" {
		err = errors.New("base_url is required")
		return err
	}

	var u *url.URL
	u, err = url.Parse(c.BaseURL)
	if err != nil {
		err = errors.Wrapf(err, "invalid base_url: %s", c.BaseURL)
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		err = errors.Errorf("base_url must be an absolute http(s) URL: %s", c.BaseURL)
		return err
	}

	if c.MaxConcurrentRequests < 1 {
		err = errors.Errorf("max_concurrent_requests must be at least 1, got %d", c.MaxConcurrentRequests)
		return err
	}

	_, err = c.Timeout()
	if err != nil {
		return err
	}

	_, err = logging.ParseLevel(c.Log.Level)
	if err != nil {
		err = errors.Wrap(err, "invalid log.level")
		return err
	}

	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		err = errors.Errorf("log.format must be 'text' or 'json', got %q", c.Log.Format)
		return err
	}

	return err
}

// Timeout parses RequestTimeout. Zero means no deadline.
func (c *Config) Timeout() (d time.Duration, err error) {
	if c.RequestTimeout == "" {
		return d, err
	}
	d, err = time.ParseDuration(c.RequestTimeout)
	if err != nil {
		err = errors.Wrapf(err, "invalid request_timeout: %s", c.RequestTimeout)
		return d, err
	}
	if d < 0 {
		err = errors.Errorf("request_timeout must not be negative: %s", c.RequestTimeout)
		return d, err
	}
	return d, err
}

// ClientOptions returns the retrieval client settings.
func (c *Config) ClientOptions() (opts client.Options) {
	opts = client.Options{
		BaseURL:               c.BaseURL,
		UserAgent:             c.UserAgent,
		MaxConcurrentRequests: c.MaxConcurrentRequests,
	}
	return opts
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	var data []byte
	data, err = json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
