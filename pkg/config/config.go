// Package config holds the server configuration: YAML file plus HTTPBIN_
// environment overrides.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration
type Config struct {
	ListenAddr        string        `yaml:"listen_addr"`
	MaxBodySize       int64         `yaml:"max_body_size"`
	MaxDuration       time.Duration `yaml:"max_duration"`     // upper bound for drip and delay
	MaxStreamLines    int           `yaml:"max_stream_lines"` // /stream/{n} is capped here
	LineInterval      time.Duration `yaml:"line_interval"`
	RedirectStatus    int           `yaml:"redirect_status"` // 302 or 307
	EnableH2C         bool          `yaml:"enable_h2c"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	Log               LogConfig     `yaml:"log"`
}

// LogConfig selects logger level and encoding
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ListenAddr:        ":8080",
		MaxBodySize:       1 << 20,
		MaxDuration:       10 * time.Second,
		MaxStreamLines:    100,
		LineInterval:      50 * time.Millisecond,
		RedirectStatus:    http.StatusFound,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("config unmarshal: %w", err)
		}
	}
	applyEnvOverrides(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyEnvOverrides applies HTTPBIN_ variables. Unparsable values are ignored.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("HTTPBIN_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("HTTPBIN_MAX_BODY_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxBodySize = n
		}
	}
	if v := os.Getenv("HTTPBIN_MAX_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MaxDuration = d
		}
	}
	if v := os.Getenv("HTTPBIN_MAX_STREAM_LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxStreamLines = n
		}
	}
	if v := os.Getenv("HTTPBIN_ENABLE_H2C"); v != "" {
		c.EnableH2C = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("HTTPBIN_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HTTPBIN_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// Validate rejects unusable limits
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listen_addr is required")
	}
	if c.MaxBodySize <= 0 {
		return fmt.Errorf("config: max_body_size must be positive")
	}
	if c.MaxDuration <= 0 {
		return fmt.Errorf("config: max_duration must be positive")
	}
	if c.MaxStreamLines <= 0 {
		return fmt.Errorf("config: max_stream_lines must be positive")
	}
	if c.LineInterval <= 0 {
		return fmt.Errorf("config: line_interval must be positive")
	}
	if c.RedirectStatus != http.StatusFound && c.RedirectStatus != http.StatusTemporaryRedirect {
		return fmt.Errorf("config: redirect_status must be 302 or 307, got %d", c.RedirectStatus)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}
