package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Remote RemoteConfig      `yaml:"remote"`
	Sync   SyncConfig        `yaml:"sync"`
	MCP    MCPConfig         `yaml:"mcp"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Remote.Validate(); err != nil {
		return err
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// RemoteConfig holds the upstream API connection settings. An empty BaseURL
// runs the application in permanently offline mode.
type RemoteConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the remote configuration.
func (c *RemoteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// SyncConfig holds sync engine tuning.
type SyncConfig struct {
	Interval      time.Duration `yaml:"interval"`
	ItemTimeout   time.Duration `yaml:"item_timeout"`
	ProbeInterval time.Duration `yaml:"probe_interval"`
	PullLimit     int           `yaml:"pull_limit"`
}

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Interval, validation.Min(time.Second)),
		validation.Field(&c.ItemTimeout, validation.Min(time.Second)),
		validation.Field(&c.ProbeInterval, validation.Min(time.Second)),
		validation.Field(&c.PullLimit, validation.Min(1), validation.Max(1000)),
	)
}

// MCPConfig controls the stdio MCP server.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./cortex.db",
		},
		Remote: RemoteConfig{
			Timeout: 30 * time.Second,
		},
		Sync: SyncConfig{
			Interval:      30 * time.Second,
			ItemTimeout:   30 * time.Second,
			ProbeInterval: 15 * time.Second,
			PullLimit:     100,
		},
		MCP: MCPConfig{
			Enabled: false,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
