// Package config loads the scheduler's JSON configuration file: monitor API
// server settings, the Postgres store, and the camera/telescope command
// channel endpoints. The observing site itself is not part of this file --
// it is selected from internal/site's compiled-in table by the SITE_NAME
// environment variable, per spec.md §6.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Camera    CameraConfig    `json:"camera"`
	Telescope TelescopeConfig `json:"telescope"`
	Weather   WeatherConfig   `json:"weather"`
}

// ServerConfig contains the monitor API's HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host"`

	// TLSEnabled determines if HTTPS should be used
	TLSEnabled bool `json:"tls_enabled"`

	// TLSCertFile is the path to the TLS certificate
	TLSCertFile string `json:"tls_cert_file"`

	// TLSKeyFile is the path to the TLS private key
	TLSKeyFile string `json:"tls_key_file"`
}

// DatabaseConfig contains database connection settings for the recovery
// mirror (internal/store).
type DatabaseConfig struct {
	// Driver is the database driver (postgres, mysql, sqlite)
	Driver string `json:"driver"`

	// Host is the database server hostname
	Host string `json:"host"`

	// Port is the database server port
	Port int `json:"port"`

	// Database is the database name
	Database string `json:"database"`

	// Username for database authentication
	Username string `json:"username"`

	// Password for database authentication (should be loaded from environment)
	Password string `json:"password"`

	// SSLMode for PostgreSQL connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode"`

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int `json:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int `json:"max_idle_conns"`
}

// CameraConfig contains the camera command channel's TCP endpoint.
type CameraConfig struct {
	// Host is the camera controller's host name; the client adds the
	// command and status ports (internal/camera.CommandPort/StatusPort)
	Host string `json:"host"`
}

// TelescopeConfig contains the telescope command channel's TCP endpoint.
type TelescopeConfig struct {
	// Host is the telescope controller's host name; the client adds
	// internal/telescope.CommandPort
	Host string `json:"host"`
}

// WeatherConfig controls how the observation loop gates on weather, per
// spec.md §4.4 step 3.
type WeatherConfig struct {
	// FilePath names a simulated-run weather file (internal/weather.ParseFile
	// format). cmd/scheduler does not read it: it loads a weather file only
	// from its optional sixth command-line argument.
	FilePath string `json:"file_path,omitempty"`

	// PollIntervalSeconds is the dome-status poll interval setting.
	// obsloop.NewContext does not read it: its poller is fixed at 0.2 polls/s.
	PollIntervalSeconds float64 `json:"poll_interval_seconds"`
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, returns a default configuration.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	return &cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       "8080",
			Host:       "0.0.0.0",
			TLSEnabled: false,
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			Host:         "localhost",
			Port:         5432,
			Database:     "ls4scheduler",
			Username:     "ls4scheduler",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Camera: CameraConfig{
			Host: "localhost",
		},
		Telescope: TelescopeConfig{
			Host: "localhost",
		},
		Weather: WeatherConfig{
			PollIntervalSeconds: 5.0,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the
// config. This allows sensitive data to be kept out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if port := os.Getenv("LS4SCHEDULER_PORT"); port != "" {
		c.Server.Port = port
	}
	if dbPassword := os.Getenv("LS4SCHEDULER_DB_PASSWORD"); dbPassword != "" {
		c.Database.Password = dbPassword
	}
	if cameraHost := os.Getenv("LS4SCHEDULER_CAMERA_HOST"); cameraHost != "" {
		c.Camera.Host = cameraHost
	}
	if telescopeHost := os.Getenv("LS4SCHEDULER_TELESCOPE_HOST"); telescopeHost != "" {
		c.Telescope.Host = telescopeHost
	}
}
