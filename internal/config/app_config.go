package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultEnvFile is the local configuration source read before the process
// environment is parsed.
const DefaultEnvFile = ".env"

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// SenderEmail and SenderPassword authenticate against the mail relay.
	// Both must be set for any email to be sent.
	SenderEmail    string `envconfig:"SENDER_EMAIL"`
	SenderPassword string `envconfig:"SENDER_PASSWORD"`

	// SenderName is the display name used in the From header.
	SenderName string `envconfig:"SENDER_NAME" default:"Swiftline Admin"`

	SMTPHost string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"465"`

	// SMTPEncryption is one of "ssl_tls" (implicit TLS), "starttls" or "none".
	SMTPEncryption string        `envconfig:"SMTP_ENCRYPTION" default:"ssl_tls"`
	SMTPTimeout    time.Duration `envconfig:"SMTP_TIMEOUT" default:"15s"`

	// Port is the HTTP port the event trigger listens on.
	Port int `envconfig:"PORT" default:"8080"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogDir enables rotated file logging. Empty means stdout.
	LogDir string `envconfig:"LOG_DIR"`

	// DataDir holds the delivery log database. Defaults to ~/.driver-notify.
	DataDir string `envconfig:"DATA_DIR"`

	// MongoURI enables the change stream watcher when set.
	MongoURI          string `envconfig:"MONGO_URI"`
	MongoDatabase     string `envconfig:"MONGO_DATABASE" default:"swiftline"`
	DriversCollection string `envconfig:"DRIVERS_COLLECTION" default:"drivers"`

	// EventWorkers is the number of concurrent invocations for bus-delivered events.
	EventWorkers int `envconfig:"EVENT_WORKERS" default:"3"`

	// DeliveryLogRetention is how long delivery log rows are kept.
	DeliveryLogRetention time.Duration `envconfig:"DELIVERY_LOG_RETENTION" default:"720h"`
}

// Load reads the local env file (ENV_FILE, default .env) without overriding
// variables already present, then processes AppConfig from the environment.
// A missing env file is not an error.
func Load() (*AppConfig, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file %q: %w", envFile, err)
	}

	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".driver-notify")
	}
	if c.EventWorkers <= 0 {
		c.EventWorkers = 3
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DatabasePath returns the path to the sqlite delivery log.
func (c *AppConfig) DatabasePath() string {
	return filepath.Join(c.DataDir, "deliveries.db")
}

// MongoEnabled reports whether the change stream watcher should run.
func (c *AppConfig) MongoEnabled() bool {
	return c.MongoURI != ""
}
