package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "TRANSFER_AGENT"

var envReplacer = strings.NewReplacer("-", "_")

type Configuration struct {
	Server    Server  `mapstructure:"server" debugmap:"visible"`
	Agent     Agent   `mapstructure:"agent" debugmap:"visible"`
	Storage   Storage `mapstructure:"storage" debugmap:"visible"`
	LogFormat string  `mapstructure:"log-format" default:"console" debugmap:"visible"`
	LogLevel  string  `mapstructure:"log-level" default:"info" debugmap:"visible"`
}

type Server struct {
	ServerMode string `mapstructure:"server-mode" default:"dev" debugmap:"visible"`
	HTTPPort   int    `mapstructure:"http-port" default:"8000" debugmap:"visible"`
}

type Agent struct {
	NumWorkers    int           `mapstructure:"workers" default:"4" debugmap:"visible"`
	MaxRetries    uint          `mapstructure:"max-retries" default:"3" debugmap:"visible"`
	RetryInterval time.Duration `mapstructure:"retry-interval" default:"200ms" debugmap:"visible"`
}

type Storage struct {
	// DataFolder holds the DuckDB file. Empty means an in-memory database.
	DataFolder string `mapstructure:"data-folder" debugmap:"visible"`
	StorageDir string `mapstructure:"storage-dir" default:"./briefcase" debugmap:"visible"`
}

// NewConfigurationWithDefaults returns a configuration holding the default values.
func NewConfigurationWithDefaults() *Configuration {
	c := &Configuration{}
	if err := defaults.Set(c); err != nil {
		// defaults only fails on malformed tags
		panic(err)
	}
	return c
}

// RegisterFlags adds the configuration flags to fs, using the defaults of cfg.
func RegisterFlags(fs *pflag.FlagSet, cfg *Configuration) {
	fs.String("log-format", cfg.LogFormat, "Log format: console or json")
	fs.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.String("server-mode", cfg.Server.ServerMode, "Server mode: dev or prod")
	fs.Int("http-port", cfg.Server.HTTPPort, "HTTP server port")
	fs.Int("workers", cfg.Agent.NumWorkers, "Number of scheduler workers")
	fs.Uint("max-retries", cfg.Agent.MaxRetries, "Retries of a failing form copy")
	fs.Duration("retry-interval", cfg.Agent.RetryInterval, "Initial interval between retries")
	fs.String("data-folder", cfg.Storage.DataFolder, "Folder of the DuckDB database, in-memory when empty")
	fs.String("storage-dir", cfg.Storage.StorageDir, "Briefcase storage directory")
}

// Load fills a configuration from defaults, environment (TRANSFER_AGENT_*) and fs.
func Load(v *viper.Viper, fs *pflag.FlagSet) (*Configuration, error) {
	cfg := NewConfigurationWithDefaults()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg.LogFormat = v.GetString("log-format")
	cfg.LogLevel = v.GetString("log-level")
	cfg.Server.ServerMode = v.GetString("server-mode")
	cfg.Server.HTTPPort = v.GetInt("http-port")
	cfg.Agent.NumWorkers = v.GetInt("workers")
	cfg.Agent.MaxRetries = v.GetUint("max-retries")
	cfg.Agent.RetryInterval = v.GetDuration("retry-interval")
	cfg.Storage.DataFolder = v.GetString("data-folder")
	cfg.Storage.StorageDir = v.GetString("storage-dir")

	return cfg, cfg.Validate()
}

func (c *Configuration) Validate() error {
	switch c.Server.ServerMode {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid server mode %q: must be 'dev' or 'prod'", c.Server.ServerMode)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be 'console' or 'json'", c.LogFormat)
	}
	if c.Agent.NumWorkers <= 0 {
		return fmt.Errorf("invalid number of workers %d", c.Agent.NumWorkers)
	}
	if c.Storage.StorageDir == "" {
		return fmt.Errorf("storage directory is empty")
	}
	return nil
}

// DebugMap returns the configuration as a map for logging.
func (c *Configuration) DebugMap() map[string]any {
	return map[string]any{
		"log-format":     c.LogFormat,
		"log-level":      c.LogLevel,
		"server-mode":    c.Server.ServerMode,
		"http-port":      c.Server.HTTPPort,
		"workers":        c.Agent.NumWorkers,
		"max-retries":    c.Agent.MaxRetries,
		"retry-interval": c.Agent.RetryInterval.String(),
		"data-folder":    c.Storage.DataFolder,
		"storage-dir":    c.Storage.StorageDir,
	}
}
