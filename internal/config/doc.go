// Package config defines the configuration structure for the transfer-agent.
//
// Configuration is organized into logical sections (Server, Agent, Storage).
// Defaults come from `default` struct tags applied with creasty/defaults;
// values are then read through viper from command line flags and
// TRANSFER_AGENT_* environment variables (dashes become underscores).
//
// # Configuration Structure
//
//	Configuration
//	├── Server         - HTTP server settings
//	├── Agent          - Worker pool and retry settings
//	├── Storage        - DuckDB and briefcase storage locations
//	├── LogFormat      - Logging format
//	└── LogLevel       - Logging verbosity
//
// # Server Configuration
//
//	┌──────────────────┬─────────┬────────────────────────────────────────┐
//	│ Field            │ Default │ Description                            │
//	├──────────────────┼─────────┼────────────────────────────────────────┤
//	│ ServerMode       │ "dev"   │ Server mode: "prod" or "dev"           │
//	│ HTTPPort         │ 8000    │ HTTP server listen port                │
//	└──────────────────┴─────────┴────────────────────────────────────────┘
//
// # Agent Configuration
//
//	┌─────────────────────┬────────────────┬──────────────────────────────────────┐
//	│ Field               │ Default        │ Description                          │
//	├─────────────────────┼────────────────┼──────────────────────────────────────┤
//	│ NumWorkers          │ 4              │ Number of scheduler workers          │
//	│ MaxRetries          │ 3              │ Retries of a failing form copy       │
//	│ RetryInterval       │ 200ms          │ Initial backoff between retries      │
//	└─────────────────────┴────────────────┴──────────────────────────────────────┘
//
// # Storage Configuration
//
//	┌─────────────┬───────────────┬────────────────────────────────────────┐
//	│ Field       │ Default       │ Description                            │
//	├─────────────┼───────────────┼────────────────────────────────────────┤
//	│ DataFolder  │ ""            │ DuckDB folder, in-memory when empty    │
//	│ StorageDir  │ "./briefcase" │ Root of the pulled forms               │
//	└─────────────┴───────────────┴────────────────────────────────────────┘
//
// # Usage Example
//
//	fs := cmd.PersistentFlags()
//	config.RegisterFlags(fs, config.NewConfigurationWithDefaults())
//	...
//	cfg, err := config.Load(viper.New(), fs)
//
// # Debug Logging
//
// DebugMap() returns the values for structured logging:
//
//	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())
package config
