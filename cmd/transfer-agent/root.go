package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kubev2v/transfer-agent/internal/config"
)

func newRootCmd() *cobra.Command {
	var cfg *config.Configuration

	root := &cobra.Command{
		Use:          "transfer-agent",
		Short:        "Pull ODK forms into a briefcase storage",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Load(viper.New(), cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := newLogger(c.LogFormat, c.LogLevel)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			zap.S().Named("main").Debugw("configuration loaded", "config", c.DebugMap())
			*cfg = *c
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = zap.L().Sync()
		},
	}

	cfg = config.NewConfigurationWithDefaults()
	config.RegisterFlags(root.PersistentFlags(), cfg)

	root.AddCommand(
		newImportCmd(cfg),
		newExportCmd(cfg),
		newServeCmd(cfg),
	)

	return root
}

func newLogger(format, level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zc zap.Config
	switch format {
	case "json":
		zc = zap.NewProductionConfig()
	default:
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = lvl

	return zc.Build()
}
