package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/killreel/internal/config"
	"github.com/ivlev/killreel/internal/logging"
)

type commandContext struct {
	configFlag *string
	logLevel   *string

	config *config.Config
	logger *zap.Logger
}

func newCommandContext(configFlag, logLevel *string) *commandContext {
	return &commandContext{configFlag: configFlag, logLevel: logLevel}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	cfg, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, err
	}
	cfg.BuildVersion = version
	c.config = cfg
	return cfg, nil
}

func (c *commandContext) ensureLogger() (*zap.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if *c.logLevel != "" {
		level = *c.logLevel
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	c.logger = logger
	return logger, nil
}

// sourceFlags are shared by every command that reads the source and its timestamps.
type sourceFlags struct {
	source     string
	timestamps string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "Source gameplay video (default: latest in input/video)")
	cmd.Flags().StringVarP(&f.timestamps, "timestamps", "t", "", "Timestamps file (default: <video>_kill_timestamps.txt)")
}

func (f *sourceFlags) apply(cfg *config.Config) {
	if f.source != "" {
		cfg.SourcePath = f.source
	}
	if f.timestamps != "" {
		cfg.TimestampsPath = f.timestamps
	}
}
