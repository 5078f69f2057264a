package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/CK6170/forcescale-go/internal/config"
)

var (
	logLevel   = ""
	configPath = ""
)

func setupLogger(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}
	return nil
}

// loadConfig reads --config when given and applies --log-level on top.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := setupLogger(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forcescale",
		Short: "forcescale turns a force-sensing trackpad or sensor board into a kitchen scale",
		Long: `forcescale turns a force-sensing trackpad or sensor board into a kitchen scale.

Readings are estimates: the sensor reports pressure, not mass, and the
conversion is a fixed linear map above the click threshold.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.json, .yaml)")

	cmd.AddCommand(
		NewServeCommand(),
		NewTUICommand(),
		NewWatchCommand(),
		NewReplayCommand(),
		NewConfigCommand(),
	)

	return cmd
}
