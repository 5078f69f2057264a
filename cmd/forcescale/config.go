package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CK6170/forcescale-go/internal/config"
)

func NewConfigCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "config PATH",
		Short: "Write the effective configuration to a file",
		Long: `Write the effective configuration (defaults, --config and flags) to PATH.

The file is YAML when PATH ends in .yaml or .yml and JSON otherwise, and can
be passed back with --config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				if cfg.Serial == nil {
					cfg.Serial = &config.Serial{}
				}
				cfg.Serial.Port = port
				cfg.ApplyDefaults()
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "serial", "", "serial port of a sensor board to record in the file")
	return cmd
}
