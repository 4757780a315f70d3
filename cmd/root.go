// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/lantern/internal/config"
	"github.com/Thermoquad/lantern/pkg/gourd"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	configPath string
	logLevel   string

	// Loaded by PersistentPreRunE
	cfg *config.Config
)

// Commands carrying this annotation run without loading the config file
const annotationSkipConfig = "lantern/skip-config"

var rootCmd = &cobra.Command{
	Use:   "lantern",
	Short: "Gourd LED board host and protocol tool",
	Long: `Lantern - runs the Gourd LED animation engine and talks to the boards.

The strip and eyes roles render frames from the commands they receive. The
sender commands, raw_log, packet_test, replay and bridge speak the 35-byte
Gourd packet protocol to a board or a network bridge.

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the LANTERN_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", gourd.DefaultBaudRate, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "lantern.yaml", "Board configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
}

func setup(cmd *cobra.Command, args []string) error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if cmd.Annotations[annotationSkipConfig] == "true" {
		return nil
	}

	// An explicit --config must exist; the default path is optional
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadOrDefault(configPath)
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log.Debug().Str("path", configPath).Str("driver", cfg.Driver).Msg("config loaded")
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
