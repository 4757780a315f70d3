// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/lantern/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the board configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to --config",
	Long: `Write the built-in defaults to the --config path (lantern.yaml unless set)
so they can be edited. An existing file is kept unless --force is given.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE:        runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	return writeDefaultConfig(configPath, configForce)
}

func writeDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("default configuration written")
	return nil
}
