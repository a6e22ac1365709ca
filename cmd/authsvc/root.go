// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/config"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/xdg"
)

// Global flags available to all subcommands.
var (
	configFile string
	envFiles   []string
)

// NewRootCmd creates the root command for the authsvc CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authsvc",
		Short: "authsvc - account signup, login and password recovery",
		Long: `authsvc registers accounts, authenticates them with bearer tokens
and runs self-service password recovery over a JSON HTTP API.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML, default $XDG_CONFIG_HOME/authsvc/config.yaml)")
	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading the environment")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig reads configuration for cmd. Without --config it falls back to
// $XDG_CONFIG_HOME/authsvc/config.yaml when that exists. Flags that appear in
// config.FlagKeys override every other source.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	if path == "" {
		found, err := xdg.FindConfigFile()
		if err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
		}
		path = found
	}
	//nolint:wrapcheck // config errors carry their own oops codes
	return config.Load(config.LoadOptions{
		File:     path,
		EnvFiles: envFiles,
		Flags:    cmd.Flags(),
	})
}
