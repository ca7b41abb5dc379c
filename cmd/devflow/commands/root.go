// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Devflow - Component schema scaffolding and reconciliation for headless CMS spaces.
It normalizes generated component definitions, diffs them against a remote space,
and applies them idempotently through a rate-limited management API client.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bartekus/devflow/cmd/devflow/internal/clierr"
	"github.com/bartekus/devflow/internal/config"
	"github.com/bartekus/devflow/internal/logging"
	"github.com/bartekus/devflow/internal/projectroot"
	"github.com/bartekus/devflow/internal/reconcile"
	"github.com/bartekus/devflow/internal/storyblok"
	"github.com/bartekus/devflow/internal/transport"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	stateDir   string
	verbose    bool
}

// NewRootCmd constructs the devflow root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("DEVFLOW_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}
	g := &globals{}

	cmd := &cobra.Command{
		Use:           "devflow",
		Short:         "Devflow - component schema reconciliation for Storyblok spaces",
		Long:          "Devflow normalizes generated component schemas, diffs them against a space and applies them safely.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.ConfigureRuntime()
			if g.verbose {
				logging.SetVerbose()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/devflow/config.toml)")
	cmd.PersistentFlags().StringVar(&g.stateDir, "state-dir", "", "directory for run state (default .devflow/run at the project root)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of devflow",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "devflow version %s\n", version)
		},
	})

	cmd.AddCommand(newSpacesCmd(g))
	cmd.AddCommand(newApplyCmd(g))
	cmd.AddCommand(newFixTypesCmd(g))
	cmd.AddCommand(newNormalizeCmd(g))
	cmd.AddCommand(newReportCmd(g))

	return cmd
}

func (g *globals) config() (config.Config, error) {
	cfg, err := config.Load(config.Options{Path: g.configPath})
	if err != nil {
		return config.Config{}, err
	}
	if g.stateDir != "" {
		cfg.StateDir = g.stateDir
	}
	return cfg, nil
}

func (g *globals) client(cfg config.Config, log zerolog.Logger) (*storyblok.Client, error) {
	c, err := cfg.Client(transport.WithLogger(log))
	if err != nil {
		return nil, clierr.Wrap(clierr.ExitAuth, "missing credentials", err)
	}
	return c, nil
}

func (g *globals) store(cfg config.Config) (*reconcile.StateStore, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	dir, err := projectroot.Anchor(wd, cfg.StateDir)
	if err != nil {
		return nil, err
	}
	return reconcile.NewStateStore(dir), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
