// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartekus/devflow/cmd/devflow/internal/clierr"
	"github.com/bartekus/devflow/internal/logging"
	"github.com/bartekus/devflow/internal/reconcile"
)

func newFixTypesCmd(g *globals) *cobra.Command {
	var (
		space  string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "fix-types",
		Short: "Re-normalize the field types of every component in a space",
		Long: `List the components of a space, normalize their field types, and report
the ones that differ. Pass --dry-run=false to write the fixes back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			space = firstNonEmpty(space, cfg.Space)
			if space == "" {
				return clierr.Usage("no target space: pass --space or set DEVFLOW_SPACE")
			}
			log := logging.Logger("fix-types")
			client, err := g.client(cfg, log)
			if err != nil {
				return err
			}

			report, err := reconcile.New(client, reconcile.WithLogger(log)).FixTypes(cmd.Context(), space, !dryRun)
			if report != nil {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), report.Markdown())
			}
			if err != nil {
				return remoteExit(err)
			}
			if dryRun && len(report.Fixes) > 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nDry run; pass --dry-run=false to apply.")
			}
			if report.Failed > 0 {
				return clierr.Newf(clierr.ExitPartial, "%d fix(es) failed", report.Failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&space, "space", "", "target space id (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "report fixes without writing")
	return cmd
}
