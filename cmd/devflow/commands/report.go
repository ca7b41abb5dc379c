// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newReportCmd(g *globals) *cobra.Command {
	var (
		asJSON bool
		reset  bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the last apply run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			store, err := g.store(cfg)
			if err != nil {
				return err
			}
			if reset {
				if err := store.Reset(); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run state cleared")
				return nil
			}

			last, err := store.ReadLastRun()
			if err != nil {
				return err
			}
			if last == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No run recorded")
				return nil
			}
			if asJSON {
				data, err := json.MarshalIndent(last, "", "  ")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), last.Markdown())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw run state")
	cmd.Flags().BoolVar(&reset, "reset", false, "clear the run state")
	return cmd
}
