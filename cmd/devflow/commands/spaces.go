// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bartekus/devflow/internal/logging"
	"github.com/bartekus/devflow/internal/projection"
)

func newSpacesCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spaces",
		Short: "List or create spaces",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the spaces the token can access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			client, err := g.client(cfg, logging.Logger("spaces"))
			if err != nil {
				return err
			}
			spaces, err := client.ListSpaces(cmd.Context())
			if err != nil {
				return remoteExit(err)
			}
			if len(spaces) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No spaces")
				return nil
			}
			rows := make([][]string, 0, len(spaces))
			for _, s := range spaces {
				rows = append(rows, []string{strconv.FormatInt(s.ID, 10), s.Name})
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), projection.RenderTable([]string{"ID", "Name"}, rows))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			client, err := g.client(cfg, logging.Logger("spaces"))
			if err != nil {
				return err
			}
			s, err := client.CreateSpace(cmd.Context(), args[0])
			if err != nil {
				return remoteExit(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created space %q (id %d)\n", s.Name, s.ID)
			return nil
		},
	})

	return cmd
}
