// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/bartekus/devflow/internal/logging"
	"github.com/bartekus/devflow/internal/normalize"
	"github.com/bartekus/devflow/internal/reconcile"
	"github.com/bartekus/devflow/internal/schema"
	"github.com/bartekus/devflow/internal/source"
)

func newNormalizeCmd(g *globals) *cobra.Command {
	var wire bool
	cmd := &cobra.Command{
		Use:   "normalize [path|-]...",
		Short: "Print the canonical form of component definitions",
		Long:  "Normalize component definitions offline and print them as JSON. Reads stdin when no path is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			log := logging.Logger("normalize")
			doc, err := source.Loader{Stdin: cmd.InOrStdin(), Log: log}.Load(args...)
			if err != nil {
				return err
			}
			raw := doc.Components
			if wire {
				raw = reconcile.WireRootPage(raw)
			}

			out := make([]schema.Component, 0, len(raw))
			var failed int
			for _, r := range raw {
				c, err := normalize.Normalize(r)
				if err != nil {
					failed++
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "invalid component: %v\n", err)
					continue
				}
				out = append(out, c)
			}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding components: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			if failed > 0 {
				return fmt.Errorf("%d of %d component(s) invalid", failed, len(raw))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&wire, "wire", false, "add or rewire the root page component")
	return cmd
}
