// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/devflow/cmd/devflow/internal/clierr"
	"github.com/bartekus/devflow/internal/logging"
	"github.com/bartekus/devflow/internal/normalize"
	"github.com/bartekus/devflow/internal/reconcile"
	"github.com/bartekus/devflow/internal/schema"
	"github.com/bartekus/devflow/internal/source"
)

type applyOptions struct {
	space               string
	dryRun              bool
	noPost              bool
	failFast            bool
	continueOnRateLimit bool
	noRootPage          bool
	retryFailed         bool
	pendingOut          string
}

func newApplyCmd(g *globals) *cobra.Command {
	o := &applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply <path|-> [path...]",
		Short: "Normalize components and create or update them in a space",
		Long: `Load component definitions from JSON or YAML files, directories or stdin,
wire them under a root page, and reconcile them one at a time against the space.
Existing components are updated by id; new ones are created.
If the space plan refuses new components, the rest of the batch is written to a
pending file that can be applied later.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, g, o, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.space, "space", "", "target space id (default from config or the input file)")
	f.BoolVar(&o.dryRun, "dry-run", false, "show what would change without writing")
	f.BoolVar(&o.noPost, "no-post", false, "write the wired batch to the pending file without calling the API")
	f.BoolVar(&o.failFast, "fail-fast", false, "stop at the first failed component")
	f.BoolVar(&o.continueOnRateLimit, "continue-on-rate-limit", false, "keep going when a component exhausts its rate-limit retries")
	f.BoolVar(&o.noRootPage, "no-root-page", false, "do not add or rewire the root page component")
	f.BoolVar(&o.retryFailed, "retry-failed", false, "only apply components that failed in the last run")
	f.StringVar(&o.pendingOut, "pending-out", "", "pending file path (default devflow.generated.components.json)")
	return cmd
}

func runApply(cmd *cobra.Command, g *globals, o *applyOptions, args []string) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	log := logging.Logger("apply")
	out := cmd.OutOrStdout()

	doc, err := source.Loader{Stdin: cmd.InOrStdin(), Log: log}.Load(args...)
	if err != nil {
		return err
	}
	store, err := g.store(cfg)
	if err != nil {
		return err
	}

	candidates := doc.Components
	if o.retryFailed {
		failed, err := store.LoadFailed()
		if err != nil {
			return err
		}
		candidates = onlyNamed(candidates, failed)
		// a partial batch must not shrink the root page whitelist
		o.noRootPage = true
	}
	if len(candidates) == 0 {
		_, _ = fmt.Fprintln(out, "Nothing to apply")
		return nil
	}

	space := firstNonEmpty(o.space, cfg.Space, doc.SpaceID)
	if space == "" && !o.noPost {
		return clierr.Usage("no target space: pass --space or set DEVFLOW_SPACE")
	}

	var api reconcile.API
	if !o.noPost {
		client, err := g.client(cfg, log)
		if err != nil {
			return err
		}
		api = client
	}

	batch := reconcile.NewBatch(reconcile.New(api, reconcile.WithLogger(log)), store, reconcile.Options{
		DryRun:              o.dryRun,
		NoPost:              o.noPost,
		FailFast:            o.failFast,
		ContinueOnRateLimit: o.continueOnRateLimit,
		SkipRootPage:        o.noRootPage,
		PendingPath:         firstNonEmpty(o.pendingOut, cfg.PendingPath),
		OnResult:            func(r reconcile.ComponentResult) { printResult(out, r) },
	})

	report, runErr := batch.Run(cmd.Context(), space, candidates)
	if report != nil {
		_, _ = fmt.Fprintf(out, "\n%s\n", report.Summary())
		if report.PendingPath != "" {
			_, _ = fmt.Fprintf(out, "Pending components written to %s; re-run apply with that file once the plan allows it.\n", report.PendingPath)
		}
	}
	if runErr != nil {
		return remoteExit(runErr)
	}
	if n := len(report.Failed); n > 0 {
		return clierr.Newf(clierr.ExitPartial, "%d component(s) failed: %s", n, strings.Join(report.Failed, ", "))
	}
	return nil
}

func printResult(w io.Writer, r reconcile.ComponentResult) {
	line := fmt.Sprintf("%-12s %s", r.Outcome, r.Name)
	if r.RemoteID != 0 {
		line += fmt.Sprintf(" (id %d)", r.RemoteID)
	}
	if r.Breaking {
		line += " [BREAKING]"
	}
	_, _ = fmt.Fprintln(w, line)
	if r.Diff != nil && !r.Diff.Empty() {
		for _, l := range strings.Split(r.Diff.String(), "\n") {
			_, _ = fmt.Fprintf(w, "    %s\n", l)
		}
	}
	if r.Error != "" {
		_, _ = fmt.Fprintf(w, "    error: %s\n", r.Error)
	}
}

func onlyNamed(candidates []*schema.Object, names []string) []*schema.Object {
	out := make([]*schema.Object, 0, len(names))
	for _, c := range candidates {
		name, _ := normalize.Peek(c)
		if slices.Contains(names, name) {
			out = append(out, c)
		}
	}
	return out
}
