// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"

	"github.com/bartekus/devflow/cmd/devflow/internal/clierr"
	"github.com/bartekus/devflow/internal/reconcile"
	"github.com/bartekus/devflow/internal/storyblok"
)

// remoteExit attaches the exit code matching a remote failure class.
func remoteExit(err error) error {
	if err == nil {
		return nil
	}
	var ec clierr.ExitCoder
	if errors.As(err, &ec) {
		return err
	}
	switch {
	case errors.Is(err, reconcile.ErrPlanRequired), storyblok.IsPlanRequired(err):
		return clierr.Wrap(clierr.ExitPlanRequired, "plan restriction", err)
	case storyblok.IsAuth(err):
		return clierr.Wrap(clierr.ExitAuth, "authentication failed", err)
	case storyblok.IsRateLimited(err):
		return clierr.Wrap(clierr.ExitRateLimited, "rate limited", err)
	default:
		return err
	}
}
