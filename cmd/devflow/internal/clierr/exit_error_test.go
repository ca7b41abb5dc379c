// SPDX-License-Identifier: AGPL-3.0-or-later

package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeOf(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", cause, ExitGeneric},
		{"explicit", New(ExitAuth, "denied"), ExitAuth},
		{"zero normalized", New(0, "odd"), ExitGeneric},
		{"wrapped twice", fmt.Errorf("apply: %w", Wrap(ExitPlanRequired, "parked", cause)), ExitPlanRequired},
		{"usage", Usage("missing %s", "--space"), ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeOf(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ExitPartial, "2 components failed", cause)
	assert.Equal(t, "2 components failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "alone", Wrap(ExitPartial, "alone", nil).Error())
}

func TestError_OmitsExitCode(t *testing.T) {
	err := Newf(ExitRateLimited, "space %s throttled", "42")
	assert.Equal(t, "space 42 throttled", err.Error())
	assert.Equal(t, "negative: boom", Wrap(-3, "negative", errors.New("boom")).Error())
	assert.Equal(t, ExitGeneric, ExitCodeOf(Wrap(-3, "negative", errors.New("boom"))))
}
