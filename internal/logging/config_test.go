// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	rt := DefaultConfig(ProfileRuntime)
	assert.Equal(t, zerolog.InfoLevel, rt.Level)
	assert.True(t, rt.Timestamp)

	tc := DefaultConfig(ProfileTest)
	assert.Equal(t, zerolog.DebugLevel, tc.Level)
	assert.False(t, tc.Timestamp)
}

func TestApplyEnvOverrides(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Config
	}{
		{"no env", nil, Config{Level: zerolog.InfoLevel, Timestamp: true}},
		{"level", map[string]string{EnvLogLevel: " WARNING "}, Config{Level: zerolog.WarnLevel, Timestamp: true}},
		{"off", map[string]string{EnvLogLevel: "off"}, Config{Level: zerolog.Disabled, Timestamp: true}},
		{"unknown level ignored", map[string]string{EnvLogLevel: "loud"}, Config{Level: zerolog.InfoLevel, Timestamp: true}},
		{"flags", map[string]string{EnvLogTimestamp: "false", EnvLogNoColor: "1"}, Config{Level: zerolog.InfoLevel, NoColor: true}},
		{"bad bool ignored", map[string]string{EnvLogNoColor: "maybe"}, Config{Level: zerolog.InfoLevel, Timestamp: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Level: zerolog.InfoLevel, Timestamp: true}
			ApplyEnvOverrides(&cfg, func(k string) string { return tt.env[k] })
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: zerolog.WarnLevel, NoColor: true, Out: &buf})

	l.Info().Msg("quiet")
	l.Warn().Str("component", "hero").Msg("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
	assert.Contains(t, out, "component=hero")
}

func TestSetVerbose_ShowsDebugAfterSetup(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	cfg := DefaultConfig(ProfileRuntime)
	cfg.Out, cfg.NoColor = &buf, true
	install(cfg)

	before := Logger("apply")
	before.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	SetVerbose()
	after := Logger("apply")
	after.Debug().Msg("retrying")
	assert.Contains(t, buf.String(), "retrying")
	assert.Contains(t, buf.String(), "scope=apply")
	assert.NotContains(t, buf.String(), "hidden")
}
