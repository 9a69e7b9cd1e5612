// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appinsight/insightviz/internal/analytics"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insightviz.yaml")
	content := `convention: raw
verify_output: true
log:
  level: debug
  format: json
server:
  http_addr: ":8090"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, analytics.ConventionRaw, cfg.Convention)
	assert.True(t, cfg.VerifyOutput)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, ":8090", cfg.Server.HTTPAddr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insightviz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("convention: raw\n"), 0o600))

	t.Setenv("INSIGHTVIZ_CONVENTION", "dashboard")
	t.Setenv("INSIGHTVIZ_LOG_LEVEL", "warn")
	t.Setenv("INSIGHTVIZ_VERIFY_OUTPUT", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, analytics.ConventionDashboard, cfg.Convention)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.VerifyOutput)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config")

	t.Setenv("INSIGHTVIZ_CONVENTION", "legacy")
	_, err = Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, analytics.ErrUnknownConvention)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty convention means dashboard", mutate: func(c *Config) { c.Convention = "" }},
		{name: "bad convention", mutate: func(c *Config) { c.Convention = "mixed" }, wantErr: "unknown convention"},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: "unknown log level"},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "unknown log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
