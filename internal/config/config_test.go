package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/api"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TADA_API_URL", "TADA_LOG_LEVEL", "TADA_LOG_FORMAT", "TADA_LOG_FILE", "TADA_THEME", "TADA_COLOR", "NO_COLOR"} {
		t.Setenv(k, "")
	}
}

// inTempDir runs the test from an empty directory so no stray tada.toml is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	assert.Equal(t, api.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, DefaultTheme, cfg.Theme)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.False(t, cfg.Group)
}

func TestLoad_NoSources(t *testing.T) {
	clearEnv(t)
	inTempDir(t)

	cfg, err := Load(flag.NewFlagSet("todo", flag.ContinueOnError), nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
}

func TestLoad_Layering(t *testing.T) {
	clearEnv(t)
	dir := inTempDir(t)

	file := `api_url = "http://file:1"
log_level = "debug"
theme = "neon"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tada.toml"), []byte(file), 0o644))
	t.Setenv("TADA_API_URL", "http://env:2")

	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-theme", "mono", "-group", "ls"})
	require.NoError(t, err)

	assert.Equal(t, "http://env:2", cfg.BaseURL, "env overrides file")
	assert.Equal(t, "debug", cfg.LogLevel, "file overrides default")
	assert.Equal(t, "mono", cfg.Theme, "flag overrides file")
	assert.True(t, cfg.Group)
	assert.Equal(t, []string{"ls"}, fs.Args())
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tada.toml"), []byte("api_url = "), 0o644))

	_, err := Load(nil, nil)
	assert.Error(t, err)
}

func TestLoad_UnknownTheme(t *testing.T) {
	clearEnv(t)
	inTempDir(t)

	_, err := Load(flag.NewFlagSet("todo", flag.ContinueOnError), []string{"-theme", "plaid"})
	assert.ErrorContains(t, err, "unknown theme")
}

func TestLoad_Color(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "default", want: ColorAuto},
		{name: "NO_COLOR", env: map[string]string{"NO_COLOR": "1"}, want: ColorNever},
		{name: "TADA_COLOR beats NO_COLOR", env: map[string]string{"NO_COLOR": "1", "TADA_COLOR": "always"}, want: ColorAlways},
		{name: "flag beats env", env: map[string]string{"NO_COLOR": "1"}, args: []string{"-color", "Always"}, want: ColorAlways},
		{name: "unknown", args: []string{"-color", "sometimes"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			inTempDir(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(flag.NewFlagSet("todo", flag.ContinueOnError), tt.args)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unknown color mode")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Color)
		})
	}
}
