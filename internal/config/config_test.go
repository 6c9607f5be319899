package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logmux/internal/filter"
)

func noPipe(t *testing.T) {
	t.Helper()
	old := stdinIsPipe
	stdinIsPipe = func() bool { return false }
	t.Cleanup(func() { stdinIsPipe = old })
	for _, k := range []string{"LOGMUX_SHELL", "LOGMUX_THEME", "LOGMUX_CONFIG", "LOGMUX_REFRESH_MS"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "logmux.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDefaults(t *testing.T) {
	noPipe(t)
	cfg, err := Load([]string{"make test", "tail -f /var/log/syslog"})
	require.NoError(t, err)
	assert.Equal(t, []string{"make test", "tail -f /var/log/syslog"}, cfg.Commands)
	assert.Empty(t, cfg.Shell, "commands are exec'd directly unless a shell is chosen")
	assert.Equal(t, ThemeDark, cfg.Theme)
	assert.Equal(t, 100*time.Millisecond, cfg.Refresh)
	assert.Equal(t, 3, cfg.WheelLines)
	assert.Equal(t, filter.Default(), cfg.Filter)
	assert.False(t, cfg.UseStdin)
}

func TestNoInput(t *testing.T) {
	noPipe(t)
	_, err := Load(nil)
	assert.ErrorIs(t, err, ErrNoInput)

	cfg, err := Load([]string{"--stdin"})
	require.NoError(t, err)
	assert.True(t, cfg.UseStdin)
}

func TestPipedStdinIsAutomatic(t *testing.T) {
	noPipe(t)
	stdinIsPipe = func() bool { return true }
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.True(t, cfg.UseStdin)
	assert.True(t, cfg.IsPipedStdin)
}

func TestRepeatableFileFlag(t *testing.T) {
	noPipe(t)
	cfg, err := Load([]string{"--file", "a.log", "--file=b.log"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.log", "b.log"}, cfg.Files)
	assert.Empty(t, cfg.Commands)
}

func TestPrecedence(t *testing.T) {
	noPipe(t)
	p := writeConfig(t, `
theme: light
shell: zsh
refresh_ms: 250
wheel_lines: 5
commands: ["echo from-file"]
files: [app.log]
redact: true
show:
  stderr: false
  lines: true
`)
	t.Setenv("LOGMUX_CONFIG", p)

	cfg, err := Load([]string{"echo from-cli"})
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, cfg.Theme)
	assert.Equal(t, "zsh", cfg.Shell)
	assert.Equal(t, 250*time.Millisecond, cfg.Refresh)
	assert.Equal(t, 5, cfg.WheelLines)
	assert.True(t, cfg.Redact)
	assert.Equal(t, []string{"echo from-file", "echo from-cli"}, cfg.Commands)
	assert.Equal(t, []string{"app.log"}, cfg.Files)
	assert.Equal(t, filter.State{Stdout: true, Time: true, Source: true, Lines: true}, cfg.Filter)

	t.Setenv("LOGMUX_SHELL", "bash")
	cfg, err = Load([]string{"x"})
	require.NoError(t, err)
	assert.Equal(t, "bash", cfg.Shell, "env beats file")

	cfg, err = Load([]string{"--shell", "dash", "--theme", "dark", "--wheel-lines", "1", "x"})
	require.NoError(t, err)
	assert.Equal(t, "dash", cfg.Shell, "flag beats env")
	assert.Equal(t, ThemeDark, cfg.Theme)
	assert.Equal(t, 1, cfg.WheelLines)
}

func TestConfigFlagOverridesEnv(t *testing.T) {
	noPipe(t)
	t.Setenv("LOGMUX_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	p := writeConfig(t, "theme: light\n")
	cfg, err := Load([]string{"--config", p, "x"})
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, cfg.Theme)
}

func TestInvalidConfigs(t *testing.T) {
	noPipe(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad theme", []string{"--theme", "neon", "x"}, "invalid theme"},
		{"bad refresh", []string{"--refresh-ms", "1", "x"}, "below 10ms"},
		{"bad wheel", []string{"--wheel-lines", "0", "x"}, "wheel-lines"},
		{"missing file", []string{"--config", "/nonexistent/logmux.yaml", "x"}, "config file"},
		{"unknown flag", []string{"--bogus", "x"}, "bogus"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("colour: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")

	fc, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fc.Commands)
}

func TestVersionSkipsValidation(t *testing.T) {
	noPipe(t)
	cfg, err := Load([]string{"--version"})
	require.NoError(t, err)
	assert.True(t, cfg.ShowVersion)
}

func TestHelp(t *testing.T) {
	noPipe(t)
	_, err := Load([]string{"-h"})
	assert.ErrorIs(t, err, flag.ErrHelp)
}
