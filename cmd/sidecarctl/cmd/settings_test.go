package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerSettingsFlags(flags)

	return flags
}

func TestParseSettings_FileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sidecar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: backend
path: /opt/app/backend
args: ["--port", "4040"]
env:
  LOG_LEVEL: info
shutdown_command: quit
`), 0o600))

	flags := newFlagSet()

	require.NoError(t, flags.Parse([]string{
		"--config", path,
		"--path", "/usr/local/bin/backend",
		"--env", "LOG_LEVEL=debug",
		"--debug",
	}))

	s, err := parseSettings(flags)
	require.NoError(t, err)

	require.True(t, s.debug)
	require.Equal(t, "backend", s.options.Name)
	require.Equal(t, "/usr/local/bin/backend", s.options.BinaryPath)
	require.Equal(t, []string{"--port", "4040"}, s.options.Args)
	require.Equal(t, map[string]string{"LOG_LEVEL": "debug"}, s.options.Env)
	require.Equal(t, "quit\n", string(s.options.Sentinel()))
	require.NotEmpty(t, s.sidecarOptions())
}

func TestParseSettings_MissingFile(t *testing.T) {
	flags := newFlagSet()
	require.NoError(t, flags.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}))

	_, err := parseSettings(flags)
	require.ErrorContains(t, err, "read config")
}

func TestParseSettings_Defaults(t *testing.T) {
	flags := newFlagSet()
	require.NoError(t, flags.Parse(nil))

	s, err := parseSettings(flags)
	require.NoError(t, err)
	require.False(t, s.debug)
	require.Equal(t, "api", s.options.SidecarName())
	require.Equal(t, "sidecar shutdown\n", string(s.options.Sentinel()))
}
