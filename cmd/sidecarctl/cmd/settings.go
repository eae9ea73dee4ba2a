package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	sidecar "github.com/wagiedev/sidecar-go"
	"github.com/wagiedev/sidecar-go/internal/config"
)

// settings collects the sidecar configuration from the config file and flags.
type settings struct {
	configPath string
	debug      bool
	options    config.Options
}

func registerSettingsFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a YAML sidecar configuration file")
	fs.String("name", "", "Sidecar executable name used for discovery (default \"api\")")
	fs.String("path", "", "Explicit path to the sidecar executable")
	fs.StringArray("arg", nil, "Argument passed to the sidecar (repeatable)")
	fs.StringToString("env", nil, "Extra environment variable for the sidecar (KEY=VALUE)")
	fs.String("cwd", "", "Working directory for the sidecar")
	fs.String("shutdown-command", "", "Line written to stdin to request shutdown")
	fs.Bool("debug", false, "Enable debug logging")
}

// loadSettings reads the config file, if any, then applies changed flags on top.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	return parseSettings(cmd.Flags())
}

func parseSettings(flags *pflag.FlagSet) (*settings, error) {
	s := &settings{}

	s.configPath, _ = flags.GetString("config")
	s.debug, _ = flags.GetBool("debug")

	if s.configPath != "" {
		f, err := config.LoadFile(s.configPath)
		if err != nil {
			return nil, err
		}

		f.Apply(&s.options)
	}

	if flags.Changed("name") {
		s.options.Name, _ = flags.GetString("name")
	}

	if flags.Changed("path") {
		s.options.BinaryPath, _ = flags.GetString("path")
	}

	if flags.Changed("arg") {
		s.options.Args, _ = flags.GetStringArray("arg")
	}

	if flags.Changed("env") {
		env, _ := flags.GetStringToString("env")
		(&config.File{Env: env}).Apply(&s.options)
	}

	if flags.Changed("cwd") {
		s.options.Cwd, _ = flags.GetString("cwd")
	}

	if flags.Changed("shutdown-command") {
		s.options.ShutdownCommand, _ = flags.GetString("shutdown-command")
	}

	return s, nil
}

// sidecarOptions converts the settings to supervisor options.
func (s *settings) sidecarOptions() []sidecar.Option {
	o := s.options

	opts := []sidecar.Option{
		sidecar.WithName(o.Name),
		sidecar.WithBinaryPath(o.BinaryPath),
		sidecar.WithCwd(o.Cwd),
		sidecar.WithShutdownCommand(o.ShutdownCommand),
	}

	if len(o.Args) > 0 {
		opts = append(opts, sidecar.WithArgs(o.Args...))
	}

	if len(o.Env) > 0 {
		opts = append(opts, sidecar.WithEnv(o.Env))
	}

	return opts
}
