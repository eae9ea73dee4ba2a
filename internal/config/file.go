package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk form of the sidecar configuration.
//
//	name: api
//	path: ./bin/api
//	args: ["--port", "4040"]
//	env:
//	  LOG_LEVEL: debug
//	cwd: /srv/app
//	shutdown_command: "sidecar shutdown"
type File struct {
	Name            string            `yaml:"name"`
	Path            string            `yaml:"path"`
	Args            []string          `yaml:"args"`
	Env             map[string]string `yaml:"env"`
	Cwd             string            `yaml:"cwd"`
	ShutdownCommand string            `yaml:"shutdown_command"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &f, nil
}

// Apply copies every non-empty field of f onto o.
func (f *File) Apply(o *Options) {
	if f.Name != "" {
		o.Name = f.Name
	}

	if f.Path != "" {
		o.BinaryPath = f.Path
	}

	if len(f.Args) > 0 {
		o.Args = f.Args
	}

	if len(f.Env) > 0 {
		if o.Env == nil {
			o.Env = make(map[string]string, len(f.Env))
		}

		for k, v := range f.Env {
			o.Env[k] = v
		}
	}

	if f.Cwd != "" {
		o.Cwd = f.Cwd
	}

	if f.ShutdownCommand != "" {
		o.ShutdownCommand = f.ShutdownCommand
	}
}
