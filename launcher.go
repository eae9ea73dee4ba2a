package sidecar

import "github.com/wagiedev/sidecar-go/internal/config"

// Child is a running sidecar process as seen by the supervisor.
type Child = config.Child

// Launcher spawns the sidecar. Supply one with WithLauncher to replace the
// default subprocess launcher, typically in tests.
type Launcher = config.Launcher

// LauncherFunc adapts a function to Launcher.
type LauncherFunc = config.LauncherFunc
