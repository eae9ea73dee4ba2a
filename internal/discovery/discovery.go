package discovery

import (
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/wagiedev/sidecar-go/internal/errors"
)

// Config holds configuration for executable discovery.
type Config struct {
	// Name is the sidecar executable name without extension or triple.
	Name string

	// Path is an explicit executable path that skips searching.
	Path string

	// Dirs are the directories searched before PATH.
	// If nil, the directory of the running executable is used.
	Dirs []string

	// Logger is an optional logger for discovery operations.
	Logger *slog.Logger
}

// Resolve locates the sidecar executable described by cfg.
// Returns NotFoundError listing every location tried.
func Resolve(cfg *Config) (string, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if cfg.Path != "" {
		log.Debug("Using explicit sidecar path", "path", cfg.Path)

		if isExecutableFile(cfg.Path) {
			return cfg.Path, nil
		}

		return "", &errors.NotFoundError{Name: cfg.Name, SearchedPaths: []string{cfg.Path}}
	}

	dirs := cfg.Dirs
	if dirs == nil {
		if exe, err := os.Executable(); err == nil {
			dirs = []string{filepath.Dir(exe)}
		}
	}

	candidates := Candidates(cfg.Name, runtime.GOOS, runtime.GOARCH)
	searched := make([]string, 0, len(dirs)*len(candidates)+1)

	for _, dir := range dirs {
		for _, candidate := range candidates {
			path := filepath.Join(dir, candidate)
			searched = append(searched, path)

			if isExecutableFile(path) {
				log.Debug("Found sidecar next to host", "path", path)

				return path, nil
			}
		}
	}

	if path, err := exec.LookPath(cfg.Name); err == nil {
		log.Debug("Found sidecar in PATH", "path", path)

		return path, nil
	}

	searched = append(searched, "$PATH")

	log.Warn("Sidecar executable not found", "name", cfg.Name, "searched_paths", searched)

	return "", &errors.NotFoundError{Name: cfg.Name, SearchedPaths: searched}
}

// Candidates returns the file names a sidecar may be bundled under for the given
// platform, in lookup order.
func Candidates(name, goos, goarch string) []string {
	ext := ""
	if goos == "windows" {
		ext = ".exe"
	}

	names := []string{name + ext}

	if triple := TargetTriple(goos, goarch); triple != "" {
		names = append(names, name+"-"+triple+ext)
	}

	return names
}

// TargetTriple maps a Go platform to the target triple used to suffix bundled
// sidecar binaries. Unknown platforms return "".
func TargetTriple(goos, goarch string) string {
	arch := map[string]string{
		"amd64": "x86_64",
		"arm64": "aarch64",
		"386":   "i686",
	}[goarch]
	if arch == "" {
		return ""
	}

	switch goos {
	case "linux":
		return arch + "-unknown-linux-gnu"
	case "darwin":
		return arch + "-apple-darwin"
	case "windows":
		return arch + "-pc-windows-msvc"
	case "freebsd":
		return arch + "-unknown-freebsd"
	default:
		return ""
	}
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	if runtime.GOOS == "windows" {
		return true
	}

	return info.Mode().Perm()&0o111 != 0
}
