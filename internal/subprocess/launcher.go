package subprocess

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"slices"
	"sync"

	"github.com/wagiedev/sidecar-go/internal/config"
	"github.com/wagiedev/sidecar-go/internal/discovery"
	"github.com/wagiedev/sidecar-go/internal/errors"
	"github.com/wagiedev/sidecar-go/internal/event"
)

// eventBufferSize is the capacity of the output event channel.
const eventBufferSize = 64

// Launcher implements config.Launcher by spawning the sidecar as a child process.
type Launcher struct {
	log     *slog.Logger
	options *config.Options
}

// Compile-time verification that Launcher implements the Launcher interface.
var _ config.Launcher = (*Launcher)(nil)

// NewLauncher creates a launcher for the sidecar described by options.
//
// Executable discovery is deferred to Spawn, so a sidecar installed after the
// launcher was created is still found.
func NewLauncher(log *slog.Logger, options *config.Options) *Launcher {
	return &Launcher{
		log:     log.With("component", "launcher"),
		options: options,
	}
}

// Spawn resolves the sidecar executable and starts it.
//
// The child is not bound to ctx: a sidecar outlives the request that started
// it. ctx only aborts the spawn if it is already done.
//
// Returns LaunchError wrapping NotFoundError if the executable cannot be
// located, or wrapping the underlying failure if the process cannot start.
func (l *Launcher) Spawn(ctx context.Context) (config.Child, <-chan event.CommandEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, &errors.LaunchError{Err: err}
	}

	path, err := discovery.Resolve(&discovery.Config{
		Name:   l.options.SidecarName(),
		Path:   l.options.BinaryPath,
		Logger: l.log,
	})
	if err != nil {
		return nil, nil, &errors.LaunchError{Err: err}
	}

	//nolint:gosec // G204: launching the configured sidecar is the point
	cmd := exec.Command(path, l.options.Args...)
	cmd.Dir = l.options.Cwd
	cmd.Env = buildEnvironment(l.options.Env)
	setProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, &errors.LaunchError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, &errors.LaunchError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, &errors.LaunchError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		l.log.Error("Failed to start sidecar process", "path", path, "error", err)

		return nil, nil, &errors.LaunchError{Err: fmt.Errorf("start process: %w", err)}
	}

	l.log.Info("Sidecar process started", "path", path, "pid", cmd.Process.Pid)

	child := &process{cmd: cmd, stdin: stdin}
	events := make(chan event.CommandEvent, eventBufferSize)

	go l.pump(child, stdout, stderr, events)

	return child, events, nil
}

// pump reads both output streams until they close, waits for the process and
// publishes the terminated event. It owns and closes events.
func (l *Launcher) pump(child *process, stdout, stderr io.Reader, events chan<- event.CommandEvent) {
	defer close(events)

	var wg sync.WaitGroup

	wg.Go(func() { readLines(stdout, event.KindStdout, events) })
	wg.Go(func() { readLines(stderr, event.KindStderr, events) })

	// Reads must complete before Wait, see os/exec.Cmd.StdoutPipe.
	wg.Wait()

	err := child.cmd.Wait()
	code := child.cmd.ProcessState.ExitCode()

	if _, ok := stderrors.AsType[*exec.ExitError](err); ok || err == nil {
		l.log.Info("Sidecar process exited", "pid", child.PID(), "exit_code", code)
	} else {
		l.log.Warn("Sidecar process wait failed", "pid", child.PID(), "error", err)
	}

	events <- event.Terminated(code, err)
}

// readLines forwards each newline-terminated line of r as an event of the
// given kind. A final line without a newline is forwarded too.
func readLines(r io.Reader, kind event.Kind, events chan<- event.CommandEvent) {
	reader := bufio.NewReader(r)

	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimSuffix(line, []byte("\n"))
			line = bytes.TrimSuffix(line, []byte("\r"))
			events <- event.CommandEvent{Kind: kind, Line: line}
		}

		if err == nil {
			continue
		}

		// Closing the pipe after exit is the normal end of stream.
		if !stderrors.Is(err, io.EOF) && !stderrors.Is(err, os.ErrClosed) {
			events <- event.CommandEvent{Kind: event.KindError, Err: fmt.Errorf("read %s: %w", kind, err)}
		}

		return
	}
}

// buildEnvironment returns the host environment extended with extra, in a
// deterministic order.
func buildEnvironment(extra map[string]string) []string {
	env := os.Environ()

	for _, key := range slices.Sorted(maps.Keys(extra)) {
		env = append(env, key+"="+extra[key])
	}

	return env
}

// process is the config.Child backed by an exec.Cmd.
type process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	mu    sync.Mutex // Protects stdin writes
}

// Compile-time verification that process implements the Child interface.
var _ config.Child = (*process)(nil)

// Write sends data to the child's stdin.
func (p *process) Write(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.stdin.Write(data); err != nil {
		return fmt.Errorf("write to stdin: %w", err)
	}

	return nil
}

// Kill forcefully terminates the child and its process group.
// Killing a child that has already exited succeeds.
func (p *process) Kill() error {
	if err := killProcessTree(p.cmd.Process); err != nil {
		if stderrors.Is(err, os.ErrProcessDone) {
			return nil
		}

		return fmt.Errorf("kill process (pid %d): %w", p.PID(), err)
	}

	return nil
}

// PID returns the child's process id.
func (p *process) PID() int {
	if p.cmd.Process == nil {
		return 0
	}

	return p.cmd.Process.Pid
}
