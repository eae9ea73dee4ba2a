package host

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/wagiedev/sidecar-go/internal/errors"
)

// Handler runs a command and returns its status message.
type Handler func(ctx context.Context) (string, error)

// Command is a registered command.
type Command struct {
	Name        string
	Description string
	Handler     Handler
}

// Result is the host-facing outcome of a command: a success value or an
// error string, never both.
type Result struct {
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// OK reports whether the command succeeded.
func (r Result) OK() bool {
	return r.Error == ""
}

// Registry holds commands by name. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command, 4),
	}
}

// Register adds a command, replacing any command with the same name.
func (r *Registry) Register(name, description string, handler Handler) error {
	if name == "" {
		return fmt.Errorf("register command: empty name")
	}

	if handler == nil {
		return fmt.Errorf("register command %q: nil handler", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands[name] = Command{Name: name, Description: description, Handler: handler}

	return nil
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.commands[name]

	return cmd, ok
}

// Invoke runs the named command. Unknown names return ErrUnknownCommand.
func (r *Registry) Invoke(ctx context.Context, name string) (string, error) {
	cmd, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrUnknownCommand, name)
	}

	return cmd.Handler(ctx)
}

// Call runs the named command and converts its outcome to a Result.
func (r *Registry) Call(ctx context.Context, name string) Result {
	value, err := r.Invoke(ctx, name)
	if err != nil {
		return Result{Error: err.Error()}
	}

	return Result{Value: value}
}

// Commands returns every registered command sorted by name.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}

	slices.SortFunc(cmds, func(a, b Command) int {
		return strings.Compare(a.Name, b.Name)
	})

	return cmds
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	cmds := r.Commands()

	names := make([]string, len(cmds))
	for i, cmd := range cmds {
		names[i] = cmd.Name
	}

	return names
}
