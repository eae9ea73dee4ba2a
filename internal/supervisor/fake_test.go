package supervisor

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/wagiedev/sidecar-go/internal/config"
	"github.com/wagiedev/sidecar-go/internal/event"
	"github.com/wagiedev/sidecar-go/internal/slot"
)

// fakeChild implements config.Child for testing.
type fakeChild struct {
	mu       sync.Mutex
	pid      int
	writes   []string
	writeErr error
	kills    int
	killErr  error

	// blockWrite, when set, is waited on by Write after recording the call.
	blockWrite chan struct{}
	writing    chan struct{}

	events chan event.CommandEvent
}

func newFakeChild(pid int) *fakeChild {
	return &fakeChild{
		pid:    pid,
		events: make(chan event.CommandEvent, 16),
	}
}

func (c *fakeChild) Write(data []byte) error {
	c.mu.Lock()
	c.writes = append(c.writes, string(data))
	block, writing, err := c.blockWrite, c.writing, c.writeErr
	c.mu.Unlock()

	if writing != nil {
		close(writing)
	}

	if block != nil {
		<-block
	}

	return err
}

func (c *fakeChild) Kill() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.kills++

	return c.killErr
}

func (c *fakeChild) PID() int { return c.pid }

func (c *fakeChild) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.writes...)
}

func (c *fakeChild) Kills() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.kills
}

// exit simulates the process exiting and its streams closing.
func (c *fakeChild) exit(code int) {
	c.events <- event.Terminated(code, nil)
	close(c.events)
}

// fakeLauncher implements config.Launcher, handing out prepared children.
type fakeLauncher struct {
	mu       sync.Mutex
	spawns   int
	children []*fakeChild
	spawnErr error
	ready    chan struct{} // optional gate delaying each spawn
}

func (l *fakeLauncher) Spawn(_ context.Context) (config.Child, <-chan event.CommandEvent, error) {
	if l.ready != nil {
		<-l.ready
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.spawnErr != nil {
		return nil, nil, l.spawnErr
	}

	l.spawns++

	child := newFakeChild(1000 + l.spawns)
	l.children = append(l.children, child)

	return child, child.events, nil
}

func (l *fakeLauncher) Spawns() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.spawns
}

func (l *fakeLauncher) Child(i int) *fakeChild {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.children[i]
}

// recordingEmitter collects notifications.
type recordingEmitter struct {
	mu    sync.Mutex
	calls []event.Notification
}

func (r *recordingEmitter) Emit(name, payload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, event.Notification{Name: name, Payload: payload})

	return nil
}

func (r *recordingEmitter) Calls() []event.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]event.Notification(nil), r.calls...)
}

func newTestSupervisor(launcher config.Launcher, emitter event.Emitter) *Supervisor {
	sup, err := New(&config.Options{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Launcher: launcher,
		Emitter:  emitter,
	}, slot.New())
	if err != nil {
		panic(err)
	}

	return sup
}
