package supervisor

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/sidecar-go/internal/config"
	"github.com/wagiedev/sidecar-go/internal/errors"
	"github.com/wagiedev/sidecar-go/internal/event"
	"github.com/wagiedev/sidecar-go/internal/metrics"
	"github.com/wagiedev/sidecar-go/internal/slot"
)

func TestStart_SpawnsOnce(t *testing.T) {
	launcher := &fakeLauncher{}
	sup := newTestSupervisor(launcher, nil)

	msg, err := sup.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, MsgStarted, msg)
	require.True(t, sup.Running())

	msg, err = sup.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, MsgAlreadyRunning, msg)
	require.Equal(t, 1, launcher.Spawns())
}

func TestStart_ConcurrentCallsSpawnExactlyOne(t *testing.T) {
	launcher := &fakeLauncher{ready: make(chan struct{})}
	sup := newTestSupervisor(launcher, nil)

	const callers = 16

	var wg sync.WaitGroup

	results := make(chan string, callers)

	for range callers {
		wg.Go(func() {
			msg, err := sup.Start(context.Background())
			assert.NoError(t, err)
			results <- msg
		})
	}

	// Let the first spawn through while the others queue on the slot lock.
	time.Sleep(20 * time.Millisecond)
	close(launcher.ready)
	wg.Wait()
	close(results)

	started := 0

	for msg := range results {
		if msg == MsgStarted {
			started++
		}
	}

	require.Equal(t, 1, started)
	require.Equal(t, 1, launcher.Spawns())
}

func TestStart_LaunchFailureLeavesSlotEmpty(t *testing.T) {
	launcher := &fakeLauncher{spawnErr: &errors.LaunchError{Err: os.ErrNotExist}}
	sup := newTestSupervisor(launcher, nil)

	_, err := sup.Start(context.Background())

	_, ok := stderrors.AsType[*errors.LaunchError](err)
	require.True(t, ok)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.False(t, sup.Running())
}

func TestStart_WrapsPlainLauncherErrors(t *testing.T) {
	boom := stderrors.New("exec format error")
	sup := newTestSupervisor(&fakeLauncher{spawnErr: boom}, nil)

	_, err := sup.Start(context.Background())

	_, ok := stderrors.AsType[*errors.LaunchError](err)
	require.True(t, ok)
	require.ErrorIs(t, err, boom)
}

func TestStart_RelaysOutput(t *testing.T) {
	launcher := &fakeLauncher{}
	emitter := &recordingEmitter{}
	sup := newTestSupervisor(launcher, emitter)

	_, err := sup.Start(context.Background())
	require.NoError(t, err)

	child := launcher.Child(0)
	child.events <- event.Stdout([]byte("ready"))
	child.events <- event.Stderr([]byte("INFO: Started server process"))
	child.events <- event.Stdout([]byte{'b', 'a', 'd', 0xff})
	child.exit(0)

	require.NoError(t, sup.Wait())
	require.Equal(t, []event.Notification{
		{Name: event.StdoutEvent, Payload: "ready"},
		{Name: event.StderrEvent, Payload: "INFO: Started server process"},
		{Name: event.StdoutEvent, Payload: "bad\uFFFD"},
	}, emitter.Calls())
}

func TestShutdown_NoActiveProcess(t *testing.T) {
	launcher := &fakeLauncher{}
	sup := newTestSupervisor(launcher, nil)

	_, err := sup.Shutdown(context.Background())
	require.ErrorIs(t, err, errors.ErrNoActiveProcess)
	require.Zero(t, launcher.Spawns())
}

func TestShutdown_WriteSucceedsNoKill(t *testing.T) {
	launcher := &fakeLauncher{}
	sup := newTestSupervisor(launcher, nil)

	_, err := sup.Start(context.Background())
	require.NoError(t, err)

	msg, err := sup.Shutdown(context.Background())
	require.NoError(t, err)
	require.Equal(t, "'sidecar shutdown' command sent.", msg)

	child := launcher.Child(0)
	require.Equal(t, []string{"sidecar shutdown\n"}, child.Writes())
	require.Zero(t, child.Kills())
	require.False(t, sup.Running())
}

func TestShutdown_WriteFailsKillsOnce(t *testing.T) {
	launcher := &fakeLauncher{}
	sup := newTestSupervisor(launcher, nil)

	_, err := sup.Start(context.Background())
	require.NoError(t, err)

	child := launcher.Child(0)
	child.writeErr = io.ErrClosedPipe

	msg, err := sup.Shutdown(context.Background())
	require.Empty(t, msg)

	writeErr, ok := stderrors.AsType[*errors.WriteError](err)
	require.True(t, ok)
	require.Equal(t, child.PID(), writeErr.PID)
	require.ErrorIs(t, err, io.ErrClosedPipe)
	require.Equal(t, 1, child.Kills())

	// Non-restoring: the failed handle is gone.
	require.False(t, sup.Running())
	_, err = sup.Shutdown(context.Background())
	require.ErrorIs(t, err, errors.ErrNoActiveProcess)
	require.Equal(t, 1, child.Kills())
}

func TestShutdown_KillFailureReportsBoth(t *testing.T) {
	launcher := &fakeLauncher{}
	sup := newTestSupervisor(launcher, nil)

	var probed int32

	sup.pidExists = func(_ context.Context, pid int32) (bool, error) {
		probed = pid

		return true, nil
	}

	_, err := sup.Start(context.Background())
	require.NoError(t, err)

	child := launcher.Child(0)
	child.writeErr = io.ErrClosedPipe
	child.killErr = os.ErrPermission

	_, err = sup.Shutdown(context.Background())

	killErr, ok := stderrors.AsType[*errors.KillError](err)
	require.True(t, ok)
	require.ErrorIs(t, killErr, os.ErrPermission)
	require.ErrorIs(t, killErr, io.ErrClosedPipe)
	require.Equal(t, int32(child.PID()), probed)
	require.Equal(t, 1, child.Kills())
	require.False(t, sup.Running())
}

func TestShutdown_TwiceWithoutStart(t *testing.T) {
	sup := newTestSupervisor(&fakeLauncher{}, nil)

	_, err := sup.Start(context.Background())
	require.NoError(t, err)

	_, err = sup.Shutdown(context.Background())
	require.NoError(t, err)

	_, err = sup.Shutdown(context.Background())
	require.ErrorIs(t, err, errors.ErrNoActiveProcess)
}

func TestShutdown_EmptiesSlotBeforeWrite(t *testing.T) {
	launcher := &fakeLauncher{}
	sup := newTestSupervisor(launcher, nil)

	_, err := sup.Start(context.Background())
	require.NoError(t, err)

	old := launcher.Child(0)
	old.blockWrite = make(chan struct{})
	old.writing = make(chan struct{})

	done := make(chan error, 1)

	go func() {
		_, err := sup.Shutdown(context.Background())
		done <- err
	}()

	<-old.writing

	// The write is still in flight, yet the slot is already empty.
	require.False(t, sup.Running())

	msg, err := sup.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, MsgStarted, msg)
	require.Equal(t, 2, launcher.Spawns())

	close(old.blockWrite)
	require.NoError(t, <-done)
	require.True(t, sup.Running())
}

func TestShutdown_CancelledContextKeepsHandle(t *testing.T) {
	launcher := &fakeLauncher{}
	sup := newTestSupervisor(launcher, nil)

	_, err := sup.Start(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sup.Shutdown(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, sup.Running())
	require.Empty(t, launcher.Child(0).Writes())
}

func TestShutdown_CustomCommand(t *testing.T) {
	launcher := &fakeLauncher{}

	sup, err := New(&config.Options{Launcher: launcher, ShutdownCommand: "quit"}, slot.New())
	require.NoError(t, err)

	_, err = sup.Start(context.Background())
	require.NoError(t, err)

	msg, err := sup.Shutdown(context.Background())
	require.NoError(t, err)
	require.Equal(t, "'quit' command sent.", msg)
	require.Equal(t, []string{"quit\n"}, launcher.Child(0).Writes())
}

func TestExit_ShutsDownOnceAndSeals(t *testing.T) {
	launcher := &fakeLauncher{}
	sup := newTestSupervisor(launcher, nil)

	_, err := sup.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, sup.Exit(context.Background()))
	require.NoError(t, sup.Exit(context.Background()))

	child := launcher.Child(0)
	require.Equal(t, []string{"sidecar shutdown\n"}, child.Writes())
	require.Zero(t, child.Kills())

	_, err = sup.Start(context.Background())
	require.ErrorIs(t, err, errors.ErrSupervisorClosed)
	require.Equal(t, 1, launcher.Spawns())
}

func TestExit_WriteFailureKills(t *testing.T) {
	launcher := &fakeLauncher{}
	sup := newTestSupervisor(launcher, nil)

	_, err := sup.Start(context.Background())
	require.NoError(t, err)

	child := launcher.Child(0)
	child.writeErr = io.ErrClosedPipe

	err = sup.Exit(context.Background())

	_, ok := stderrors.AsType[*errors.WriteError](err)
	require.True(t, ok)
	require.Equal(t, 1, child.Kills())
}

func TestExit_EmptySlot(t *testing.T) {
	sup := newTestSupervisor(&fakeLauncher{}, nil)

	require.NoError(t, sup.Exit(context.Background()))

	_, err := sup.Start(context.Background())
	require.ErrorIs(t, err, errors.ErrSupervisorClosed)
}

func TestExit_RaceWithShutdown(t *testing.T) {
	launcher := &fakeLauncher{}
	sup := newTestSupervisor(launcher, nil)

	_, err := sup.Start(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup

	var shutdownErr, exitErr error

	wg.Go(func() { _, shutdownErr = sup.Shutdown(context.Background()) })
	wg.Go(func() { exitErr = sup.Exit(context.Background()) })
	wg.Wait()

	// Exactly one of them owned the handle; the child saw one write.
	child := launcher.Child(0)
	require.Len(t, child.Writes(), 1)
	require.NoError(t, exitErr)

	if shutdownErr != nil {
		require.ErrorIs(t, shutdownErr, errors.ErrNoActiveProcess)
	}
}

func TestZeroSupervisor_ConfigurationError(t *testing.T) {
	var sup Supervisor

	_, err := sup.Start(context.Background())
	_, ok := stderrors.AsType[*errors.ConfigurationError](err)
	require.True(t, ok)

	_, err = sup.Shutdown(context.Background())
	_, ok = stderrors.AsType[*errors.ConfigurationError](err)
	require.True(t, ok)

	err = sup.Exit(context.Background())
	_, ok = stderrors.AsType[*errors.ConfigurationError](err)
	require.True(t, ok)

	require.False(t, sup.Running())
}

func TestNew_NilSlotIsConfigurationError(t *testing.T) {
	launcher := &fakeLauncher{}

	sup, err := New(&config.Options{Launcher: launcher}, nil)
	require.NoError(t, err)

	_, err = sup.Start(context.Background())
	_, ok := stderrors.AsType[*errors.ConfigurationError](err)
	require.True(t, ok)
	require.Zero(t, launcher.Spawns())
}

func TestSupervisor_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	launcher := &fakeLauncher{}

	sup, err := New(&config.Options{Launcher: launcher, MetricsRegisterer: reg}, slot.New())
	require.NoError(t, err)

	_, err = sup.Start(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 1, testutil.ToFloat64(sup.metrics.Running), 0)

	launcher.Child(0).writeErr = io.ErrClosedPipe
	_, err = sup.Shutdown(context.Background())
	require.Error(t, err)

	require.InDelta(t, 1, testutil.ToFloat64(sup.metrics.SpawnTotal), 0)
	require.InDelta(t, 1, testutil.ToFloat64(sup.metrics.ShutdownTotal.WithLabelValues(metrics.ResultKilled)), 0)
	require.InDelta(t, 0, testutil.ToFloat64(sup.metrics.Running), 0)
}
