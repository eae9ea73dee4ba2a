package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	sidecar "github.com/wagiedev/sidecar-go"
)

// defaultDrainTimeout bounds the wait for sidecar output after shutdown.
const defaultDrainTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sidecar under an interactive host",
	Long: `Starts the sidecar and prints every line it writes as
  [sidecar-stdout] line
  [sidecar-stderr] line

Commands are read from stdin, one per line:
  start     spawn the sidecar unless one is running
  stop      send the shutdown command
  status    print "running" or "stopped"
  help      list the commands
  quit      shut down and exit

Interrupting (Ctrl-C) performs the exit-time shutdown.`,
	RunE: runHost,
}

func init() {
	runCmd.Flags().String("metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9090)")
	runCmd.Flags().Duration("drain-timeout", defaultDrainTimeout, "How long to wait for sidecar output after shutdown")
	rootCmd.AddCommand(runCmd)
}

func runHost(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	drainTimeout, _ := cmd.Flags().GetDuration("drain-timeout")

	log := newLogger(s.debug)

	bus := sidecar.NewBus()
	defer bus.Close()

	reg := prometheus.NewRegistry()

	sup, err := sidecar.New(append(s.sidecarOptions(),
		sidecar.WithLogger(log),
		sidecar.WithEmitter(bus),
		sidecar.WithMetricsRegisterer(reg),
	)...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		srv := serveMetrics(log, metricsAddr, reg)
		defer func() {
			if err := srv.Shutdown(context.WithoutCancel(ctx)); err != nil {
				log.Warn("Metrics server shutdown failed", "error", err)
			}
		}()
	}

	out := &console{w: cmd.OutOrStdout()}

	notifications, cancel := bus.Subscribe()
	defer cancel()

	go func() {
		for n := range notifications {
			out.Printf("[%s] %s\n", n.Name, n.Payload)
		}
	}()

	app := sidecar.NewApp(log, sup)
	app.Setup(ctx)

	interact(ctx, app, cmd.InOrStdin(), out)

	exitErr := app.ExitRequested(context.WithoutCancel(ctx))
	drain(log, sup, drainTimeout)

	return exitErr
}

// interact dispatches stdin commands until quit, end of input or ctx is done.
func interact(ctx context.Context, app *sidecar.App, in io.Reader, out *console) {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var line string

		select {
		case <-ctx.Done():
			return
		case l, ok := <-lines:
			if !ok {
				return
			}

			line = l
		}

		switch line {
		case "":
			continue
		case "quit", "exit":
			return
		case "help":
			out.Printf("commands: start, stop, status, quit (%s)\n", strings.Join(app.Registry().Names(), ", "))

			continue
		}

		res := app.Registry().Call(ctx, commandName(line))
		if res.OK() {
			out.Printf("%s\n", res.Value)
		} else {
			out.Printf("error: %s\n", res.Error)
		}
	}
}

// commandName maps the short interactive names onto registered commands.
func commandName(input string) string {
	switch input {
	case "start":
		return sidecar.StartCommand
	case "stop", "shutdown":
		return sidecar.ShutdownCommand
	case "status":
		return sidecar.StatusCommand
	default:
		return input
	}
}

// drain waits for the sidecar's output to close, giving up after timeout.
func drain(log *slog.Logger, sup sidecar.Supervisor, timeout time.Duration) {
	done := make(chan error, 1)

	go func() { done <- sup.Wait() }()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Warn("Sidecar did not exit in time, leaving it running", "timeout", timeout)
	}
}

func serveMetrics(log *slog.Logger, addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Serving metrics", "addr", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "error", err)
		}
	}()

	return srv
}

// console serialises writes from the command loop and the event printer.
type console struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.w, format, args...)
}
