package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	sidecar "github.com/wagiedev/sidecar-go"
	mcptools "github.com/wagiedev/sidecar-go/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the sidecar commands as MCP tools over stdio",
	Long: `Exposes start_sidecar, shutdown_sidecar and sidecar_status as Model Context
Protocol tools on stdin/stdout. Sidecar output is logged to stderr.

The sidecar is shut down when the client disconnects or the process is interrupted.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().Bool("autostart", false, "Start the sidecar before serving")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	autostart, _ := cmd.Flags().GetBool("autostart")

	log := newLogger(s.debug)
	outputLog := log.With("component", "output")

	sup, err := sidecar.New(append(s.sidecarOptions(),
		sidecar.WithLogger(log),
		sidecar.WithEmitter(sidecar.EmitterFunc(func(name, line string) error {
			outputLog.Info(line, "event", name)

			return nil
		})),
	)...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := sidecar.NewApp(log, sup)
	if autostart {
		app.Setup(ctx)
	}

	server := mcptools.NewToolServer("sidecarctl", Version)
	server.AddCommands(app.Registry())

	log.Info("Starting MCP server (stdio)")

	serveErr := server.Serve(ctx, &mcp.StdioTransport{})
	if serveErr != nil && ctx.Err() == nil {
		log.Error("MCP server failed", "error", serveErr)
	}

	exitErr := app.ExitRequested(context.WithoutCancel(ctx))
	drain(log, sup, defaultDrainTimeout)

	if ctx.Err() == nil && serveErr != nil {
		return serveErr
	}

	return exitErr
}
