// Package cmd implements the sidecarctl commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "sidecarctl",
	Short: "Supervise a sidecar helper process",
	Long: `sidecarctl starts a sidecar helper process, relays its stdout and stderr
and shuts it down with a stdin command, killing it if the command cannot be
delivered.

Configuration is read from an optional YAML file (--config); flags override
file values.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	registerSettingsFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the sidecarctl version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "sidecarctl", Version)
		},
	})
}
