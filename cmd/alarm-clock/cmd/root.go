package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides server_addr from the configuration file.
	serverAddress string

	// rootCmd represents the base command of the alarm clock CLI.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock",
		Short: "Set, snooze and watch weekly alarms.",
		Long: `Manages weekly recurring alarms.

Run "alarm-clock shell" for an interactive alarm clock that needs no daemon.
The remaining commands talk to alarm-clockd over gRPC; the server address comes
from the configuration file unless --server is given.`,
		SilenceUsage: true,
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGTERM or SIGINT.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// remoteOptions builds the connection options from the global flags.
func remoteOptions(cmd *cobra.Command) *client.Options {
	return &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Out:           cmd.OutOrStdout(),
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "s", "", "alarm-clockd address, overrides server_addr")

	rootCmd.AddCommand(shellCmd, timeCmd, setCmd, listCmd, deleteCmd, snoozeCmd, watchCmd, exportCmd)
}
