package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/service/shell"
)

var (
	// verbose lets the shell print info logs.
	verbose bool
	// exportPath is where export writes the calendar.
	exportPath string
	// retryInterval is the reconnect delay of watch.
	retryInterval time.Duration

	shellCmd = &cobra.Command{
		Use:   "shell",
		Short: "Run an interactive alarm clock in this terminal.",
		Long: `Starts an in-process alarm clock and reads commands from standard input:
time, set HH:MM [day], delete N, snooze, list, help and exit.
Alarms ring while the shell is open and are lost when it exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return shell.Run(ctx, &shell.Options{
				In:      cmd.InOrStdin(),
				Out:     cmd.OutOrStdout(),
				Verbose: verbose,
			})
		},
	}

	timeCmd = &cobra.Command{
		Use:   "time",
		Short: "Print the current local time.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			client.RenderTime(cmd.OutOrStdout(), time.Now())
		},
	}

	setCmd = &cobra.Command{
		Use:   "set HH:MM [day]",
		Short: "Set a weekly alarm; without a day the alarm is set for today.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			var day string
			if len(args) > 1 {
				day = args[1]
			}

			return client.Set(ctx, remoteOptions(cmd), args[0], day)
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List all alarms.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.List(ctx, remoteOptions(cmd))
		},
	}

	deleteCmd = &cobra.Command{
		Use:   "delete N",
		Short: "Delete the alarm with the index shown by list.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}

			ctx, stop := signalContext()
			defer stop()

			return client.Delete(ctx, remoteOptions(cmd), index)
		},
	}

	snoozeCmd = &cobra.Command{
		Use:   "snooze",
		Short: "Snooze the alarm that rang or was set last by five minutes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Snooze(ctx, remoteOptions(cmd))
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print alarms as they ring until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Watch(ctx, remoteOptions(cmd), retryInterval)
		},
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export all alarms as an iCalendar file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Export(ctx, remoteOptions(cmd), exportPath)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	shellCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print info logs")
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "alarms.ics", "path of the calendar file")
	watchCmd.Flags().DurationVar(&retryInterval, "retry-interval", time.Second, "delay between reconnect attempts")
}
