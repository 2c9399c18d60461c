package integration

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/service/server"
)

// freeAddress reserves a free loopback port for a test daemon.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// startDaemon runs alarm-clockd with a temporary settings file.
// Returns the settings path and a stop function that waits for shutdown.
func startDaemon(t *testing.T, cfg *config.Config) (cfgPath string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cfgPath = filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(t, config.Save(cfgPath, cfg))

	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{ConfigPath: cfgPath})
	}()

	opts := &client.Options{ConfigPath: cfgPath, Out: new(bytes.Buffer)}

	// Wait for the daemon to accept calls.
	require.Eventually(t, func() bool {
		return client.List(ctx, opts) == nil
	}, 5*time.Second, 20*time.Millisecond)

	return cfgPath, func() {
		cancel()
		require.NoError(t, <-done)
	}
}

// TestDaemon_Roundtrip drives the remote subcommands against a real daemon.
func TestDaemon_Roundtrip(t *testing.T) {
	t.Parallel()

	cfgPath, stop := startDaemon(t, &config.Config{
		ServerAddress: freeAddress(t),
		Timeout:       3 * time.Second,
		LogLevel:      "info",
	})
	defer stop()

	ctx := context.Background()
	out := new(bytes.Buffer)
	opts := &client.Options{ConfigPath: cfgPath, Out: out}

	require.NoError(t, client.Set(ctx, opts, "06:45", "tuesday"))
	require.NoError(t, client.Set(ctx, opts, "23:58", "sunday"))
	require.ErrorIs(t, client.Set(ctx, opts, "23:58", "SUNDAY"), alarm.ErrDuplicateAlarm)

	out.Reset()
	require.NoError(t, client.Snooze(ctx, opts))
	require.Equal(t, "Latest alarm snoozed to 00:03 on monday (1 of 3 snoozes used)\n", out.String())

	out.Reset()
	require.NoError(t, client.List(ctx, opts))
	require.Equal(t, strings.Join([]string{
		"List of all set alarms:",
		"1: Alarm set for 06:45 on tuesday",
		"2: Alarm set for 00:03 on monday",
		"",
	}, "\n"), out.String())

	icsPath := filepath.Join(t.TempDir(), "alarms.ics")
	require.NoError(t, client.Export(ctx, opts, icsPath))

	data, err := os.ReadFile(icsPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "RRULE:FREQ=WEEKLY;BYDAY=TU")
	require.Contains(t, string(data), "RRULE:FREQ=WEEKLY;BYDAY=MO")

	require.NoError(t, client.Delete(ctx, opts, 2))
	require.ErrorIs(t, client.Snooze(ctx, opts), alarm.ErrNoTargetAlarm)
}

// TestDaemon_WatchEndsOnShutdown checks an open watch returns once the daemon stops.
func TestDaemon_WatchEndsOnShutdown(t *testing.T) {
	t.Parallel()

	cfgPath, stop := startDaemon(t, &config.Config{
		ServerAddress: freeAddress(t),
		Timeout:       3 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)

	go func() {
		watchDone <- client.Watch(ctx, &client.Options{ConfigPath: cfgPath, Out: new(bytes.Buffer)}, 50*time.Millisecond)
	}()

	time.Sleep(100 * time.Millisecond)
	stop()

	// Watch keeps retrying against the stopped daemon until cancelled.
	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-watchDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "watch did not stop")
	}
}

// TestDaemon_ReloadsLogLevel edits the settings file of a running daemon.
//
//nolint:paralleltest // Changes the global log level.
func TestDaemon_ReloadsLogLevel(t *testing.T) {
	defer logger.SetLevel(zapcore.InfoLevel)

	addr := freeAddress(t)

	cfgPath, stop := startDaemon(t, &config.Config{ServerAddress: addr, LogLevel: "info"})
	defer stop()

	require.Equal(t, zapcore.InfoLevel, logger.Level())

	// The watcher may attach after startDaemon returns, so rewrite the file on
	// every poll. The interval is longer than the reload debounce.
	require.Eventually(t, func() bool {
		if logger.Level() == zapcore.ErrorLevel {
			return true
		}

		_ = config.Save(cfgPath, &config.Config{ServerAddress: addr, LogLevel: "error"})

		return false
	}, 10*time.Second, 400*time.Millisecond)
}
