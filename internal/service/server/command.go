package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/clock"
	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// Options controls the alarm-clockd process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clockd")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyLogLevel(ctx, settings.LogLevel)

	// Determine listen address: CLI argument overrides config port extraction.
	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	// The clock outlives ctx so shutdown can still log through it.
	clockCtx := context.WithoutCancel(ctx)
	alarmClock := clock.New(
		scheduler.New(clockCtx, scheduler.WithBuffer(settings.EventBuffer)),
		clock.WithBuffer(settings.EventBuffer),
	)

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(api.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(api.StreamServerInterceptor()),
	)
	api.RegisterAlarmClockServer(grpcServer, api.NewServer(alarmClock))

	alarmClock.Start(clockCtx)

	notifySystemd(ctx, daemon.SdNotifyReady, statusLine("Listening on %s", lis.Addr()))

	logger.InfoKV(ctx, "Alarm clock listening",
		"listen_address", lis.Addr().String(),
		"log_level", settings.LogLevel,
		"event_buffer", settings.EventBuffer)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdown(ctx, alarmClock, grpcServer, settings.Timeout)

		return nil
	})

	group.Go(func() error {
		watchSettings(groupCtx, opts.ConfigPath)

		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Alarm clock stopped")

	return nil
}

// shutdown cancels every alarm, which also ends the firing streams, and then
// stops the gRPC server. A graceful stop that outlasts timeout is forced.
func shutdown(ctx context.Context, alarmClock *clock.Clock, grpcServer *grpc.Server, timeout time.Duration) {
	logger.Info(ctx, "Shutting down alarm clock")
	notifySystemd(ctx, daemon.SdNotifyStopping)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := alarmClock.Close(closeCtx); err != nil {
		logger.WarnKV(ctx, "Alarm clock did not stop cleanly", "error", err)
	}

	stopped := make(chan struct{})

	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-closeCtx.Done():
		logger.WarnKV(ctx, "Graceful stop timed out, closing connections", "timeout", timeout)
		grpcServer.Stop()
		<-stopped
	}
}

// watchSettings applies log_level edits until ctx is done. Missing settings
// files are not watched.
func watchSettings(ctx context.Context, path string) {
	if path == "" {
		path = config.DefaultConfigFilename
	}

	if _, err := os.Stat(path); err != nil {
		logger.DebugKV(ctx, "Settings file not watched", "path", path, "error", err)

		return
	}

	err := config.Watch(ctx, path, func(cfg *config.Config) {
		applyLogLevel(ctx, cfg.LogLevel)
	})
	if err != nil {
		logger.WarnKV(ctx, "Settings watcher stopped", "path", path, "error", err)
	}
}

// applyLogLevel switches the global logger to name. Unknown names are ignored.
func applyLogLevel(ctx context.Context, name string) {
	lvl, ok := logger.ParseLogLevel(name)
	if !ok {
		logger.WarnKV(ctx, "Unknown log level", "log_level", name)

		return
	}

	if lvl == logger.Level() {
		return
	}

	logger.SetLevel(lvl)
	logger.InfoKV(ctx, "Log level changed", "log_level", lvl.String())
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	// Use override address if provided (e.g., ":9090", "0.0.0.0:8080").
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Return port-only listen address to bind on all interfaces.
	return ":" + port, nil
}
