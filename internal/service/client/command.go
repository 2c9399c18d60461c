package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/clock"
	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/service/export"
)

// Options configures the connection used by remote subcommands.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// Out receives rendered output; stdout when nil.
	Out io.Writer
}

// defaultRetryInterval is the delay between reconnect attempts of Watch.
const defaultRetryInterval = 1 * time.Second

// exportFilePermissions is the mode of exported calendar files.
const exportFilePermissions = 0o644

// session is one connection to the daemon.
type session struct {
	client *common.Client
	out    io.Writer
}

// connect loads settings, identifies the caller and dials the daemon.
func connect(ctx context.Context, opts *Options) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	dialOptions := []common.Option{common.WithCallTimeout(cfg.Timeout)}

	// Identify current user and hostname for audit logging.
	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect actor", "error", err)
	} else {
		dialOptions = append(dialOptions, common.WithActor(actor))
	}

	client, err := common.Dial(ctx, serverAddress, dialOptions...)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Connected to alarm clock", "server_address", serverAddress)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &session{client: client, out: out}, nil
}

func (s *session) close() {
	_ = s.client.Close()
}

// withSession runs fn on a fresh session and closes it afterwards.
func withSession(ctx context.Context, opts *Options, fn func(*session) error) error {
	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer s.close()

	return fn(s)
}

// Set adds an alarm. An empty weekday means today on the daemon's clock.
func Set(ctx context.Context, opts *Options, at, weekday string) error {
	ctx = logger.WithName(ctx, "set")

	return withSession(ctx, opts, func(s *session) error {
		entry, err := s.client.AddAlarm(ctx, at, weekday)
		if err != nil {
			return err
		}

		RenderAdded(s.out, entry)

		return nil
	})
}

// List prints every alarm.
func List(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "list")

	return withSession(ctx, opts, func(s *session) error {
		entries, err := s.client.ListAlarms(ctx)
		if err != nil {
			return err
		}

		RenderList(s.out, entries)

		return nil
	})
}

// Delete removes the alarm at the 1-based index.
func Delete(ctx context.Context, opts *Options, index int) error {
	ctx = logger.WithName(ctx, "delete")

	return withSession(ctx, opts, func(s *session) error {
		entry, err := s.client.DeleteAlarm(ctx, index)
		if err != nil {
			return err
		}

		RenderDeleted(s.out, entry)

		return nil
	})
}

// Snooze snoozes the alarm that rang or was added last.
func Snooze(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "snooze")

	return withSession(ctx, opts, func(s *session) error {
		entry, err := s.client.SnoozeLatest(ctx)
		if err != nil {
			return err
		}

		RenderSnoozed(s.out, entry)

		return nil
	})
}

// Export writes every alarm to path as an iCalendar file.
func Export(ctx context.Context, opts *Options, path string) error {
	ctx = logger.WithName(ctx, "export")

	return withSession(ctx, opts, func(s *session) error {
		entries, err := s.client.ListAlarms(ctx)
		if err != nil {
			return err
		}

		f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, exportFilePermissions)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}

		if err := export.WriteICS(f, entries, time.Now()); err != nil {
			_ = f.Close()

			return err
		}

		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}

		_, _ = fmt.Fprintf(s.out, "Exported %d alarms to %s\n", len(entries), path)

		return nil
	})
}

// Watch prints every firing until ctx is done. When the daemon goes away it
// keeps reconnecting every retryInterval.
func Watch(ctx context.Context, opts *Options, retryInterval time.Duration) error {
	ctx = logger.WithName(ctx, "watch")

	if retryInterval <= 0 {
		retryInterval = defaultRetryInterval
	}

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer s.close()

	render := func(r clock.Ringing) error {
		RenderRinging(s.out, r)

		return nil
	}

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		err := s.client.WatchFirings(ctx, render)
		if ctx.Err() != nil {
			return nil
		}

		if err != nil && !errors.Is(err, api.ErrUnavailable) {
			logger.ErrorKV(ctx, "Watch failed, reconnecting", "error", err, "retry_interval", retryInterval)
		} else {
			logger.InfoKV(ctx, "Alarm clock went away, reconnecting", "retry_interval", retryInterval)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
