package autostart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"

	"github.com/oshokin/alarm-clock/internal/logger"
)

const (
	// AppName is the file name of the autostart entry.
	AppName = "alarm-clockd"
	// DisplayName is shown by desktop session managers.
	DisplayName = "Alarm Clock daemon"
)

// ErrUnknownAction is returned for actions other than enable, disable and status.
var ErrUnknownAction = errors.New("unknown autostart action")

// Action selects what Run does with the autostart entry.
type Action string

// Supported actions.
const (
	ActionEnable  Action = "enable"
	ActionDisable Action = "disable"
	ActionStatus  Action = "status"
)

// Entry is a login autostart entry.
type Entry interface {
	IsEnabled() bool
	Enable() error
	Disable() error
}

// Options controls the autostart command.
type Options struct {
	// Action is enable, disable or status.
	Action Action
	// ConfigPath is passed to the daemon through --config when set.
	ConfigPath string
	// Executable overrides the daemon binary; defaults to the running one.
	Executable string
	// NewEntry builds the entry; defaults to a desktop autostart entry.
	NewEntry func(exec []string) Entry
}

// Run applies opts.Action and reports whether autostart is enabled afterwards.
func Run(ctx context.Context, opts *Options) (bool, error) {
	ctx = logger.WithName(ctx, "autostart")

	exec, err := Command(opts.Executable, opts.ConfigPath)
	if err != nil {
		return false, err
	}

	newEntry := opts.NewEntry
	if newEntry == nil {
		newEntry = NewEntry
	}

	entry := newEntry(exec)

	switch opts.Action {
	case ActionStatus:
		return entry.IsEnabled(), nil
	case ActionEnable:
		if entry.IsEnabled() {
			return true, nil
		}

		if err := entry.Enable(); err != nil {
			return false, fmt.Errorf("enable autostart: %w", err)
		}

		logger.InfoKV(ctx, "Autostart enabled", "exec", exec)

		return true, nil
	case ActionDisable:
		if !entry.IsEnabled() {
			return false, nil
		}

		if err := entry.Disable(); err != nil {
			return true, fmt.Errorf("disable autostart: %w", err)
		}

		logger.Info(ctx, "Autostart disabled")

		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownAction, opts.Action)
	}
}

// NewEntry returns the desktop autostart entry running exec.
func NewEntry(exec []string) Entry {
	return &autostart.App{
		Name:        AppName,
		DisplayName: DisplayName,
		Exec:        exec,
	}
}

// Command builds the daemon command line. Relative paths are made absolute
// because the session starts the daemon from an unknown directory.
func Command(executable, configPath string) ([]string, error) {
	if executable == "" {
		path, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}

		// Resolve symlinks so the entry survives package manager shims.
		if path, err = filepath.EvalSymlinks(path); err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}

		executable = path
	}

	exec := []string{executable}

	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}

		exec = append(exec, "--config", abs)
	}

	return exec, nil
}
