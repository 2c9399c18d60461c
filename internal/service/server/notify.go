package server

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// notifySystemd reports a state change to the service manager.
// It does nothing when the daemon is not run under systemd.
func notifySystemd(ctx context.Context, state ...string) {
	for _, s := range state {
		sent, err := daemon.SdNotify(false, s)
		if err != nil {
			logger.WarnKV(ctx, "Service manager notification failed", "state", s, "error", err)

			return
		}

		if !sent {
			return
		}

		logger.DebugKV(ctx, "Service manager notified", "state", s)
	}
}

// statusLine formats a free-form STATUS= notification.
func statusLine(format string, args ...any) string {
	return "STATUS=" + fmt.Sprintf(format, args...)
}
