package logger

import (
	"context"

	"github.com/robfig/cron/v3"
)

// CronLogger adapts the context logger to cron.Logger.
// Cron's informational chatter (wake, run, schedule) is logged at debug level.
type CronLogger struct {
	ctx context.Context //nolint:containedctx // The logger lives in the context.
}

var _ cron.Logger = (*CronLogger)(nil)

// NewCronLogger returns a cron.Logger writing through the logger stored in ctx.
func NewCronLogger(ctx context.Context) *CronLogger {
	return &CronLogger{ctx: WithName(ctx, "cron")}
}

// Info logs routine scheduler activity.
func (l *CronLogger) Info(msg string, keysAndValues ...any) {
	DebugKV(l.ctx, msg, keysAndValues...)
}

// Error logs scheduler failures such as recovered job panics.
func (l *CronLogger) Error(err error, msg string, keysAndValues ...any) {
	ErrorKV(l.ctx, msg, append(keysAndValues, "error", err)...)
}
