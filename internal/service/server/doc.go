// Package server runs alarm-clockd: it loads settings, builds the scheduler
// and the alarm clock, serves them over gRPC and shuts everything down when
// the context is cancelled. Changes to log_level in the settings file are
// applied without a restart.
package server
