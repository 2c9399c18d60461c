// Package common holds helpers shared by several services.
//
// It provides a gRPC client for the alarm clock daemon with per-call timeouts
// and domain error mapping, and detects the current system actor
// (hostname/username) so the daemon can attribute requests.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
