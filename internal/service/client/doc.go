// Package client implements the remote alarm-clock subcommands: it loads
// settings, connects to alarm-clockd and renders the results.
//
// The render helpers are shared with the interactive shell so both surfaces
// print the same lines.
package client
