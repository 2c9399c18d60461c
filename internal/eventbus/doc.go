// Package eventbus provides a typed in-memory fan-out channel.
//
// Publish never blocks: every subscriber owns a buffered channel and a
// subscriber that falls behind loses events. Close ends the bus and closes
// every subscriber channel, so consumers ranging over C() terminate.
package eventbus
