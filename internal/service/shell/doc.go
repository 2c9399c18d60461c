// Package shell is the interactive alarm clock: it runs an in-process clock
// and reads commands line by line until exit or end of input.
package shell
