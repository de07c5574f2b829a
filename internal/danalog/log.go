// Package danalog centralises Dana's structured logging setup on top of
// go-hclog, the way the rest of the HashiCorp-style stack in this module
// favours structured, leveled logging over fmt.Println scattered through
// the interpreter.
package danalog

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// New builds the root logger for a sandbox or CLI invocation. debug raises
// the level to hclog.Debug; otherwise the logger stays at hclog.Warn so
// ordinary runs stay quiet on stderr.
func New(debug bool) hclog.Logger {
	level := hclog.Warn
	if debug {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "dana",
		Level:  level,
		Output: os.Stderr,
	})
}

// NullLogger is used by tests that want interpreter/sandbox wiring without
// log noise.
func NullLogger() hclog.Logger {
	return hclog.NewNullLogger()
}
