// Package main is the entry point for the logc application.
package main

import (
	"os"
	"runtime/debug"

	"github.com/rust-it-cr/log-collector/cmd"
)

func main() {
	// Unhandled panics become crash records instead of a bare stack trace.
	// Exit code semantics: 0 = success, 1 = any failure
	defer func() {
		if r := recover(); r != nil {
			cmd.ReportPanic(r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
