// Package main provides the entry point for the linkage CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gcbaptista/go-linkage-engine/cmd/linkage/app"
)

// Version information populated at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application := app.New(version, commit, date)
	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		cancel()
		app.ExitOnError(err)
	}
}
