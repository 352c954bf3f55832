// Package main is the entry point of the roster command-line tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alem-hub/student-roster/internal/interface/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
