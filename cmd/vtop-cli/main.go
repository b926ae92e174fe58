package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"vtopassist-backend/cmd/vtop-cli/commands"
)

func main() {
	// Ctrl+C cancels whatever request is in flight
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	commands.ExecuteContext(ctx)
}
