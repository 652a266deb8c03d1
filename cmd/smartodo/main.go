// Package main is the entry point for the smartodo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"smartodo/internal/backend/firestore"
	"smartodo/internal/cli"
	"smartodo/internal/commands"
	"smartodo/internal/config"
	"smartodo/internal/store"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(ctx context.Context, cfg *config.Config) (store.Store, error) {
		return firestore.New(ctx, cfg)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
