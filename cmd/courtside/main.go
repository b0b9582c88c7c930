package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"courtside/cmd/courtside/commands"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived signal: %v\n", sig)
		fmt.Fprintln(os.Stderr, "Finishing the current item and stopping...")
		cancel()
	}()

	commands.ExecuteContext(ctx)
}
