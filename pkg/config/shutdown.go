package config

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// WaitForShutdown blocks until an OS interrupt or termination signal is
// received, then cancels the provided context to initiate graceful
// shutdown. Grounded on the teacher's core.WaitForShutdown.
func WaitForShutdown(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("received signal %v, initiating shutdown", sig)
		cancel()
	case <-ctx.Done():
	}
}
