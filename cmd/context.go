package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// signalHandledContext returns a context that is canceled on SIGINT or
// SIGTERM. SIGHUP is not handled here; the daemon owns it.
func signalHandledContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigs
		log.Infof("received signal %q, shutting down", sig)
		cancel()
	}()

	return ctx, cancel
}
