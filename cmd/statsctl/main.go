// Command statsctl loads data into a courtstats store and queries it from
// the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/courtstats/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
