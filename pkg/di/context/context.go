package shortcontext

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// New returns the root context of a binary. It is cancelled on SIGINT or SIGTERM.
func New() (context.Context, func()) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx, cancel
}
