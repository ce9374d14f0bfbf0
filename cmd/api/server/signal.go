package server

import (
	"context"
	"os/signal"
	"syscall"
)

// WithSignal returns a context canceled on SIGINT or SIGTERM. The returned
// function stops signal delivery.
func WithSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}
