package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"doc-assistant/internal/app"
	"doc-assistant/internal/httputil"
	"doc-assistant/internal/queue"
)

func main() {
	deps, err := app.BuildParser()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Store.Close()
	defer deps.Cache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, deps); err != nil {
		deps.Log.Error("parser service stopped", "err", err)
		os.Exit(1)
	}
}

// run consumes parse tasks and serves /healthz until ctx is cancelled.
func run(ctx context.Context, deps app.Deps) error {
	if _, ok := deps.Queue.(*queue.InlineQueue); ok {
		deps.Log.Warn("inline queue never receives tasks from other processes; set QUEUE_PROVIDER=nats")
	}
	deps.Log.Info("parser worker starting")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeParse, deps.Ingestor().Handle)
	})
	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps.Log, deps.Config.Port, "parser")
	})
	return g.Wait()
}
