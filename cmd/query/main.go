package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"doc-assistant/internal/app"
	"doc-assistant/internal/httputil"
	"doc-assistant/internal/qa"
)

func main() {
	deps, err := app.BuildQuery()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Store.Close()
	defer deps.Cache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// Warm the built-in corpus so the first question does not pay for PDF extraction.
	g.Go(func() error {
		pool := deps.Corpus.Load()
		deps.Log.Info("built-in knowledge loaded", "files", len(pool.Files), "chunks", len(pool.Chunks))
		return nil
	})
	g.Go(func() error {
		return httputil.Serve(ctx, deps.Log, fmt.Sprintf(":%d", deps.Config.Port), newRouter(deps), "query")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("query service stopped", "err", err)
	}
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log)
	r.Post("/api/query", qa.Handler(deps.QA(), deps.Log))
	r.Get("/api/knowledge", qa.KnowledgeHandler(deps.Corpus))
	r.Post("/api/question/check", qa.CheckHandler(deps.Limit(), deps.Log))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return r
}
