// Package main provides the entry point for the Fritter server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"

	"github.com/fritterapp/fritter-server/internal/di"
	"github.com/fritterapp/fritter-server/internal/di/providers"
	"github.com/fritterapp/fritter-server/internal/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fritter-server: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	injector := di.NewContainer(args)

	if err := di.Bootstrap(injector); err != nil {
		return fmt.Errorf("bootstrap server: %w", err)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	srv := do.MustInvoke[*providers.HTTPServerHandle](injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server gracefully...")

		// The container stops the HTTP server before closing the store it depends on.
		report := injector.Shutdown()
		log.Info("Services stopped", "report", report)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
