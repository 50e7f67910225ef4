package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			b, err := embeddedBundle()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, logger, b, false)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			// warm the catalog so the first visitor does not pay for the fetch
			a.store.Ensure(ctx)
			return serve(ctx, a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       a.cfg.Server.IdleTimeout,
	}
	serverLogger := a.logger.Named("http").With(zap.String("addr", srv.Addr))

	errCh := make(chan error, 1)
	go func() {
		serverLogger.Info("storefront listening", zap.Bool("dev_mode", a.cfg.Server.DevMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	serverLogger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		serverLogger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
