package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/forgeui/server/internal/config"
	"codeberg.org/forgeui/server/internal/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger.Info("starting forgeui server")

	flags, err := config.ParseServerFlags(os.Args[1:])
	if err != nil {
		logger.Fatal("failed to parse flags", "error", err)
	}

	configPath := flags.ConfigPath
	if configPath == "" {
		configPath = os.Getenv("FORGEUI_CONFIG")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	if flags.Port != "" {
		cfg.Port = flags.Port
	}

	srv, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	// streams run for up to the generation timeout, so writes may not be
	// cut short before it
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "port", cfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		srv.hub.Run()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("shutting down server")

		// notify websocket clients and close connections first
		srv.hub.Shutdown()

		// stop the session sweeper
		srv.sessionMgr.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.FatalErr(err, "server stopped with error")
	}

	logger.Info("server stopped")
}
