package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/api"
	"github.com/hazyhaar/prenoms-registry/pkg/chassis"
	"github.com/hazyhaar/prenoms-registry/pkg/dataset"
	"github.com/hazyhaar/prenoms-registry/pkg/importer"
	"github.com/mark3labs/mcp-go/server"
)

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "prenoms.yaml", "path to config file")
	fs.Parse(args)

	cfg, logger := setup(*cfgPath)

	reg := dataset.NewRegistry(cfg.DatasetsDir, cfg.CacheDir, logger)
	if err := reg.Load(); err != nil {
		logger.Error("failed to load datasets", "error", err)
		os.Exit(1)
	}
	logger.Info("datasets loaded", "count", reg.Count())

	svc := api.NewService(reg, api.WithDefaultDataset(cfg.DefaultDataset), api.WithLogger(logger))
	router := api.NewRouter(svc)
	mcpSrv := newMCPServer(svc)

	// SIGHUP: reload datasets.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading datasets")
			if err := reg.Reload(); err != nil {
				logger.Error("reload failed", "error", err)
			} else {
				logger.Info("datasets reloaded", "count", reg.Count())
			}
		}
	}()

	if cfg.CheckInterval > 0 {
		if sdb := openSources(cfg, logger); sdb != nil {
			defer sdb.Close()
			go importer.NewChecker(sdb, logger, cfg.CheckInterval).Start(ctx)
		}
	}

	if cfg.TLS.Enabled {
		serveChassis(ctx, cfg, router, mcpSrv, logger)
		return
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("prenoms listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func serveChassis(ctx context.Context, cfg config, h http.Handler, mcpSrv *server.MCPServer, logger *slog.Logger) {
	cs, err := chassis.New(chassis.Config{
		Addr:      cfg.Addr,
		CertFile:  cfg.TLS.CertFile,
		KeyFile:   cfg.TLS.KeyFile,
		Handler:   h,
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("chassis", "error", err)
		os.Exit(1)
	}

	if err := cs.Start(ctx); err != nil {
		logger.Error("server error", "error", err)
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := cs.Stop(shutdownCtx); err != nil {
		logger.Warn("shutdown", "error", err)
	}
}

// openSources opens and seeds the import source table used by the URL
// checker. A failure disables the checker without stopping the server.
func openSources(cfg config, logger *slog.Logger) *importer.SourceDB {
	sdb, err := importer.OpenSourceDB(filepath.Join(cfg.DatasetsDir, "sources.db"))
	if err != nil {
		logger.Warn("source checker disabled", "error", err)
		return nil
	}
	if err := sdb.Seed(importer.All()); err != nil {
		logger.Warn("source checker disabled", "error", err)
		sdb.Close()
		return nil
	}
	return sdb
}

func newMCPServer(svc *api.Service) *server.MCPServer {
	srv := server.NewMCPServer("prenoms-registry", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(srv, svc)
	return srv
}
