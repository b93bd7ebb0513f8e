package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	physiotrainer "github.com/claude/physiotrainer"
	"github.com/claude/physiotrainer/internal/catalog"
	"github.com/claude/physiotrainer/internal/config"
	physiomcp "github.com/claude/physiotrainer/internal/mcp"
	"github.com/claude/physiotrainer/internal/metrics"
	"github.com/claude/physiotrainer/internal/server"
	"github.com/claude/physiotrainer/internal/session"
	"github.com/claude/physiotrainer/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	log.Info("PhysioTrainer starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	log.Info("catalog loaded", "categories", len(cat.Categories), "path", cfg.Catalog.Path)

	// Report store (in-memory, lives for the process)
	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Reports.Database)
	if err != nil {
		log.Error("failed to open report store", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("report store ready", "database", cfg.Reports.Database)

	timer := session.New(session.Config{
		StartDelay:   cfg.Session.StartDelay,
		HoldDuration: cfg.Session.HoldDuration,
		TargetReps:   cfg.Session.TargetReps,
	}, nil, log)

	var m *metrics.Manager
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := metrics.NewRegistry()
		m = metrics.NewManager("server", reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	// Create server
	srv := server.New(timer, cat, db, m, log)
	srv.SetTickInterval(cfg.Session.TickInterval)
	if metricsHandler != nil {
		srv.SetMetricsHandler(metricsHandler)
	}

	mcpSrv := physiomcp.New(physiomcp.NewLocal(cat, db, timer), Version, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Serve embedded frontend
	webFS, err := fs.Sub(physiotrainer.WebFS, "web")
	if err != nil {
		log.Error("failed to load embedded frontend", "error", err)
		os.Exit(1)
	}
	srv.SetFrontend(webFS)

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "local (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	// End a running session so its outcome is logged.
	if u, err := timer.Stop(); err == nil {
		log.Info("active session stopped on shutdown", "session_id", u.SessionID, "reps", u.Report.CompletedReps)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
