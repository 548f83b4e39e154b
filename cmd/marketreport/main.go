package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/gigtarget/market-report-bot/internal/app"
	"github.com/gigtarget/market-report-bot/internal/config"
	"github.com/gigtarget/market-report-bot/internal/logger"
	"github.com/gigtarget/market-report-bot/internal/metrics"
)

func main() {
	once := flag.Bool("once", false, "run a single report and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if cfg.EnableHTTPMonitoring {
		go startMonitoringServer(cfg.MonitoringPort, a)
	}

	if *once || cfg.ReportCron == "" {
		if err := a.RunOnce(ctx); err != nil {
			slog.Error("report run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	go a.ServeCommands(ctx)

	c := cron.New()
	if _, err := c.AddFunc(cfg.ReportCron, func() {
		if err := a.RunOnce(ctx); err != nil {
			slog.Error("scheduled report run failed", "error", err)
		}
	}); err != nil {
		slog.Error("invalid REPORT_CRON expression", "cron", cfg.ReportCron, "error", err)
		os.Exit(1)
	}

	slog.Info("scheduler started", "cron", cfg.ReportCron)
	c.Start()
	<-ctx.Done()

	slog.Info("shutting down")
	<-c.Stop().Done()
}

func startMonitoringServer(port int, a *app.App) {
	http.HandleFunc("/health", healthHandler(a))
	http.HandleFunc("/metrics", metricsHandler)

	addr := fmt.Sprintf(":%d", port)
	slog.Info("starting monitoring server", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("monitoring server error", "error", err)
	}
}

func healthHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		stats := metrics.Global.GetStats()

		status := "ok"
		if !stats["is_healthy"].(bool) {
			status = "error"
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		payload := map[string]interface{}{
			"status":     status,
			"last_run":   stats["last_run_time"],
			"last_error": stats["last_error"],
		}
		if t := a.ReportRenderedAt(); !t.IsZero() {
			payload["report_rendered_at"] = t
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}
}

func metricsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
