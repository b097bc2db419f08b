package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iconidentify/tubegrab/internal/api"
	"github.com/iconidentify/tubegrab/internal/api/handler"
	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/downloader"
	"github.com/iconidentify/tubegrab/internal/metrics"
	"github.com/iconidentify/tubegrab/internal/service"
	"github.com/iconidentify/tubegrab/pkg/youtube"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	logFormat := flag.String("log-format", "json", "Log format: json or text")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tubegrab %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	level := new(slog.LevelVar)
	logger := newLogger(*logFormat, level)
	slog.SetDefault(logger)

	logger.Info("starting tubegrab",
		"version", Version,
		"build_time", BuildTime,
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if l, err := cfg.Log.SlogLevel(); err == nil {
		level.Set(l)
	}

	if err := os.MkdirAll(cfg.Storage.DownloadsDir, 0755); err != nil {
		logger.Error("failed to create downloads directory", "error", err)
		os.Exit(1)
	}

	// Initialize dependencies
	m := metrics.New()
	ytClient := youtube.NewClient(cfg.YouTube)
	dl := downloader.NewYtDlpDownloader(cfg.Download, logger)
	if cfg.Download.AutoInstall {
		installCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		err := dl.Install(installCtx)
		cancel()
		if err != nil {
			logger.Error("failed to install yt-dlp", "error", err)
			os.Exit(1)
		}
	}

	activitySvc, err := service.NewActivityService(cfg.Activity, logger)
	if err != nil {
		logger.Error("failed to initialize activity log", "error", err)
		os.Exit(1)
	}
	defer activitySvc.Close()

	// Initialize services
	metadataSvc := service.NewMetadataService(ytClient, activitySvc, m, logger)
	downloadSvc := service.NewDownloadService(dl, cfg.Storage, activitySvc, m, logger)

	// Request contexts derive from baseCtx. Downloads detach from the client
	// connection but still stop when baseCtx is cancelled on shutdown.
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()

	videoHandler := handler.NewVideoHandler(metadataSvc, downloadSvc, logger)
	videoHandler.SetShutdownContext(baseCtx)

	router := api.NewRouter(api.Handlers{
		Video:    videoHandler,
		Health:   handler.NewHealthHandler(cfg.Storage.DownloadsDir, activitySvc),
		UI:       handler.NewUIHandler(),
		Activity: handler.NewActivityHandler(activitySvc, logger),
	}, m, cfg.Server.APIKey, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}

	go func() {
		logger.Info("starting HTTP server",
			"addr", srv.Addr,
			"downloads_dir", cfg.Storage.DownloadsDir,
			"auth", cfg.Server.APIKey != "",
		)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// In-flight downloads get a grace period before they are cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		cancelRequests()
	}

	logger.Info("shutdown complete")
}

func newLogger(format string, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
