package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"

	"github.com/ehsan-mad/blogfront/internal/config"
	"github.com/ehsan-mad/blogfront/internal/data"
	"github.com/ehsan-mad/blogfront/internal/engage"
	"github.com/ehsan-mad/blogfront/internal/fallback"
	"github.com/ehsan-mad/blogfront/internal/httpserver"
	"github.com/ehsan-mad/blogfront/internal/images"
	"github.com/ehsan-mad/blogfront/internal/local"
	"github.com/ehsan-mad/blogfront/internal/markdown"
	"github.com/ehsan-mad/blogfront/internal/memocache"
	"github.com/ehsan-mad/blogfront/internal/remote"
)

func main() {
	configPath := flag.String("config", "blogfront.yaml", "Path to the configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("config file ignored, using defaults", "error", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if !cfg.Configured() {
		logger.Warn("remote store credentials absent, running in demo mode on the fallback dataset")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Error("failed to create data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	fb := fallback.Builtin()
	if cfg.FallbackPath != "" {
		if err := fb.Reload(cfg.FallbackPath); err != nil {
			logger.Warn("failed to load fallback dataset file, using builtin", "path", cfg.FallbackPath, "error", err)
		}
	}

	store, err := local.Open(filepath.Join(cfg.DataDir, "local.db"))
	if err != nil {
		logger.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	imageDir := filepath.Join(cfg.DataDir, "images")
	if err := os.MkdirAll(imageDir, 0755); err != nil {
		logger.Error("failed to create image directory", "dir", imageDir, "error", err)
		os.Exit(1)
	}
	imageFs := afero.NewBasePathFs(afero.NewOsFs(), imageDir)

	cache := memocache.New()
	rc := remote.New(cfg.RemoteURL, cfg.RemoteKey, cfg.RemoteTimeout, logger)

	categories := data.NewCategories(cfg, rc, cache, fb, logger)
	posts := data.NewPosts(cfg, rc, cache, fb, logger)
	engagement := data.NewEngagement(cfg, rc, cache, fb, store, logger)
	tracker := engage.New(posts, engagement, store, local.NewSession(), logger)

	imageStore := images.NewStore(imageFs, logger)
	placeholder := images.NewPlaceholder(cfg.FontPath)
	resolver := images.NewResolver(cfg.BaseURL, imageStore, placeholder, logger)

	srv := httpserver.New(cfg, categories, posts, tracker, markdown.New(), imageStore, resolver, fb, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
