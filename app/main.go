package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/globalopps/sam-atlas/app/api"
	"github.com/globalopps/sam-atlas/app/cache"
	"github.com/globalopps/sam-atlas/app/cfg"
	"github.com/globalopps/sam-atlas/app/database"
	"github.com/globalopps/sam-atlas/app/geo"
	"github.com/globalopps/sam-atlas/app/ingest"
	"github.com/globalopps/sam-atlas/app/sam"
	"github.com/globalopps/sam-atlas/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting SAM Atlas", "version", appCfg.Version)

	if err := run(appCfg); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	if err := os.MkdirAll(filepath.Dir(appCfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	taxonomy, err := geo.Load()
	if err != nil {
		return fmt.Errorf("failed to load country taxonomy: %w", err)
	}
	slog.Info("Taxonomy loaded",
		"regions", len(taxonomy.Regions()), "countries", len(taxonomy.Codes()))

	repo := database.NewOpportunityRepository(db)
	classifier := sam.NewClassifier(taxonomy)
	pipeline := ingest.NewPipeline(classifier, repo)

	progress, err := tasks.LoadProgress(filepath.Join(appCfg.DataDir, "progress.json"))
	if err != nil {
		return fmt.Errorf("failed to load progress checkpoint: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appCfg.Bootstrap {
		if err := runBootstrap(ctx, appCfg, pipeline, progress, repo); err != nil {
			return err
		}
	}

	var responseCache *cache.Cache
	if appCfg.RedisAddr != "" {
		responseCache, err = cache.NewCache(appCfg.RedisAddr, cache.DefaultTTL)
		if err != nil {
			slog.Warn("Response caching disabled", "error", err)
		} else {
			defer responseCache.Close()
		}
	}

	handler := api.NewHandler(repo, taxonomy, pipeline, progress, responseCache,
		appCfg.RecentDays, appCfg.ChunkSize)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return nil
}

// runBootstrap ingests the configured fiscal year archives plus the current
// extract, resuming from the progress checkpoint, then compacts the database.
func runBootstrap(ctx context.Context, appCfg *cfg.Cfg, pipeline *ingest.Pipeline,
	progress *tasks.Progress, repo database.OpportunityRepository) error {
	slog.Info("Starting bootstrap",
		"start_year", appCfg.StartYear, "end_year", appCfg.EndYear,
		"skip_current", appCfg.SkipCurrent)

	downloader := tasks.NewDownloader(tasks.NewHTTPClient(), appCfg.UserAgent)

	taskList, err := tasks.BuildBootstrapTasks(appCfg.StartYear, appCfg.EndYear,
		appCfg.ArchiveBaseURL, appCfg.CurrentCSVURL,
		downloader, pipeline, appCfg.ChunkSize, appCfg.SkipCurrent)
	if err != nil {
		return fmt.Errorf("failed to build bootstrap tasks: %w", err)
	}

	runner := tasks.NewRunner(progress)
	if err := runner.Run(ctx, taskList); err != nil {
		return fmt.Errorf("bootstrap aborted: %w", err)
	}

	if runner.TotalInserted > 0 {
		slog.Info("Optimizing database after bootstrap")
		if err := repo.Optimize(); err != nil {
			return fmt.Errorf("failed to optimize database: %w", err)
		}
	}

	return nil
}
