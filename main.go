package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/encuestape/encuestape/cache"
	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/db"
	"github.com/encuestape/encuestape/filestorage"
	"github.com/encuestape/encuestape/router"
	"github.com/encuestape/encuestape/seed"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to the database, waiting for it to come up
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	if cfg.SeedDemo {
		res, err := seed.Apply(ctx, dbConn)
		if err != nil {
			slog.Error("demo seed failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Demo data seeded",
			"encuestas", res.Encuestas,
			"noticias", res.Noticias,
			"denuncias", res.Denuncias,
			"foro", res.Foro,
		)
	}

	// Results cache is optional; without Redis every read hits the database
	var resultsCache cache.ResultsCache = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.Connect(ctx, cfg.RedisURL, cfg.ResultsCacheTTL)
		if err != nil {
			slog.Warn("redis unavailable, results cache disabled", "error", err)
		} else {
			defer rc.Close()
			resultsCache = rc
			slog.Info("Results cache ready", "ttl", cfg.ResultsCacheTTL)
		}
	}

	// Image storage
	var files filestorage.FileStorage
	switch cfg.StorageBackend {
	case cliparse.StorageGCS:
		gcs, err := filestorage.NewGCSStorage(ctx, cfg.GCSBucket)
		if err != nil {
			slog.Error("storage setup failed", "error", err)
			os.Exit(1)
		}
		defer gcs.Close()
		files = gcs
	default:
		files = filestorage.NewLocalStorage(cfg.StorageDir, cfg.PublicBaseURL)
	}
	slog.Info("Image storage ready", "backend", cfg.StorageBackend)

	// Create router
	handler := router.NewRouter(dbConn, cfg, resultsCache, files)

	// Create server
	server := http.Server{
		Handler:           handler,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctrlc
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		return
	}
	// Let in-flight requests finish before the deferred closes run
	<-drained
	slog.Info("Server closed")
}
