package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-quake-scene/internal/api"
	"github.com/mr1hm/go-quake-scene/internal/config"
	"github.com/mr1hm/go-quake-scene/internal/engine"
	"github.com/mr1hm/go-quake-scene/internal/filter"
	"github.com/mr1hm/go-quake-scene/internal/geo"
	"github.com/mr1hm/go-quake-scene/internal/ingestion"
	"github.com/mr1hm/go-quake-scene/internal/logging"
	"github.com/mr1hm/go-quake-scene/internal/magnitude"
	"github.com/mr1hm/go-quake-scene/internal/observability"
	"github.com/mr1hm/go-quake-scene/internal/render"
	"github.com/mr1hm/go-quake-scene/internal/repository"
	"github.com/mr1hm/go-quake-scene/internal/scene"
	"github.com/mr1hm/go-quake-scene/internal/store"
	"github.com/mr1hm/go-quake-scene/internal/stream"
	"github.com/mr1hm/go-quake-scene/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if !cfg.HasSources() {
		logging.Fatalf("no event sources configured: set DATA_FILES, DATA_URLS, USGS_URLS or CATALOG_PATH")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	var catalog repository.EventCatalog
	if cfg.Catalog.Path != "" {
		db, err := repository.NewSQLiteDB(cfg.Catalog.Path)
		if err != nil {
			logging.Fatalf("Failed to open catalogue: %v", err)
		}
		defer db.Close()
		catalog = db
	}

	sources, err := ingestion.NewSources(ctx, cfg, catalog)
	if err != nil {
		logging.Fatalf("Failed to build sources: %v", err)
	}

	events := store.New()
	if _, err := events.Load(ctx, sources...); err != nil {
		logging.Fatalf("Failed to load events: %v", err)
	}
	metrics.EventsLoaded.Set(float64(events.Len()))

	projector, err := geo.NewProjector(cfg.GeoConfig())
	if err != nil {
		logging.Fatalf("Invalid projection: %v", err)
	}
	encoder := magnitude.NewEncoder(cfg.MagnitudeConfig())

	eng := engine.NewChartEngine(cfg.Render.Title)
	synchronizer := scene.New(events, eng, projector, encoder,
		scene.WithMode(scene.Mode(cfg.Scene.Mode)),
		scene.WithMetrics(metrics),
		scene.WithClock(clock),
	)

	initial := cfg.InitialRange()
	if initial == (filter.Range{}) {
		lo, hi, ok := events.EpochRange()
		if !ok {
			logging.Fatalf("No event carries an epoch; set START_DATE and END_DATE")
		}
		initial = filter.RangeFromEpochs(lo, hi)
	}

	broadcaster := stream.NewBroadcaster()

	res, err := synchronizer.Rebuild(initial)
	if err != nil {
		logging.Fatalf("Initial rebuild failed: %v", err)
	}
	broadcaster.Broadcast(res)

	queue := worker.NewQueue(cfg.Scene.QueueSize, scene.NewRebuildProcessor(synchronizer, broadcaster.Broadcast))
	queue.Start(ctx)

	snapshot := &render.Snapshot{}
	loop := render.NewLoop(clock, cfg.Render.Interval, snapshot.Frame(eng, clock), metrics)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(ctx)
	}()

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))

	handler := api.NewHandler(events, synchronizer, queue, snapshot, broadcaster, metrics)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	broadcaster.Close() // ends open scene streams

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	cancel()
	queue.Stop()
	<-loopDone

	if _, err := synchronizer.Teardown(); err != nil {
		slog.Error("scene teardown error", "error", err)
	}

	slog.Info("shutdown complete", "spheres_left", eng.Stats().Allocated)
}
