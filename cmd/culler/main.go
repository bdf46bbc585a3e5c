package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photo-culler/internal/cache"
	"photo-culler/internal/catalog"
	"photo-culler/internal/database"
	"photo-culler/internal/delivery"
	"photo-culler/internal/filesystem"
	"photo-culler/internal/handlers"
	"photo-culler/internal/logging"
	"photo-culler/internal/memory"
	"photo-culler/internal/metrics"
	"photo-culler/internal/middleware"
	"photo-culler/internal/prefetch"
	"photo-culler/internal/resize"
	"photo-culler/internal/startup"
)

const (
	sessionCleanupInterval = time.Hour
	collectorInterval      = 30 * time.Second
	shutdownTimeout        = 30 * time.Second
)

func main() {
	startTime := time.Now()

	// Must run before large allocations.
	memResult := memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	logMemoryConfig(memResult)

	lock, err := startup.AcquireInstanceLock(config.LockPath)
	if err != nil {
		startup.LogFatal("%v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetBytesReadHook(metrics.RecordBytesRead)
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"source":   config.SourceDir,
		"database": config.DatabaseDir,
	}))

	ctx := context.Background()

	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart))

	resizer, backend, err := resize.New(config.ResizeBackend, config.ResizeFilter)
	if err != nil {
		startup.LogFatal("Failed to initialize resizer: %v", err)
	}
	startup.LogResizerInit(config.ResizeBackend, backend, config.ResizeFilter)

	results, err := cache.New(config.CacheCapacity)
	if err != nil {
		startup.LogFatal("Failed to create result cache: %v", err)
	}

	cat := catalog.New(db)
	cat.OnReload(func(generation string) {
		results.Purge()
		logging.Debug("Catalog generation %s loaded, result cache purged", generation)
	})

	viewport, err := delivery.NewViewport(config.MaxWidth, config.MaxHeight)
	if err != nil {
		startup.LogFatal("Invalid image bounds: %v", err)
	}
	producer := delivery.NewProducer(cat, resizer, viewport, nil)

	memConfig := memory.DefaultConfig()
	memConfig.MemoryLimitBytes = memResult.GoMemLimit
	monitor := memory.NewMonitor(memConfig)
	monitor.Start()

	scheduler := prefetch.New(prefetch.Config{
		Window:    config.PrefetchWindow,
		Workers:   config.PrefetchWorkers,
		QueueSize: config.PrefetchQueue,
	}, producer, results, monitor)
	scheduler.Start()

	title := handlers.NewTitleTracker(cat)
	orchestrator := delivery.NewOrchestrator(producer, results, scheduler, title.OnServed)

	loadStart := time.Now()
	if config.SourceDir != "" {
		if err := cat.Open(ctx, config.SourceDir); err != nil {
			logging.Warn("Failed to open SOURCE_DIR %s: %v", config.SourceDir, err)
		}
	}
	startup.LogCatalogInit(cat.SourceDir(), cat.Len(), time.Since(loadStart))

	collector := metrics.NewCollector(&statsProvider{catalog: cat, cache: results}, collectorInterval)
	collector.Start()

	stopCleanup := make(chan struct{})
	go cleanSessions(db, stopCleanup)

	h := handlers.New(handlers.Deps{
		DB:           db,
		Catalog:      cat,
		Cache:        results,
		Orchestrator: orchestrator,
		Scheduler:    scheduler,
		Viewport:     viewport,
		Memory:       monitor,
		Title:        title,
		Backend:      backend,
		AuthEnabled:  config.AuthEnabled,
	})

	router := handlers.NewRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           buildHandler(h, router, config),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		startup.LogShutdownInitiated(sig.String())
	case err := <-serverErr:
		logging.Error("Server error: %v", err)
		startup.LogShutdownInitiated("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Stopping prefetch workers")
	scheduler.Stop()
	startup.LogShutdownStepComplete("Prefetch workers stopped")

	collector.Stop()
	monitor.Stop()
	close(stopCleanup)

	if backend == resize.BackendVips {
		startup.LogShutdownStep("Shutting down libvips")
		resize.ShutdownVips()
		startup.LogShutdownStepComplete("libvips stopped")
	}

	startup.LogShutdownStep("Closing database")
	if err := db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}

	if err := lock.Release(); err != nil {
		logging.Warn("Failed to release instance lock: %v", err)
	}

	startup.LogShutdownComplete()
}

// buildHandler wraps the router: auth innermost, then metrics, access
// logging and compression.
func buildHandler(h *handlers.Handlers, router *mux.Router, config *startup.Config) http.Handler {
	var handler http.Handler = h.AuthMiddleware(router)

	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	return middleware.Compression(middleware.DefaultCompressionConfig())(handler)
}

func newMetricsServer(port string) *http.Server {
	serveMux := http.NewServeMux()
	serveMux.Handle("/metrics", promhttp.Handler())
	serveMux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              ":" + port,
		Handler:           serveMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func cleanSessions(db *database.Database, stop <-chan struct{}) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := db.CleanExpiredSessions(ctx); err != nil {
				logging.Warn("Session cleanup failed: %v", err)
			}
			cancel()
		case <-stop:
			return
		}
	}
}

func logMemoryConfig(result memory.ConfigResult) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY")
	logging.Info("------------------------------------------------------------")
	if !result.Configured {
		logging.Info("  GOMEMLIMIT not configured (set MEMORY_LIMIT to enable prefetch throttling)")
		return
	}
	logging.Info("  Source:          %s", result.Source)
	if result.ContainerLimit > 0 {
		logging.Info("  Container limit: %s", memory.FormatBytes(result.ContainerLimit))
		logging.Info("  Ratio:           %.0f%%", result.Ratio*100)
	}
	logging.Info("  GOMEMLIMIT:      %s", memory.FormatBytes(result.GoMemLimit))
}

// statsProvider feeds catalog and cache counts to the metrics collector.
type statsProvider struct {
	catalog *catalog.Catalog
	cache   *cache.ResultCache
}

func (p *statsProvider) GetStats() metrics.Stats {
	summary := p.catalog.Summary()
	cacheStats := p.cache.Stats()
	return metrics.Stats{
		TotalItems:   summary.Total,
		Pending:      summary.Pending,
		Keep:         summary.Keep,
		Delete:       summary.Delete,
		CacheEntries: cacheStats.Entries,
		CacheBytes:   cacheStats.Bytes,
	}
}
