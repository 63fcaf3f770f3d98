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

	"github.com/veganscan/backend/config"
	httpDelivery "github.com/veganscan/backend/internal/delivery/http"
	"github.com/veganscan/backend/internal/domain"
	"github.com/veganscan/backend/internal/infrastructure/cache"
	"github.com/veganscan/backend/internal/infrastructure/extractor"
	"github.com/veganscan/backend/internal/infrastructure/reference"
	"github.com/veganscan/backend/internal/logging"
	"github.com/veganscan/backend/internal/usecase"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "1.0.0"

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	logger.Info("starting VeganScan backend",
		"version", version,
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"cache", cfg.Cache.Type)

	// Reference data is loaded once; any problem here is fatal
	lists, err := reference.LoadOrDefault(cfg.Reference.Path)
	if err != nil {
		logger.Fatal("failed to load reference data", "path", cfg.Reference.Path, "err", err)
	}
	ref, err := usecase.NewReferenceData(lists)
	if err != nil {
		logger.Fatal("invalid reference data", "err", err)
	}
	logger.Info("reference data loaded",
		"source", referenceSource(cfg.Reference.Path),
		"definitely_non_vegan", ref.DefinitelyNonVegan.Len(),
		"potentially_non_vegan", ref.PotentiallyNonVegan.Len(),
		"safe_exceptions", ref.SafeExceptions.Len(),
		"animal_indicators", ref.AnimalIndicators.Len())

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache(cache.DefaultCleanupInterval)
	defer memoryCache.Close()
	logger.Info("cache ready", "ttl", cfg.Cache.TTL)

	var ingredientExtractor domain.IngredientExtractor
	if cfg.Extractor.Enabled() {
		client := extractor.NewClient(extractor.ClientConfig{
			APIKey:            cfg.Extractor.APIKey,
			BaseURL:           cfg.Extractor.BaseURL,
			Timeout:           cfg.Extractor.Timeout,
			RequestsPerMinute: cfg.Extractor.RequestsPerMinute,
			MaxRetries:        cfg.Extractor.MaxRetries,
		}, logger)

		// Enable debug mode in development environment
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
		}
		ingredientExtractor = client
		logger.Info("extractor configured", "base_url", cfg.Extractor.BaseURL)
	} else {
		logger.Warn("extractor not configured: text analysis disabled (set VEGANSCAN_EXTRACTOR_API_KEY)")
	}

	// Initialize usecase layer
	engine := usecase.NewEngine(ref, usecase.EngineConfig{
		MatchThreshold:  cfg.Matching.Threshold,
		DedupSimilarity: cfg.Matching.DedupSimilarity,
	})
	analysisService := usecase.NewAnalysisService(engine, memoryCache, ingredientExtractor, logger,
		usecase.AnalysisServiceConfig{
			CacheTTL:     cfg.Cache.TTL,
			DebugLogging: cfg.Matching.DebugLogging,
		})

	logger.Info("matching configured",
		"threshold", cfg.Matching.Threshold,
		"dedup_similarity", cfg.Matching.DedupSimilarity,
		"debug", cfg.Matching.DebugLogging)

	// Create HTTP handler with dependencies and setup router
	handler := httpDelivery.NewHandler(analysisService, version)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}

func referenceSource(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}
