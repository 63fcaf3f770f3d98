package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/veganscan/backend/internal/domain"
	"github.com/veganscan/backend/internal/logging"
	"github.com/veganscan/backend/internal/metrics"
)

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	CacheTTL     time.Duration
	DebugLogging bool
}

// AnalysisService runs the verdict engine with caching and optional text extraction
type AnalysisService struct {
	engine    *Engine
	cache     domain.CacheRepository
	extractor domain.IngredientExtractor
	cacheTTL  time.Duration
	debug     bool
	logger    *log.Logger
}

// NewAnalysisService creates a new analysis service. cache, extractor and logger may be nil.
func NewAnalysisService(
	engine *Engine,
	cache domain.CacheRepository,
	extractor domain.IngredientExtractor,
	logger *log.Logger,
	config AnalysisServiceConfig,
) *AnalysisService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &AnalysisService{
		engine:    engine,
		cache:     cache,
		extractor: extractor,
		cacheTTL:  cacheTTL,
		debug:     config.DebugLogging,
		logger:    logger.WithPrefix("analysis"),
	}
}

// AnalyzeIngredients returns the product verdict for an ingredient list.
// Flow: check cache -> run engine -> cache -> return
func (s *AnalysisService) AnalyzeIngredients(ctx context.Context, request domain.AnalyzeRequest) (domain.ProductVerdict, error) {
	if request.Ingredients == nil {
		return domain.ProductVerdict{}, domain.ErrInvalidRequest
	}
	return s.analyze(ctx, request, "ingredients"), nil
}

// AnalyzeText extracts ingredients from free text with the external classifier,
// then analyzes them using the classifier's hints.
func (s *AnalysisService) AnalyzeText(ctx context.Context, request domain.TextAnalysisRequest) (*domain.TextAnalysis, error) {
	if strings.TrimSpace(request.Text) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if s.extractor == nil {
		return nil, domain.ErrExtractorNotConfigured
	}

	extraction, err := s.extractor.Extract(ctx, request.Text, request.Language)
	if err != nil {
		if !errors.Is(err, domain.ErrExtractorFailure) {
			err = fmt.Errorf("%w: %v", domain.ErrExtractorFailure, err)
		}
		s.logger.Warn("extraction failed", "err", err)
		return nil, err
	}
	if extraction == nil || len(extraction.Ingredients) == 0 {
		return nil, domain.ErrNoIngredientsFound
	}

	verdict := s.analyze(ctx, domain.AnalyzeRequest{
		Ingredients: extraction.Ingredients,
		Hints:       extraction.Hints,
	}, "text")

	return &domain.TextAnalysis{
		Ingredients: extraction.Ingredients,
		Verdict:     verdict,
	}, nil
}

func (s *AnalysisService) analyze(ctx context.Context, request domain.AnalyzeRequest, source string) domain.ProductVerdict {
	cacheKey := generateCacheKey(request)

	if cached, ok := s.getFromCache(ctx, cacheKey); ok {
		metrics.ObserveAnalysis(cached.Status().String(), "cache", false, 0)
		return cached
	}

	start := time.Now()
	verdict := s.engine.Analyze(request)
	took := time.Since(start)

	metrics.ObserveAnalysis(verdict.Status().String(), source, len(verdict.Flags) > 0, took)
	for _, v := range verdict.Ingredients {
		metrics.ObserveIngredient(v.Status().String())
	}

	if s.debug {
		s.logger.Debug("analysis complete",
			"source", source,
			"ingredients", len(request.Ingredients),
			"status", verdict.Status(),
			"confidence", verdict.Confidence,
			"flags", len(verdict.Flags),
			"took", took)
		for _, v := range verdict.Ingredients {
			s.logger.Debug("ingredient", "name", v.Name, "status", v.Status(), "confidence", v.Confidence, "reason", v.MatchReason)
		}
	}

	if err := s.setInCache(ctx, cacheKey, verdict); err != nil {
		s.logger.Warn("failed to cache verdict", "key", cacheKey, "err", err)
	}

	return verdict
}

// cacheKeyHint is one hint in the cache key encoding
type cacheKeyHint struct {
	Name       string  `json:"n"`
	Status     string  `json:"s"`
	Confidence float64 `json:"c"`
}

// generateCacheKey fingerprints the raw request: the ingredient list exactly as
// given and the hints sorted by name, JSON-encoded and hashed. Raw names are used
// so cached verdicts carry the caller's own display names.
// Format: "verdict:{sha256 hex}"
func generateCacheKey(request domain.AnalyzeRequest) string {
	hints := make([]cacheKeyHint, 0, len(request.Hints))
	for name, h := range request.Hints {
		hints = append(hints, cacheKeyHint{Name: name, Status: h.Status().String(), Confidence: h.Confidence})
	}
	sort.Slice(hints, func(i, j int) bool { return hints[i].Name < hints[j].Name })

	ingredients := request.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}

	// Marshalling plain strings and numbers cannot fail
	payload, _ := json.Marshal(struct {
		Ingredients []string       `json:"i"`
		Hints       []cacheKeyHint `json:"h"`
	}{ingredients, hints})

	sum := sha256.Sum256(payload)
	return "verdict:" + hex.EncodeToString(sum[:])
}

// getFromCache retrieves a verdict from cache. Any failure counts as a miss.
func (s *AnalysisService) getFromCache(ctx context.Context, key string) (domain.ProductVerdict, bool) {
	if s.cache == nil {
		return domain.ProductVerdict{}, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.ObserveCacheLookup(false)
		return domain.ProductVerdict{}, false
	}

	var verdict domain.ProductVerdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		s.logger.Warn("discarding unreadable cache entry", "key", key, "err", err)
		_ = s.cache.Delete(ctx, key)
		metrics.ObserveCacheLookup(false)
		return domain.ProductVerdict{}, false
	}

	metrics.ObserveCacheLookup(true)
	return verdict, true
}

// setInCache stores a verdict in cache
func (s *AnalysisService) setInCache(ctx context.Context, key string, verdict domain.ProductVerdict) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(verdict)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
