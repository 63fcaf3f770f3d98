package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veganscan/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data        map[string][]byte
	getError    error
	setError    error
	getCalled   bool
	setCalls    int
	deleteCalls int
	lastTTL     time.Duration
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string][]byte),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.setCalls++
	m.lastTTL = ttl
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.deleteCalls++
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockExtractor is a mock implementation of domain.IngredientExtractor
type MockExtractor struct {
	result   *domain.Extraction
	err      error
	calls    int
	lastText string
	lastLang string
}

func (m *MockExtractor) Extract(ctx context.Context, text, language string) (*domain.Extraction, error) {
	m.calls++
	m.lastText = text
	m.lastLang = language
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestNewAnalysisService(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("creates service with default values", func(t *testing.T) {
		svc := NewAnalysisService(engine, nil, nil, nil, AnalysisServiceConfig{})
		require.NotNil(t, svc)
		assert.Equal(t, 24*time.Hour, svc.cacheTTL)
		assert.NotNil(t, svc.logger)
	})

	t.Run("creates service with custom values", func(t *testing.T) {
		svc := NewAnalysisService(engine, NewMockCacheRepository(), nil, nil, AnalysisServiceConfig{
			CacheTTL:     time.Hour,
			DebugLogging: true,
		})
		assert.Equal(t, time.Hour, svc.cacheTTL)
		assert.True(t, svc.debug)
	})
}

func TestAnalyzeIngredients(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	request := domain.AnalyzeRequest{Ingredients: []string{"Mjölk", "Socker", "Salt"}}

	t.Run("returns error for nil ingredients", func(t *testing.T) {
		svc := NewAnalysisService(engine, NewMockCacheRepository(), nil, nil, AnalysisServiceConfig{})

		_, err := svc.AnalyzeIngredients(ctx, domain.AnalyzeRequest{})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("empty list yields the fixed verdict", func(t *testing.T) {
		svc := NewAnalysisService(engine, nil, nil, nil, AnalysisServiceConfig{})

		result, err := svc.AnalyzeIngredients(ctx, domain.AnalyzeRequest{Ingredients: []string{}})
		require.NoError(t, err)
		assert.Equal(t, EmptyListReasoning, result.Reasoning)
		assert.Equal(t, 0.3, result.Confidence)
	})

	t.Run("analyzes and caches on miss", func(t *testing.T) {
		cache := NewMockCacheRepository()
		svc := NewAnalysisService(engine, cache, nil, nil, AnalysisServiceConfig{CacheTTL: time.Hour})

		result, err := svc.AnalyzeIngredients(ctx, request)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNonVegan, result.Status())
		assert.True(t, cache.getCalled)
		assert.Equal(t, 1, cache.setCalls)
		assert.Equal(t, time.Hour, cache.lastTTL)

		stored, ok := cache.data[generateCacheKey(request)]
		require.True(t, ok)
		var cached domain.ProductVerdict
		require.NoError(t, json.Unmarshal(stored, &cached))
		assert.Equal(t, result, cached)
	})

	t.Run("returns cached verdict on hit", func(t *testing.T) {
		cache := NewMockCacheRepository()
		svc := NewAnalysisService(engine, cache, nil, nil, AnalysisServiceConfig{})

		first, err := svc.AnalyzeIngredients(ctx, request)
		require.NoError(t, err)
		second, err := svc.AnalyzeIngredients(ctx, domain.AnalyzeRequest{Ingredients: []string{"Mjölk", "Socker", "Salt"}})
		require.NoError(t, err)

		assert.Equal(t, 1, cache.setCalls, "second call should hit the cache")
		assert.Equal(t, first, second)
	})

	t.Run("differently written lists never share a verdict", func(t *testing.T) {
		tests := []struct {
			name   string
			warm   []string
			lookup []string
		}{
			{"casing", []string{"mjölk", "Socker", "Salt"}, []string{"MJÖLK", "Socker", "Salt"}},
			{"emphasis", []string{"Mjölk", "Socker", "Salt"}, []string{"**Mjölk**", "Socker", "Salt"}},
			{"separator inside a name", []string{"Socker", "Mjölk", "Salt"}, []string{"Socker|Mjölk", "Salt"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cache := NewMockCacheRepository()
				svc := NewAnalysisService(engine, cache, nil, nil, AnalysisServiceConfig{})

				_, err := svc.AnalyzeIngredients(ctx, domain.AnalyzeRequest{Ingredients: tt.warm})
				require.NoError(t, err)

				lookup := domain.AnalyzeRequest{Ingredients: tt.lookup}
				result, err := svc.AnalyzeIngredients(ctx, lookup)
				require.NoError(t, err)
				assert.Equal(t, engine.Analyze(lookup), result)
				assert.Equal(t, 2, cache.setCalls)
			})
		}
	})

	t.Run("serves stored entry as is", func(t *testing.T) {
		cache := NewMockCacheRepository()
		stored := NewVerdictAggregator().Empty()
		stored.Reasoning = "from cache"
		data, err := json.Marshal(stored)
		require.NoError(t, err)
		cache.data[generateCacheKey(request)] = data

		svc := NewAnalysisService(engine, cache, nil, nil, AnalysisServiceConfig{})
		result, err := svc.AnalyzeIngredients(ctx, request)
		require.NoError(t, err)
		assert.Equal(t, "from cache", result.Reasoning)
		assert.Zero(t, cache.setCalls)
	})

	t.Run("discards unreadable cache entry", func(t *testing.T) {
		cache := NewMockCacheRepository()
		cache.data[generateCacheKey(request)] = []byte("{not json")

		svc := NewAnalysisService(engine, cache, nil, nil, AnalysisServiceConfig{})
		result, err := svc.AnalyzeIngredients(ctx, request)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNonVegan, result.Status())
		assert.Equal(t, 1, cache.deleteCalls)
		assert.Equal(t, 1, cache.setCalls)
	})

	t.Run("cache failures do not fail the analysis", func(t *testing.T) {
		cache := NewMockCacheRepository()
		cache.getError = errors.New("connection refused")
		cache.setError = errors.New("connection refused")

		svc := NewAnalysisService(engine, cache, nil, nil, AnalysisServiceConfig{DebugLogging: true})
		result, err := svc.AnalyzeIngredients(ctx, request)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNonVegan, result.Status())
	})

	t.Run("works without cache", func(t *testing.T) {
		svc := NewAnalysisService(engine, nil, nil, nil, AnalysisServiceConfig{})
		result, err := svc.AnalyzeIngredients(ctx, request)
		require.NoError(t, err)
		assert.Equal(t, engine.Analyze(request), result)
	})
}

func TestAnalyzeText(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	t.Run("returns error for blank text", func(t *testing.T) {
		extractor := &MockExtractor{}
		svc := NewAnalysisService(engine, nil, extractor, nil, AnalysisServiceConfig{})

		_, err := svc.AnalyzeText(ctx, domain.TextAnalysisRequest{Text: "  \n "})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		assert.Zero(t, extractor.calls)
	})

	t.Run("returns error without extractor", func(t *testing.T) {
		svc := NewAnalysisService(engine, nil, nil, nil, AnalysisServiceConfig{})

		_, err := svc.AnalyzeText(ctx, domain.TextAnalysisRequest{Text: "Ingredienser: mjölk"})
		assert.ErrorIs(t, err, domain.ErrExtractorNotConfigured)
	})

	t.Run("wraps extractor errors", func(t *testing.T) {
		extractor := &MockExtractor{err: errors.New("timeout")}
		svc := NewAnalysisService(engine, nil, extractor, nil, AnalysisServiceConfig{})

		_, err := svc.AnalyzeText(ctx, domain.TextAnalysisRequest{Text: "Ingredienser: mjölk"})
		assert.ErrorIs(t, err, domain.ErrExtractorFailure)
		assert.Contains(t, err.Error(), "timeout")
	})

	t.Run("does not wrap extractor failures twice", func(t *testing.T) {
		extractor := &MockExtractor{err: fmt.Errorf("%w: status 502", domain.ErrExtractorFailure)}
		svc := NewAnalysisService(engine, nil, extractor, nil, AnalysisServiceConfig{})

		_, err := svc.AnalyzeText(ctx, domain.TextAnalysisRequest{Text: "Ingredienser: mjölk"})
		assert.ErrorIs(t, err, domain.ErrExtractorFailure)
		assert.Equal(t, 1, strings.Count(err.Error(), domain.ErrExtractorFailure.Error()))
	})

	t.Run("returns error when nothing is extracted", func(t *testing.T) {
		for _, result := range []*domain.Extraction{nil, {Ingredients: []string{}}} {
			extractor := &MockExtractor{result: result}
			svc := NewAnalysisService(engine, nil, extractor, nil, AnalysisServiceConfig{})

			_, err := svc.AnalyzeText(ctx, domain.TextAnalysisRequest{Text: "Bäst före 2026"})
			assert.ErrorIs(t, err, domain.ErrNoIngredientsFound)
		}
	})

	t.Run("analyzes extracted ingredients with hints", func(t *testing.T) {
		extractor := &MockExtractor{result: &domain.Extraction{
			Ingredients: []string{"Karmin", "Socker", "Salt"},
			Hints:       map[string]domain.Hint{"Karmin": nonVegan(0.9)},
		}}
		cache := NewMockCacheRepository()
		svc := NewAnalysisService(engine, cache, extractor, nil, AnalysisServiceConfig{})

		result, err := svc.AnalyzeText(ctx, domain.TextAnalysisRequest{Text: "Socker, salt, karmin", Language: "sv"})
		require.NoError(t, err)
		assert.Equal(t, "Socker, salt, karmin", extractor.lastText)
		assert.Equal(t, "sv", extractor.lastLang)
		assert.Equal(t, []string{"Karmin", "Socker", "Salt"}, result.Ingredients)
		assert.Equal(t, domain.StatusNonVegan, result.Verdict.Status())
		assert.Equal(t, []string{"Karmin"}, result.Verdict.NonVeganIngredients)
		assert.Equal(t, 1, cache.setCalls)
	})
}

func TestGenerateCacheKey(t *testing.T) {
	key := func(ingredients []string, hints map[string]domain.Hint) string {
		return generateCacheKey(domain.AnalyzeRequest{Ingredients: ingredients, Hints: hints})
	}

	t.Run("format", func(t *testing.T) {
		k := key([]string{"Mjölk", "Socker"}, nil)
		assert.True(t, strings.HasPrefix(k, "verdict:"))
		assert.Len(t, k, len("verdict:")+64)
	})

	t.Run("same request same key", func(t *testing.T) {
		hints := map[string]domain.Hint{"Lecitin": vegan(0.9), "E471": uncertain(0.5)}
		assert.Equal(t, key([]string{"Lecitin", "E471"}, hints), key([]string{"Lecitin", "E471"}, hints))
	})

	t.Run("nil and empty lists share a key", func(t *testing.T) {
		assert.Equal(t, key(nil, nil), key([]string{}, map[string]domain.Hint{}))
	})

	distinct := []struct {
		name string
		a, b []string
	}{
		{"order", []string{"Mjölk", "Socker"}, []string{"Socker", "Mjölk"}},
		{"casing", []string{"Mjölk"}, []string{"MJÖLK"}},
		{"emphasis", []string{"Mjölk"}, []string{"**Mjölk**"}},
		{"separator inside a name", []string{"Socker", "Mjölk", "Salt"}, []string{"Socker|Mjölk", "Salt"}},
		{"split names", []string{"Vitamin D3"}, []string{"Vitamin", "D3"}},
	}

	for _, tt := range distinct {
		t.Run("differs by "+tt.name, func(t *testing.T) {
			assert.NotEqual(t, key(tt.a, nil), key(tt.b, nil))
		})
	}

	t.Run("hints change the key", func(t *testing.T) {
		plain := key([]string{"Lecitin"}, nil)
		hinted := key([]string{"Lecitin"}, map[string]domain.Hint{"Lecitin": vegan(0.9)})
		otherConfidence := key([]string{"Lecitin"}, map[string]domain.Hint{"Lecitin": vegan(0.8)})
		otherName := key([]string{"Lecitin"}, map[string]domain.Hint{"lecitin": vegan(0.9)})

		assert.NotEqual(t, plain, hinted)
		assert.NotEqual(t, hinted, otherConfidence)
		assert.NotEqual(t, hinted, otherName)
	})
}
