package usecase

import (
	"sort"
	"strings"

	"github.com/veganscan/backend/internal/domain"
)

// EngineConfig tunes the engine's thresholds. Zero values use the defaults.
type EngineConfig struct {
	MatchThreshold  float64
	DedupSimilarity float64
}

// Engine is the ingredient verdict pipeline: classify, deduplicate, aggregate.
// It holds only read-only reference data and is safe for concurrent use.
type Engine struct {
	ref        *ReferenceData
	matcher    *FuzzyMatcher
	detector   *CorruptionDetector
	classifier *IngredientClassifier
	dedup      *Deduplicator
	aggregator *VerdictAggregator
}

// NewEngine wires the pipeline over the given reference data
func NewEngine(ref *ReferenceData, config EngineConfig) *Engine {
	matcher := NewFuzzyMatcher(config.MatchThreshold)
	return &Engine{
		ref:        ref,
		matcher:    matcher,
		detector:   NewCorruptionDetector(ref, matcher),
		classifier: NewIngredientClassifier(ref, matcher),
		dedup:      NewDeduplicator(config.DedupSimilarity),
		aggregator: NewVerdictAggregator(),
	}
}

// Analyze runs one analysis. Blank entries are ignored; an empty list yields the
// fixed low-confidence Uncertain verdict. Deterministic for fixed reference data.
func (e *Engine) Analyze(request domain.AnalyzeRequest) domain.ProductVerdict {
	names := make([]string, 0, len(request.Ingredients))
	for _, raw := range request.Ingredients {
		if Normalize(raw) != "" {
			names = append(names, raw)
		}
	}
	if len(names) == 0 {
		return e.aggregator.Empty()
	}

	assessment := e.detector.AssessList(names)
	hints := newHintIndex(request.Hints)

	verdicts := make([]domain.IngredientVerdict, 0, len(names))
	for _, raw := range names {
		verdicts = append(verdicts, e.classifier.Classify(raw, hints.find(raw)))
	}

	return e.aggregator.Aggregate(e.dedup.Dedupe(verdicts), assessment)
}

// Classify exposes the single-ingredient classifier
func (e *Engine) Classify(rawName string, hint domain.Hint) domain.IngredientVerdict {
	return e.classifier.Classify(rawName, hint)
}

// AssessList exposes the list-level corruption detector
func (e *Engine) AssessList(rawNames []string) domain.ListAssessment {
	return e.detector.AssessList(rawNames)
}

// hintIndex resolves hints by raw name first, then by normalized name
type hintIndex struct {
	raw        map[string]domain.Hint
	normalized map[string]domain.Hint
}

func newHintIndex(hints map[string]domain.Hint) hintIndex {
	idx := hintIndex{raw: hints}
	if len(hints) == 0 {
		return idx
	}

	// Sorted so that two raw keys with the same normalized form resolve the same way every run
	keys := make([]string, 0, len(hints))
	for k := range hints {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	idx.normalized = make(map[string]domain.Hint, len(hints))
	for _, k := range keys {
		n := Normalize(k)
		if _, exists := idx.normalized[n]; !exists {
			idx.normalized[n] = hints[k]
		}
	}
	return idx
}

func (h hintIndex) find(raw string) domain.Hint {
	if hint, ok := h.raw[raw]; ok {
		return hint
	}
	if hint, ok := h.raw[strings.TrimSpace(raw)]; ok {
		return hint
	}
	return h.normalized[Normalize(raw)]
}
