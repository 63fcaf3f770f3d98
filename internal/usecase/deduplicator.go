package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/veganscan/backend/internal/domain"
)

// DefaultDedupSimilarity is the similarity above which two normalized names are the same
// ingredient. High enough that single-letter differences in short words never merge
// ("mjol" flour vs "mjolk" milk).
const DefaultDedupSimilarity = 0.9

// Deduplicator merges repeated mentions of the same ingredient
type Deduplicator struct {
	similarity float64
}

// NewDeduplicator creates a deduplicator with the given merge similarity
func NewDeduplicator(similarity float64) *Deduplicator {
	if similarity <= 0 || similarity > 1 {
		similarity = DefaultDedupSimilarity
	}
	return &Deduplicator{similarity: similarity}
}

// group tracks the surviving representative of one ingredient
type dedupGroup struct {
	key  string
	best domain.IngredientVerdict
}

// Dedupe groups verdicts by normalized name (or near-identical normalized names) and keeps
// one representative per group: highest confidence, then proper capitalization over
// all-caps/all-lowercase, then the longer name. Output follows first-seen group order.
func (d *Deduplicator) Dedupe(verdicts []domain.IngredientVerdict) []domain.IngredientVerdict {
	if len(verdicts) == 0 {
		return []domain.IngredientVerdict{}
	}

	var groups []*dedupGroup
	byKey := make(map[string]*dedupGroup, len(verdicts))

	for _, v := range verdicts {
		key := Normalize(v.Name)

		g, ok := byKey[key]
		if !ok {
			g = d.nearest(groups, key)
		}
		if g == nil {
			g = &dedupGroup{key: key, best: v}
			groups = append(groups, g)
			byKey[key] = g
			continue
		}

		byKey[key] = g
		if better(v, g.best) {
			g.best = v
		}
	}

	result := make([]domain.IngredientVerdict, 0, len(groups))
	for _, g := range groups {
		result = append(result, g.best)
	}
	return result
}

// nearest finds an existing group whose key is within merge similarity
func (d *Deduplicator) nearest(groups []*dedupGroup, key string) *dedupGroup {
	if key == "" {
		return nil
	}
	for _, g := range groups {
		if g.key != "" && Similarity(key, g.key) >= d.similarity {
			return g
		}
	}
	return nil
}

// better reports whether candidate should replace current as the group representative
func better(candidate, current domain.IngredientVerdict) bool {
	if candidate.Confidence != current.Confidence {
		return candidate.Confidence > current.Confidence
	}
	cs, ks := casingScore(candidate.Name), casingScore(current.Name)
	if cs != ks {
		return cs > ks
	}
	return utf8.RuneCountInString(candidate.Name) > utf8.RuneCountInString(current.Name)
}

// casingScore ranks display forms: "Mjölk" (2) beats mixed forms (1) beats "MJÖLK"/"mjölk" (0)
func casingScore(name string) int {
	var upper, lower int
	for _, r := range name {
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsLower(r):
			lower++
		}
	}
	if upper == 0 || lower == 0 {
		return 0
	}
	first, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if unicode.IsUpper(first) && upper == 1 {
		return 2
	}
	return 1
}
