package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
	"github.com/veganscan/backend/internal/domain"
)

// Matching thresholds
const (
	DefaultMatchThreshold = 0.8 // minimum similarity for a fuzzy match to be accepted
	shortCompoundLen      = 4   // entries shorter than this only match at word boundaries
)

// FuzzyMatcher finds the closest reference token using normalized edit distance
type FuzzyMatcher struct {
	threshold float64
}

// NewFuzzyMatcher creates a matcher with the given acceptance threshold
func NewFuzzyMatcher(threshold float64) *FuzzyMatcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultMatchThreshold
	}
	return &FuzzyMatcher{threshold: threshold}
}

// Threshold returns the acceptance threshold
func (m *FuzzyMatcher) Threshold() float64 {
	return m.threshold
}

// FindBestMatch finds the best match for input in the reference set.
//
// In strict mode only an exact match after normalization is accepted (similarity 1.0).
// Otherwise every target is scored with 1 - distance/max(len); the highest score wins,
// ties keep the first target in set order, and the winner must reach the threshold.
// When nothing qualifies the result has no token but still reports the best similarity.
func (m *FuzzyMatcher) FindBestMatch(input string, set *ReferenceSet, strict bool) domain.MatchResult {
	return m.match(Normalize(input), set, strict)
}

// match works on an already normalized input
func (m *FuzzyMatcher) match(normalized string, set *ReferenceSet, strict bool) domain.MatchResult {
	if normalized == "" || set == nil {
		return domain.MatchResult{}
	}

	// Exact membership short-circuits: similarity 1.0 is the maximum and the
	// index holds the first position, so the full scan would pick the same entry.
	if entry, ok := set.lookup(normalized); ok {
		return domain.MatchResult{Token: entry, Similarity: 1.0}
	}
	if strict {
		return domain.MatchResult{}
	}

	bestIdx := -1
	bestSim := 0.0
	for i, target := range set.normalized {
		sim := Similarity(normalized, target)
		if sim > bestSim {
			bestSim = sim
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestSim < m.threshold {
		return domain.MatchResult{Similarity: bestSim}
	}
	return domain.MatchResult{Token: set.entries[bestIdx], Similarity: bestSim}
}

// FindCompoundMatch finds the longest reference entry embedded in the token, which is
// how compound words ("havremjolk", "sojalecitin") are recognised. Entries of four or
// more characters may appear anywhere; shorter ones must start or end a word.
// Similarity is the share of the token covered by the entry.
func (m *FuzzyMatcher) FindCompoundMatch(input string, set *ReferenceSet) domain.MatchResult {
	return m.compound(Normalize(input), set)
}

func (m *FuzzyMatcher) compound(normalized string, set *ReferenceSet) domain.MatchResult {
	if normalized == "" || set == nil {
		return domain.MatchResult{}
	}

	words := strings.Fields(normalized)
	bestIdx := -1
	bestLen := 0
	for i, target := range set.normalized {
		n := utf8.RuneCountInString(target)
		if n <= bestLen {
			continue
		}
		if embeds(normalized, words, target, n) {
			bestIdx = i
			bestLen = n
		}
	}

	if bestIdx < 0 {
		return domain.MatchResult{}
	}
	sim := float64(bestLen) / float64(utf8.RuneCountInString(normalized))
	if sim > 1 {
		sim = 1
	}
	return domain.MatchResult{Token: set.entries[bestIdx], Similarity: sim}
}

// Lookup is the classifier's reference lookup: a fuzzy match, falling back to a
// compound match when the fuzzy matcher finds nothing
func (m *FuzzyMatcher) Lookup(normalized string, set *ReferenceSet) domain.MatchResult {
	if r := m.match(normalized, set, false); r.Found() {
		return r
	}
	return m.compound(normalized, set)
}

// BestSimilarity returns the highest similarity of the token against any entry,
// counting compound containment, with no threshold applied
func (m *FuzzyMatcher) BestSimilarity(normalized string, set *ReferenceSet) float64 {
	best := m.match(normalized, set, false).Similarity
	if c := m.compound(normalized, set); c.Similarity > best {
		best = c.Similarity
	}
	return best
}

// embeds reports whether target occurs in the token under the compound rules
func embeds(normalized string, words []string, target string, targetLen int) bool {
	if targetLen >= shortCompoundLen {
		return strings.Contains(normalized, target)
	}
	for _, w := range words {
		if strings.HasPrefix(w, target) || strings.HasSuffix(w, target) {
			return true
		}
	}
	return false
}

// Similarity returns 1 - levenshtein(a, b) / max(len(a), len(b)) over runes.
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1.0
	}
	dist := matchr.Levenshtein(a, b)
	return 1 - float64(dist)/float64(longest)
}
