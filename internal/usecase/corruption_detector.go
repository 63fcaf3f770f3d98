package usecase

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/veganscan/backend/internal/domain"
)

// List-level corruption heuristics
const (
	minListLength        = 3   // lists with fewer entries are suspicious
	minTokenLength       = 3   // shorter tokens are length outliers
	maxMedianMultiple    = 3.0 // tokens longer than this multiple of the median are outliers
	gibberishSimilarity  = 0.4 // below this best similarity a token matches nothing known
	suspiciousTokenRatio = 0.5 // share of outlier/gibberish tokens that makes a list suspicious
)

// CorruptionDetector flags ingredient lists that look like OCR/ASR output gone wrong
type CorruptionDetector struct {
	ref     *ReferenceData
	matcher *FuzzyMatcher
}

// NewCorruptionDetector creates a detector over the given reference data
func NewCorruptionDetector(ref *ReferenceData, matcher *FuzzyMatcher) *CorruptionDetector {
	return &CorruptionDetector{ref: ref, matcher: matcher}
}

// AssessList inspects a whole raw ingredient list. Flags are reported for corruption
// markers, too-short lists, length outliers (under 3 characters or over 3x the median)
// and tokens unlike anything in the reference data. The list is suspicious when any
// marker is present, it has two or fewer entries, or more than half of its tokens
// are outliers or unrecognized.
func (d *CorruptionDetector) AssessList(rawNames []string) domain.ListAssessment {
	assessment := domain.ListAssessment{Flags: []string{}}

	tokens := make([]string, 0, len(rawNames))
	names := make([]string, 0, len(rawNames))
	for _, raw := range rawNames {
		if n := Normalize(raw); n != "" {
			tokens = append(tokens, n)
			names = append(names, displayName(raw))
		}
	}

	for i, n := range tokens {
		if hasCorruptionMarker(n) {
			assessment.Suspicious = true
			assessment.Flags = append(assessment.Flags, fmt.Sprintf("corruption marker in %q", names[i]))
		}
	}

	if len(tokens) < minListLength {
		assessment.Suspicious = true
		assessment.Flags = append(assessment.Flags,
			fmt.Sprintf("ingredient list too short (%d entries)", len(tokens)))
	}

	if len(tokens) == 0 {
		return assessment
	}

	median := medianLength(tokens)
	flagged := 0
	for i, n := range tokens {
		tokenFlagged := false

		length := utf8.RuneCountInString(n)
		if length < minTokenLength || float64(length) > maxMedianMultiple*median {
			assessment.Flags = append(assessment.Flags, fmt.Sprintf("length outlier %q", names[i]))
			tokenFlagged = true
		}

		if d.matcher.BestSimilarity(n, d.ref.all) < gibberishSimilarity {
			assessment.Flags = append(assessment.Flags, fmt.Sprintf("unrecognized token %q", names[i]))
			tokenFlagged = true
		}

		if tokenFlagged {
			flagged++
		}
	}

	if float64(flagged)/float64(len(tokens)) > suspiciousTokenRatio {
		assessment.Suspicious = true
	}

	return assessment
}

// medianLength returns the median rune length of the tokens
func medianLength(tokens []string) float64 {
	lengths := make([]int, len(tokens))
	for i, t := range tokens {
		lengths[i] = utf8.RuneCountInString(t)
	}
	sort.Ints(lengths)

	mid := len(lengths) / 2
	if len(lengths)%2 == 1 {
		return float64(lengths[mid])
	}
	return float64(lengths[mid-1]+lengths[mid]) / 2
}
