package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/veganscan/backend/internal/domain"
)

// Confidence levels assigned by the classifier
const (
	corruptedConfidenceCap = 0.5  // ceiling for tokens that look misread
	uncertainConfidence    = 0.5  // potentially non-vegan reference hit without a hint
	nonVeganMinConfidence  = 0.9  // inexact non-vegan reference hit
	nonVeganMaxConfidence  = 0.99 // exact non-vegan reference hit
	safeMinConfidence      = 0.9  // inexact or prefix-based safe exception
	safeMaxConfidence      = 0.98 // clean exact safe exception: the reference-backed ceiling
	defaultVeganConfidence = 0.8  // no evidence either way
	animalIndicatorCap     = 0.8  // ceiling when the token hints at animal origin
	shortTokenLen          = 4    // tokens this short must be allow-listed
)

// corruptionMarkers are placeholders OCR and speech-to-text tools leave for text
// they could not read. Matched against the normalized token.
var corruptionMarkers = []string{
	"(...)",
	"[...]",
	"...",
	"…",
	"??",
	"[?]",
	"(?)",
	"(nagot)",
	"(oklart)",
	"(olasligt)",
	"(unclear)",
	"(illegible)",
	"(unreadable)",
	"\ufffd",
}

var (
	// eNumberPattern matches food additive codes such as "e471" or "e 160a"
	eNumberPattern = regexp.MustCompile(`^e ?\d{3,4}[a-z]?$`)

	// misreadDigitPattern matches digits wedged between letters ("mj0lk", "gr4dde")
	misreadDigitPattern = regexp.MustCompile(`\pL\d+\pL`)
)

// corruptionSignal describes how damaged a token looks
type corruptionSignal struct {
	hard bool // garbled or partial: never trust a reference match
	soft bool // possible OCR noise: never assert non-vegan on an inexact match
}

// IngredientClassifier classifies a single ingredient token against the reference data,
// reconciling the result with an optional external hint
type IngredientClassifier struct {
	ref     *ReferenceData
	matcher *FuzzyMatcher
}

// NewIngredientClassifier creates a classifier over the given reference data
func NewIngredientClassifier(ref *ReferenceData, matcher *FuzzyMatcher) *IngredientClassifier {
	return &IngredientClassifier{ref: ref, matcher: matcher}
}

// Classify resolves one raw ingredient name. Rules fire in fixed precedence:
//
//  1. corruption guard: garbled tokens are Uncertain, confidence at most 0.5
//  2. potentially non-vegan reference hit, unless a safe exception matches at least as well
//  3. definitely non-vegan reference hit, unless a safe exception or plant-based prefix applies
//  4. animal indicator substrings cap confidence at 0.8
//  5. otherwise Vegan at 0.8 (or the external hint, when one is supplied)
//
// Once the reference data matches, it takes precedence over the hint.
func (c *IngredientClassifier) Classify(rawName string, hint domain.Hint) domain.IngredientVerdict {
	name := displayName(rawName)
	normalized := Normalize(rawName)
	if normalized == "" {
		return domain.NewIngredientVerdict(name, domain.StatusUnknown, 0, "empty ingredient name")
	}

	signal := c.corruption(normalized)

	if signal.hard {
		confidence := corruptedConfidenceCap
		if hint.Present() && hint.Confidence < confidence {
			confidence = hint.Confidence
		}
		return domain.NewIngredientVerdict(name, domain.StatusUncertain, confidence, "likely corrupted token")
	}

	var (
		safe       bool
		safeReason string
		safeSim    float64
	)

	if um := c.matcher.Lookup(normalized, c.ref.PotentiallyNonVegan); um.Found() {
		sm := c.matcher.Lookup(normalized, c.ref.SafeExceptions)
		if sm.Found() && sm.Similarity >= um.Similarity {
			safe = true
			safeSim = sm.Similarity
			safeReason = fmt.Sprintf("safe exception %q outranks potentially non-vegan %q", sm.Token, um.Token)
		} else {
			confidence := uncertainConfidence
			if hint.Present() {
				confidence = hint.Confidence
			}
			return domain.NewIngredientVerdict(name, domain.StatusUncertain, confidence,
				fmt.Sprintf("potentially non-vegan: matches %q", um.Token))
		}
	}

	if !safe {
		if nm := c.matcher.Lookup(normalized, c.ref.DefinitelyNonVegan); nm.Found() {
			switch {
			case c.matcher.match(normalized, c.ref.SafeExceptions, true).Found():
				safe = true
				safeSim = 1.0
				safeReason = fmt.Sprintf("safe exception despite non-vegan %q", nm.Token)
			case c.ref.hasSafePrefix(normalized, nm.Token):
				safe = true
				safeSim = c.matcher.Threshold()
				safeReason = fmt.Sprintf("plant-based compound of %q", nm.Token)
			case signal.soft && nm.Similarity < 1.0:
				return domain.NewIngredientVerdict(name, domain.StatusUncertain, uncertainConfidence,
					fmt.Sprintf("possible misread of non-vegan %q", nm.Token))
			default:
				return domain.NewIngredientVerdict(name, domain.StatusNonVegan, c.nonVeganConfidence(nm.Similarity),
					fmt.Sprintf("non-vegan: matches %q", nm.Token))
			}
		}
	}

	if !safe {
		if sm := c.matcher.Lookup(normalized, c.ref.SafeExceptions); sm.Found() {
			safe = true
			safeSim = sm.Similarity
			safeReason = fmt.Sprintf("known safe: matches %q", sm.Token)
		}
	}

	var verdict domain.IngredientVerdict
	switch {
	case safe:
		verdict = domain.NewIngredientVerdict(name, domain.StatusVegan, c.safeConfidence(safeSim, signal.soft), safeReason)
	case hint.Present():
		verdict = domain.NewIngredientVerdict(name, hint.Status(), hint.Confidence, "external classification")
	default:
		verdict = domain.NewIngredientVerdict(name, domain.StatusVegan, defaultVeganConfidence, "no reference match")
	}

	return c.withIndicator(normalized, verdict)
}

// withIndicator applies the animal-indicator confidence cap without changing status
func (c *IngredientClassifier) withIndicator(normalized string, v domain.IngredientVerdict) domain.IngredientVerdict {
	for i, ind := range c.ref.AnimalIndicators.normalized {
		if !strings.Contains(normalized, ind) {
			continue
		}
		if v.Confidence > animalIndicatorCap {
			v.Confidence = animalIndicatorCap
		}
		v.MatchReason += fmt.Sprintf("; animal indicator %q", c.ref.AnimalIndicators.entries[i])
		break
	}
	return v
}

// corruption inspects a normalized token for OCR/ASR damage
func (c *IngredientClassifier) corruption(normalized string) corruptionSignal {
	var s corruptionSignal
	if hasCorruptionMarker(normalized) {
		s.hard = true
		return s
	}
	if utf8.RuneCountInString(normalized) <= shortTokenLen &&
		!c.ref.isKnownShort(normalized) &&
		!eNumberPattern.MatchString(normalized) {
		s.hard = true
		return s
	}
	if strings.ContainsAny(normalized, "?|") || misreadDigitPattern.MatchString(normalized) {
		s.soft = true
	}
	return s
}

// nonVeganConfidence scales from 0.9 at the acceptance threshold to 0.99 for an exact match
func (c *IngredientClassifier) nonVeganConfidence(similarity float64) float64 {
	return scaleConfidence(similarity, c.matcher.Threshold(), nonVeganMinConfidence, nonVeganMaxConfidence)
}

// safeConfidence scales from 0.9 to 0.98; soft corruption drops it to the default
func (c *IngredientClassifier) safeConfidence(similarity float64, soft bool) float64 {
	if soft {
		return defaultVeganConfidence
	}
	return scaleConfidence(similarity, c.matcher.Threshold(), safeMinConfidence, safeMaxConfidence)
}

// scaleConfidence maps similarity in [threshold, 1] linearly onto [lo, hi]
func scaleConfidence(similarity, threshold, lo, hi float64) float64 {
	if similarity >= 1 {
		return hi
	}
	if similarity <= threshold || threshold >= 1 {
		return lo
	}
	return lo + (hi-lo)*(similarity-threshold)/(1-threshold)
}

// hasCorruptionMarker reports whether a normalized token contains an unreadable-text placeholder
func hasCorruptionMarker(normalized string) bool {
	for _, m := range corruptionMarkers {
		if strings.Contains(normalized, m) {
			return true
		}
	}
	return false
}
