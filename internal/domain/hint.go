package domain

import (
	"math"
	"strconv"
	"strings"
)

// HintKind tags the variant of an external classification hint
type HintKind int

const (
	HintAbsent HintKind = iota
	HintVegan
	HintNonVegan
	HintUncertain
)

// DefaultHintConfidence is used when a hint names a status but carries no confidence
const DefaultHintConfidence = 0.5

// Hint is an external classifier's guess for one ingredient. The zero value is HintAbsent.
type Hint struct {
	Kind       HintKind
	Confidence float64
}

// Present reports whether the hint carries a usable guess
func (h Hint) Present() bool {
	return h.Kind != HintAbsent
}

// Status maps the hint variant to a classification status
func (h Hint) Status() Status {
	switch h.Kind {
	case HintVegan:
		return StatusVegan
	case HintNonVegan:
		return StatusNonVegan
	case HintUncertain:
		return StatusUncertain
	default:
		return StatusUnknown
	}
}

// RawHint is the loosely typed hint shape accepted at the boundary. IsVegan may be
// "vegan" | "non_vegan" | "uncertain" (any case); anything else, bools included, is malformed.
// Confidence may be a number or a numeric string.
type RawHint struct {
	IsVegan    any `json:"isVegan"`
	Confidence any `json:"confidence"`
}

// ParseHint validates a raw hint. Any malformed shape yields HintAbsent.
func ParseHint(raw RawHint) Hint {
	kind := parseHintKind(raw.IsVegan)
	if kind == HintAbsent {
		return Hint{}
	}

	confidence, ok := parseConfidence(raw.Confidence)
	if !ok {
		return Hint{}
	}

	return Hint{Kind: kind, Confidence: confidence}
}

// ParseHints validates a hint map, dropping entries that do not parse
func ParseHints(raw map[string]RawHint) map[string]Hint {
	if len(raw) == 0 {
		return nil
	}
	hints := make(map[string]Hint, len(raw))
	for name, rh := range raw {
		if h := ParseHint(rh); h.Present() {
			hints[name] = h
		}
	}
	return hints
}

func parseHintKind(v any) HintKind {
	s, ok := v.(string)
	if !ok {
		return HintAbsent
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vegan":
		return HintVegan
	case "non_vegan":
		return HintNonVegan
	case "uncertain":
		return HintUncertain
	}
	return HintAbsent
}

func parseConfidence(v any) (float64, bool) {
	var c float64
	switch t := v.(type) {
	case nil:
		return DefaultHintConfidence, true
	case float64:
		c = t
	case float32:
		c = float64(t)
	case int:
		c = float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		c = f
	default:
		return 0, false
	}
	if math.IsNaN(c) || c < 0 || c > 1 {
		return 0, false
	}
	return c, true
}
