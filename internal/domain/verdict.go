package domain

import (
	"encoding/json"
	"fmt"
)

// Tristate is a yes/no answer that may also be unknown. It marshals to true, false or null.
type Tristate int8

const (
	Unknown Tristate = iota
	True
	False
)

// TristateOf converts a plain bool
func TristateOf(b bool) Tristate {
	if b {
		return True
	}
	return False
}

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes Unknown as null
func (t Tristate) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false and null
func (t *Tristate) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("tristate: %w", err)
	}
	switch {
	case b == nil:
		*t = Unknown
	case *b:
		*t = True
	default:
		*t = False
	}
	return nil
}

// Status is the classification outcome for an ingredient or a product
type Status int

const (
	StatusUnknown Status = iota
	StatusVegan
	StatusNonVegan
	StatusUncertain
)

func (s Status) String() string {
	switch s {
	case StatusVegan:
		return "vegan"
	case StatusNonVegan:
		return "non_vegan"
	case StatusUncertain:
		return "uncertain"
	default:
		return "unknown"
	}
}

// MatchResult is the outcome of a fuzzy lookup against a reference set.
// Token is empty when no candidate met the acceptance threshold; Similarity
// still carries the best similarity seen.
type MatchResult struct {
	Token      string  `json:"token,omitempty"`
	Similarity float64 `json:"similarity"`
}

// Found reports whether a reference token was accepted
func (m MatchResult) Found() bool {
	return m.Token != ""
}

// IngredientVerdict is the per-ingredient classification
type IngredientVerdict struct {
	Name        string   `json:"name"`
	IsVegan     Tristate `json:"isVegan"`
	IsUncertain bool     `json:"isUncertain"`
	Confidence  float64  `json:"confidence"`
	MatchReason string   `json:"matchReason"`
}

// NewIngredientVerdict builds a verdict with the tri-state fields derived from status
func NewIngredientVerdict(name string, status Status, confidence float64, reason string) IngredientVerdict {
	v := IngredientVerdict{
		Name:        name,
		Confidence:  confidence,
		MatchReason: reason,
	}
	switch status {
	case StatusVegan:
		v.IsVegan = True
	case StatusNonVegan:
		v.IsVegan = False
	default:
		v.IsVegan = Unknown
		v.IsUncertain = true
	}
	return v
}

// Status derives the classification from the tri-state fields
func (v IngredientVerdict) Status() Status {
	switch {
	case v.IsUncertain:
		return StatusUncertain
	case v.IsVegan == True:
		return StatusVegan
	case v.IsVegan == False:
		return StatusNonVegan
	default:
		return StatusUnknown
	}
}

// ListAssessment is the list-level corruption heuristic outcome
type ListAssessment struct {
	Suspicious bool     `json:"suspicious"`
	Flags      []string `json:"flags"`
}

// ProductVerdict is the product-level result of one analysis run
type ProductVerdict struct {
	IsVegan              Tristate            `json:"isVegan"`
	IsUncertain          bool                `json:"isUncertain"`
	Confidence           float64             `json:"confidence"`
	NonVeganIngredients  []string            `json:"nonVeganIngredients"`
	UncertainIngredients []string            `json:"uncertainIngredients"`
	Reasoning            string              `json:"reasoning"`
	Ingredients          []IngredientVerdict `json:"ingredients"`
	Flags                []string            `json:"flags"`
}

// Status derives the product classification from the tri-state fields
func (p ProductVerdict) Status() Status {
	switch {
	case p.IsUncertain:
		return StatusUncertain
	case p.IsVegan == True:
		return StatusVegan
	case p.IsVegan == False:
		return StatusNonVegan
	default:
		return StatusUnknown
	}
}
