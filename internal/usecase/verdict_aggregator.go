package usecase

import (
	"math"
	"strings"

	"github.com/veganscan/backend/internal/domain"
)

// Aggregation caps and fixed texts
const (
	uncertainCountCap       = 2   // more uncertain ingredients than this caps confidence
	uncertainShareCap       = 0.3 // a larger uncertain share caps confidence
	uncertainConfidenceCap  = 0.7
	suspiciousConfidenceCap = 0.6
	lowConfidenceThreshold  = 0.5
	emptyListConfidence     = 0.3

	// EmptyListReasoning is the fixed explanation for an analysis with no ingredients
	EmptyListReasoning = "No ingredients were supplied, so the product could not be assessed."

	lowConfidenceReasoning = "Overall confidence is low, so the product cannot be confirmed as vegan."
	veganReasoning         = "No non-vegan or uncertain ingredients were identified."
	corruptionReasoning    = "The ingredient list may be incomplete or misread; verify it against the package."
)

// VerdictAggregator folds classified ingredients into one product verdict
type VerdictAggregator struct{}

// NewVerdictAggregator creates an aggregator
func NewVerdictAggregator() *VerdictAggregator {
	return &VerdictAggregator{}
}

// Empty returns the terminal verdict for an analysis with no ingredients
func (a *VerdictAggregator) Empty() domain.ProductVerdict {
	return domain.ProductVerdict{
		IsVegan:              domain.Unknown,
		IsUncertain:          true,
		Confidence:           emptyListConfidence,
		NonVeganIngredients:  []string{},
		UncertainIngredients: []string{},
		Reasoning:            EmptyListReasoning,
		Ingredients:          []domain.IngredientVerdict{},
		Flags:                []string{},
	}
}

// Aggregate builds the product verdict.
//
// Status is NonVegan when any ingredient is non-vegan, else Uncertain when any is
// uncertain, else Vegan. Confidence is the mean ingredient confidence, capped at 0.7
// when more than two (or over 30%) of the ingredients are uncertain and at 0.6 when
// the list looks corrupted. A Vegan result under 0.5 confidence becomes Uncertain.
func (a *VerdictAggregator) Aggregate(verdicts []domain.IngredientVerdict, list domain.ListAssessment) domain.ProductVerdict {
	if len(verdicts) == 0 {
		return a.Empty()
	}

	nonVegan := []string{}
	uncertain := []string{}
	sum := 0.0
	for _, v := range verdicts {
		switch v.Status() {
		case domain.StatusNonVegan:
			nonVegan = append(nonVegan, v.Name)
		case domain.StatusUncertain, domain.StatusUnknown:
			uncertain = append(uncertain, v.Name)
		}
		sum += v.Confidence
	}

	confidence := sum / float64(len(verdicts))
	if len(uncertain) > uncertainCountCap || float64(len(uncertain)) > uncertainShareCap*float64(len(verdicts)) {
		confidence = math.Min(confidence, uncertainConfidenceCap)
	}
	if list.Suspicious {
		confidence = math.Min(confidence, suspiciousConfidenceCap)
	}
	confidence = roundConfidence(confidence)

	status := domain.StatusVegan
	switch {
	case len(nonVegan) > 0:
		status = domain.StatusNonVegan
	case len(uncertain) > 0:
		status = domain.StatusUncertain
	}

	var clauses []string
	// NonVegan dominates: a low score never demotes it to Uncertain
	if confidence < lowConfidenceThreshold && status != domain.StatusNonVegan {
		status = domain.StatusUncertain
		clauses = append(clauses, lowConfidenceReasoning)
	}

	if len(nonVegan) > 0 {
		clauses = append(clauses, "Contains non-vegan ingredients: "+strings.Join(nonVegan, ", ")+".")
	}
	if len(uncertain) > 0 {
		clauses = append(clauses, "Ingredients that may be animal-derived: "+strings.Join(uncertain, ", ")+".")
	}
	if list.Suspicious {
		clauses = append(clauses, corruptionReasoning)
	}
	if len(clauses) == 0 {
		clauses = append(clauses, veganReasoning)
	}

	flags := list.Flags
	if flags == nil {
		flags = []string{}
	}

	product := domain.ProductVerdict{
		Confidence:           confidence,
		NonVeganIngredients:  nonVegan,
		UncertainIngredients: uncertain,
		Reasoning:            strings.Join(clauses, " "),
		Ingredients:          verdicts,
		Flags:                flags,
	}
	switch status {
	case domain.StatusNonVegan:
		product.IsVegan = domain.False
	case domain.StatusVegan:
		product.IsVegan = domain.True
	default:
		product.IsVegan = domain.Unknown
		product.IsUncertain = true
	}
	return product
}

// roundConfidence rounds to three decimals without ever rounding past a cap
func roundConfidence(c float64) float64 {
	return math.Floor(c*1000+1e-9) / 1000
}
