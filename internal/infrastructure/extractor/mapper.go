package extractor

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/veganscan/backend/internal/domain"
)

// extractResponse is the classifier's response body. The model output is untrusted,
// so every field is loosely typed and checked while mapping.
type extractResponse struct {
	Ingredients []extractedIngredient `json:"ingredients"`
}

// extractedIngredient accepts either a bare string or an object with a name and
// an optional classification
type extractedIngredient struct {
	Name       string
	IsVegan    any
	Confidence any
}

// UnmarshalJSON accepts "Mjölk" as well as {"name":"Mjölk","isVegan":"non_vegan","confidence":0.9}
func (e *extractedIngredient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.Name)
	}

	var obj struct {
		Name       any `json:"name"`
		IsVegan    any `json:"isVegan"`
		Confidence any `json:"confidence"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		// Anything else (numbers, arrays, null) is ignored rather than failing the whole response
		return nil
	}

	if name, ok := obj.Name.(string); ok {
		e.Name = name
	}
	e.IsVegan = obj.IsVegan
	e.Confidence = obj.Confidence
	return nil
}

// MapToExtraction converts a classifier response to the domain extraction.
// Blank names are dropped; malformed classifications yield no hint.
func MapToExtraction(resp *extractResponse) *domain.Extraction {
	extraction := &domain.Extraction{
		Ingredients: []string{},
		Hints:       map[string]domain.Hint{},
	}
	if resp == nil {
		return extraction
	}

	for _, item := range resp.Ingredients {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		extraction.Ingredients = append(extraction.Ingredients, name)

		hint := domain.ParseHint(domain.RawHint{IsVegan: item.IsVegan, Confidence: item.Confidence})
		if _, seen := extraction.Hints[name]; hint.Present() && !seen {
			extraction.Hints[name] = hint
		}
	}

	return extraction
}
