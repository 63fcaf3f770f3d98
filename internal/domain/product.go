package domain

// AnalyzeRequest is the engine's call contract: a raw ingredient list plus optional
// per-ingredient hints keyed by raw name.
type AnalyzeRequest struct {
	Ingredients []string
	Hints       map[string]Hint
}

// TextAnalysisRequest asks for ingredient extraction from free text before analysis
type TextAnalysisRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language,omitempty"`
}

// Extraction is what the external classifier returns for a piece of text
type Extraction struct {
	Ingredients []string        `json:"ingredients"`
	Hints       map[string]Hint `json:"-"`
}

// TextAnalysis bundles the extracted ingredients with the resulting verdict
type TextAnalysis struct {
	Ingredients []string       `json:"ingredients"`
	Verdict     ProductVerdict `json:"verdict"`
}

// IngredientsAnalysisRequest is the HTTP body for analyzing an explicit ingredient list.
// Hints arrive loosely typed and are validated with ParseHints.
type IngredientsAnalysisRequest struct {
	Ingredients []string           `json:"ingredients" binding:"required"`
	Hints       map[string]RawHint `json:"hints,omitempty"`
}

// ToAnalyzeRequest validates the hints and builds the engine request
func (r IngredientsAnalysisRequest) ToAnalyzeRequest() AnalyzeRequest {
	return AnalyzeRequest{
		Ingredients: r.Ingredients,
		Hints:       ParseHints(r.Hints),
	}
}
