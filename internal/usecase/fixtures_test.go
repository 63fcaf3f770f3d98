package usecase

import (
	"testing"

	"github.com/veganscan/backend/internal/domain"
)

// testLists is a small reference dataset. Havremjölk is deliberately absent from the
// safe exceptions so that plant-based prefixes are exercised.
func testLists() domain.ReferenceLists {
	return domain.ReferenceLists{
		DefinitelyNonVegan:  []string{"mjölk", "ägg", "honung", "gelatin", "smör", "grädde", "E120"},
		PotentiallyNonVegan: []string{"lecitin", "E471", "vitamin D3"},
		SafeExceptions:      []string{"sojalecitin", "kokosmjölk", "kakaosmör", "socker", "salt", "vatten", "rapsolja"},
		AnimalIndicators:    []string{"kött", "fisk", "animal"},
		SafePrefixes:        []string{"havre", "soja", "kokos", "mandel"},
		ShortValid:          []string{"te", "ris"},
	}
}

func newTestReferenceData(t *testing.T) *ReferenceData {
	t.Helper()
	ref, err := NewReferenceData(testLists())
	if err != nil {
		t.Fatalf("NewReferenceData: %v", err)
	}
	return ref
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(newTestReferenceData(t), EngineConfig{})
}

func vegan(conf float64) domain.Hint {
	return domain.Hint{Kind: domain.HintVegan, Confidence: conf}
}

func nonVegan(conf float64) domain.Hint {
	return domain.Hint{Kind: domain.HintNonVegan, Confidence: conf}
}

func uncertain(conf float64) domain.Hint {
	return domain.Hint{Kind: domain.HintUncertain, Confidence: conf}
}
