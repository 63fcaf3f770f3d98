package usecase

import (
	"fmt"
	"strings"

	"github.com/veganscan/backend/internal/domain"
)

// Reference set names, used in reasons and errors
const (
	SetDefinitelyNonVegan  = "definitely_non_vegan"
	SetPotentiallyNonVegan = "potentially_non_vegan"
	SetSafeExceptions      = "safe_exceptions"
	SetAnimalIndicators    = "animal_indicators"
)

// ReferenceSet is an immutable, ordered collection of reference tokens. Iteration
// order is the load order, which keeps fuzzy tie-breaking deterministic.
type ReferenceSet struct {
	name       string
	entries    []string
	normalized []string
	index      map[string]int
}

// NewReferenceSet builds a set from display-form entries. Blank entries are skipped;
// duplicates after normalization keep their first position.
func NewReferenceSet(name string, entries []string) *ReferenceSet {
	set := &ReferenceSet{
		name:  name,
		index: make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		n := Normalize(e)
		if n == "" {
			continue
		}
		if _, dup := set.index[n]; dup {
			continue
		}
		set.index[n] = len(set.entries)
		set.entries = append(set.entries, e)
		set.normalized = append(set.normalized, n)
	}
	return set
}

// Name returns the set name
func (s *ReferenceSet) Name() string {
	return s.name
}

// Len returns the number of distinct entries
func (s *ReferenceSet) Len() int {
	return len(s.entries)
}

// Contains reports whether the normalized form of token is a member
func (s *ReferenceSet) Contains(token string) bool {
	_, ok := s.index[Normalize(token)]
	return ok
}

// lookup returns the display entry for an already-normalized token
func (s *ReferenceSet) lookup(normalized string) (string, bool) {
	i, ok := s.index[normalized]
	if !ok {
		return "", false
	}
	return s.entries[i], true
}

// ReferenceData is the process-wide curated dataset, constructed once at startup
// and passed explicitly to the engine. Read-only after construction.
type ReferenceData struct {
	DefinitelyNonVegan  *ReferenceSet
	PotentiallyNonVegan *ReferenceSet
	SafeExceptions      *ReferenceSet
	AnimalIndicators    *ReferenceSet

	safePrefixes []string
	shortValid   map[string]struct{}
	all          *ReferenceSet
}

// NewReferenceData validates the loader's lists and builds the indexed dataset.
// An empty required set is a fatal configuration error.
func NewReferenceData(lists domain.ReferenceLists) (*ReferenceData, error) {
	data := &ReferenceData{
		DefinitelyNonVegan:  NewReferenceSet(SetDefinitelyNonVegan, lists.DefinitelyNonVegan),
		PotentiallyNonVegan: NewReferenceSet(SetPotentiallyNonVegan, lists.PotentiallyNonVegan),
		SafeExceptions:      NewReferenceSet(SetSafeExceptions, lists.SafeExceptions),
		AnimalIndicators:    NewReferenceSet(SetAnimalIndicators, lists.AnimalIndicators),
		shortValid:          make(map[string]struct{}, len(lists.ShortValid)),
	}

	for _, set := range data.sets() {
		if set.Len() == 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrEmptyReferenceSet, set.Name())
		}
	}

	for _, p := range lists.SafePrefixes {
		if n := Normalize(p); n != "" {
			data.safePrefixes = append(data.safePrefixes, n)
		}
	}
	for _, w := range lists.ShortValid {
		if n := Normalize(w); n != "" {
			data.shortValid[n] = struct{}{}
		}
	}

	var union []string
	for _, set := range data.sets() {
		union = append(union, set.entries...)
	}
	data.all = NewReferenceSet("all", union)

	return data, nil
}

// sets returns the four reference sets in precedence order
func (d *ReferenceData) sets() []*ReferenceSet {
	return []*ReferenceSet{
		d.DefinitelyNonVegan,
		d.PotentiallyNonVegan,
		d.SafeExceptions,
		d.AnimalIndicators,
	}
}

// isKnownShort reports whether a short normalized token is a legitimate ingredient
// (allow-listed, or an exact member of any reference set)
func (d *ReferenceData) isKnownShort(normalized string) bool {
	if _, ok := d.shortValid[normalized]; ok {
		return true
	}
	_, ok := d.all.index[normalized]
	return ok
}

// hasSafePrefix reports whether the non-vegan reference hit is qualified by a
// plant-based prefix. For compound hits the prefix must be a whole word or start
// one, and end right where the matched part begins ("havremjolk", "oat milk",
// "ekologisk sojamjolk"); "goatmilk" and "grisgelatin" do not qualify. Otherwise
// any word of the token must start with a prefix and continue past it.
func (d *ReferenceData) hasSafePrefix(normalized, matched string) bool {
	m := Normalize(matched)

	if idx := strings.Index(normalized, m); m != "" && idx > 0 {
		before := strings.TrimRight(normalized[:idx], " ")
		for _, p := range d.safePrefixes {
			if startsWord(before, p) {
				return true
			}
		}
		return false
	}

	for _, word := range strings.Fields(normalized) {
		for _, p := range d.safePrefixes {
			if len(word) > len(p) && strings.HasPrefix(word, p) {
				return true
			}
		}
	}
	return false
}

// startsWord reports whether s ends with prefix and prefix begins a word of s
func startsWord(s, prefix string) bool {
	if !strings.HasSuffix(s, prefix) {
		return false
	}
	start := len(s) - len(prefix)
	return start == 0 || s[start-1] == ' '
}
