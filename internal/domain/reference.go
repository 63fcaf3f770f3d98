package domain

// ReferenceLists are the curated token collections supplied by the reference data loader.
// The first four are required; SafePrefixes and ShortValid are optional classifier lexicons.
type ReferenceLists struct {
	DefinitelyNonVegan  []string `yaml:"definitely_non_vegan" validate:"required,min=1,dive,required"`
	PotentiallyNonVegan []string `yaml:"potentially_non_vegan" validate:"required,min=1,dive,required"`
	SafeExceptions      []string `yaml:"safe_exceptions" validate:"required,min=1,dive,required"`
	AnimalIndicators    []string `yaml:"animal_indicators" validate:"required,min=1,dive,required"`
	SafePrefixes        []string `yaml:"safe_prefixes" validate:"dive,required"`
	ShortValid          []string `yaml:"short_valid" validate:"dive,required"`
}
