package reference

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/veganscan/backend/internal/domain"
)

var validate = validator.New()

// Load reads reference lists from a YAML file.
//
// Expected format:
//
//	definitely_non_vegan: [mjölk, ägg, honung]
//	potentially_non_vegan: [lecitin, E471]
//	safe_exceptions: [havremjölk, sojalecitin]
//	animal_indicators: [kött, fisk]
//	safe_prefixes: [havre, soja]   # optional
//	short_valid: [te, ris]         # optional
//
// Unknown keys and empty required lists are rejected.
func Load(path string) (domain.ReferenceLists, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ReferenceLists{}, fmt.Errorf("%w: %v", domain.ErrInvalidReferenceData, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML reference lists
func Parse(data []byte) (domain.ReferenceLists, error) {
	var lists domain.ReferenceLists

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&lists); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("document is empty")
		}
		return domain.ReferenceLists{}, fmt.Errorf("%w: %v", domain.ErrInvalidReferenceData, err)
	}

	if err := Validate(lists); err != nil {
		return domain.ReferenceLists{}, err
	}
	return lists, nil
}

// Validate checks that required lists are present and no entry is blank
func Validate(lists domain.ReferenceLists) error {
	if err := validate.Struct(lists); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", domain.ErrInvalidReferenceData, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidReferenceData, err)
	}
	return nil
}

// LoadOrDefault loads the file at path, or returns the built-in lists when path is empty
func LoadOrDefault(path string) (domain.ReferenceLists, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
