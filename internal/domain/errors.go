package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidReferenceData is returned when the reference dataset cannot be loaded or parsed
	ErrInvalidReferenceData = errors.New("invalid reference data")

	// ErrEmptyReferenceSet is returned when a required reference set has no entries
	ErrEmptyReferenceSet = errors.New("reference set is empty")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrExtractorFailure is returned when the external ingredient extractor request fails
	ErrExtractorFailure = errors.New("ingredient extractor request failed")

	// ErrExtractorNotConfigured is returned when text analysis is requested without an extractor
	ErrExtractorNotConfigured = errors.New("ingredient extractor not configured")

	// ErrNoIngredientsFound is returned when the extractor finds no ingredients in the input
	ErrNoIngredientsFound = errors.New("no ingredients found")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
