package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching serialized values
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// IngredientExtractor defines the interface for the external AI classifier that turns
// free text (label text, OCR output, transcripts) into ingredient names and hints.
// Its output is untrusted: hints are already validated into the Hint variant.
type IngredientExtractor interface {
	Extract(ctx context.Context, text, language string) (*Extraction, error)
}
