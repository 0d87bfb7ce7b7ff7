// Package cache is the content-addressed response cache: fingerprint keys,
// per-class TTLs and invalidation keyed by cited scheme IDs.
package cache

import (
	"context"
	"time"

	"github.com/yojanamitra-core/server/internal/model"
)

// Class selects the TTL policy for the kind of data being stored.
type Class int

const (
	// ClassQuery covers raw query responses (1 hour by default).
	ClassQuery Class = iota
	// ClassSchemeDetail covers scheme-detail lookups (24 hours).
	ClassSchemeDetail
	// ClassAnswer covers full generated answers (6 hours).
	ClassAnswer
)

// Config holds the TTL per class.
type Config struct {
	QueryTTL        time.Duration
	SchemeDetailTTL time.Duration
	AnswerTTL       time.Duration
}

// DefaultConfig mirrors the documented TTL table.
func DefaultConfig() Config {
	return Config{
		QueryTTL:        time.Hour,
		SchemeDetailTTL: 24 * time.Hour,
		AnswerTTL:       6 * time.Hour,
	}
}

func (c Config) ttl(class Class) time.Duration {
	switch class {
	case ClassSchemeDetail:
		return c.SchemeDetailTTL
	case ClassAnswer:
		return c.AnswerTTL
	default:
		return c.QueryTTL
	}
}

// Cache is the response cache contract. A Get miss is normal control flow,
// not an error; Put is idempotent.
type Cache interface {
	Get(ctx context.Context, fingerprint string) (*model.CacheEntry, bool, error)
	Put(ctx context.Context, fingerprint string, entry model.CacheEntry, class Class) error

	// InvalidateByScheme removes every entry whose response cited the scheme.
	// Entries are tagged with cited scheme IDs at write time; this walks the
	// scheme→fingerprint index, never the key space.
	InvalidateByScheme(ctx context.Context, schemeID string) error
}
