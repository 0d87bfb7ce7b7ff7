// Package ratelimit implements the per-subject token-bucket limiter. Refill
// is computed lazily from elapsed wall-clock time at check time; no
// background ticking.
package ratelimit

import (
	"context"
	"time"

	"github.com/yojanamitra-core/server/internal/model"
)

// Class groups endpoints sharing one bucket table row.
type Class string

const (
	ClassQuery         Class = "query"
	ClassTranscribe    Class = "transcribe"
	ClassOpportunities Class = "opportunities"
	ClassSchemeDetail  Class = "scheme-detail"
	ClassSchemeSearch  Class = "scheme-search"
	ClassFeedback      Class = "feedback"
	// ClassHealth is unlimited and bypasses the limiter entirely.
	ClassHealth Class = "health"
)

// Limits maps each class to its hourly bucket capacity. Refill rate equals
// capacity per hour.
type Limits map[Class]int

// LimitsFromConfig builds the table from environment configuration.
func LimitsFromConfig(cfg model.RateLimitConfig) Limits {
	return Limits{
		ClassQuery:         cfg.QueryPerHour,
		ClassTranscribe:    cfg.TranscribePerHour,
		ClassOpportunities: cfg.OpportunitiesPerHour,
		ClassSchemeDetail:  cfg.SchemeDetailPerHour,
		ClassSchemeSearch:  cfg.SchemeSearchPerHour,
		ClassFeedback:      cfg.FeedbackPerHour,
	}
}

// DefaultLimits is the documented bucket table.
func DefaultLimits() Limits {
	return Limits{
		ClassQuery:         100,
		ClassTranscribe:    50,
		ClassOpportunities: 200,
		ClassSchemeDetail:  500,
		ClassSchemeSearch:  300,
		ClassFeedback:      50,
	}
}

// Limiter is the check-and-decrement contract. Allow returns true and
// consumes one token when the bucket holds at least one after lazy refill;
// otherwise it returns false and leaves the bucket unchanged. Implementations
// serialize concurrent calls per (subject, class) key.
type Limiter interface {
	Allow(ctx context.Context, subjectID string, class Class) (bool, error)
}

const refillWindow = time.Hour

// ratePerSecond converts an hourly capacity to a refill rate.
func ratePerSecond(capacity int) float64 {
	return float64(capacity) / refillWindow.Seconds()
}
