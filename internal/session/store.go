// Package session owns per-conversation state: ordered history, language
// preference and the low-bandwidth flag, with bounded retention. Idle
// sessions are reclaimed after the configured window; callers observe that as
// a context reset, never as an error.
package session

import (
	"context"
	"time"

	"github.com/yojanamitra-core/server/internal/model"
)

// Store is the session contract the orchestrator depends on. Implementations
// must serialize AppendMessage per session ID (appends are additive and
// ordered by arrival) and must hand out snapshots so a background eviction
// never mutates a session a request already began using.
type Store interface {
	// GetOrCreate returns a snapshot of the session, creating it on first
	// sight of the ID.
	GetOrCreate(ctx context.Context, sessionID string, lang model.Language) (*model.Session, error)

	// AppendMessage appends one turn. Under low-bandwidth mode the history is
	// eagerly truncated to the configured cap immediately after the append.
	AppendMessage(ctx context.Context, sessionID string, msg model.Message) error

	// SetLowBandwidth flips the payload/history reduction flag. Turning it on
	// truncates existing history immediately.
	SetLowBandwidth(ctx context.Context, sessionID string, on bool) error
}

// Config bounds retention for both store backends.
type Config struct {
	IdleTTL                 time.Duration
	LowBandwidthMaxMessages int
}

func (c Config) capOrDefault() int {
	if c.LowBandwidthMaxMessages <= 0 {
		return 3
	}
	return c.LowBandwidthMaxMessages
}
