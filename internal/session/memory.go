package session

import (
	"context"
	"sync"
	"time"

	"github.com/yojanamitra-core/server/internal/model"
	logx "github.com/yojanamitra-core/server/pkg/logger"
)

// MemoryStore is the in-process backend used by tests and by reduced mode
// when the shared store is unreachable. Same contract as RedisStore: per-key
// serialization, snapshot reads, eager low-bandwidth truncation.
type MemoryStore struct {
	mu       sync.Mutex
	cfg      Config
	sessions map[string]*model.Session
	now      func() time.Time
}

func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{
		cfg:      cfg,
		sessions: make(map[string]*model.Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreate implements Store.
func (m *MemoryStore) GetOrCreate(ctx context.Context, sessionID string, lang model.Language) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		now := m.now()
		s = &model.Session{
			SessionID:          sessionID,
			LanguagePreference: lang,
			CreatedAt:          now,
			LastActivityAt:     now,
		}
		m.sessions[sessionID] = s
	}
	return snapshot(s), nil
}

// AppendMessage implements Store.
func (m *MemoryStore) AppendMessage(ctx context.Context, sessionID string, msg model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		now := m.now()
		s = &model.Session{
			SessionID:          sessionID,
			LanguagePreference: model.LangEnglish,
			CreatedAt:          now,
			LastActivityAt:     now,
		}
		m.sessions[sessionID] = s
	}

	s.History = append(s.History, msg)
	if s.LowBandwidthMode {
		if cap := m.cfg.capOrDefault(); len(s.History) > cap {
			s.History = append([]model.Message(nil), s.History[len(s.History)-cap:]...)
		}
	}
	s.LastActivityAt = m.now()
	return nil
}

// SetLowBandwidth implements Store.
func (m *MemoryStore) SetLowBandwidth(ctx context.Context, sessionID string, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	s.LowBandwidthMode = on
	if on {
		if cap := m.cfg.capOrDefault(); len(s.History) > cap {
			s.History = append([]model.Message(nil), s.History[len(s.History)-cap:]...)
		}
	}
	return nil
}

// Sweep evicts sessions idle longer than the configured window. In-flight
// requests holding a snapshot are unaffected.
func (m *MemoryStore) Sweep() int {
	if m.cfg.IdleTTL <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.cfg.IdleTTL)
	evicted := 0
	for id, s := range m.sessions {
		if s.LastActivityAt.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		logx.Debug().Int("evicted", evicted).Msg("idle sessions reclaimed")
	}
	return evicted
}

// StartReclaimer runs Sweep on the interval until ctx is cancelled.
func (m *MemoryStore) StartReclaimer(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

func snapshot(s *model.Session) *model.Session {
	out := *s
	out.History = append([]model.Message(nil), s.History...)
	return &out
}

var _ Store = (*MemoryStore)(nil)
