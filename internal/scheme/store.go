// Package scheme holds the scheme store: the sole source of truth the core
// reads for matching. Records are created and updated by an external
// ingestion collaborator; the core only searches them and reacts to updates
// by invalidating cached responses.
package scheme

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/yojanamitra-core/server/internal/model"
	logx "github.com/yojanamitra-core/server/pkg/logger"
)

// Store is the read surface the orchestrator and matcher depend on.
type Store interface {
	// Search returns schemes matching any of the keywords, optionally
	// narrowed to one category. Keywords match name, description, category
	// and the scheme keyword set, case-insensitively.
	Search(ctx context.Context, keywords []string, category model.Opt[model.SchemeCategory]) ([]model.Scheme, error)

	// Get looks up a single scheme by ID.
	Get(ctx context.Context, id string) (model.Scheme, bool, error)

	// All returns every published scheme, for profile-driven matching passes
	// that have no query keywords to go on.
	All(ctx context.Context) ([]model.Scheme, error)
}

// UpdateListener is notified with the scheme ID after each upsert so the
// response cache can drop entries citing it.
type UpdateListener func(schemeID string)

// MemoryStore is an in-process keyword/category index over published schemes.
type MemoryStore struct {
	mu        sync.RWMutex
	schemes   map[string]model.Scheme
	listeners []UpdateListener
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{schemes: make(map[string]model.Scheme)}
}

// OnUpdate registers a listener invoked after every successful upsert.
func (s *MemoryStore) OnUpdate(l UpdateListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Upsert publishes or replaces a scheme. Invalid schemes are rejected before
// they can reach the matcher.
func (s *MemoryStore) Upsert(ctx context.Context, sc model.Scheme) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	_, existed := s.schemes[sc.ID]
	s.schemes[sc.ID] = sc
	listeners := make([]UpdateListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if existed {
		logx.Debug().Str("scheme_id", sc.ID).Msg("scheme updated, notifying listeners")
	}
	for _, l := range listeners {
		l(sc.ID)
	}
	return nil
}

// Search implements Store.
func (s *MemoryStore) Search(ctx context.Context, keywords []string, category model.Opt[model.SchemeCategory]) ([]model.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}

	var out []model.Scheme
	for _, sc := range s.schemes {
		if cat, ok := category.Get(); ok && sc.Category != cat {
			continue
		}
		if len(lowered) == 0 || matchesAny(sc, lowered) {
			out = append(out, sc)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Scheme, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.schemes[id]
	return sc, ok, nil
}

// All implements Store.
func (s *MemoryStore) All(ctx context.Context) ([]model.Scheme, error) {
	return s.Search(ctx, nil, model.None[model.SchemeCategory]())
}

func matchesAny(sc model.Scheme, keywords []string) bool {
	haystack := strings.ToLower(sc.Name + " " + sc.Description + " " + string(sc.Category))
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
		for _, tag := range sc.Keywords {
			if strings.Contains(strings.ToLower(tag), kw) {
				return true
			}
		}
	}
	return false
}

var _ Store = (*MemoryStore)(nil)
