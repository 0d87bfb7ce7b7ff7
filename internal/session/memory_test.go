package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yojanamitra-core/server/internal/model"
)

func userTurn(content string) model.Message {
	return model.Message{
		Role:      model.RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
		InputMode: model.InputText,
	}
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemoryStore(Config{IdleTTL: 30 * time.Minute})

	first, err := store.GetOrCreate(ctx, "sess-1", model.LangHindi)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", first.SessionID)
	assert.Equal(t, model.LangHindi, first.LanguagePreference)
	assert.Empty(t, first.History)

	// a later call with a different hint keeps the stored preference
	again, err := store.GetOrCreate(ctx, "sess-1", model.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, model.LangHindi, again.LanguagePreference)
	assert.Equal(t, first.CreatedAt, again.CreatedAt)
}

func TestAppendPreservesArrivalOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemoryStore(Config{IdleTTL: 30 * time.Minute})
	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendMessage(ctx, "sess-1", userTurn(fmt.Sprintf("turn %d", i))))
	}

	s, err := store.GetOrCreate(ctx, "sess-1", model.LangEnglish)
	require.NoError(t, err)
	require.Len(t, s.History, 5)
	for i, msg := range s.History {
		assert.Equal(t, fmt.Sprintf("turn %d", i), msg.Content)
	}
}

func TestLowBandwidthHistoryNeverExceedsCap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemoryStore(Config{IdleTTL: 30 * time.Minute, LowBandwidthMaxMessages: 3})
	_, err := store.GetOrCreate(ctx, "sess-1", model.LangEnglish)
	require.NoError(t, err)
	require.NoError(t, store.SetLowBandwidth(ctx, "sess-1", true))

	for i := 0; i < 10; i++ {
		require.NoError(t, store.AppendMessage(ctx, "sess-1", userTurn(fmt.Sprintf("turn %d", i))))

		s, err := store.GetOrCreate(ctx, "sess-1", model.LangEnglish)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(s.History), 3, "cap holds after every append")
	}

	// the survivors are the most recent turns, order intact
	s, err := store.GetOrCreate(ctx, "sess-1", model.LangEnglish)
	require.NoError(t, err)
	require.Len(t, s.History, 3)
	assert.Equal(t, "turn 7", s.History[0].Content)
	assert.Equal(t, "turn 9", s.History[2].Content)
}

func TestSetLowBandwidthTrimsExistingHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemoryStore(Config{IdleTTL: 30 * time.Minute, LowBandwidthMaxMessages: 3})
	for i := 0; i < 6; i++ {
		require.NoError(t, store.AppendMessage(ctx, "sess-1", userTurn(fmt.Sprintf("turn %d", i))))
	}

	require.NoError(t, store.SetLowBandwidth(ctx, "sess-1", true))

	s, err := store.GetOrCreate(ctx, "sess-1", model.LangEnglish)
	require.NoError(t, err)
	require.Len(t, s.History, 3)
	assert.Equal(t, "turn 3", s.History[0].Content)
	assert.True(t, s.LowBandwidthMode)

	// turning the flag off stops truncating but keeps what was trimmed away gone
	require.NoError(t, store.SetLowBandwidth(ctx, "sess-1", false))
	require.NoError(t, store.AppendMessage(ctx, "sess-1", userTurn("turn 6")))
	s, err = store.GetOrCreate(ctx, "sess-1", model.LangEnglish)
	require.NoError(t, err)
	assert.Len(t, s.History, 4)
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemoryStore(Config{IdleTTL: 30 * time.Minute})
	base := time.Now().UTC()
	store.now = func() time.Time { return base }

	require.NoError(t, store.AppendMessage(ctx, "sess-idle", userTurn("hello")))

	base = base.Add(20 * time.Minute)
	require.NoError(t, store.AppendMessage(ctx, "sess-active", userTurn("hello")))

	base = base.Add(15 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	// the evicted conversation restarts from an empty context
	s, err := store.GetOrCreate(ctx, "sess-idle", model.LangEnglish)
	require.NoError(t, err)
	assert.Empty(t, s.History)

	s, err = store.GetOrCreate(ctx, "sess-active", model.LangEnglish)
	require.NoError(t, err)
	assert.Len(t, s.History, 1)
}

func TestSnapshotIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemoryStore(Config{IdleTTL: 30 * time.Minute})
	require.NoError(t, store.AppendMessage(ctx, "sess-1", userTurn("original")))

	snap, err := store.GetOrCreate(ctx, "sess-1", model.LangEnglish)
	require.NoError(t, err)

	require.NoError(t, store.AppendMessage(ctx, "sess-1", userTurn("later")))
	snap.History[0].Content = "mutated locally"

	fresh, err := store.GetOrCreate(ctx, "sess-1", model.LangEnglish)
	require.NoError(t, err)
	require.Len(t, fresh.History, 2)
	assert.Equal(t, "original", fresh.History[0].Content)
	assert.Len(t, snap.History, 1, "snapshot does not see later appends")
}
