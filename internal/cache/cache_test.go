package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yojanamitra-core/server/internal/model"
)

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "Tell Me About PM Scholarship", want: "tell me about pm scholarship"},
		{name: "strips punctuation", in: "what's the PM Scholarship?!", want: "whats the pm scholarship"},
		{name: "collapses whitespace", in: "  pm   scholarship \n details ", want: "pm scholarship details"},
		{name: "keeps devanagari", in: "छात्रवृत्ति के बारे में बताओ", want: "छात्रवृत्ति के बारे में बताओ"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, NormalizeQuery(tc.in))
		})
	}
}

func TestFingerprintDeterminism(t *testing.T) {
	t.Parallel()

	a := Fingerprint("Tell me about PM Scholarship", model.LangEnglish, false)
	b := Fingerprint("tell me about pm scholarship!!", model.LangEnglish, false)
	assert.Equal(t, a, b, "normalized variants share a fingerprint")

	assert.NotEqual(t, a, Fingerprint("Tell me about PM Scholarship", model.LangHindi, false))
	assert.NotEqual(t, a, Fingerprint("Tell me about PM Scholarship", model.LangEnglish, true))
}

func entryFor(text string, schemeIDs ...string) model.CacheEntry {
	return model.CacheEntry{
		Response:    model.QueryResponse{Response: text, SessionID: "sess-1"},
		GeneratedAt: time.Now().UTC(),
		Confidence:  0.9,
		SchemeIDs:   schemeIDs,
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := NewMemoryCache(DefaultConfig())
	now := time.Now().UTC()
	c.now = func() time.Time { return now }

	fp := Fingerprint("pm scholarship", model.LangEnglish, false)
	_, found, err := c.Get(ctx, fp)
	require.NoError(t, err)
	assert.False(t, found, "a miss is normal control flow")

	want := entryFor("cached answer", "sch-001")
	require.NoError(t, c.Put(ctx, fp, want, ClassAnswer))

	got, found, err := c.Get(ctx, fp)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want.Response, got.Response)
	assert.Equal(t, want.SchemeIDs, got.SchemeIDs)

	// past the answer TTL the entry is never served
	now = now.Add(6*time.Hour + time.Second)
	_, found, err = c.Get(ctx, fp)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCacheInvalidateByScheme(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := NewMemoryCache(DefaultConfig())

	fpA := Fingerprint("pm scholarship", model.LangEnglish, false)
	fpB := Fingerprint("scholarships for students", model.LangEnglish, false)
	fpC := Fingerprint("apprenticeship training", model.LangEnglish, false)

	require.NoError(t, c.Put(ctx, fpA, entryFor("a", "sch-001"), ClassAnswer))
	require.NoError(t, c.Put(ctx, fpB, entryFor("b", "sch-001", "sch-005"), ClassQuery))
	require.NoError(t, c.Put(ctx, fpC, entryFor("c", "sch-002"), ClassAnswer))

	require.NoError(t, c.InvalidateByScheme(ctx, "sch-001"))

	// every entry citing sch-001 is gone, others stay
	_, found, _ := c.Get(ctx, fpA)
	assert.False(t, found)
	_, found, _ = c.Get(ctx, fpB)
	assert.False(t, found)
	_, found, _ = c.Get(ctx, fpC)
	assert.True(t, found)
}

func TestTTLClassSelection(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, time.Hour, cfg.ttl(ClassQuery))
	assert.Equal(t, 24*time.Hour, cfg.ttl(ClassSchemeDetail))
	assert.Equal(t, 6*time.Hour, cfg.ttl(ClassAnswer))
}
