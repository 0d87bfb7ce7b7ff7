package scheme

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yojanamitra-core/server/internal/model"
)

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, Seed(context.Background(), s))
	return s
}

func schemeIDs(schemes []model.Scheme) []string {
	ids := make([]string, len(schemes))
	for i, sc := range schemes {
		ids[i] = sc.ID
	}
	return ids
}

func TestSearchByKeyword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := seededStore(t)

	got, err := s.Search(ctx, []string{"scholarship"}, model.None[model.SchemeCategory]())
	require.NoError(t, err)
	assert.Equal(t, []string{"sch-001", "sch-005"}, schemeIDs(got))

	// scheme keyword tags match too
	got, err = s.Search(ctx, []string{"rozgar"}, model.None[model.SchemeCategory]())
	require.NoError(t, err)
	assert.Equal(t, []string{"sch-003"}, schemeIDs(got))

	// transliterated hindi keywords
	got, err = s.Search(ctx, []string{"chhatravritti"}, model.None[model.SchemeCategory]())
	require.NoError(t, err)
	assert.Equal(t, []string{"sch-001"}, schemeIDs(got))
}

func TestSearchCategoryNarrowing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := seededStore(t)

	got, err := s.Search(ctx, []string{"stipend"}, model.Some(model.CategoryInternship))
	require.NoError(t, err)
	assert.Equal(t, []string{"sch-002"}, schemeIDs(got))

	// no keywords with a category filter returns the whole category
	got, err = s.Search(ctx, nil, model.Some(model.CategoryScholarship))
	require.NoError(t, err)
	assert.Equal(t, []string{"sch-001", "sch-005"}, schemeIDs(got))
}

func TestSearchNoMatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := seededStore(t)

	got, err := s.Search(ctx, []string{"zzzunknown"}, model.None[model.SchemeCategory]())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAllReturnsFullCatalogueSorted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := seededStore(t)

	got, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sch-001", "sch-002", "sch-003", "sch-004", "sch-005"}, schemeIDs(got))
}

func TestGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := seededStore(t)

	sc, ok, err := s.Get(ctx, "sch-003")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Rural Employment Guarantee", sc.Name)

	_, ok, err = s.Get(ctx, "sch-999")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertRejectsInvalidScheme(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Upsert(ctx, model.Scheme{
		ID:          "sch-bad",
		Name:        "No Criteria",
		Category:    model.CategoryScholarship,
		LastUpdated: time.Now(),
	})
	require.Error(t, err)

	_, ok, _ := s.Get(ctx, "sch-bad")
	assert.False(t, ok, "invalid schemes never reach the matcher")
}

func TestUpsertNotifiesListeners(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := seededStore(t)

	var notified []string
	s.OnUpdate(func(schemeID string) { notified = append(notified, schemeID) })

	sc, ok, err := s.Get(ctx, "sch-003")
	require.NoError(t, err)
	require.True(t, ok)
	sc.Description = "Updated description"
	sc.LastUpdated = time.Now().UTC()
	require.NoError(t, s.Upsert(ctx, sc))

	assert.Equal(t, []string{"sch-003"}, notified)
}
