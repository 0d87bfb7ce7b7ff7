package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yojanamitra-core/server/internal/bandwidth"
	"github.com/yojanamitra-core/server/internal/cache"
	"github.com/yojanamitra-core/server/internal/core/errx"
	"github.com/yojanamitra-core/server/internal/generator"
	"github.com/yojanamitra-core/server/internal/model"
	"github.com/yojanamitra-core/server/internal/ratelimit"
	"github.com/yojanamitra-core/server/internal/scheme"
	"github.com/yojanamitra-core/server/internal/session"
)

// stubGenerator answers from a canned text, echoing the grounding scheme IDs
// as citations the way the production model is instructed to.
type stubGenerator struct {
	text    string
	err     error
	calls   int
	lastReq generator.Request
	onCall  func()
}

func (g *stubGenerator) Generate(ctx context.Context, req generator.Request) (*generator.Answer, error) {
	g.calls++
	g.lastReq = req
	if g.onCall != nil {
		g.onCall()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &generator.Answer{
		Text:           g.text,
		CitedSchemeIDs: req.GroundingSchemeIDs,
		Confidence:     0.9,
	}, nil
}

type fixture struct {
	orc      *Orchestrator
	gen      *stubGenerator
	sessions *session.MemoryStore
	cache    *cache.MemoryCache
	schemes  *scheme.MemoryStore
}

func newFixture(t *testing.T, limits ratelimit.Limits) *fixture {
	t.Helper()

	schemes := scheme.NewMemoryStore()
	require.NoError(t, scheme.Seed(context.Background(), schemes))

	respCache := cache.NewMemoryCache(cache.DefaultConfig())
	schemes.OnUpdate(func(schemeID string) {
		_ = respCache.InvalidateByScheme(context.Background(), schemeID)
	})

	sessions := session.NewMemoryStore(session.Config{
		IdleTTL:                 30 * time.Minute,
		LowBandwidthMaxMessages: 3,
	})
	gen := &stubGenerator{text: "PM Scholarship covers tuition and a monthly stipend for students under 25."}

	orc := New(
		ratelimit.NewMemoryLimiter(limits),
		respCache,
		schemes,
		sessions,
		gen,
		bandwidth.New(bandwidth.DefaultMaxAnswerChars),
		model.PromptConfig{AssistantName: "YojanaMitra", TopK: 5, MaxHistoryTurns: 6},
	)
	return &fixture{orc: orc, gen: gen, sessions: sessions, cache: respCache, schemes: schemes}
}

func TestHandleQueryGeneratesGroundedAnswer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, ratelimit.DefaultLimits())

	res, err := f.orc.HandleQuery(ctx, model.QueryInput{
		Query:     "Tell me about PM Scholarship",
		SessionID: "sess-1",
		InputMode: model.InputText,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeGenerated, res.Outcome)
	assert.Equal(t, f.gen.text, res.Response.Response)
	assert.Equal(t, "sess-1", res.Response.SessionID)

	// the prompt grounds the model on the catalogue record
	assert.Contains(t, f.gen.lastReq.Prompt, "PM Scholarship")
	assert.Contains(t, f.gen.lastReq.Prompt, "Full tuition fee reimbursement")
	assert.Contains(t, f.gen.lastReq.Prompt, "Register on the National Scholarship Portal")
	assert.Contains(t, f.gen.lastReq.System, "YojanaMitra")

	// cited schemes come back as sources, ranked order preserved
	require.NotEmpty(t, res.Response.Sources)
	assert.Equal(t, "sch-001", res.Response.Sources[0].SchemeID)
	assert.Equal(t, "https://scholarships.gov.in/pm-scholarship", res.Response.Sources[0].OfficialLink)

	// both turns recorded on the session
	sess, err := f.sessions.GetOrCreate(ctx, "sess-1", model.LangEnglish)
	require.NoError(t, err)
	require.Len(t, sess.History, 2)
	assert.Equal(t, model.RoleUser, sess.History[0].Role)
	assert.Equal(t, model.RoleAssistant, sess.History[1].Role)
}

func TestHandleQueryCacheHitSkipsGenerator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, ratelimit.DefaultLimits())

	first, err := f.orc.HandleQuery(ctx, model.QueryInput{Query: "pm scholarship details", SessionID: "sess-a"})
	require.NoError(t, err)
	require.Equal(t, OutcomeGenerated, first.Outcome)

	// punctuation and casing variants normalize to the same fingerprint,
	// and a different session can reuse the entry
	second, err := f.orc.HandleQuery(ctx, model.QueryInput{Query: "PM Scholarship details!!", SessionID: "sess-b"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCacheHit, second.Outcome)
	assert.Equal(t, first.Response.Response, second.Response.Response)
	assert.Equal(t, "sess-b", second.Response.SessionID)
	assert.Equal(t, 1, f.gen.calls)
}

func TestHandleQueryRateLimited(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, ratelimit.Limits{ratelimit.ClassQuery: 1})

	_, err := f.orc.HandleQuery(ctx, model.QueryInput{Query: "scholarship options", SessionID: "sess-1"})
	require.NoError(t, err)

	res, err := f.orc.HandleQuery(ctx, model.QueryInput{Query: "more scholarship options", SessionID: "sess-1"})
	require.NoError(t, err, "throttling is an actionable response, not an error")
	assert.Equal(t, OutcomeRateLimited, res.Outcome)
	assert.NotEmpty(t, res.Response.Response)
	assert.Equal(t, "sess-1", res.Response.SessionID)
	assert.Equal(t, 1, f.gen.calls)
}

func TestHandleQueryRejectsEmptyQuery(t *testing.T) {
	t.Parallel()
	f := newFixture(t, ratelimit.DefaultLimits())

	_, err := f.orc.HandleQuery(context.Background(), model.QueryInput{Query: "   "})
	require.Error(t, err)
	assert.Equal(t, errx.KindBadInput, errx.KindOf(err))
}

func TestHandleQueryAsksForClarification(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, ratelimit.DefaultLimits())

	res, err := f.orc.HandleQuery(ctx, model.QueryInput{Query: "qqzz", SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeClarification, res.Outcome)
	assert.True(t, res.Response.ClarificationNeeded)
	assert.NotEmpty(t, res.Response.Response)
	assert.Zero(t, f.gen.calls)

	// the clarification exchange still lands in the history
	sess, err := f.sessions.GetOrCreate(ctx, "sess-1", model.LangEnglish)
	require.NoError(t, err)
	assert.Len(t, sess.History, 2)
}

func TestHandleQueryDegradesToApology(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, ratelimit.DefaultLimits())
	f.gen.err = errx.GeneratorFailure(errors.New("upstream 503"), errx.KindGeneratorUnavailable)

	res, err := f.orc.HandleQuery(ctx, model.QueryInput{Query: "scholarship information", SessionID: "sess-1"})
	require.NoError(t, err, "generator faults degrade, they do not surface")
	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Equal(t, apologyTexts[model.LangEnglish], res.Response.Response)
	assert.Empty(t, res.Response.Sources)
}

func TestHandleQueryDegradesToSiblingCacheEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, ratelimit.DefaultLimits())

	first, err := f.orc.HandleQuery(ctx, model.QueryInput{Query: "pm scholarship details", SessionID: "sess-1"})
	require.NoError(t, err)
	require.Equal(t, OutcomeGenerated, first.Outcome)

	// same question on a weak connection while the generator is down: the
	// full-mode cache entry is adapted and served instead of the apology
	f.gen.err = errx.GeneratorFailure(errors.New("timeout"), errx.KindGeneratorTimeout)
	res, err := f.orc.HandleQuery(ctx, model.QueryInput{
		Query:        "pm scholarship details",
		SessionID:    "sess-1",
		LowBandwidth: true,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Equal(t, first.Response.Response, res.Response.Response)
	assert.Empty(t, res.Response.Sources)
	assert.Empty(t, res.Response.RelatedSchemes)
}

func TestHandleQueryLowBandwidthReduction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, ratelimit.DefaultLimits())
	f.gen.text = strings.Repeat("**PM Scholarship** pays a monthly stipend to eligible students. ", 40)

	res, err := f.orc.HandleQuery(ctx, model.QueryInput{
		Query:        "pm scholarship stipend",
		SessionID:    "sess-1",
		LowBandwidth: true,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeGenerated, res.Outcome)
	assert.LessOrEqual(t, len([]rune(res.Response.Response)), bandwidth.DefaultMaxAnswerChars)
	assert.NotContains(t, res.Response.Response, "**")
	assert.Empty(t, res.Response.Sources)
	assert.Empty(t, res.Response.RelatedSchemes)
	assert.Equal(t, "sess-1", res.Response.SessionID)

	// low-bandwidth sessions keep only the trailing turns
	for i := 0; i < 4; i++ {
		_, err := f.orc.HandleQuery(ctx, model.QueryInput{
			Query:        "what documents do i need for the scholarship",
			SessionID:    "sess-1",
			LowBandwidth: true,
		})
		require.NoError(t, err)
	}
	sess, err := f.sessions.GetOrCreate(ctx, "sess-1", model.LangEnglish)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(sess.History), 3)
}

func TestHandleQueryAbandonedRequestWritesNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t, ratelimit.DefaultLimits())

	ctx, cancel := context.WithCancel(context.Background())
	f.gen.onCall = cancel
	f.gen.err = context.Canceled

	_, err := f.orc.HandleQuery(ctx, model.QueryInput{Query: "pm scholarship details", SessionID: "sess-1"})
	require.ErrorIs(t, err, context.Canceled)

	// neither the cache nor the session saw the abandoned request
	fp := cache.Fingerprint("pm scholarship details", model.LangEnglish, false)
	_, found, cacheErr := f.cache.Get(context.Background(), fp)
	require.NoError(t, cacheErr)
	assert.False(t, found)

	sess, sessErr := f.sessions.GetOrCreate(context.Background(), "sess-1", model.LangEnglish)
	require.NoError(t, sessErr)
	assert.Empty(t, sess.History)
}

func TestHandleQueryLanguageFollowsProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, ratelimit.Limits{ratelimit.ClassQuery: 1})

	profile := &model.UserProfile{
		UserID:             model.Some("user-hi"),
		LanguagePreference: model.LangHindi,
	}
	_, err := f.orc.HandleQuery(ctx, model.QueryInput{Query: "scholarship options", SessionID: "sess-1", Profile: profile})
	require.NoError(t, err)
	assert.Contains(t, f.gen.lastReq.System, "Hindi")

	// the throttle notice honours the same preference
	res, err := f.orc.HandleQuery(ctx, model.QueryInput{Query: "aur batao", SessionID: "sess-1", Profile: profile})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRateLimited, res.Outcome)
	assert.Equal(t, throttleTexts[model.LangHindi], res.Response.Response)
}

func TestHandleQuerySchemeUpdateInvalidatesCachedAnswer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, ratelimit.DefaultLimits())

	_, err := f.orc.HandleQuery(ctx, model.QueryInput{Query: "pm scholarship details", SessionID: "sess-1"})
	require.NoError(t, err)
	require.Equal(t, 1, f.gen.calls)

	sc, ok, err := f.schemes.Get(ctx, "sch-001")
	require.NoError(t, err)
	require.True(t, ok)
	sc.Benefits = append(sc.Benefits, "Revised stipend of ₹4,000")
	require.NoError(t, f.schemes.Upsert(ctx, sc))

	// the stale entry is gone, so the same question regenerates
	res, err := f.orc.HandleQuery(ctx, model.QueryInput{Query: "pm scholarship details", SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeGenerated, res.Outcome)
	assert.Equal(t, 2, f.gen.calls)
}
