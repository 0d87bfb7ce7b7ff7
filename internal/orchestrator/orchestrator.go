// Package orchestrator composes the core per-query pipeline: rate limit,
// cache, candidate matching, prompt construction, answer generation, caching,
// bandwidth adaptation and session update.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yojanamitra-core/server/internal/bandwidth"
	"github.com/yojanamitra-core/server/internal/cache"
	"github.com/yojanamitra-core/server/internal/core"
	"github.com/yojanamitra-core/server/internal/core/errx"
	"github.com/yojanamitra-core/server/internal/generator"
	"github.com/yojanamitra-core/server/internal/match"
	"github.com/yojanamitra-core/server/internal/metrics"
	"github.com/yojanamitra-core/server/internal/model"
	"github.com/yojanamitra-core/server/internal/ratelimit"
	"github.com/yojanamitra-core/server/internal/scheme"
	"github.com/yojanamitra-core/server/internal/session"
	logx "github.com/yojanamitra-core/server/pkg/logger"
)

// Outcome tells the request layer how the response was produced, so it can
// pick the right status code without parsing the body.
type Outcome string

const (
	OutcomeCacheHit      Outcome = "cache_hit"
	OutcomeGenerated     Outcome = "generated"
	OutcomeDegraded      Outcome = "degraded"
	OutcomeRateLimited   Outcome = "rate_limited"
	OutcomeClarification Outcome = "clarification"
)

// Result is a handled query: the envelope plus its outcome.
type Result struct {
	Response model.QueryResponse
	Outcome  Outcome
}

// Orchestrator wires the pipeline components. All shared state lives behind
// the injected stores; the orchestrator itself holds only configuration.
type Orchestrator struct {
	limiter   ratelimit.Limiter
	cache     cache.Cache
	schemes   scheme.Store
	sessions  session.Store
	generator generator.Generator
	adapter   *bandwidth.Adapter
	promptCfg model.PromptConfig
}

func New(
	limiter ratelimit.Limiter,
	respCache cache.Cache,
	schemes scheme.Store,
	sessions session.Store,
	gen generator.Generator,
	adapter *bandwidth.Adapter,
	promptCfg model.PromptConfig,
) *Orchestrator {
	return &Orchestrator{
		limiter:   limiter,
		cache:     respCache,
		schemes:   schemes,
		sessions:  sessions,
		generator: gen,
		adapter:   adapter,
		promptCfg: promptCfg,
	}
}

// HandleQuery runs the full pipeline for one query. A response is always
// returned unless the input itself is invalid or the caller abandoned the
// request; collaborator failures degrade, they do not surface.
func (o *Orchestrator) HandleQuery(ctx context.Context, in model.QueryInput) (*Result, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, errx.BadInput(nil, "query must not be empty")
	}
	if in.SessionID == "" {
		in.SessionID = uuid.NewString()
	}

	correlationID := uuid.NewString()
	log := logx.WithCorrelation(correlationID)
	log.Debug().Str("session_id", in.SessionID).Str("input_mode", string(in.InputMode)).Msg("query received")

	lang := model.LangEnglish
	if in.Profile != nil {
		lang = model.ParseLanguage(string(in.Profile.LanguagePreference))
	}

	// RATE_CHECKED
	subject := in.SessionID
	if in.Profile != nil {
		if userID, ok := in.Profile.UserID.Get(); ok && userID != "" {
			subject = userID
		}
	}
	if !o.allow(ctx, log, subject, ratelimit.ClassQuery) {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeRateLimited).Inc()
		metrics.LimiterRejections.WithLabelValues(string(ratelimit.ClassQuery)).Inc()
		log.Warn().Str("error_kind", string(errx.KindRateLimitExceeded)).Msg("query rejected by rate limiter")
		return &Result{
			Response: model.QueryResponse{
				Response:  textFor(throttleTexts, lang),
				SessionID: in.SessionID,
			},
			Outcome: OutcomeRateLimited,
		}, nil
	}

	sess := o.loadSession(ctx, log, in.SessionID, lang)
	if in.Profile == nil {
		lang = sess.LanguagePreference
	}
	if sess.LowBandwidthMode != in.LowBandwidth {
		if err := o.withStoreRetry(ctx, func() error {
			return o.sessions.SetLowBandwidth(ctx, in.SessionID, in.LowBandwidth)
		}); err != nil {
			log.Warn().Err(err).Msg("low-bandwidth flag not persisted, continuing")
		}
	}

	// CACHE_CHECKED
	fingerprint := cache.Fingerprint(query, lang, in.LowBandwidth)
	if entry := o.cacheGet(ctx, log, fingerprint); entry != nil {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeCacheHit).Inc()
		resp := entry.Response
		resp.SessionID = in.SessionID
		// cache stores the canonical full form; adapt per-request
		resp = o.adapter.Adapt(resp, in.LowBandwidth)
		o.appendTurn(ctx, log, in, resp.Response)
		return &Result{Response: resp, Outcome: OutcomeCacheHit}, nil
	}

	// MATCHING
	keywords := extractKeywords(query)
	candidates, err := o.schemes.Search(ctx, keywords, model.None[model.SchemeCategory]())
	if err != nil {
		log.Error().Err(err).Str("error_kind", string(errx.KindOf(err))).Msg("scheme search failed")
		candidates = nil
	}
	if len(candidates) == 0 && len(keywords) < 2 {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeClarification).Inc()
		resp := model.QueryResponse{
			Response:            textFor(clarificationTexts, lang),
			ClarificationNeeded: true,
			SessionID:           in.SessionID,
		}
		o.appendTurn(ctx, log, in, resp.Response)
		return &Result{Response: resp, Outcome: OutcomeClarification}, nil
	}

	profile := model.UserProfile{LanguagePreference: lang}
	if in.Profile != nil {
		profile = *in.Profile
	}
	scored := make([]match.ScoredScheme, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, match.ScoredScheme{Scheme: c, Result: match.Match(profile, c)})
	}
	ranked := match.Rank(scored)

	// PROMPTING
	systemPrompt, err := renderSystemPrompt(ctx, o.promptCfg, lang)
	if err != nil {
		return nil, err
	}
	userPrompt, cited := buildUserPrompt(query, sess.History, ranked, o.promptCfg.MaxHistoryTurns, o.promptCfg.TopK)

	// GENERATING
	start := time.Now()
	answer, genErr := o.generator.Generate(ctx, generator.Request{
		System:             systemPrompt,
		Prompt:             userPrompt,
		GroundingSchemeIDs: cited,
	})
	metrics.GenerationSeconds.Observe(time.Since(start).Seconds())

	if genErr != nil {
		if ctx.Err() != nil {
			// caller gone; no cache or session writes for abandoned requests
			return nil, ctx.Err()
		}
		kind := errx.KindOf(genErr)
		metrics.GeneratorFailures.WithLabelValues(string(kind)).Inc()
		log.Error().Err(genErr).Str("error_kind", string(kind)).Msg("answer generation failed, serving degraded response")
		return o.degradedResponse(ctx, log, in, query, lang), nil
	}

	resp := model.QueryResponse{
		Response:       answer.Text,
		Sources:        sourceRefs(ranked, answer.CitedSchemeIDs),
		RelatedSchemes: relatedSchemes(ranked, o.promptCfg.TopK),
		SessionID:      in.SessionID,
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// CACHING — canonical full form, tagged with cited schemes
	o.cachePut(ctx, log, fingerprint, model.CacheEntry{
		Response:    resp,
		GeneratedAt: time.Now().UTC(),
		Confidence:  answer.Confidence,
		SchemeIDs:   answer.CitedSchemeIDs,
	}, cache.ClassAnswer)

	// ADAPTING + RESPONDING
	adapted := o.adapter.Adapt(resp, in.LowBandwidth)
	o.appendTurn(ctx, log, in, adapted.Response)
	metrics.QueriesTotal.WithLabelValues(metrics.OutcomeGenerated).Inc()
	return &Result{Response: adapted, Outcome: OutcomeGenerated}, nil
}

// degradedResponse recovers from a generator failure: first the cached entry
// for the same query under the opposite bandwidth flag, then the templated
// apology.
func (o *Orchestrator) degradedResponse(ctx context.Context, log zerolog.Logger, in model.QueryInput, query string, lang model.Language) *Result {
	metrics.QueriesTotal.WithLabelValues(metrics.OutcomeDegraded).Inc()

	sibling := cache.Fingerprint(query, lang, !in.LowBandwidth)
	if entry := o.cacheGet(ctx, log, sibling); entry != nil {
		log.Debug().Msg("serving cached sibling entry after generator failure")
		resp := entry.Response
		resp.SessionID = in.SessionID
		resp = o.adapter.Adapt(resp, in.LowBandwidth)
		o.appendTurn(ctx, log, in, resp.Response)
		return &Result{Response: resp, Outcome: OutcomeDegraded}
	}

	resp := model.QueryResponse{
		Response:  textFor(apologyTexts, lang),
		SessionID: in.SessionID,
	}
	o.appendTurn(ctx, log, in, resp.Response)
	return &Result{Response: resp, Outcome: OutcomeDegraded}
}

// allow asks the limiter, retrying store faults. When the store stays down
// the request proceeds unlimited: reduced mode trades strict guarantees for
// availability.
func (o *Orchestrator) allow(ctx context.Context, log zerolog.Logger, subject string, class ratelimit.Class) bool {
	var allowed bool
	err := o.withStoreRetry(ctx, func() error {
		var allowErr error
		allowed, allowErr = o.limiter.Allow(ctx, subject, class)
		return allowErr
	})
	if err != nil {
		log.Warn().Err(err).Str("error_kind", string(errx.KindOf(err))).Msg("rate limiter unavailable, proceeding without limiting")
		return true
	}
	return allowed
}

// loadSession fetches a snapshot, falling back to an ephemeral session when
// the store stays unreachable (reduced mode: no persisted context).
func (o *Orchestrator) loadSession(ctx context.Context, log zerolog.Logger, sessionID string, lang model.Language) *model.Session {
	var sess *model.Session
	err := o.withStoreRetry(ctx, func() error {
		var loadErr error
		sess, loadErr = o.sessions.GetOrCreate(ctx, sessionID, lang)
		return loadErr
	})
	if err != nil {
		log.Warn().Err(err).Str("error_kind", string(errx.KindOf(err))).Msg("session store unavailable, using ephemeral session")
		now := time.Now().UTC()
		return &model.Session{
			SessionID:          sessionID,
			LanguagePreference: lang,
			CreatedAt:          now,
			LastActivityAt:     now,
		}
	}
	return sess
}

func (o *Orchestrator) cacheGet(ctx context.Context, log zerolog.Logger, fingerprint string) *model.CacheEntry {
	var entry *model.CacheEntry
	var found bool
	err := o.withStoreRetry(ctx, func() error {
		var getErr error
		entry, found, getErr = o.cache.Get(ctx, fingerprint)
		return getErr
	})
	if err != nil {
		log.Warn().Err(err).Str("error_kind", string(errx.KindOf(err))).Msg("cache unavailable, treating as miss")
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil
	}
	if !found {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return entry
}

func (o *Orchestrator) cachePut(ctx context.Context, log zerolog.Logger, fingerprint string, entry model.CacheEntry, class cache.Class) {
	if err := o.withStoreRetry(ctx, func() error {
		return o.cache.Put(ctx, fingerprint, entry, class)
	}); err != nil {
		log.Warn().Err(err).Str("error_kind", string(errx.KindOf(err))).Msg("cache write skipped")
	}
}

// appendTurn records the user query and assistant reply on the session.
// Failures reduce to an unpersisted turn, never a failed request.
func (o *Orchestrator) appendTurn(ctx context.Context, log zerolog.Logger, in model.QueryInput, answer string) {
	now := time.Now().UTC()
	msgs := []model.Message{
		{Role: model.RoleUser, Content: strings.TrimSpace(in.Query), Timestamp: now, InputMode: in.InputMode},
		{Role: model.RoleAssistant, Content: answer, Timestamp: now},
	}
	for _, msg := range msgs {
		msg := msg
		if err := o.withStoreRetry(ctx, func() error {
			return o.sessions.AppendMessage(ctx, in.SessionID, msg)
		}); err != nil {
			log.Warn().Err(err).Str("error_kind", string(errx.KindOf(err))).Msg("session turn not persisted")
			return
		}
	}
}

// withStoreRetry retries only store outages; other errors pass through
// immediately.
func (o *Orchestrator) withStoreRetry(ctx context.Context, op func() error) error {
	return core.RetryStore(ctx, op)
}

func sourceRefs(ranked []match.ScoredScheme, citedIDs []string) []model.SourceRef {
	cited := make(map[string]struct{}, len(citedIDs))
	for _, id := range citedIDs {
		cited[id] = struct{}{}
	}
	var out []model.SourceRef
	for _, s := range ranked {
		if _, ok := cited[s.Scheme.ID]; !ok {
			continue
		}
		out = append(out, model.SourceRef{
			SchemeID:     s.Scheme.ID,
			Name:         s.Scheme.Name,
			OfficialLink: s.Scheme.OfficialLink,
		})
	}
	return out
}

func relatedSchemes(ranked []match.ScoredScheme, topK int) []model.RelatedScheme {
	const maxRelated = 3
	if topK < 0 {
		topK = 0
	}
	var out []model.RelatedScheme
	for i := topK; i < len(ranked) && len(out) < maxRelated; i++ {
		out = append(out, model.RelatedScheme{
			SchemeID: ranked[i].Scheme.ID,
			Name:     ranked[i].Scheme.Name,
			Category: ranked[i].Scheme.Category,
		})
	}
	return out
}
