package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yojanamitra-core/server/internal/cache"
	"github.com/yojanamitra-core/server/internal/core/errx"
	"github.com/yojanamitra-core/server/internal/match"
	"github.com/yojanamitra-core/server/internal/metrics"
	"github.com/yojanamitra-core/server/internal/model"
	"github.com/yojanamitra-core/server/internal/ratelimit"
	logx "github.com/yojanamitra-core/server/pkg/logger"
)

// FindOpportunities runs the profile-driven matching pass: every published
// scheme (optionally narrowed by filters) is evaluated against the profile,
// eligible results are ranked and scored.
func (o *Orchestrator) FindOpportunities(ctx context.Context, profile model.UserProfile, filters *model.OpportunityFilters) (*model.OpportunityResult, error) {
	correlationID := uuid.NewString()
	log := logx.WithCorrelation(correlationID)

	subject := "anonymous"
	if userID, ok := profile.UserID.Get(); ok && userID != "" {
		subject = userID
	}
	if !o.allow(ctx, log, subject, ratelimit.ClassOpportunities) {
		metrics.LimiterRejections.WithLabelValues(string(ratelimit.ClassOpportunities)).Inc()
		return nil, errx.RateLimitExceeded(subject)
	}

	var keywords []string
	category := model.None[model.SchemeCategory]()
	if filters != nil {
		keywords = append(keywords, filters.Keywords...)
		category = filters.Category
	}
	keywords = append(keywords, profile.Interests...)

	candidates, err := o.schemes.Search(ctx, keywords, category)
	if err != nil {
		log.Error().Err(err).Str("error_kind", string(errx.KindOf(err))).Msg("scheme search failed")
		return nil, err
	}

	scored := make([]match.ScoredScheme, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, match.ScoredScheme{Scheme: c, Result: match.Match(profile, c)})
	}
	ranked := match.Rank(scored)

	result := &model.OpportunityResult{
		Opportunities:   make([]model.Opportunity, 0, len(ranked)),
		TotalCount:      len(ranked),
		RelevanceScores: make(map[string]float64, len(ranked)),
	}
	for _, s := range ranked {
		score := relevanceScore(s)
		result.Opportunities = append(result.Opportunities, model.Opportunity{
			Scheme:         s.Scheme,
			MatchedCount:   s.MatchedCount,
			TotalEvaluable: s.TotalEvaluable,
			RelevanceScore: score,
		})
		result.RelevanceScores[s.Scheme.ID] = score
	}

	log.Debug().Int("candidates", len(candidates)).Int("eligible", len(ranked)).Msg("opportunity matching pass complete")
	return result, nil
}

// relevanceScore is the match density, with provisional (nothing evaluable)
// matches pinned low to signal their optimistic default.
func relevanceScore(s match.ScoredScheme) float64 {
	if s.TotalEvaluable == 0 {
		return 0.25
	}
	return s.Density()
}

// SchemeDetail serves a single scheme lookup through the 24-hour cache class.
func (o *Orchestrator) SchemeDetail(ctx context.Context, schemeID, subject string) (*model.QueryResponse, error) {
	correlationID := uuid.NewString()
	log := logx.WithCorrelation(correlationID)

	if strings.TrimSpace(schemeID) == "" {
		return nil, errx.BadInput(nil, "scheme id must not be empty")
	}
	if subject == "" {
		subject = "anonymous"
	}
	if !o.allow(ctx, log, subject, ratelimit.ClassSchemeDetail) {
		metrics.LimiterRejections.WithLabelValues(string(ratelimit.ClassSchemeDetail)).Inc()
		return nil, errx.RateLimitExceeded(subject)
	}

	fingerprint := cache.Fingerprint("scheme-detail "+schemeID, model.LangEnglish, false)
	if entry := o.cacheGet(ctx, log, fingerprint); entry != nil {
		resp := entry.Response
		return &resp, nil
	}

	sc, ok, err := o.schemes.Get(ctx, schemeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errx.BadInput(nil, "unknown scheme id")
	}

	var b strings.Builder
	writeSchemeBlock(&b, sc)
	resp := model.QueryResponse{
		Response: b.String(),
		Sources: []model.SourceRef{{
			SchemeID:     sc.ID,
			Name:         sc.Name,
			OfficialLink: sc.OfficialLink,
		}},
	}

	o.cachePut(ctx, log, fingerprint, model.CacheEntry{
		Response:    resp,
		GeneratedAt: time.Now().UTC(),
		Confidence:  1,
		SchemeIDs:   []string{sc.ID},
	}, cache.ClassSchemeDetail)

	return &resp, nil
}
