package model

import "time"

// QueryInput is the single logical operation the request-handling layer
// invokes. Voice queries arrive already transcribed; InputMode is recorded on
// the session turn but never changes processing.
type QueryInput struct {
	Query        string       `json:"query"`
	SessionID    string       `json:"session_id"`
	InputMode    InputMode    `json:"input_mode,omitempty"`
	Profile      *UserProfile `json:"-"`
	LowBandwidth bool         `json:"low_bandwidth"`
}

// SourceRef points at a scheme the answer drew on.
type SourceRef struct {
	SchemeID     string `json:"schemeId"`
	Name         string `json:"name"`
	OfficialLink string `json:"officialLink,omitempty"`
}

// RelatedScheme is a lighter pointer surfaced alongside the answer.
type RelatedScheme struct {
	SchemeID string         `json:"schemeId"`
	Name     string         `json:"name"`
	Category SchemeCategory `json:"category"`
}

// QueryResponse is the success envelope. The cache stores it in canonical full
// form; the bandwidth adapter produces the reduced variant per request.
type QueryResponse struct {
	Response            string          `json:"response"`
	Sources             []SourceRef     `json:"sources,omitempty"`
	RelatedSchemes      []RelatedScheme `json:"relatedSchemes,omitempty"`
	ClarificationNeeded bool            `json:"clarificationNeeded"`
	SessionID           string          `json:"sessionId"`
}

// ErrorResponse is the error envelope: 4xx codes for caller-side faults, 5xx
// for collaborator faults.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CacheEntry is the cached value for a query fingerprint. SchemeIDs carries
// the schemes the response cites so scheme updates can invalidate every entry
// that referenced them.
type CacheEntry struct {
	Response    QueryResponse `json:"response"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Confidence  float64       `json:"confidence"`
	SchemeIDs   []string      `json:"schemeIds,omitempty"`
}

// Opportunity is one ranked result of FindOpportunities.
type Opportunity struct {
	Scheme         Scheme  `json:"scheme"`
	MatchedCount   int     `json:"matchedCount"`
	TotalEvaluable int     `json:"totalEvaluable"`
	RelevanceScore float64 `json:"relevanceScore"`
}

// OpportunityResult is the FindOpportunities envelope.
type OpportunityResult struct {
	Opportunities   []Opportunity      `json:"opportunities"`
	TotalCount      int                `json:"totalCount"`
	RelevanceScores map[string]float64 `json:"relevanceScores"`
}

// OpportunityFilters narrows a FindOpportunities pass.
type OpportunityFilters struct {
	Category Opt[SchemeCategory]
	Keywords []string
}
