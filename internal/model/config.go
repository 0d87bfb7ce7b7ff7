package model

// ================ Config ================

// SessionConfig controls conversation retention.
type SessionConfig struct {
	// IdleTTL is the window after which an idle session is eligible for
	// eviction. Evicted sessions surface as a context reset, not an error.
	IdleTTL string `envconfig:"SESSION_IDLE_TTL" default:"30m"`
	// LowBandwidthMaxMessages caps history under low-bandwidth mode.
	LowBandwidthMaxMessages int `envconfig:"SESSION_LOW_BANDWIDTH_MAX_MESSAGES" default:"3"`
}

// CacheConfig holds the TTL classes of the response cache.
type CacheConfig struct {
	QueryTTL        string `envconfig:"CACHE_QUERY_TTL" default:"1h"`
	SchemeDetailTTL string `envconfig:"CACHE_SCHEME_DETAIL_TTL" default:"24h"`
	AnswerTTL       string `envconfig:"CACHE_ANSWER_TTL" default:"6h"`
}

// RateLimitConfig sets per-hour bucket capacities per endpoint class. Health
// checks bypass the limiter entirely.
type RateLimitConfig struct {
	QueryPerHour         int `envconfig:"RATE_QUERY_PER_HOUR" default:"100"`
	TranscribePerHour    int `envconfig:"RATE_TRANSCRIBE_PER_HOUR" default:"50"`
	OpportunitiesPerHour int `envconfig:"RATE_OPPORTUNITIES_PER_HOUR" default:"200"`
	SchemeDetailPerHour  int `envconfig:"RATE_SCHEME_DETAIL_PER_HOUR" default:"500"`
	SchemeSearchPerHour  int `envconfig:"RATE_SCHEME_SEARCH_PER_HOUR" default:"300"`
	FeedbackPerHour      int `envconfig:"RATE_FEEDBACK_PER_HOUR" default:"50"`
}

// GeneratorConfig configures the external answer generator. Timeout is the
// hard per-call ceiling keeping p95 request latency under five seconds.
type GeneratorConfig struct {
	Model       string  `envconfig:"GENERATOR_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"GENERATOR_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"GENERATOR_TEMPERATURE" default:"0.4"`
	Timeout     string  `envconfig:"GENERATOR_TIMEOUT" default:"4s"`
}

// PromptConfig bounds prompt construction.
type PromptConfig struct {
	AssistantName   string `envconfig:"PROMPT_ASSISTANT_NAME" default:"YojanaMitra"`
	TopK            int    `envconfig:"PROMPT_TOP_K" default:"5"`
	MaxHistoryTurns int    `envconfig:"PROMPT_MAX_HISTORY_TURNS" default:"6"`
}

// BandwidthConfig bounds the reduced payload.
type BandwidthConfig struct {
	MaxAnswerChars int `envconfig:"BANDWIDTH_MAX_ANSWER_CHARS" default:"500"`
}
