package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/yojanamitra-core/server/internal/bandwidth"
	"github.com/yojanamitra-core/server/internal/cache"
	"github.com/yojanamitra-core/server/internal/core"
	"github.com/yojanamitra-core/server/internal/generator"
	"github.com/yojanamitra-core/server/internal/model"
	"github.com/yojanamitra-core/server/internal/orchestrator"
	"github.com/yojanamitra-core/server/internal/ratelimit"
	"github.com/yojanamitra-core/server/internal/scheme"
	"github.com/yojanamitra-core/server/internal/session"
	logx "github.com/yojanamitra-core/server/pkg/logger"
	pkgredis "github.com/yojanamitra-core/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant core,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Core configs
	Generator model.GeneratorConfig
	Session   model.SessionConfig
	Cache     model.CacheConfig
	RateLimit model.RateLimitConfig
	Prompt    model.PromptConfig
	Bandwidth model.BandwidthConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()
	logx.Info().Msg("connected to Redis")

	idleTTL, err := time.ParseDuration(envCfg.Session.IdleTTL)
	if err != nil {
		log.Fatalf("Invalid SESSION_IDLE_TTL '%s': %v", envCfg.Session.IdleTTL, err)
	}
	cacheCfg, err := parseCacheConfig(envCfg.Cache)
	if err != nil {
		log.Fatalf("Invalid cache config: %v", err)
	}
	genTimeout, err := time.ParseDuration(envCfg.Generator.Timeout)
	if err != nil {
		log.Fatalf("Invalid GENERATOR_TIMEOUT '%s': %v", envCfg.Generator.Timeout, err)
	}

	// Stores, all backed by the shared Redis
	sessions := session.NewRedisStore(rdb, session.Config{
		IdleTTL:                 idleTTL,
		LowBandwidthMaxMessages: envCfg.Session.LowBandwidthMaxMessages,
	})
	respCache := cache.NewRedisCache(rdb, cacheCfg)
	limiter := ratelimit.NewRedisLimiter(rdb, ratelimit.LimitsFromConfig(envCfg.RateLimit))

	schemes := scheme.NewMemoryStore()
	schemes.OnUpdate(func(schemeID string) {
		if err := respCache.InvalidateByScheme(ctx, schemeID); err != nil {
			logx.Error().Err(err).Str("scheme_id", schemeID).Msg("cache invalidation failed")
		}
	})
	if err := scheme.Seed(ctx, schemes); err != nil {
		log.Fatalf("Failed to seed scheme catalogue: %v", err)
	}

	gen, err := generator.NewGeminiGenerator(ctx, generator.GeminiConfig{
		APIKey:  envCfg.APIKey,
		BaseURL: envCfg.BaseURL,
		Model:   envCfg.Generator,
		Timeout: genTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialise generator: %v", err)
	}

	orc := orchestrator.New(
		limiter,
		respCache,
		schemes,
		sessions,
		gen,
		bandwidth.New(envCfg.Bandwidth.MaxAnswerChars),
		envCfg.Prompt,
	)

	testQueries := []struct {
		description  string
		query        string
		lowBandwidth bool
	}{
		{
			description: "Scheme discovery by name",
			query:       "Tell me about PM Scholarship",
		},
		{
			description: "Follow-up on eligibility",
			query:       "Am I eligible if my family income is 5 lakh?",
		},
		{
			description:  "Same conversation on a weak connection",
			query:        "What documents do I need?",
			lowBandwidth: true,
		},
	}

	sessionID := "demo-session-001"
	for i, test := range testQueries {
		fmt.Printf("\nQuery %d: %s\n%q\n", i+1, test.description, test.query)

		result, err := orc.HandleQuery(ctx, model.QueryInput{
			Query:        test.query,
			SessionID:    sessionID,
			InputMode:    model.InputText,
			LowBandwidth: test.lowBandwidth,
		})
		if err != nil {
			log.Fatalf("Failed to handle query %d: %v", i+1, err)
		}

		fmt.Printf("Outcome: %s\nResponse: %s\n", result.Outcome, result.Response.Response)
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("\nAll demo queries completed")
}

func parseCacheConfig(cfg model.CacheConfig) (cache.Config, error) {
	queryTTL, err := time.ParseDuration(cfg.QueryTTL)
	if err != nil {
		return cache.Config{}, fmt.Errorf("CACHE_QUERY_TTL: %w", err)
	}
	detailTTL, err := time.ParseDuration(cfg.SchemeDetailTTL)
	if err != nil {
		return cache.Config{}, fmt.Errorf("CACHE_SCHEME_DETAIL_TTL: %w", err)
	}
	answerTTL, err := time.ParseDuration(cfg.AnswerTTL)
	if err != nil {
		return cache.Config{}, fmt.Errorf("CACHE_ANSWER_TTL: %w", err)
	}
	return cache.Config{
		QueryTTL:        queryTTL,
		SchemeDetailTTL: detailTTL,
		AnswerTTL:       answerTTL,
	}, nil
}
