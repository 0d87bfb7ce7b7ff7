package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/yojanamitra-core/server/internal/core/errx"
	"github.com/yojanamitra-core/server/internal/model"
	logx "github.com/yojanamitra-core/server/pkg/logger"
)

// GeminiConfig holds what the Gemini generator needs beyond model settings.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   model.GeneratorConfig
	Timeout time.Duration
}

// GeminiGenerator wraps an eino Gemini chat model behind the Generator
// contract with a hard per-call timeout.
type GeminiGenerator struct {
	chatModel *gemini.ChatModel
	modelName string
	timeout   time.Duration
}

// NewGeminiGenerator builds the genai client and chat model.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model.Model,
		Temperature: &cfg.Model.Temperature,
		MaxTokens:   &cfg.Model.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("error creating answer model")
		return nil, fmt.Errorf("error creating answer model: %w", err)
	}

	return &GeminiGenerator{
		chatModel: chatModel,
		modelName: cfg.Model.Model,
		timeout:   cfg.Timeout,
	}, nil
}

// Generate implements Generator. The timeout is the hard ceiling keeping
// total request latency inside the budget; a deadline hit maps to
// GeneratorTimeout and is recovered upstream.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Answer, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	messages := []*schema.Message{
		schema.SystemMessage(req.System),
		schema.UserMessage(req.Prompt),
	}

	out, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, classifyGenerateError(err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return nil, errx.GeneratorFailure(errors.New("empty generation result"), errx.KindGeneratorUnavailable)
	}

	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		logx.Debug().
			Str("model", g.modelName).
			Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
			Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
			Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
			Msg("LLM usage")
	}

	return &Answer{
		Text: out.Content,
		// the model answers from the grounding block, so the prompt's schemes
		// are the citation set
		CitedSchemeIDs: req.GroundingSchemeIDs,
		Confidence:     confidenceOf(out),
	}, nil
}

func classifyGenerateError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errx.GeneratorFailure(err, errx.KindGeneratorTimeout)
	case strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "resource exhausted"):
		return errx.GeneratorFailure(err, errx.KindGeneratorRateLimited)
	default:
		return errx.GeneratorFailure(err, errx.KindGeneratorUnavailable)
	}
}

func confidenceOf(out *schema.Message) float64 {
	if out.ResponseMeta != nil && strings.EqualFold(out.ResponseMeta.FinishReason, "length") {
		// truncated answers are served but marked less certain
		return 0.5
	}
	return 0.9
}

var _ Generator = (*GeminiGenerator)(nil)
