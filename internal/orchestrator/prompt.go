package orchestrator

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/yojanamitra-core/server/internal/match"
	"github.com/yojanamitra-core/server/internal/model"
)

//go:embed templates/answer_system.txt
var answerSystemTemplate string

// renderSystemPrompt renders the system instruction through the eino prompt
// component.
func renderSystemPrompt(ctx context.Context, cfg model.PromptConfig, lang model.Language) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(answerSystemTemplate),
	)
	vars := map[string]any{
		"AssistantName":       cfg.AssistantName,
		"LanguageInstruction": languageInstruction(lang),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("answer prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("answer prompt render: empty result")
	}
	return msgs[0].Content, nil
}

func languageInstruction(lang model.Language) string {
	switch lang {
	case model.LangHindi:
		return "Respond in Hindi using Devanagari script."
	case model.LangHinglish:
		return "Respond in Hinglish: Hindi phrasing in Latin script, mixed with common English terms."
	default:
		return "Respond in simple, clear English."
	}
}

// buildUserPrompt assembles the bounded prompt: truncated history, top-K
// grounding schemes and the current query.
func buildUserPrompt(query string, history []model.Message, ranked []match.ScoredScheme, maxTurns, topK int) (string, []string) {
	var b strings.Builder

	recent := history
	if maxTurns > 0 && len(recent) > maxTurns {
		recent = recent[len(recent)-maxTurns:]
	}
	if len(recent) > 0 {
		b.WriteString("<conversation_context>\n")
		for _, msg := range recent {
			if msg.Content == "" {
				continue
			}
			switch msg.Role {
			case model.RoleUser:
				b.WriteString("UserMessage(" + msg.Content + ")\n")
			case model.RoleAssistant:
				b.WriteString("AssistantMessage(" + msg.Content + ")\n")
			}
		}
		b.WriteString("</conversation_context>\n\n")
	}

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	cited := make([]string, 0, len(ranked))
	b.WriteString("<grounding_schemes>\n")
	for _, s := range ranked {
		cited = append(cited, s.Scheme.ID)
		writeSchemeBlock(&b, s.Scheme)
	}
	b.WriteString("</grounding_schemes>\n\n")

	b.WriteString("<current_question>\n")
	b.WriteString(query)
	b.WriteString("\n</current_question>")

	return b.String(), cited
}

func writeSchemeBlock(b *strings.Builder, s model.Scheme) {
	fmt.Fprintf(b, "Scheme: %s (%s)\n", s.Name, s.Category)
	fmt.Fprintf(b, "Description: %s\n", s.Description)
	b.WriteString("Eligibility:\n")
	for _, c := range s.EligibilityCriteria {
		fmt.Fprintf(b, "  - %s %s %v\n", c.Type, c.Operator, c.Value)
	}
	b.WriteString("Benefits:\n")
	for _, benefit := range s.Benefits {
		fmt.Fprintf(b, "  - %s\n", benefit)
	}
	b.WriteString("How to apply:\n")
	for _, step := range s.ApplicationSteps {
		fmt.Fprintf(b, "  %d. %s\n", step.Order, step.Instruction)
	}
	if s.Deadline != nil {
		fmt.Fprintf(b, "Deadline: %s\n", s.Deadline.Format("2 January 2006"))
	}
	if s.OfficialLink != "" {
		fmt.Fprintf(b, "Official link: %s\n", s.OfficialLink)
	}
	b.WriteString("\n")
}
