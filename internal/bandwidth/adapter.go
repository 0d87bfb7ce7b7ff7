// Package bandwidth shapes a full response into its reduced-payload variant
// for low-bandwidth sessions.
package bandwidth

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/yojanamitra-core/server/internal/model"
)

// DefaultMaxAnswerChars is the reduced-mode answer length cap.
const DefaultMaxAnswerChars = 500

// Adapter truncates and strips responses under a size budget.
type Adapter struct {
	maxAnswerChars int
}

func New(maxAnswerChars int) *Adapter {
	if maxAnswerChars <= 0 {
		maxAnswerChars = DefaultMaxAnswerChars
	}
	return &Adapter{maxAnswerChars: maxAnswerChars}
}

// Adapt returns the response unchanged when lowBandwidth is off. When on, the
// answer is reduced to plain text of at most the configured length (cut at a
// whitespace boundary, never mid-word) and the optional sources and
// relatedSchemes fields are dropped. ClarificationNeeded and SessionID pass
// through verbatim.
func (a *Adapter) Adapt(resp model.QueryResponse, lowBandwidth bool) model.QueryResponse {
	if !lowBandwidth {
		return resp
	}

	return model.QueryResponse{
		Response:            TruncateAtWord(StripMarkup(resp.Response), a.maxAnswerChars),
		ClarificationNeeded: resp.ClarificationNeeded,
		SessionID:           resp.SessionID,
	}
}

var markdownLink = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

// StripMarkup reduces rich-formatting markers to plain text: links keep their
// label, emphasis and heading markers are removed.
func StripMarkup(s string) string {
	s = markdownLink.ReplaceAllString(s, "$1")
	s = strings.NewReplacer("**", "", "__", "", "*", "", "`", "", "~~", "").Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		for len(trimmed) > 0 && trimmed[0] == '#' {
			trimmed = trimmed[1:]
		}
		trimmed = strings.TrimPrefix(trimmed, " ")
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(trimmed)
	}
	return b.String()
}

// TruncateAtWord cuts s to at most max runes, backing up to the last
// whitespace boundary so no word is split.
func TruncateAtWord(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	cut := max
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		// single word longer than the budget; hard cut is the only option
		cut = max
	}
	return strings.TrimRight(string(runes[:cut]), " \t\n")
}
