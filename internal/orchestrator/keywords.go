package orchestrator

import "strings"

// stopwords covers filler terms in English plus transliterated Hindi common
// in Hinglish queries. Anything left over is a content keyword for the scheme
// store search.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "am": {}, "an": {}, "and": {}, "any": {}, "are": {},
	"can": {}, "do": {}, "does": {}, "for": {}, "get": {}, "give": {}, "have": {},
	"how": {}, "i": {}, "in": {}, "is": {}, "it": {}, "me": {}, "my": {}, "need": {},
	"of": {}, "on": {}, "please": {}, "tell": {}, "the": {}, "there": {}, "to": {},
	"want": {}, "what": {}, "where": {}, "which": {}, "who": {}, "with": {}, "you": {},
	"hai": {}, "hain": {}, "kya": {}, "ke": {}, "ki": {}, "ka": {}, "ko": {},
	"liye": {}, "mein": {}, "mujhe": {}, "chahiye": {}, "batao": {}, "bataiye": {},
}

// extractKeywords splits the query into lower-cased content terms.
func extractKeywords(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !isWordRune(r)
	})

	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, skip := stopwords[f]; skip {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func isWordRune(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
		return true
	}
	// Devanagari block, so Hindi queries keep their terms
	return r >= 0x0900 && r <= 0x097F
}
