package cache

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/yojanamitra-core/server/internal/model"
)

// NormalizeQuery reduces a query to its cache-addressable form: lower case,
// punctuation stripped, whitespace collapsed. Two phrasings that differ only
// in casing or punctuation share a fingerprint.
func NormalizeQuery(q string) string {
	var b strings.Builder
	b.Grow(len(q))
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(q)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Fingerprint derives the deterministic cache key for a query under a given
// language and bandwidth mode.
func Fingerprint(query string, lang model.Language, lowBandwidth bool) string {
	h := xxhash.New()
	h.WriteString(NormalizeQuery(query))
	h.WriteString("|")
	h.WriteString(string(lang))
	h.WriteString("|")
	if lowBandwidth {
		h.WriteString("lb")
	} else {
		h.WriteString("full")
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
