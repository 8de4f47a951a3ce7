package retrieval

import (
	"strings"
	"time"
	"unicode"
)

// maxTerms caps the full-text query so a rambling message cannot produce
// an unbounded MATCH expression.
const maxTerms = 12

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "did": {}, "do": {}, "does": {}, "for": {},
	"from": {}, "had": {}, "has": {}, "have": {}, "he": {}, "her": {},
	"his": {}, "how": {}, "i": {}, "in": {}, "is": {}, "it": {}, "its": {},
	"me": {}, "my": {}, "of": {}, "on": {}, "or": {}, "our": {}, "she": {},
	"so": {}, "that": {}, "the": {}, "their": {}, "them": {}, "they": {},
	"this": {}, "to": {}, "us": {}, "was": {}, "we": {}, "were": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "why": {},
	"will": {}, "with": {}, "you": {}, "your": {},
}

// ExtractTerms pulls salient lowercase terms out of free text, dropping
// stopwords and single letters. Numbers survive: years and scorelines are
// the most discriminating tokens in sports queries.
func ExtractTerms(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
		if len(terms) == maxTerms {
			break
		}
	}
	return terms
}

var onThisDayPhrases = []string{
	"on this day",
	"on this date",
	"today in history",
	"years ago today",
}

// DetectOnThisDay reports whether the query asks for an anniversary lookup,
// returning the reference day when it does.
func DetectOnThisDay(text string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(text)
	for _, phrase := range onThisDayPhrases {
		if strings.Contains(lower, phrase) {
			return now, true
		}
	}
	return time.Time{}, false
}
