package security

import (
	"regexp"
	"strings"
)

// Verdict is the classifier's judgment of one query.
type Verdict struct {
	Flagged   bool
	PatternID string
}

// injectionPattern pairs a stable id (persisted in the violation log) with
// a precompiled matcher. Patterns are deliberately narrow: a missed
// borderline attempt is cheaper than taxing a legitimate fan with latency.
type injectionPattern struct {
	id string
	re *regexp.Regexp
}

var injectionPatterns = []injectionPattern{
	{
		id: "instruction-overwrite",
		re: regexp.MustCompile(`(?i)\b(ignore|disregard|forget|override)\b.{0,40}\b(previous|prior|above|earlier|all)\b.{0,30}\b(instructions?|prompts?|rules?|directives?)\b`),
	},
	{
		id: "role-override",
		// "act as" alone is too common in match talk ("act as captain"),
		// so the phrasing here requires an explicit identity swap.
		re: regexp.MustCompile(`(?i)\b(you are now|from now on,? you (are|will)|pretend (to be|you are)|roleplay as)\b`),
	},
	{
		id: "prompt-reveal",
		re: regexp.MustCompile(`(?i)\b(reveal|show|print|repeat|output|tell me)\b.{0,40}\b(system|hidden|initial|original)\b.{0,20}\b(prompt|instructions?|message)\b`),
	},
	{
		id: "delimiter-escape",
		re: regexp.MustCompile(`(?i)(<\|im_(start|end)\|>|\[/?(system|inst)\]|` + "```" + `\s*system\b|###\s*(system|instruction))`),
	},
	{
		id: "jailbreak-persona",
		re: regexp.MustCompile(`(?i)\b(developer mode|dan mode|do anything now|jailbreak|no (restrictions|filter|guardrails) mode)\b`),
	},
	{
		id: "instruction-injection",
		re: regexp.MustCompile(`(?i)\bnew (instructions?|rules?|system prompt)\s*:\s*`),
	},
}

// Classify scans one query for known injection phrasings. Stateless,
// no I/O, bounded by the fixed pattern set so it stays sub-millisecond on
// every turn.
func Classify(text string) Verdict {
	// Collapse whitespace so padding cannot split a phrase across the
	// bounded gaps in the patterns.
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return Verdict{}
	}

	for _, p := range injectionPatterns {
		if p.re.MatchString(normalized) {
			return Verdict{Flagged: true, PatternID: p.id}
		}
	}
	return Verdict{}
}
