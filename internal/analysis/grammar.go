package analysis

import (
	"regexp"
	"strings"

	"cvscore/internal/types"
)

const (
	grammarPenaltyPerMatch = 5
	grammarMaxRulePenalty  = 20
	repeatedCharRun        = 4
)

// grammarRule finds the byte ranges of every match of one heuristic in text
type grammarRule struct {
	id         string
	suggestion string
	find       func(text string) [][]int
}

func regexpRule(id, pattern, suggestion string) grammarRule {
	re := regexp.MustCompile(pattern)
	return grammarRule{
		id:         id,
		suggestion: suggestion,
		find: func(text string) [][]int {
			return re.FindAllStringIndex(text, -1)
		},
	}
}

// grammarRules run in this order; issues are reported in the same order
var grammarRules = []grammarRule{
	regexpRule("lowercase_i", `\bi `, `Capitalize the pronoun "I"`),
	regexpRule("double_space", ` {2,}`, "Use a single space between words"),
	regexpRule("sentence_capitalization", `[.!?]\s+[a-z]`, "Capitalize the first word of each sentence"),
	regexpRule("consonant_cluster", `(?i)[bcdfghjklmnpqrstvwxz]{4,}`, "Check the spelling of words with unusual consonant clusters"),
	{
		id:         "repeated_character",
		suggestion: "Remove repeated characters",
		find:       findRepeatedRuns,
	},
}

// findRepeatedRuns finds runs of the same character repeated at least four
// times. Newlines never count as part of a run.
func findRepeatedRuns(text string) [][]int {
	var matches [][]int

	start, runLen := 0, 0
	var prev rune
	for i, r := range text {
		if runLen > 0 && r == prev && r != '\n' {
			runLen++
			continue
		}
		if runLen >= repeatedCharRun {
			matches = append(matches, []int{start, i})
		}
		start, runLen, prev = i, 1, r
	}
	if runLen >= repeatedCharRun {
		matches = append(matches, []int{start, len(text)})
	}
	return matches
}

// AnalyzeGrammar runs the grammar heuristics over text. Each rule that
// matches yields one issue and costs five points per match, at most twenty.
func AnalyzeGrammar(text string) types.GrammarAnalysis {
	result := types.GrammarAnalysis{Issues: []types.GrammarIssue{}}
	if strings.TrimSpace(text) == "" {
		return result
	}

	score := 100
	for _, rule := range grammarRules {
		matches := rule.find(text)
		if len(matches) == 0 {
			continue
		}

		first := matches[0]
		result.Issues = append(result.Issues, types.GrammarIssue{
			Rule:       rule.id,
			Text:       text[first[0]:first[1]],
			Suggestion: rule.suggestion,
			Severity:   types.SeverityWarning,
			Position:   first[0],
			Count:      len(matches),
		})
		score -= min(grammarPenaltyPerMatch*len(matches), grammarMaxRulePenalty)
	}

	result.Score = max(score, 0)
	return result
}
