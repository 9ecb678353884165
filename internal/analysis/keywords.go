package analysis

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"cvscore/internal/types"
)

const (
	maxJobKeywords      = 20
	minKeywordLength    = 4
	overusedDensity     = 5.0
	criticalFrequency   = 3
	importantFrequency  = 1
	underusedMatchLimit = 2
)

type keywordCount struct {
	word  string
	count int
}

// tokenize lowercases text, turns punctuation into whitespace and drops
// short tokens and stop words
func (a *Analyzer) tokenize(text string) []string {
	cleaned := punctuationPattern.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		if utf8.RuneCountInString(tok) < minKeywordLength || a.lex.IsStopWord(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// rankKeywords counts token frequencies and orders them by descending
// frequency. Ties keep first-occurrence order.
func (a *Analyzer) rankKeywords(text string) []keywordCount {
	index := make(map[string]int)
	var counts []keywordCount
	for _, tok := range a.tokenize(text) {
		if i, ok := index[tok]; ok {
			counts[i].count++
			continue
		}
		index[tok] = len(counts)
		counts = append(counts, keywordCount{word: tok, count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})
	return counts
}

func importanceFor(frequency int) string {
	switch {
	case frequency > criticalFrequency:
		return types.ImportanceCritical
	case frequency > importantFrequency:
		return types.ImportanceImportant
	default:
		return types.ImportanceNiceToHave
	}
}

// MatchKeywords ranks the top job description keywords and measures how the
// CV text covers each of them.
func (a *Analyzer) MatchKeywords(cvText, jobDescription string) types.KeywordAnalysis {
	result := types.KeywordAnalysis{
		JobKeywords: []types.KeywordEntry{},
		Missing:     []string{},
		Underused:   []string{},
		Overused:    []string{},
	}

	ranked := a.rankKeywords(jobDescription)
	if len(ranked) > maxJobKeywords {
		ranked = ranked[:maxJobKeywords]
	}
	if len(ranked) == 0 {
		return result
	}

	cvLower := strings.ToLower(cvText)
	cvWordCount := len(words(cvText))
	matched := 0

	for _, kc := range ranked {
		matches := strings.Count(cvLower, kc.word)
		density := 0.0
		if cvWordCount > 0 {
			density = float64(matches) / float64(cvWordCount) * 100
		}
		importance := importanceFor(kc.count)

		result.JobKeywords = append(result.JobKeywords, types.KeywordEntry{
			Keyword:    kc.word,
			Frequency:  kc.count,
			Importance: importance,
			CVMatches:  matches,
			Density:    math.Round(density*100) / 100,
		})

		if matches > 0 {
			matched++
		}
		if importance == types.ImportanceCritical && matches == 0 {
			result.Missing = append(result.Missing, kc.word)
		}
		if importance == types.ImportanceImportant && matches < underusedMatchLimit {
			result.Underused = append(result.Underused, kc.word)
		}
		if density > overusedDensity {
			result.Overused = append(result.Overused, kc.word)
		}
	}

	result.OverallMatch = int(math.Round(100 * float64(matched) / float64(len(ranked))))
	return result
}
