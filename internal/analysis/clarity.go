package analysis

import (
	"math"
	"strings"
	"unicode/utf8"

	"cvscore/internal/types"
)

const (
	jargonWordLength = 12
	jargonHighRatio  = 0.10
	jargonMedRatio   = 0.05
)

// AnalyzeClarity estimates how easy text is to read using average sentence
// length, a Flesch-Kincaid grade approximation and the share of long words.
func AnalyzeClarity(text string) types.ClarityAnalysis {
	if strings.TrimSpace(text) == "" {
		return types.ClarityAnalysis{JargonLevel: types.JargonLow}
	}

	ws := words(text)
	sents := sentences(text)

	avg := 0.0
	if len(sents) > 0 {
		avg = float64(len(ws)) / float64(len(sents))
	}

	syllables, long := 0, 0
	for _, w := range ws {
		syllables += countSyllables(w)
		if utf8.RuneCountInString(w) > jargonWordLength {
			long++
		}
	}

	grade := 0.39*avg + 11.8*(float64(syllables)/float64(len(ws))) - 15.59

	score := 100
	if grade > 12 {
		score -= 20
	} else if grade > 10 {
		score -= 10
	}

	jargon := types.JargonLow
	ratio := float64(long) / float64(len(ws))
	if ratio > jargonHighRatio {
		score -= 15
		jargon = types.JargonHigh
	} else if ratio > jargonMedRatio {
		score -= 5
		jargon = types.JargonMedium
	}

	return types.ClarityAnalysis{
		Score:             max(score, 0),
		AvgSentenceLength: round1(avg),
		ReadabilityGrade:  round1(grade),
		JargonLevel:       jargon,
	}
}

// countSyllables counts maximal runs of vowels (y included); every word has at least one
func countSyllables(word string) int {
	count := 0
	inVowel := false
	for _, r := range strings.ToLower(word) {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y':
			if !inVowel {
				count++
			}
			inVowel = true
		default:
			inVowel = false
		}
	}
	return max(count, 1)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
