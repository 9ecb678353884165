package analysis

import (
	"math"
	"strings"

	"cvscore/internal/lexicon"
	"cvscore/internal/types"
)

const wordsPerPage = 250

var (
	expandSuggestions = []string{
		"Add more detail to your experience descriptions with specific achievements",
		"Include additional relevant skills, projects or certifications",
	}
	condenseSuggestions = []string{
		"Remove outdated or less relevant experience entries",
		"Tighten descriptions to focus on the most impactful achievements",
	}
	optimalSuggestions = []string{
		"Your CV length is within the recommended range",
	}
)

// CalculateLengthAnalysis compares the CV word count with the benchmark of industry
func (a *Analyzer) CalculateLengthAnalysis(cv types.CVRecord, industry string) types.LengthAnalysis {
	industry = lexicon.ResolveIndustry(industry)
	bench := a.lex.BenchmarkFor(industry)

	wordCount := countWords(ExtractAllText(cv))
	pages := max(1, int(math.Ceil(float64(wordCount)/wordsPerPage)))

	var (
		score       int
		action      string
		suggestions []string
	)
	switch {
	case wordCount < bench.Min:
		score = int(math.Round(math.Max(60, float64(wordCount)/float64(bench.Min)*100)))
		action = types.LengthActionExpand
		suggestions = expandSuggestions
	case wordCount > bench.Max:
		over := float64(wordCount-bench.Max) / float64(bench.Max)
		score = int(math.Round(math.Max(70, 100-over*30)))
		action = types.LengthActionCondense
		suggestions = condenseSuggestions
	default:
		score = 100
		action = types.LengthActionOptimal
		suggestions = optimalSuggestions
	}

	return types.LengthAnalysis{
		Industry:      industry,
		Score:         score,
		CurrentLength: types.CurrentLength{WordCount: wordCount, PageCount: pages},
		Benchmark:     bench,
		Recommendations: types.LengthRecommendations{
			Action:      action,
			Suggestions: append([]string(nil), suggestions...),
			Priority:    priorityFor(score),
		},
		SectionBreakdown: a.sectionBreakdown(cv),
	}
}

func priorityFor(score int) string {
	switch {
	case score < 80:
		return types.PriorityHigh
	case score < 90:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

// sectionBreakdown reports per-section word counts. Status is always
// optimal; it is not derived from the targets.
func (a *Analyzer) sectionBreakdown(cv types.CVRecord) types.SectionBreakdown {
	targets := a.lex.SectionTargets

	experience := 0
	for _, exp := range cv.Experience {
		experience += countWords(exp.Description)
	}
	education := 0
	for _, edu := range cv.Education {
		education += countWords(strings.Join([]string{edu.Degree, edu.Institution, edu.Description}, " "))
	}

	section := func(current, recommended int) types.SectionLength {
		return types.SectionLength{Current: current, Recommended: recommended, Status: types.SectionStatusOptimal}
	}

	return types.SectionBreakdown{
		Summary:    section(countWords(cv.PersonalInfo.Summary), targets.Summary),
		Experience: section(experience, targets.Experience),
		Education:  section(education, targets.Education),
		Skills:     section(countWords(strings.Join(cv.Skills, " ")), targets.Skills),
	}
}
