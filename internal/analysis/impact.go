package analysis

import (
	"strings"

	"cvscore/internal/types"
)

const (
	weakPhrasePenalty       = 5
	missingQuantPenalty     = 10
	passiveVoicePenalty     = 15
	passiveVoiceThreshold   = 3
	quantificationCharacter = "0123456789%$£€"
)

// AnalyzeImpact looks for weak phrasing, unquantified achievements and passive
// voice in the experience descriptions of cv.
func (a *Analyzer) AnalyzeImpact(cv types.CVRecord) types.ImpactAnalysis {
	result := types.ImpactAnalysis{
		WeakVerbs:             []string{},
		SuggestedVerbs:        map[string][]string{},
		MissingQuantification: []string{},
	}

	score := 100
	seen := make(map[string]struct{})

	for _, exp := range cv.Experience {
		if strings.TrimSpace(exp.Description) == "" {
			continue
		}
		lower := strings.ToLower(exp.Description)

		for _, wp := range a.lex.WeakPhrases {
			phrase := strings.ToLower(wp.Phrase)
			if !strings.Contains(lower, phrase) {
				continue
			}
			score -= weakPhrasePenalty
			if _, ok := seen[phrase]; !ok {
				seen[phrase] = struct{}{}
				result.WeakVerbs = append(result.WeakVerbs, phrase)
				result.SuggestedVerbs[phrase] = wp.Alternatives
			}
		}

		if !strings.ContainsAny(exp.Description, quantificationCharacter) {
			title := strings.TrimSpace(exp.Title)
			if title == "" {
				title = types.DefaultExperienceItem
			}
			result.MissingQuantification = append(result.MissingQuantification, title)
			score -= missingQuantPenalty
		}

		for _, marker := range a.lex.PassiveMarkers {
			result.PassiveVoiceCount += strings.Count(lower, strings.ToLower(marker))
		}
	}

	if result.PassiveVoiceCount > passiveVoiceThreshold {
		score -= passiveVoicePenalty
	}

	result.Score = max(score, 0)
	return result
}
