package analysis

import (
	"math"

	"cvscore/internal/types"
)

// CalculateContentQuality combines the grammar, impact and clarity analyses
// of cv into one score.
func (a *Analyzer) CalculateContentQuality(cv types.CVRecord) types.ContentQuality {
	text := ExtractAllText(cv)

	grammar := AnalyzeGrammar(text)
	impact := a.AnalyzeImpact(cv)
	clarity := AnalyzeClarity(text)

	overall := int(math.Round(float64(grammar.Score+impact.Score+clarity.Score) / 3))

	return types.ContentQuality{
		Overall: overall,
		Grammar: grammar,
		Impact:  impact,
		Clarity: clarity,
	}
}
