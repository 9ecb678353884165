// Package analysis scores CVs: ATS compatibility, content quality, length
// and keyword coverage against a job description. Every function is a pure
// computation over its input; nothing here performs I/O.
package analysis

import (
	"fmt"

	"cvscore/internal/lexicon"
	"cvscore/internal/types"
)

// Analyzer runs the scorers against one lexicon. It holds no mutable state
// and is safe for concurrent use.
type Analyzer struct {
	lex *lexicon.Lexicon
}

// New creates an Analyzer. A nil lexicon selects the embedded default.
func New(lex *lexicon.Lexicon) *Analyzer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Analyzer{lex: lex}
}

// Lexicon returns the lexicon the analyzer scores with
func (a *Analyzer) Lexicon() *lexicon.Lexicon {
	return a.lex
}

// AnalyzeCV runs every requested analysis kind. Unknown kinds are ignored.
// Keyword analysis is added whenever the request carries a job description.
// A panic in any scorer turns the whole result into a failure.
func (a *Analyzer) AnalyzeCV(req types.AnalysisRequest) (result *types.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			result = &types.AnalysisResult{
				Success: false,
				Error:   fmt.Sprintf("analysis failed: %v", r),
			}
		}
	}()

	industry := lexicon.ResolveIndustry(req.TargetIndustry)
	result = &types.AnalysisResult{Success: true, Industry: industry}

	requested := make(map[types.AnalysisKind]bool, len(req.AnalysisTypes))
	for _, kind := range req.AnalysisTypes {
		requested[kind] = true
	}

	if requested[types.KindATSScore] {
		ats := a.CalculateATSScore(req.CV, req.JobDescription, industry)
		result.ATSScore = &ats
	}
	if requested[types.KindContentQuality] {
		quality := a.CalculateContentQuality(req.CV)
		result.ContentQuality = &quality
	}
	if requested[types.KindLengthAnalysis] {
		length := a.CalculateLengthAnalysis(req.CV, industry)
		result.LengthAnalysis = &length
	}
	if requested[types.KindDesignScore] {
		design := CalculateDesignScore(req.CV)
		result.DesignScore = &design
	}
	if req.HasJobDescription() {
		keywords := a.MatchKeywords(ExtractAllText(req.CV), req.JobDescription)
		result.KeywordAnalysis = &keywords
	}

	return result
}
