package analysis

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"cvscore/internal/types"
)

// ATS sub-score weights, in percent
const (
	weightFormatting  = 25
	weightKeywords    = 30
	weightStructure   = 20
	weightReadability = 15
	weightFileFormat  = 10
)

const (
	// fileFormatScore is fixed: the engine only sees structured CV data, never the uploaded document
	fileFormatScore = 85

	neutralKeywordScore   = 70
	neutralKeywordRate    = 0.7
	industryTermBonus     = 0.5
	glyphPenalty          = 5
	maxGlyphPenalty       = 30
	tablePenalty          = 15
	standardSectionsBonus = 10
	summaryMinChars       = 50
	bulletBonusThreshold  = 5
)

// CalculateATSScore scores how well the CV is likely to survive automated
// applicant tracking. jobDescription may be empty.
func (a *Analyzer) CalculateATSScore(cv types.CVRecord, jobDescription, industry string) types.ATSScore {
	text := ExtractAllText(cv)

	breakdown := types.ATSBreakdown{
		Formatting:  a.formattingScore(cv, text),
		Keywords:    a.keywordScore(text, jobDescription, industry),
		Structure:   structureScore(cv, industry),
		Readability: a.readabilityScore(text),
		FileFormat:  fileFormatScore,
	}

	// integer arithmetic keeps half-point totals rounding up exactly
	weighted := breakdown.Formatting*weightFormatting +
		breakdown.Keywords*weightKeywords +
		breakdown.Structure*weightStructure +
		breakdown.Readability*weightReadability +
		breakdown.FileFormat*weightFileFormat
	overall := clamp((weighted+50)/100, 0, 100)

	return types.ATSScore{
		Overall:         overall,
		Breakdown:       breakdown,
		Recommendations: a.atsRecommendations(breakdown, industry),
		PassRate:        passRateFor(overall),
	}
}

func (a *Analyzer) formattingScore(cv types.CVRecord, text string) int {
	score := 100

	glyphs := 0
	for _, g := range a.lex.DecorativeGlyphs {
		glyphs += strings.Count(text, g)
	}
	score -= min(glyphs*glyphPenalty, maxGlyphPenalty)

	for _, marker := range a.lex.TableMarkers {
		if strings.Contains(text, marker) {
			score -= tablePenalty
			break
		}
	}

	if hasStandardSections(cv) {
		score += standardSectionsBonus
	}

	return clamp(score, 0, 100)
}

func hasStandardSections(cv types.CVRecord) bool {
	return present(cv.PersonalInfo.Name) &&
		hasExperienceTitle(cv) &&
		hasEducationDegree(cv) &&
		len(cv.Skills) > 0
}

func (a *Analyzer) keywordScore(text, jobDescription, industry string) int {
	if strings.TrimSpace(jobDescription) == "" {
		return neutralKeywordScore
	}

	keywords := a.uniqueKeywords(jobDescription)
	cvLower := strings.ToLower(text)

	matches := 0.0
	for _, kw := range keywords {
		if strings.Contains(cvLower, kw) {
			matches++
		}
	}
	for _, term := range a.lex.TermsFor(industry) {
		if strings.Contains(cvLower, strings.ToLower(term)) {
			matches += industryTermBonus
		}
	}

	rate := neutralKeywordRate
	if len(keywords) > 0 {
		rate = matches / float64(len(keywords))
	}
	return int(math.Round(math.Min(100, rate*100)))
}

// uniqueKeywords returns every distinct qualifying token of text in first-occurrence order
func (a *Analyzer) uniqueKeywords(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range a.tokenize(text) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func structureScore(cv types.CVRecord, industry string) int {
	score := 0
	p := cv.PersonalInfo

	if present(p.Name) && present(p.Email) {
		score += 20
	}
	if hasExperienceTitle(cv) {
		score += 25
	}
	if hasEducationDegree(cv) {
		score += 20
	}
	if len(cv.Skills) > 0 {
		score += 20
	}
	if present(p.Summary) && utf8.RuneCountInString(p.Summary) >= summaryMinChars {
		score += 10
	}

	switch {
	case industry == types.IndustryTechnology && present(p.Website):
		score += 5
	case industry == types.IndustryHealthcare && len(cv.Certifications) > 0:
		score += 10
	}

	return min(score, 100)
}

func (a *Analyzer) readabilityScore(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	sents := sentences(text)
	if len(sents) == 0 {
		return 0
	}

	avg := float64(len(words(text))) / float64(len(sents))
	score := 100
	if avg > 25 {
		score -= 20
	} else if avg > 20 {
		score -= 10
	}
	if avg < 8 {
		score -= 15
	}

	bullets := 0
	for _, b := range a.lex.BulletMarkers {
		bullets += strings.Count(text, b)
	}
	if bullets > bulletBonusThreshold {
		score += 10
	}

	return clamp(score, 0, 100)
}

func (a *Analyzer) atsRecommendations(b types.ATSBreakdown, industry string) []string {
	recs := []string{}

	if b.Formatting < 80 {
		recs = append(recs,
			"Remove decorative symbols and custom bullet glyphs",
			"Avoid tables, columns and text boxes that ATS parsers cannot read",
			"Simplify the layout to a single column with standard section headings")
	}
	if b.Keywords < 70 {
		recs = append(recs, "Include more keywords from the job description in your experience and skills")
		terms := a.lex.TermsFor(industry)
		if len(terms) > 3 {
			terms = terms[:3]
		}
		if len(terms) > 0 {
			recs = append(recs, fmt.Sprintf("Add %s industry terms such as: %s", industry, strings.Join(terms, ", ")))
		}
	}
	if b.Structure < 75 {
		recs = append(recs,
			"Make sure your CV has contact details, work experience, education and skills sections",
			"Add a professional summary of at least 50 characters")
	}
	if b.Readability < 80 {
		recs = append(recs,
			"Keep sentences between 8 and 20 words",
			"Use bullet points to break up long paragraphs")
	}

	return recs
}

func passRateFor(overall int) string {
	switch {
	case overall >= 85:
		return types.PassRateHigh
	case overall >= 70:
		return types.PassRateMedium
	default:
		return types.PassRateLow
	}
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func hasExperienceTitle(cv types.CVRecord) bool {
	for _, exp := range cv.Experience {
		if present(exp.Title) {
			return true
		}
	}
	return false
}

func hasEducationDegree(cv types.CVRecord) bool {
	for _, edu := range cv.Education {
		if present(edu.Degree) {
			return true
		}
	}
	return false
}
