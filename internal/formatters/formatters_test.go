package formatters

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"cvscore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *types.AnalysisResult {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return &types.AnalysisResult{
		Success:    true,
		AnalysisID: "a1",
		Industry:   types.IndustryTechnology,
		AnalyzedAt: &at,
		ATSScore: &types.ATSScore{
			Overall:         76,
			PassRate:        types.PassRateMedium,
			Breakdown:       types.ATSBreakdown{Formatting: 100, Keywords: 70, Structure: 45, Readability: 85, FileFormat: 85},
			Recommendations: []string{"Add a professional summary of at least 50 characters"},
		},
		ContentQuality: &types.ContentQuality{
			Overall: 80,
			Grammar: types.GrammarAnalysis{Score: 95, Issues: []types.GrammarIssue{
				{Rule: "double_space", Text: "  ", Suggestion: "Use a single space between words", Severity: types.SeverityWarning, Position: 4, Count: 1},
			}},
			Impact: types.ImpactAnalysis{
				Score:          70,
				WeakVerbs:      []string{"responsible for"},
				SuggestedVerbs: map[string][]string{"responsible for": {"led", "owned"}},
			},
			Clarity: types.ClarityAnalysis{Score: 75, AvgSentenceLength: 12.5, ReadabilityGrade: 9.1, JargonLevel: types.JargonLow},
		},
		KeywordAnalysis: &types.KeywordAnalysis{
			JobKeywords: []types.KeywordEntry{
				{Keyword: "golang", Frequency: 4, Importance: types.ImportanceCritical, CVMatches: 2, Density: 1.25},
			},
			Missing:      []string{"kafka", "docker"},
			OverallMatch: 50,
		},
	}
}

func TestRegistryFormatsAnalysisResult(t *testing.T) {
	registry := NewFormatterRegistry()

	text, err := registry.Format(sampleResult(), "text")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "=== CV ANALYSIS ==="))
	assert.Contains(t, text, "Overall: 76/100")
	assert.Contains(t, text, "Pass Rate: Medium")
	assert.Contains(t, text, "1. Add a professional summary")
	assert.Contains(t, text, "responsible for -> led, owned")
	assert.Contains(t, text, "Missing: docker, kafka")

	md, err := registry.Format(sampleResult(), "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# CV Analysis"))
	assert.Contains(t, md, "## ATS Compatibility")
	assert.Contains(t, md, "- **Overall:** 76/100")
	assert.Contains(t, md, "| golang | 4 | Critical | 2 | 1.25% |")
}

func TestRegistryFormatsFailedResult(t *testing.T) {
	text, err := GlobalRegistry.Format(types.AnalysisResult{Error: "analysis failed: boom"}, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Status: failed")
	assert.Contains(t, text, "Error: analysis failed: boom")
	assert.NotContains(t, text, "ATS")
}

func TestJSONFormatterUsesWireNames(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleResult(), "json")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "}\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "atsScore")
	assert.Contains(t, decoded, "keywordAnalysis")
	assert.NotContains(t, decoded, "lengthAnalysis")
}

func TestKeywordFormatters(t *testing.T) {
	ka := types.KeywordAnalysis{OverallMatch: 0}

	text, err := GlobalRegistry.Format(ka, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Overall Match: 0%")
	assert.Contains(t, text, "none found in the job description")

	md, err := GlobalRegistry.Format(&ka, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "## Keyword Match")
}

func TestBatchFormatters(t *testing.T) {
	report := &types.BatchReport{
		BatchID:     "b1",
		Industry:    types.IndustryFinance,
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Entries: []types.BatchEntry{
			{ID: "alex", Name: "Alex", Rank: 1, ATSOverall: 88, PassRate: types.PassRateHigh, ContentOverall: 90, LengthScore: 100, KeywordMatch: 60},
			{ID: "broken", Error: "CV does not match schema"},
		},
		Summary: types.BatchSummary{Count: 2, Failed: 1, AverageATS: 88, High: 1},
	}

	md, err := GlobalRegistry.Format(report, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "# Batch Ranking")
	assert.Contains(t, md, "| Rank | ID | Name | ATS | Pass Rate | Content | Length | Keywords | Notes |")
	assert.Contains(t, md, "| 1 | alex | Alex | 88 | High | 90 | 100 | 60% |  |")
	assert.Contains(t, md, "error: CV does not match schema")

	text, err := GlobalRegistry.Format(report, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Average ATS Score: 88.0")
	assert.Contains(t, text, "Pass Rates: High 1, Medium 0, Low 0")
}

func TestUnknownFormat(t *testing.T) {
	_, err := GlobalRegistry.Format(sampleResult(), "pdf")
	assert.Error(t, err)

	_, err = GlobalRegistry.Format(map[string]int{"a": 1}, "text")
	assert.Error(t, err)
}

func TestGetSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, GlobalRegistry.GetSupportedFormats())
}

func TestFormatterRejectsWrongType(t *testing.T) {
	_, err := (&AnalysisTextFormatter{}).Format("nope")
	assert.Error(t, err)
	_, err = (&BatchMarkdownFormatter{}).Format(types.AnalysisResult{})
	assert.Error(t, err)
}
