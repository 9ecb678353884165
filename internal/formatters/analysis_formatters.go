package formatters

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cvscore/internal/types"
)

// AnalysisTextFormatter handles text formatting for analysis results
type AnalysisTextFormatter struct{}

func (f *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}
	return renderAnalysis(result, false), nil
}

func (f *AnalysisTextFormatter) SupportedType() string {
	return TypeAnalysisResult
}

// AnalysisMarkdownFormatter handles markdown formatting for analysis results
type AnalysisMarkdownFormatter struct{}

func (f *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}
	return renderAnalysis(result, true), nil
}

func (f *AnalysisMarkdownFormatter) SupportedType() string {
	return TypeAnalysisResult
}

func renderAnalysis(result types.AnalysisResult, markdown bool) string {
	w := &reportWriter{markdown: markdown}
	w.title("CV Analysis")

	if !result.Success {
		w.field("Status", "failed")
		w.field("Error", result.Error)
		return w.String()
	}

	if result.AnalysisID != "" {
		w.field("Analysis ID", result.AnalysisID)
	}
	if result.Industry != "" {
		w.field("Industry", result.Industry)
	}
	if result.AnalyzedAt != nil {
		w.field("Analyzed At", result.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))
	}
	w.blank()

	if ats := result.ATSScore; ats != nil {
		w.section("ATS Compatibility")
		w.score("Overall", ats.Overall)
		w.field("Pass Rate", ats.PassRate)
		w.score("Formatting", ats.Breakdown.Formatting)
		w.score("Keywords", ats.Breakdown.Keywords)
		w.score("Structure", ats.Breakdown.Structure)
		w.score("Readability", ats.Breakdown.Readability)
		w.score("File Format", ats.Breakdown.FileFormat)
		w.blank()
		if len(ats.Recommendations) > 0 {
			w.subsection("Recommendations")
			w.numbered(ats.Recommendations)
			w.blank()
		}
	}

	if cq := result.ContentQuality; cq != nil {
		writeContentQuality(w, cq)
	}

	if la := result.LengthAnalysis; la != nil {
		w.section("Length")
		w.score("Score", la.Score)
		w.field("Words", la.CurrentLength.WordCount)
		w.field("Pages", la.CurrentLength.PageCount)
		w.field("Benchmark", fmt.Sprintf("%d words (%d-%d)", la.Benchmark.Ideal, la.Benchmark.Min, la.Benchmark.Max))
		w.field("Action", la.Recommendations.Action)
		w.field("Priority", la.Recommendations.Priority)
		w.list(la.Recommendations.Suggestions)
		w.blank()

		sb := la.SectionBreakdown
		w.subsection("Sections")
		w.table([]string{"Section", "Words", "Recommended", "Status"}, [][]string{
			sectionRow("Summary", sb.Summary),
			sectionRow("Experience", sb.Experience),
			sectionRow("Education", sb.Education),
			sectionRow("Skills", sb.Skills),
		})
		w.blank()
	}

	if ds := result.DesignScore; ds != nil {
		w.section("Design")
		w.score("Overall", ds.Overall)
		w.list(ds.Notes)
		w.blank()
	}

	if ka := result.KeywordAnalysis; ka != nil {
		writeKeywords(w, ka)
	}

	return w.String()
}

func writeContentQuality(w *reportWriter, cq *types.ContentQuality) {
	w.section("Content Quality")
	w.score("Overall", cq.Overall)
	w.score("Grammar", cq.Grammar.Score)
	w.score("Impact", cq.Impact.Score)
	w.score("Clarity", cq.Clarity.Score)
	w.blank()

	if len(cq.Grammar.Issues) > 0 {
		w.subsection("Grammar Issues")
		items := make([]string, 0, len(cq.Grammar.Issues))
		for _, issue := range cq.Grammar.Issues {
			items = append(items, fmt.Sprintf("%s (x%d at %d, %q): %s",
				issue.Rule, issue.Count, issue.Position, issue.Text, issue.Suggestion))
		}
		w.list(items)
		w.blank()
	}

	if len(cq.Impact.WeakVerbs) > 0 {
		w.subsection("Weak Phrases")
		items := make([]string, 0, len(cq.Impact.WeakVerbs))
		for _, phrase := range cq.Impact.WeakVerbs {
			if alts := cq.Impact.SuggestedVerbs[phrase]; len(alts) > 0 {
				items = append(items, fmt.Sprintf("%s -> %s", phrase, strings.Join(alts, ", ")))
			} else {
				items = append(items, phrase)
			}
		}
		w.list(items)
		w.blank()
	}

	if len(cq.Impact.MissingQuantification) > 0 {
		w.subsection("Entries Without Measurable Results")
		w.list(cq.Impact.MissingQuantification)
		w.blank()
	}

	w.field("Passive Voice Markers", cq.Impact.PassiveVoiceCount)
	w.field("Average Sentence Length", cq.Clarity.AvgSentenceLength)
	w.field("Readability Grade", cq.Clarity.ReadabilityGrade)
	w.field("Jargon Level", cq.Clarity.JargonLevel)
	w.blank()
}

func sectionRow(name string, s types.SectionLength) []string {
	return []string{name, strconv.Itoa(s.Current), strconv.Itoa(s.Recommended), s.Status}
}

// KeywordTextFormatter handles text formatting for keyword analysis
type KeywordTextFormatter struct{}

func (f *KeywordTextFormatter) Format(data any) (string, error) {
	ka, ok := data.(types.KeywordAnalysis)
	if !ok {
		return "", fmt.Errorf("expected KeywordAnalysis, got %T", data)
	}
	w := &reportWriter{}
	writeKeywords(w, &ka)
	return w.String(), nil
}

func (f *KeywordTextFormatter) SupportedType() string {
	return TypeKeywordAnalysis
}

// KeywordMarkdownFormatter handles markdown formatting for keyword analysis
type KeywordMarkdownFormatter struct{}

func (f *KeywordMarkdownFormatter) Format(data any) (string, error) {
	ka, ok := data.(types.KeywordAnalysis)
	if !ok {
		return "", fmt.Errorf("expected KeywordAnalysis, got %T", data)
	}
	w := &reportWriter{markdown: true}
	writeKeywords(w, &ka)
	return w.String(), nil
}

func (f *KeywordMarkdownFormatter) SupportedType() string {
	return TypeKeywordAnalysis
}

func writeKeywords(w *reportWriter, ka *types.KeywordAnalysis) {
	w.section("Keyword Match")
	w.field("Overall Match", fmt.Sprintf("%d%%", ka.OverallMatch))
	w.blank()

	if len(ka.JobKeywords) == 0 {
		w.field("Keywords", "none found in the job description")
		w.blank()
		return
	}

	rows := make([][]string, 0, len(ka.JobKeywords))
	for _, kw := range ka.JobKeywords {
		rows = append(rows, []string{
			kw.Keyword,
			strconv.Itoa(kw.Frequency),
			kw.Importance,
			strconv.Itoa(kw.CVMatches),
			strconv.FormatFloat(kw.Density, 'f', 2, 64) + "%",
		})
	}
	w.table([]string{"Keyword", "Frequency", "Importance", "CV Matches", "Density"}, rows)
	w.blank()

	for _, group := range []struct {
		label string
		items []string
	}{
		{"Missing", ka.Missing},
		{"Underused", ka.Underused},
		{"Overused", ka.Overused},
	} {
		if len(group.items) == 0 {
			continue
		}
		items := append([]string(nil), group.items...)
		sort.Strings(items)
		w.field(group.label, strings.Join(items, ", "))
	}
	w.blank()
}
