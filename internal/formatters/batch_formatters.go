package formatters

import (
	"fmt"
	"strconv"
	"time"

	"cvscore/internal/types"
)

// BatchTextFormatter handles text formatting for batch reports
type BatchTextFormatter struct{}

func (f *BatchTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.BatchReport)
	if !ok {
		return "", fmt.Errorf("expected BatchReport, got %T", data)
	}
	return renderBatch(report, false), nil
}

func (f *BatchTextFormatter) SupportedType() string {
	return TypeBatchReport
}

// BatchMarkdownFormatter handles markdown formatting for batch reports
type BatchMarkdownFormatter struct{}

func (f *BatchMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.BatchReport)
	if !ok {
		return "", fmt.Errorf("expected BatchReport, got %T", data)
	}
	return renderBatch(report, true), nil
}

func (f *BatchMarkdownFormatter) SupportedType() string {
	return TypeBatchReport
}

func renderBatch(report types.BatchReport, markdown bool) string {
	w := &reportWriter{markdown: markdown}
	w.title("Batch Ranking")

	w.field("Batch ID", report.BatchID)
	w.field("Industry", report.Industry)
	w.field("Generated At", report.GeneratedAt.Format(time.RFC3339))
	w.field("CVs", report.Summary.Count)
	w.field("Failed", report.Summary.Failed)
	w.field("Average ATS Score", fmt.Sprintf("%.1f", report.Summary.AverageATS))
	w.field("Pass Rates", fmt.Sprintf("High %d, Medium %d, Low %d",
		report.Summary.High, report.Summary.Medium, report.Summary.Low))
	w.blank()

	w.section("Ranking")
	rows := make([][]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		if e.Error != "" {
			rows = append(rows, []string{"-", e.ID, e.Name, "", "", "", "", "", "error: " + e.Error})
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			e.ID,
			e.Name,
			strconv.Itoa(e.ATSOverall),
			e.PassRate,
			strconv.Itoa(e.ContentOverall),
			strconv.Itoa(e.LengthScore),
			strconv.Itoa(e.KeywordMatch) + "%",
			"",
		})
	}
	w.table([]string{"Rank", "ID", "Name", "ATS", "Pass Rate", "Content", "Length", "Keywords", "Notes"}, rows)
	w.blank()

	if len(report.JobKeywords) > 0 {
		w.section("Job Keywords")
		items := make([]string, 0, len(report.JobKeywords))
		for _, kw := range report.JobKeywords {
			items = append(items, fmt.Sprintf("%s (%d, %s)", kw.Keyword, kw.Frequency, kw.Importance))
		}
		w.list(items)
		w.blank()
	}

	return w.String()
}
