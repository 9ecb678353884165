// Package export writes batch reports as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cvscore/internal/errors"
	"cvscore/internal/types"

	"github.com/xuri/excelize/v2"
)

// Sheet names
const (
	SummarySheet  = "Summary"
	RankingSheet  = "Ranking"
	KeywordsSheet = "Job Keywords"
)

// ContentType is the MIME type of XLSX workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var rankingHeaders = []string{
	"Rank", "ID", "Name", "Source", "ATS Score", "Pass Rate",
	"Content Quality", "Length Score", "Keyword Match", "Error",
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// WriteBatchReport saves report as an XLSX workbook at path and returns the
// final path. The .xlsx extension is added when missing.
func WriteBatchReport(report *types.BatchReport, path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := buildWorkbook(report)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return "", errors.NewIOError(errors.ErrCodeExportFailed,
			fmt.Sprintf("Failed to save workbook: %s", path), err)
	}
	return path, nil
}

// WriteBatchReportTo streams report as an XLSX workbook to w
func WriteBatchReportTo(w io.Writer, report *types.BatchReport) error {
	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return errors.NewIOError(errors.ErrCodeExportFailed, "Failed to write workbook", err)
	}
	return nil
}

func buildWorkbook(report *types.BatchReport) (*excelize.File, error) {
	if report == nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "No batch report to export", nil)
	}

	f := excelize.NewFile()
	steps := []struct {
		name string
		fn   func(*excelize.File, *types.BatchReport) error
	}{
		{SummarySheet, writeSummarySheet},
		{RankingSheet, writeRankingSheet},
		{KeywordsSheet, writeKeywordsSheet},
	}

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		_ = f.Close()
		return nil, errors.NewInternalError(errors.ErrCodeExportFailed, "Failed to prepare workbook", err)
	}
	for _, step := range steps[1:] {
		if _, err := f.NewSheet(step.name); err != nil {
			_ = f.Close()
			return nil, errors.NewInternalError(errors.ErrCodeExportFailed,
				fmt.Sprintf("Failed to create sheet %s", step.name), err)
		}
	}

	for _, step := range steps {
		if err := step.fn(f, report); err != nil {
			_ = f.Close()
			return nil, errors.NewInternalError(errors.ErrCodeExportFailed,
				fmt.Sprintf("Failed to write sheet %s", step.name), err)
		}
	}
	return f, nil
}

func writeSummarySheet(f *excelize.File, report *types.BatchReport) error {
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][]any{
		{"Batch ID", report.BatchID},
		{"Industry", report.Industry},
		{"Generated At", report.GeneratedAt.Format(time.RFC3339)},
		{"CVs", report.Summary.Count},
		{"Failed", report.Summary.Failed},
		{"Average ATS Score", report.Summary.AverageATS},
		{"High Pass Rate", report.Summary.High},
		{"Medium Pass Rate", report.Summary.Medium},
		{"Low Pass Rate", report.Summary.Low},
	}

	for i, row := range rows {
		r := i + 1
		if err := setRow(f, SummarySheet, r, row); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, cell(1, r), cell(1, r), labelStyle); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "B", 24)
}

func writeRankingSheet(f *excelize.File, report *types.BatchReport) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	passRateStyles := make(map[string]int)
	for rate, color := range map[string]string{
		types.PassRateHigh:   "C6EFCE",
		types.PassRateMedium: "FFEB9C",
		types.PassRateLow:    "FFC7CE",
		"":                   "D9D9D9",
	} {
		style, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return err
		}
		passRateStyles[rate] = style
	}

	header := make([]any, len(rankingHeaders))
	for i, h := range rankingHeaders {
		header[i] = h
	}
	if err := setRow(f, RankingSheet, 1, header); err != nil {
		return err
	}
	last := len(rankingHeaders)
	if err := f.SetCellStyle(RankingSheet, cell(1, 1), cell(last, 1), headerStyle); err != nil {
		return err
	}

	for i, e := range report.Entries {
		r := i + 2
		row := []any{e.Rank, e.ID, e.Name, e.Source, e.ATSOverall, e.PassRate,
			e.ContentOverall, e.LengthScore, e.KeywordMatch, e.Error}
		if e.Error != "" {
			row = []any{"-", e.ID, e.Name, e.Source, "", "", "", "", "", e.Error}
		}
		if err := setRow(f, RankingSheet, r, row); err != nil {
			return err
		}

		style := passRateStyles[""]
		if e.Error == "" {
			if s, ok := passRateStyles[e.PassRate]; ok {
				style = s
			}
		}
		if err := f.SetCellStyle(RankingSheet, cell(1, r), cell(last, r), style); err != nil {
			return err
		}
	}

	widths := []float64{8, 16, 24, 28, 12, 12, 16, 14, 16, 40}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(RankingSheet, col, col, w); err != nil {
			return err
		}
	}
	return f.SetPanes(RankingSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeKeywordsSheet(f *excelize.File, report *types.BatchReport) error {
	if err := setRow(f, KeywordsSheet, 1, []any{"Keyword", "Frequency", "Importance"}); err != nil {
		return err
	}
	for i, kw := range report.JobKeywords {
		if err := setRow(f, KeywordsSheet, i+2, []any{kw.Keyword, kw.Frequency, kw.Importance}); err != nil {
			return err
		}
	}
	return f.SetColWidth(KeywordsSheet, "A", "C", 18)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	return f.SetSheetRow(sheet, cell(1, row), &values)
}

func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		// col and row are always positive here
		panic(err)
	}
	return name
}
