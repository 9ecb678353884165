package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cvscore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *types.BatchReport {
	return &types.BatchReport{
		BatchID:     "3f1c2b9e-0000-4000-8000-000000000001",
		Industry:    types.IndustryTechnology,
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		JobKeywords: []types.KeywordEntry{
			{Keyword: "kubernetes", Frequency: 4, Importance: types.ImportanceCritical},
			{Keyword: "cloud", Frequency: 2, Importance: types.ImportanceImportant},
		},
		Entries: []types.BatchEntry{
			{ID: "alex", Name: "Alex Smith", Source: "alex.json", Rank: 1, ATSOverall: 88, PassRate: types.PassRateHigh, ContentOverall: 91, LengthScore: 100, KeywordMatch: 75},
			{ID: "sam", Name: "Sam", Source: "sam.json", Rank: 2, ATSOverall: 52, PassRate: types.PassRateLow, ContentOverall: 67, LengthScore: 60},
			{ID: "broken", Source: "broken.json", Error: "CV does not match schema"},
		},
		Summary: types.BatchSummary{Count: 3, Failed: 1, AverageATS: 70, High: 1, Low: 1},
	}
}

func TestWriteBatchReport(t *testing.T) {
	path, err := WriteBatchReport(sampleReport(), filepath.Join(t.TempDir(), "report"))
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SummarySheet, RankingSheet, KeywordsSheet}, f.GetSheetList())

	batchID, err := f.GetCellValue(SummarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "3f1c2b9e-0000-4000-8000-000000000001", batchID)

	rows, err := f.GetRows(RankingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, []string{"1", "alex", "Alex Smith", "alex.json", "88", "High", "91", "100", "75"}, rows[1][:9])
	assert.Equal(t, "-", rows[3][0])
	assert.Equal(t, "CV does not match schema", rows[3][9])

	keyword, err := f.GetCellValue(KeywordsSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "kubernetes", keyword)
}

func TestWriteBatchReportKeepsExtension(t *testing.T) {
	target := filepath.Join(t.TempDir(), "ranking.XLSX")
	path, err := WriteBatchReport(sampleReport(), target)
	require.NoError(t, err)
	assert.Equal(t, target, path)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteBatchReportTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBatchReportTo(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	name, err := f.GetCellValue(RankingSheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, "Sam", name)
}

func TestWriteBatchReportRejectsNil(t *testing.T) {
	_, err := WriteBatchReport(nil, filepath.Join(t.TempDir(), "nil.xlsx"))
	assert.Error(t, err)
}
