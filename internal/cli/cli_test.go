package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cvscore/internal/common"
	"cvscore/internal/config"
	"cvscore/internal/errors"
	"cvscore/internal/lexicon"
	"cvscore/internal/types"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCV = `{
  "personalInfo": {"name": "Jane Doe", "email": "jane@example.com",
    "summary": "Backend engineer building scalable cloud services with Go and Kubernetes."},
  "experience": [
    {"title": "Senior Engineer", "company": "Acme", "current": true,
     "description": "Led migration of twelve services to Kubernetes. Reduced latency by 35% for 2M users."}
  ],
  "education": [{"degree": "BSc Computer Science", "institution": "State University"}],
  "skills": ["Go", "Kubernetes", "PostgreSQL"]
}`

const testJob = "Kubernetes engineer wanted. Kubernetes, Terraform and PostgreSQL experience required."

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Analysis.DefaultIndustry = types.IndustryTechnology
	cfg.Analysis.DefaultTypes = []string{"ats_score", "content_quality", "length_analysis"}
	cfg.Analysis.BatchConcurrency = 2
	cfg.Analysis.MaxJobDescriptionChars = 50000
	cfg.App.DefaultFormat = "json"
	cfg.App.SupportedFormats = []string{"json", "text", "markdown"}
	return cfg
}

// resetFlags clears flag state left behind by earlier executions
func resetFlags() {
	analyzeConfig = common.CommandConfig{}
	analyzeIndustry, analyzeTypes = "", nil
	keywordsConfig = common.CommandConfig{}
	batchConfig = common.CommandConfig{}
	batchJobFile, batchIndustry, batchXLSX = "", "", ""
	batchTypes, batchConcurrency, batchResults = nil, 0, false
	lexiconDumpOutput = ""
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	logger, err := errors.New("error")
	require.NoError(t, err)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err = Execute(context.Background(), cfg, logger)
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	cv := writeFile(t, dir, "jane.json", testCV)
	job := writeFile(t, dir, "job.html", "<html><body><p>"+testJob+"</p></body></html>")
	out := filepath.Join(dir, "result.json")

	_, err := run(t, testConfig(), "analyze", cv, job, "--types", "ats_score,design_score", "--industry", "Finance", "-o", out)
	require.NoError(t, err)

	var result types.AnalysisResult
	readJSON(t, out, &result)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.AnalysisID)
	assert.NotNil(t, result.AnalyzedAt)
	assert.Equal(t, types.IndustryFinance, result.Industry)
	assert.NotNil(t, result.ATSScore)
	assert.NotNil(t, result.DesignScore)
	assert.Nil(t, result.ContentQuality)
	require.NotNil(t, result.KeywordAnalysis)
	assert.NotEmpty(t, result.KeywordAnalysis.JobKeywords)
}

func TestAnalyzeCommandUsesConfiguredDefaults(t *testing.T) {
	dir := t.TempDir()
	cv := writeFile(t, dir, "jane.json", testCV)
	out := filepath.Join(dir, "result.json")

	_, err := run(t, testConfig(), "analyze", cv, "-o", out)
	require.NoError(t, err)

	var result types.AnalysisResult
	readJSON(t, out, &result)
	assert.Equal(t, types.IndustryTechnology, result.Industry)
	assert.NotNil(t, result.ATSScore)
	assert.NotNil(t, result.ContentQuality)
	assert.NotNil(t, result.LengthAnalysis)
	assert.Nil(t, result.KeywordAnalysis)
}

func TestAnalyzeCommandRejectsInvalidInput(t *testing.T) {
	dir := t.TempDir()

	t.Run("schema violation", func(t *testing.T) {
		cv := writeFile(t, dir, "bad.json", `{"skills": "Go"}`)
		_, err := run(t, testConfig(), "analyze", cv)
		require.Error(t, err)
		assert.Contains(t, err.Error(), errors.ErrCodeSchemaViolation)
	})

	t.Run("unsupported format", func(t *testing.T) {
		cv := writeFile(t, dir, "jane.json", testCV)
		_, err := run(t, testConfig(), "analyze", cv, "--format", "pdf")
		assert.Error(t, err)
	})

	t.Run("file over the size limit", func(t *testing.T) {
		cfg := testConfig()
		cfg.App.MaxFileSize = 16
		cv := writeFile(t, dir, "large.json", testCV)
		_, err := run(t, cfg, "analyze", cv)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeFileTooLarge, errors.CodeOf(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, testConfig(), "analyze", filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})
}

func TestAnalyzeCommandWritesToStdout(t *testing.T) {
	cv := writeFile(t, t.TempDir(), "jane.json", testCV)

	out, err := run(t, testConfig(), "analyze", cv, "--format", "markdown", "--types", "length_analysis")
	require.NoError(t, err)
	assert.Contains(t, out, "#")
	assert.Contains(t, out, "technology")
}

func TestKeywordsCommand(t *testing.T) {
	dir := t.TempDir()
	job := writeFile(t, dir, "job.txt", testJob)

	tests := []struct {
		name string
		file string
		body string
	}{
		{name: "structured cv", file: "jane.json", body: testCV},
		{name: "plain text cv", file: "jane.txt", body: "Engineer with Kubernetes and PostgreSQL experience."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := writeFile(t, dir, tt.file, tt.body)
			out := filepath.Join(dir, tt.name+".json")

			_, err := run(t, testConfig(), "keywords", cv, job, "-o", out)
			require.NoError(t, err)

			var result types.KeywordAnalysis
			readJSON(t, out, &result)
			assert.NotEmpty(t, result.JobKeywords)
			assert.Contains(t, result.Missing, "terraform")
			assert.Greater(t, result.OverallMatch, 0)
		})
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	cvDir := filepath.Join(dir, "cvs")
	require.NoError(t, os.Mkdir(cvDir, 0750))
	writeFile(t, cvDir, "jane.json", testCV)
	writeFile(t, cvDir, "broken.json", `{"personalInfo": `)
	job := writeFile(t, dir, "job.txt", testJob)
	out := filepath.Join(dir, "report.json")
	xlsx := filepath.Join(dir, "report")

	_, err := run(t, testConfig(), "batch", cvDir, "--job", job, "--xlsx", xlsx, "-o", out)
	require.NoError(t, err)

	var report types.BatchReport
	readJSON(t, out, &report)
	require.Len(t, report.Entries, 2)
	assert.Equal(t, "jane", report.Entries[0].ID)
	assert.Equal(t, 1, report.Entries[0].Rank)
	assert.Equal(t, "broken", report.Entries[1].ID)
	assert.NotEmpty(t, report.Entries[1].Error)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.FileExists(t, xlsx+".xlsx")
}

func TestBatchCommandWithoutCVs(t *testing.T) {
	_, err := run(t, testConfig(), "batch", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No CV files found")
}

func TestLexiconCommands(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lexicon.yaml")

	_, err := run(t, testConfig(), "lexicon", "dump", "-o", file)
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, lexicon.DefaultYAML(), data)

	out, err := run(t, testConfig(), "lexicon", "validate", file)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, types.IndustryHealthcare+":")

	bad := writeFile(t, dir, "bad.yaml", "version: [")
	_, err = run(t, testConfig(), "lexicon", "validate", bad)
	assert.ErrorContains(t, err, "is invalid")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, testConfig(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cvscore version "+Version)
}

func TestApplyServeFlags(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "serve"}
		cmd.Flags().StringP("port", "p", "", "")
		cmd.Flags().String("host", "", "")
		cmd.Flags().String("lexicon-file", "", "")
		cmd.Flags().Bool("watch-lexicon", false, "")
		return cmd
	}

	t.Run("explicit flags override config", func(t *testing.T) {
		cfg := validServeConfig(t)
		cmd := newCmd()
		require.NoError(t, cmd.Flags().Parse([]string{"--port", "9090", "--host", "127.0.0.1"}))

		require.NoError(t, applyServeFlags(cmd, cfg))
		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	})

	t.Run("unset flags keep config", func(t *testing.T) {
		cfg := validServeConfig(t)
		require.NoError(t, applyServeFlags(newCmd(), cfg))
		assert.Equal(t, "8080", cfg.Server.Port)
	})

	t.Run("watch without file is rejected", func(t *testing.T) {
		cfg := validServeConfig(t)
		cmd := newCmd()
		require.NoError(t, cmd.Flags().Parse([]string{"--watch-lexicon"}))
		assert.ErrorContains(t, applyServeFlags(cmd, cfg), "watchLexicon requires")
	})
}

func validServeConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	return cfg
}

func TestLoadLexiconStore(t *testing.T) {
	cfg := testConfig()
	store, err := loadLexiconStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, "embedded", store.Status()["source"])

	cfg.Analysis.LexiconFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = loadLexiconStore(cfg)
	assert.Error(t, err)
}

func TestItemID(t *testing.T) {
	assert.Equal(t, "jane", itemID("/tmp/cvs/jane.json"))
	assert.Equal(t, "cv.v2", itemID("cv.v2.json"))
}

func TestKindsOrDefault(t *testing.T) {
	defaults := []types.AnalysisKind{types.KindATSScore}
	assert.Equal(t, defaults, kindsOrDefault(nil, defaults))
	assert.Equal(t, []types.AnalysisKind{types.KindDesignScore}, kindsOrDefault([]string{"design_score"}, defaults))
}
