package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"cvscore/internal/analysis"
	"cvscore/internal/batch"
	"cvscore/internal/common"
	"cvscore/internal/errors"
	"cvscore/internal/export"
	"cvscore/internal/ingest"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch <cv.json|dir>...",
	Short: "Score and rank many CVs against one job description",
	Long: `Score every CV against a shared job description and rank them by ATS
score. Directories contribute their top-level *.json files. CVs that cannot
be read or fail validation are listed as failed entries after the ranked ones.

Use --xlsx to also write the report as an Excel workbook.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(cmd, &batchConfig)
	},
	RunE: runBatch,
}

var (
	batchConfig      common.CommandConfig
	batchJobFile     string
	batchIndustry    string
	batchTypes       []string
	batchConcurrency int
	batchXLSX        string
	batchResults     bool
)

func init() {
	batchCmd.Flags().StringVarP(&batchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	batchCmd.Flags().StringVar(&batchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	batchCmd.Flags().StringVarP(&batchJobFile, "job", "j", "", "Job description file (text or HTML)")
	batchCmd.Flags().StringVar(&batchIndustry, "industry", "", "Target industry (default from config)")
	batchCmd.Flags().StringSliceVar(&batchTypes, "types", nil, "Analysis types to run (default from config)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "Number of CVs analyzed in parallel (default from config)")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "Also write the report to this XLSX file")
	batchCmd.Flags().BoolVar(&batchResults, "include-results", false, "Embed the full analysis result of every CV")

	_ = batchCmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = batchCmd.RegisterFlagCompletionFunc("types", completeKinds)
}

// itemID names a batch item after its file, without the extension
func itemID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// loadBatchItems reads and parses every CV file. Failures are kept on the
// item so they show up in the report.
func loadBatchItems(fp *common.FileProcessor, files []string) []batch.Item {
	items := make([]batch.Item, 0, len(files))
	for _, file := range files {
		item := batch.Item{ID: itemID(file), Source: file}
		data, err := fp.ReadBytes(file)
		if err == nil {
			item.CV, err = ingest.ParseCV(data)
		}
		item.Err = err
		items = append(items, item)
	}
	return items
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}
	store, err := loadLexiconStore(cfg)
	if err != nil {
		return err
	}

	files, err := ingest.CollectCVFiles(args...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "No CV files found", nil)
	}

	fp := common.NewFileProcessor(logger).WithMaxSize(batchConfig.MaxFileSize)
	opts := batch.Options{
		Industry:       batchIndustry,
		Kinds:          kindsOrDefault(batchTypes, cfg.DefaultKinds()),
		Concurrency:    batchConcurrency,
		IncludeResults: batchResults,
	}
	if opts.Industry == "" {
		opts.Industry = cfg.Analysis.DefaultIndustry
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = cfg.Analysis.BatchConcurrency
	}
	if batchJobFile != "" {
		raw, err := fp.ReadFile(batchJobFile)
		if err != nil {
			return err
		}
		if opts.JobDescription, err = readJobDescription(batchJobFile, raw, cfg.Analysis.MaxJobDescriptionChars); err != nil {
			return err
		}
	}

	items := loadBatchItems(fp, files)
	logger.Info("Starting batch analysis",
		"cvs", len(items),
		"industry", opts.Industry,
		"concurrency", opts.Concurrency,
		"has_job_description", opts.JobDescription != "")

	report, err := batch.NewRunner(analysis.New(store.Current()), logger).Run(cmd.Context(), items, opts)
	if err != nil {
		return fmt.Errorf("batch analysis aborted: %w", err)
	}

	if batchXLSX != "" {
		path, err := export.WriteBatchReport(report, batchXLSX)
		if err != nil {
			return err
		}
		logger.Info("Batch workbook written", "path", path)
	}

	if err := common.NewOutputHandler(logger).HandleOutput(report, batchConfig); err != nil {
		return err
	}
	logger.Info("Batch analysis completed",
		"batch_id", report.BatchID,
		"count", report.Summary.Count,
		"failed", report.Summary.Failed)
	return nil
}
