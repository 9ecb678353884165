package cli

import (
	"context"
	"fmt"
	"time"

	"cvscore/internal/analysis"
	"cvscore/internal/common"
	"cvscore/internal/errors"
	"cvscore/internal/ingest"
	"cvscore/internal/types"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <cv.json> [job-description-file]",
	Short: "Analyze a CV for ATS compatibility and writing quality",
	Long: `Analyze a structured CV (JSON) and report the requested analyses:

- ats_score: formatting, keywords, structure and readability
- content_quality: grammar, clarity, impact and weak language
- length_analysis: word counts against industry benchmarks
- design_score: fixed visual design placeholder

When a job description file is given, keyword coverage is reported as well.
HTML job descriptions are detected by extension or content.`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(cmd, &analyzeConfig)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig   common.CommandConfig
	analyzeIndustry string
	analyzeTypes    []string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVar(&analyzeIndustry, "industry", "", "Target industry (default from config)")
	analyzeCmd.Flags().StringSliceVar(&analyzeTypes, "types", nil, "Analysis types to run (default from config)")

	_ = analyzeCmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = analyzeCmd.RegisterFlagCompletionFunc("types", completeKinds)
}

func completeKinds(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	kinds := make([]string, 0, len(types.AllKinds))
	for _, k := range types.AllKinds {
		kinds = append(kinds, string(k))
	}
	return kinds, cobra.ShellCompDirectiveNoFileComp
}

// kindsOrDefault turns the --types flag into analysis kinds, falling back to
// the configured defaults
func kindsOrDefault(flagTypes []string, defaults []types.AnalysisKind) []types.AnalysisKind {
	if len(flagTypes) == 0 {
		return defaults
	}
	kinds := make([]types.AnalysisKind, 0, len(flagTypes))
	for _, t := range flagTypes {
		kinds = append(kinds, types.AnalysisKind(t))
	}
	return kinds
}

// readJobDescription normalizes a job description file, detecting HTML
func readJobDescription(filename, content string, maxChars int) (string, error) {
	return ingest.NormalizeJobDescription(content, ingest.DetectFormat(filename, content), maxChars)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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
	analyzer := analysis.New(store.Current())

	createInput := func(files, contents []string) (types.AnalysisRequest, error) {
		cv, err := ingest.ParseCV([]byte(contents[0]))
		if err != nil {
			return types.AnalysisRequest{}, err
		}
		req := types.AnalysisRequest{
			CV:             cv,
			TargetIndustry: analyzeIndustry,
			AnalysisTypes:  kindsOrDefault(analyzeTypes, cfg.DefaultKinds()),
		}
		if req.TargetIndustry == "" {
			req.TargetIndustry = cfg.Analysis.DefaultIndustry
		}
		if len(files) > 1 {
			jd, err := readJobDescription(files[1], contents[1], cfg.Analysis.MaxJobDescriptionChars)
			if err != nil {
				return types.AnalysisRequest{}, err
			}
			req.JobDescription = jd
		}
		if err := req.Validate(); err != nil {
			return types.AnalysisRequest{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				"Invalid analysis request", err)
		}
		return req, nil
	}

	logDetails := func(req types.AnalysisRequest, cfg common.CommandConfig) {
		logger.Info("Starting CV analysis",
			"cv", args[0],
			"industry", req.TargetIndustry,
			"types", req.AnalysisTypes,
			"has_job_description", req.HasJobDescription(),
			"output_format", cfg.OutputFormat)
	}

	analyzeOperation := func(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
		result := analyzer.AnalyzeCV(req)
		now := time.Now().UTC()
		result.AnalysisID = uuid.NewString()
		result.AnalyzedAt = &now
		if !result.Success {
			return nil, errors.NewAnalysisError(errors.ErrCodeAnalysisFailed, result.Error, nil)
		}
		return result, nil
	}

	err = common.RunFileCommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args,
		createInput,
		analyzeOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to analyze CV: %w", err)
	}
	logger.Info("CV analysis completed successfully")
	return nil
}
