package cli

import (
	"context"
	"fmt"

	"cvscore/internal/analysis"
	"cvscore/internal/common"
	"cvscore/internal/ingest"
	"cvscore/internal/types"
	"cvscore/internal/utils"

	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords <cv-file> <job-description-file>",
	Short: "Match CV keywords against a job description",
	Long: `Rank the top keywords of a job description and report how well the CV
covers each of them. A .json CV is parsed as a structured CV; any other file is
treated as plain CV text.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(cmd, &keywordsConfig)
	},
	RunE: runKeywords,
}

var keywordsConfig common.CommandConfig

func init() {
	keywordsCmd.Flags().StringVarP(&keywordsConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	keywordsCmd.Flags().StringVar(&keywordsConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = keywordsCmd.RegisterFlagCompletionFunc("format", completeFormats)
}

type keywordsInput struct {
	CVText         string
	JobDescription string
}

// cvTextFor returns the analyzable text of a CV file
func cvTextFor(filename, content string) (string, error) {
	if !utils.IsJSONFile(filename) {
		return content, nil
	}
	cv, err := ingest.ParseCV([]byte(content))
	if err != nil {
		return "", err
	}
	return analysis.ExtractAllText(cv), nil
}

func runKeywords(cmd *cobra.Command, args []string) error {
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

	createInput := func(files, contents []string) (keywordsInput, error) {
		cvText, err := cvTextFor(files[0], contents[0])
		if err != nil {
			return keywordsInput{}, err
		}
		jd, err := readJobDescription(files[1], contents[1], cfg.Analysis.MaxJobDescriptionChars)
		if err != nil {
			return keywordsInput{}, err
		}
		return keywordsInput{CVText: cvText, JobDescription: jd}, nil
	}

	logDetails := func(input keywordsInput, cfg common.CommandConfig) {
		logger.Info("Starting keyword matching",
			"cv_chars", len(input.CVText),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	matchOperation := func(ctx context.Context, input keywordsInput) (types.KeywordAnalysis, error) {
		return analysis.New(store.Current()).MatchKeywords(input.CVText, input.JobDescription), nil
	}

	if err := common.RunFileCommand(cmd.Context(), logger, keywordsConfig, args, createInput, matchOperation, logDetails); err != nil {
		return fmt.Errorf("failed to match keywords: %w", err)
	}
	logger.Info("Keyword matching completed successfully")
	return nil
}
