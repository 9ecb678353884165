package cli

import (
	"context"
	"fmt"

	"cvscore/internal/common"
	"cvscore/internal/config"
	"cvscore/internal/errors"
	"cvscore/internal/lexicon"

	"github.com/spf13/cobra"
)

type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "cvscore",
	Short: "Score CVs for ATS compatibility, content quality and keyword coverage",
	Long: `cvscore analyzes structured CVs with deterministic rules. It scores
ATS compatibility, checks writing quality, compares length against industry
benchmarks and matches CV keywords against a job description.

Commands work on local files; "serve" exposes the same analyses over HTTP.`,
	SilenceUsage: true,
}

// Execute runs the root command with config and logger attached to ctx
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok && cfg != nil {
		return cfg, nil
	}
	return nil, fmt.Errorf("config not found in context")
}

func getLoggerFromContext(ctx context.Context) (*errors.Logger, error) {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok && logger != nil {
		return logger, nil
	}
	return nil, fmt.Errorf("logger not found in context")
}

// loadLexiconStore builds the lexicon store from the configured file, or
// from the embedded lexicon when none is set
func loadLexiconStore(cfg *config.Config) (*lexicon.Store, error) {
	if cfg.Analysis.LexiconFile == "" {
		return lexicon.NewStore(nil, ""), nil
	}
	lex, err := lexicon.Load(cfg.Analysis.LexiconFile)
	if err != nil {
		return nil, err
	}
	return lexicon.NewStore(lex, cfg.Analysis.LexiconFile), nil
}

// prepareOutput fills in the configured output defaults and validates the format
func prepareOutput(cmd *cobra.Command, out *common.CommandConfig) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	if out.OutputFormat == "" {
		out.OutputFormat = cfg.App.DefaultFormat
	}
	out.MaxFileSize = cfg.App.MaxFileSize
	out.Stdout = cmd.OutOrStdout()
	return common.ValidateOutputFormat(out.OutputFormat, cfg.App.SupportedFormats)
}

func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return []string{}, cobra.ShellCompDirectiveError
	}
	return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(keywordsCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(lexiconCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
