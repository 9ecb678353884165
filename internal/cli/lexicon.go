package cli

import (
	"fmt"
	"io"
	"sort"

	"cvscore/internal/common"
	"cvscore/internal/lexicon"

	"github.com/spf13/cobra"
)

var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Inspect and validate analysis lexicons",
	Long: `The lexicon holds the word lists and benchmarks used by every analysis:
stop words, weak phrases, passive voice markers, industry terms and length
benchmarks. Dump the embedded lexicon as a starting point for a custom one,
then point analysis.lexiconFile at it.`,
}

var lexiconDumpOutput string

var lexiconDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the embedded lexicon as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := getLoggerFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if lexiconDumpOutput == "" {
			_, err := cmd.OutOrStdout().Write(lexicon.DefaultYAML())
			return err
		}
		fp := common.NewFileProcessor(logger)
		if err := fp.ValidateOutputFile(lexiconDumpOutput); err != nil {
			return err
		}
		if err := fp.WriteFile(lexiconDumpOutput, string(lexicon.DefaultYAML())); err != nil {
			return err
		}
		logger.Info("Lexicon written", "file", lexiconDumpOutput)
		return nil
	},
}

var lexiconValidateCmd = &cobra.Command{
	Use:   "validate <lexicon.yaml>",
	Short: "Check a lexicon file and print a summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lex, err := lexicon.Load(args[0])
		if err != nil {
			return fmt.Errorf("lexicon %s is invalid: %w", args[0], err)
		}
		writeLexiconSummary(cmd.OutOrStdout(), args[0], lex)
		return nil
	},
}

func writeLexiconSummary(w io.Writer, file string, lex *lexicon.Lexicon) {
	fmt.Fprintf(w, "Lexicon %s is valid\n", file)
	fmt.Fprintf(w, "  Version:          %s\n", lex.Version)
	fmt.Fprintf(w, "  Stop words:       %d\n", len(lex.StopWords))
	fmt.Fprintf(w, "  Weak phrases:     %d\n", len(lex.WeakPhrases))
	fmt.Fprintf(w, "  Passive markers:  %d\n", len(lex.PassiveMarkers))

	industries := make([]string, 0, len(lex.IndustryTerms))
	for industry := range lex.IndustryTerms {
		industries = append(industries, industry)
	}
	sort.Strings(industries)
	for _, industry := range industries {
		b := lex.BenchmarkFor(industry)
		fmt.Fprintf(w, "  %-17s %d terms, %d-%d words (ideal %d)\n",
			industry+":", len(lex.IndustryTerms[industry]), b.Min, b.Max, b.Ideal)
	}
}

func init() {
	lexiconDumpCmd.Flags().StringVarP(&lexiconDumpOutput, "output", "o", "", "Output file path (default: stdout)")

	lexiconCmd.AddCommand(lexiconDumpCmd)
	lexiconCmd.AddCommand(lexiconValidateCmd)
}
