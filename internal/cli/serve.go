package cli

import (
	"fmt"

	"cvscore/internal/config"
	"cvscore/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis server",
	Long: `Start an HTTP server that exposes the analyses as a JSON API.

Available endpoints:
- POST /analyze: Run the requested analyses on a CV
- POST /keywords: Match CV keywords against a job description
- POST /batch: Score and rank many CVs (JSON or XLSX response)
- GET /health: Health check with lexicon and Vault status
- GET /stats: Server limits and rate limiting info

Flags override the matching configuration values.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// serveFlags maps configuration keys to the serve flags that override them
var serveFlags = map[string]string{
	"server.port":           "port",
	"server.host":           "host",
	"analysis.lexiconFile":  "lexicon-file",
	"analysis.watchLexicon": "watch-lexicon",
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("lexicon-file", "", "Lexicon YAML file (default: embedded lexicon)")
	serveCmd.Flags().Bool("watch-lexicon", false, "Reload the lexicon file when it changes")
}

// applyServeFlags copies explicitly set flags over the loaded configuration
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	v := viper.New()
	for key, flag := range serveFlags {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = v.GetString("server.port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = v.GetString("server.host")
	}
	if cmd.Flags().Changed("lexicon-file") {
		cfg.Analysis.LexiconFile = v.GetString("analysis.lexiconFile")
	}
	if cmd.Flags().Changed("watch-lexicon") {
		cfg.Analysis.WatchLexicon = v.GetBool("analysis.watchLexicon")
	}
	return cfg.Validate()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	if err := applyServeFlags(cmd, cfg); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	store, err := loadLexiconStore(cfg)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg, server.ServerConfigFrom(cfg, Version), store, logger)
	return srv.Start(cmd.Context())
}
