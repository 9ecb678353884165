package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"cvscore/internal/lexicon"
	"cvscore/internal/types"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// applyFallbacks applies environment variable fallbacks and derived values
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyAnalysisDefaults()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks reads a comma-separated key list when none is
// configured and drops blank entries from whatever list is in effect
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		c.Server.APIKeys = splitKeys(os.Getenv(EnvPrefix + "_SERVER_APIKEYS"))
		return
	}
	c.Server.APIKeys = splitKeys(strings.Join(c.Server.APIKeys, ","))
}

// splitKeys splits a comma list, trimming blanks
func splitKeys(s string) []string {
	var keys []string
	for _, key := range strings.Split(s, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// applyAnalysisDefaults normalizes the default industry and analysis types
func (c *Config) applyAnalysisDefaults() {
	if !lexicon.IsKnownIndustry(c.Analysis.DefaultIndustry) {
		if c.Analysis.DefaultIndustry != "" {
			log.Printf("[CONFIG] Unknown default industry %q, using %s", c.Analysis.DefaultIndustry, lexicon.DefaultIndustry)
		}
	}
	c.Analysis.DefaultIndustry = lexicon.ResolveIndustry(c.Analysis.DefaultIndustry)

	// A single env value such as "ats_score,design_score" arrives as one element
	if len(c.Analysis.DefaultTypes) == 1 && strings.Contains(c.Analysis.DefaultTypes[0], ",") {
		c.Analysis.DefaultTypes = splitKeys(c.Analysis.DefaultTypes[0])
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a service instance ID from the hostname
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if !lexicon.IsKnownIndustry(c.Analysis.DefaultIndustry) {
		return fmt.Errorf("unknown default industry: %s", c.Analysis.DefaultIndustry)
	}

	for _, kind := range c.Analysis.DefaultTypes {
		if !types.AnalysisKind(kind).Known() {
			return fmt.Errorf("unknown default analysis type: %s", kind)
		}
	}

	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerMin <= 0 {
		return fmt.Errorf("rate limiting requires requestsPerMin > 0")
	}

	if c.Analysis.WatchLexicon && c.Analysis.LexiconFile == "" {
		return fmt.Errorf("analysis.watchLexicon requires analysis.lexiconFile")
	}

	return c.Vault.validate()
}

// DefaultKinds returns the configured default analysis kinds
func (c *Config) DefaultKinds() []types.AnalysisKind {
	kinds := make([]types.AnalysisKind, 0, len(c.Analysis.DefaultTypes))
	for _, t := range c.Analysis.DefaultTypes {
		kinds = append(kinds, types.AnalysisKind(t))
	}
	return kinds
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		EnvPrefix + "_SERVER_APIKEYS",
		EnvPrefix + "_SERVER_PORT",
		EnvPrefix + "_SERVER_HOST",
		EnvPrefix + "_APP_LOGLEVEL",
		EnvPrefix + "_ANALYSIS_DEFAULTINDUSTRY",
		EnvPrefix + "_ANALYSIS_LEXICONFILE",
		EnvPrefix + "_VAULT_ENABLED",
		EnvPrefix + "_VAULT_TOKEN",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			lower := strings.ToLower(envVar)
			if strings.Contains(lower, "key") || strings.Contains(lower, "token") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Default Industry: %s", c.Analysis.DefaultIndustry)
	log.Printf("[CONFIG] Default Analysis Types: %s", strings.Join(c.Analysis.DefaultTypes, ","))
	if c.Analysis.LexiconFile != "" {
		log.Printf("[CONFIG] Lexicon File: %s (watch: %t)", c.Analysis.LexiconFile, c.Analysis.WatchLexicon)
	} else {
		log.Println("[CONFIG] Lexicon File: embedded")
	}
	log.Printf("[CONFIG] Server: %s:%s", c.Server.Host, c.Server.Port)
	log.Printf("[CONFIG] API Keys Configured: %d", len(c.Server.APIKeys))
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Println("[CONFIG] =====================================")
}
