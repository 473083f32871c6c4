// Package cli implements the ragbench command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragbench-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragbench-cli/internal/logger"
	"github.com/custodia-labs/ragbench-cli/internal/parsers"
	"github.com/custodia-labs/ragbench-cli/internal/parsers/docx"
	"github.com/custodia-labs/ragbench-cli/internal/parsers/html"
	"github.com/custodia-labs/ragbench-cli/internal/parsers/pdf"
	"github.com/custodia-labs/ragbench-cli/internal/parsers/plaintext"
	"github.com/custodia-labs/ragbench-cli/internal/parsers/pptx"
	"github.com/custodia-labs/ragbench-cli/internal/parsers/xlsx"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "ragbench",
	Short: "Annotate document corpora and generate RAG evaluation queries",
	Long: `ragbench profiles a document corpus for retrieval stressors
(tables, images, charts, formulas, layout quirks), analyses the
coverage of the resulting annotation set, and samples it into a
balanced evaluation query set with deterministic seeds.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Configuration directory (default ~/.ragbench)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newParserRegistry builds the registry with every structural parser.
func newParserRegistry() *parsers.Registry {
	registry := parsers.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(pdf.New())
	registry.Register(docx.New())
	registry.Register(xlsx.New())
	registry.Register(pptx.New())
	registry.Register(html.New())
	return registry
}

// openConfig opens the TOML config store honouring --config.
func openConfig() (driven.ConfigStore, error) {
	return file.NewConfigStore(configDir)
}

// loadSettings materialises typed app settings from the config store.
// Missing keys keep their defaults.
func loadSettings(store driven.ConfigStore) domain.AppSettings {
	settings := domain.DefaultAppSettings()

	if provider := store.GetString("llm.provider"); provider != "" {
		settings.LLM.Provider = domain.AIProvider(provider)
	}
	if model := store.GetString("llm.model"); model != "" {
		settings.LLM.Model = model
	}
	if baseURL := store.GetString("llm.base_url"); baseURL != "" {
		settings.LLM.BaseURL = baseURL
	}
	if apiKey := store.GetString("llm.api_key"); apiKey != "" {
		settings.LLM.APIKey = apiKey
	}

	if provider := store.GetString("ocr.provider"); provider != "" {
		settings.OCR.Provider = domain.OCRProvider(provider)
	}
	if model := store.GetString("ocr.model"); model != "" {
		settings.OCR.Model = model
	}
	if baseURL := store.GetString("ocr.base_url"); baseURL != "" {
		settings.OCR.BaseURL = baseURL
	}
	if apiKey := store.GetString("ocr.api_key"); apiKey != "" {
		settings.OCR.APIKey = apiKey
	}

	if workers := store.GetInt("annotate.workers"); workers > 0 {
		settings.Annotate.Workers = workers
	}
	if limit := store.GetFloat("annotate.rate_limit"); limit > 0 {
		settings.Annotate.RateLimit = limit
	}
	if timeout := store.GetInt("annotate.ocr_timeout_seconds"); timeout > 0 {
		settings.Annotate.OCRTimeoutSeconds = timeout
	}

	return settings
}
