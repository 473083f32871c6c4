package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragbench-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragbench-cli/internal/adapters/driven/config/file"
	fsstore "github.com/custodia-labs/ragbench-cli/internal/adapters/driven/storage/fs"
	"github.com/custodia-labs/ragbench-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragbench-cli/internal/core/services"
	"github.com/custodia-labs/ragbench-cli/internal/logger"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [corpus-dir]",
	Short: "Annotate a document corpus with structural profiles",
	Long: `Walks the corpus directory, parses every recognised document and
writes one JSON profile per document, mirroring the corpus folder
structure. Parse failures are recorded in failed_files.json and never
abort the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

// annotate flags.
var (
	annotateOut          string
	annotateWorkers      int
	annotateSkipExisting bool
	annotateSkipFailed   bool
	annotateOCR          bool
	annotateLLMLayout    bool
	annotateRateLimit    float64
)

func init() {
	annotateCmd.Flags().StringVarP(&annotateOut, "out", "o", "", "Profile output directory (default ~/.ragbench/profiles)")
	annotateCmd.Flags().IntVarP(&annotateWorkers, "workers", "w", 0, "Parallel annotation workers (default from config)")
	annotateCmd.Flags().BoolVar(&annotateSkipExisting, "skip-existing", false, "Skip documents that already have a profile")
	annotateCmd.Flags().BoolVar(&annotateSkipFailed, "skip-failed", false, "Skip paths recorded in failed_files.json")
	annotateCmd.Flags().BoolVar(&annotateOCR, "ocr", false, "Probe ambiguous images with the configured OCR backend")
	annotateCmd.Flags().BoolVar(&annotateLLMLayout, "llm-layout", false, "Confirm layout labels with the configured LLM")
	annotateCmd.Flags().Float64Var(&annotateRateLimit, "rate-limit", 0, "External calls per second (default from config)")

	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	corpusDir := args[0]

	configStore, err := openConfig()
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settings := loadSettings(configStore)

	store, err := fsstore.NewProfileStore(annotateOut)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer store.Close()

	index, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open profile index: %w", err)
	}
	defer index.Close()

	opts, err := buildAnnotateOptions(settings, index.ProfileIndex())
	if err != nil {
		return err
	}

	service := services.NewAnnotateService(newParserRegistry(), store, opts...)

	workers := annotateWorkers
	if workers <= 0 {
		workers = settings.Annotate.Workers
	}

	result, err := service.AnnotateCorpus(context.Background(), corpusDir, driving.AnnotateOptions{
		Workers:      workers,
		SkipExisting: annotateSkipExisting,
		SkipFailed:   annotateSkipFailed,
	})
	if err != nil {
		return fmt.Errorf("annotate corpus: %w", err)
	}

	cmd.Printf("Annotated %d documents (%d skipped, %d failed).\n",
		result.Annotated, result.Skipped, result.Failed)
	cmd.Printf("Profiles written to %s\n", store.Root())

	if result.Annotated == 0 && result.Failed > 0 {
		return errors.New("no documents could be annotated")
	}
	return nil
}

// buildAnnotateOptions assembles the service options from settings and
// flags. Missing or unconfigured capabilities degrade to heuristics
// with a warning rather than failing the run.
func buildAnnotateOptions(settings domain.AppSettings, index driven.ProfileIndex) ([]services.AnnotateOption, error) {
	opts := []services.AnnotateOption{services.WithIndex(index)}

	rateLimit := annotateRateLimit
	if rateLimit == 0 {
		rateLimit = settings.Annotate.RateLimit
	}
	if rateLimit > 0 {
		opts = append(opts, services.WithRateLimit(rateLimit))
	}

	timeout := time.Duration(settings.Annotate.OCRTimeoutSeconds) * time.Second

	if annotateOCR {
		ocr, err := ai.CreateOCRService(&settings.OCR)
		if err != nil {
			return nil, fmt.Errorf("configure OCR: %w", err)
		}
		if ocr == nil {
			logger.Warn("--ocr requested but no OCR backend configured, keeping heuristics")
		} else {
			logger.Info("OCR probes via %s", ocr.Name())
			opts = append(opts, services.WithOCR(ocr, timeout))
		}
	}

	if annotateLLMLayout {
		llm, err := ai.CreateLLMService(&settings.LLM)
		if err != nil {
			return nil, fmt.Errorf("configure LLM: %w", err)
		}
		if llm == nil {
			logger.Warn("--llm-layout requested but no LLM provider configured, keeping geometry")
		} else {
			if aware, ok := llm.(driven.PromptStoreAware); ok {
				if prompts, perr := file.NewPromptStore(""); perr == nil {
					aware.SetPromptStore(prompts)
				}
			}
			logger.Info("layout classification via %s", llm.ModelName())
			opts = append(opts, services.WithLLMLayout(llm, timeout))
		}
	}

	return opts, nil
}
