package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	fsstore "github.com/custodia-labs/ragbench-cli/internal/adapters/driven/storage/fs"
	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragbench-cli/internal/core/services"
	"github.com/custodia-labs/ragbench-cli/internal/reports"
)

var generateCmd = &cobra.Command{
	Use:   "generate [annotations-dir]",
	Short: "Generate a balanced evaluation query set",
	Long: `Samples the stored profiles into a balanced plan and synthesizes
evaluation queries from it. The run is fully deterministic for a fixed
profile set, options and seed; the manifest records everything needed
to reproduce it.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

// generate flags.
var (
	generateOut           string
	generatePerFileType   int
	generateQueriesPerDoc int
	generateSeed          int64
	generateReplacement   bool
	generateDomain        string
	generateGrounding     bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "queries", "Query set output directory")
	generateCmd.Flags().IntVarP(&generatePerFileType, "per-file-type", "n", 5, "Sample quota per file type")
	generateCmd.Flags().IntVar(&generateQueriesPerDoc, "queries-per-doc", 1, "Queries per selected document")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "Random seed (0 uses the fixed default)")
	generateCmd.Flags().BoolVar(&generateReplacement, "replacement", true, "Allow with-replacement sampling in short buckets")
	generateCmd.Flags().StringVar(&generateDomain, "domain", "", "Evaluation domain stamped on every query (default hr)")
	generateCmd.Flags().BoolVar(&generateGrounding, "grounding", false, "Ground query topics in parsed document text")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	annotationsDir := args[0]

	configStore, err := openConfig()
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	store, err := fsstore.NewProfileStore(annotationsDir)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer store.Close()

	var registry driven.ParserRegistry
	if generateGrounding {
		registry = newParserRegistry()
	}
	service := services.NewGenerateService(store, registry)

	opts := driving.GenerateOptions{
		PerFileType:      generatePerFileType,
		QueriesPerDoc:    generateQueriesPerDoc,
		AllowReplacement: generateReplacement,
		Seed:             generateSeed,
		Domain:           generateDomain,
		Grounding:        generateGrounding,
		Mix:              loadBehaviorMix(configStore),
	}

	result, err := service.Generate(context.Background(), opts)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no profiles found in %s, run 'ragbench annotate' first", annotationsDir)
		}
		return fmt.Errorf("generate queries: %w", err)
	}

	manifest, err := reports.WriteGeneration(generateOut, result, opts)
	if err != nil {
		return fmt.Errorf("write query set: %w", err)
	}

	cmd.Printf("Generated %d queries from %d documents (seed %d).\n",
		manifest.QueryCount, manifest.SelectedDocs, manifest.Seed)
	cmd.Printf("Run %s written to %s\n", manifest.RunID, generateOut)

	if len(result.Deficits) > 0 {
		cmd.Printf("Quota deficits in %d buckets (total shortfall %d); see %s.\n",
			len(result.Deficits), manifest.TotalShortfall, reports.ManifestFile)
	}
	return nil
}

// loadBehaviorMix reads the behavior mix from config. A fully absent
// mix stays zero and the service falls back to its default.
func loadBehaviorMix(store driven.ConfigStore) driving.BehaviorMix {
	return driving.BehaviorMix{
		Answer:           store.GetFloat("generate.mix.answer"),
		Partial:          store.GetFloat("generate.mix.partial"),
		Refuse:           store.GetFloat("generate.mix.refuse"),
		AskClarification: store.GetFloat("generate.mix.ask_clarification"),
	}
}
