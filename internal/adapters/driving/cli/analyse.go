package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	fsstore "github.com/custodia-labs/ragbench-cli/internal/adapters/driven/storage/fs"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragbench-cli/internal/core/services"
	"github.com/custodia-labs/ragbench-cli/internal/reports"
)

var analyseCmd = &cobra.Command{
	Use:   "analyse [annotations-dir]",
	Short: "Analyse annotation coverage and bucket structure",
	Long: `Reads the stored document profiles and derives the corpus view:
bucket structure, stressor distributions, coverage gaps and sampling
advice. Writes JSON and CSV artifacts plus a Markdown report.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyse,
}

// analyse flags.
var (
	analyseOut                 string
	analyseSparseThreshold     int
	analyseComplexityThreshold int
)

func init() {
	analyseCmd.Flags().StringVarP(&analyseOut, "out", "o", "", "Report output directory (default <annotations-dir>/analysis)")
	analyseCmd.Flags().IntVar(&analyseSparseThreshold, "sparse-threshold", 0, "Bucket size below which a bucket counts as sparse")
	analyseCmd.Flags().IntVar(&analyseComplexityThreshold, "complexity-threshold", 0, "Stressor count from which a document counts as high complexity")

	rootCmd.AddCommand(analyseCmd)
}

func runAnalyse(cmd *cobra.Command, args []string) error {
	annotationsDir := args[0]

	store, err := fsstore.NewProfileStore(annotationsDir)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer store.Close()

	service := services.NewAnalyseService(store)

	analysis, err := service.Analyse(context.Background(), driving.AnalyseOptions{
		SparseThreshold:     analyseSparseThreshold,
		ComplexityThreshold: analyseComplexityThreshold,
	})
	if err != nil {
		return fmt.Errorf("analyse corpus: %w", err)
	}

	outDir := analyseOut
	if outDir == "" {
		outDir = filepath.Join(annotationsDir, "analysis")
	}
	if err := reports.WriteAnalysis(outDir, analysis); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}

	cmd.Printf("Analysed %d documents across %d buckets.\n",
		analysis.TotalDocuments, len(analysis.Buckets))
	cmd.Printf("Reports written to %s\n", outDir)

	if len(analysis.Gaps.EmptyBuckets) > 0 || len(analysis.Gaps.AbsentFlags) > 0 {
		cmd.Printf("Coverage gaps: %d empty buckets, %d absent flags (see %s).\n",
			len(analysis.Gaps.EmptyBuckets), len(analysis.Gaps.AbsentFlags), reports.GapsFile)
	}
	return nil
}
