// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/infobot-reborn/internal/kb"
	"github.com/pdiddy/infobot-reborn/internal/legacy"
	"github.com/pdiddy/infobot-reborn/pkg/types"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import legacy Infobot factoid files into the knowledge base",
	Long: `Import reads legacy botname-is.txt / botname-are.txt exports from a
source directory, scores each candidate factoid with a fixed quality
heuristic, and persists candidates that clear the quality threshold.
The final report includes a score histogram, percentiles, random sample
previews, and threshold tuning guidance.

Reservoir sampling is tuned through LEGACY_IMPORT_SAMPLE_CAP (default
20) and LEGACY_IMPORT_RNG_SEED (default 1337); the fixed seed makes
repeated runs over the same corpus produce identical sample reports.`,
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	sourceDir, _ := cmd.Flags().GetString("source")
	databasePath, _ := cmd.Flags().GetString("database")
	botname, _ := cmd.Flags().GetString("botname")
	threshold, _ := cmd.Flags().GetFloat64("quality-threshold")
	verbose, _ := cmd.Flags().GetBool("verbose")

	logger := newImportLogger(verbose)

	// All validation happens before any file or database is opened.
	if err := legacy.ValidateQualityThreshold(threshold); err != nil {
		return err
	}
	sampleCap, err := legacy.ResolveSampleCap()
	if err != nil {
		return err
	}
	rngSeed, err := legacy.ResolveRNGSeed()
	if err != nil {
		return err
	}

	store, err := kb.NewStore(types.KnowledgeBaseConfig{DatabasePath: databasePath})
	if err != nil {
		return err
	}
	defer store.Close()

	importer, err := legacy.NewImporter(store, isDuplicate, types.ImportConfig{
		SourceDir:        sourceDir,
		Botname:          botname,
		QualityThreshold: threshold,
		SampleCap:        sampleCap,
		RNGSeed:          rngSeed,
	}, legacy.WithLogger(logger))
	if err != nil {
		return err
	}

	stats, err := importer.ImportCorpus(context.Background())
	if err != nil {
		return err
	}

	lines, err := legacy.RenderImportSummary(stats, threshold, legacy.DefaultGuidanceMinSampleSize)
	if err != nil {
		return err
	}

	fmt.Println()
	for _, line := range lines {
		fmt.Println(line)
	}

	if stats.Imported > 0 {
		fmt.Printf("\n✓ Import complete! %d factoids imported.\n", stats.Imported)
	} else {
		fmt.Println("\n✗ No factoids were imported.")
	}
	return nil
}

// isDuplicate adapts the store's sentinel for the importer's outcome
// classification.
func isDuplicate(err error) bool {
	return errors.Is(err, kb.ErrFactoidExists)
}

// newImportLogger builds a logger scoped to this invocation. Each call
// constructs a fresh handler and never touches slog's process-wide
// default, so repeated invocations cannot stack handlers.
func newImportLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func init() {
	importCmd.Flags().String("source", "", "directory containing legacy factoid files")
	importCmd.Flags().String("database", defaultDatabasePath, "path to SQLite database")
	importCmd.Flags().String("botname", "", "bot name to look for (e.g. 'infobot'); auto-detect when omitted")
	importCmd.Flags().Float64("quality-threshold", legacy.DefaultQualityThreshold, "minimum quality score to import (0.0-1.0)")
	importCmd.Flags().BoolP("verbose", "v", false, "enable verbose logging")
	_ = importCmd.MarkFlagRequired("source")

	rootCmd.AddCommand(importCmd)
}
