// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package legacy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/infobot-reborn/pkg/types"
)

// maxLineBytes bounds a single factoid line; legacy exports occasionally
// carry multi-kilobyte values.
const maxLineBytes = 1 << 20

// FactoidCreator persists accepted candidates. kb.Store satisfies it;
// Create must fail with kb.ErrFactoidExists (via errors.Is) when the
// (key, type) pair is already present.
type FactoidCreator interface {
	Create(ctx context.Context, f types.Factoid) (types.Factoid, error)
}

// DuplicateChecker distinguishes the expected "already exists" outcome
// from genuine persistence errors.
type DuplicateChecker func(error) bool

// Importer drives the per-line import state machine over one or more
// legacy factoid files. Lines are processed strictly sequentially:
// the reservoir-sampling invariant depends on a monotonically increasing
// population counter, and duplicate detection depends on observing prior
// commits, so there is exactly one writer and no locking.
type Importer struct {
	store       FactoidCreator
	isDuplicate DuplicateChecker
	cfg         types.ImportConfig
	logger      *slog.Logger
	rng         *rand.Rand
	clock       func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger. Default discards all records.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) {
		if logger != nil {
			im.logger = logger
		}
	}
}

// WithRNG overrides the reservoir-sampling RNG (seeded from cfg.RNGSeed
// by default).
func WithRNG(rng *rand.Rand) Option {
	return func(im *Importer) {
		if rng != nil {
			im.rng = rng
		}
	}
}

// WithClock overrides the monotonic clock used for diagnostic cadence.
// Tests inject a fake clock to exercise time-based emission without
// real sleeps.
func WithClock(clock func() time.Time) Option {
	return func(im *Importer) {
		if clock != nil {
			im.clock = clock
		}
	}
}

// NewImporter validates the configuration and builds an importer.
// Validation failures surface before any file is opened.
func NewImporter(store FactoidCreator, isDuplicate DuplicateChecker, cfg types.ImportConfig, opts ...Option) (*Importer, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if isDuplicate == nil {
		return nil, fmt.Errorf("duplicate checker is required")
	}
	if err := ValidateQualityThreshold(cfg.QualityThreshold); err != nil {
		return nil, err
	}
	if cfg.SampleCap < 0 {
		return nil, fmt.Errorf("sample cap must be >= 0 (got %d)", cfg.SampleCap)
	}
	if cfg.DiagnosticParsedInterval == 0 {
		cfg.DiagnosticParsedInterval = DefaultDiagnosticParsedInterval
	}
	if cfg.DiagnosticInterval == 0 {
		cfg.DiagnosticInterval = DefaultDiagnosticInterval
	}
	if err := validateDiagnosticCadence(cfg.DiagnosticParsedInterval, cfg.DiagnosticInterval); err != nil {
		return nil, err
	}

	im := &Importer{
		store:       store,
		isDuplicate: isDuplicate,
		cfg:         cfg,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		rng:         NewQualityRNG(cfg.RNGSeed),
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im, nil
}

// ImportCorpus discovers the corpus files in cfg.SourceDir and imports
// them one after another into a shared ImportStats, so the final report
// and guidance reflect the whole corpus. A file-level failure aborts
// that file only; sibling files still run.
func (im *Importer) ImportCorpus(ctx context.Context) (*ImportStats, error) {
	im.logger.Info("starting legacy import",
		"source", im.cfg.SourceDir,
		"threshold", im.cfg.QualityThreshold,
		"sample_cap", im.cfg.SampleCap,
		"rng_seed", im.cfg.RNGSeed)

	files, err := im.discoverFiles()
	if err != nil {
		return nil, err
	}

	stats := &ImportStats{}
	for _, cf := range files {
		im.ImportFile(ctx, cf.path, cf.ftype, stats)
	}
	stats.RefreshQualityPercentiles()
	return stats, nil
}

type corpusFile struct {
	path  string
	ftype types.FactoidType
}

// discoverFiles locates the is/are export files. With a botname the
// names are exact; otherwise the first match per glob is used and
// logged.
func (im *Importer) discoverFiles() ([]corpusFile, error) {
	var files []corpusFile

	if im.cfg.Botname != "" {
		for _, cf := range []corpusFile{
			{filepath.Join(im.cfg.SourceDir, im.cfg.Botname+"-is.txt"), types.FactoidIs},
			{filepath.Join(im.cfg.SourceDir, im.cfg.Botname+"-are.txt"), types.FactoidAre},
		} {
			if _, err := os.Stat(cf.path); err == nil {
				files = append(files, cf)
			}
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no factoid files for botname %q in %s", im.cfg.Botname, im.cfg.SourceDir)
		}
		return files, nil
	}

	for _, g := range []struct {
		pattern string
		ftype   types.FactoidType
	}{
		{"*-is.txt", types.FactoidIs},
		{"*-are.txt", types.FactoidAre},
	} {
		matches, err := filepath.Glob(filepath.Join(im.cfg.SourceDir, g.pattern))
		if err != nil {
			return nil, fmt.Errorf("globbing %s: %w", g.pattern, err)
		}
		if len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		im.logger.Info("auto-detected factoid file",
			"type", string(g.ftype), "file", filepath.Base(matches[0]))
		files = append(files, corpusFile{matches[0], g.ftype})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no factoid files found in %s", im.cfg.SourceDir)
	}
	return files, nil
}

// ImportFile runs the per-line state machine over a single factoid file,
// accumulating into stats. A whole-file read failure counts one error
// and stops this file; it is not fatal to the process.
func (im *Importer) ImportFile(ctx context.Context, path string, ftype types.FactoidType, stats *ImportStats) {
	im.logger.Info("importing factoids", "type", string(ftype), "file", path)

	f, err := os.Open(path)
	if err != nil {
		im.logger.Error("failed to open file", "file", path, "error", err)
		stats.Errors++
		return
	}
	defer f.Close()

	sourceFile := filepath.Base(path)
	lastDiagnosticParsed := stats.Parsed
	lastDiagnosticTime := im.clock()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		stats.TotalLines++

		// Strip plain whitespace only; IRC control bytes stay for
		// CleanIRCFormatting.
		line := strings.Trim(scanner.Text(), " \t\r\n")
		if line == "" {
			continue
		}

		key, value, ok := ParseFactoidLine(line)
		if !ok {
			stats.SkippedInvalid++
			im.logger.Debug("invalid line format", "file", sourceFile, "line", lineNum)
			continue
		}
		stats.Parsed++

		key = CleanIRCFormatting(key)
		value = CleanIRCFormatting(value)

		score := CalculateQualityScore(key, value)
		accepted := score >= im.cfg.QualityThreshold

		stats.ObserveQuality(score, accepted)
		sample := NewQualitySample(sourceFile, lineNum, key, value, score)
		stats.RecordQualitySample(sample, accepted, im.cfg.SampleCap, im.rng)

		now := im.clock()
		if im.shouldEmitDiagnostics(stats, stats.Parsed-lastDiagnosticParsed, now.Sub(lastDiagnosticTime)) {
			im.emitDiagnostics(stats, sourceFile, ftype)
			lastDiagnosticParsed = stats.Parsed
			lastDiagnosticTime = now
		}

		if !accepted {
			stats.SkippedLowQuality++
			im.logger.Debug("low quality factoid",
				"score", score, "key", previewKey(key))
			continue
		}

		im.persist(ctx, key, value, ftype, sourceFile, lineNum, stats)
	}

	if err := scanner.Err(); err != nil {
		im.logger.Error("failed to read file", "file", path, "error", err)
		stats.Errors++
	}
}

// persist attempts to store an accepted candidate and classifies the
// outcome as imported, duplicate, or errored. No outcome is fatal to
// the remaining lines.
func (im *Importer) persist(ctx context.Context, key, value string, ftype types.FactoidType, sourceFile string, lineNum int, stats *ImportStats) {
	factoid, err := types.NewFactoid(key, value, ftype, "legacy:"+sourceFile)
	if err != nil {
		stats.Errors++
		im.logger.Warn("error creating factoid",
			"file", sourceFile, "line", lineNum, "error", err)
		return
	}

	_, err = im.store.Create(ctx, factoid)
	switch {
	case err == nil:
		stats.Imported++
		if (stats.Imported <= 2000 && stats.Imported%100 == 0) || stats.Imported%1000 == 0 {
			im.logger.Info("import progress", "imported", stats.Imported)
		}
	case im.isDuplicate(err):
		stats.Duplicates++
		im.logger.Debug("duplicate factoid", "key", factoid.Key)
	default:
		stats.Errors++
		im.logger.Error("unexpected error persisting factoid",
			"file", sourceFile, "line", lineNum, "error", err)
	}
}

// shouldEmitDiagnostics checks the two independent cadences: a
// parsed-count threshold and an elapsed-wall-clock threshold. Whichever
// fires first resets both (the caller resets).
func (im *Importer) shouldEmitDiagnostics(stats *ImportStats, parsedSinceLast int, elapsed time.Duration) bool {
	if stats.Parsed == 0 || parsedSinceLast <= 0 {
		return false
	}
	if parsedSinceLast >= im.cfg.DiagnosticParsedInterval {
		return true
	}
	return elapsed >= im.cfg.DiagnosticInterval
}

// emitDiagnostics logs a periodic quality snapshot.
func (im *Importer) emitDiagnostics(stats *ImportStats, sourceFile string, ftype types.FactoidType) {
	avg := 0.0
	if v := stats.QualityAverage(); v != nil {
		avg = *v
	}
	minScore, maxScore := 0.0, 0.0
	if stats.QualityMin != nil {
		minScore = *stats.QualityMin
	}
	if stats.QualityMax != nil {
		maxScore = *stats.QualityMax
	}

	im.logger.Info("quality diagnostics",
		"type", string(ftype),
		"file", sourceFile,
		"parsed", stats.Parsed,
		"imported", stats.Imported,
		"rejected", stats.RejectedCandidates,
		"reject_rate", fmt.Sprintf("%.1f%%", stats.RejectRate()*100),
		"threshold", im.cfg.QualityThreshold,
		"score_min", fmt.Sprintf("%.2f", minScore),
		"score_avg", fmt.Sprintf("%.2f", avg),
		"score_max", fmt.Sprintf("%.2f", maxScore),
		"hist", FormatQualityHistogram(stats.QualityBuckets))
	im.logger.Info("accepted sample previews",
		"type", string(ftype), "file", sourceFile,
		"samples", FormatSamplePreviews(stats.AcceptedSamples, DefaultSamplePreviewLimit))
	im.logger.Info("rejected sample previews",
		"type", string(ftype), "file", sourceFile,
		"samples", FormatSamplePreviews(stats.RejectedSamples, DefaultSamplePreviewLimit))
}

func previewKey(key string) string {
	if len(key) > 50 {
		return key[:50]
	}
	return key
}
