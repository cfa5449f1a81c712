// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package legacy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/infobot-reborn/pkg/types"
)

// --- fake store ---

var errAlreadyExists = errors.New("factoid already exists")

type fakeStore struct {
	created  map[string]types.Factoid
	failKeys map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{created: make(map[string]types.Factoid)}
}

func (f *fakeStore) Create(_ context.Context, factoid types.Factoid) (types.Factoid, error) {
	if err, ok := f.failKeys[factoid.Key]; ok {
		return types.Factoid{}, err
	}
	id := factoid.Key + "|" + string(factoid.Type)
	if _, exists := f.created[id]; exists {
		return types.Factoid{}, fmt.Errorf("factoid %q: %w", factoid.Key, errAlreadyExists)
	}
	f.created[id] = factoid
	return factoid, nil
}

func isTestDuplicate(err error) bool {
	return errors.Is(err, errAlreadyExists)
}

// --- helpers ---

func writeCorpusFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testImporter(t *testing.T, store FactoidCreator, cfg types.ImportConfig, opts ...Option) *Importer {
	t.Helper()
	if cfg.QualityThreshold == 0 {
		cfg.QualityThreshold = DefaultQualityThreshold
	}
	if cfg.SampleCap == 0 {
		cfg.SampleCap = DefaultSampleCap
	}
	if cfg.RNGSeed == 0 {
		cfg.RNGSeed = DefaultRNGSeed
	}
	im, err := NewImporter(store, isTestDuplicate, cfg, opts...)
	require.NoError(t, err)
	return im
}

// --- NewImporter validation ---

func TestNewImporterValidation(t *testing.T) {
	store := newFakeStore()

	_, err := NewImporter(nil, isTestDuplicate, types.ImportConfig{QualityThreshold: 0.5})
	assert.Error(t, err)

	_, err = NewImporter(store, nil, types.ImportConfig{QualityThreshold: 0.5})
	assert.Error(t, err)

	_, err = NewImporter(store, isTestDuplicate, types.ImportConfig{QualityThreshold: 1.01})
	assert.Error(t, err)

	_, err = NewImporter(store, isTestDuplicate, types.ImportConfig{QualityThreshold: -0.01})
	assert.Error(t, err)

	_, err = NewImporter(store, isTestDuplicate, types.ImportConfig{QualityThreshold: 0.5, SampleCap: -1})
	assert.Error(t, err)

	_, err = NewImporter(store, isTestDuplicate, types.ImportConfig{QualityThreshold: 0.5, DiagnosticInterval: -time.Second})
	assert.Error(t, err)
}

// --- per-line state machine ---

func TestImportFileStateMachine(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "bot-is.txt",
		"python => a programming language",       // accepted, imported
		"",                                       // blank, ignored
		"no separator on this line",              // invalid
		"test => hi",                             // rejected, low quality
		"linux => a family of operating systems", // accepted, imported
	)

	store := newFakeStore()
	im := testImporter(t, store, types.ImportConfig{})

	stats := &ImportStats{}
	im.ImportFile(context.Background(), path, types.FactoidIs, stats)

	assert.Equal(t, 5, stats.TotalLines)
	assert.Equal(t, 3, stats.Parsed)
	assert.Equal(t, 1, stats.SkippedInvalid)
	assert.Equal(t, 1, stats.SkippedLowQuality)
	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 0, stats.Duplicates)
	assert.Equal(t, 0, stats.Errors)

	// Telemetry invariants.
	assert.Equal(t, stats.Parsed, stats.QualityObservations)
	assert.Equal(t, stats.QualityObservations, stats.AcceptedCandidates+stats.RejectedCandidates)
	total := 0
	for _, c := range stats.QualityBuckets {
		total += c
	}
	assert.Equal(t, stats.QualityObservations, total)

	// Persisted with normalized key, inferred type, and attribution.
	f, ok := store.created["python|is"]
	require.True(t, ok)
	assert.Equal(t, "legacy:bot-is.txt", f.Source)
}

func TestImportFileDuplicateSameKeySameType(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "bot-is.txt",
		"python => first version of the fact",
		"python => second version of the fact",
	)

	store := newFakeStore()
	im := testImporter(t, store, types.ImportConfig{})

	stats := &ImportStats{}
	im.ImportFile(context.Background(), path, types.FactoidIs, stats)

	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 0, stats.Errors)
	assert.Equal(t, "first version of the fact", store.created["python|is"].Value)
}

func TestImportFileUnexpectedStoreError(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "bot-is.txt",
		"python => a programming language",
		"linux => a family of operating systems",
	)

	store := newFakeStore()
	store.failKeys = map[string]error{"python": errors.New("disk on fire")}
	im := testImporter(t, store, types.ImportConfig{})

	stats := &ImportStats{}
	im.ImportFile(context.Background(), path, types.FactoidIs, stats)

	// A persistence error is recoverable at line granularity.
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Imported)
}

func TestImportFileKeyNormalizedBeforePersist(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "bot-is.txt",
		"\x02Python\x02 => a programming language",
	)

	store := newFakeStore()
	im := testImporter(t, store, types.ImportConfig{})

	stats := &ImportStats{}
	im.ImportFile(context.Background(), path, types.FactoidIs, stats)

	require.Equal(t, 1, stats.Imported)
	// IRC markup converted before scoring; store lowercases the key.
	_, ok := store.created["**python**|is"]
	assert.True(t, ok)
}

func TestImportFileMissingFileCountsOneError(t *testing.T) {
	store := newFakeStore()
	im := testImporter(t, store, types.ImportConfig{})

	stats := &ImportStats{}
	im.ImportFile(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), types.FactoidIs, stats)

	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 0, stats.TotalLines)
}

// --- corpus orchestration ---

func TestImportCorpusSharedStatsAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "mybot-is.txt",
		"python => a programming language",
		"test => hi",
	)
	writeCorpusFile(t, dir, "mybot-are.txt",
		"compilers => programs that translate source code",
	)

	store := newFakeStore()
	im := testImporter(t, store, types.ImportConfig{SourceDir: dir, Botname: "mybot"})

	stats, err := im.ImportCorpus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalLines)
	assert.Equal(t, 3, stats.Parsed)
	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, stats.Parsed, stats.AcceptedCandidates+stats.RejectedCandidates)

	// Types inferred per file.
	_, ok := store.created["python|is"]
	assert.True(t, ok)
	_, ok = store.created["compilers|are"]
	assert.True(t, ok)

	// Percentiles are populated for the final report.
	assert.NotNil(t, stats.QualityP50)
}

func TestImportCorpusAutoDetect(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "alpha-is.txt", "python => a programming language")
	writeCorpusFile(t, dir, "beta-is.txt", "ruby => another programming language")

	store := newFakeStore()
	im := testImporter(t, store, types.ImportConfig{SourceDir: dir})

	stats, err := im.ImportCorpus(context.Background())
	require.NoError(t, err)

	// First glob match only (lexicographic).
	assert.Equal(t, 1, stats.Imported)
	_, ok := store.created["python|is"]
	assert.True(t, ok)
}

func TestImportCorpusNoFiles(t *testing.T) {
	store := newFakeStore()
	im := testImporter(t, store, types.ImportConfig{SourceDir: t.TempDir()})

	_, err := im.ImportCorpus(context.Background())
	assert.ErrorContains(t, err, "no factoid files")
}

func TestImportCorpusMissingBotnameFiles(t *testing.T) {
	store := newFakeStore()
	im := testImporter(t, store, types.ImportConfig{SourceDir: t.TempDir(), Botname: "ghost"})

	_, err := im.ImportCorpus(context.Background())
	assert.ErrorContains(t, err, "ghost")
}

func TestImportCorpusDeterministicSamples(t *testing.T) {
	dir := t.TempDir()
	lines := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		lines = append(lines, fmt.Sprintf("topic%d => a perfectly adequate definition %d", i, i))
	}
	writeCorpusFile(t, dir, "bot-is.txt", lines...)

	run := func() []QualitySample {
		im := testImporter(t, newFakeStore(), types.ImportConfig{SourceDir: dir, SampleCap: 5, RNGSeed: 99})
		stats, err := im.ImportCorpus(context.Background())
		require.NoError(t, err)
		assert.LessOrEqual(t, len(stats.AcceptedSamples), 5)
		return stats.AcceptedSamples
	}

	assert.Equal(t, run(), run())
}

// --- diagnostic cadence ---

func TestDiagnosticsEmittedOnParsedInterval(t *testing.T) {
	dir := t.TempDir()
	lines := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		lines = append(lines, fmt.Sprintf("topic%d => a perfectly adequate definition %d", i, i))
	}
	path := writeCorpusFile(t, dir, "bot-is.txt", lines...)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	im := testImporter(t, newFakeStore(),
		types.ImportConfig{DiagnosticParsedInterval: 4, DiagnosticInterval: time.Hour},
		WithLogger(logger))

	stats := &ImportStats{}
	im.ImportFile(context.Background(), path, types.FactoidIs, stats)

	assert.Contains(t, buf.String(), "quality diagnostics")
}

func TestDiagnosticsEmittedOnElapsedTime(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "bot-is.txt",
		"alpha => a perfectly adequate definition",
		"beta => a perfectly adequate definition",
	)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// Each clock read advances 16s; the 30s cadence fires on the second
	// parsed line without any real sleeping.
	now := time.Unix(0, 0)
	clock := func() time.Time {
		now = now.Add(16 * time.Second)
		return now
	}

	im := testImporter(t, newFakeStore(),
		types.ImportConfig{DiagnosticParsedInterval: 1000000, DiagnosticInterval: 30 * time.Second},
		WithLogger(logger), WithClock(clock))

	stats := &ImportStats{}
	im.ImportFile(context.Background(), path, types.FactoidIs, stats)

	assert.Contains(t, buf.String(), "quality diagnostics")
}

func TestDiagnosticsNotEmittedBelowCadence(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "bot-is.txt",
		"alpha => a perfectly adequate definition",
	)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	im := testImporter(t, newFakeStore(),
		types.ImportConfig{DiagnosticParsedInterval: 1000, DiagnosticInterval: time.Hour},
		WithLogger(logger))

	stats := &ImportStats{}
	im.ImportFile(context.Background(), path, types.FactoidIs, stats)

	assert.NotContains(t, buf.String(), "quality diagnostics")
}
