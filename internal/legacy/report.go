// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package legacy

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultSamplePreviewLimit caps the inline sample previews in
// diagnostics and the final summary.
const DefaultSamplePreviewLimit = 3

const (
	sampleTableKeyWidth   = 45
	sampleTableValueWidth = 60
)

// FormatQualityHistogram renders the histogram as a compact bucket
// summary with per-bucket percentages.
func FormatQualityHistogram(buckets [QualityBucketCount]int) string {
	total := 0
	for _, count := range buckets {
		total += count
	}
	if total == 0 {
		return "no samples"
	}

	parts := make([]string, 0, QualityBucketCount)
	for bucket, count := range buckets {
		percentage := float64(count) / float64(total) * 100
		parts = append(parts, fmt.Sprintf("%s:%d (%.1f%%)", qualityBucketLabel(bucket), count, percentage))
	}
	return strings.Join(parts, " | ")
}

// FormatSamplePreviews renders up to limit sample previews as a compact,
// stable string sorted by file, line, and key.
func FormatSamplePreviews(samples []QualitySample, limit int) string {
	if limit <= 0 {
		limit = DefaultSamplePreviewLimit
	}
	if len(samples) == 0 {
		return "none"
	}

	ordered := make([]QualitySample, len(samples))
	copy(ordered, samples)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.SourceFile != b.SourceFile {
			return a.SourceFile < b.SourceFile
		}
		if a.LineNumber != b.LineNumber {
			return a.LineNumber < b.LineNumber
		}
		return a.Key < b.Key
	})
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	parts := make([]string, len(ordered))
	for i, s := range ordered {
		parts[i] = fmt.Sprintf("%s@%d (score=%.2f) -> %s", s.Key, s.LineNumber, s.Score, s.ValuePreview)
	}
	return strings.Join(parts, " | ")
}

// RenderSampleTable renders accepted and rejected samples as one table
// sorted by score descending, deduplicated on (key, score, preview).
func RenderSampleTable(accepted, rejected []QualitySample) []string {
	type row struct {
		status string
		sample QualitySample
	}

	all := make([]row, 0, len(accepted)+len(rejected))
	for _, s := range accepted {
		all = append(all, row{"Accepted", s})
	}
	for _, s := range rejected {
		all = append(all, row{"Rejected", s})
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i].sample, all[j].sample
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.SourceFile != b.SourceFile {
			return a.SourceFile < b.SourceFile
		}
		if a.LineNumber != b.LineNumber {
			return a.LineNumber < b.LineNumber
		}
		return a.Key < b.Key
	})

	type dedupeKey struct {
		key     string
		score   float64
		preview string
	}
	seen := make(map[dedupeKey]bool)
	var unique []row
	for _, r := range all {
		k := dedupeKey{r.sample.Key, r.sample.Score, r.sample.ValuePreview}
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, r)
	}

	if len(unique) == 0 {
		return nil
	}

	lines := []string{
		fmt.Sprintf("| %-8s | %-*s | %-6s | VALUE", "STATUS", sampleTableKeyWidth, "KEY", "SCORE"),
		fmt.Sprintf("|%s|%s|%s|%s",
			strings.Repeat("-", 10),
			strings.Repeat("-", sampleTableKeyWidth+2),
			strings.Repeat("-", 8),
			strings.Repeat("-", sampleTableValueWidth+2)),
	}
	for _, r := range unique {
		lines = append(lines, fmt.Sprintf("| %-8s | %-*s | %-6.2f | %s",
			r.status,
			sampleTableKeyWidth, truncate(r.sample.Key, sampleTableKeyWidth),
			r.sample.Score,
			truncate(r.sample.ValuePreview, sampleTableValueWidth)))
	}
	return lines
}

// RenderImportSummary renders the complete line-oriented import summary
// for console output: counters, quality metrics, histogram, sample
// previews, and threshold guidance.
func RenderImportSummary(stats *ImportStats, qualityThreshold float64, guidanceMinSampleSize int) ([]string, error) {
	if err := ValidateQualityThreshold(qualityThreshold); err != nil {
		return nil, err
	}
	guidance, err := BuildThresholdGuidance(stats, qualityThreshold, guidanceMinSampleSize)
	if err != nil {
		return nil, err
	}

	var lines []string

	if table := RenderSampleTable(stats.AcceptedSamples, stats.RejectedSamples); len(table) > 0 {
		lines = append(lines, "QUALITY SAMPLES (sorted by score)", "")
		lines = append(lines, table...)
		lines = append(lines, "")
	}

	rule := strings.Repeat("=", 60)
	lines = append(lines,
		"IMPORT SUMMARY",
		rule,
		fmt.Sprintf("Total lines processed:    %d", stats.TotalLines),
		fmt.Sprintf("Successfully parsed:      %d", stats.Parsed),
		fmt.Sprintf("Skipped (invalid format): %d", stats.SkippedInvalid),
		fmt.Sprintf("Skipped (low quality):    %d", stats.SkippedLowQuality),
		fmt.Sprintf("Duplicates:               %d", stats.Duplicates),
		fmt.Sprintf("Errors:                   %d", stats.Errors),
		fmt.Sprintf("Successfully imported:    %d", stats.Imported),
		rule,
		"QUALITY METRICS",
		strings.Repeat("-", 60),
		fmt.Sprintf("Scored candidates:        %d", stats.QualityObservations),
		fmt.Sprintf("Accepted candidates:      %d", stats.AcceptedCandidates),
		fmt.Sprintf("Rejected candidates:      %d", stats.RejectedCandidates),
		fmt.Sprintf("Reject rate:              %.1f%%", stats.RejectRate()*100),
		fmt.Sprintf("Score range/avg:          min=%s avg=%s max=%s",
			formatOptionalScore(stats.QualityMin),
			formatOptionalScore(stats.QualityAverage()),
			formatOptionalScore(stats.QualityMax)),
		fmt.Sprintf("Percentiles:              p50=%s p75=%s p90=%s p95=%s",
			formatOptionalScore(stats.QualityP50),
			formatOptionalScore(stats.QualityP75),
			formatOptionalScore(stats.QualityP90),
			formatOptionalScore(stats.QualityP95)),
		"Histogram:                ",
	)

	for bucket, count := range stats.QualityBuckets {
		percentage := 0.0
		if stats.QualityObservations > 0 {
			percentage = float64(count) / float64(stats.QualityObservations) * 100
		}
		lines = append(lines, fmt.Sprintf("  %s: %d (%.1f%%)", qualityBucketLabel(bucket), count, percentage))
	}

	lines = append(lines,
		"Accepted samples:         "+FormatSamplePreviews(stats.AcceptedSamples, DefaultSamplePreviewLimit),
		"Rejected samples:         "+FormatSamplePreviews(stats.RejectedSamples, DefaultSamplePreviewLimit),
		"Threshold guidance:",
		fmt.Sprintf("  Current threshold=%.2f Suggested=%s Confidence=%s",
			guidance.CurrentThreshold,
			formatOptionalScore(guidance.SuggestedThreshold),
			guidance.Confidence),
		"  Rationale: "+guidance.Rationale,
	)

	if guidance.Confidence == ConfidenceLow {
		lines = append(lines, "  Guardrail: recommendation withheld until sample size is sufficient.")
	}

	return lines, nil
}

func formatOptionalScore(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func truncate(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return s
}
