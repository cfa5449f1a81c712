// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package legacy

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

const (
	// QualityBucketCount is the number of equal-width histogram buckets
	// over [0, 1].
	QualityBucketCount = 10

	defaultPreviewChars = 96
)

// QualityPercentiles lists the percentiles derived from the histogram.
var QualityPercentiles = []int{50, 75, 90, 95}

// QualitySample is a sampled factoid quality observation kept for
// diagnostics.
type QualitySample struct {
	SourceFile   string
	LineNumber   int
	Key          string
	ValuePreview string
	Score        float64
}

// ImportStats accumulates counters and quality telemetry for one import
// run. A single run owns the aggregate; multiple files of one corpus
// share it so the final report covers the whole corpus. It is never
// persisted.
type ImportStats struct {
	TotalLines        int
	Parsed            int
	SkippedInvalid    int
	SkippedLowQuality int
	Imported          int
	Duplicates        int
	Errors            int

	QualityObservations int
	QualityScoreSum     float64
	QualityMin          *float64
	QualityMax          *float64
	QualityBuckets      [QualityBucketCount]int

	QualityP50 *float64
	QualityP75 *float64
	QualityP90 *float64
	QualityP95 *float64

	AcceptedCandidates int
	RejectedCandidates int
	AcceptedSamples    []QualitySample
	RejectedSamples    []QualitySample
}

// ClampQualityScore clamps a quality score into the inclusive
// [0.0, 1.0] range.
func ClampQualityScore(score float64) float64 {
	return math.Max(0.0, math.Min(1.0, score))
}

// QualityBucketIndex maps a score to one of the histogram buckets.
// A score of 1.0 belongs to the last bucket, not an out-of-range 11th.
func QualityBucketIndex(score float64) int {
	clamped := ClampQualityScore(score)
	if clamped >= 1.0 {
		return QualityBucketCount - 1
	}
	return int(clamped * QualityBucketCount)
}

func qualityBucketLabel(bucket int) string {
	lower := float64(bucket) / QualityBucketCount
	upper := float64(bucket+1) / QualityBucketCount
	return fmt.Sprintf("%.1f-%.1f", lower, upper)
}

// ObserveQuality updates the aggregate counters and histogram for one
// scored candidate.
func (s *ImportStats) ObserveQuality(score float64, accepted bool) {
	clamped := ClampQualityScore(score)
	s.QualityObservations++
	s.QualityScoreSum += clamped
	if s.QualityMin == nil || clamped < *s.QualityMin {
		v := clamped
		s.QualityMin = &v
	}
	if s.QualityMax == nil || clamped > *s.QualityMax {
		v := clamped
		s.QualityMax = &v
	}
	s.QualityBuckets[QualityBucketIndex(clamped)]++

	if accepted {
		s.AcceptedCandidates++
	} else {
		s.RejectedCandidates++
	}
}

// NewQualitySample builds a lightweight sample preview record. The value
// is whitespace-collapsed and truncated to a preview length.
func NewQualitySample(sourceFile string, lineNumber int, key, value string, score float64) QualitySample {
	compact := strings.Join(strings.Fields(value), " ")
	if len(compact) > defaultPreviewChars {
		compact = compact[:defaultPreviewChars] + "..."
	}
	return QualitySample{
		SourceFile:   sourceFile,
		LineNumber:   lineNumber,
		Key:          key,
		ValuePreview: compact,
		Score:        ClampQualityScore(score),
	}
}

// reservoirInsert updates a bounded reservoir using Algorithm R.
// populationSeen is the number of stream items observed including this
// one; each of the first n items ends up retained with probability
// cap/n using O(cap) memory.
func reservoirInsert(reservoir []QualitySample, sample QualitySample, populationSeen, sampleCap int, rng *rand.Rand) []QualitySample {
	if sampleCap <= 0 {
		return reservoir
	}
	if len(reservoir) < sampleCap {
		return append(reservoir, sample)
	}
	if j := rng.Intn(populationSeen); j < sampleCap {
		reservoir[j] = sample
	}
	return reservoir
}

// RecordQualitySample inserts the sample into the accepted or rejected
// reservoir. Call after ObserveQuality so the candidate counters include
// this sample.
func (s *ImportStats) RecordQualitySample(sample QualitySample, accepted bool, sampleCap int, rng *rand.Rand) {
	if accepted {
		s.AcceptedSamples = reservoirInsert(s.AcceptedSamples, sample, s.AcceptedCandidates, sampleCap, rng)
	} else {
		s.RejectedSamples = reservoirInsert(s.RejectedSamples, sample, s.RejectedCandidates, sampleCap, rng)
	}
}

// ComputeQualityPercentiles approximates percentile values from the
// fixed-width histogram. Every requested percentile maps to nil when the
// histogram is empty. Within the selected bucket the value is linearly
// interpolated from the fractional rank position.
func ComputeQualityPercentiles(buckets [QualityBucketCount]int, percentiles []int) (map[int]*float64, error) {
	total := 0
	for _, count := range buckets {
		total += count
	}

	results := make(map[int]*float64, len(percentiles))
	for _, p := range percentiles {
		if p < 0 || p > 100 {
			return nil, fmt.Errorf("percentile must be in [0, 100] (got %d)", p)
		}
		results[p] = nil
	}
	if total == 0 {
		return results, nil
	}

	for _, p := range percentiles {
		targetRank := int(math.Ceil(float64(total) * float64(p) / 100))
		if targetRank < 1 {
			targetRank = 1
		}

		cumulative := 0
		for bucket, count := range buckets {
			cumulative += count
			if cumulative < targetRank {
				continue
			}

			lower := float64(bucket) / QualityBucketCount
			upper := float64(bucket+1) / QualityBucketCount
			var interpolated float64
			if count == 0 {
				interpolated = upper
			} else {
				position := float64(targetRank-(cumulative-count)) / float64(count)
				interpolated = lower + (upper-lower)*position
			}

			v := ClampQualityScore(interpolated)
			results[p] = &v
			break
		}
	}

	return results, nil
}

// RefreshQualityPercentiles recomputes the percentile fields from the
// current histogram.
func (s *ImportStats) RefreshQualityPercentiles() {
	values, err := ComputeQualityPercentiles(s.QualityBuckets, QualityPercentiles)
	if err != nil {
		// QualityPercentiles are compile-time constants in range.
		return
	}
	s.QualityP50 = values[50]
	s.QualityP75 = values[75]
	s.QualityP90 = values[90]
	s.QualityP95 = values[95]
}

// QualityAverage returns the mean quality score, or nil when no
// candidate has been scored.
func (s *ImportStats) QualityAverage() *float64 {
	if s.QualityObservations == 0 {
		return nil
	}
	avg := s.QualityScoreSum / float64(s.QualityObservations)
	return &avg
}

// RejectRate returns the share of scored candidates below the threshold.
func (s *ImportStats) RejectRate() float64 {
	if s.QualityObservations == 0 {
		return 0
	}
	return float64(s.RejectedCandidates) / float64(s.QualityObservations)
}
