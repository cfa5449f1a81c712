// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package legacy

import (
	"fmt"
	"math"
)

// Confidence levels for threshold guidance.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
)

// DefaultGuidanceMinSampleSize is the minimum number of scored
// candidates required before a threshold recommendation is offered.
const DefaultGuidanceMinSampleSize = 50

// ThresholdGuidance is an advisory recommendation for the acceptance
// threshold, derived from the observed score distribution and reject
// rate. Computed on demand, never stored.
type ThresholdGuidance struct {
	CurrentThreshold   float64
	SuggestedThreshold *float64
	Confidence         string
	Rationale          string
}

// BuildThresholdGuidance derives tuning guidance from the run's
// telemetry. Below minSampleSize observations the confidence is low and
// no suggestion is made. Otherwise a reject rate above 80% suggests
// lowering the threshold toward p50, below 5% raising it toward p90,
// and anything between keeping the current setting.
func BuildThresholdGuidance(stats *ImportStats, qualityThreshold float64, minSampleSize int) (ThresholdGuidance, error) {
	if err := ValidateQualityThreshold(qualityThreshold); err != nil {
		return ThresholdGuidance{}, err
	}
	if minSampleSize <= 0 {
		return ThresholdGuidance{}, fmt.Errorf("min sample size must be > 0 (got %d)", minSampleSize)
	}

	stats.RefreshQualityPercentiles()

	if stats.QualityObservations < minSampleSize {
		return ThresholdGuidance{
			CurrentThreshold: qualityThreshold,
			Confidence:       ConfidenceLow,
			Rationale: fmt.Sprintf(
				"Insufficient scored candidates for recommendation (%d/%d).",
				stats.QualityObservations, minSampleSize),
		}, nil
	}

	rejectRate := stats.RejectRate()
	suggested := qualityThreshold
	rationale := "Threshold appears balanced; keep current setting."

	switch {
	case rejectRate > 0.80 && stats.QualityP50 != nil:
		suggested = roundScore(*stats.QualityP50)
		rationale = "High reject rate observed; consider lowering threshold toward p50."
	case rejectRate < 0.05 && stats.QualityP90 != nil:
		suggested = roundScore(*stats.QualityP90)
		rationale = "Very low reject rate observed; consider raising threshold toward p90."
	}

	return ThresholdGuidance{
		CurrentThreshold:   qualityThreshold,
		SuggestedThreshold: &suggested,
		Confidence:         ConfidenceMedium,
		Rationale:          rationale,
	}, nil
}

// roundScore rounds to two decimals for operator-facing suggestions.
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
