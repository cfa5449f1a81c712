// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package legacy

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Environment variables tuning the quality-sample reservoirs.
const (
	EnvSampleCap = "LEGACY_IMPORT_SAMPLE_CAP"
	EnvRNGSeed   = "LEGACY_IMPORT_RNG_SEED"
)

// Defaults for import behavior.
const (
	DefaultSampleCap                = 20
	DefaultRNGSeed                  = 1337
	DefaultQualityThreshold         = 0.55
	DefaultDiagnosticParsedInterval = 1000
	DefaultDiagnosticInterval       = 30 * time.Second
)

// importEnv binds the reservoir tuning environment variables. Values are
// read as strings so malformed input fails validation instead of being
// silently coerced to zero.
func importEnv() *viper.Viper {
	v := viper.New()
	v.SetDefault("sample_cap", strconv.Itoa(DefaultSampleCap))
	v.SetDefault("rng_seed", strconv.Itoa(DefaultRNGSeed))
	// BindEnv with an explicit name never errors.
	_ = v.BindEnv("sample_cap", EnvSampleCap)
	_ = v.BindEnv("rng_seed", EnvRNGSeed)
	return v
}

// ResolveSampleCap reads the reservoir cap from LEGACY_IMPORT_SAMPLE_CAP,
// defaulting to DefaultSampleCap. The cap must be a non-negative integer.
func ResolveSampleCap() (int, error) {
	raw := importEnv().GetString("sample_cap")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got %q)", EnvSampleCap, raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must be >= 0 (got %d)", EnvSampleCap, n)
	}
	return n, nil
}

// ResolveRNGSeed reads the deterministic sampling seed from
// LEGACY_IMPORT_RNG_SEED, defaulting to DefaultRNGSeed.
func ResolveRNGSeed() (int64, error) {
	raw := importEnv().GetString("rng_seed")
	seed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got %q)", EnvRNGSeed, raw)
	}
	return seed, nil
}

// NewQualityRNG builds the deterministic RNG for the quality-sample
// reservoirs. The core pipeline never falls back to ambient global
// randomness; a seeded source keeps repeated runs over the same corpus
// byte-identical in their sample reports.
func NewQualityRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// ValidateQualityThreshold checks the inclusive [0.0, 1.0] range.
func ValidateQualityThreshold(threshold float64) error {
	if threshold < 0.0 || threshold > 1.0 {
		return fmt.Errorf("quality-threshold must be between 0.0 and 1.0 (got %v)", threshold)
	}
	return nil
}

// validateDiagnosticCadence checks the periodic diagnostics intervals.
func validateDiagnosticCadence(parsedInterval int, interval time.Duration) error {
	if parsedInterval <= 0 {
		return fmt.Errorf("diagnostic parsed interval must be > 0 (got %d)", parsedInterval)
	}
	if interval <= 0 {
		return fmt.Errorf("diagnostic interval must be > 0 (got %v)", interval)
	}
	return nil
}
