// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// KnowledgeBaseConfig holds settings for the factoid SQLite store.
type KnowledgeBaseConfig struct {
	// DatabasePath is the SQLite database file (default data/infobot.db).
	DatabasePath string `json:"database_path" yaml:"database_path"`
}

// ImportConfig holds settings for the legacy factoid import tool.
type ImportConfig struct {
	// SourceDir is the directory containing *-is.txt / *-are.txt exports.
	SourceDir string `json:"source_dir" yaml:"source_dir"`

	// Botname restricts discovery to {botname}-is.txt / {botname}-are.txt.
	// Empty means auto-detect the first matching file per type.
	Botname string `json:"botname,omitempty" yaml:"botname,omitempty"`

	// QualityThreshold is the minimum score a candidate must reach to be
	// persisted, inclusive range [0.0, 1.0] (default 0.55).
	QualityThreshold float64 `json:"quality_threshold" yaml:"quality_threshold"`

	// SampleCap bounds each accepted/rejected quality-sample reservoir
	// (default 20).
	SampleCap int `json:"sample_cap" yaml:"sample_cap"`

	// RNGSeed seeds the reservoir sampler so repeated runs over the same
	// corpus produce identical sample reports (default 1337).
	RNGSeed int64 `json:"rng_seed" yaml:"rng_seed"`

	// DiagnosticParsedInterval is the parsed-candidate cadence for
	// periodic diagnostics snapshots (default 1000).
	DiagnosticParsedInterval int `json:"diagnostic_parsed_interval" yaml:"diagnostic_parsed_interval"`

	// DiagnosticInterval is the wall-clock cadence for periodic
	// diagnostics snapshots (default 30s).
	DiagnosticInterval time.Duration `json:"diagnostic_interval" yaml:"diagnostic_interval"`
}
