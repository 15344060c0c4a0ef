// Package engconfig loads the engine's optional tuning document: index
// fill factors, simplification tolerances, bucketing precision, and
// aggregator skiplist parameters. Every field is an optional pointer so a
// partial JSON document only overrides what it names; for everything else
// the Get* accessors return the engine defaults.
package engconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the canonical tuning defaults file searched for by
// MustLoad.
const DefaultConfigPath = "config/tuning.defaults.json"

// EngineConfig is the root tuning document.
type EngineConfig struct {
	// Analytics (L4) defaults.
	BucketPrecision     *string  `json:"bucket_precision,omitempty"` // duration string like "5m"
	SimplifyMinDist     *float64 `json:"simplify_min_dist,omitempty"`
	SimplifyMinTDelta   *string  `json:"simplify_min_tdelta,omitempty"`
	SimplifyDPTolerance *float64 `json:"simplify_dp_tolerance,omitempty"`
	WLOFNeighbors       *int     `json:"wlof_neighbors,omitempty"`

	// Aggregator (L4) defaults.
	SkiplistMaxLevel  *int     `json:"skiplist_max_level,omitempty"`
	SkiplistPromoteP  *float64 `json:"skiplist_promote_p,omitempty"`
	AppendMaxDist     *float64 `json:"append_max_dist,omitempty"`
	AppendMaxT        *string  `json:"append_max_t,omitempty"`

	// Index (L5) defaults.
	GiSTFillFactor *float64 `json:"gist_fill_factor,omitempty"`
	GiSTLimitRatio *float64 `json:"gist_limit_ratio,omitempty"`
}

// Empty returns an EngineConfig with every field nil.
func Empty() *EngineConfig { return &EngineConfig{} }

// Load reads and parses an EngineConfig from a JSON file at path. Fields
// omitted from the document keep their nil zero value; Get* accessors
// supply the engine defaults for anything left unset.
func Load(path string) (*EngineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("engconfig: config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("engconfig: stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("engconfig: config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("engconfig: read config file: %w", err)
	}
	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("engconfig: parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engconfig: invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoad loads DefaultConfigPath, searching from the current directory
// upward. Intended for test setup; panics on failure.
func MustLoad() *EngineConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	panic("engconfig: cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate rejects values that would violate an engine invariant.
func (c *EngineConfig) Validate() error {
	if c.SkiplistPromoteP != nil {
		if *c.SkiplistPromoteP <= 0 || *c.SkiplistPromoteP >= 1 {
			return fmt.Errorf("skiplist_promote_p must be in (0, 1), got %f", *c.SkiplistPromoteP)
		}
	}
	if c.SkiplistMaxLevel != nil && *c.SkiplistMaxLevel < 1 {
		return fmt.Errorf("skiplist_max_level must be positive, got %d", *c.SkiplistMaxLevel)
	}
	if c.GiSTLimitRatio != nil {
		if *c.GiSTLimitRatio <= 0 || *c.GiSTLimitRatio >= 1 {
			return fmt.Errorf("gist_limit_ratio must be in (0, 1), got %f", *c.GiSTLimitRatio)
		}
	}
	if c.BucketPrecision != nil && *c.BucketPrecision != "" {
		if _, err := time.ParseDuration(*c.BucketPrecision); err != nil {
			return fmt.Errorf("invalid bucket_precision %q: %w", *c.BucketPrecision, err)
		}
	}
	if c.AppendMaxT != nil && *c.AppendMaxT != "" {
		if _, err := time.ParseDuration(*c.AppendMaxT); err != nil {
			return fmt.Errorf("invalid append_max_t %q: %w", *c.AppendMaxT, err)
		}
	}
	return nil
}

// GetBucketPrecision returns the configured bucket duration or the
// engine default of 1 minute.
func (c *EngineConfig) GetBucketPrecision() time.Duration {
	if c.BucketPrecision == nil || *c.BucketPrecision == "" {
		return time.Minute
	}
	d, err := time.ParseDuration(*c.BucketPrecision)
	if err != nil {
		return time.Minute
	}
	return d
}

// GetSimplifyMinDist returns the configured minimum-distance
// simplification threshold or the engine default.
func (c *EngineConfig) GetSimplifyMinDist() float64 {
	if c.SimplifyMinDist == nil {
		return 0
	}
	return *c.SimplifyMinDist
}

// GetSimplifyDPTolerance returns the configured Douglas-Peucker
// tolerance or the engine default.
func (c *EngineConfig) GetSimplifyDPTolerance() float64 {
	if c.SimplifyDPTolerance == nil {
		return 0
	}
	return *c.SimplifyDPTolerance
}

// GetWLOFNeighbors returns the configured k for the weighted local
// outlier factor's k-NN query, or the engine default of 10.
func (c *EngineConfig) GetWLOFNeighbors() int {
	if c.WLOFNeighbors == nil {
		return 10
	}
	return *c.WLOFNeighbors
}

// GetSkiplistMaxLevel returns the configured maximum skiplist level or
// the engine default of 16.
func (c *EngineConfig) GetSkiplistMaxLevel() int {
	if c.SkiplistMaxLevel == nil {
		return 16
	}
	return *c.SkiplistMaxLevel
}

// GetSkiplistPromoteP returns the configured geometric promotion
// probability or the engine default of 0.5.
func (c *EngineConfig) GetSkiplistPromoteP() float64 {
	if c.SkiplistPromoteP == nil {
		return 0.5
	}
	return *c.SkiplistPromoteP
}

// GetGiSTFillFactor returns the configured page fill factor, or the engine
// default of 0.7. No picksplit in internal/index reads it.
func (c *EngineConfig) GetGiSTFillFactor() float64 {
	if c.GiSTFillFactor == nil {
		return 0.7
	}
	return *c.GiSTFillFactor
}

// GetGiSTLimitRatio returns the configured minimum balance ratio a
// picksplit candidate must meet to win a tie-break, or the engine
// default of 0.3.
func (c *EngineConfig) GetGiSTLimitRatio() float64 {
	if c.GiSTLimitRatio == nil {
		return 0.3
	}
	return *c.GiSTLimitRatio
}
