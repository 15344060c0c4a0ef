package engconfig

import "testing"

func TestMustLoadDefaults(t *testing.T) {
	cfg := MustLoad()
	if cfg.GetBucketPrecision().String() != "1m0s" {
		t.Fatalf("bucket precision = %v, want 1m0s", cfg.GetBucketPrecision())
	}
	if cfg.GetSkiplistMaxLevel() != 16 {
		t.Fatalf("skiplist max level = %d, want 16", cfg.GetSkiplistMaxLevel())
	}
}

func TestEmptyConfigUsesEngineDefaults(t *testing.T) {
	cfg := Empty()
	if cfg.GetWLOFNeighbors() != 10 {
		t.Fatalf("WLOF neighbors default = %d, want 10", cfg.GetWLOFNeighbors())
	}
	if cfg.GetSkiplistPromoteP() != 0.5 {
		t.Fatalf("promote P default = %v, want 0.5", cfg.GetSkiplistPromoteP())
	}
	if cfg.GetGiSTFillFactor() != 0.7 {
		t.Fatalf("fill factor default = %v, want 0.7", cfg.GetGiSTFillFactor())
	}
}

func TestValidateRejectsBadPromoteP(t *testing.T) {
	bad := 1.5
	cfg := &EngineConfig{SkiplistPromoteP: &bad}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for promote_p out of range")
	}
}
