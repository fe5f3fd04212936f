package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	if cfg.Physics.Phases != 2 {
		t.Fatalf("Phases = %d, want 2", cfg.Physics.Phases)
	}
	if len(cfg.Physics.Rho0) != cfg.Physics.Phases {
		t.Fatalf("len(Rho0) = %d, want %d", len(cfg.Physics.Rho0), cfg.Physics.Phases)
	}
}

func TestSimConfigTranslation(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	sc := cfg.SimConfig()
	if err := sc.Validate(); err != nil {
		t.Fatalf("SimConfig() produced invalid sim.Config: %v", err)
	}
	if sc.Gravity.Z >= 0 {
		t.Fatalf("Gravity.Z = %v, want negative (downward)", sc.Gravity.Z)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("Load with missing file should return an error")
	}
}
