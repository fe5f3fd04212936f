package sim

import (
	"mixfluid/simerr"
	"mixfluid/vec3"
)

// EOSMode selects the equation of state used by cal_press / check_alpha's
// pressure correction, per spec.md §4.3. It is fixed in Config for the
// whole run; pressureOf and pressureCorrection switch on it for every
// particle they evaluate, so the inner loops are not branch-free.
type EOSMode int

const (
	Tait EOSMode = iota
	Linear
)

// Config holds the global fields of spec.md §3: gravity, dt, smoothing
// length, damping, EOS constants, inter-phase coupling time constant, plus
// the two open-question feature flags of spec.md §9.
type Config struct {
	Phases  int
	RhoRest []float64 // rho0_k, one per phase

	H       float64
	Dt      float64
	Damp    float64 // eta, damping coefficient (< 1)
	Tau     float64 // inter-phase coupling time constant

	EOS        EOSMode
	K1, K2, K3 float64

	Gravity vec3.V
	Bound   vec3.V // simulation box extents
	Epsilon float64 // boundary margin

	Miscible bool // enables alpha-weighted pressure in cal_drift (spec.md §4.4)

	// FixDriftSelfPhase and ReproducePhaseOneVestige preserve the two open
	// questions of spec.md §9. FixDriftSelfPhase defaults to false, i.e. to
	// the literal source behavior: the self-phase re-add in cal_drift is
	// gated by ph==i (particle index, not phase index). ReproducePhaseOneVestige
	// defaults to false, i.e. to NOT reproducing check_alpha's 3D variant
	// that force-zeros phase 1 before normalizing, since spec.md §9 treats
	// it as a debugging vestige rather than intended behavior.
	FixDriftSelfPhase        bool
	ReproducePhaseOneVestige bool
}

// GridConfig lets the driver size the spatial index independently of H,
// matching spec.md §6's cell_size / S_cell / N_nei config keys.
type GridConfig struct {
	CellSize float64 // must be >= 1.1*H
	SCell    int
	NNei     int
}

// Validate returns a *simerr.ConfigError for every condition spec.md §7
// names as fatal at init: invalid phase count, nonpositive h or dt.
func (c Config) Validate() error {
	if c.Phases < 1 {
		return &simerr.ConfigError{Field: "phases", Reason: "must be >= 1"}
	}
	if len(c.RhoRest) != c.Phases {
		return &simerr.ConfigError{Field: "rho0", Reason: "length must equal phases"}
	}
	for _, rho := range c.RhoRest {
		if rho <= 0 {
			return &simerr.ConfigError{Field: "rho0", Reason: "phase rest density must be positive"}
		}
	}
	if c.H <= 0 {
		return &simerr.ConfigError{Field: "h", Reason: "must be positive"}
	}
	if c.Dt <= 0 {
		return &simerr.ConfigError{Field: "dt", Reason: "must be positive"}
	}
	if c.Damp <= 0 || c.Damp > 1 {
		return &simerr.ConfigError{Field: "damp", Reason: "must be in (0, 1]"}
	}
	if c.EOS == Tait && c.K2 == 0 {
		return &simerr.ConfigError{Field: "k2", Reason: "must be nonzero for Tait EOS"}
	}
	if c.Epsilon <= 0 {
		return &simerr.ConfigError{Field: "epsilon", Reason: "must be positive"}
	}
	return nil
}
