// Package sim implements the per-substep physics pipeline of spec.md §4:
// cal_press, cal_drift, adv_alpha/check_alpha, cal_acc/advect, wired
// together by Step in the fixed order data flow of spec.md §2:
//
//	neighbor_search -> cal_press -> cal_drift -> adv_alpha -> check_alpha -> cal_acc -> advect
//
// Particle state is laid out field-of-arrays, per the design note in
// spec.md §9 and the teacher's own core.Particle-per-array style
// (_examples/zzstoatzz-fluids/core/particle.go), generalized from 2D to 3D
// and from a single phase to P. Wall particles are never given a struct
// field marking them as walls: per spec.md §3/§9 the sole discriminator is
// the index, IsWall(j) = j >= NFluid, so the predicate is one comparison in
// every tight loop rather than a virtual dispatch.
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"mixfluid/grid"
	"mixfluid/kernel"
	"mixfluid/simerr"
	"mixfluid/workers"
	"mixfluid/vec3"
)

// System owns every per-particle array for the process lifetime, per
// spec.md §3's ownership note. Kernels borrow read/write views into it;
// disjoint-write discipline (spec.md §5) means no kernel needs a lock.
type System struct {
	Cfg    Config
	Grid   grid.Config
	Kernel kernel.Set

	NFluid, NWall int

	Pos []vec3.V // len N = NFluid+NWall; fluid first, walls the suffix
	Vel []vec3.V // len NFluid
	Acc []vec3.V // len NFluid, holds the previous substep's acceleration

	// Alpha and Drift are [NFluid, Phases] row-major, particle-outer
	// phase-inner per spec.md §9's cache-friendliness note.
	Alpha []float64
	Drift []vec3.V

	RhoMix   []float64 // mixture rest density, per particle
	RhoBar   []float64 // SPH-interpolated density
	Pressure []float64

	grid *grid.Grid
	log  *logrus.Entry

	step           int
	overflowWarned bool
}

// IsWall reports whether particle index j is a boundary (ghost) particle:
// the sole discriminator named in spec.md §3.
func (s *System) IsWall(j int) bool { return j >= s.NFluid }

func (s *System) alphaIdx(i, k int) int { return i*s.Cfg.Phases + k }

// FluidPositions returns the position slice restricted to fluid
// particles, the frame-sink contract of spec.md §6.
func (s *System) FluidPositions() []vec3.V { return s.Pos[:s.NFluid] }

// New constructs a System from emitted positions and initial volume
// fractions. pos must be length NFluid+NWall with wall particles as the
// contiguous suffix, and alpha must be length NFluid*phases row-major,
// matching the emitter contract of spec.md §6.
func New(cfg Config, gridCfg grid.Config, pos []vec3.V, alpha []float64, nFluid, nWall int, log *logrus.Entry) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(pos) != nFluid+nWall {
		return nil, &configCountError{"pos", nFluid + nWall, len(pos)}
	}
	if len(alpha) != nFluid*cfg.Phases {
		return nil, &configCountError{"alpha", nFluid * cfg.Phases, len(alpha)}
	}
	if gridCfg.CellSize < 1.1*cfg.H {
		return nil, &simerr.ConfigError{Field: "cell_size", Reason: "must be >= 1.1*h"}
	}

	s := &System{
		Cfg:      cfg,
		Grid:     gridCfg,
		Kernel:   kernel.New(cfg.H),
		NFluid:   nFluid,
		NWall:    nWall,
		Pos:      pos,
		Vel:      make([]vec3.V, nFluid),
		Acc:      make([]vec3.V, nFluid),
		Alpha:    append([]float64(nil), alpha...),
		Drift:    make([]vec3.V, nFluid*cfg.Phases),
		RhoMix:   make([]float64, nFluid),
		RhoBar:   make([]float64, nFluid),
		Pressure: make([]float64, nFluid),
		grid:     grid.New(gridCfg),
		log:      log,
	}
	return s, nil
}

type configCountError struct {
	field    string
	want, got int
}

func (e *configCountError) Error() string {
	return fmt.Sprintf("sim: %s: inconsistent particle count (want %d, got %d)", e.field, e.want, e.got)
}

// parallelFor is the bulk-synchronous pass primitive every kernel method
// below is built from: one call completes only once every index has run,
// which is the happens-before barrier spec.md §5 requires between kernels.
func parallelFor(start, end int, f func(int)) { workers.For(start, end, f) }
