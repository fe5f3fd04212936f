package sim

import (
	"testing"

	"mixfluid/emit"
	"mixfluid/grid"
	"mixfluid/vec3"
)

// TestRestBlockStaysAtRest is invariant 8 of spec.md §8: with gravity
// zero, tau zero, single phase, a uniform block of particles at rest
// density stays at rest.
func TestRestBlockStaysAtRest(t *testing.T) {
	bound := vec3.V{X: 4, Y: 4, Z: 4}
	spacing := 0.15
	h := 1.2 * spacing

	layout := emit.Layout{
		Phases: 1,
		Blocks: []emit.BlockSpec{
			{Phase: 0, Min: vec3.V{X: 1, Y: 1, Z: 1}, Max: vec3.V{X: 2, Y: 2, Z: 2}, Spacing: spacing},
		},
	}
	res, err := emit.Emit(layout)
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}

	cfg := Config{
		Phases:  1,
		RhoRest: []float64{1000},
		H:       h,
		Dt:      0.0005,
		Damp:    1.0,
		Tau:     0,
		EOS:     Tait,
		K1:      200,
		K2:      7,
		Gravity: vec3.V{},
		Bound:   bound,
		Epsilon: 0.05,
	}
	gridCfg := grid.Config{CellSize: 1.1 * h, Bound: bound, SCell: 64, NNei: 64}

	s, err := New(cfg, gridCfg, res.Pos, res.Alpha, res.NFluid, res.NWall, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	const substeps = 100
	for i := 0; i < substeps; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("Step %d returned error: %v", i, err)
		}
	}

	maxVel := 0.0
	for _, v := range s.Vel {
		if l := v.Length(); l > maxVel {
			maxVel = l
		}
	}
	if maxVel > 1e-3 {
		t.Fatalf("maxVel = %v after %d substeps, want <= 1e-3", maxVel, substeps)
	}
}

// TestHydrostaticColumnSettles is scenario S1 of spec.md §8. The literal
// scenario is 1000 particles in a 10x10x10 block over 500 substeps; this
// runs a scaled-down column (smaller block, fewer substeps) so it
// executes quickly as a `go test` case while still exercising gravity
// driving the column to pressure equilibrium, per SPEC_FULL.md §8's
// documented allowance for S1/S2.
func TestHydrostaticColumnSettles(t *testing.T) {
	bound := vec3.V{X: 10, Y: 10, Z: 10}
	spacing := 0.2
	h := 1.2 * spacing

	layout := emit.Layout{
		Phases: 1,
		Blocks: []emit.BlockSpec{
			{Phase: 0, Min: vec3.V{X: 1, Y: 1, Z: 1}, Max: vec3.V{X: 3, Y: 3, Z: 3}, Spacing: spacing},
		},
	}
	res, err := emit.Emit(layout)
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}

	cfg := Config{
		Phases:  1,
		RhoRest: []float64{1000},
		H:       h,
		Dt:      0.0005,
		Damp:    0.98,
		Tau:     1e-8,
		EOS:     Tait,
		K1:      200,
		K2:      7,
		Gravity: vec3.V{Z: -9.8},
		Bound:   bound,
		Epsilon: 0.05,
	}
	gridCfg := grid.Config{CellSize: 1.1 * h, Bound: bound, SCell: 64, NNei: 64}

	s, err := New(cfg, gridCfg, res.Pos, res.Alpha, res.NFluid, res.NWall, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	const substeps = 150
	for i := 0; i < substeps; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("Step %d returned error: %v", i, err)
		}
	}

	maxVel := 0.0
	for _, v := range s.Vel {
		if l := v.Length(); l > maxVel {
			maxVel = l
		}
	}
	if maxVel > 0.5 {
		t.Fatalf("maxVel = %v after %d substeps, want <= 0.5", maxVel, substeps)
	}

	// Mean z of the lowest-settling particles should be low in the
	// (rescaled) box, mirroring spec.md §8's "mean z of lowest 100
	// particles <= 3" at this block's proportionally smaller scale.
	zs := make([]float64, s.NFluid)
	for i := range zs {
		zs[i] = s.Pos[i].Z
	}
	sortFloats(zs)
	lowN := s.NFluid / 10
	if lowN < 1 {
		lowN = 1
	}
	sum := 0.0
	for i := 0; i < lowN; i++ {
		sum += zs[i]
	}
	meanLow := sum / float64(lowN)
	if meanLow > 1.5 {
		t.Fatalf("mean z of lowest %d particles = %v, want <= 1.5", lowN, meanLow)
	}
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

// TestOilOverWaterSeparation is scenario S2 of spec.md §8: two equal
// blocks side by side, phase 0 below and phase 1 above, immiscible. The
// center of mass of phase 1 should rise relative to phase 0 over the
// final portion of the run. Scaled down per SPEC_FULL.md §8's documented
// allowance for S1/S2.
func TestOilOverWaterSeparation(t *testing.T) {
	bound := vec3.V{X: 6, Y: 6, Z: 6}
	spacing := 0.2
	h := 1.2 * spacing

	layout := emit.Layout{
		Phases: 2,
		Blocks: []emit.BlockSpec{
			{Phase: 0, Min: vec3.V{X: 1, Y: 1, Z: 1}, Max: vec3.V{X: 3, Y: 3, Z: 2}, Spacing: spacing},
			{Phase: 1, Min: vec3.V{X: 1, Y: 1, Z: 2.2}, Max: vec3.V{X: 3, Y: 3, Z: 3.2}, Spacing: spacing},
		},
	}
	res, err := emit.Emit(layout)
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}

	cfg := Config{
		Phases:   2,
		RhoRest:  []float64{1000, 500},
		H:        h,
		Dt:       0.0005,
		Damp:     0.98,
		Tau:      1e-8,
		EOS:      Tait,
		K1:       200,
		K2:       7,
		Gravity:  vec3.V{Z: -9.8},
		Bound:    bound,
		Epsilon:  0.05,
		Miscible: false,
	}
	gridCfg := grid.Config{CellSize: 1.1 * h, Bound: bound, SCell: 64, NNei: 64}

	s, err := New(cfg, gridCfg, res.Pos, res.Alpha, res.NFluid, res.NWall, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	comSeparation := func() float64 {
		var com0, com1 vec3.V
		var w0, w1 float64
		for i := 0; i < s.NFluid; i++ {
			a0 := s.Alpha[s.alphaIdx(i, 0)]
			a1 := s.Alpha[s.alphaIdx(i, 1)]
			com0 = com0.Add(s.Pos[i].Scale(a0))
			com1 = com1.Add(s.Pos[i].Scale(a1))
			w0 += a0
			w1 += a1
		}
		if w0 < 1e-9 || w1 < 1e-9 {
			return 0
		}
		return com1.Scale(1 / w1).Z - com0.Scale(1 / w0).Z
	}

	const warmupSubsteps = 200
	for i := 0; i < warmupSubsteps; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("warmup step %d returned error: %v", i, err)
		}
	}

	const measuredSubsteps = 50
	separations := make([]float64, 0, measuredSubsteps)
	for i := 0; i < measuredSubsteps; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("measured step %d returned error: %v", i, err)
		}
		separations = append(separations, comSeparation())
	}

	// Monotonic non-decreasing up to a small numerical tolerance, per
	// spec.md §8's "vertical separation is monotonic for the last N
	// substeps."
	const tolerance = 1e-3
	for i := 1; i < len(separations); i++ {
		if separations[i] < separations[i-1]-tolerance {
			t.Fatalf("separation decreased at step %d: %v -> %v", i, separations[i-1], separations[i])
		}
	}
	if separations[len(separations)-1] <= separations[0] {
		t.Fatalf("separation did not increase overall: start %v, end %v", separations[0], separations[len(separations)-1])
	}
}

// TestStepPreservesAlphaInvariant runs a handful of substeps on a small
// two-phase block and checks invariant 1 of spec.md §8 holds throughout.
func TestStepPreservesAlphaInvariant(t *testing.T) {
	bound := vec3.V{X: 4, Y: 4, Z: 4}
	spacing := 0.15
	h := 1.2 * spacing

	layout := emit.Layout{
		Phases: 2,
		Blocks: []emit.BlockSpec{
			{Phase: 0, Min: vec3.V{X: 1, Y: 1, Z: 1}, Max: vec3.V{X: 1.6, Y: 1.6, Z: 1.6}, Spacing: spacing},
			{Phase: 1, Min: vec3.V{X: 1, Y: 1, Z: 2}, Max: vec3.V{X: 1.6, Y: 1.6, Z: 2.6}, Spacing: spacing},
		},
	}
	res, err := emit.Emit(layout)
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}

	cfg := Config{
		Phases:  2,
		RhoRest: []float64{1000, 500},
		H:       h,
		Dt:      0.0005,
		Damp:    0.98,
		Tau:     1e-8,
		EOS:     Tait,
		K1:      200,
		K2:      7,
		Gravity: vec3.V{Z: -9.8},
		Bound:   bound,
		Epsilon: 0.05,
	}
	gridCfg := grid.Config{CellSize: 1.1 * h, Bound: bound, SCell: 64, NNei: 64}

	s, err := New(cfg, gridCfg, res.Pos, res.Alpha, res.NFluid, res.NWall, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	for step := 0; step < 20; step++ {
		if err := s.Step(); err != nil {
			t.Fatalf("Step %d returned error: %v", step, err)
		}
		for i := 0; i < s.NFluid; i++ {
			sum := 0.0
			for k := 0; k < s.Cfg.Phases; k++ {
				sum += s.Alpha[s.alphaIdx(i, k)]
			}
			if sum < 1-1e-5 || sum > 1+1e-5 {
				t.Fatalf("step %d particle %d: alpha sum = %v, want 1", step, i, sum)
			}
		}
	}
}
