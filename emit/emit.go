// Package emit is the geometric particle layout collaborator named in
// spec.md §6: a pure function of configuration, producing initial
// positions and volume fractions with no dependency on the sim package's
// runtime state. It is deliberately the simplest possible implementation
// of the external emitter contract (`emit_particles(config) -> (pos,
// alpha, wall_count)`), built the way the teacher lays out initial
// conditions in simulation/initialization.go: dense nested loops over a
// lattice, no RNG dependency for the block layout itself.
package emit

import (
	"mixfluid/simerr"
	"mixfluid/vec3"
)

// BlockSpec describes one axis-aligned block of fluid particles of a
// single phase, packed on a regular lattice at Spacing.
type BlockSpec struct {
	Phase    int
	Min, Max vec3.V
	Spacing  float64
}

// Layout is the emitter's input: one or more fluid blocks plus the
// domain's wall layout, matching spec.md §6's particle_count/wall_layout
// keys generalized to an explicit block list so S1/S2-style scenarios are
// expressible directly.
type Layout struct {
	Phases  int
	Blocks  []BlockSpec
	Bound   vec3.V
	WallGap float64 // lattice spacing for the wall shell
	Walls   bool    // emit a box wall shell at the domain boundary
}

// Result is the emitter's output, matching spec.md §6's
// `(pos[N], alpha[N_f,P], wall_count)` contract.
type Result struct {
	Pos      []vec3.V
	Alpha    []float64 // row-major [NFluid, Phases]
	NFluid   int
	NWall    int
}

// Emit lays out fluid particles block by block, then a wall shell if
// requested, and validates that wall indices end up as the contiguous
// suffix [NFluid, N) spec.md §6 requires of the core's input.
func Emit(l Layout) (Result, error) {
	var pos []vec3.V
	var alphaRows [][]float64

	for _, b := range l.Blocks {
		blockPos, blockAlpha := emitBlock(b, l.Phases)
		pos = append(pos, blockPos...)
		alphaRows = append(alphaRows, blockAlpha...)
	}
	nFluid := len(pos)

	var nWall int
	if l.Walls {
		wallPos := emitWallShell(l.Bound, l.WallGap)
		pos = append(pos, wallPos...)
		nWall = len(wallPos)
	}

	if nFluid+nWall != len(pos) {
		return Result{}, &simerr.ConfigError{Field: "emit", Reason: "wall indices are not the contiguous suffix"}
	}

	alpha := make([]float64, 0, nFluid*l.Phases)
	for _, row := range alphaRows {
		alpha = append(alpha, row...)
	}

	return Result{Pos: pos, Alpha: alpha, NFluid: nFluid, NWall: nWall}, nil
}

func emitBlock(b BlockSpec, phases int) ([]vec3.V, [][]float64) {
	var pos []vec3.V
	var alpha [][]float64

	for x := b.Min.X; x <= b.Max.X+1e-9; x += b.Spacing {
		for y := b.Min.Y; y <= b.Max.Y+1e-9; y += b.Spacing {
			for z := b.Min.Z; z <= b.Max.Z+1e-9; z += b.Spacing {
				pos = append(pos, vec3.V{X: x, Y: y, Z: z})
				row := make([]float64, phases)
				row[b.Phase] = 1.0
				alpha = append(alpha, row)
			}
		}
	}
	return pos, alpha
}

// emitWallShell places a single layer of static boundary particles on the
// six faces of the domain box, spaced by gap.
func emitWallShell(bound vec3.V, gap float64) []vec3.V {
	var pos []vec3.V
	add := func(p vec3.V) { pos = append(pos, p) }

	for x := 0.0; x <= bound.X+1e-9; x += gap {
		for y := 0.0; y <= bound.Y+1e-9; y += gap {
			add(vec3.V{X: x, Y: y, Z: 0})
			add(vec3.V{X: x, Y: y, Z: bound.Z})
		}
	}
	for x := 0.0; x <= bound.X+1e-9; x += gap {
		for z := gap; z < bound.Z-1e-9; z += gap {
			add(vec3.V{X: x, Y: 0, Z: z})
			add(vec3.V{X: x, Y: bound.Y, Z: z})
		}
	}
	for y := gap; y < bound.Y-1e-9; y += gap {
		for z := gap; z < bound.Z-1e-9; z += gap {
			add(vec3.V{X: 0, Y: y, Z: z})
			add(vec3.V{X: bound.X, Y: y, Z: z})
		}
	}
	return pos
}
