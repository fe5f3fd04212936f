// Package grid implements the uniform spatial index described in spec §4.2:
// a fixed-capacity bucket grid built fresh every substep, producing an
// explicit per-particle neighbor list. It generalizes the teacher's
// map-based 2D spatial.Grid (_examples/zzstoatzz-fluids/spatial/grid.go) to
// 3D fixed-capacity arrays with atomic append, which is what spec.md §4.2/§5
// actually call for: overflow must be a detectable, countable event, which
// a Go map-of-slices cannot give you cheaply under concurrent insert.
package grid

import (
	"fmt"
	"sync/atomic"

	"mixfluid/vec3"
)

// Config mirrors the spatial-index entities of spec.md §3/§6: cell side,
// per-cell bucket capacity S_cell, and per-particle neighbor capacity N_nei.
type Config struct {
	CellSize float64
	Bound    vec3.V
	SCell    int
	NNei     int
}

// Grid is rebuilt every substep by Build. It is read-only to every kernel
// downstream of neighbor_search within that substep (spec.md §5).
type Grid struct {
	cfg  Config
	dims [3]int32
	// margin absorbs the -0.5 cell bias and edge particles sitting exactly
	// on a boundary, per spec.md §3's note about the 1.1 slack.
	margin int32

	cellCount   []int32
	cellMembers []int32

	neiCount []int32
	nei      []int32

	cellOverflows int32
	neiOverflows  int32
}

// New builds an empty Grid sized for the given domain and bucket capacities.
func New(cfg Config) *Grid {
	const margin = 2
	dims := [3]int32{
		int32(cfg.Bound.X/cfg.CellSize) + 2*margin,
		int32(cfg.Bound.Y/cfg.CellSize) + 2*margin,
		int32(cfg.Bound.Z/cfg.CellSize) + 2*margin,
	}
	ncells := int(dims[0]) * int(dims[1]) * int(dims[2])
	return &Grid{
		cfg:         cfg,
		dims:        dims,
		margin:      margin,
		cellCount:   make([]int32, ncells),
		cellMembers: make([]int32, ncells*cfg.SCell),
	}
}

func (g *Grid) cellOf(p vec3.V) (ix, iy, iz int32, ok bool) {
	// floor(pos/c - 0.5): the -0.5 bias aligns the search with the
	// traditional 3^D stencil, per spec.md §3.
	ix = int32(floor(p.X/g.cfg.CellSize-0.5)) + g.margin
	iy = int32(floor(p.Y/g.cfg.CellSize-0.5)) + g.margin
	iz = int32(floor(p.Z/g.cfg.CellSize-0.5)) + g.margin
	if ix < 0 || iy < 0 || iz < 0 || ix >= g.dims[0] || iy >= g.dims[1] || iz >= g.dims[2] {
		return 0, 0, 0, false
	}
	return ix, iy, iz, true
}

func floor(x float64) float64 {
	i := int64(x)
	if x < 0 && float64(i) != x {
		i--
	}
	return float64(i)
}

func (g *Grid) cellLinear(ix, iy, iz int32) int32 {
	return (ix*g.dims[1]+iy)*g.dims[2] + iz
}

// OverflowCounts reports how many particle-cell insertions and how many
// neighbor appends were dropped on the last Build, for the IndexOverflow
// error path in spec.md §7.
func (g *Grid) OverflowCounts() (cell, nei int) {
	return int(atomic.LoadInt32(&g.cellOverflows)), int(atomic.LoadInt32(&g.neiOverflows))
}

// Build runs the full two-phase algorithm of spec.md §4.2: bucket every
// particle (fluid and wall) into its cell, then for every fluid particle
// scan the 27-cell stencil centered on it and record all neighbors within
// 1.1*h. Both passes run through the caller-supplied parallelFor, the same
// way the physics kernels do.
func (g *Grid) Build(pos []vec3.V, nFluid int, h float64, parallelFor func(start, end int, f func(int))) {
	for i := range g.cellCount {
		g.cellCount[i] = 0
	}
	if cap(g.neiCount) < nFluid {
		g.neiCount = make([]int32, nFluid)
		g.nei = make([]int32, nFluid*g.cfg.NNei)
	} else {
		g.neiCount = g.neiCount[:nFluid]
		g.nei = g.nei[:nFluid*g.cfg.NNei]
	}
	atomic.StoreInt32(&g.cellOverflows, 0)
	atomic.StoreInt32(&g.neiOverflows, 0)

	parallelFor(0, len(pos), func(i int) {
		ix, iy, iz, ok := g.cellOf(pos[i])
		if !ok {
			atomic.AddInt32(&g.cellOverflows, 1)
			return
		}
		cell := g.cellLinear(ix, iy, iz)
		slot := atomic.AddInt32(&g.cellCount[cell], 1) - 1
		if slot >= int32(g.cfg.SCell) {
			atomic.AddInt32(&g.cellOverflows, 1)
			return
		}
		g.cellMembers[int(cell)*g.cfg.SCell+int(slot)] = int32(i)
	})

	cutoff := 1.1 * h
	cutoffSq := cutoff * cutoff

	parallelFor(0, nFluid, func(i int) {
		ix, iy, iz, ok := g.cellOf(pos[i])
		if !ok {
			return
		}
		count := int32(0)
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				for dz := int32(-1); dz <= 1; dz++ {
					cx, cy, cz := ix+dx, iy+dy, iz+dz
					if cx < 0 || cy < 0 || cz < 0 || cx >= g.dims[0] || cy >= g.dims[1] || cz >= g.dims[2] {
						continue
					}
					cell := g.cellLinear(cx, cy, cz)
					n := g.cellCount[cell]
					if n > int32(g.cfg.SCell) {
						n = int32(g.cfg.SCell)
					}
					base := int(cell) * g.cfg.SCell
					for s := int32(0); s < n; s++ {
						j := g.cellMembers[base+int(s)]
						if int(j) == i {
							continue
						}
						d := pos[i].Sub(pos[int(j)])
						if d.LengthSq() >= cutoffSq {
							continue
						}
						if count >= int32(g.cfg.NNei) {
							atomic.AddInt32(&g.neiOverflows, 1)
							continue
						}
						g.nei[i*g.cfg.NNei+int(count)] = j
						count++
					}
				}
			}
		}
		g.neiCount[i] = count
	})
}

// Neighbors returns the neighbor index slice for fluid particle i, valid
// until the next Build.
func (g *Grid) Neighbors(i int) []int32 {
	n := g.neiCount[i]
	base := i * g.cfg.NNei
	return g.nei[base : base+int(n)]
}

func (c Config) String() string {
	return fmt.Sprintf("cellSize=%.4g bound=%v sCell=%d nNei=%d", c.CellSize, c.Bound, c.SCell, c.NNei)
}
