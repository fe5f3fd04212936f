package grid

import (
	"testing"

	"mixfluid/vec3"
	"mixfluid/workers"
)

func serialFor(start, end int, f func(int)) {
	for i := start; i < end; i++ {
		f(i)
	}
}

// TestNeighborCompleteness is scenario S6 of spec.md §8: three particles at
// distances {0.5h, 1.0h, 1.2h} from particle 0; nei(0) must contain exactly
// the first two.
func TestNeighborCompleteness(t *testing.T) {
	h := 1.0
	g := New(Config{CellSize: 1.2 * h, Bound: vec3.V{X: 20, Y: 20, Z: 20}, SCell: 16, NNei: 16})
	pos := []vec3.V{
		{X: 10, Y: 10, Z: 10},
		{X: 10.5, Y: 10, Z: 10},
		{X: 11.0, Y: 10, Z: 10},
		{X: 11.2, Y: 10, Z: 10},
	}
	g.Build(pos, len(pos), h, serialFor)

	nei := g.Neighbors(0)
	got := map[int32]bool{}
	for _, j := range nei {
		got[j] = true
	}
	if !got[1] || !got[2] {
		t.Fatalf("nei(0) = %v, want to contain 1 and 2", nei)
	}
	if got[3] {
		t.Fatalf("nei(0) = %v, want to exclude particle 3 (distance 1.2h >= 1.1h)", nei)
	}
	if len(nei) != 2 {
		t.Fatalf("nei(0) has %d entries, want exactly 2", len(nei))
	}
}

// TestNeighborSymmetryAgainstBruteForce checks invariant 5 of spec.md §8
// against a brute-force O(n^2) neighbor computation over a random cloud.
func TestNeighborSymmetryAgainstBruteForce(t *testing.T) {
	h := 2.0
	bound := vec3.V{X: 30, Y: 30, Z: 30}
	g := New(Config{CellSize: 1.1 * h, Bound: bound, SCell: 64, NNei: 128})

	pos := make([]vec3.V, 200)
	seed := uint64(12345)
	next := func() float64 {
		seed = seed*6364136223846793005 + 1442695040888963407
		return float64(seed>>11) / (1 << 53)
	}
	for i := range pos {
		pos[i] = vec3.V{X: next() * bound.X, Y: next() * bound.Y, Z: next() * bound.Z}
	}
	g.Build(pos, len(pos), h, serialFor)

	cutoffSq := (1.1 * h) * (1.1 * h)
	for i := 0; i < len(pos); i++ {
		nei := map[int32]bool{}
		for _, j := range g.Neighbors(i) {
			nei[j] = true
		}
		for j := 0; j < len(pos); j++ {
			if i == j {
				continue
			}
			if pos[i].Sub(pos[j]).LengthSq() < cutoffSq {
				if !nei[int32(j)] {
					t.Fatalf("particle %d missing brute-force neighbor %d", i, j)
				}
			}
		}
	}
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	h := 1.5
	bound := vec3.V{X: 20, Y: 20, Z: 20}
	cfg := Config{CellSize: 1.1 * h, Bound: bound, SCell: 64, NNei: 64}

	pos := make([]vec3.V, 300)
	seed := uint64(999)
	next := func() float64 {
		seed = seed*6364136223846793005 + 1442695040888963407
		return float64(seed>>11) / (1 << 53)
	}
	for i := range pos {
		pos[i] = vec3.V{X: next() * bound.X, Y: next() * bound.Y, Z: next() * bound.Z}
	}

	gSerial := New(cfg)
	gSerial.Build(pos, len(pos), h, serialFor)

	workers.SetConfig(workers.Config{NumWorkers: 4, MinimumBatchSize: 1})
	defer workers.SetConfig(workers.DefaultConfig())
	gParallel := New(cfg)
	gParallel.Build(pos, len(pos), h, workers.For)

	for i := range pos {
		a := map[int32]bool{}
		for _, j := range gSerial.Neighbors(i) {
			a[j] = true
		}
		b := gParallel.Neighbors(i)
		if len(b) != len(a) {
			t.Fatalf("particle %d: serial has %d neighbors, parallel has %d", i, len(a), len(b))
		}
		for _, j := range b {
			if !a[j] {
				t.Fatalf("particle %d: parallel neighbor %d not found by serial build", i, j)
			}
		}
	}
}
