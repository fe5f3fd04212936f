package sim

import (
	"math"
	"testing"

	"mixfluid/grid"
	"mixfluid/vec3"
)

func newTestSystem(t *testing.T, phases int, alpha []float64) *System {
	t.Helper()
	cfg := Config{
		Phases:  phases,
		RhoRest: make([]float64, phases),
		H:       0.1,
		Dt:      0.001,
		Damp:    0.98,
		Tau:     1e-8,
		EOS:     Tait,
		K1:      200,
		K2:      7,
		Gravity: vec3.V{Z: -9.8},
		Bound:   vec3.V{X: 10, Y: 10, Z: 10},
		Epsilon: 0.01,
	}
	for k := range cfg.RhoRest {
		cfg.RhoRest[k] = 1000
	}
	gridCfg := grid.Config{CellSize: 0.12, Bound: cfg.Bound, SCell: 16, NNei: 16}
	pos := []vec3.V{{X: 5, Y: 5, Z: 5}}
	s, err := New(cfg, gridCfg, pos, alpha, 1, 0, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	s.RhoBar[0] = 1000
	s.RhoMix[0] = 1000
	return s
}

// TestCheckAlphaNormalizes is scenario S3 of spec.md §8.
func TestCheckAlphaNormalizes(t *testing.T) {
	s := newTestSystem(t, 2, []float64{0.8, 0.5})
	pBefore := s.Pressure[0]
	s.CheckAlpha()

	wantSum := 0.8 + 0.5
	want0 := 0.8 / wantSum
	want1 := 0.5 / wantSum
	if math.Abs(s.Alpha[0]-want0) > 1e-9 || math.Abs(s.Alpha[1]-want1) > 1e-9 {
		t.Fatalf("alpha = (%v, %v), want (%v, %v)", s.Alpha[0], s.Alpha[1], want0, want1)
	}
	correction := pBefore - s.Pressure[0]
	if math.IsNaN(correction) {
		t.Fatal("pressure correction is NaN")
	}
}

// TestCheckAlphaClampsNegative is scenario S4 of spec.md §8.
func TestCheckAlphaClampsNegative(t *testing.T) {
	s := newTestSystem(t, 2, []float64{1.2, -0.2})
	s.CheckAlpha()
	if s.Alpha[0] != 1 || s.Alpha[1] != 0 {
		t.Fatalf("alpha = (%v, %v), want (1, 0)", s.Alpha[0], s.Alpha[1])
	}
}

// TestCheckAlphaAllZeroCollapse is scenario S5 of spec.md §8.
func TestCheckAlphaAllZeroCollapse(t *testing.T) {
	s := newTestSystem(t, 2, []float64{0, 0})
	s.CheckAlpha()
	if s.Alpha[0] != 0.5 || s.Alpha[1] != 0.5 {
		t.Fatalf("alpha = (%v, %v), want (0.5, 0.5)", s.Alpha[0], s.Alpha[1])
	}
}

// TestCheckAlphaIdempotent is invariant 7 of spec.md §8: a second
// normalization pass changes nothing up to round-off.
func TestCheckAlphaIdempotent(t *testing.T) {
	s := newTestSystem(t, 2, []float64{0.8, 0.5})
	s.CheckAlpha()
	a0, a1 := s.Alpha[0], s.Alpha[1]
	s.CheckAlpha()
	if math.Abs(s.Alpha[0]-a0) > 1e-12 || math.Abs(s.Alpha[1]-a1) > 1e-12 {
		t.Fatalf("second CheckAlpha changed alpha: (%v,%v) -> (%v,%v)", a0, a1, s.Alpha[0], s.Alpha[1])
	}
}

// TestCheckAlphaInvariants checks invariants 1 and 2 of spec.md §8 over a
// spread of inputs.
func TestCheckAlphaInvariants(t *testing.T) {
	cases := [][]float64{
		{0.3, 0.3}, {2.0, 0.1}, {0, 0}, {-1, -1}, {0.5, 0.5},
	}
	for _, alpha := range cases {
		s := newTestSystem(t, 2, alpha)
		s.CheckAlpha()
		sum := 0.0
		for _, a := range s.Alpha {
			if a < -1e-9 || a > 1+1e-9 {
				t.Fatalf("input %v: alpha %v out of [0,1]", alpha, a)
			}
			sum += a
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Fatalf("input %v: sum = %v, want 1", alpha, sum)
		}
	}
}
