package sim

import (
	"math"

	"mixfluid/simerr"
)

// Debug gates whether an IndexOverflow aborts the step (debug builds) or is
// reduced to a one-shot warning (release), per spec.md §7.
var Debug = false

// Step runs one substep of the fixed pipeline in spec.md §2:
//
//	neighbor_search -> cal_press -> cal_drift -> adv_alpha -> check_alpha -> cal_acc -> advect
//
// Each call is a strict happens-before barrier across all seven kernels,
// per spec.md §5. Returns the first fatal error encountered, if any; the
// caller should abort the frame on a non-nil return.
func (s *System) Step() error {
	s.step++

	s.grid.Build(s.Pos, s.NFluid, s.Cfg.H, parallelFor)
	if err := s.checkOverflow(); err != nil {
		return err
	}

	s.CalPress()
	s.CalDrift()
	s.AdvAlpha()
	s.CheckAlpha()

	if err := s.checkInvariants(); err != nil {
		return err
	}

	s.CalAcc()
	s.Advect()

	return nil
}

func (s *System) checkOverflow() error {
	cell, nei := s.grid.OverflowCounts()
	if cell == 0 && nei == 0 {
		return nil
	}
	err := &simerr.IndexOverflow{Step: s.step, CellDropped: cell, NeiDropped: nei, Debug: Debug}
	if Debug {
		return err
	}
	if !s.overflowWarned {
		if s.log != nil {
			s.log.WithFields(map[string]interface{}{
				"step":         s.step,
				"cell_dropped": cell,
				"nei_dropped":  nei,
			}).Warn("neighbor index overflow, degrading silently from here on")
		}
		s.overflowWarned = true
	}
	return nil
}

// checkInvariants implements the post-check_alpha invariants of spec.md §7:
// alpha sums to 1, mixture density positive, no NaN positions.
func (s *System) checkInvariants() error {
	const alphaEps = 1e-6
	for i := 0; i < s.NFluid; i++ {
		base := s.alphaIdx(i, 0)
		sum := 0.0
		for k := 0; k < s.Cfg.Phases; k++ {
			sum += s.Alpha[base+k]
		}
		if math.Abs(sum-1) > alphaEps {
			return &simerr.DomainInvariantFailure{
				Step: s.step, Particle: i,
				Invariant: "alpha_sum", Detail: "sum deviates from 1",
			}
		}
		if s.RhoMix[i] <= 0 {
			return &simerr.DomainInvariantFailure{
				Step: s.step, Particle: i,
				Invariant: "rho_mix_positive", Detail: "mixture density non-positive",
			}
		}
		if s.Pos[i].IsNaN() {
			return &simerr.DomainInvariantFailure{
				Step: s.step, Particle: i,
				Invariant: "position_finite", Detail: "NaN in position",
			}
		}
	}
	return nil
}
