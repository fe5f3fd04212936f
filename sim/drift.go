package sim

import "mixfluid/vec3"

// CalDrift implements cal_drift of spec.md §4.4: for each fluid particle
// and phase, predicts the drift velocity of that phase relative to the
// mixture. Reads acc from the previous substep, per spec.md §9's
// acceleration-lag note; do not reorder this ahead of Advect.
func (s *System) CalDrift() {
	parallelFor(0, s.NFluid, func(i int) {
		neighbors := s.grid.Neighbors(i)

		// pk(x, ph) is p_ph(x): alpha-weighted in the miscible regime,
		// otherwise the bare mixture pressure, per spec.md §4.4.
		pk := func(x, ph int) float64 {
			if s.Cfg.Miscible {
				return s.Alpha[s.alphaIdx(x, ph)] * s.Pressure[x]
			}
			return s.Pressure[x]
		}

		// gradP[ph] is the SPH pressure gradient for phase ph restricted to
		// fluid neighbors, computed once per phase and reused for both the
		// first-phase (k==ph) gradient and the second_term sum.
		gradP := make([]vec3.V, s.Cfg.Phases)
		for ph := 0; ph < s.Cfg.Phases; ph++ {
			grad := vec3.V{}
			for _, jn := range neighbors {
				j := int(jn)
				if s.IsWall(j) {
					continue
				}
				rij := s.Pos[i].Sub(s.Pos[j])
				r := rij.Length()
				gw := s.Kernel.GradW(rij, r)
				if gw == (vec3.V{}) {
					continue
				}
				coeff := s.RhoMix[j] * (pk(j, ph) - pk(i, ph)) / s.RhoBar[j]
				grad = grad.Add(gw.Scale(coeff))
			}
			gradP[ph] = grad
		}

		secondTermAll := vec3.V{}
		for ph := 0; ph < s.Cfg.Phases; ph++ {
			weight := s.Alpha[s.alphaIdx(i, ph)] * s.Cfg.RhoRest[ph]
			secondTermAll = secondTermAll.Add(gradP[ph].Scale(weight))
		}
		secondTermAll = secondTermAll.Scale(1 / s.RhoMix[i])

		gma := s.Cfg.Gravity.Sub(s.Acc[i])

		weightedSq := 0.0
		for ph := 0; ph < s.Cfg.Phases; ph++ {
			rp := s.Cfg.RhoRest[ph]
			weightedSq += s.Alpha[s.alphaIdx(i, ph)] * rp * rp
		}
		weightedSq /= s.RhoMix[i]

		for k := 0; k < s.Cfg.Phases; k++ {
			firstTerm := gma.Scale(s.Cfg.Tau * (s.Cfg.RhoRest[k] - weightedSq))

			secondTerm := secondTermAll
			// The self-phase re-add is gated by spec.md §9's literal
			// ph==i bug: i is the particle index, not the phase index, so
			// this branch is taken only when the particle index happens
			// to equal the phase index, which is almost never true for
			// fluid particles beyond the first P of them.
			if s.Cfg.FixDriftSelfPhase {
				if k < s.Cfg.Phases {
					weight := s.Alpha[s.alphaIdx(i, k)] * s.Cfg.RhoRest[k] / s.RhoMix[i]
					secondTerm = secondTerm.Add(gradP[k].Scale(weight))
				}
			} else if k == i {
				weight := s.Alpha[s.alphaIdx(i, k)] * s.Cfg.RhoRest[k] / s.RhoMix[i]
				secondTerm = secondTerm.Add(gradP[k].Scale(weight))
			}

			s.Drift[s.alphaIdx(i, k)] = firstTerm.Sub(secondTerm.Scale(s.Cfg.Tau))
		}
	})
}
