package sim

import "math"

// CalPress implements cal_press of spec.md §4.3: for every fluid particle,
// compute the mixture rest density from the current volume fractions, the
// SPH-interpolated density over the neighbor list (wall neighbors
// contribute their mirrored phase-0 mass per spec.md §4.3's wall
// substitution rule), and the resulting pressure from the configured
// equation of state.
func (s *System) CalPress() {
	parallelFor(0, s.NFluid, func(i int) {
		rhoM := 0.0
		for k := 0; k < s.Cfg.Phases; k++ {
			rhoM += s.Alpha[s.alphaIdx(i, k)] * s.Cfg.RhoRest[k]
		}
		s.RhoMix[i] = rhoM

		rhoBar := 0.0
		for _, jn := range s.grid.Neighbors(i) {
			j := int(jn)
			d := s.Pos[i].Sub(s.Pos[j])
			w := s.Kernel.W(d.Length())
			if w == 0 {
				continue
			}
			var mj float64
			if s.IsWall(j) {
				// Wall particles carry no volume-fraction state; per spec.md
				// §4.3 they are substituted as phase 0 at unit volume
				// fraction so the boundary still resists compression.
				mj = s.Cfg.RhoRest[0]
			} else {
				mjm := 0.0
				for k := 0; k < s.Cfg.Phases; k++ {
					mjm += s.Alpha[s.alphaIdx(j, k)] * s.Cfg.RhoRest[k]
				}
				mj = mjm
			}
			rhoBar += mj * w
		}
		if rhoBar < 1e-6 {
			// Floor protects early-step isolated particles (empty neighbor
			// list) and the later divisions by RhoBar in CalDrift, AdvAlpha
			// and CalAcc.
			rhoBar = rhoM
		}
		s.RhoBar[i] = rhoBar
		s.Pressure[i] = s.pressureOf(rhoBar, rhoM)
	})
}

// pressureOf evaluates the configured equation of state, per spec.md §4.3:
// Tait: p = k1*rhoMix*((max(rhoBar,rhoMix)/rhoMix)^k2 - 1)/k2.
// Linear: p = k3*(rhoBar-rhoMix).
func (s *System) pressureOf(rhoBar, rhoMix float64) float64 {
	switch s.Cfg.EOS {
	case Tait:
		ratio := math.Max(rhoBar, rhoMix) / rhoMix
		return s.Cfg.K1 * rhoMix * (math.Pow(ratio, s.Cfg.K2) - 1) / s.Cfg.K2
	default:
		return s.Cfg.K3 * (rhoBar - rhoMix)
	}
}

// pressureCorrection implements the per-phase term of check_alpha's
// pressure-compensation sum in spec.md §4.5, isolated here because it
// shares the EOS constants and branch with pressureOf.
func (s *System) pressureCorrection(rhoBar, rhoMix, rhoRestPh, deltaAlpha float64) float64 {
	switch s.Cfg.EOS {
	case Tait:
		ratio := rhoBar / rhoMix
		return rhoRestPh * ((s.Cfg.K2-1)*math.Pow(ratio, s.Cfg.K2) + 1) * deltaAlpha * s.Cfg.K1 / s.Cfg.K2
	default:
		return rhoRestPh * deltaAlpha * s.Cfg.K3
	}
}
