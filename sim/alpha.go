package sim

// AdvAlpha implements adv_alpha of spec.md §4.5: advances every fluid
// particle's volume fractions by the convective and inter-phase drift
// transport terms, explicit Euler.
func (s *System) AdvAlpha() {
	parallelFor(0, s.NFluid, func(i int) {
		neighbors := s.grid.Neighbors(i)
		for k := 0; k < s.Cfg.Phases; k++ {
			aik := s.Alpha[s.alphaIdx(i, k)]
			driftIK := s.Drift[s.alphaIdx(i, k)]

			sum := 0.0
			for _, jn := range neighbors {
				j := int(jn)
				if s.IsWall(j) {
					continue
				}
				rij := s.Pos[i].Sub(s.Pos[j])
				gw := s.Kernel.GradW(rij, rij.Length())

				ajk := s.Alpha[s.alphaIdx(j, k)]
				driftJK := s.Drift[s.alphaIdx(j, k)]

				vji := s.Vel[j].Sub(s.Vel[i])
				convective := s.RhoMix[j] * (aik + ajk) / (2 * s.RhoBar[j]) * vji.Dot(gw)

				flux := driftJK.Scale(ajk).Add(driftIK.Scale(aik))
				transport := s.RhoMix[j] / s.RhoBar[j] * flux.Dot(gw)

				sum += convective + transport
			}
			s.Alpha[s.alphaIdx(i, k)] = aik - sum*s.Cfg.Dt
		}
	})
}

// CheckAlpha implements check_alpha of spec.md §4.5: renormalizes the
// volume fractions of every fluid particle and injects the matching
// pressure correction for the resulting mass change.
func (s *System) CheckAlpha() {
	parallelFor(0, s.NFluid, func(i int) {
		base := s.alphaIdx(i, 0)
		row := s.Alpha[base : base+s.Cfg.Phases]

		before := make([]float64, s.Cfg.Phases)
		copy(before, row)

		if s.Cfg.ReproducePhaseOneVestige && s.Cfg.Phases > 1 {
			// The 3D variant of the source force-zeros phase 1 before
			// normalizing, which silently disables a second phase; spec.md
			// §9 treats this as a debugging vestige, not intended
			// behavior, so it is opt-in rather than the default.
			row[1] = 0
		}

		tot := 0.0
		for _, a := range row {
			if a > 0 {
				tot += a
			}
		}

		if tot < 1e-6 {
			for ph := range row {
				row[ph] = 1.0 / float64(s.Cfg.Phases)
			}
		} else {
			for ph := range row {
				if row[ph] < 0 {
					row[ph] = 0
				} else {
					row[ph] /= tot
				}
			}
		}

		correction := 0.0
		for ph := range row {
			delta := row[ph] - before[ph]
			correction += s.pressureCorrection(s.RhoBar[i], s.RhoMix[i], s.Cfg.RhoRest[ph], delta)
		}
		s.Pressure[i] -= correction
	})
}
