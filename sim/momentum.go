package sim

import "mixfluid/vec3"

// CalAcc implements cal_acc of spec.md §4.6: gravity plus the pressure
// gradient (with the wall mirror-pressure substitution) plus the mixture
// stress divergence Tdm.
func (s *System) CalAcc() {
	parallelFor(0, s.NFluid, func(i int) {
		acc := s.Cfg.Gravity
		gradP := vec3.V{}
		tdm := vec3.V{}

		pi := s.Pressure[i]

		for _, jn := range s.grid.Neighbors(i) {
			j := int(jn)
			rij := s.Pos[i].Sub(s.Pos[j])
			gw := s.Kernel.GradW(rij, rij.Length())
			if gw == (vec3.V{}) {
				continue
			}

			if s.IsWall(j) {
				// Mirror-pressure rule of spec.md §4.6: the wall borrows the
				// querying particle's own pressure, reducing rho0[0]*(2*p_i)
				// /(2*rho0[0]) to p_i.
				gradP = gradP.Add(gw.Scale(pi))
				continue
			}

			pj := s.Pressure[j]
			gradP = gradP.Add(gw.Scale(s.RhoMix[j] * (pi + pj) / (2 * s.RhoBar[j])))

			temp := vec3.V{}
			for k := 0; k < s.Cfg.Phases; k++ {
				driftI := s.Drift[s.alphaIdx(i, k)]
				driftJ := s.Drift[s.alphaIdx(j, k)]
				alphaIK := s.Alpha[s.alphaIdx(i, k)]
				alphaJK := s.Alpha[s.alphaIdx(j, k)]

				// T_k(x) := alpha_{x,k} * drift_{x,k} (x) drift_{x,k} . gradW,
				// the outer product contracted with the gradient, per
				// spec.md §4.6.
				tkJ := driftJ.Scale(alphaJK * driftJ.Dot(gw))
				tkI := driftI.Scale(alphaIK * driftI.Dot(gw))

				temp = temp.Add(tkI.Add(tkJ).Scale(s.Cfg.RhoRest[k]))
			}
			tdm = tdm.Sub(temp.Scale(s.RhoMix[j] / s.RhoBar[j]))
		}

		acc = acc.Add(tdm.Sub(gradP).Scale(1 / s.RhoMix[i]))
		s.Acc[i] = acc
	})
}

// Advect implements advect of spec.md §4.6: symplectic Euler integration
// with damping, followed by boundary reflection.
func (s *System) Advect() {
	eps := s.Cfg.Epsilon
	bound := s.Cfg.Bound
	parallelFor(0, s.NFluid, func(i int) {
		vel := s.Vel[i].Scale(s.Cfg.Damp).Add(s.Acc[i].Scale(s.Cfg.Dt))
		pos := s.Pos[i].Add(vel.Scale(s.Cfg.Dt))

		pos, vel = reflect(pos, vel, eps, bound)

		s.Vel[i] = vel
		s.Pos[i] = pos
	})
}

// reflect implements boundary(i) of spec.md §4.6: clamps a position that
// has exceeded the box at margin eps and inverts the outward-moving
// velocity component with coefficient -0.999. The velocity-direction test
// prevents re-reflecting a particle already moving back inward.
func reflect(pos, vel vec3.V, eps float64, bound vec3.V) (vec3.V, vec3.V) {
	const restitution = -0.999

	clampAxis := func(p, v, lo, hi float64) (float64, float64) {
		if p < lo {
			p = lo
			if v < 0 {
				v *= restitution
			}
		} else if p > hi {
			p = hi
			if v > 0 {
				v *= restitution
			}
		}
		return p, v
	}

	x, vx := clampAxis(pos.X, vel.X, eps, bound.X-eps)
	y, vy := clampAxis(pos.Y, vel.Y, eps, bound.Y-eps)
	z, vz := clampAxis(pos.Z, vel.Z, eps, bound.Z-eps)

	return vec3.V{X: x, Y: y, Z: z}, vec3.V{X: vx, Y: vy, Z: vz}
}
