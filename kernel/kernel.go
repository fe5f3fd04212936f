// Package kernel implements the radially symmetric SPH smoothing kernels
// used throughout the mixture model: poly6 for interpolated fields and the
// spiky gradient for everywhere a derivative is needed.
package kernel

import (
	"math"

	"mixfluid/vec3"
)

// poly6Coeff and spikyCoeff are precomputed per smoothing length the way
// the teacher's spatial/kernel.go precomputes smoothingVolume and
// smoothingScale, to keep the density/drift/alpha/acc inner loops free of
// repeated math.Pow calls.
type Set struct {
	H           float64
	poly6Coeff  float64
	spikyCoeff  float64
}

// New builds a kernel Set for smoothing length h (3D normalization, per
// spec.md §4.1: the source uses the 3D poly6 normalization regardless of D).
func New(h float64) Set {
	return Set{
		H:          h,
		poly6Coeff: 315.0 / (64.0 * math.Pi * math.Pow(h, 9)),
		spikyCoeff: -45.0 / (math.Pi * math.Pow(h, 6)),
	}
}

// W evaluates the poly6 weight at separation r. Zero outside (0, h).
func (k Set) W(r float64) float64 {
	if r <= 0 || r >= k.H {
		return 0
	}
	hr := k.H*k.H - r*r
	return k.poly6Coeff * hr * hr * hr
}

// GradW evaluates the spiky gradient for the offset rij = pos_i - pos_j,
// with r = |rij|. Returns the zero vector at r=0 and outside (0, h).
func (k Set) GradW(rij vec3.V, r float64) vec3.V {
	if r <= 0 || r >= k.H {
		return vec3.V{}
	}
	hr := k.H - r
	mag := k.spikyCoeff * hr * hr
	return rij.Scale(mag / r)
}
