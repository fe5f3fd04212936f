// Package vec3 implements the small 3D vector type shared by the grid,
// kernel, and sim packages.
package vec3

import "math"

// V is a position, velocity, acceleration, or drift vector in 3-space.
type V struct {
	X, Y, Z float64
}

func (a V) Add(b V) V { return V{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a V) Sub(b V) V { return V{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a V) Scale(s float64) V { return V{a.X * s, a.Y * s, a.Z * s} }

func (a V) Dot(b V) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a V) LengthSq() float64 { return a.X*a.X + a.Y*a.Y + a.Z*a.Z }
func (a V) Length() float64   { return math.Sqrt(a.LengthSq()) }

// Unit returns a normalized by its own length, or the zero vector if a is
// shorter than eps.
func (a V) Unit(eps float64) V {
	l := a.Length()
	if l < eps {
		return V{}
	}
	return a.Scale(1 / l)
}

func (a V) IsNaN() bool {
	return math.IsNaN(a.X) || math.IsNaN(a.Y) || math.IsNaN(a.Z)
}
