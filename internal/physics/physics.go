// Package physics provides vector math and distance utilities for the arena.
package physics

import "math"

// Vec3 is a point or direction in arena space. Y is up; the arena floor is XZ.
type Vec3 struct {
	X, Y, Z float64
}

// Origin is the arena center, where the player stands.
var Origin = Vec3{}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// LengthSquared returns the squared magnitude of v.
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Length returns the magnitude of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// Normalize returns v scaled to unit length. The zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Horizontal returns v projected onto the arena floor (Y dropped).
func (v Vec3) Horizontal() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// Heading returns the unit floor direction for a yaw angle in radians.
// Yaw 0 points along +Z and increases toward +X.
func Heading(yaw float64) Vec3 {
	return Vec3{X: math.Sin(yaw), Z: math.Cos(yaw)}
}

// Yaw returns the yaw angle of the floor projection of v.
func Yaw(v Vec3) float64 {
	return math.Atan2(v.X, v.Z)
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Vec3) float64 {
	return math.Sqrt(DistanceSquared(a, b))
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(a, b Vec3) float64 {
	return b.Sub(a).LengthSquared()
}

// SpheresOverlap checks if two spheres overlap.
func SpheresOverlap(a Vec3, ra float64, b Vec3, rb float64) bool {
	minDist := ra + rb
	return DistanceSquared(a, b) < minDist*minDist
}

// SweptSpheresOverlap reports whether two spheres moving in straight lines,
// a from a0 to a1 and b from b0 to b1 over the same interval, come closer
// than ra+rb at any point of that interval.
func SweptSpheresOverlap(a0, a1 Vec3, ra float64, b0, b1 Vec3, rb float64) bool {
	d := a0.Sub(b0)
	v := a1.Sub(a0).Sub(b1.Sub(b0)) // motion of a relative to b
	t := 0.0
	if vv := v.LengthSquared(); vv > 0 {
		t = math.Max(0, math.Min(1, -d.Dot(v)/vv))
	}
	minDist := ra + rb
	return d.Add(v.Scale(t)).LengthSquared() < minDist*minDist
}
