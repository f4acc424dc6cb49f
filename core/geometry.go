package core

import (
	"math"

	"github.com/helmpoint/maneuverboard/model"
)

// Vec2 is a point or vector on the board plane, in metres. X grows east,
// Y north.
type Vec2 struct {
	X, Y float64
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Dot returns the dot product of two vectors.
func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// LengthSq returns the squared Euclidean norm.
func (v Vec2) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Length returns the Euclidean norm.
func (v Vec2) Length() float64 {
	return math.Sqrt(v.LengthSq())
}

// Angle returns the math angle of the vector: counterclockwise radians from
// the +x axis. Use Bearing for the compass convention.
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Bearing returns the compass bearing of the vector: clockwise radians from
// north (+y), normalized to [0, 2π). Swapping the atan2 arguments performs
// the math-angle-to-bearing transform in one step.
func (v Vec2) Bearing() float64 {
	b := math.Atan2(v.X, v.Y)
	if b < 0 {
		b += 2 * math.Pi
	}
	return b
}

// Rotate returns v rotated counterclockwise by rad. Pass a negated angle to
// rotate clockwise, which is how bearings rotate.
func (v Vec2) Rotate(rad float64) Vec2 {
	sin, cos := math.Sincos(rad)
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Normalized returns v rescaled to the given length. The zero vector is
// returned unchanged.
func (v Vec2) Normalized(toLength float64) Vec2 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(toLength / l)
}

// IsFinite reports whether both components are finite numbers.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// VecFromBearing builds a vector of the given length pointing along a
// compass bearing.
func VecFromBearing(bearingRad, length float64) Vec2 {
	sin, cos := math.Sincos(bearingRad)
	return Vec2{X: length * sin, Y: length * cos}
}

// VecFromPosition converts a model position to a Vec2.
func VecFromPosition(p model.Position) Vec2 {
	return Vec2{X: p.X, Y: p.Y}
}

// PositionFromVec converts a Vec2 back to a model position.
func PositionFromVec(v Vec2) model.Position {
	return model.Position{X: v.X, Y: v.Y}
}

// UnitVelocity derives a unit's velocity vector from its course and speed.
func UnitVelocity(u *model.BoardUnit) Vec2 {
	return VecFromBearing(u.CourseRad, u.SpeedMps)
}
