package core

import "time"

// TargetState is the solver's read-only view of the unit being intercepted.
type TargetState struct {
	Position Vec2
	Velocity Vec2

	// HeadingRad is the target's configured course (compass radians) and is
	// only consulted when Velocity is the zero vector, e.g. a contact that
	// is hove to but still has a known heading for angle-on-bow work.
	HeadingRad float64
}

// heading returns the bearing the target is pointing along.
func (t TargetState) heading() float64 {
	if t.Velocity.LengthSq() > 0 {
		return t.Velocity.Bearing()
	}
	return t.HeadingRad
}

// Constraints is the optional constraint set supplied with a solve request.
// Nil fields are unconstrained. Speed is metres per second, Radius metres,
// AngleOnBow compass-relative radians (positive clockwise off the target's
// bow).
type Constraints struct {
	Speed      *float64
	Time       *time.Duration
	AngleOnBow *float64
	Radius     *float64
}

// normalized returns the constraints with a zero radius treated as absent.
func (c Constraints) normalized() Constraints {
	if c.Radius != nil && *c.Radius == 0 {
		c.Radius = nil
	}
	return c
}

// resolveTargetPoint reduces the target plus an optional angle-on-bow/radius
// pair to the single point being intercepted.
//
// With a stand-off circle, the effective point sits radius metres from the
// target along the bearing (target heading + angle-on-bow). Rotating due
// north by a bearing means rotating clockwise, hence the negated angle.
func resolveTargetPoint(t TargetState, c Constraints) Vec2 {
	if c.Radius == nil {
		return t.Position
	}
	aob := 0.0
	if c.AngleOnBow != nil {
		aob = *c.AngleOnBow
	}
	offset := Vec2{X: 0, Y: *c.Radius}.Rotate(-(t.heading() + aob))
	return t.Position.Add(offset)
}

// arrivalThresholdSq returns the squared distance below which the
// interceptor counts as already arrived. In the plain-radius mode any point
// inside the stand-off circle counts; once an angle-on-bow pins the
// effective target to a single point the threshold collapses to zero.
func arrivalThresholdSq(c Constraints) float64 {
	if c.Radius != nil && c.AngleOnBow == nil {
		return *c.Radius * *c.Radius
	}
	return 0
}
