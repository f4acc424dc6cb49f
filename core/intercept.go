package core

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/helmpoint/maneuverboard/units"
)

// FailureKind classifies why a solve request produced no solution. Every
// kind is recoverable: the caller adjusts the inputs and calls Solve again.
type FailureKind int

const (
	// FailureInvalidInput marks inputs that failed to parse or are not
	// finite numbers.
	FailureInvalidInput FailureKind = iota
	// FailureConflictingConstraints is returned when both a speed and a
	// time were supplied.
	FailureConflictingConstraints
	// FailureIncompleteCircleConstraint is returned when only one of
	// angle-on-bow and radius was supplied.
	FailureIncompleteCircleConstraint
	// FailureAlreadyArrived means the interceptor is already at the target
	// (or inside the stand-off circle).
	FailureAlreadyArrived
	// FailureNoIntercept means the geometry admits no interception at the
	// requested speed.
	FailureNoIntercept
	// FailureNoStableMinimum means the minimum-speed search did not
	// converge; supplying a concrete speed or time usually resolves it.
	FailureNoStableMinimum
)

// String returns the wire name of the kind.
func (k FailureKind) String() string {
	switch k {
	case FailureInvalidInput:
		return "INVALID_INPUT"
	case FailureConflictingConstraints:
		return "CONFLICTING_CONSTRAINTS"
	case FailureIncompleteCircleConstraint:
		return "INCOMPLETE_CIRCLE_CONSTRAINT"
	case FailureAlreadyArrived:
		return "ALREADY_ARRIVED"
	case FailureNoIntercept:
		return "NO_INTERCEPT"
	case FailureNoStableMinimum:
		return "NO_STABLE_MINIMUM"
	default:
		return "UNKNOWN"
	}
}

// SolveError is the typed failure returned across the Solve boundary.
type SolveError struct {
	Kind   FailureKind
	Detail string
}

func (e *SolveError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func solveErrf(kind FailureKind, format string, args ...any) *SolveError {
	return &SolveError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// FailureKindOf extracts the failure kind from an error returned by Solve.
func FailureKindOf(err error) (FailureKind, bool) {
	var se *SolveError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// Solution is the result of a successful solve: the velocity to steer, the
// point where the tracks meet, and how long it takes to get there. Produced
// fresh on every call; the solver keeps no state between calls.
type Solution struct {
	Velocity       Vec2
	InterceptPoint Vec2
	Time           time.Duration
}

// Course returns the solution's compass course in radians.
func (s *Solution) Course() float64 { return s.Velocity.Bearing() }

// Speed returns the solution's speed in metres per second.
func (s *Solution) Speed() float64 { return s.Velocity.Length() }

// nominalStationaryDisplaySpeed is the canned speed, in display units, used
// when the target is not moving and the intercept course is trivially the
// direct one. Ten knots on a nautical board, ten km/h on a metric one.
const nominalStationaryDisplaySpeed = 10.0

// InterceptSolver computes intercept solutions between an interceptor and a
// moving target. It is stateless apart from its configuration and safe for
// concurrent use.
type InterceptSolver struct {
	// Units is the board's display unit system. It determines the nominal
	// stationary-target speed and the unit the minimum-speed search rounds
	// up to.
	Units units.System
}

// NewInterceptSolver returns a solver for a board using the given unit
// system.
func NewInterceptSolver(sys units.System) *InterceptSolver {
	return &InterceptSolver{Units: sys}
}

// Solve computes a velocity, intercept point, and time-to-intercept for the
// interceptor at own against the target, honoring the optional constraint
// set. On failure it returns a *SolveError carrying one of the FailureKind
// values; it never panics on bad input.
func (s *InterceptSolver) Solve(own Vec2, target TargetState, c Constraints) (*Solution, error) {
	if !own.IsFinite() || !target.Position.IsFinite() || !target.Velocity.IsFinite() {
		return nil, solveErrf(FailureInvalidInput, "positions and velocity must be finite")
	}

	c = c.normalized()
	if c.Speed != nil && c.Time != nil {
		return nil, solveErrf(FailureConflictingConstraints, "speed and time are mutually exclusive")
	}
	if (c.AngleOnBow != nil) != (c.Radius != nil) {
		return nil, solveErrf(FailureIncompleteCircleConstraint, "angle-on-bow and radius must be supplied together")
	}
	if c.Speed != nil && *c.Speed <= 0 {
		return nil, solveErrf(FailureInvalidInput, "speed must be positive")
	}
	if c.Time != nil && *c.Time <= 0 {
		return nil, solveErrf(FailureInvalidInput, "time must be positive")
	}

	effTarget := resolveTargetPoint(target, c)
	o := effTarget.Sub(own)
	if o.LengthSq() <= arrivalThresholdSq(c) {
		return nil, solveErrf(FailureAlreadyArrived, "interceptor is already at the target")
	}

	v := target.Velocity
	if v.LengthSq() == 0 {
		return s.stationarySolution(o, effTarget), nil
	}

	if c.Time != nil {
		return makeSolution(o, v, effTarget, c.Time.Seconds()), nil
	}

	speed := 0.0
	if c.Speed != nil {
		speed = *c.Speed
	} else {
		minSpeed, serr := s.minimumInterceptSpeed(o, v)
		if serr != nil {
			return nil, serr
		}
		speed = minSpeed
	}

	t, serr := interceptTime(o, v, speed)
	if serr != nil {
		return nil, serr
	}
	return makeSolution(o, v, effTarget, t), nil
}

// stationarySolution handles a target with zero velocity: steer straight at
// the effective target point at the nominal display speed. The speed here is
// a presentation convenience, not an optimum.
func (s *InterceptSolver) stationarySolution(o, effTarget Vec2) *Solution {
	speed := units.ToInternal(nominalStationaryDisplaySpeed, units.AppropriateSpeedUnit(s.Units))
	dist := o.Length()
	return &Solution{
		Velocity:       o.Normalized(speed),
		InterceptPoint: effTarget,
		Time:           secondsToDuration(dist / speed),
	}
}

// interceptTime solves the closing-time quadratic for a fixed interceptor
// speed. With O the relative target position and V the target velocity, the
// intercept time satisfies A·t² + 2B·t + C = 0 for
//
//	A = |V|² − speed², B = O·V, C = |O|².
//
// The solve is exact: identical inputs give bit-identical results.
func interceptTime(o, v Vec2, speed float64) (float64, *SolveError) {
	a := v.LengthSq() - speed*speed
	b := o.Dot(v)
	c := o.LengthSq()

	if a == 0 {
		// Target speed equals interceptor speed exactly: the quadratic
		// degrades to 2B·t + C = 0. B cannot also be zero here, since
		// A = B = 0 forces C = 0 and that was rejected as already
		// arrived; guard anyway.
		if b == 0 {
			return 0, solveErrf(FailureNoIntercept, "parallel tracks at equal speed")
		}
		t := -c / (2 * b)
		if t < 0 {
			return 0, solveErrf(FailureNoIntercept, "intercept lies in the past")
		}
		return t, nil
	}

	d := b*b - a*c
	if d < 0 {
		return 0, solveErrf(FailureNoIntercept, "target cannot be caught at %.2f m/s", speed)
	}

	sq := math.Sqrt(d)
	t1 := (-b + sq) / a
	t2 := (-b - sq) / a
	switch {
	case t1 >= 0 && t2 >= 0:
		return math.Min(t1, t2), nil
	case t1 >= 0:
		return t1, nil
	case t2 >= 0:
		return t2, nil
	default:
		return 0, solveErrf(FailureNoIntercept, "both intercept times lie in the past")
	}
}

// makeSolution assembles the final solution for an intercept after t
// seconds: the interceptor velocity O/t + V and the point where both tracks
// meet.
func makeSolution(o, v, effTarget Vec2, t float64) *Solution {
	return &Solution{
		Velocity:       o.Scale(1 / t).Add(v),
		InterceptPoint: effTarget.Add(v.Scale(t)),
		Time:           secondsToDuration(t),
	}
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
