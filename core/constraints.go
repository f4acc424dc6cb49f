package core

import (
	"strings"

	"github.com/helmpoint/maneuverboard/units"
)

// RawConstraints holds constraint entries exactly as a user typed them.
// Empty fields are unconstrained.
type RawConstraints struct {
	Speed      string
	Time       string
	AngleOnBow string
	Radius     string
}

// ParseConstraints converts raw text entries into solver constraints using
// the board's unit system. Any entry that fails to parse yields a
// *SolveError of kind FailureInvalidInput, so a caller can surface the bad
// field before the solver ever runs.
func ParseConstraints(raw RawConstraints, sys units.System) (Constraints, error) {
	var c Constraints

	if t := strings.TrimSpace(raw.Speed); t != "" {
		v, err := units.ParseSpeed(t, sys)
		if err != nil {
			return Constraints{}, solveErrf(FailureInvalidInput, "%v", err)
		}
		c.Speed = &v
	}
	if t := strings.TrimSpace(raw.Time); t != "" {
		d, _, err := units.ParseDuration(t)
		if err != nil {
			return Constraints{}, solveErrf(FailureInvalidInput, "%v", err)
		}
		c.Time = &d
	}
	if t := strings.TrimSpace(raw.AngleOnBow); t != "" {
		a, err := units.ParseAngle(t)
		if err != nil {
			return Constraints{}, solveErrf(FailureInvalidInput, "%v", err)
		}
		c.AngleOnBow = &a
	}
	if t := strings.TrimSpace(raw.Radius); t != "" {
		r, err := units.ParseLength(t, sys)
		if err != nil {
			return Constraints{}, solveErrf(FailureInvalidInput, "%v", err)
		}
		c.Radius = &r
	}

	return c, nil
}
