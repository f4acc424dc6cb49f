package core

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/helmpoint/maneuverboard/units"
)

// The minimum-speed search minimizes s(t) = |O + V·t| / t over t > 0 using a
// gradient-based optimizer. The working variable u maps to time via
// t = minSpeedTimeScale·u², which both enforces the t ≥ 0 bound and keeps u
// near order 1 for intercepts on the scale of an hour. The substitution is
// conditioning only; the minimum found is the same.
const (
	minSpeedTimeScale = 3600.0

	// minSpeedGradientTol is deliberately loose: s(t) is very flat around
	// its minimum and a tight gradient test makes the search fail on
	// perfectly usable solutions.
	minSpeedGradientTol = 1e-6

	// minSpeedMargin, in display speed units, is added to the found
	// minimum before rounding up. Right at the minimum the intercept time
	// is infinitely sensitive to speed, so the exact minimum is useless to
	// steer by; one knot over makes the solution stable.
	minSpeedMargin = 1.0
)

// minimumInterceptSpeed finds the minimal speed at which the moving target
// can be intercepted, then pads and rounds it to the next whole display unit
// so the analytic solver downstream produces a stable, presentable time.
func (s *InterceptSolver) minimumInterceptSpeed(o, v Vec2) (float64, *SolveError) {
	speedAt := func(t float64) float64 {
		return o.Add(v.Scale(t)).Length() / t
	}
	// ds/dt = −(O·(O+V·t)) / (t²·|O+V·t|)
	slopeAt := func(t float64) float64 {
		r := o.Add(v.Scale(t))
		return -o.Dot(r) / (t * t * r.Length())
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			t := minSpeedTimeScale * x[0] * x[0]
			if t == 0 {
				return math.Inf(1)
			}
			return speedAt(t)
		},
		Grad: func(grad, x []float64) {
			t := minSpeedTimeScale * x[0] * x[0]
			if t == 0 {
				grad[0] = 0
				return
			}
			grad[0] = slopeAt(t) * 2 * minSpeedTimeScale * x[0]
		},
	}

	settings := &optimize.Settings{GradientThreshold: minSpeedGradientTol}
	result, err := optimize.Minimize(problem, []float64{1}, settings, &optimize.LBFGS{})
	if err != nil {
		return 0, solveErrf(FailureNoStableMinimum, "speed search did not converge: %v", err)
	}
	minSpeed := result.F
	if math.IsNaN(minSpeed) || math.IsInf(minSpeed, 0) || minSpeed < 0 {
		return 0, solveErrf(FailureNoStableMinimum, "speed search produced an unusable value")
	}

	u := units.AppropriateSpeedUnit(s.Units)
	display := math.Ceil(units.FromInternal(minSpeed, u) + minSpeedMargin)
	return units.ToInternal(display, u), nil
}
