package core

import (
	"math"
	"testing"
	"time"

	"github.com/helmpoint/maneuverboard/units"
)

func newTestSolver() *InterceptSolver { return NewInterceptSolver(units.Nautical) }

func wantFailure(t *testing.T, err error, kind FailureKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected failure %v, got success", kind)
	}
	got, ok := FailureKindOf(err)
	if !ok {
		t.Fatalf("error %v is not a SolveError", err)
	}
	if got != kind {
		t.Fatalf("failure kind = %v, want %v", got, kind)
	}
}

func TestSolveStationaryTarget(t *testing.T) {
	s := newTestSolver()
	own := Vec2{X: 0, Y: 0}
	target := TargetState{Position: Vec2{X: 3000, Y: 4000}}

	sol, err := s.Solve(own, target, Constraints{})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}

	vecNear(t, sol.InterceptPoint, target.Position, 1e-9)

	// Velocity points straight at the target at the nominal display speed.
	nominal := units.ToInternal(10, units.Knots)
	if got := sol.Speed(); math.Abs(got-nominal) > 1e-9 {
		t.Fatalf("speed = %v, want nominal %v", got, nominal)
	}
	dir := target.Position.Sub(own)
	if got, want := sol.Course(), dir.Bearing(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("course = %v, want %v", got, want)
	}

	wantTime := dir.Length() / nominal
	if got := sol.Time.Seconds(); math.Abs(got-wantTime) > 1e-6 {
		t.Fatalf("time = %v s, want %v s", got, wantTime)
	}
}

// The worked perpendicular-crossing scenario: interceptor at the origin,
// target 10 east moving 5 north, interceptor speed 13. The quadratic is
// -144·t² + 0·t + 100 = 0 with discriminant 14400, and the positive root is
// t = 120/144.
func TestInterceptTimeWorkedExample(t *testing.T) {
	o := Vec2{X: 10, Y: 0}
	v := Vec2{X: 0, Y: 5}

	got, serr := interceptTime(o, v, 13)
	if serr != nil {
		t.Fatalf("interceptTime error: %v", serr)
	}
	want := 120.0 / 144.0
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("t = %v, want %v", got, want)
	}
}

func TestSolveWorkedExample(t *testing.T) {
	s := newTestSolver()
	target := TargetState{Position: Vec2{X: 10, Y: 0}, Velocity: Vec2{X: 0, Y: 5}}

	sol, err := s.Solve(Vec2{}, target, Constraints{Speed: fptr(13.0)})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if got := sol.Time.Seconds(); math.Abs(got-0.8333333333) > 1e-6 {
		t.Fatalf("time = %v s, want 0.8333 s", got)
	}
	if got := sol.Speed(); math.Abs(got-13) > 1e-9 {
		t.Fatalf("speed = %v, want 13", got)
	}
	vecNear(t, sol.Velocity, Vec2{X: 12, Y: 5}, 1e-6)
}

func TestSolveFixedSpeedRoundTrip(t *testing.T) {
	s := newTestSolver()
	cases := []struct {
		name   string
		own    Vec2
		target TargetState
		speed  float64
	}{
		{
			name:   "crossing",
			own:    Vec2{X: 0, Y: 0},
			target: TargetState{Position: Vec2{X: 9000, Y: 2000}, Velocity: Vec2{X: -2, Y: 4}},
			speed:  8,
		},
		{
			name:   "stern chase",
			own:    Vec2{X: -5000, Y: 1000},
			target: TargetState{Position: Vec2{X: 4000, Y: 1500}, Velocity: Vec2{X: 3, Y: 0.5}},
			speed:  7,
		},
		{
			name:   "head on",
			own:    Vec2{X: 2000, Y: 2000},
			target: TargetState{Position: Vec2{X: 20000, Y: 20000}, Velocity: Vec2{X: -4, Y: -4}},
			speed:  6,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sol, err := s.Solve(c.own, c.target, Constraints{Speed: &c.speed})
			if err != nil {
				t.Fatalf("Solve error: %v", err)
			}
			if sol.Time < 0 {
				t.Fatalf("negative intercept time %v", sol.Time)
			}
			if got := sol.Speed(); math.Abs(got-c.speed)/c.speed > 1e-12 {
				t.Fatalf("speed = %v, want %v", got, c.speed)
			}

			dt := sol.Time.Seconds()
			ownAtT := c.own.Add(sol.Velocity.Scale(dt))
			targetAtT := c.target.Position.Add(c.target.Velocity.Scale(dt))

			scale := math.Max(1, targetAtT.Length())
			if ownAtT.Sub(sol.InterceptPoint).Length()/scale > 1e-9 {
				t.Fatalf("interceptor misses intercept point: %v vs %v", ownAtT, sol.InterceptPoint)
			}
			if targetAtT.Sub(sol.InterceptPoint).Length()/scale > 1e-9 {
				t.Fatalf("target misses intercept point: %v vs %v", targetAtT, sol.InterceptPoint)
			}
		})
	}
}

func TestInterceptTimeLinearBranch(t *testing.T) {
	// Target closing head-on at exactly the interceptor's speed: A == 0 and
	// the time degrades to -C/(2B).
	o := Vec2{X: 10, Y: 0}
	v := Vec2{X: -5, Y: 0}

	got, serr := interceptTime(o, v, 5)
	if serr != nil {
		t.Fatalf("interceptTime error: %v", serr)
	}
	wantT := -o.LengthSq() / (2 * o.Dot(v))
	if got != wantT {
		t.Fatalf("t = %v, want exactly %v", got, wantT)
	}
	if wantT != 1 {
		t.Fatalf("test geometry broken: want 1, computed %v", wantT)
	}
}

func TestInterceptTimeLinearBranchReceding(t *testing.T) {
	// Same speeds but the target is running away: the root is negative.
	o := Vec2{X: 10, Y: 0}
	v := Vec2{X: 5, Y: 0}
	_, serr := interceptTime(o, v, 5)
	if serr == nil || serr.Kind != FailureNoIntercept {
		t.Fatalf("expected NoIntercept, got %v", serr)
	}
}

func TestSolveNoIntercept(t *testing.T) {
	s := newTestSolver()
	// Perpendicular runner faster than us: discriminant is negative.
	target := TargetState{Position: Vec2{X: 10, Y: 0}, Velocity: Vec2{X: 0, Y: 5}}
	_, err := s.Solve(Vec2{}, target, Constraints{Speed: fptr(3.0)})
	wantFailure(t, err, FailureNoIntercept)
}

func TestSolveAlreadyArrived(t *testing.T) {
	s := newTestSolver()
	pos := Vec2{X: 123, Y: -456}
	target := TargetState{Position: pos, Velocity: Vec2{X: 1, Y: 1}}
	_, err := s.Solve(pos, target, Constraints{})
	wantFailure(t, err, FailureAlreadyArrived)
}

func TestSolveConstraintValidation(t *testing.T) {
	s := newTestSolver()
	target := TargetState{Position: Vec2{X: 1000, Y: 0}, Velocity: Vec2{X: 0, Y: 2}}
	d := 30 * time.Second

	_, err := s.Solve(Vec2{}, target, Constraints{Speed: fptr(5.0), Time: &d})
	wantFailure(t, err, FailureConflictingConstraints)

	_, err = s.Solve(Vec2{}, target, Constraints{AngleOnBow: fptr(0.5)})
	wantFailure(t, err, FailureIncompleteCircleConstraint)

	_, err = s.Solve(Vec2{}, target, Constraints{Radius: fptr(100.0)})
	wantFailure(t, err, FailureIncompleteCircleConstraint)

	// A zero radius is treated as absent, so the angle-on-bow is orphaned.
	_, err = s.Solve(Vec2{}, target, Constraints{AngleOnBow: fptr(0.5), Radius: fptr(0.0)})
	wantFailure(t, err, FailureIncompleteCircleConstraint)

	_, err = s.Solve(Vec2{}, target, Constraints{Speed: fptr(-2.0)})
	wantFailure(t, err, FailureInvalidInput)

	_, err = s.Solve(Vec2{X: math.NaN()}, target, Constraints{})
	wantFailure(t, err, FailureInvalidInput)
}

func TestSolveWithTimeConstraint(t *testing.T) {
	s := newTestSolver()
	target := TargetState{Position: Vec2{X: 1000, Y: 0}, Velocity: Vec2{X: 0, Y: 2}}
	d := 100 * time.Second

	sol, err := s.Solve(Vec2{}, target, Constraints{Time: &d})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if sol.Time != d {
		t.Fatalf("time = %v, want %v", sol.Time, d)
	}
	vecNear(t, sol.Velocity, Vec2{X: 10, Y: 2}, 1e-9)
	vecNear(t, sol.InterceptPoint, Vec2{X: 1000, Y: 200}, 1e-9)
}

func TestSolveWithAngleOnBowCircle(t *testing.T) {
	s := newTestSolver()
	// Take station 500 m dead astern of a target steaming north at 5 m/s.
	target := TargetState{Position: Vec2{X: 0, Y: 1000}, Velocity: Vec2{X: 0, Y: 5}}
	c := Constraints{
		Speed:      fptr(13.0),
		AngleOnBow: fptr(math.Pi),
		Radius:     fptr(500.0),
	}

	sol, err := s.Solve(Vec2{}, target, c)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	// Effective point starts at (0, 500) and runs north with the target:
	// a straight stern chase closing at 13-5 = 8 m/s over 500 m.
	if got := sol.Time.Seconds(); math.Abs(got-62.5) > 1e-6 {
		t.Fatalf("time = %v s, want 62.5 s", got)
	}
	vecNear(t, sol.InterceptPoint, Vec2{X: 0, Y: 812.5}, 1e-6)
	if got := sol.Speed(); math.Abs(got-13) > 1e-9 {
		t.Fatalf("speed = %v, want 13", got)
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	s := newTestSolver()
	target := TargetState{Position: Vec2{X: 9000, Y: 2000}, Velocity: Vec2{X: -2, Y: 4}}
	c := Constraints{Speed: fptr(8.0)}

	first, err := s.Solve(Vec2{}, target, c)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	second, err := s.Solve(Vec2{}, target, c)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if *first != *second {
		t.Fatalf("identical inputs produced different solutions: %#v vs %#v", first, second)
	}
}
