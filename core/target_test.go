package core

import (
	"math"
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestResolveTargetPointWithoutRadius(t *testing.T) {
	target := TargetState{Position: Vec2{X: 100, Y: 200}, Velocity: Vec2{X: 0, Y: 5}}
	got := resolveTargetPoint(target, Constraints{})
	vecNear(t, got, target.Position, 0)
}

func TestResolveTargetPointOnStandOffCircle(t *testing.T) {
	// Target steaming due north; angle-on-bow 090 relative puts the
	// effective point on the starboard beam.
	target := TargetState{Position: Vec2{X: 0, Y: 0}, Velocity: Vec2{X: 0, Y: 5}}
	c := Constraints{AngleOnBow: fptr(math.Pi / 2), Radius: fptr(1000.0)}
	got := resolveTargetPoint(target, c)
	vecNear(t, got, Vec2{X: 1000, Y: 0}, 1e-9)

	// Dead astern.
	c = Constraints{AngleOnBow: fptr(math.Pi), Radius: fptr(500.0)}
	got = resolveTargetPoint(target, c)
	vecNear(t, got, Vec2{X: 0, Y: -500}, 1e-9)
}

func TestResolveTargetPointUsesConfiguredHeadingWhenStopped(t *testing.T) {
	// Stationary target pointing east: angle-on-bow 0 with a radius puts
	// the point ahead of the bow, i.e. further east.
	target := TargetState{Position: Vec2{X: 0, Y: 0}, HeadingRad: math.Pi / 2}
	c := Constraints{AngleOnBow: fptr(0.0), Radius: fptr(200.0)}
	got := resolveTargetPoint(target, c)
	vecNear(t, got, Vec2{X: 200, Y: 0}, 1e-9)
}

func TestNormalizedDropsZeroRadius(t *testing.T) {
	c := Constraints{AngleOnBow: fptr(1.0), Radius: fptr(0.0)}
	n := c.normalized()
	if n.Radius != nil {
		t.Fatalf("zero radius should be treated as absent")
	}
	if n.AngleOnBow == nil {
		t.Fatalf("angle-on-bow should be untouched")
	}
}

func TestArrivalThreshold(t *testing.T) {
	if got := arrivalThresholdSq(Constraints{}); got != 0 {
		t.Fatalf("no-constraint threshold = %v, want 0", got)
	}
	// Angle-on-bow pins the target to a single point: threshold collapses.
	c := Constraints{AngleOnBow: fptr(0.5), Radius: fptr(100.0)}
	if got := arrivalThresholdSq(c); got != 0 {
		t.Fatalf("angle-on-bow threshold = %v, want 0", got)
	}
	// Plain-radius mode counts the whole circle as arrived.
	c = Constraints{Radius: fptr(100.0)}
	if got := arrivalThresholdSq(c); got != 10000 {
		t.Fatalf("plain-radius threshold = %v, want 10000", got)
	}
}
