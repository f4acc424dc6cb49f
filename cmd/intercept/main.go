package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/helmpoint/maneuverboard/core"
	"github.com/helmpoint/maneuverboard/units"
)

func main() {
	ownFlag := flag.String("own", "0,0", "interceptor position as x,y in metres")
	targetFlag := flag.String("target", "", "target position as x,y in metres")
	courseFlag := flag.String("course", "0", "target course in degrees true")
	speedFlag := flag.String("speed", "", "target speed, e.g. \"12 kn\" (empty = stationary)")
	systemFlag := flag.String("units", "nautical", "display unit system: metric, nautical, or imperial")

	atSpeed := flag.String("at-speed", "", "solve for this interceptor speed")
	inTime := flag.String("in-time", "", "solve for arrival after this long, e.g. \"00:30\"")
	aob := flag.String("aob", "", "angle on the target's bow in degrees (requires -radius)")
	radius := flag.String("radius", "", "stand-off distance from the target, e.g. \"2 NM\"")
	flag.Parse()

	if *targetFlag == "" {
		fmt.Fprintln(os.Stderr, "a target position is required (-target x,y)")
		flag.Usage()
		os.Exit(2)
	}

	system, err := units.SystemFromString(*systemFlag)
	if err != nil {
		fatal(err)
	}

	own, err := parsePoint(*ownFlag)
	if err != nil {
		fatal(fmt.Errorf("own position: %w", err))
	}
	targetPos, err := parsePoint(*targetFlag)
	if err != nil {
		fatal(fmt.Errorf("target position: %w", err))
	}

	courseRad, err := units.ParseAngle(*courseFlag)
	if err != nil {
		fatal(fmt.Errorf("target course: %w", err))
	}
	speedMps := 0.0
	if *speedFlag != "" {
		speedMps, err = units.ParseSpeed(*speedFlag, system)
		if err != nil {
			fatal(fmt.Errorf("target speed: %w", err))
		}
	}

	constraints, err := core.ParseConstraints(core.RawConstraints{
		Speed:      *atSpeed,
		Time:       *inTime,
		AngleOnBow: *aob,
		Radius:     *radius,
	}, system)
	if err != nil {
		fatal(err)
	}

	target := core.TargetState{
		Position:   targetPos,
		Velocity:   core.VecFromBearing(courseRad, speedMps),
		HeadingRad: courseRad,
	}

	solver := core.NewInterceptSolver(system)
	sol, err := solver.Solve(own, target, constraints)
	if err != nil {
		if kind, ok := core.FailureKindOf(err); ok {
			fmt.Fprintf(os.Stderr, "no solution (%s): %v\n", kind, err)
			os.Exit(1)
		}
		fatal(err)
	}

	fmt.Printf("steer   %s\n", units.FormatBearing(sol.Course()))
	fmt.Printf("speed   %s\n", units.FormatSpeed(sol.Speed(), system))
	fmt.Printf("time    %s\n", units.FormatDuration(sol.Time))
	fmt.Printf("meet at (%.0f, %.0f) m\n", sol.InterceptPoint.X, sol.InterceptPoint.Y)
}

func parsePoint(text string) (core.Vec2, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return core.Vec2{}, fmt.Errorf("want x,y; got %q", text)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return core.Vec2{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return core.Vec2{}, err
	}
	return core.Vec2{X: x, Y: y}, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
