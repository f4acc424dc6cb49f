package server

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/helmpoint/maneuverboard/core"
	"github.com/helmpoint/maneuverboard/internal/logging"
	"github.com/helmpoint/maneuverboard/units"
)

const tracerName = "github.com/helmpoint/maneuverboard/internal/server"

// handleSolve runs one intercept solve for the requesting client. Failures
// are answered with the failure kind's wire name so the client can present
// them without string matching.
func (s *Server) handleSolve(ctx context.Context, c *client, msg ClientMessage) {
	var req SolveRequest
	if err := decode(msg, &req); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "board.Solve")
	defer span.End()
	span.SetAttributes(
		attribute.String("board.own_id", req.OwnID),
		attribute.String("board.target_id", req.TargetID),
	)

	start := time.Now()
	sol, err := s.solve(req)
	elapsed := time.Since(start)

	if err != nil {
		kind, ok := core.FailureKindOf(err)
		code := "BAD_REQUEST"
		if ok {
			code = kind.String()
		}
		s.metrics.ObserveSolve(code, elapsed)
		span.SetStatus(codes.Error, err.Error())
		c.log.Info(ctx, "solve failed",
			logging.String("own_id", req.OwnID),
			logging.String("target_id", req.TargetID),
			logging.String("code", code),
			logging.Error(err),
		)
		c.sendError(code, err.Error())
		return
	}

	s.metrics.ObserveSolve("solved", elapsed)
	span.SetAttributes(
		attribute.Float64("board.solution_speed_mps", sol.Speed()),
		attribute.Float64("board.solution_time_seconds", sol.Time.Seconds()),
	)
	c.log.Info(ctx, "solve succeeded",
		logging.String("own_id", req.OwnID),
		logging.String("target_id", req.TargetID),
		logging.Duration("time_to_intercept", sol.Time),
		logging.Duration("elapsed", elapsed),
	)

	c.send <- ServerMessage{Type: MsgTypeSolution, Data: s.solutionPayload(req, sol)}
}

// solve resolves the request's unit IDs against the board and runs the
// solver. All failures come back as *core.SolveError except unknown IDs.
func (s *Server) solve(req SolveRequest) (*core.Solution, error) {
	own, ok := s.board.GetUnit(req.OwnID)
	if !ok {
		return nil, errUnknownUnit(req.OwnID)
	}
	target, ok := s.board.GetUnit(req.TargetID)
	if !ok {
		return nil, errUnknownUnit(req.TargetID)
	}

	constraints, err := core.ParseConstraints(core.RawConstraints{
		Speed:      req.Speed,
		Time:       req.Time,
		AngleOnBow: req.AngleOnBow,
		Radius:     req.Radius,
	}, s.system)
	if err != nil {
		return nil, err
	}

	state := core.TargetState{
		Position:   core.VecFromPosition(target.Position),
		Velocity:   core.UnitVelocity(&target),
		HeadingRad: target.CourseRad,
	}
	return s.solver.Solve(core.VecFromPosition(own.Position), state, constraints)
}

func (s *Server) solutionPayload(req SolveRequest, sol *core.Solution) SolutionPayload {
	return SolutionPayload{
		OwnID:       req.OwnID,
		TargetID:    req.TargetID,
		CourseDeg:   radToDeg(sol.Course()),
		Course:      units.FormatBearing(sol.Course()),
		SpeedMps:    sol.Speed(),
		Speed:       units.FormatSpeed(sol.Speed(), s.system),
		TimeSeconds: sol.Time.Seconds(),
		Time:        units.FormatDuration(sol.Time),
		X:           sol.InterceptPoint.X,
		Y:           sol.InterceptPoint.Y,
	}
}

func errUnknownUnit(id string) error {
	return &unknownUnitError{id: id}
}

type unknownUnitError struct {
	id string
}

func (e *unknownUnitError) Error() string { return "unit " + e.id + " is not on the board" }
