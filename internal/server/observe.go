package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/helmpoint/maneuverboard/core"
	"github.com/helmpoint/maneuverboard/internal/logging"
	"github.com/helmpoint/maneuverboard/model"
	"github.com/helmpoint/maneuverboard/units"
)

// handleObserve records a bearing/range fix and moves the observed unit to
// the fixed position. A second fix on the same unit turns its track into a
// course and speed, the way two timed fixes on a board do.
func (s *Server) handleObserve(ctx context.Context, c *client, msg ClientMessage) {
	var p ObservePayload
	if err := decode(msg, &p); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}

	observer, ok := s.board.GetUnit(p.ObserverID)
	if !ok {
		c.sendError("BAD_REQUEST", "observer "+p.ObserverID+" is not on the board")
		return
	}
	unit, ok := s.board.GetUnit(p.UnitID)
	if !ok {
		c.sendError("BAD_REQUEST", "unit "+p.UnitID+" is not on the board")
		return
	}

	bearing, err := units.ParseAngle(p.Bearing)
	if err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	rng, err := units.ParseLength(p.Range, s.system)
	if err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}

	now := s.clock.Now()
	fix := core.VecFromPosition(observer.Position).Add(core.VecFromBearing(bearing, rng))
	pos := core.PositionFromVec(fix)

	course := unit.CourseRad
	speed := unit.SpeedMps
	if prev := latestObservation(s.board.ObservationsFor(p.UnitID)); prev != nil {
		dt := now.Sub(prev.Time).Seconds()
		if prevFix, ok := observedPosition(s, *prev); ok && dt > 0 {
			track := fix.Sub(prevFix)
			course = track.Bearing()
			speed = track.Length() / dt
		}
	}

	if err := s.board.AddObservation(model.Observation{
		ID:         uuid.NewString(),
		UnitID:     p.UnitID,
		ObserverID: p.ObserverID,
		Time:       now,
		BearingRad: bearing,
		RangeM:     rng,
	}); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}

	if err := s.board.UpdateUnitState(p.UnitID, pos, course, speed); err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}

	c.log.Info(ctx, "observation plotted",
		logging.String("unit_id", p.UnitID),
		logging.String("observer_id", p.ObserverID),
		logging.Float64("speed_mps", speed),
	)
}

func latestObservation(obs []model.Observation) *model.Observation {
	if len(obs) == 0 {
		return nil
	}
	return &obs[len(obs)-1]
}

// observedPosition reconstructs where a past fix placed the unit, using the
// observer's current position. Good enough while the observer holds station
// between fixes; a moving observer reintroduces its own displacement.
func observedPosition(s *Server, o model.Observation) (core.Vec2, bool) {
	observer, ok := s.board.GetUnit(o.ObserverID)
	if !ok {
		return core.Vec2{}, false
	}
	return core.VecFromPosition(observer.Position).Add(core.VecFromBearing(o.BearingRad, o.RangeM)), true
}
