package core

import (
	"time"

	"github.com/helmpoint/maneuverboard/model"
)

// MotionModel updates a unit's position for a given board time.
type MotionModel interface {
	UpdatePosition(boardTime time.Time, u *model.BoardUnit)
}

// StaticMotionModel leaves the unit's position unchanged.
type StaticMotionModel struct{}

// UpdatePosition for static motion does nothing.
func (m *StaticMotionModel) UpdatePosition(boardTime time.Time, u *model.BoardUnit) {
	// no-op
}

// DeadReckoningMotionModel advances a unit along its course at its speed.
// The track is extrapolated from an anchor fix taken the first time the
// model touches the unit, so repeated ticks do not accumulate rounding
// error.
type DeadReckoningMotionModel struct {
	start time.Time
}

// NewDeadReckoningModel constructs a dead-reckoning model anchored at the
// given board start time.
func NewDeadReckoningModel(start time.Time) *DeadReckoningMotionModel {
	return &DeadReckoningMotionModel{start: start}
}

// UpdatePosition places the unit at anchor + velocity·elapsed.
func (m *DeadReckoningMotionModel) UpdatePosition(boardTime time.Time, u *model.BoardUnit) {
	if !u.AnchorSet {
		u.AnchorPosition = u.Position
		u.AnchorSet = true
	}
	dt := boardTime.Sub(m.start).Seconds()
	pos := VecFromPosition(u.AnchorPosition).Add(UnitVelocity(u).Scale(dt))
	u.Position = PositionFromVec(pos)
}

// NewMotionModel chooses a motion model for the unit: dead reckoning for
// anything with way on, static otherwise.
func NewMotionModel(u *model.BoardUnit, start time.Time) MotionModel {
	if u.SpeedMps > 0 {
		return NewDeadReckoningModel(start)
	}
	return &StaticMotionModel{}
}
