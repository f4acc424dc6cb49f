package main

import (
	"sync"
	"time"

	"github.com/helmpoint/maneuverboard/core"
	"github.com/helmpoint/maneuverboard/kb"
	"github.com/helmpoint/maneuverboard/model"
	"github.com/helmpoint/maneuverboard/timectrl"
)

// motionLoop advances every unit with way on along its track once per clock
// tick. It keeps its own unit copies so dead-reckoning anchors survive
// between ticks, and re-anchors a unit whenever a client changes its state.
type motionLoop struct {
	board *kb.Board
	clock timectrl.Clock

	mu       sync.Mutex
	units    map[string]*model.BoardUnit
	models   map[string]core.MotionModel
	applying bool
}

func newMotionLoop(board *kb.Board, clock timectrl.Clock, start time.Time) *motionLoop {
	l := &motionLoop{
		board:  board,
		clock:  clock,
		units:  make(map[string]*model.BoardUnit),
		models: make(map[string]core.MotionModel),
	}
	for _, u := range board.ListUnits() {
		l.trackLocked(u, start)
	}
	board.Subscribe(l.onEvent)
	return l
}

// trackLocked anchors a fresh copy of the unit at the given board time. The
// caller holds l.mu (or is the constructor, before any concurrency).
func (l *motionLoop) trackLocked(u model.BoardUnit, at time.Time) {
	u.AnchorPosition = u.Position
	u.AnchorSet = true
	l.units[u.ID] = &u
	l.models[u.ID] = core.NewMotionModel(&u, at)
}

// onEvent keeps the tracked set in step with the board. Position updates
// written by Tick itself are ignored via the applying flag.
func (l *motionLoop) onEvent(ev kb.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.applying {
		return
	}
	switch ev.Type {
	case kb.EventUnitAdded, kb.EventUnitUpdated:
		l.trackLocked(ev.Unit, l.clock.Now())
	case kb.EventUnitRemoved:
		delete(l.units, ev.Unit.ID)
		delete(l.models, ev.Unit.ID)
	}
}

// Tick extrapolates every tracked unit to the given board time and writes
// the new positions back to the board.
func (l *motionLoop) Tick(boardTime time.Time) {
	l.mu.Lock()
	l.applying = true
	updates := make(map[string]model.Position, len(l.units))
	for id, u := range l.units {
		if u.SpeedMps <= 0 {
			continue
		}
		l.models[id].UpdatePosition(boardTime, u)
		updates[id] = u.Position
	}
	l.mu.Unlock()

	for id, pos := range updates {
		// Ignore errors from units removed between the snapshot and now.
		_ = l.board.UpdateUnitPosition(id, pos)
	}

	l.mu.Lock()
	l.applying = false
	l.mu.Unlock()
}
