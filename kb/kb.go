// Package kb holds the in-memory board store: every unit and waypoint
// currently plotted, with change events for anyone drawing or broadcasting
// the board.
package kb

import (
	"fmt"
	"sync"

	"github.com/helmpoint/maneuverboard/model"
)

// EventType indicates what kind of change happened on the board.
type EventType int

const (
	EventUnitAdded EventType = iota
	EventUnitUpdated
	EventUnitRemoved
	EventWaypointAdded
	EventWaypointRemoved
)

// Event is emitted to subscribers when the board changes. Unit and Waypoint
// are copies; subscribers may keep them without racing the store.
type Event struct {
	Type     EventType
	Unit     model.BoardUnit
	Waypoint model.Waypoint
}

// MetricsRecorder receives board entity counts after every mutation. The
// observability collector implements it; a nil recorder is ignored.
type MetricsRecorder interface {
	SetBoardCounts(units, waypoints int)
}

// Board is a thread-safe store of the units and waypoints on one
// maneuvering board.
type Board struct {
	mu sync.RWMutex

	units        map[string]*model.BoardUnit
	waypoints    map[string]*model.Waypoint
	observations map[string][]model.Observation

	subs    []func(Event)
	metrics MetricsRecorder
}

// Option configures a Board at construction time.
type Option func(*Board)

// WithMetricsRecorder wires entity-count gauges to the store's mutators.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(b *Board) { b.metrics = rec }
}

// NewBoard constructs an empty board.
func NewBoard(opts ...Option) *Board {
	b := &Board{
		units:        make(map[string]*model.BoardUnit),
		waypoints:    make(map[string]*model.Waypoint),
		observations: make(map[string][]model.Observation),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddUnit adds a new unit. It returns an error if the ID already exists.
func (b *Board) AddUnit(u *model.BoardUnit) error {
	b.mu.Lock()
	if _, exists := b.units[u.ID]; exists {
		b.mu.Unlock()
		return fmt.Errorf("unit with ID %q already exists", u.ID)
	}
	// store the pointer so that motion models can update in place
	b.units[u.ID] = u
	event := Event{Type: EventUnitAdded, Unit: *u}
	subs, rec, nu, nw := b.snapshotNotifyState()
	b.mu.Unlock()

	b.notify(subs, rec, nu, nw, event)
	return nil
}

// GetUnit returns a copy of the unit with the given ID.
func (b *Board) GetUnit(id string) (model.BoardUnit, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, ok := b.units[id]
	if !ok {
		return model.BoardUnit{}, false
	}
	return *u, true
}

// ListUnits returns a snapshot of all units.
func (b *Board) ListUnits() []model.BoardUnit {
	b.mu.RLock()
	defer b.mu.RUnlock()

	res := make([]model.BoardUnit, 0, len(b.units))
	for _, u := range b.units {
		res = append(res, *u)
	}
	return res
}

// UpdateUnitState replaces a unit's position, course, and speed, resets its
// dead-reckoning anchor, and notifies subscribers.
func (b *Board) UpdateUnitState(id string, pos model.Position, courseRad, speedMps float64) error {
	b.mu.Lock()
	u, ok := b.units[id]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("unit with ID %q not found", id)
	}
	u.Position = pos
	u.CourseRad = courseRad
	u.SpeedMps = speedMps
	u.AnchorSet = false
	event := Event{Type: EventUnitUpdated, Unit: *u}
	subs, rec, nu, nw := b.snapshotNotifyState()
	b.mu.Unlock()

	b.notify(subs, rec, nu, nw, event)
	return nil
}

// UpdateUnitPosition moves a unit without touching course or speed; used by
// the motion loop on every tick.
func (b *Board) UpdateUnitPosition(id string, pos model.Position) error {
	b.mu.Lock()
	u, ok := b.units[id]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("unit with ID %q not found", id)
	}
	u.Position = pos
	event := Event{Type: EventUnitUpdated, Unit: *u}
	subs, rec, nu, nw := b.snapshotNotifyState()
	b.mu.Unlock()

	b.notify(subs, rec, nu, nw, event)
	return nil
}

// RemoveUnit deletes a unit; removing an unknown ID is an error.
func (b *Board) RemoveUnit(id string) error {
	b.mu.Lock()
	u, ok := b.units[id]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("unit with ID %q not found", id)
	}
	delete(b.units, id)
	delete(b.observations, id)
	event := Event{Type: EventUnitRemoved, Unit: *u}
	subs, rec, nu, nw := b.snapshotNotifyState()
	b.mu.Unlock()

	b.notify(subs, rec, nu, nw, event)
	return nil
}

// AddWaypoint adds a new waypoint. It returns an error if the ID already
// exists.
func (b *Board) AddWaypoint(w *model.Waypoint) error {
	b.mu.Lock()
	if _, exists := b.waypoints[w.ID]; exists {
		b.mu.Unlock()
		return fmt.Errorf("waypoint with ID %q already exists", w.ID)
	}
	b.waypoints[w.ID] = w
	event := Event{Type: EventWaypointAdded, Waypoint: *w}
	subs, rec, nu, nw := b.snapshotNotifyState()
	b.mu.Unlock()

	b.notify(subs, rec, nu, nw, event)
	return nil
}

// RemoveWaypoint deletes a waypoint; removing an unknown ID is an error.
func (b *Board) RemoveWaypoint(id string) error {
	b.mu.Lock()
	w, ok := b.waypoints[id]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("waypoint with ID %q not found", id)
	}
	delete(b.waypoints, id)
	event := Event{Type: EventWaypointRemoved, Waypoint: *w}
	subs, rec, nu, nw := b.snapshotNotifyState()
	b.mu.Unlock()

	b.notify(subs, rec, nu, nw, event)
	return nil
}

// ListWaypoints returns a snapshot of all waypoints.
func (b *Board) ListWaypoints() []model.Waypoint {
	b.mu.RLock()
	defer b.mu.RUnlock()

	res := make([]model.Waypoint, 0, len(b.waypoints))
	for _, w := range b.waypoints {
		res = append(res, *w)
	}
	return res
}

// AddObservation appends a bearing/range fix to a unit's track history. The
// observed unit must be on the board.
func (b *Board) AddObservation(o model.Observation) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.units[o.UnitID]; !ok {
		return fmt.Errorf("unit with ID %q not found", o.UnitID)
	}
	b.observations[o.UnitID] = append(b.observations[o.UnitID], o)
	return nil
}

// ObservationsFor returns a snapshot of the fixes taken on one unit, oldest
// first.
func (b *Board) ObservationsFor(unitID string) []model.Observation {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.Observation{}, b.observations[unitID]...)
}

// Subscribe registers a callback for board events. It returns an
// unsubscribe function.
func (b *Board) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
	idx := len(b.subs) - 1

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if idx < 0 || idx >= len(b.subs) {
			return
		}
		b.subs = append(b.subs[:idx], b.subs[idx+1:]...)
		idx = -1
	}
}

// snapshotNotifyState must be called with the lock held. It copies what the
// unlocked notification path needs.
func (b *Board) snapshotNotifyState() ([]func(Event), MetricsRecorder, int, int) {
	subs := append([]func(Event){}, b.subs...)
	return subs, b.metrics, len(b.units), len(b.waypoints)
}

// notify runs outside the lock to avoid deadlocks with subscribers that
// read the board.
func (b *Board) notify(subs []func(Event), rec MetricsRecorder, units, waypoints int, event Event) {
	if rec != nil {
		rec.SetBoardCounts(units, waypoints)
	}
	for _, sub := range subs {
		sub(event)
	}
}
