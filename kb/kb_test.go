package kb

import (
	"fmt"
	"sync"
	"testing"

	"github.com/helmpoint/maneuverboard/model"
)

func TestAddAndGetUnit(t *testing.T) {
	board := NewBoard()
	u := &model.BoardUnit{
		ID:   "u1",
		Name: "Ownship",
		Kind: model.UnitKindOwnShip,
	}
	if err := board.AddUnit(u); err != nil {
		t.Fatalf("AddUnit error: %v", err)
	}
	got, ok := board.GetUnit("u1")
	if !ok || got.Name != "Ownship" {
		t.Fatalf("GetUnit returned %#v, want name Ownship", got)
	}
}

func TestAddUnitDuplicate(t *testing.T) {
	board := NewBoard()
	if err := board.AddUnit(&model.BoardUnit{ID: "u1"}); err != nil {
		t.Fatalf("first AddUnit error: %v", err)
	}
	if err := board.AddUnit(&model.BoardUnit{ID: "u1"}); err == nil {
		t.Fatalf("expected duplicate AddUnit to fail")
	}
}

func TestUpdateUnitStateResetsAnchor(t *testing.T) {
	board := NewBoard()
	u := &model.BoardUnit{ID: "u1", AnchorSet: true}
	if err := board.AddUnit(u); err != nil {
		t.Fatalf("AddUnit error: %v", err)
	}
	if err := board.UpdateUnitState("u1", model.Position{X: 10, Y: 20}, 1.5, 4); err != nil {
		t.Fatalf("UpdateUnitState error: %v", err)
	}
	got, _ := board.GetUnit("u1")
	if got.Position.X != 10 || got.CourseRad != 1.5 || got.SpeedMps != 4 {
		t.Fatalf("unexpected state after update: %#v", got)
	}
	if got.AnchorSet {
		t.Fatalf("expected dead-reckoning anchor to be reset")
	}
}

func TestUpdateMissingUnit(t *testing.T) {
	board := NewBoard()
	if err := board.UpdateUnitPosition("nope", model.Position{}); err == nil {
		t.Fatalf("expected error for missing unit")
	}
}

func TestListUnitsAndWaypoints(t *testing.T) {
	board := NewBoard()
	for i := range 3 {
		if err := board.AddUnit(&model.BoardUnit{ID: fmt.Sprintf("u-%d", i)}); err != nil {
			t.Fatalf("AddUnit error: %v", err)
		}
		if err := board.AddWaypoint(&model.Waypoint{ID: fmt.Sprintf("w-%d", i)}); err != nil {
			t.Fatalf("AddWaypoint error: %v", err)
		}
	}
	if got := len(board.ListUnits()); got != 3 {
		t.Fatalf("ListUnits returned %d units, want 3", got)
	}
	if got := len(board.ListWaypoints()); got != 3 {
		t.Fatalf("ListWaypoints returned %d waypoints, want 3", got)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	board := NewBoard()
	if err := board.AddUnit(&model.BoardUnit{ID: "u1"}); err != nil {
		t.Fatalf("AddUnit error: %v", err)
	}

	var mu sync.Mutex
	var events []Event
	unsub := board.Subscribe(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	if err := board.UpdateUnitPosition("u1", model.Position{X: 5}); err != nil {
		t.Fatalf("UpdateUnitPosition error: %v", err)
	}
	if err := board.RemoveUnit("u1"); err != nil {
		t.Fatalf("RemoveUnit error: %v", err)
	}

	mu.Lock()
	got := len(events)
	mu.Unlock()
	if got != 2 {
		t.Fatalf("received %d events, want 2", got)
	}
	if events[0].Type != EventUnitUpdated || events[0].Unit.Position.X != 5 {
		t.Fatalf("unexpected first event: %#v", events[0])
	}
	if events[1].Type != EventUnitRemoved {
		t.Fatalf("unexpected second event: %#v", events[1])
	}

	unsub()
	if err := board.AddUnit(&model.BoardUnit{ID: "u2"}); err != nil {
		t.Fatalf("AddUnit error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("unsubscribed callback still received events")
	}
}

type countRecorder struct {
	mu        sync.Mutex
	units     int
	waypoints int
}

func (r *countRecorder) SetBoardCounts(units, waypoints int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units = units
	r.waypoints = waypoints
}

func TestMetricsRecorderSeesCounts(t *testing.T) {
	rec := &countRecorder{}
	board := NewBoard(WithMetricsRecorder(rec))

	if err := board.AddUnit(&model.BoardUnit{ID: "u1"}); err != nil {
		t.Fatalf("AddUnit error: %v", err)
	}
	if err := board.AddWaypoint(&model.Waypoint{ID: "w1"}); err != nil {
		t.Fatalf("AddWaypoint error: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.units != 1 || rec.waypoints != 1 {
		t.Fatalf("recorder saw units=%d waypoints=%d, want 1/1", rec.units, rec.waypoints)
	}
}

func TestObservations(t *testing.T) {
	board := NewBoard()
	if err := board.AddUnit(&model.BoardUnit{ID: "tgt"}); err != nil {
		t.Fatalf("AddUnit error: %v", err)
	}

	if err := board.AddObservation(model.Observation{ID: "o1", UnitID: "tgt", ObserverID: "own"}); err != nil {
		t.Fatalf("AddObservation error: %v", err)
	}
	if err := board.AddObservation(model.Observation{ID: "o2", UnitID: "tgt", ObserverID: "own"}); err != nil {
		t.Fatalf("AddObservation error: %v", err)
	}
	if err := board.AddObservation(model.Observation{ID: "o3", UnitID: "ghost"}); err == nil {
		t.Fatalf("expected error observing an unknown unit")
	}

	obs := board.ObservationsFor("tgt")
	if len(obs) != 2 || obs[0].ID != "o1" || obs[1].ID != "o2" {
		t.Fatalf("observations = %+v", obs)
	}

	if err := board.RemoveUnit("tgt"); err != nil {
		t.Fatalf("RemoveUnit error: %v", err)
	}
	if got := board.ObservationsFor("tgt"); len(got) != 0 {
		t.Fatalf("observations survived unit removal: %+v", got)
	}
}
