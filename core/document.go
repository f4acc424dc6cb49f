package core

import (
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/helmpoint/maneuverboard/kb"
	"github.com/helmpoint/maneuverboard/model"
	"github.com/helmpoint/maneuverboard/units"
)

// BoardDocument is a small summary of what was loaded from a board file.
// It's mainly useful for logging from main().
type BoardDocument struct {
	System      units.System
	UnitIDs     []string
	WaypointIDs []string
}

// internal YAML shapes, unexported.
type boardDocumentYAML struct {
	UnitSystem string          `yaml:"unit_system"`
	Units      []boardUnitYAML `yaml:"units"`
	Waypoints  []waypointYAML  `yaml:"waypoints"`
}

type boardUnitYAML struct {
	ID   string  `yaml:"id"`
	Name string  `yaml:"name"`
	Kind string  `yaml:"kind"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	// CourseDeg is a compass course in degrees; Speed is a unit-suffixed
	// quantity ("12 kn", "4 m/s") parsed against the document's system.
	CourseDeg float64 `yaml:"course_deg"`
	Speed     string  `yaml:"speed"`
}

type waypointYAML struct {
	ID    string  `yaml:"id"`
	Label string  `yaml:"label"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
}

// LoadBoardDocument reads a YAML board document from r and populates the
// board with its units and waypoints.
//
// It fails on YAML/structural errors and on quantities that do not parse;
// duplicate IDs surface the same way direct Add calls would.
func LoadBoardDocument(board *kb.Board, r io.Reader) (*BoardDocument, error) {
	if board == nil {
		return nil, fmt.Errorf("LoadBoardDocument: board is nil")
	}

	var payload boardDocumentYAML
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadBoardDocument: decode failed: %w", err)
	}

	sys, err := units.SystemFromString(payload.UnitSystem)
	if err != nil {
		return nil, fmt.Errorf("LoadBoardDocument: %w", err)
	}

	result := &BoardDocument{
		System:      sys,
		UnitIDs:     make([]string, 0, len(payload.Units)),
		WaypointIDs: make([]string, 0, len(payload.Waypoints)),
	}

	for _, yu := range payload.Units {
		if yu.ID == "" {
			return nil, fmt.Errorf("LoadBoardDocument: unit with empty id")
		}
		speed := 0.0
		if yu.Speed != "" {
			speed, err = units.ParseSpeed(yu.Speed, sys)
			if err != nil {
				return nil, fmt.Errorf("LoadBoardDocument: unit %q: %w", yu.ID, err)
			}
		}
		course, err := units.ParseAngle(fmt.Sprintf("%g", yu.CourseDeg))
		if err != nil {
			return nil, fmt.Errorf("LoadBoardDocument: unit %q: %w", yu.ID, err)
		}

		u := &model.BoardUnit{
			ID:        yu.ID,
			Name:      yu.Name,
			Kind:      model.UnitKindFromString(yu.Kind),
			Position:  model.Position{X: yu.X, Y: yu.Y},
			CourseRad: course,
			SpeedMps:  speed,
		}
		if err := board.AddUnit(u); err != nil {
			return nil, fmt.Errorf("LoadBoardDocument: %w", err)
		}
		result.UnitIDs = append(result.UnitIDs, yu.ID)
	}

	for _, yw := range payload.Waypoints {
		if yw.ID == "" {
			return nil, fmt.Errorf("LoadBoardDocument: waypoint with empty id")
		}
		w := &model.Waypoint{
			ID:       yw.ID,
			Label:    yw.Label,
			Position: model.Position{X: yw.X, Y: yw.Y},
		}
		if err := board.AddWaypoint(w); err != nil {
			return nil, fmt.Errorf("LoadBoardDocument: %w", err)
		}
		result.WaypointIDs = append(result.WaypointIDs, yw.ID)
	}

	return result, nil
}

// SaveBoardDocument writes the board's units and waypoints as a YAML board
// document. Speeds are written in the system's display unit so the file
// stays readable.
func SaveBoardDocument(board *kb.Board, sys units.System, w io.Writer) error {
	if board == nil {
		return fmt.Errorf("SaveBoardDocument: board is nil")
	}

	speedUnit := units.AppropriateSpeedUnit(sys)
	payload := boardDocumentYAML{UnitSystem: sys.String()}

	for _, u := range board.ListUnits() {
		payload.Units = append(payload.Units, boardUnitYAML{
			ID:        u.ID,
			Name:      u.Name,
			Kind:      u.Kind.String(),
			X:         u.Position.X,
			Y:         u.Position.Y,
			CourseDeg: u.CourseRad * 180 / math.Pi,
			Speed:     fmt.Sprintf("%g %s", units.FromInternal(u.SpeedMps, speedUnit), speedUnit.Name),
		})
	}
	for _, wp := range board.ListWaypoints() {
		payload.Waypoints = append(payload.Waypoints, waypointYAML{
			ID:    wp.ID,
			Label: wp.Label,
			X:     wp.Position.X,
			Y:     wp.Position.Y,
		})
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(&payload); err != nil {
		return fmt.Errorf("SaveBoardDocument: encode failed: %w", err)
	}
	return nil
}
