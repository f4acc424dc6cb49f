package server

import "encoding/json"

// Message types exchanged over the board WebSocket.
const (
	MsgTypeAddUnit        = "add_unit"
	MsgTypeUpdateUnit     = "update_unit"
	MsgTypeRemoveUnit     = "remove_unit"
	MsgTypeAddWaypoint    = "add_waypoint"
	MsgTypeRemoveWaypoint = "remove_waypoint"
	MsgTypeObserve        = "observe"
	MsgTypeSolve          = "solve"
	MsgTypeBoardState     = "board_state"
	MsgTypeSolution       = "solution"
	MsgTypeError          = "error"
)

// ClientMessage is a message from client to server. Data is decoded per Type.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage is a message from server to client.
type ServerMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// UnitPayload creates or replaces a unit. Course is degrees true; Speed is
// display text with an optional unit suffix ("12 kn", "6 m/s"). An empty ID
// on add lets the server assign one.
type UnitPayload struct {
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	CourseDeg float64 `json:"course_deg"`
	Speed     string  `json:"speed"`
}

// WaypointPayload creates a waypoint. An empty ID lets the server assign one.
type WaypointPayload struct {
	ID    string  `json:"id,omitempty"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// RemovePayload names the entity to delete.
type RemovePayload struct {
	ID string `json:"id"`
}

// ObservePayload reports a bearing/range fix on a unit taken from the
// observer's current position. Bearing is degrees true, Range display text
// ("2 NM"). The fix moves the observed unit; with an earlier fix on record
// the unit's course and speed are derived from the two positions.
type ObservePayload struct {
	UnitID     string `json:"unit_id"`
	ObserverID string `json:"observer_id"`
	Bearing    string `json:"bearing"`
	Range      string `json:"range"`
}

// SolveRequest asks for an intercept from one unit to another. The constraint
// fields are display text in the board's unit system; empty means
// unconstrained.
type SolveRequest struct {
	OwnID      string `json:"own_id"`
	TargetID   string `json:"target_id"`
	Speed      string `json:"speed,omitempty"`
	Time       string `json:"time,omitempty"`
	AngleOnBow string `json:"angle_on_bow,omitempty"`
	Radius     string `json:"radius,omitempty"`
}

// UnitState is the wire form of one plotted unit.
type UnitState struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	CourseDeg float64 `json:"course_deg"`
	SpeedMps  float64 `json:"speed_mps"`
	Speed     string  `json:"speed"`
}

// BoardState is the full board snapshot broadcast after every change and on
// every clock tick.
type BoardState struct {
	Time      string            `json:"time"`
	Units     []UnitState       `json:"units"`
	Waypoints []WaypointPayload `json:"waypoints"`
}

// SolutionPayload reports a successful intercept solve. Numeric fields are in
// internal units (radians converted to degrees, metres, seconds); the string
// fields are formatted for the board's unit system.
type SolutionPayload struct {
	OwnID       string  `json:"own_id"`
	TargetID    string  `json:"target_id"`
	CourseDeg   float64 `json:"course_deg"`
	Course      string  `json:"course"`
	SpeedMps    float64 `json:"speed_mps"`
	Speed       string  `json:"speed"`
	TimeSeconds float64 `json:"time_seconds"`
	Time        string  `json:"time"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// ErrorPayload reports a failed request. For solve failures Code carries the
// failure kind's wire name; other request errors use "BAD_REQUEST".
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
