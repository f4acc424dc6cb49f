package model

// Waypoint is a labeled fixed point on the board.
type Waypoint struct {
	ID       string
	Label    string
	Position Position
}
