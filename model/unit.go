package model

// UnitKind classifies a board unit.
type UnitKind int

const (
	UnitKindUnknown UnitKind = iota
	// UnitKindOwnShip is the maneuvering unit the solver plans for.
	UnitKindOwnShip
	// UnitKindContact is a tracked target.
	UnitKindContact
	// UnitKindReference is a fixed reference point (buoy, datum, etc.).
	UnitKindReference
)

// String returns the wire/document name for the kind.
func (k UnitKind) String() string {
	switch k {
	case UnitKindOwnShip:
		return "OWN_SHIP"
	case UnitKindContact:
		return "CONTACT"
	case UnitKindReference:
		return "REFERENCE"
	default:
		return "UNKNOWN"
	}
}

// UnitKindFromString parses a kind name, tolerating unknown values.
func UnitKindFromString(s string) UnitKind {
	switch s {
	case "OWN_SHIP":
		return UnitKindOwnShip
	case "CONTACT":
		return UnitKindContact
	case "REFERENCE":
		return UnitKindReference
	default:
		return UnitKindUnknown
	}
}

// Position is a point on the board plane in metres. X grows east, Y north.
type Position struct {
	X float64
	Y float64
}

// BoardUnit is a vessel (or fixed mark) plotted on the board.
//
// CourseRad is a compass bearing in radians, clockwise from north. SpeedMps
// is metres per second. A unit with SpeedMps == 0 keeps CourseRad as its
// configured heading; the solver uses it when resolving angle-on-bow
// constraints against a stationary target.
type BoardUnit struct {
	ID   string
	Name string
	Kind UnitKind

	Position  Position
	CourseRad float64
	SpeedMps  float64

	// AnchorPosition and AnchorSet support dead reckoning: the unit's track
	// is extrapolated from the anchor fix rather than from its last drawn
	// position, so repeated updates do not accumulate error.
	AnchorPosition Position
	AnchorSet      bool
}
