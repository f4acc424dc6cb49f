package model

import "time"

// Observation is a bearing/range fix of a contact taken from the observing
// unit at a point in time. Bearings are compass radians, ranges metres.
type Observation struct {
	ID         string
	UnitID     string
	ObserverID string

	Time       time.Time
	BearingRad float64
	RangeM     float64
}
