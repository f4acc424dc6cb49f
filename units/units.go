// Package units converts between user-facing speed/length/time/angle text and
// the board's internal SI-like base units (metres, seconds, radians).
//
// All functions are pure; parse failures return errors and never panic. The
// board core treats any parse failure as invalid input, reported to the user
// before the solver runs.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// System selects which display units a board is configured for.
type System int

const (
	Metric System = iota
	Nautical
	Imperial
)

// SystemFromString parses a unit system name as used in board documents and
// command-line flags.
func SystemFromString(s string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metric":
		return Metric, nil
	case "nautical", "":
		return Nautical, nil
	case "imperial":
		return Imperial, nil
	default:
		return Nautical, fmt.Errorf("unknown unit system %q", s)
	}
}

// String returns the document name of the system.
func (s System) String() string {
	switch s {
	case Metric:
		return "metric"
	case Imperial:
		return "imperial"
	default:
		return "nautical"
	}
}

// Unit pairs a display suffix with its conversion factor to internal units.
// value_internal = value_display * Factor.
type Unit struct {
	Name   string
	Factor float64
}

// Speed units.
var (
	MetersPerSecond   = Unit{Name: "m/s", Factor: 1}
	Knots             = Unit{Name: "kn", Factor: 1852.0 / 3600.0}
	KilometersPerHour = Unit{Name: "km/h", Factor: 1000.0 / 3600.0}
	MilesPerHour      = Unit{Name: "mph", Factor: 1609.344 / 3600.0}
)

// Length units.
var (
	Meters        = Unit{Name: "m", Factor: 1}
	Kilometers    = Unit{Name: "km", Factor: 1000}
	NauticalMiles = Unit{Name: "NM", Factor: 1852}
	Yards         = Unit{Name: "yd", Factor: 0.9144}
	StatuteMiles  = Unit{Name: "mi", Factor: 1609.344}
)

// AppropriateSpeedUnit returns the display speed unit for a system.
func AppropriateSpeedUnit(sys System) Unit {
	switch sys {
	case Metric:
		return KilometersPerHour
	case Imperial:
		return MilesPerHour
	default:
		return Knots
	}
}

// AppropriateLengthUnit returns the display length unit for a system.
func AppropriateLengthUnit(sys System) Unit {
	switch sys {
	case Metric:
		return Kilometers
	case Imperial:
		return StatuteMiles
	default:
		return NauticalMiles
	}
}

// ToInternal converts a display value in u to internal units.
func ToInternal(value float64, u Unit) float64 { return value * u.Factor }

// FromInternal converts an internal value to a display value in u.
func FromInternal(value float64, u Unit) float64 { return value / u.Factor }

var speedSuffixes = map[string]Unit{
	"kn":   Knots,
	"kt":   Knots,
	"kts":  Knots,
	"m/s":  MetersPerSecond,
	"mps":  MetersPerSecond,
	"km/h": KilometersPerHour,
	"kph":  KilometersPerHour,
	"mph":  MilesPerHour,
}

var lengthSuffixes = map[string]Unit{
	"m":  Meters,
	"km": Kilometers,
	"nm": NauticalMiles,
	"yd": Yards,
	"mi": StatuteMiles,
}

// ParseSpeed parses text like "12", "12.5 kn", "4m/s" into metres per second.
// A bare number is taken in the system's appropriate speed unit.
func ParseSpeed(text string, sys System) (float64, error) {
	value, suffix, err := splitQuantity(text)
	if err != nil {
		return 0, fmt.Errorf("speed %q: %w", text, err)
	}
	if suffix == "" {
		return ToInternal(value, AppropriateSpeedUnit(sys)), nil
	}
	u, ok := speedSuffixes[strings.ToLower(suffix)]
	if !ok {
		return 0, fmt.Errorf("speed %q: unknown unit %q", text, suffix)
	}
	return ToInternal(value, u), nil
}

// ParseLength parses text like "2", "2.5 NM", "1500m" into metres. A bare
// number is taken in the system's appropriate length unit.
func ParseLength(text string, sys System) (float64, error) {
	value, suffix, err := splitQuantity(text)
	if err != nil {
		return 0, fmt.Errorf("length %q: %w", text, err)
	}
	if suffix == "" {
		return ToInternal(value, AppropriateLengthUnit(sys)), nil
	}
	u, ok := lengthSuffixes[strings.ToLower(suffix)]
	if !ok {
		return 0, fmt.Errorf("length %q: unknown unit %q", text, suffix)
	}
	return ToInternal(value, u), nil
}

// ParseDuration parses a time entry. Accepted forms:
//
//	"hh:mm" / "hh:mm:ss"  clock-style durations
//	bare number           minutes
//	anything else         Go duration syntax ("90s", "1h30m")
//
// A leading '+' marks the entry as relative to the current board time and is
// reported through the second return value.
func ParseDuration(text string) (time.Duration, bool, error) {
	s := strings.TrimSpace(text)
	relative := false
	if strings.HasPrefix(s, "+") {
		relative = true
		s = strings.TrimSpace(s[1:])
	}
	if s == "" {
		return 0, false, fmt.Errorf("time %q: empty", text)
	}

	if strings.Contains(s, ":") {
		d, err := parseClockDuration(s)
		if err != nil {
			return 0, false, fmt.Errorf("time %q: %w", text, err)
		}
		return d, relative, nil
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if v < 0 {
			return 0, false, fmt.Errorf("time %q: negative", text)
		}
		return time.Duration(v * float64(time.Minute)), relative, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, false, fmt.Errorf("time %q: not a duration", text)
	}
	return d, relative, nil
}

func parseClockDuration(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("want hh:mm or hh:mm:ss")
	}
	var total time.Duration
	scales := []time.Duration{time.Hour, time.Minute, time.Second}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return 0, fmt.Errorf("bad component %q", p)
		}
		if i > 0 && v > 59 {
			return 0, fmt.Errorf("component %q out of range", p)
		}
		total += time.Duration(v) * scales[i]
	}
	return total, nil
}

// ParseAngle parses a bearing or relative angle in degrees ("045", "45.5°",
// "120T") into radians.
func ParseAngle(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSuffix(s, "T")
	s = strings.TrimSuffix(s, "°")
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("angle %q: not a number", text)
	}
	return v * math.Pi / 180, nil
}

// FormatSpeed renders an internal speed for display in the system's unit.
func FormatSpeed(mps float64, sys System) string {
	u := AppropriateSpeedUnit(sys)
	return fmt.Sprintf("%.1f %s", FromInternal(mps, u), u.Name)
}

// FormatLength renders an internal length for display in the system's unit.
func FormatLength(m float64, sys System) string {
	u := AppropriateLengthUnit(sys)
	return fmt.Sprintf("%.2f %s", FromInternal(m, u), u.Name)
}

// FormatBearing renders a bearing in radians as whole-degree compass text.
func FormatBearing(rad float64) string {
	deg := math.Mod(rad*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return fmt.Sprintf("%03.0f°", deg)
}

// FormatDuration renders a duration as hh:mm:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// splitQuantity separates "12.5 kn" into the numeric part and unit suffix.
func splitQuantity(text string) (float64, string, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, "", fmt.Errorf("empty")
	}
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		i--
	}
	num := strings.TrimSpace(s[:i])
	suffix := strings.TrimSpace(s[i:])
	if num == "" {
		return 0, "", fmt.Errorf("no numeric value")
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, "", fmt.Errorf("bad number %q", num)
	}
	if v < 0 {
		return 0, "", fmt.Errorf("negative value")
	}
	return v, suffix, nil
}
