package units

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpeed(t *testing.T) {
	cases := []struct {
		text string
		sys  System
		want float64
	}{
		{"10 kn", Nautical, 10 * 1852.0 / 3600.0},
		{"10", Nautical, 10 * 1852.0 / 3600.0},
		{"12.5kt", Metric, 12.5 * 1852.0 / 3600.0},
		{"4 m/s", Nautical, 4},
		{"36 km/h", Nautical, 10},
		{"36", Metric, 10},
		{"10 mph", Imperial, 10 * 1609.344 / 3600.0},
	}
	for _, c := range cases {
		got, err := ParseSpeed(c.text, c.sys)
		require.NoError(t, err, "text %q", c.text)
		assert.InDelta(t, c.want, got, 1e-9, "text %q", c.text)
	}
}

func TestParseSpeedRejectsGarbage(t *testing.T) {
	for _, text := range []string{"", "fast", "12 furlongs", "-3 kn"} {
		_, err := ParseSpeed(text, Nautical)
		assert.Error(t, err, "text %q", text)
	}
}

func TestParseLength(t *testing.T) {
	got, err := ParseLength("2 NM", Nautical)
	require.NoError(t, err)
	assert.InDelta(t, 3704.0, got, 1e-9)

	got, err = ParseLength("1.5", Metric)
	require.NoError(t, err)
	assert.InDelta(t, 1500.0, got, 1e-9)

	got, err = ParseLength("500m", Imperial)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, got, 1e-9)
}

func TestParseDuration(t *testing.T) {
	d, rel, err := ParseDuration("01:30")
	require.NoError(t, err)
	assert.False(t, rel)
	assert.Equal(t, 90*time.Minute, d)

	d, rel, err = ParseDuration("+00:15:30")
	require.NoError(t, err)
	assert.True(t, rel)
	assert.Equal(t, 15*time.Minute+30*time.Second, d)

	d, rel, err = ParseDuration("45")
	require.NoError(t, err)
	assert.False(t, rel)
	assert.Equal(t, 45*time.Minute, d)

	d, _, err = ParseDuration("90s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, _, err = ParseDuration("1:99")
	assert.Error(t, err)
	_, _, err = ParseDuration("")
	assert.Error(t, err)
}

func TestParseAngle(t *testing.T) {
	got, err := ParseAngle("045")
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/4, got, 1e-12)

	got, err = ParseAngle("180°")
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, got, 1e-12)

	got, err = ParseAngle("090T")
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, got, 1e-12)

	_, err = ParseAngle("north")
	assert.Error(t, err)
}

func TestRoundTripConversion(t *testing.T) {
	for _, u := range []Unit{Knots, KilometersPerHour, MilesPerHour, NauticalMiles, Yards} {
		v := FromInternal(ToInternal(17.25, u), u)
		assert.InDelta(t, 17.25, v, 1e-12, "unit %s", u.Name)
	}
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "10.0 kn", FormatSpeed(10*Knots.Factor, Nautical))
	assert.Equal(t, "2.00 NM", FormatLength(3704, Nautical))
	assert.Equal(t, "090°", FormatBearing(math.Pi/2))
	assert.Equal(t, "270°", FormatBearing(-math.Pi/2))
	assert.Equal(t, "01:00:50", FormatDuration(time.Hour+50*time.Second))
}
