package tz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var (
	cest = Rule{Abbrev: "CEST", Week: Last, Weekday: time.Sunday, Month: time.March, Hour: 2, Offset: 120}
	cet  = Rule{Abbrev: "CET", Week: Last, Weekday: time.Sunday, Month: time.October, Hour: 3, Offset: 60}

	aedt = Rule{Abbrev: "AEDT", Week: First, Weekday: time.Sunday, Month: time.October, Hour: 2, Offset: 660}
	aest = Rule{Abbrev: "AEST", Week: First, Weekday: time.Sunday, Month: time.April, Hour: 3, Offset: 600}

	centralEurope = New(cest, cet)
	sydney        = New(aedt, aest)
)

func TestTransitions(t *testing.T) {
	assert.Equal(t, time.Date(2026, time.March, 29, 1, 0, 0, 0, time.UTC), centralEurope.DSTStart(2026))
	assert.Equal(t, time.Date(2026, time.October, 25, 1, 0, 0, 0, time.UTC), centralEurope.DSTEnd(2026))

	assert.Equal(t, time.Date(2026, time.October, 3, 16, 0, 0, 0, time.UTC), sydney.DSTStart(2026))
	assert.Equal(t, time.Date(2026, time.April, 4, 16, 0, 0, 0, time.UTC), sydney.DSTEnd(2026))
}

func TestRuleAtBoundary(t *testing.T) {
	start := centralEurope.DSTStart(2026)
	end := centralEurope.DSTEnd(2026)

	assert.Equal(t, "CET", centralEurope.Rule(start.Add(-time.Nanosecond)).Abbrev)
	assert.Equal(t, "CEST", centralEurope.Rule(start).Abbrev)
	assert.Equal(t, "CEST", centralEurope.Rule(end.Add(-time.Nanosecond)).Abbrev)
	assert.Equal(t, "CET", centralEurope.Rule(end).Abbrev)
}

func TestToLocal(t *testing.T) {
	tests := []struct {
		name   string
		zone   Timezone
		utc    time.Time
		local  string
		abbrev string
	}{
		{"summer", centralEurope, time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC), "2026-10-18 14:00", "CEST"},
		{"winter", centralEurope, time.Date(2026, time.January, 5, 23, 30, 0, 0, time.UTC), "2026-01-06 00:30", "CET"},
		{"new year eve", centralEurope, time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC), "2026-01-01 00:59", "CET"},
		{"southern january", sydney, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), "2026-01-15 11:00", "AEDT"},
		{"southern july", sydney, time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC), "2026-07-15 10:00", "AEST"},
		{"southern new year", sydney, time.Date(2025, time.December, 31, 13, 0, 0, 0, time.UTC), "2026-01-01 00:00", "AEDT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, rule := tt.zone.ToLocal(tt.utc)
			assert.Equal(t, tt.local, local.Format("2006-01-02 15:04"))
			assert.Equal(t, tt.abbrev, rule.Abbrev)
		})
	}
}

func TestNoDaylightSaving(t *testing.T) {
	utcRule := Rule{Abbrev: "UTC", Week: Last, Weekday: time.Sunday, Month: time.March, Hour: 1, Offset: 0}
	zone := New(utcRule, utcRule)

	at := zone.DSTStart(2026)
	assert.Equal(t, utcRule, zone.Rule(at))
	local, _ := zone.ToLocal(at)
	assert.True(t, local.Equal(at))
}

func TestToUTC(t *testing.T) {
	wall := func(month time.Month, day, hour, min int) time.Time {
		return time.Date(2026, month, day, hour, min, 0, 0, time.UTC)
	}

	assert.Equal(t, wall(time.October, 18, 12, 0), centralEurope.ToUTC(wall(time.October, 18, 14, 0)))
	assert.Equal(t, wall(time.January, 5, 23, 30), centralEurope.ToUTC(wall(time.January, 6, 0, 30)))
	// repeated hour resolves to daylight time
	assert.Equal(t, wall(time.October, 25, 0, 30), centralEurope.ToUTC(wall(time.October, 25, 2, 30)))
	assert.Equal(t, wall(time.October, 25, 2, 30), centralEurope.ToUTC(wall(time.October, 25, 3, 30)))
}

func TestRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sec := rapid.Int64Range(
			time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
			time.Date(2090, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
		).Draw(t, "sec")
		utc := time.Unix(sec, 0).UTC()

		for _, zone := range []Timezone{centralEurope, sydney} {
			local, rule := zone.ToLocal(utc)
			_, offset := local.Zone()
			if offset != rule.Offset*60 {
				t.Fatalf("zone offset %d does not match rule %s", offset, rule)
			}

			wall := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), 0, time.UTC)
			if back := wall.Add(-time.Duration(rule.Offset) * time.Minute); !back.Equal(utc) {
				t.Fatalf("%s: local %s minus offset gives %s", utc, local, back)
			}
		}
	})
}

func TestParse(t *testing.T) {
	w, err := ParseWeek("Last")
	require.NoError(t, err)
	assert.Equal(t, Last, w)
	w, err = ParseWeek("third")
	require.NoError(t, err)
	assert.Equal(t, Third, w)
	_, err = ParseWeek("fifth")
	assert.Error(t, err)

	d, err := ParseWeekday("sun")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, d)
	d, err = ParseWeekday("Wednesday")
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, d)
	_, err = ParseWeekday("xyz")
	assert.Error(t, err)

	m, err := ParseMonth("oct")
	require.NoError(t, err)
	assert.Equal(t, time.October, m)
	_, err = ParseMonth("")
	assert.Error(t, err)
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "CEST (last Sunday of March at 02:00, UTC+02:00)", cest.String())
}
