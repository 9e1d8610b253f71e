// Package tz converts UTC instants to local wall time using a pair of
// seasonal transition rules (daylight saving and standard time).
package tz

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Week is the occurrence of a weekday inside a month.
type Week int

const (
	Last Week = iota
	First
	Second
	Third
	Fourth
)

var weekNames = []string{"last", "first", "second", "third", "fourth"}

func (w Week) String() string {
	if w < Last || w > Fourth {
		return fmt.Sprintf("Week(%d)", int(w))
	}
	return weekNames[w]
}

// Rule describes when a transition happens (local wall time of the clock
// that is in force before the transition) and the UTC offset that applies
// after it.
type Rule struct {
	Abbrev  string
	Week    Week
	Weekday time.Weekday
	Month   time.Month
	Hour    int
	// Offset in minutes east of UTC
	Offset int
}

func (r Rule) String() string {
	return fmt.Sprintf("%s (%s %s of %s at %02d:00, UTC%+03d:%02d)",
		r.Abbrev, r.Week, r.Weekday, r.Month, r.Hour, r.Offset/60, abs(r.Offset%60))
}

// wallTime returns the local wall time of the transition in the given year,
// expressed in a UTC-located time.Time.
func (r Rule) wallTime(year int) time.Time {
	month := r.Month
	week := r.Week
	y := year
	if week == Last {
		// Start from the first occurrence in the next month and go back one week
		month++
		if month > time.December {
			month = time.January
			y++
		}
		week = First
	}

	t := time.Date(y, month, 1, r.Hour, 0, 0, 0, time.UTC)
	days := (int(r.Weekday)-int(t.Weekday())+7)%7 + (int(week)-1)*7
	t = t.AddDate(0, 0, days)
	if r.Week == Last {
		t = t.AddDate(0, 0, -7)
	}
	return t
}

func (r Rule) zone() *time.Location {
	return time.FixedZone(r.Abbrev, r.Offset*60)
}

// Timezone is a DST/standard rule pair.
type Timezone struct {
	DST Rule
	STD Rule
}

func New(dst, std Rule) Timezone {
	return Timezone{DST: dst, STD: std}
}

type transition struct {
	at   time.Time
	rule Rule
}

// DSTStart returns the UTC instant daylight saving time begins in year.
func (z Timezone) DSTStart(year int) time.Time {
	return z.DST.wallTime(year).Add(-time.Duration(z.STD.Offset) * time.Minute)
}

// DSTEnd returns the UTC instant standard time begins in year.
func (z Timezone) DSTEnd(year int) time.Time {
	return z.STD.wallTime(year).Add(-time.Duration(z.DST.Offset) * time.Minute)
}

func (z Timezone) observesDST(year int) bool {
	return !z.DSTStart(year).Equal(z.DSTEnd(year))
}

// utcTransitions lists the transitions of the surrounding years, in order.
func (z Timezone) utcTransitions(year int) []transition {
	var ts []transition
	for y := year - 1; y <= year+1; y++ {
		ts = append(ts,
			transition{at: z.DSTStart(y), rule: z.DST},
			transition{at: z.DSTEnd(y), rule: z.STD})
	}
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].at.Before(ts[j].at) })
	return ts
}

// Rule returns the rule in force at utc. An instant equal to a transition
// selects the rule that starts there.
func (z Timezone) Rule(utc time.Time) Rule {
	utc = utc.UTC()
	if !z.observesDST(utc.Year()) {
		return z.STD
	}

	rule := z.STD
	for _, t := range z.utcTransitions(utc.Year()) {
		if utc.Before(t.at) {
			break
		}
		rule = t.rule
	}
	return rule
}

// ToLocal converts utc to local time. The returned time carries a fixed zone
// named after the active rule.
func (z Timezone) ToLocal(utc time.Time) (time.Time, Rule) {
	rule := z.Rule(utc)
	return utc.In(rule.zone()), rule
}

// ToUTC interprets the wall clock fields of local (its location is ignored)
// and returns the matching UTC instant. Inside the repeated hour of a
// DST→STD transition the DST interpretation wins.
func (z Timezone) ToUTC(local time.Time) time.Time {
	wall := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)

	rule := z.STD
	if z.observesDST(wall.Year()) {
		var ts []transition
		for y := wall.Year() - 1; y <= wall.Year()+1; y++ {
			ts = append(ts,
				transition{at: z.DST.wallTime(y), rule: z.DST},
				transition{at: z.STD.wallTime(y), rule: z.STD})
		}
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].at.Before(ts[j].at) })
		for _, t := range ts {
			if wall.Before(t.at) {
				break
			}
			rule = t.rule
		}
	}

	return wall.Add(-time.Duration(rule.Offset) * time.Minute)
}

// ParseWeek accepts "first".."fourth" and "last".
func ParseWeek(s string) (Week, error) {
	for i, name := range weekNames {
		if strings.EqualFold(s, name) {
			return Week(i), nil
		}
	}
	return Last, fmt.Errorf("unknown week %q", s)
}

// ParseWeekday accepts three letter English day names ("sun", "mon", ...).
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()[:3]) || strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// ParseMonth accepts three letter English month names ("jan", "feb", ...).
func ParseMonth(s string) (time.Month, error) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(s, m.String()[:3]) || strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return time.January, fmt.Errorf("unknown month %q", s)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
