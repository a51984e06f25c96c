// Package civil converts between civil (wall-clock) time and UTC instants.
// Every other component performs its timezone math through this package so
// offset handling lives in exactly one place.
//
// DST policy: a wall-clock time that does not exist (spring-forward gap)
// resolves forward by the gap delta, e.g. 02:30 on a US spring-forward day
// becomes 03:30 local. An ambiguous wall-clock time (fall-back overlap)
// resolves to the earlier offset. Both follow time.Date normalization and are
// deterministic; see civil_test.go.
package civil

import (
	"fmt"
	"sync"
	"time"
)

// zones caches loaded IANA locations so per-slot conversion does not hit the
// tzdata files. Materialization converts thousands of boundaries per run.
var zones sync.Map // name -> *time.Location

// Zone returns the IANA location for name, loading it at most once.
func Zone(name string) (*time.Location, error) {
	if loc, ok := zones.Load(name); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	zones.Store(name, loc)
	return loc, nil
}

// ToUTC converts a civil date and wall-clock time in loc to a UTC instant.
func ToUTC(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, loc).UTC()
}

// ToCivil converts a UTC instant to the civil date and wall-clock time in loc.
func ToCivil(t time.Time, loc *time.Location) (year int, month time.Month, day, hour, minute int) {
	local := t.In(loc)
	year, month, day = local.Date()
	hour = local.Hour()
	minute = local.Minute()
	return
}

// DayStart returns the UTC instant of local midnight for the given civil date.
func DayStart(year int, month time.Month, day int, loc *time.Location) time.Time {
	return ToUTC(year, month, day, 0, 0, loc)
}

// MinuteOfDay converts a UTC instant to minutes from local midnight in loc.
// On DST transition days this is wall-clock minutes, not elapsed minutes.
func MinuteOfDay(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	return local.Hour()*60 + local.Minute()
}

// AtMinute returns the UTC instant of the given civil date plus minutes from
// local midnight.
func AtMinute(year int, month time.Month, day, minute int, loc *time.Location) time.Time {
	return ToUTC(year, month, day, minute/60, minute%60, loc)
}

// ParseDate parses a "2006-01-02" civil date string.
func ParseDate(date string) (year int, month time.Month, day int, err error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	year, month, day = t.Date()
	return year, month, day, nil
}
