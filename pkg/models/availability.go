package models

import (
	"fmt"
	"time"
)

// AvailabilityUnit is the granularity of a periodic availability.
type AvailabilityUnit string

const (
	UnitAnytime AvailabilityUnit = "anytime"
	UnitDays    AvailabilityUnit = "days"
	UnitWeeks   AvailabilityUnit = "weeks"
)

// PlacementCounter is the slice of the engine's working state an availability
// needs: how often a person was placed inside a window, and somewhere to
// narrate the decision.
type PlacementCounter interface {
	PlacementsInWindow(person *Person, from, to time.Time) int
	Narrate(text string)
}

// Availability describes how often a person is willing to be placed.
//
// Periodic mode ("anytime", "every N days", "every N weeks") is enforced
// entirely through exclusion zones: IsAvailable always says yes, and EndDate
// supplies the zone that blocks a second placement too soon.
//
// Sliding-window mode ("N times within the last M weeks", WindowWeeks > 0)
// is the opposite: its exclusion zone is always one week, and IsAvailable
// counts recent placements against the quota.
type Availability struct {
	Period      int              `json:"period"`
	Unit        AvailabilityUnit `json:"unit"`
	WindowWeeks int              `json:"window_weeks,omitempty"`
}

// AvailableAnytime places no restriction beyond "not twice on one date".
func AvailableAnytime() Availability {
	return Availability{Unit: UnitAnytime}
}

// AvailableEveryNDays allows one placement every n days.
func AvailableEveryNDays(n int) Availability {
	return Availability{Period: n, Unit: UnitDays}
}

// AvailableEveryNWeeks allows one placement every n weeks.
func AvailableEveryNWeeks(n int) Availability {
	return Availability{Period: n, Unit: UnitWeeks}
}

// AvailableNTimesPerMWeeks allows at most n placements within any trailing
// m-week window.
func AvailableNTimesPerMWeeks(n, m int) Availability {
	return Availability{Period: n, Unit: UnitWeeks, WindowWeeks: m}
}

// IsSlidingWindow reports whether this availability is quota based.
func (a Availability) IsSlidingWindow() bool {
	return a.WindowWeeks > 0
}

// EndDate returns the exclusive end of the exclusion zone a placement on the
// given date should create. Panics on a zero date: that is a wiring bug in
// the caller, not a scheduling outcome.
func (a Availability) EndDate(placed time.Time) time.Time {
	if placed.IsZero() {
		panic("availability: zero placement date")
	}
	if a.IsSlidingWindow() {
		// Quota mode always blocks one week; the quota itself is
		// enforced by IsAvailable.
		return placed.AddDate(0, 0, 6)
	}
	switch a.Unit {
	case UnitDays:
		return placed.AddDate(0, 0, a.Period-1)
	case UnitWeeks:
		return placed.AddDate(0, 0, a.Period*7-1)
	default:
		return placed.AddDate(0, 0, 1)
	}
}

// IsAvailable answers "can this person be placed on this date?". Periodic
// availabilities always say yes. Sliding-window availabilities count the
// person's placements in the trailing window and compare against the quota;
// when record is set the verdict is narrated into the decision log.
func (a Availability) IsAvailable(person *Person, date time.Time, counter PlacementCounter, record bool) bool {
	if date.IsZero() {
		panic("availability: zero query date")
	}
	if !a.IsSlidingWindow() {
		return true
	}
	from := date.AddDate(0, 0, -(a.WindowWeeks*7)+1)
	count := counter.PlacementsInWindow(person, from, date)
	ok := count < a.Period
	if record {
		counter.Narrate(fmt.Sprintf(
			"%s was placed %d time(s) between %s and %s (limit %d per %d week(s)): available=%t",
			person.Name, count,
			from.Format("2006-01-02"), date.Format("2006-01-02"),
			a.Period, a.WindowWeeks, ok))
	}
	return ok
}

// String renders the availability for decision traces.
func (a Availability) String() string {
	if a.IsSlidingWindow() {
		return fmt.Sprintf("%d time(s) per %d week(s)", a.Period, a.WindowWeeks)
	}
	switch a.Unit {
	case UnitDays:
		return fmt.Sprintf("every %d day(s)", a.Period)
	case UnitWeeks:
		return fmt.Sprintf("every %d week(s)", a.Period)
	default:
		return "anytime"
	}
}
