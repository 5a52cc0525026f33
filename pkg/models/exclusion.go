package models

import (
	"fmt"
	"time"
)

// Exclusion is a date range during which a person may not be placed again.
// End is exclusive. One is recorded for every successful placement and they
// accumulate for the life of a schedule build.
type Exclusion struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Role  *Role     `json:"-"`
}

// NewExclusion builds the zone a placement would create: the placement date
// through the end date the person's availability dictates.
func NewExclusion(placed time.Time, availability Availability, role *Role) Exclusion {
	return Exclusion{Start: placed, End: availability.EndDate(placed), Role: role}
}

// Overlaps reports whether two zones share any date. Inclusive starts,
// exclusive ends, checked in both directions.
func (e Exclusion) Overlaps(other Exclusion) bool {
	return e.Start.Before(other.End) && other.Start.Before(e.End)
}

// Contains reports whether date falls inside the zone.
func (e Exclusion) Contains(date time.Time) bool {
	return !date.Before(e.Start) && date.Before(e.End)
}

// String renders the zone for decision traces.
func (e Exclusion) String() string {
	name := "any role"
	if e.Role != nil {
		name = e.Role.Name
	}
	return fmt.Sprintf("[%s .. %s) for %s",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"), name)
}
