package scheduler

import (
	"fmt"

	"github.com/voluntold/roster-api-go/pkg/models"
)

// SecondaryAction runs once per schedule build, after the date walk is
// complete, reading the finished per-date schedule.
type SecondaryAction interface {
	Run(f *Facts)
	Prepare()
}

// TryToScheduleWith opportunistically co-schedules two people: wherever the
// owner ended up placed, it tries to place the other person on the same
// date, at most Max times. The reach availability shapes the zone the
// conflict check tests, independent of the other person's own availability.
type TryToScheduleWith struct {
	Owner *Assignment
	Other *Assignment
	Reach models.Availability
	Max   int

	fired int
}

// NewTryToScheduleWith builds the pairing action.
func NewTryToScheduleWith(owner, other *Assignment, reach models.Availability, max int) *TryToScheduleWith {
	return &TryToScheduleWith{Owner: owner, Other: other, Reach: reach, Max: max}
}

// Prepare resets the trigger count before a run.
func (t *TryToScheduleWith) Prepare() {
	t.fired = 0
}

// Run scans the finished schedule in date order and co-places the other
// person wherever the owner is placed, until the pairing has fired Max
// times.
func (t *TryToScheduleWith) Run(f *Facts) {
	for _, sad := range f.Dates() {
		if t.fired >= t.Max {
			return
		}
		if !sad.IsPlaced(t.Owner) || sad.IsPlaced(t.Other) {
			continue
		}
		if blocked, why := t.withinReach(f, sad); blocked {
			f.Narrate(fmt.Sprintf("could not pair %s with %s on %s: %s",
				t.Other.Name(), t.Owner.Name(), sad.Date.Format("2006-01-02"), why))
			continue
		}
		choice := f.NextSuitableRoleFor(t.Other, sad.Date)
		if choice == nil {
			continue
		}
		placed := f.PlacePersonInRole(t.Other, choice.Role, sad.Date, true, false,
			fmt.Sprintf("paired with %s (%d of %d pairings used)", t.Owner.Name(), t.fired+1, t.Max))
		f.SetDecisionsFor(t.Other, sad.Date, true)
		if placed {
			t.fired++
		}
	}
}

// withinReach checks the pairing's own conflict zone for the other person:
// their unavailability plus any exclusion zone overlapping what a placement
// with the reach availability would create.
func (t *TryToScheduleWith) withinReach(f *Facts, sad *ScheduleAtDate) (bool, string) {
	person := t.Other.Person
	if person.IsUnavailableOn(sad.Date) {
		return true, fmt.Sprintf("%s is unavailable", person.Name)
	}
	candidate := models.NewExclusion(sad.Date, t.Reach, nil)
	for _, zone := range f.ExclusionsFor(person) {
		if zone.Overlaps(candidate) {
			return true, fmt.Sprintf("%s is blocked by the exclusion zone %s", person.Name, zone)
		}
	}
	return false, ""
}
