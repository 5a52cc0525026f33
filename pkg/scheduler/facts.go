package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/voluntold/roster-api-go/pkg/models"
)

// Facts is the working state of one schedule build: the in-progress per-date
// schedule, the exclusion-zone table, the usage counts and the transient
// decision log. It is also the context rules execute against. One Facts
// instance belongs to exactly one build; it is not safe for concurrent use.
type Facts struct {
	plan  *Plan
	began bool

	schedules map[string]*ScheduleAtDate

	// exclusions are per person: any zone blocks re-placement regardless
	// of which role created it.
	exclusions map[*models.Person][]models.Exclusion

	usage map[*models.Role]map[*Assignment]int

	pickRules map[*models.Role][]PickRule
	roleRules map[*Assignment][]RoleRule

	decisions []string
	depth     int

	warnings []string
}

// NewFacts creates the working state for one build of the plan.
func NewFacts(plan *Plan) *Facts {
	return &Facts{
		plan:       plan,
		schedules:  make(map[string]*ScheduleAtDate),
		exclusions: make(map[*models.Person][]models.Exclusion),
		usage:      make(map[*models.Role]map[*Assignment]int),
	}
}

// Begin computes the pick-rule and role-rule maps from the plan and resets
// the per-date schedule table. Idempotent; must be called before any
// placement.
func (f *Facts) Begin() {
	if f.began {
		return
	}
	f.pickRules = f.plan.PickRules()
	f.roleRules = f.plan.RoleRules()
	f.schedules = make(map[string]*ScheduleAtDate)
	f.began = true
}

// Plan returns the plan this build consumes.
func (f *Facts) Plan() *Plan {
	return f.plan
}

// ScheduleForDate returns the schedule slot for a date, creating it on first
// sight. Two timestamps in the same hour bucket share one slot.
func (f *Facts) ScheduleForDate(date time.Time) *ScheduleAtDate {
	key := models.DateKey(date)
	if sad, ok := f.schedules[key]; ok {
		return sad
	}
	sad := newScheduleAtDate(date)
	f.schedules[key] = sad
	return sad
}

// Dates returns every schedule slot created so far, in date order.
func (f *Facts) Dates() []*ScheduleAtDate {
	out := make([]*ScheduleAtDate, 0, len(f.schedules))
	for _, sad := range f.schedules {
		out = append(out, sad)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// AssignmentFor returns the plan's assignment for a person, nil if none.
func (f *Facts) AssignmentFor(person *models.Person) *Assignment {
	return f.plan.AssignmentFor(person)
}

// HasExclusionFor is the primary conflict check: the person is blocked on
// this date if they marked themselves unavailable, or if some existing zone
// of theirs overlaps the zone a new placement would create. The role only
// shapes the candidate zone; the overlap test itself is per person, any
// role.
func (f *Facts) HasExclusionFor(date time.Time, person *models.Person, role *models.Role) (bool, string) {
	if person.IsUnavailableOn(date) {
		return true, fmt.Sprintf("%s is unavailable on %s", person.Name, date.Format("2006-01-02"))
	}

	availability := models.AvailableAnytime()
	if a := f.AssignmentFor(person); a != nil {
		availability = a.Availability
	}
	candidate := models.NewExclusion(date, availability, role)

	for _, zone := range f.exclusions[person] {
		if zone.Overlaps(candidate) || candidate.Overlaps(zone) {
			return true, fmt.Sprintf("%s is blocked by the exclusion zone %s", person.Name, zone)
		}
	}
	return false, ""
}

// ExclusionsFor returns the person's accumulated exclusion zones.
func (f *Facts) ExclusionsFor(person *models.Person) []models.Exclusion {
	return f.exclusions[person]
}

// isSuitable applies the common eligibility checks: a non-empty weight list
// covering the role, no conflicting exclusion zone, and a pass from the
// person's availability rule.
func (f *Facts) isSuitable(a *Assignment, role *models.Role, date time.Time) bool {
	if !a.IsEligible() || !a.CanDo(role) {
		return false
	}
	if excluded, why := f.HasExclusionFor(date, a.Person, role); excluded {
		f.Narrate(why)
		return false
	}
	return a.Availability.IsAvailable(a.Person, date, f, true)
}

// NextSuitableAssignmentFor runs the role's pick rules in order and returns
// the first suitable candidate. With no rule match it falls back to ordering
// every assignment that can do the role by ascending total placements, ties
// broken by plan order. Nil when nobody is suitable.
func (f *Facts) NextSuitableAssignmentFor(role *models.Role, date time.Time) *Assignment {
	f.mustHaveBegun()
	if role == nil {
		panic("facts: selecting an assignment for a nil role")
	}

	for _, rule := range f.pickRules[role] {
		for _, candidate := range rule.Execute(f, role, date) {
			if f.isSuitable(candidate, role, date) {
				return candidate
			}
		}
	}

	candidates := f.plan.AssignmentsWithRole(role)
	sort.SliceStable(candidates, func(i, j int) bool {
		return f.TotalUsage(candidates[i]) < f.TotalUsage(candidates[j])
	})
	for _, candidate := range candidates {
		if f.isSuitable(candidate, role, date) {
			return candidate
		}
	}
	return nil
}

// NextSuitableRoleFor runs the assignment's role rules in order and returns
// the first rule's preferred choice. Nil when no rule produces one.
func (f *Facts) NextSuitableRoleFor(a *Assignment, date time.Time) *RoleChoice {
	f.mustHaveBegun()
	if a == nil {
		panic("facts: selecting a role for a nil assignment")
	}
	for _, rule := range f.roleRules[a] {
		if choices := rule.Execute(f, a, date); len(choices) > 0 {
			return &choices[0]
		}
	}
	return nil
}

// PlacePersonInRole is the single placement primitive. It refuses (false, no
// side effects) when the role is already at capacity for the date. On
// success it records the exclusion zone, updates the per-date schedule,
// narrates the decision, optionally bumps the usage counter, and optionally
// runs the assignment's conditional rules, which may recursively place other
// assignments.
func (f *Facts) PlacePersonInRole(a *Assignment, role *models.Role, date time.Time, recordUsage, runConditionals bool, decision string) bool {
	f.mustHaveBegun()
	if a == nil {
		panic("facts: placing a nil assignment")
	}
	if role == nil {
		panic("facts: placing into a nil role")
	}

	sad := f.ScheduleForDate(date)
	if sad.CountInRole(role) >= role.MaximumWanted {
		f.Narrate(fmt.Sprintf("%s already has %d of %d wanted on %s",
			role.Name, sad.CountInRole(role), role.MaximumWanted, date.Format("2006-01-02")))
		return false
	}

	zone := models.NewExclusion(date, a.Availability, role)
	f.exclusions[a.Person] = append(f.exclusions[a.Person], zone)
	sad.Add(a, role)
	f.Narrate(fmt.Sprintf("placed %s in %s on %s: %s",
		a.Name(), role.Name, date.Format("2006-01-02"), decision))

	if recordUsage {
		f.RecordUsage(role, a)
	}

	if runConditionals {
		// Depth is tracked only to indent the narration of a cascade.
		f.depth++
		for _, rule := range a.ConditionalRules {
			rule.Run(f, a, role, date)
		}
		f.depth--
	}
	return true
}

// SetDecisionsFor attaches the accumulated decision-log lines to the score
// for that date and assignment, then optionally clears the transient log.
func (f *Facts) SetDecisionsFor(a *Assignment, date time.Time, clear bool) {
	sad := f.ScheduleForDate(date)
	if score := sad.ScoreFor(a.Person); score != nil {
		score.Decisions = append(score.Decisions, f.decisions...)
	}
	if clear {
		f.decisions = nil
	}
}

// Narrate appends a line to the transient decision log, indented by the
// current conditional-cascade depth.
func (f *Facts) Narrate(text string) {
	f.decisions = append(f.decisions, strings.Repeat("  ", f.depth)+text)
}

// Decisions returns the transient decision log.
func (f *Facts) Decisions() []string {
	return f.decisions
}

// Warn records a build warning (loop ceilings). The build keeps going;
// callers should treat a schedule with warnings as suspect.
func (f *Facts) Warn(text string) {
	f.warnings = append(f.warnings, text)
}

// Warnings returns the build warnings.
func (f *Facts) Warnings() []string {
	return f.warnings
}

// UsageCount returns how often the assignment has filled the role.
func (f *Facts) UsageCount(role *models.Role, a *Assignment) int {
	if role == nil || a == nil {
		panic("facts: counting usage for a nil role or assignment")
	}
	return f.usage[role][a]
}

// TotalUsage returns the assignment's placements across all roles.
func (f *Facts) TotalUsage(a *Assignment) int {
	total := 0
	for _, byAssignment := range f.usage {
		total += byAssignment[a]
	}
	return total
}

// RecordUsage bumps the usage counter for role and assignment.
func (f *Facts) RecordUsage(role *models.Role, a *Assignment) {
	if role == nil || a == nil {
		panic("facts: recording usage for a nil role or assignment")
	}
	if f.usage[role] == nil {
		f.usage[role] = make(map[*Assignment]int)
	}
	f.usage[role][a]++
}

// SeedUsage sets a usage counter directly, for warm starts sourced from
// outside the process.
func (f *Facts) SeedUsage(role *models.Role, a *Assignment, count int) {
	if f.usage[role] == nil {
		f.usage[role] = make(map[*Assignment]int)
	}
	f.usage[role][a] = count
}

// PlacementsInWindow counts the person's placements on dates within
// [from, to], both inclusive. This backs the sliding-window availability.
func (f *Facts) PlacementsInWindow(person *models.Person, from, to time.Time) int {
	count := 0
	for _, sad := range f.schedules {
		if sad.Date.Before(from) || sad.Date.After(to) {
			continue
		}
		if score := sad.ScoreFor(person); score != nil {
			count += len(score.Roles)
		}
	}
	return count
}

// CopyUsageDataFrom seeds usage counts and exclusion zones from a previous
// build, so the next period's schedule doesn't repeat the last one's pattern
// from day one.
func (f *Facts) CopyUsageDataFrom(previous *Facts) {
	for role, byAssignment := range previous.usage {
		for a, count := range byAssignment {
			if f.usage[role] == nil {
				f.usage[role] = make(map[*Assignment]int)
			}
			f.usage[role][a] += count
		}
	}
	for person, zones := range previous.exclusions {
		f.exclusions[person] = append(f.exclusions[person], zones...)
	}
}

func (f *Facts) mustHaveBegun() {
	if !f.began {
		panic("facts: Begin was not called before placement work")
	}
}
