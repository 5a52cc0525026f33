package handlers

import (
	"fmt"

	"github.com/voluntold/roster-api-go/pkg/models"
	"github.com/voluntold/roster-api-go/pkg/scheduler"
)

// build holds a constructed plan plus the name lookups needed to shape the
// response afterwards.
type build struct {
	scheduler   *scheduler.Scheduler
	plan        *scheduler.Plan
	roles       map[string]*models.Role
	assignments map[string]*scheduler.Assignment
}

// buildFromInput turns a wire-level roster request into a runnable plan:
// roles, people with availabilities and weights, fixed-date picks,
// conditional rules, pairings and any warm-start usage seeds.
func buildFromInput(input *models.RosterInput) (*build, error) {
	plan := scheduler.NewPlan(input.StartDate, input.EndDate, input.DaysPerPeriod)

	b := &build{
		plan:        plan,
		roles:       make(map[string]*models.Role),
		assignments: make(map[string]*scheduler.Assignment),
	}

	for _, r := range input.Roles {
		if _, dup := b.roles[r.Name]; dup {
			return nil, fmt.Errorf("duplicate role: %s", r.Name)
		}
		maximum := r.MaximumWanted
		if maximum <= 0 {
			maximum = 1
		}
		role := models.NewRole(r.Name, r.LayoutPriority, maximum)
		b.roles[r.Name] = role
		plan.AddRole(role)
	}

	// First pass: people, weights, availabilities, specific dates.
	for _, in := range input.Assignments {
		if _, dup := b.assignments[in.Person]; dup {
			return nil, fmt.Errorf("duplicate person: %s", in.Person)
		}
		person := models.NewPerson(in.Person)
		for _, r := range in.Unavailable {
			person.AddUnavailability(r.Start, r.End)
		}

		a := plan.GetOrCreateAssignment(person)
		a.Availability = availabilityFromInput(in.Availability)
		b.assignments[in.Person] = a

		// Weights arrive as a JSON map; walk the plan's role order so the
		// weight list, and with it every tie-break, is deterministic.
		for roleName := range in.Weights {
			if _, ok := b.roles[roleName]; !ok {
				return nil, fmt.Errorf("%s has a weight for unknown role %s", in.Person, roleName)
			}
		}
		for _, role := range plan.Roles {
			weight, ok := in.Weights[role.Name]
			if !ok {
				continue
			}
			if weight <= 0 {
				return nil, fmt.Errorf("%s has a non-positive weight for role %s", in.Person, role.Name)
			}
			a.AddRoleWeight(role, weight)
		}

		for _, sd := range in.SpecificDates {
			role, ok := b.roles[sd.Role]
			if !ok {
				return nil, fmt.Errorf("%s asks for unknown role %s", in.Person, sd.Role)
			}
			a.AddSpecificRole(sd.Date, role)
		}
	}

	// Second pass: rules that reference other people, now that everyone
	// exists.
	for _, in := range input.Assignments {
		a := b.assignments[in.Person]

		for _, cond := range in.Conditionals {
			ifRole, ok := b.roles[cond.IfRole]
			if !ok {
				return nil, fmt.Errorf("conditional for %s names unknown role %s", in.Person, cond.IfRole)
			}
			thenRole, ok := b.roles[cond.ThenRole]
			if !ok {
				return nil, fmt.Errorf("conditional for %s names unknown role %s", in.Person, cond.ThenRole)
			}
			other, ok := b.assignments[cond.ThenPerson]
			if !ok {
				return nil, fmt.Errorf("conditional for %s names unknown person %s", in.Person, cond.ThenPerson)
			}
			a.AddConditionalRule(scheduler.NewAssignedToRoleCondition(
				ifRole, scheduler.NewScheduleOn(other.Person, thenRole)))
		}

		for _, pairing := range in.Pairings {
			other, ok := b.assignments[pairing.With]
			if !ok {
				return nil, fmt.Errorf("pairing for %s names unknown person %s", in.Person, pairing.With)
			}
			max := pairing.Max
			if max <= 0 {
				max = 1
			}
			a.AddSecondaryAction(scheduler.NewTryToScheduleWith(
				a, other, availabilityFromInput(pairing.Reach), max))
		}
	}

	for _, pick := range input.FixedPicks {
		role, ok := b.roles[pick.Role]
		if !ok {
			return nil, fmt.Errorf("fixed pick names unknown role %s", pick.Role)
		}
		a, ok := b.assignments[pick.Person]
		if !ok {
			return nil, fmt.Errorf("fixed pick names unknown person %s", pick.Person)
		}
		plan.AddPickRule(scheduler.NewOnThisDate(pick.Date, a, role))
	}

	b.scheduler = scheduler.NewScheduler(plan)

	for _, seed := range input.PreviousUsage {
		role, ok := b.roles[seed.Role]
		if !ok {
			return nil, fmt.Errorf("previous usage names unknown role %s", seed.Role)
		}
		a, ok := b.assignments[seed.Person]
		if !ok {
			return nil, fmt.Errorf("previous usage names unknown person %s", seed.Person)
		}
		b.scheduler.Facts.SeedUsage(role, a, seed.Count)
	}

	return b, nil
}

// availabilityFromInput maps the wire form onto an availability, defaulting
// to anytime.
func availabilityFromInput(in models.AvailabilityInput) models.Availability {
	if in.WindowWeeks > 0 {
		return models.AvailableNTimesPerMWeeks(in.Period, in.WindowWeeks)
	}
	switch models.AvailabilityUnit(in.Unit) {
	case models.UnitDays:
		return models.AvailableEveryNDays(in.Period)
	case models.UnitWeeks:
		return models.AvailableEveryNWeeks(in.Period)
	default:
		return models.AvailableAnytime()
	}
}

// shapeResponse flattens the finished schedule for the wire: per-date
// placements and decision traces, per-date unfilled roles, the fairness
// score and the usage counters a follow-up build can warm-start from.
func (b *build) shapeResponse(dates []*scheduler.ScheduleAtDate) models.RosterResponse {
	results := make([]models.DateResult, 0, len(dates))
	for _, sad := range dates {
		result := models.DateResult{
			Date:       sad.Date.Format("2006-01-02"),
			Placements: make(map[string][]string),
			Decisions:  make(map[string][]string),
		}
		for _, role := range b.plan.Roles {
			var names []string
			for _, p := range sad.PeopleInRole(role) {
				names = append(names, p.Name)
			}
			result.Placements[role.Name] = names
			if len(names) < role.MaximumWanted {
				result.Unfilled = append(result.Unfilled, role.Name)
			}
		}
		for _, a := range sad.Assignments() {
			if score := sad.ScoreFor(a.Person); score != nil && len(score.Decisions) > 0 {
				result.Decisions[a.Name()] = score.Decisions
			}
		}
		results = append(results, result)
	}

	var usage []models.UsageSeed
	for _, role := range b.plan.Roles {
		for _, a := range b.plan.Assignments {
			if count := b.scheduler.Facts.UsageCount(role, a); count > 0 {
				usage = append(usage, models.UsageSeed{Role: role.Name, Person: a.Name(), Count: count})
			}
		}
	}

	return models.RosterResponse{
		Dates:         results,
		FairnessScore: b.scheduler.FairnessScore(),
		Usage:         usage,
		Warnings:      b.scheduler.Facts.Warnings(),
	}
}
