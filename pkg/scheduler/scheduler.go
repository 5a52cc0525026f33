package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/voluntold/roster-api-go/pkg/models"
)

// maxDateSteps is the hard ceiling on date-walk iterations per role-group.
// Hitting it is a silent degradation, not an error: the walk stops early
// with a warning and the partial schedule stands.
const maxDateSteps = 10000

// Scheduler walks a plan's date range and fills its roles, group by group.
type Scheduler struct {
	Plan  *Plan
	Facts *Facts
}

// NewScheduler creates a scheduler with fresh working state for the plan.
func NewScheduler(plan *Plan) *Scheduler {
	return &Scheduler{Plan: plan, Facts: NewFacts(plan)}
}

// CreateSchedule builds the schedule: validate the plan, then for each
// role-group (highest layout priority first) walk the date range in
// period-sized steps, placing specific-date requests first and then running
// the per-role selection loop. Secondary actions run once at the end over
// the finished schedule. Returns the scheduled dates in date order.
func (s *Scheduler) CreateSchedule() ([]*ScheduleAtDate, error) {
	if err := s.Plan.Validate(); err != nil {
		return nil, err
	}
	s.Plan.Prepare()
	s.Facts.Begin()

	for _, group := range s.Plan.RoleGroups() {
		steps := 0
		for date := s.Plan.StartDate; !date.After(s.Plan.EndDate); date = date.AddDate(0, 0, s.Plan.DaysPerPeriod) {
			steps++
			if steps > maxDateSteps {
				s.Facts.Warn(fmt.Sprintf("date walk stopped after %d steps at %s; schedule is incomplete",
					maxDateSteps, date.Format("2006-01-02")))
				break
			}
			s.placeSpecificRequests(group, date)
			for _, role := range group {
				s.processRole(group, role, date)
			}
		}
	}

	for _, a := range s.Plan.Assignments {
		for _, action := range a.SecondaryActions {
			action.Run(s.Facts)
		}
	}

	return s.Facts.Dates(), nil
}

// placeSpecificRequests honours date-specific role requests before the pick
// rules get a say.
func (s *Scheduler) placeSpecificRequests(group []*models.Role, date time.Time) {
	for _, a := range s.Plan.Assignments {
		for _, role := range a.SpecificRolesFor(date) {
			if !groupContains(group, role) {
				continue
			}
			if s.Facts.ScheduleForDate(date).IsPlaced(a) {
				continue
			}
			s.Facts.PlacePersonInRole(a, role, date, true, true,
				fmt.Sprintf("%s specifically asked for %s on this date", a.Name(), role.Name))
			s.Facts.SetDecisionsFor(a, date, true)
		}
	}
}

// processRole fills one role on one date: select an assignment via the pick
// rules, skip anyone already placed today (bumping their usage so the picker
// moves on), let the role rules swap the pick into a preferred role within
// the active group, otherwise place into the target role and stop. The loop
// bound is the number of assignments that can do the role, decremented every
// iteration whatever happens.
func (s *Scheduler) processRole(group []*models.Role, role *models.Role, date time.Time) {
	iterations := len(s.Plan.AssignmentsWithRole(role))
	sad := s.Facts.ScheduleForDate(date)

	for iterations > 0 {
		iterations--

		a := s.Facts.NextSuitableAssignmentFor(role, date)
		if a == nil {
			s.Facts.Narrate(fmt.Sprintf("nobody suitable for %s on %s",
				role.Name, date.Format("2006-01-02")))
			break
		}

		if sad.IsPlaced(a) {
			// Bump usage so the picker offers someone else next time
			// around instead of looping on this assignment.
			s.Facts.RecordUsage(role, a)
			continue
		}

		choice := s.Facts.NextSuitableRoleFor(a, date)
		if choice != nil && choice.Role != role && groupContains(group, choice.Role) &&
			sad.CountInRole(choice.Role) < choice.Role.MaximumWanted {
			// The pick prefers another role in this group that still has
			// room: place them there and re-select for the original role.
			s.Facts.PlacePersonInRole(a, choice.Role, date, true, true, choice.Reason)
			s.Facts.SetDecisionsFor(a, date, true)
			continue
		}

		reason := fmt.Sprintf("%s is next in rotation for %s", a.Name(), role.Name)
		if choice != nil && choice.Role == role {
			reason = choice.Reason
		}
		s.Facts.PlacePersonInRole(a, role, date, true, true, reason)
		s.Facts.SetDecisionsFor(a, date, true)
		break
	}
}

// FairnessScore returns a percentage (0-100) for how evenly placements are
// spread across the plan's assignments. 100 means a standard deviation of
// zero.
func (s *Scheduler) FairnessScore() float64 {
	if len(s.Plan.Assignments) == 0 {
		return 100.0
	}

	var sum float64
	for _, a := range s.Plan.Assignments {
		sum += float64(s.Facts.TotalUsage(a))
	}
	if sum == 0 {
		return 100.0
	}

	mean := sum / float64(len(s.Plan.Assignments))
	var varianceSum float64
	for _, a := range s.Plan.Assignments {
		diff := float64(s.Facts.TotalUsage(a)) - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(s.Plan.Assignments)))

	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}

func groupContains(group []*models.Role, role *models.Role) bool {
	for _, r := range group {
		if r == role {
			return true
		}
	}
	return false
}
