package scheduler

import (
	"strings"
	"time"

	"github.com/voluntold/roster-api-go/pkg/models"
)

// ScheduleScore is what one assignment got on one date: the roles they were
// placed in plus the decision trace explaining why.
type ScheduleScore struct {
	Roles     []*models.Role
	Decisions []string
}

// HasRole reports whether the score includes the role.
func (s *ScheduleScore) HasRole(role *models.Role) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ScheduleAtDate is one calendar slot of the finished schedule: which
// assignment holds which roles, with per-assignment decision traces.
// Created lazily, one per distinct date bucket, and reused across
// role-groups for the same date.
type ScheduleAtDate struct {
	Date time.Time

	scores map[*Assignment]*ScheduleScore
	order  []*Assignment
}

func newScheduleAtDate(date time.Time) *ScheduleAtDate {
	return &ScheduleAtDate{
		Date:   date,
		scores: make(map[*Assignment]*ScheduleScore),
	}
}

// Add records that the assignment holds the role on this date.
func (s *ScheduleAtDate) Add(a *Assignment, role *models.Role) {
	score, ok := s.scores[a]
	if !ok {
		score = &ScheduleScore{}
		s.scores[a] = score
		s.order = append(s.order, a)
	}
	score.Roles = append(score.Roles, role)
}

// ScoreFor returns the score for a person, nil if they are not placed.
func (s *ScheduleAtDate) ScoreFor(person *models.Person) *ScheduleScore {
	for _, a := range s.order {
		if a.Person == person {
			return s.scores[a]
		}
	}
	return nil
}

// IsPlaced reports whether the assignment holds any role on this date.
func (s *ScheduleAtDate) IsPlaced(a *Assignment) bool {
	_, ok := s.scores[a]
	return ok
}

// PeopleInRole returns everyone holding the role on this date, in placement
// order.
func (s *ScheduleAtDate) PeopleInRole(role *models.Role) []*models.Person {
	var people []*models.Person
	for _, a := range s.order {
		if s.scores[a].HasRole(role) {
			people = append(people, a.Person)
		}
	}
	return people
}

// CountInRole returns how many people hold the role on this date.
func (s *ScheduleAtDate) CountInRole(role *models.Role) int {
	return len(s.PeopleInRole(role))
}

// Assignments returns the placed assignments in placement order.
func (s *ScheduleAtDate) Assignments() []*Assignment {
	return s.order
}

// JSONFields returns the column headers for tabular export: the date column
// followed by one column per role.
func (s *ScheduleAtDate) JSONFields(roles []*models.Role) []string {
	fields := make([]string, 0, len(roles)+1)
	fields = append(fields, "date")
	for _, r := range roles {
		fields = append(fields, r.Name)
	}
	return fields
}

// JSONResult shapes this date for tabular export: the date plus, per role,
// the names of everyone placed in it.
func (s *ScheduleAtDate) JSONResult(roles []*models.Role) map[string]any {
	row := make(map[string]any, len(roles)+1)
	row["date"] = s.Date.Format("2006-01-02")
	for _, r := range roles {
		var names []string
		for _, p := range s.PeopleInRole(r) {
			names = append(names, p.Name)
		}
		row[r.Name] = strings.Join(names, ", ")
	}
	return row
}
