package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/voluntold/roster-api-go/pkg/models"
)

// PickRule selects which assignment fills a role on a date. Rules return
// candidates in preference order; the facts object takes the first one that
// passes the exclusion and availability checks.
type PickRule interface {
	AppliesTo(role *models.Role) bool
	Execute(f *Facts, role *models.Role, date time.Time) []*Assignment
}

// RoleChoice pairs a chosen role with the narration of why it was chosen.
type RoleChoice struct {
	Role   *models.Role
	Reason string
}

// RoleRule selects which role an already-chosen assignment should fill,
// returning candidates in preference order.
type RoleRule interface {
	Execute(f *Facts, a *Assignment, date time.Time) []RoleChoice
}

// OnThisDate is a pick rule pinning a person to a role on one exact date.
// Date equality compares the hour bucket, not the full timestamp.
type OnThisDate struct {
	Date       time.Time
	Assignment *Assignment
	Role       *models.Role
}

// NewOnThisDate pins assignment to role on date.
func NewOnThisDate(date time.Time, a *Assignment, role *models.Role) *OnThisDate {
	return &OnThisDate{Date: date, Assignment: a, Role: role}
}

// AppliesTo reports whether this rule concerns the given role.
func (r *OnThisDate) AppliesTo(role *models.Role) bool {
	return r.Role == role
}

// Execute returns the pinned assignment when the date matches, nothing
// otherwise.
func (r *OnThisDate) Execute(_ *Facts, role *models.Role, date time.Time) []*Assignment {
	if r.Role == role && models.SameDateBucket(r.Date, date) {
		return []*Assignment{r.Assignment}
	}
	return nil
}

// UsageWeightedSequential is a pick rule that rotates through a fixed list
// of assignments: candidates are ordered by ascending usage in the target
// role, ties broken by original list order. Once usage counts diverge this
// gives a deterministic rotation.
type UsageWeightedSequential struct {
	Role        *models.Role
	Assignments []*Assignment
}

// NewUsageWeightedSequential builds a rotation over assignments for role.
func NewUsageWeightedSequential(role *models.Role, assignments []*Assignment) *UsageWeightedSequential {
	return &UsageWeightedSequential{Role: role, Assignments: assignments}
}

// AppliesTo reports whether this rotation concerns the given role.
func (r *UsageWeightedSequential) AppliesTo(role *models.Role) bool {
	return r.Role == role
}

// Execute orders the rotation list by how often each assignment has already
// filled the role.
func (r *UsageWeightedSequential) Execute(f *Facts, role *models.Role, _ time.Time) []*Assignment {
	if r.Role != role {
		return nil
	}
	ordered := append([]*Assignment{}, r.Assignments...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return f.UsageCount(role, ordered[i]) < f.UsageCount(role, ordered[j])
	})
	return ordered
}

// FixedRoleOnDate is a role rule: on one exact date the assignment should
// fill this role, whatever its weights say.
type FixedRoleOnDate struct {
	Date time.Time
	Role *models.Role
}

// NewFixedRoleOnDate pins role for date.
func NewFixedRoleOnDate(date time.Time, role *models.Role) *FixedRoleOnDate {
	return &FixedRoleOnDate{Date: date, Role: role}
}

// Execute returns the pinned role when the date matches, nothing otherwise.
func (r *FixedRoleOnDate) Execute(_ *Facts, _ *Assignment, date time.Time) []RoleChoice {
	if !models.SameDateBucket(r.Date, date) {
		return nil
	}
	return []RoleChoice{{
		Role:   r.Role,
		Reason: fmt.Sprintf("fixed to %s on %s", r.Role.Name, r.Date.Format("2006-01-02")),
	}}
}

// WeightedRoles is the default role rule: it distributes an assignment's
// placements across its weighted roles in proportion to the weights. For
// each role it compares the share of placements the role has received
// against the share the weights say it should receive, and prefers the most
// underserved role. Pure function of the usage history; ties keep the weight
// list's insertion order.
type WeightedRoles struct {
	Assignment *Assignment
}

// NewWeightedRoles builds the distribution rule for an assignment.
func NewWeightedRoles(a *Assignment) *WeightedRoles {
	return &WeightedRoles{Assignment: a}
}

// Execute returns the assignment's weighted roles ordered from most to least
// underserved.
func (r *WeightedRoles) Execute(f *Facts, a *Assignment, _ time.Time) []RoleChoice {
	weights := r.Assignment.Weights()
	if len(weights) == 0 {
		return nil
	}

	var weightSum float64
	totalUsed := 0
	for _, w := range weights {
		weightSum += w.Weight
		totalUsed += f.UsageCount(w.Role, r.Assignment)
	}
	if weightSum == 0 {
		return nil
	}

	type scored struct {
		choice RoleChoice
		score  float64
	}
	entries := make([]scored, 0, len(weights))
	for _, w := range weights {
		used := f.UsageCount(w.Role, r.Assignment)
		normUsage := 0.0
		if totalUsed > 0 {
			normUsage = float64(used) / float64(totalUsed)
		}
		normWeight := w.Weight / weightSum
		entries = append(entries, scored{
			score: normUsage - normWeight,
			choice: RoleChoice{
				Role: w.Role,
				Reason: fmt.Sprintf("%s has filled %s %d of %d time(s) against a target share of %.2f",
					r.Assignment.Name(), w.Role.Name, used, totalUsed, normWeight),
			},
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score < entries[j].score
	})

	choices := make([]RoleChoice, len(entries))
	for i, e := range entries {
		choices[i] = e.choice
	}
	return choices
}
