package scheduler

import (
	"time"

	"github.com/voluntold/roster-api-go/pkg/models"
)

// RoleWeight is one entry of an assignment's weighted role list. The list
// keeps insertion order: it is the deterministic tie-break everywhere weights
// or usage counts come out equal.
type RoleWeight struct {
	Role   *models.Role
	Weight float64
}

// Assignment binds one person to the roles they can fill, each with a
// positive weight (their intended share of placements), plus any
// date-specific requests, conditional rules and secondary actions.
type Assignment struct {
	Person       *models.Person
	Availability models.Availability

	weights       []RoleWeight
	specificRoles map[string][]*models.Role // date bucket key -> roles

	ConditionalRules []ConditionalRule
	SecondaryActions []SecondaryAction
}

// NewAssignment creates an assignment for a person, available anytime until
// told otherwise.
func NewAssignment(person *models.Person) *Assignment {
	return &Assignment{
		Person:        person,
		Availability:  models.AvailableAnytime(),
		specificRoles: make(map[string][]*models.Role),
	}
}

// Name is the person's name, for decision traces.
func (a *Assignment) Name() string {
	return a.Person.Name
}

// AddRoleWeight registers a role this person can do, with its probability
// mass. Re-adding a role replaces the weight but keeps its position.
func (a *Assignment) AddRoleWeight(role *models.Role, weight float64) {
	for i := range a.weights {
		if a.weights[i].Role == role {
			a.weights[i].Weight = weight
			return
		}
	}
	a.weights = append(a.weights, RoleWeight{Role: role, Weight: weight})
}

// Weights returns the weighted role list in insertion order.
func (a *Assignment) Weights() []RoleWeight {
	return a.weights
}

// CanDo reports whether the role appears in the weight list.
func (a *Assignment) CanDo(role *models.Role) bool {
	for _, w := range a.weights {
		if w.Role == role {
			return true
		}
	}
	return false
}

// WeightFor returns the weight for a role, 0 if the role isn't weighted.
func (a *Assignment) WeightFor(role *models.Role) float64 {
	for _, w := range a.weights {
		if w.Role == role {
			return w.Weight
		}
	}
	return 0
}

// IsEligible reports whether this assignment can be placed at all: the
// weight list must be non-empty.
func (a *Assignment) IsEligible() bool {
	return len(a.weights) > 0
}

// AddSpecificRole requests a particular role on a particular date. A role
// requested this way must also be a weighted role, so it is added to the
// weight list if missing.
func (a *Assignment) AddSpecificRole(date time.Time, role *models.Role) {
	if !a.CanDo(role) {
		a.AddRoleWeight(role, 1)
	}
	key := models.DateKey(date)
	a.specificRoles[key] = append(a.specificRoles[key], role)
}

// SpecificRolesFor returns the roles requested for this date bucket, if any.
func (a *Assignment) SpecificRolesFor(date time.Time) []*models.Role {
	return a.specificRoles[models.DateKey(date)]
}

// AddConditionalRule attaches a dependent-placement rule.
func (a *Assignment) AddConditionalRule(rule ConditionalRule) {
	a.ConditionalRules = append(a.ConditionalRules, rule)
}

// AddSecondaryAction attaches a post-pass action.
func (a *Assignment) AddSecondaryAction(action SecondaryAction) {
	a.SecondaryActions = append(a.SecondaryActions, action)
}
