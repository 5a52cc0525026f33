package scheduler

import (
	"sort"
	"time"

	"github.com/voluntold/roster-api-go/pkg/models"
)

// Plan is everything a schedule build consumes: the date range, the step
// size, the roles to fill and the weighted assignments that can fill them.
// The engine reads it; the only mutation it performs is Prepare before a run.
type Plan struct {
	StartDate     time.Time
	EndDate       time.Time
	DaysPerPeriod int

	Roles       []*models.Role
	Assignments []*Assignment

	pickRules []PickRule
	roleRules map[*Assignment][]RoleRule
}

// NewPlan creates an empty plan for a date range.
func NewPlan(start, end time.Time, daysPerPeriod int) *Plan {
	return &Plan{
		StartDate:     start,
		EndDate:       end,
		DaysPerPeriod: daysPerPeriod,
		roleRules:     make(map[*Assignment][]RoleRule),
	}
}

// AddRole registers a role with the plan.
func (p *Plan) AddRole(role *models.Role) {
	p.Roles = append(p.Roles, role)
}

// GetOrCreateAssignment returns the assignment for a person, creating one if
// the person has none yet.
func (p *Plan) GetOrCreateAssignment(person *models.Person) *Assignment {
	for _, a := range p.Assignments {
		if a.Person == person {
			return a
		}
	}
	a := NewAssignment(person)
	p.Assignments = append(p.Assignments, a)
	return a
}

// AssignmentFor returns the assignment for a person, nil if there is none.
func (p *Plan) AssignmentFor(person *models.Person) *Assignment {
	for _, a := range p.Assignments {
		if a.Person == person {
			return a
		}
	}
	return nil
}

// AssignmentsWithRole returns, in plan order, every eligible assignment that
// has the role in its weight list.
func (p *Plan) AssignmentsWithRole(role *models.Role) []*Assignment {
	var out []*Assignment
	for _, a := range p.Assignments {
		if a.IsEligible() && a.CanDo(role) {
			out = append(out, a)
		}
	}
	return out
}

// RoleGroups returns the roles grouped by layout priority, highest priority
// group first. Within a group, plan order is kept.
func (p *Plan) RoleGroups() [][]*models.Role {
	byPriority := make(map[int][]*models.Role)
	var priorities []int
	for _, r := range p.Roles {
		if _, seen := byPriority[r.LayoutPriority]; !seen {
			priorities = append(priorities, r.LayoutPriority)
		}
		byPriority[r.LayoutPriority] = append(byPriority[r.LayoutPriority], r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(priorities)))

	groups := make([][]*models.Role, 0, len(priorities))
	for _, pri := range priorities {
		groups = append(groups, byPriority[pri])
	}
	return groups
}

// AddPickRule attaches a caller-authored pick rule (fixed-date override or
// explicit rotation). Rules are consulted in the order they were added.
func (p *Plan) AddPickRule(rule PickRule) {
	p.pickRules = append(p.pickRules, rule)
}

// AddRoleRule attaches a caller-authored role rule for an assignment.
func (p *Plan) AddRoleRule(a *Assignment, rule RoleRule) {
	p.roleRules[a] = append(p.roleRules[a], rule)
}

// PickRules returns the pick rules for each role: the attached rules that
// apply to that role, in attachment order.
func (p *Plan) PickRules() map[*models.Role][]PickRule {
	out := make(map[*models.Role][]PickRule, len(p.Roles))
	for _, role := range p.Roles {
		var rules []PickRule
		for _, rule := range p.pickRules {
			if rule.AppliesTo(role) {
				rules = append(rules, rule)
			}
		}
		out[role] = rules
	}
	return out
}

// RoleRules returns the role rules for each assignment: any attached
// fixed-date rules first, then the weighted-role distribution built from the
// assignment's own weights.
func (p *Plan) RoleRules() map[*Assignment][]RoleRule {
	out := make(map[*Assignment][]RoleRule, len(p.Assignments))
	for _, a := range p.Assignments {
		rules := append([]RoleRule{}, p.roleRules[a]...)
		rules = append(rules, NewWeightedRoles(a))
		out[a] = rules
	}
	return out
}

// Prepare resets every assignment's conditional rules and secondary actions
// so a fresh run doesn't inherit trigger counts from the previous one.
func (p *Plan) Prepare() {
	for _, a := range p.Assignments {
		for _, rule := range a.ConditionalRules {
			rule.Prepare()
		}
		for _, action := range a.SecondaryActions {
			action.Prepare()
		}
	}
}

// Validate checks the plan is buildable. These are the only hard failures a
// build can produce; everything later is a decision-log entry.
func (p *Plan) Validate() error {
	if len(p.Roles) == 0 {
		return ErrNoRoles
	}
	if p.DaysPerPeriod <= 0 {
		return ErrBadPeriod
	}
	if p.StartDate.IsZero() {
		return ErrBadStartDate
	}
	if p.EndDate.IsZero() {
		return ErrBadEndDate
	}
	if !p.EndDate.After(p.StartDate) {
		return ErrBadDuration
	}
	return nil
}
