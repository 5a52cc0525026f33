package scheduler

import (
	"fmt"
	"time"

	"github.com/voluntold/roster-api-go/pkg/models"
)

// ConditionalRule fires after a primary placement and may trigger dependent
// placements. Rules run synchronously inside PlacePersonInRole; a triggered
// placement can itself trigger further rules. There is deliberately no cycle
// guard: the role capacity checks and the per-role iteration bound are what
// keep a cascade finite.
type ConditionalRule interface {
	Run(f *Facts, a *Assignment, placed *models.Role, date time.Time)
	Prepare()
}

// ConditionalAction is one thing a fired conditional rule does.
type ConditionalAction interface {
	Apply(f *Facts, date time.Time)
}

// AssignedToRoleCondition fires its actions only when the primary placement
// landed in the watched role.
type AssignedToRoleCondition struct {
	Role    *models.Role
	Actions []ConditionalAction
}

// NewAssignedToRoleCondition watches role and runs actions when it is filled.
func NewAssignedToRoleCondition(role *models.Role, actions ...ConditionalAction) *AssignedToRoleCondition {
	return &AssignedToRoleCondition{Role: role, Actions: actions}
}

// Run applies every action when the placed role is the watched one.
func (c *AssignedToRoleCondition) Run(f *Facts, _ *Assignment, placed *models.Role, date time.Time) {
	if placed != c.Role {
		return
	}
	for _, action := range c.Actions {
		action.Apply(f, date)
	}
}

// Prepare is a no-op; the condition keeps no per-run state.
func (c *AssignedToRoleCondition) Prepare() {}

// ScheduleOn places a specific other person into a specific role on the
// triggering date, recursively through the placement primitive.
type ScheduleOn struct {
	Person *models.Person
	Role   *models.Role
}

// NewScheduleOn builds the dependent-placement action.
func NewScheduleOn(person *models.Person, role *models.Role) *ScheduleOn {
	return &ScheduleOn{Person: person, Role: role}
}

// Apply looks up the person's assignment and places them. A person with no
// assignment in the plan is narrated and skipped, not an error.
func (s *ScheduleOn) Apply(f *Facts, date time.Time) {
	a := f.AssignmentFor(s.Person)
	if a == nil {
		f.Narrate(fmt.Sprintf("wanted to schedule %s in %s but they have no assignment in this plan",
			s.Person.Name, s.Role.Name))
		return
	}
	f.PlacePersonInRole(a, s.Role, date, true, true,
		fmt.Sprintf("%s goes on %s whenever the triggering role is filled", s.Person.Name, s.Role.Name))
}
