package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voluntold/roster-api-go/pkg/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// beganFacts returns working state ready for rule execution.
func beganFacts(plan *Plan) *Facts {
	f := NewFacts(plan)
	f.Begin()
	return f
}

func TestWeightedRolesAlternatesEqualWeights(t *testing.T) {
	foo := models.NewRole("Foo", 1, 1)
	bar := models.NewRole("Bar", 1, 1)

	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 31), 7)
	plan.AddRole(foo)
	plan.AddRole(bar)
	a := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	a.AddRoleWeight(foo, 1)
	a.AddRoleWeight(bar, 1)

	f := beganFacts(plan)
	rule := NewWeightedRoles(a)
	when := date(2017, time.October, 1)

	choices := rule.Execute(f, a, when)
	require.NotEmpty(t, choices)
	assert.Equal(t, foo, choices[0].Role)

	f.RecordUsage(foo, a)
	choices = rule.Execute(f, a, when)
	assert.Equal(t, bar, choices[0].Role)

	f.RecordUsage(bar, a)
	choices = rule.Execute(f, a, when)
	assert.Equal(t, foo, choices[0].Role)
}

func TestWeightedRolesConvergesToWeights(t *testing.T) {
	lead := models.NewRole("Lead", 1, 1)
	backup := models.NewRole("Backup", 1, 1)

	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 31), 7)
	plan.AddRole(lead)
	plan.AddRole(backup)
	a := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	a.AddRoleWeight(lead, 0.9)
	a.AddRoleWeight(backup, 0.1)

	f := beganFacts(plan)
	when := date(2017, time.October, 1)

	for i := 0; i < 1000; i++ {
		choice := f.NextSuitableRoleFor(a, when)
		require.NotNil(t, choice)
		f.RecordUsage(choice.Role, a)
	}

	assert.Equal(t, 900, f.UsageCount(lead, a))
	assert.Equal(t, 100, f.UsageCount(backup, a))
}

func TestFixedRoleOnDateMatchesItsBucketOnly(t *testing.T) {
	sound := models.NewRole("Sound", 1, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 31), 7)
	plan.AddRole(sound)
	a := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	a.AddRoleWeight(sound, 1)
	f := beganFacts(plan)

	rule := NewFixedRoleOnDate(date(2017, time.October, 8), sound)

	choices := rule.Execute(f, a, date(2017, time.October, 8))
	require.Len(t, choices, 1)
	assert.Equal(t, sound, choices[0].Role)

	assert.Empty(t, rule.Execute(f, a, date(2000, time.October, 8)))
}

func TestOnThisDatePinsAnAssignment(t *testing.T) {
	sound := models.NewRole("Sound", 1, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 31), 7)
	plan.AddRole(sound)
	neil := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	neil.AddRoleWeight(sound, 1)
	f := beganFacts(plan)

	rule := NewOnThisDate(date(2017, time.October, 8), neil, sound)

	assert.Equal(t, []*Assignment{neil}, rule.Execute(f, sound, date(2017, time.October, 8)))
	assert.Empty(t, rule.Execute(f, sound, date(2017, time.October, 9)))
	assert.Empty(t, rule.Execute(f, models.NewRole("Guitar", 1, 1), date(2017, time.October, 8)))
}

func TestUsageWeightedSequentialRotates(t *testing.T) {
	sound := models.NewRole("Sound", 1, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 31), 7)
	plan.AddRole(sound)

	var rotation []*Assignment
	for _, name := range []string{"Neil", "Daniel", "Ben"} {
		a := plan.GetOrCreateAssignment(models.NewPerson(name))
		a.AddRoleWeight(sound, 1)
		rotation = append(rotation, a)
	}

	f := beganFacts(plan)
	rule := NewUsageWeightedSequential(sound, rotation)
	when := date(2017, time.October, 1)

	// Equal usage keeps the original order; each recorded use moves that
	// assignment to the back of the queue.
	for cycle := 0; cycle < 2; cycle++ {
		for _, want := range rotation {
			got := rule.Execute(f, sound, when)
			require.NotEmpty(t, got)
			assert.Equal(t, want.Name(), got[0].Name())
			f.RecordUsage(sound, got[0])
		}
	}
}
