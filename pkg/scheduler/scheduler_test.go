package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voluntold/roster-api-go/pkg/models"
)

func namesInRole(sad *ScheduleAtDate, role *models.Role) []string {
	var names []string
	for _, p := range sad.PeopleInRole(role) {
		names = append(names, p.Name)
	}
	return names
}

func TestWeeklyAvailabilityFillsEveryPeriod(t *testing.T) {
	sound := models.NewRole("Sound", 1, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 25), 7)
	plan.AddRole(sound)
	neil := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	neil.AddRoleWeight(sound, 1)
	neil.Availability = models.AvailableEveryNWeeks(1)

	dates, err := NewScheduler(plan).CreateSchedule()
	require.NoError(t, err)
	require.Len(t, dates, 4)

	for i, day := range []int{1, 8, 15, 22} {
		assert.Equal(t, date(2017, time.October, day), dates[i].Date)
		assert.Equal(t, []string{"Neil"}, namesInRole(dates[i], sound))
	}
}

func TestFortnightlyAvailabilitySkipsAlternatePeriods(t *testing.T) {
	sound := models.NewRole("Sound", 1, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 25), 7)
	plan.AddRole(sound)
	neil := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	neil.AddRoleWeight(sound, 1)
	neil.Availability = models.AvailableEveryNWeeks(2)

	dates, err := NewScheduler(plan).CreateSchedule()
	require.NoError(t, err)
	require.Len(t, dates, 4)

	placed := 0
	for _, sad := range dates {
		placed += sad.CountInRole(sound)
	}
	assert.Equal(t, 2, placed)
	assert.Equal(t, []string{"Neil"}, namesInRole(dates[0], sound))
	assert.Empty(t, namesInRole(dates[1], sound))
	assert.Equal(t, []string{"Neil"}, namesInRole(dates[2], sound))
	assert.Empty(t, namesInRole(dates[3], sound))
}

func TestCapacityIsNeverExceeded(t *testing.T) {
	guitar := models.NewRole("Guitar", 1, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 7), 1)
	plan.AddRole(guitar)
	for _, name := range []string{"Neil", "Daniel"} {
		a := plan.GetOrCreateAssignment(models.NewPerson(name))
		a.AddRoleWeight(guitar, 1)
	}

	dates, err := NewScheduler(plan).CreateSchedule()
	require.NoError(t, err)
	require.NotEmpty(t, dates)

	assert.Equal(t, 1, dates[0].CountInRole(guitar))
	for _, sad := range dates {
		assert.LessOrEqual(t, sad.CountInRole(guitar), guitar.MaximumWanted)
	}
}

func TestUsageWeightedRotationIsFair(t *testing.T) {
	sound := models.NewRole("Sound", 1, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 5), 1)
	plan.AddRole(sound)
	for _, name := range []string{"Neil", "Daniel", "Ben"} {
		a := plan.GetOrCreateAssignment(models.NewPerson(name))
		a.AddRoleWeight(sound, 1)
	}

	dates, err := NewScheduler(plan).CreateSchedule()
	require.NoError(t, err)
	require.Len(t, dates, 5)

	var order []string
	for _, sad := range dates {
		people := sad.PeopleInRole(sound)
		require.Len(t, people, 1)
		order = append(order, people[0].Name)
	}
	assert.Equal(t, []string{"Neil", "Daniel", "Ben", "Neil", "Daniel"}, order)
}

func TestFixedPickOverridesRotation(t *testing.T) {
	sound := models.NewRole("Sound", 1, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 3), 1)
	plan.AddRole(sound)
	neil := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	neil.AddRoleWeight(sound, 1)
	daniel := plan.GetOrCreateAssignment(models.NewPerson("Daniel"))
	daniel.AddRoleWeight(sound, 1)

	// Rotation alone would give Daniel the 2nd; pin Neil to it instead.
	plan.AddPickRule(NewOnThisDate(date(2017, time.October, 2), neil, sound))

	dates, err := NewScheduler(plan).CreateSchedule()
	require.NoError(t, err)
	require.Len(t, dates, 3)

	assert.Equal(t, []string{"Neil"}, namesInRole(dates[0], sound))
	assert.Equal(t, []string{"Neil"}, namesInRole(dates[1], sound))
	assert.Equal(t, []string{"Daniel"}, namesInRole(dates[2], sound))
}

func TestSpecificDateRequestBypassesPickRules(t *testing.T) {
	sound := models.NewRole("Sound", 1, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 3), 1)
	plan.AddRole(sound)
	neil := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	neil.AddRoleWeight(sound, 1)
	daniel := plan.GetOrCreateAssignment(models.NewPerson("Daniel"))
	daniel.AddSpecificRole(date(2017, time.October, 1), sound)

	dates, err := NewScheduler(plan).CreateSchedule()
	require.NoError(t, err)

	// Daniel asked for the 1st, so Neil's rotation starts on the 2nd.
	assert.Equal(t, []string{"Daniel"}, namesInRole(dates[0], sound))
	assert.Equal(t, []string{"Neil"}, namesInRole(dates[1], sound))
}

func TestConditionalPlacementCascades(t *testing.T) {
	sound := models.NewRole("Sound", 2, 1)
	guitar := models.NewRole("Guitar", 2, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 15), 7)
	plan.AddRole(sound)
	plan.AddRole(guitar)

	neil := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	neil.AddRoleWeight(sound, 1)
	neil.Availability = models.AvailableEveryNWeeks(1)
	daniel := plan.GetOrCreateAssignment(models.NewPerson("Daniel"))
	daniel.AddRoleWeight(guitar, 1)
	daniel.Availability = models.AvailableEveryNWeeks(1)

	neil.AddConditionalRule(NewAssignedToRoleCondition(sound, NewScheduleOn(daniel.Person, guitar)))

	dates, err := NewScheduler(plan).CreateSchedule()
	require.NoError(t, err)

	for _, sad := range dates {
		assert.Equal(t, []string{"Neil"}, namesInRole(sad, sound))
		assert.Equal(t, []string{"Daniel"}, namesInRole(sad, guitar))
	}
}

func TestSecondaryActionPairsPeople(t *testing.T) {
	sound := models.NewRole("Sound", 1, 2)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 25), 7)
	plan.AddRole(sound)

	neil := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	neil.AddRoleWeight(sound, 1)
	neil.Availability = models.AvailableEveryNWeeks(1)
	daniel := plan.GetOrCreateAssignment(models.NewPerson("Daniel"))
	daniel.AddRoleWeight(sound, 1)
	daniel.Availability = models.AvailableNTimesPerMWeeks(1, 52)

	pairing := NewTryToScheduleWith(neil, daniel, models.AvailableAnytime(), 1)
	neil.AddSecondaryAction(pairing)

	dates, err := NewScheduler(plan).CreateSchedule()
	require.NoError(t, err)
	require.Len(t, dates, 4)

	// The main walk gives Neil Oct 1/15/22 and Daniel his single quota slot
	// on Oct 8. The pairing then co-places Daniel alongside Neil exactly
	// once, on the first date Neil holds alone.
	coPlaced := 0
	for _, sad := range dates {
		if sad.IsPlaced(neil) && sad.IsPlaced(daniel) {
			coPlaced++
		}
	}
	assert.Equal(t, 1, coPlaced)
	assert.True(t, dates[0].IsPlaced(neil))
	assert.True(t, dates[0].IsPlaced(daniel))

	// Prepare resets the trigger count for the next run.
	pairing.Prepare()
	assert.Equal(t, 0, pairing.fired)
}

func TestHigherPriorityGroupIsProcessedFirst(t *testing.T) {
	lead := models.NewRole("Worship Lead", 5, 1)
	sound := models.NewRole("Sound", 1, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 2), 1)
	plan.AddRole(sound)
	plan.AddRole(lead)

	// Neil can do both; the high-priority group must claim him before the
	// low-priority one runs, leaving Sound to Daniel.
	neil := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	neil.AddRoleWeight(lead, 1)
	neil.AddRoleWeight(sound, 1)
	daniel := plan.GetOrCreateAssignment(models.NewPerson("Daniel"))
	daniel.AddRoleWeight(sound, 1)

	dates, err := NewScheduler(plan).CreateSchedule()
	require.NoError(t, err)
	require.Len(t, dates, 2)

	assert.Equal(t, []string{"Neil"}, namesInRole(dates[0], lead))
	assert.Equal(t, []string{"Daniel"}, namesInRole(dates[0], sound))
}

func TestPreferredRoleSwapWithinGroup(t *testing.T) {
	sound := models.NewRole("Sound", 2, 1)
	guitar := models.NewRole("Guitar", 2, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 2), 7)
	plan.AddRole(sound)
	plan.AddRole(guitar)

	// Neil is picked for Sound first (it leads the group) but his weights
	// say he should mostly play Guitar, so the pick is swapped there.
	neil := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	neil.AddRoleWeight(sound, 0.1)
	neil.AddRoleWeight(guitar, 0.9)

	dates, err := NewScheduler(plan).CreateSchedule()
	require.NoError(t, err)
	require.Len(t, dates, 1)

	assert.Empty(t, namesInRole(dates[0], sound))
	assert.Equal(t, []string{"Neil"}, namesInRole(dates[0], guitar))

	score := dates[0].ScoreFor(neil.Person)
	require.NotNil(t, score)
	assert.NotEmpty(t, score.Decisions)
}

func TestValidationFailures(t *testing.T) {
	start := date(2017, time.October, 1)
	end := date(2017, time.October, 25)
	sound := models.NewRole("Sound", 1, 1)

	tests := []struct {
		name string
		plan *Plan
		want error
	}{
		{"no roles", NewPlan(start, end, 7), ErrNoRoles},
		{"zero period", withRole(NewPlan(start, end, 0), sound), ErrBadPeriod},
		{"missing start", withRole(NewPlan(time.Time{}, end, 7), sound), ErrBadStartDate},
		{"missing end", withRole(NewPlan(start, time.Time{}, 7), sound), ErrBadEndDate},
		{"inverted range", withRole(NewPlan(end, start, 7), sound), ErrBadDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScheduler(tt.plan).CreateSchedule()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func withRole(p *Plan, r *models.Role) *Plan {
	p.AddRole(r)
	return p
}

func TestLongRangeTerminatesUnderTheCeiling(t *testing.T) {
	sound := models.NewRole("Sound", 1, 1)
	plan := NewPlan(date(2017, time.January, 1), date(2026, time.December, 31), 1)
	plan.AddRole(sound)
	neil := plan.GetOrCreateAssignment(models.NewPerson("Neil"))
	neil.AddRoleWeight(sound, 1)
	neil.Availability = models.AvailableEveryNWeeks(1)

	s := NewScheduler(plan)
	dates, err := s.CreateSchedule()
	require.NoError(t, err)

	// A ten-year daily walk is ~3650 steps: well inside the 10,000-step
	// ceiling, so the run finishes cleanly with no warnings.
	assert.Greater(t, len(dates), 3600)
	assert.Empty(t, s.Facts.Warnings())
}

func TestFairnessScore(t *testing.T) {
	sound := models.NewRole("Sound", 1, 1)
	plan := NewPlan(date(2017, time.October, 1), date(2017, time.October, 6), 1)
	plan.AddRole(sound)
	for _, name := range []string{"Neil", "Daniel", "Ben"} {
		a := plan.GetOrCreateAssignment(models.NewPerson(name))
		a.AddRoleWeight(sound, 1)
	}

	s := NewScheduler(plan)
	_, err := s.CreateSchedule()
	require.NoError(t, err)

	// Six dates over three people is a perfectly even 2/2/2 split.
	assert.InDelta(t, 100.0, s.FairnessScore(), 0.001)
}
