package models

import "time"

// RoleInput describes one role in a roster request.
type RoleInput struct {
	Name           string `json:"name"`
	LayoutPriority int    `json:"layout_priority"`
	MaximumWanted  int    `json:"maximum_wanted"`
}

// AvailabilityInput mirrors Availability on the wire.
type AvailabilityInput struct {
	Unit        string `json:"unit,omitempty"`
	Period      int    `json:"period,omitempty"`
	WindowWeeks int    `json:"window_weeks,omitempty"`
}

// SpecificDateInput asks for a particular role on a particular date,
// bypassing the usual rotation.
type SpecificDateInput struct {
	Date time.Time `json:"date"`
	Role string    `json:"role"`
}

// ConditionalInput is a dependency rule: if this person lands in IfRole,
// also place ThenPerson in ThenRole on the same date.
type ConditionalInput struct {
	IfRole     string `json:"if_role"`
	ThenPerson string `json:"then_person"`
	ThenRole   string `json:"then_role"`
}

// PairingInput asks the engine to co-schedule this person with another,
// at most Max times, honouring the reach availability.
type PairingInput struct {
	With  string            `json:"with"`
	Max   int               `json:"max"`
	Reach AvailabilityInput `json:"reach,omitempty"`
}

// AssignmentInput binds one person to weighted roles plus optional rules.
type AssignmentInput struct {
	Person        string              `json:"person"`
	Weights       map[string]float64  `json:"weights"`
	Availability  AvailabilityInput   `json:"availability,omitempty"`
	Unavailable   []DateRange         `json:"unavailable,omitempty"`
	SpecificDates []SpecificDateInput `json:"specific_dates,omitempty"`
	Conditionals  []ConditionalInput  `json:"conditionals,omitempty"`
	Pairings      []PairingInput      `json:"pairings,omitempty"`
}

// FixedPickInput pins a person to a role on an exact date via a pick rule.
type FixedPickInput struct {
	Date   time.Time `json:"date"`
	Person string    `json:"person"`
	Role   string    `json:"role"`
}

// UsageSeed is one warm-start usage counter: how often a person already
// filled a role in a previous build.
type UsageSeed struct {
	Role   string `json:"role"`
	Person string `json:"person"`
	Count  int    `json:"count"`
}

// RosterInput is the request body for a roster build.
type RosterInput struct {
	StartDate      time.Time         `json:"start_date"`
	EndDate        time.Time         `json:"end_date"`
	DaysPerPeriod  int               `json:"days_per_period"`
	Roles          []RoleInput       `json:"roles"`
	Assignments    []AssignmentInput `json:"assignments"`
	FixedPicks     []FixedPickInput  `json:"fixed_picks,omitempty"`
	PreviousUsage  []UsageSeed       `json:"previous_usage,omitempty"`
	PreviousRecord uint              `json:"previous_record,omitempty"`
	SaveAs         string            `json:"save_as,omitempty"`
}

// DateResult is one scheduled date in the response: role name -> people,
// person name -> decision trace.
type DateResult struct {
	Date       string              `json:"date"`
	Placements map[string][]string `json:"placements"`
	Decisions  map[string][]string `json:"decisions,omitempty"`
	Unfilled   []string            `json:"unfilled,omitempty"`
}

// RosterResponse is the result of a roster build.
type RosterResponse struct {
	Dates         []DateResult `json:"dates"`
	FairnessScore float64      `json:"fairness_score"`
	Usage         []UsageSeed  `json:"usage"`
	Warnings      []string     `json:"warnings,omitempty"`
	RecordID      *uint        `json:"record_id,omitempty"`
}
