package models

import (
	"time"

	"github.com/google/uuid"
)

// DateKeyLayout truncates a timestamp to the hour. Two timestamps with the
// same key are the same calendar slot as far as the engine is concerned.
const DateKeyLayout = "2006-01-02T15"

// DateKey returns the stable bucket key for a date.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// SameDateBucket reports whether two timestamps land in the same hour bucket.
func SameDateBucket(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}

// DateRange is a half-open interval [Start, End).
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether date falls inside the range.
func (r DateRange) Contains(date time.Time) bool {
	return !date.Before(r.Start) && date.Before(r.End)
}

// Person is someone who can be rostered
type Person struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Unavailable []DateRange `json:"unavailable,omitempty"`
}

// NewPerson creates a person with a fresh identity
func NewPerson(name string) *Person {
	return &Person{ID: uuid.New(), Name: name}
}

// AddUnavailability marks [start, end) as a no-go period for this person
func (p *Person) AddUnavailability(start, end time.Time) {
	p.Unavailable = append(p.Unavailable, DateRange{Start: start, End: end})
}

// IsUnavailableOn reports whether the person has marked this date off
func (p *Person) IsUnavailableOn(date time.Time) bool {
	for _, r := range p.Unavailable {
		if r.Contains(date) {
			return true
		}
	}
	return false
}

// Role is a position that needs filling on each scheduled date
type Role struct {
	ID uuid.UUID `json:"id"`
	// Name is the display name, e.g. "Sound" or "Guitar"
	Name string `json:"name"`
	// LayoutPriority orders processing and display. Higher priorities are
	// scheduled first; roles sharing a priority form one role-group.
	LayoutPriority int `json:"layout_priority"`
	// MaximumWanted caps how many people may hold this role on one date.
	MaximumWanted int `json:"maximum_wanted"`
}

// NewRole creates a role with a fresh identity
func NewRole(name string, layoutPriority, maximumWanted int) *Role {
	return &Role{
		ID:             uuid.New(),
		Name:           name,
		LayoutPriority: layoutPriority,
		MaximumWanted:  maximumWanted,
	}
}
