package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// stubCounter is a canned placement history for sliding-window tests.
type stubCounter struct {
	count     int
	narrated  []string
	lastFrom  time.Time
	lastUntil time.Time
}

func (s *stubCounter) PlacementsInWindow(_ *Person, from, to time.Time) int {
	s.lastFrom, s.lastUntil = from, to
	return s.count
}

func (s *stubCounter) Narrate(text string) {
	s.narrated = append(s.narrated, text)
}

func TestEndDate(t *testing.T) {
	placed := date(2017, time.October, 1)

	tests := []struct {
		name         string
		availability Availability
		want         time.Time
	}{
		{"anytime blocks one day", AvailableAnytime(), date(2017, time.October, 2)},
		{"every 3 days", AvailableEveryNDays(3), date(2017, time.October, 3)},
		{"every week", AvailableEveryNWeeks(1), date(2017, time.October, 7)},
		{"every 2 weeks", AvailableEveryNWeeks(2), date(2017, time.October, 14)},
		{"quota mode always blocks one week", AvailableNTimesPerMWeeks(2, 4), date(2017, time.October, 7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.availability.EndDate(placed))
		})
	}
}

func TestEndDatePanicsOnZeroDate(t *testing.T) {
	assert.Panics(t, func() {
		AvailableAnytime().EndDate(time.Time{})
	})
}

func TestPeriodicIsAlwaysAvailable(t *testing.T) {
	neil := NewPerson("Neil")
	counter := &stubCounter{count: 99}

	for _, a := range []Availability{AvailableAnytime(), AvailableEveryNDays(2), AvailableEveryNWeeks(3)} {
		assert.True(t, a.IsAvailable(neil, date(2017, time.October, 1), counter, true))
	}
	// Periodic variants never consult the history or narrate.
	assert.Empty(t, counter.narrated)
}

func TestSlidingWindowQuota(t *testing.T) {
	neil := NewPerson("Neil")
	a := AvailableNTimesPerMWeeks(2, 3)
	when := date(2017, time.October, 22)

	counter := &stubCounter{count: 1}
	require.True(t, a.IsAvailable(neil, when, counter, false))

	counter.count = 2
	require.False(t, a.IsAvailable(neil, when, counter, false))

	// Window is the trailing 3 weeks: [date-20d, date].
	assert.Equal(t, date(2017, time.October, 2), counter.lastFrom)
	assert.Equal(t, when, counter.lastUntil)
}

func TestSlidingWindowNarratesWhenRecording(t *testing.T) {
	neil := NewPerson("Neil")
	a := AvailableNTimesPerMWeeks(2, 3)
	counter := &stubCounter{count: 2}

	a.IsAvailable(neil, date(2017, time.October, 22), counter, true)

	require.Len(t, counter.narrated, 1)
	assert.Contains(t, counter.narrated[0], "Neil")
	assert.Contains(t, counter.narrated[0], "limit 2 per 3 week(s)")
}
