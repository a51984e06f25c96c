package calendar

import (
	"testing"
	"time"

	"slotwise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
)

func timedGoogleEvent(start, end time.Time) *gcal.Event {
	return &gcal.Event{
		Start: &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:   &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
}

func TestGoogleBusyFilter(t *testing.T) {
	start := time.Date(2026, time.June, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	opaque := timedGoogleEvent(start, end)

	allDay := &gcal.Event{
		Start: &gcal.EventDateTime{Date: "2026-06-02"},
		End:   &gcal.EventDateTime{Date: "2026-06-03"},
	}

	transparent := timedGoogleEvent(start, end)
	transparent.Transparency = "transparent"

	cancelled := timedGoogleEvent(start, end)
	cancelled.Status = "cancelled"

	declined := timedGoogleEvent(start, end)
	declined.Attendees = []*gcal.EventAttendee{
		{Self: true, ResponseStatus: "declined"},
	}

	// An invite someone ELSE declined still blocks the provider.
	otherDeclined := timedGoogleEvent(start.Add(2*time.Hour), end.Add(2*time.Hour))
	otherDeclined.Attendees = []*gcal.EventAttendee{
		{Self: false, ResponseStatus: "declined"},
		{Self: true, ResponseStatus: "accepted"},
	}

	busy := googleBusyFromEvents([]*gcal.Event{opaque, allDay, transparent, cancelled, declined, otherDeclined})

	require.Len(t, busy, 2)
	assert.True(t, busy[0].Start.Equal(start))
	assert.True(t, busy[0].End.Equal(end))
	assert.Equal(t, models.CalendarKindGoogle, busy[0].Source)
	assert.True(t, busy[1].Start.Equal(start.Add(2*time.Hour)))
}

func TestGoogleBusyFilterSkipsMalformedTimes(t *testing.T) {
	bad := &gcal.Event{
		Start: &gcal.EventDateTime{DateTime: "yesterday-ish"},
		End:   &gcal.EventDateTime{DateTime: "later"},
	}
	assert.Empty(t, googleBusyFromEvents([]*gcal.Event{bad}))
}

func TestGoogleBusyFilterNormalizesToUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	start := time.Date(2026, time.June, 2, 9, 0, 0, 0, loc)

	busy := googleBusyFromEvents([]*gcal.Event{timedGoogleEvent(start, start.Add(time.Hour))})
	require.Len(t, busy, 1)
	assert.Equal(t, time.UTC, busy[0].Start.Location())
	assert.True(t, busy[0].Start.Equal(start))
}
