package calendar

import (
	"testing"
	"time"

	"slotwise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timedGraphEvent(start, end time.Time) graphEvent {
	var ev graphEvent
	ev.ShowAs = "busy"
	ev.Start.DateTime = start.UTC().Format(graphTimeLayout)
	ev.End.DateTime = end.UTC().Format(graphTimeLayout)
	return ev
}

func TestMicrosoftBusyFilter(t *testing.T) {
	start := time.Date(2026, time.June, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	opaque := timedGraphEvent(start, end)

	allDay := timedGraphEvent(start, end)
	allDay.IsAllDay = true

	cancelled := timedGraphEvent(start, end)
	cancelled.IsCancelled = true

	free := timedGraphEvent(start, end)
	free.ShowAs = "free"

	declined := timedGraphEvent(start, end)
	declined.ResponseStatus.Response = "declined"

	tentative := timedGraphEvent(start.Add(2*time.Hour), end.Add(2*time.Hour))
	tentative.ShowAs = "tentative"

	busy := microsoftBusyFromEvents([]graphEvent{opaque, allDay, cancelled, free, declined, tentative})

	require.Len(t, busy, 2)
	assert.True(t, busy[0].Start.Equal(start))
	assert.True(t, busy[0].End.Equal(end))
	assert.Equal(t, models.CalendarKindMicrosoft, busy[0].Source)
	assert.True(t, busy[1].Start.Equal(start.Add(2*time.Hour)))
}

func TestMicrosoftBusyFilterParsesGraphTimestamps(t *testing.T) {
	var ev graphEvent
	ev.ShowAs = "busy"
	ev.Start.DateTime = "2026-06-02T09:00:00.0000000"
	ev.End.DateTime = "2026-06-02T09:30:00.0000000"

	busy := microsoftBusyFromEvents([]graphEvent{ev})
	require.Len(t, busy, 1)
	assert.True(t, busy[0].Start.Equal(time.Date(2026, time.June, 2, 9, 0, 0, 0, time.UTC)))
}

func TestMicrosoftBusyFilterSkipsMalformedTimes(t *testing.T) {
	var ev graphEvent
	ev.ShowAs = "busy"
	ev.Start.DateTime = "not a time"
	ev.End.DateTime = "also not"

	assert.Empty(t, microsoftBusyFromEvents([]graphEvent{ev}))
}
