package availability

import (
	"testing"
	"time"

	"slotwise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotAt(start time.Time, minutes int) models.AvailabilitySlot {
	return models.AvailabilitySlot{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

var base = time.Date(2026, time.June, 2, 9, 0, 0, 0, time.UTC)

func TestCoalesceMergesContiguousSlots(t *testing.T) {
	slots := []models.AvailabilitySlot{
		slotAt(base, 30),
		slotAt(base.Add(30*time.Minute), 30),
		slotAt(base.Add(60*time.Minute), 30),
	}

	runs := coalesce(slots)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].start.Equal(base))
	assert.True(t, runs[0].end.Equal(base.Add(90*time.Minute)))
}

func TestCoalesceBreaksOnGaps(t *testing.T) {
	slots := []models.AvailabilitySlot{
		slotAt(base, 30),
		// 30-minute hole.
		slotAt(base.Add(60*time.Minute), 30),
	}

	runs := coalesce(slots)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].end.Equal(base.Add(30*time.Minute)))
	assert.True(t, runs[1].start.Equal(base.Add(60*time.Minute)))
}

func TestCoalesceIgnoresInputOrderAndDuplicates(t *testing.T) {
	slots := []models.AvailabilitySlot{
		slotAt(base.Add(30*time.Minute), 30),
		slotAt(base, 30),
		slotAt(base, 30), // duplicate row
	}

	runs := coalesce(slots)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].start.Equal(base))
	assert.True(t, runs[0].end.Equal(base.Add(60*time.Minute)))
}

func TestCoalesceEmpty(t *testing.T) {
	assert.Nil(t, coalesce(nil))
}

func TestPartitionHourIntoThirtyMinuteWindows(t *testing.T) {
	r := run{start: base, end: base.Add(time.Hour)}

	windows := partition(r, 30*time.Minute)
	require.Len(t, windows, 2)
	assert.True(t, windows[0].start.Equal(base))
	assert.True(t, windows[1].start.Equal(base.Add(30*time.Minute)))
}

func TestPartitionHourIntoFifteenMinuteWindows(t *testing.T) {
	r := run{start: base, end: base.Add(time.Hour)}

	windows := partition(r, 15*time.Minute)
	require.Len(t, windows, 4)
	for i, w := range windows {
		assert.True(t, w.start.Equal(base.Add(time.Duration(i*15)*time.Minute)))
		assert.Equal(t, 15*time.Minute, w.end.Sub(w.start))
	}
}

func TestPartitionSixtyMinuteWindowsSnapToSlotGrid(t *testing.T) {
	r := run{start: base, end: base.Add(90 * time.Minute)}

	windows := partition(r, time.Hour)
	require.Len(t, windows, 2)
	assert.True(t, windows[0].start.Equal(base))
	assert.True(t, windows[1].start.Equal(base.Add(30*time.Minute)))
	// No window may spill past the run.
	for _, w := range windows {
		assert.False(t, w.end.After(r.end))
	}
}

func TestPartitionTooShortRun(t *testing.T) {
	r := run{start: base, end: base.Add(30 * time.Minute)}
	assert.Empty(t, partition(r, time.Hour))
}
