package availability

import (
	"sort"
	"time"

	"slotwise/models"
)

// run is a maximal contiguous free interval assembled from 30-minute slots.
type run struct {
	start time.Time
	end   time.Time
}

// coalesce merges contiguous slots into maximal runs. Input order does not
// matter; a gap between slots always breaks the run, so candidate windows can
// never straddle time the provider did not offer.
func coalesce(slots []models.AvailabilitySlot) []run {
	if len(slots) == 0 {
		return nil
	}
	sorted := make([]models.AvailabilitySlot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	runs := []run{{start: sorted[0].Start, end: sorted[0].End}}
	for _, s := range sorted[1:] {
		last := &runs[len(runs)-1]
		if s.Start.Equal(last.end) {
			last.end = s.End
			continue
		}
		if s.Start.Before(last.end) {
			// Duplicate or overlapping row; extend if it reaches further.
			if s.End.After(last.end) {
				last.end = s.End
			}
			continue
		}
		runs = append(runs, run{start: s.Start, end: s.End})
	}
	return runs
}

// partition re-cuts a run into candidate windows of the requested duration.
// Step granularity is duration-dependent: 15-minute sessions step every 15
// minutes, longer sessions snap to the 30-minute slot grid.
func partition(r run, duration time.Duration) []run {
	step := 30 * time.Minute
	if duration == 15*time.Minute {
		step = 15 * time.Minute
	}

	var windows []run
	for start := r.start; !start.Add(duration).After(r.end); start = start.Add(step) {
		windows = append(windows, run{start: start, end: start.Add(duration)})
	}
	return windows
}
