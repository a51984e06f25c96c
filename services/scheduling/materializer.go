// Package scheduling expands recurring weekly templates into concrete UTC
// availability slots over a rolling future window.
package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	slotRepo "slotwise/database/repository/slot"
	templateRepo "slotwise/database/repository/template"
	"slotwise/models"
	"slotwise/services/civil"

	"go.uber.org/zap"
)

// SlotMinutes is the fixed granularity of materialized slots.
const SlotMinutes = 30

// Materializer regenerates a provider's concrete slots from templates.
type Materializer interface {
	// Regenerate rebuilds the provider's non-booked slots for the next
	// windowDays days. Idempotent and safe to re-run at any time; never
	// deletes a slot that backs a booked session.
	Regenerate(ctx context.Context, provider *models.Provider, windowDays int) error
}

// DefaultMaterializer is the production implementation.
type DefaultMaterializer struct {
	Templates templateRepo.TemplateRepository
	Slots     slotRepo.SlotRepository
	Logger    *zap.Logger
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (m *DefaultMaterializer) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *DefaultMaterializer) Regenerate(ctx context.Context, provider *models.Provider, windowDays int) error {
	loc, err := civil.Zone(provider.Timezone)
	if err != nil {
		return fmt.Errorf("provider %s has invalid timezone: %w", provider.ID, err)
	}

	templates, err := m.Templates.ListActive(ctx, provider.ID)
	if err != nil {
		return fmt.Errorf("failed to load templates for provider %s: %w", provider.ID, err)
	}

	now := m.now()

	// Starts that already back a booked slot are excluded from the candidate
	// set up front, so regeneration can never collide with an active booking.
	bookedStarts, err := m.Slots.ListBookedStarts(ctx, provider.ID, now.Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("failed to load booked starts for provider %s: %w", provider.ID, err)
	}
	booked := make(map[int64]struct{}, len(bookedStarts))
	for _, s := range bookedStarts {
		booked[s.Unix()] = struct{}{}
	}

	candidates := m.expand(templates, loc, now, windowDays, booked)

	if err := m.Slots.ReplaceUnbooked(ctx, provider.ID, candidates); err != nil {
		return fmt.Errorf("failed to replace slots for provider %s: %w", provider.ID, err)
	}

	m.Logger.Info("materialized availability slots",
		zap.String("providerId", provider.ID),
		zap.Int("templates", len(templates)),
		zap.Int("slots", len(candidates)),
		zap.Int("windowDays", windowDays),
	)
	return nil
}

// expand walks each day of the window in the provider's local calendar,
// partitions matching templates into 30-minute sub-intervals and converts the
// boundaries to UTC. De-duplication is by UTC start instant: overlapping
// templates contribute a slot once (insert-if-absent set semantics).
func (m *DefaultMaterializer) expand(templates []models.AvailabilityTemplate, loc *time.Location, now time.Time, windowDays int, booked map[int64]struct{}) []models.AvailabilitySlot {
	byWeekday := make(map[time.Weekday][]models.AvailabilityTemplate)
	for _, t := range templates {
		wd := time.Weekday(t.Weekday)
		byWeekday[wd] = append(byWeekday[wd], t)
	}

	seen := make(map[int64]models.AvailabilitySlot)
	localNow := now.In(loc)

	for offset := 0; offset < windowDays; offset++ {
		day := localNow.AddDate(0, 0, offset)
		year, month, dayNum := day.Date()

		for _, t := range byWeekday[day.Weekday()] {
			for minute := t.StartMinute; minute+SlotMinutes <= t.EndMinute; minute += SlotMinutes {
				start := civil.AtMinute(year, month, dayNum, minute, loc)
				end := civil.AtMinute(year, month, dayNum, minute+SlotMinutes, loc)

				// A DST gap can collapse a sub-interval; skip degenerate ones.
				if !end.After(start) {
					continue
				}
				if start.Before(now) {
					continue
				}
				key := start.Unix()
				if _, taken := booked[key]; taken {
					continue
				}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = models.AvailabilitySlot{Start: start, End: end}
			}
		}
	}

	slots := make([]models.AvailabilitySlot, 0, len(seen))
	for _, s := range seen {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots
}
