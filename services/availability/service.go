// Package availability computes bookable start times for a provider by fusing
// free materialized slots, internal bookings and external calendar busy
// intervals. All conflict arithmetic happens on UTC instants; minutes from
// local midnight exist only at the response boundary.
package availability

import (
	"context"
	"fmt"
	"time"

	"slotwise/config"
	bookingRepo "slotwise/database/repository/booking"
	providerRepo "slotwise/database/repository/provider"
	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/civil"

	"go.uber.org/zap"
)

// ValidationError marks malformed or out-of-window queries; handlers map it
// to a 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func newValidationError(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// BusyLister is the read-side contract of the external calendar adapter.
type BusyLister interface {
	ListBusy(ctx context.Context, providerID string, from, to time.Time) ([]models.BusyInterval, error)
}

// QueryService answers "when can this provider be booked".
type QueryService interface {
	GetBookableSlots(ctx context.Context, providerID, date string, durationMinutes int, requesterTZ string) ([]models.TimeSlotOption, error)
}

// DefaultQueryService is the production implementation.
type DefaultQueryService struct {
	Providers providerRepo.ProviderRepository
	Slots     slotRepo.SlotRepository
	Bookings  bookingRepo.BookingRepository
	Calendar  BusyLister
	Logger    *zap.Logger
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *DefaultQueryService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var validDurations = map[int]bool{15: true, 30: true, 60: true}

// Window applied to provider rows that never configured one; the configured
// defaults take precedence, these constants back them up when config is not
// loaded.
const (
	fallbackMinAdvanceHours = 2
	fallbackMaxAdvanceDays  = 30
)

// advanceWindow resolves the provider's booking window. Zero-valued fields
// mean the provider never set them, so the global defaults apply instead of
// collapsing the window to nothing.
func advanceWindow(p *models.Provider) (minNotice time.Duration, horizonDays int) {
	minHours := p.MinAdvanceHours
	if minHours <= 0 {
		minHours = config.AppConfig.DefaultMinAdvanceHours
	}
	if minHours <= 0 {
		minHours = fallbackMinAdvanceHours
	}
	horizonDays = p.MaxAdvanceDays
	if horizonDays <= 0 {
		horizonDays = config.AppConfig.DefaultMaxAdvanceDays
	}
	if horizonDays <= 0 {
		horizonDays = fallbackMaxAdvanceDays
	}
	return time.Duration(minHours) * time.Hour, horizonDays
}

func (s *DefaultQueryService) GetBookableSlots(ctx context.Context, providerID, date string, durationMinutes int, requesterTZ string) ([]models.TimeSlotOption, error) {
	if !validDurations[durationMinutes] {
		return nil, newValidationError("unsupported duration %d, want 15, 30 or 60", durationMinutes)
	}

	provider, err := s.Providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider %s: %w", providerID, err)
	}

	loc, err := civil.Zone(requesterTZ)
	if err != nil {
		return nil, newValidationError("invalid timezone %q", requesterTZ)
	}
	year, month, day, err := civil.ParseDate(date)
	if err != nil {
		return nil, newValidationError("invalid date %q, want YYYY-MM-DD", date)
	}

	// The requested day in the requester's zone, as a UTC range.
	dayStart := civil.DayStart(year, month, day, loc)
	dayEnd := civil.DayStart(year, month, day+1, loc)

	now := s.now()
	minNotice, horizonDays := advanceWindow(provider)
	earliest := now.Add(minNotice)
	latest := now.AddDate(0, 0, horizonDays)
	if dayEnd.Before(earliest) {
		return nil, newValidationError("date %s is inside the provider's %s advance notice window", date, minNotice)
	}
	if dayStart.After(latest) {
		return nil, newValidationError("date %s is beyond the provider's %d-day booking horizon", date, horizonDays)
	}

	freeSlots, err := s.Slots.ListFreeInRange(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load free slots: %w", err)
	}

	duration := time.Duration(durationMinutes) * time.Minute
	var candidates []run
	for _, r := range coalesce(freeSlots) {
		candidates = append(candidates, partition(r, duration)...)
	}

	busy, err := s.collectBusy(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	var options []models.TimeSlotOption
	for _, c := range candidates {
		if c.start.Before(earliest) {
			continue
		}
		if overlapsAny(c, busy) {
			continue
		}
		options = append(options, models.TimeSlotOption{
			StartMinute:  civil.MinuteOfDay(c.start, loc),
			EndMinute:    civil.MinuteOfDay(c.start, loc) + durationMinutes,
			StartInstant: c.start,
			EndInstant:   c.end,
		})
	}
	return options, nil
}

// collectBusy fuses internal PENDING/CONFIRMED bookings with external
// calendar busy intervals. The external fetch uses a one-day buffer on each
// side to tolerate timezone skew, and degrades to no data on upstream
// failure rather than failing the query.
func (s *DefaultQueryService) collectBusy(ctx context.Context, providerID string, dayStart, dayEnd time.Time) ([]models.BusyInterval, error) {
	bookings, err := s.Bookings.ListActiveInRange(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	busy := make([]models.BusyInterval, 0, len(bookings))
	for _, b := range bookings {
		busy = append(busy, models.BusyInterval{Start: b.Start, End: b.End, Source: "booking"})
	}

	external, err := s.Calendar.ListBusy(ctx, providerID, dayStart.Add(-24*time.Hour), dayEnd.Add(24*time.Hour))
	if err != nil {
		s.Logger.Warn("external calendar unavailable, continuing without busy data",
			zap.String("providerId", providerID), zap.Error(err))
	} else {
		busy = append(busy, external...)
	}
	return busy, nil
}

func overlapsAny(c run, busy []models.BusyInterval) bool {
	for _, b := range busy {
		if b.Overlaps(c.start, c.end) {
			return true
		}
	}
	return false
}
