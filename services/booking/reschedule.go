package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/calendar"

	"go.uber.org/zap"
)

// Reschedule moves a confirmed booking to a new interval. The internal
// conflict check runs against booking rows only; the caller is expected to
// have sourced the new time from the availability query.
func (s *DefaultBookingService) Reschedule(ctx context.Context, bookingID, actorID string, newStart, newEnd time.Time) (*models.Booking, error) {
	b, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorID != b.ProviderID && actorID != b.RequesterID {
		return nil, NewPermissionError("caller is not a party on booking %s", bookingID)
	}
	if b.Status != models.BookingStatusConfirmed {
		return nil, NewValidationError("only confirmed bookings can be rescheduled, booking is %s", b.Status)
	}

	now := s.now()
	if now.After(b.Start.Add(-s.leadTime())) {
		return nil, NewValidationError("reschedule requires at least %s notice before the session", s.leadTime())
	}
	if !newStart.After(now) {
		return nil, NewValidationError("new start must be in the future")
	}
	if !newEnd.After(newStart) {
		return nil, NewValidationError("new end must be after new start")
	}
	if newEnd.Sub(newStart) != time.Duration(b.DurationMinutes)*time.Minute {
		return nil, NewValidationError("new interval must keep the %d-minute duration", b.DurationMinutes)
	}

	overlapping, err := s.Bookings.FindOverlapping(ctx, b.ProviderID, newStart, newEnd, b.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check reschedule conflicts: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, NewConflictError("the new time overlaps an existing booking")
	}

	// Move slot occupancy claim-first: claim the new start, mutate the
	// booking, then free the old start. A failed booking update releases the
	// freshly claimed slot so no state is left half-moved. Absent slot rows
	// are tolerated throughout; the booking row is the source of truth.
	newClaimed := true
	if err := s.Slots.Claim(ctx, b.ProviderID, newStart); err != nil {
		switch {
		case errors.Is(err, slotRepo.ErrNoSlot):
			newClaimed = false
		case errors.Is(err, slotRepo.ErrSlotTaken):
			return nil, NewConflictError("the new slot is no longer available")
		default:
			return nil, fmt.Errorf("failed to claim new slot: %w", err)
		}
	}

	if err := s.Bookings.UpdateSchedule(ctx, b.ID, newStart, newEnd); err != nil {
		if newClaimed {
			if relErr := s.Slots.Release(ctx, b.ProviderID, newStart); relErr != nil {
				s.Logger.Error("failed to release slot after aborted reschedule",
					zap.String("bookingId", b.ID), zap.Error(relErr))
			}
		}
		return nil, fmt.Errorf("failed to move booking %s: %w", b.ID, err)
	}

	if err := s.Slots.Release(ctx, b.ProviderID, b.Start); err != nil && !errors.Is(err, slotRepo.ErrNoSlot) {
		s.Logger.Warn("failed to release old slot on reschedule",
			zap.String("bookingId", b.ID), zap.Error(err))
	}

	// Remote calendar follow-up: drop the stale event, mirror the new one.
	oldEventID := b.CalendarEventID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if oldEventID != "" {
			if err := s.Calendar.DeleteEvent(ctx, b.ProviderID, oldEventID); err != nil {
				s.Logger.Warn("failed to delete old calendar event on reschedule",
					zap.String("bookingId", b.ID), zap.Error(err))
			}
		}

		eventID, err := s.Calendar.CreateEvent(ctx, b.ProviderID, calendar.EventInput{
			Summary:     fmt.Sprintf("Booked session (%d min)", b.DurationMinutes),
			Description: fmt.Sprintf("Session rescheduled via slotwise, booking %s", b.ID),
			Start:       newStart,
			End:         newEnd,
			MeetingURL:  b.MeetingURL,
		})
		if err != nil {
			s.Logger.Warn("failed to create calendar event on reschedule",
				zap.String("bookingId", b.ID), zap.Error(err))
			return
		}
		if eventID != "" {
			if err := s.Bookings.SetCalendarEventID(ctx, b.ID, eventID); err != nil {
				s.Logger.Warn("failed to store calendar event id",
					zap.String("bookingId", b.ID), zap.Error(err))
			}
		}
	}()

	s.Notifier.BookingRescheduled(b.ID)
	s.Logger.Info("booking rescheduled",
		zap.String("bookingId", b.ID),
		zap.Time("oldStart", b.Start),
		zap.Time("newStart", newStart))

	b.Start = newStart
	b.End = newEnd
	b.CalendarEventID = ""
	return b, nil
}
