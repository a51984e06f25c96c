package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotwise/config"
	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/calendar"
	"slotwise/services/civil"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func (s *DefaultBookingService) Create(ctx context.Context, requesterID string, in models.CreateBookingInput) (*models.Booking, string, error) {
	if requesterID == "" || in.ProviderID == "" {
		return nil, "", NewValidationError("providerId and requester identity are required")
	}
	if _, ok := defaultRates[in.DurationMinutes]; !ok {
		return nil, "", NewValidationError("unsupported duration %d, want 15, 30 or 60", in.DurationMinutes)
	}

	loc, err := civil.Zone(in.Timezone)
	if err != nil {
		return nil, "", NewValidationError("invalid timezone %q", in.Timezone)
	}
	year, month, day, err := civil.ParseDate(in.Date)
	if err != nil {
		return nil, "", NewValidationError("invalid date %q, want YYYY-MM-DD", in.Date)
	}

	start := civil.AtMinute(year, month, day, in.StartMinute, loc)
	end := start.Add(time.Duration(in.DurationMinutes) * time.Minute)
	if !start.After(s.now()) {
		return nil, "", NewValidationError("booking start must be in the future")
	}

	// Dedup: an identical pending/confirmed booking is returned as-is rather
	// than creating a duplicate row.
	existing, err := s.Bookings.FindDuplicate(ctx, in.ProviderID, requesterID, start, end)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check for duplicate booking: %w", err)
	}
	if existing != nil {
		s.Logger.Info("duplicate booking request, returning existing",
			zap.String("bookingId", existing.ID))
		return existing, "", nil
	}

	overlapping, err := s.Bookings.FindOverlapping(ctx, in.ProviderID, start, end, "")
	if err != nil {
		return nil, "", fmt.Errorf("failed to check booking conflicts: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, "", NewConflictError("the requested time overlaps an existing booking")
	}

	provider, err := s.Providers.GetByID(ctx, in.ProviderID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load provider %s: %w", in.ProviderID, err)
	}

	b := &models.Booking{
		ProviderID:        in.ProviderID,
		RequesterID:       requesterID,
		DurationMinutes:   in.DurationMinutes,
		Status:            models.BookingStatusPending,
		Start:             start,
		End:               end,
		RequesterTimezone: in.Timezone,
		PriceCents:        PriceFor(provider, in.DurationMinutes),
		Currency:          s.currency(),
	}
	if err := s.Bookings.Create(ctx, b); err != nil {
		return nil, "", fmt.Errorf("failed to persist booking: %w", err)
	}

	// Meeting-room provisioning is best-effort and must not delay or abort
	// booking creation.
	go s.provisionRoom(b)

	checkoutURL, sessionID, err := s.Payments.CreateCheckout(ctx, b)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create checkout session for booking %s: %w", b.ID, err)
	}
	if err := s.Bookings.SetCheckoutSessionID(ctx, b.ID, sessionID); err != nil {
		s.Logger.Warn("failed to store checkout session id",
			zap.String("bookingId", b.ID), zap.Error(err))
	}

	s.Logger.Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("providerId", b.ProviderID),
		zap.Time("start", b.Start))
	return b, checkoutURL, nil
}

func (s *DefaultBookingService) currency() string {
	if c := config.AppConfig.Currency; c != "" {
		return c
	}
	return "usd"
}

func (s *DefaultBookingService) provisionRoom(b *models.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	roomURL, err := s.Meetings.CreateRoom(ctx, fmt.Sprintf("session-%s", b.ID))
	if err != nil {
		s.Logger.Warn("meeting room provisioning failed",
			zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	if err := s.Bookings.SetMeetingURL(ctx, b.ID, roomURL); err != nil {
		s.Logger.Warn("failed to store meeting url",
			zap.String("bookingId", b.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", id, err)
	}
	return b, nil
}

// Confirm advances PENDING -> CONFIRMED via a single conditional update. A
// repeated confirmation for an already-confirmed booking is a successful
// no-op, never an error.
func (s *DefaultBookingService) Confirm(ctx context.Context, bookingID, paymentIntentID string) error {
	b, err := s.Get(ctx, bookingID)
	if err != nil {
		return err
	}

	platformFee, providerShare := Split(b.PriceCents, s.FeePercent)
	confirmed, err := s.Bookings.ConfirmIfPending(ctx, bookingID, paymentIntentID, platformFee, providerShare)
	if err != nil {
		return err
	}
	if !confirmed {
		if b.Status == models.BookingStatusConfirmed {
			s.Logger.Info("booking already confirmed, ignoring repeated webhook",
				zap.String("bookingId", bookingID))
			return nil
		}
		return NewConflictError("booking %s is %s and cannot be confirmed", bookingID, b.Status)
	}

	// First confirmation: claim the matching slot if one exists at the exact
	// start instant. The booking row is authoritative, so an absent row is
	// tolerated.
	if err := s.Slots.Claim(ctx, b.ProviderID, b.Start); err != nil {
		switch {
		case errors.Is(err, slotRepo.ErrNoSlot):
			s.Logger.Debug("no slot row at booking start, skipping claim",
				zap.String("bookingId", bookingID))
		case errors.Is(err, slotRepo.ErrSlotTaken):
			s.Logger.Warn("slot already claimed at confirmation",
				zap.String("bookingId", bookingID), zap.Time("start", b.Start))
		default:
			s.Logger.Error("failed to claim slot", zap.String("bookingId", bookingID), zap.Error(err))
		}
	}

	go s.mirrorEvent(b)
	s.Notifier.BookingConfirmed(b.ID)

	s.Logger.Info("booking confirmed",
		zap.String("bookingId", bookingID),
		zap.Int64("platformFeeCents", platformFee),
		zap.Int64("providerShareCents", providerShare))
	return nil
}

// mirrorEvent creates the provider-calendar event after confirmation.
// Independent best-effort side effect: failure is logged, never reverted into
// booking state.
func (s *DefaultBookingService) mirrorEvent(b *models.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	eventID, err := s.Calendar.CreateEvent(ctx, b.ProviderID, calendar.EventInput{
		Summary:     fmt.Sprintf("Booked session (%d min)", b.DurationMinutes),
		Description: fmt.Sprintf("Session booked via slotwise, booking %s", b.ID),
		Start:       b.Start,
		End:         b.End,
		MeetingURL:  b.MeetingURL,
	})
	if err != nil {
		s.Logger.Warn("calendar event creation failed",
			zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	if eventID == "" {
		return
	}
	if err := s.Bookings.SetCalendarEventID(ctx, b.ID, eventID); err != nil {
		s.Logger.Warn("failed to store calendar event id",
			zap.String("bookingId", b.ID), zap.Error(err))
	}
}

// Cancel moves an active booking to CANCELLED and frees its slot. The row is
// kept for audit.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, actorID string) error {
	b, err := s.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	if actorID != b.ProviderID && actorID != b.RequesterID {
		return NewPermissionError("caller is not a party on booking %s", bookingID)
	}

	cancelled, err := s.Bookings.CancelActive(ctx, bookingID)
	if err != nil {
		return err
	}
	if !cancelled {
		// Already cancelled; nothing left to do.
		return nil
	}

	if err := s.Slots.Release(ctx, b.ProviderID, b.Start); err != nil && !errors.Is(err, slotRepo.ErrNoSlot) {
		s.Logger.Warn("failed to release slot on cancel",
			zap.String("bookingId", bookingID), zap.Error(err))
	}

	if b.CalendarEventID != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.Calendar.DeleteEvent(ctx, b.ProviderID, b.CalendarEventID); err != nil {
				s.Logger.Warn("failed to delete calendar event on cancel",
					zap.String("bookingId", bookingID), zap.Error(err))
			}
		}()
	}
	s.Notifier.BookingCancelled(bookingID)

	s.Logger.Info("booking cancelled", zap.String("bookingId", bookingID))
	return nil
}
