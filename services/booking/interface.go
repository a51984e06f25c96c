package booking

import (
	"context"
	"time"

	bookingRepo "slotwise/database/repository/booking"
	providerRepo "slotwise/database/repository/provider"
	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/calendar"

	"go.uber.org/zap"
)

// CalendarWriter is the write-side contract of the external calendar adapter.
type CalendarWriter interface {
	CreateEvent(ctx context.Context, providerID string, in calendar.EventInput) (string, error)
	DeleteEvent(ctx context.Context, providerID, eventID string) error
}

// CheckoutCreator requests a payment checkout session for a pending booking.
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, b *models.Booking) (url, sessionID string, err error)
}

// RoomProvisioner creates an external meeting room. Best-effort collaborator.
type RoomProvisioner interface {
	CreateRoom(ctx context.Context, name string) (string, error)
}

// Notifier enqueues transactional email. Fire-and-forget collaborator.
type Notifier interface {
	BookingConfirmed(bookingID string)
	BookingCancelled(bookingID string)
	BookingRescheduled(bookingID string)
}

// Service drives the payment-gated booking lifecycle:
// PENDING -> CONFIRMED, and PENDING|CONFIRMED -> CANCELLED (terminal).
type Service interface {
	// Create inserts a PENDING booking (or returns the existing duplicate) and
	// returns the checkout URL; the URL is empty for duplicates.
	Create(ctx context.Context, requesterID string, in models.CreateBookingInput) (*models.Booking, string, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	// Confirm is driven only by the verified payment webhook and is idempotent
	// under at-least-once delivery.
	Confirm(ctx context.Context, bookingID, paymentIntentID string) error
	Cancel(ctx context.Context, bookingID, actorID string) error
	Reschedule(ctx context.Context, bookingID, actorID string, newStart, newEnd time.Time) (*models.Booking, error)
}

// DefaultBookingService implements Service.
type DefaultBookingService struct {
	Bookings  bookingRepo.BookingRepository
	Slots     slotRepo.SlotRepository
	Providers providerRepo.ProviderRepository
	Calendar  CalendarWriter
	Payments  CheckoutCreator
	Meetings  RoomProvisioner
	Notifier  Notifier
	Logger    *zap.Logger

	FeePercent int
	// LeadTime is the minimum notice before start for a reschedule.
	LeadTime time.Duration
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBookingService) leadTime() time.Duration {
	if s.LeadTime > 0 {
		return s.LeadTime
	}
	return 2 * time.Hour
}
