package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/calendar"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// memBookingStore is an in-memory BookingRepository mirroring the conditional
// update semantics of the mongo implementation. Mutex-guarded because the
// service fires best-effort goroutines against it.
type memBookingStore struct {
	mu       sync.Mutex
	rows     map[string]*models.Booking
	seq      int
	upderr   error // injected UpdateSchedule failure
	confirms int
}

func newMemBookingStore() *memBookingStore {
	return &memBookingStore{rows: make(map[string]*models.Booking)}
}

func (m *memBookingStore) Create(ctx context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if b.ID == "" {
		b.ID = fmt.Sprintf("bk-%d", m.seq)
	}
	cp := *b
	m.rows[b.ID] = &cp
	return nil
}

func (m *memBookingStore) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *b
	return &cp, nil
}

func (m *memBookingStore) FindDuplicate(ctx context.Context, providerID, requesterID string, start, end time.Time) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.rows {
		if b.Status == models.BookingStatusCancelled {
			continue
		}
		if b.ProviderID == providerID && b.RequesterID == requesterID &&
			b.Start.Equal(start) && b.End.Equal(end) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memBookingStore) FindOverlapping(ctx context.Context, providerID string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.rows {
		if b.ID == excludeID || b.ProviderID != providerID {
			continue
		}
		if b.Status != models.BookingStatusPending && b.Status != models.BookingStatusConfirmed {
			continue
		}
		if b.Start.Before(end) && b.End.After(start) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memBookingStore) ListActiveInRange(ctx context.Context, providerID string, from, to time.Time) ([]models.Booking, error) {
	return m.FindOverlapping(ctx, providerID, from, to, "")
}

func (m *memBookingStore) ConfirmIfPending(ctx context.Context, id, paymentIntentID string, platformFee, providerShare int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.Status != models.BookingStatusPending {
		return false, nil
	}
	b.Status = models.BookingStatusConfirmed
	b.PaymentIntentID = paymentIntentID
	b.PlatformFeeCents = platformFee
	b.ProviderShareCents = providerShare
	m.confirms++
	return true, nil
}

func (m *memBookingStore) CancelActive(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	if b.Status != models.BookingStatusPending && b.Status != models.BookingStatusConfirmed {
		return false, nil
	}
	b.Status = models.BookingStatusCancelled
	return true, nil
}

func (m *memBookingStore) UpdateSchedule(ctx context.Context, id string, newStart, newEnd time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upderr != nil {
		return m.upderr
	}
	b, ok := m.rows[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	b.Start = newStart
	b.End = newEnd
	b.CalendarEventID = ""
	return nil
}

func (m *memBookingStore) SetMeetingURL(ctx context.Context, id, url string) error {
	return m.setField(id, func(b *models.Booking) { b.MeetingURL = url })
}

func (m *memBookingStore) SetCalendarEventID(ctx context.Context, id, eventID string) error {
	return m.setField(id, func(b *models.Booking) { b.CalendarEventID = eventID })
}

func (m *memBookingStore) SetCheckoutSessionID(ctx context.Context, id, sessionID string) error {
	return m.setField(id, func(b *models.Booking) { b.CheckoutSessionID = sessionID })
}

func (m *memBookingStore) setField(id string, mutate func(*models.Booking)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	mutate(b)
	return nil
}

func (m *memBookingStore) EnsureIndexes() error { return nil }

func (m *memBookingStore) rowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memBookingStore) confirmCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.confirms
}

// memSlotStore is an in-memory SlotRepository keyed by start instant.
type memSlotStore struct {
	mu    sync.Mutex
	slots map[int64]*models.AvailabilitySlot
}

func newMemSlotStore(starts ...time.Time) *memSlotStore {
	s := &memSlotStore{slots: make(map[int64]*models.AvailabilitySlot)}
	for _, start := range starts {
		s.slots[start.Unix()] = &models.AvailabilitySlot{
			Start: start,
			End:   start.Add(30 * time.Minute),
		}
	}
	return s
}

func (m *memSlotStore) ReplaceUnbooked(ctx context.Context, providerID string, slots []models.AvailabilitySlot) error {
	return nil
}

func (m *memSlotStore) ListFreeInRange(ctx context.Context, providerID string, from, to time.Time) ([]models.AvailabilitySlot, error) {
	return nil, nil
}

func (m *memSlotStore) ListBookedStarts(ctx context.Context, providerID string, from time.Time) ([]time.Time, error) {
	return nil, nil
}

func (m *memSlotStore) Claim(ctx context.Context, providerID string, start time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[start.Unix()]
	if !ok {
		return slotRepo.ErrNoSlot
	}
	if s.IsBooked {
		return slotRepo.ErrSlotTaken
	}
	s.IsBooked = true
	return nil
}

func (m *memSlotStore) Release(ctx context.Context, providerID string, start time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[start.Unix()]
	if !ok || !s.IsBooked {
		return slotRepo.ErrNoSlot
	}
	s.IsBooked = false
	return nil
}

func (m *memSlotStore) EnsureIndexes() error { return nil }

func (m *memSlotStore) booked(start time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[start.Unix()]
	return ok && s.IsBooked
}

// memProviderStore serves a single provider.
type memProviderStore struct {
	provider *models.Provider
}

func (m *memProviderStore) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	if m.provider == nil || m.provider.ID != id {
		return nil, mongo.ErrNoDocuments
	}
	return m.provider, nil
}

func (m *memProviderStore) Upsert(ctx context.Context, p *models.Provider) error { return nil }

func (m *memProviderStore) UpdateSettings(ctx context.Context, id string, upd models.ProviderSettingsUpdate) (*models.Provider, error) {
	return m.provider, nil
}

// fakeCalendarWriter records mirrored events.
type fakeCalendarWriter struct {
	mu      sync.Mutex
	created []calendar.EventInput
	deleted []string
	seq     int
}

func (f *fakeCalendarWriter) CreateEvent(ctx context.Context, providerID string, in calendar.EventInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.created = append(f.created, in)
	return fmt.Sprintf("ev-%d", f.seq), nil
}

func (f *fakeCalendarWriter) DeleteEvent(ctx context.Context, providerID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, eventID)
	return nil
}

func (f *fakeCalendarWriter) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

// fakeCheckout returns a canned checkout session.
type fakeCheckout struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeCheckout) CreateCheckout(ctx context.Context, b *models.Booking) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return "https://pay.example.com/" + b.ID, "cs_" + b.ID, nil
}

// fakeRooms returns a canned meeting URL.
type fakeRooms struct{}

func (f *fakeRooms) CreateRoom(ctx context.Context, name string) (string, error) {
	return "https://meet.example.com/" + name, nil
}

// fakeNotifier counts lifecycle notifications.
type fakeNotifier struct {
	mu          sync.Mutex
	confirmed   int
	cancelled   int
	rescheduled int
}

func (f *fakeNotifier) BookingConfirmed(bookingID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed++
}

func (f *fakeNotifier) BookingCancelled(bookingID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
}

func (f *fakeNotifier) BookingRescheduled(bookingID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rescheduled++
}

func (f *fakeNotifier) counts() (confirmed, cancelled, rescheduled int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmed, f.cancelled, f.rescheduled
}

// testClock is Monday 2026-06-01 08:00 UTC.
var testClock = time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC)

type testEnv struct {
	svc      *DefaultBookingService
	bookings *memBookingStore
	slots    *memSlotStore
	cal      *fakeCalendarWriter
	notifier *fakeNotifier
	checkout *fakeCheckout
}

func newTestEnv(slotStarts ...time.Time) *testEnv {
	env := &testEnv{
		bookings: newMemBookingStore(),
		slots:    newMemSlotStore(slotStarts...),
		cal:      &fakeCalendarWriter{},
		notifier: &fakeNotifier{},
		checkout: &fakeCheckout{},
	}
	env.svc = &DefaultBookingService{
		Bookings: env.bookings,
		Slots:    env.slots,
		Providers: &memProviderStore{provider: &models.Provider{
			ID:       "prov-1",
			Name:     "Dr. Example",
			Timezone: "UTC",
		}},
		Calendar:   env.cal,
		Payments:   env.checkout,
		Meetings:   &fakeRooms{},
		Notifier:   env.notifier,
		Logger:     zap.NewNop(),
		FeePercent: 20,
		Now:        func() time.Time { return testClock },
	}
	return env
}
