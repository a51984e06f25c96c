package booking

import (
	"context"
	"testing"
	"time"

	"slotwise/config"
	"slotwise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tuesday 2026-06-02 09:00 UTC, comfortably in the future of testClock.
var slotStart = time.Date(2026, time.June, 2, 9, 0, 0, 0, time.UTC)

func validInput() models.CreateBookingInput {
	return models.CreateBookingInput{
		ProviderID:      "prov-1",
		Date:            "2026-06-02",
		StartMinute:     9 * 60,
		DurationMinutes: 30,
		Timezone:        "UTC",
	}
}

func TestCreatePendingBookingWithCheckout(t *testing.T) {
	env := newTestEnv(slotStart)

	b, checkoutURL, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.True(t, b.Start.Equal(slotStart))
	assert.Equal(t, 30*time.Minute, b.End.Sub(b.Start))
	assert.Equal(t, int64(2500), b.PriceCents)
	assert.Equal(t, "usd", b.Currency)
	assert.Equal(t, "https://pay.example.com/"+b.ID, checkoutURL)

	// The slot is not claimed until payment settles.
	assert.False(t, env.slots.booked(slotStart))

	stored, err := env.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, stored.Status)
}

func TestCreateUsesConfiguredCurrency(t *testing.T) {
	config.AppConfig.Currency = "eur"
	t.Cleanup(func() { config.AppConfig.Currency = "" })

	env := newTestEnv(slotStart)
	b, _, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)
	assert.Equal(t, "eur", b.Currency)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(slotStart)
	var verr *ValidationError

	in := validInput()
	in.DurationMinutes = 45
	_, _, err := env.svc.Create(context.Background(), "req-1", in)
	assert.ErrorAs(t, err, &verr)

	in = validInput()
	in.Timezone = "Nowhere/Void"
	_, _, err = env.svc.Create(context.Background(), "req-1", in)
	assert.ErrorAs(t, err, &verr)

	in = validInput()
	in.Date = "2026-05-01" // past
	_, _, err = env.svc.Create(context.Background(), "req-1", in)
	assert.ErrorAs(t, err, &verr)

	_, _, err = env.svc.Create(context.Background(), "", validInput())
	assert.ErrorAs(t, err, &verr)
}

func TestCreateDeduplicatesIdenticalRequest(t *testing.T) {
	env := newTestEnv(slotStart)

	first, url1, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)
	require.NotEmpty(t, url1)

	second, url2, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)

	// Same row comes back, no fresh checkout session.
	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, url2)
	assert.Equal(t, 1, env.bookings.rowCount())
}

func TestCreateRejectsOverlappingRequest(t *testing.T) {
	env := newTestEnv(slotStart)

	_, _, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)

	// A different requester wants an interval crossing the first one.
	in := validInput()
	in.StartMinute = 9*60 + 15
	_, _, err = env.svc.Create(context.Background(), "req-2", in)

	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestConfirmClaimsSlotAndNotifies(t *testing.T) {
	env := newTestEnv(slotStart)

	b, _, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)

	require.NoError(t, env.svc.Confirm(context.Background(), b.ID, "pi_123"))

	stored, err := env.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, stored.Status)
	assert.Equal(t, "pi_123", stored.PaymentIntentID)
	assert.Equal(t, int64(500), stored.PlatformFeeCents)
	assert.Equal(t, int64(2000), stored.ProviderShareCents)
	assert.True(t, env.slots.booked(slotStart))

	confirmed, _, _ := env.notifier.counts()
	assert.Equal(t, 1, confirmed)

	// Calendar mirroring happens off the request path.
	assert.Eventually(t, func() bool { return env.cal.createdCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestConfirmIsIdempotentUnderRedelivery(t *testing.T) {
	env := newTestEnv(slotStart)

	b, _, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, env.svc.Confirm(context.Background(), b.ID, "pi_123"))
	}

	// Exactly one state transition and one notification; redeliveries were
	// no-ops.
	assert.Equal(t, 1, env.bookings.confirmCount())
	confirmed, _, _ := env.notifier.counts()
	assert.Equal(t, 1, confirmed)
	assert.True(t, env.slots.booked(slotStart))
}

func TestConfirmCancelledBookingFails(t *testing.T) {
	env := newTestEnv(slotStart)

	b, _, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)
	require.NoError(t, env.svc.Cancel(context.Background(), b.ID, "req-1"))

	err = env.svc.Confirm(context.Background(), b.ID, "pi_123")
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestConfirmMissingBooking(t *testing.T) {
	env := newTestEnv(slotStart)
	err := env.svc.Confirm(context.Background(), "bk-ghost", "pi_123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmToleratesMissingSlotRow(t *testing.T) {
	// No slot rows at all: the booking row is authoritative, confirmation
	// still succeeds.
	env := newTestEnv()

	b, _, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)
	assert.NoError(t, env.svc.Confirm(context.Background(), b.ID, "pi_123"))

	stored, err := env.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, stored.Status)
}

func TestCancelReleasesSlot(t *testing.T) {
	env := newTestEnv(slotStart)

	b, _, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)
	require.NoError(t, env.svc.Confirm(context.Background(), b.ID, "pi_123"))
	require.True(t, env.slots.booked(slotStart))

	require.NoError(t, env.svc.Cancel(context.Background(), b.ID, "req-1"))

	stored, err := env.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, stored.Status)
	assert.False(t, env.slots.booked(slotStart))

	_, cancelled, _ := env.notifier.counts()
	assert.Equal(t, 1, cancelled)
}

func TestCancelByNonPartyIsForbidden(t *testing.T) {
	env := newTestEnv(slotStart)

	b, _, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)

	err = env.svc.Cancel(context.Background(), b.ID, "stranger")
	var perm *PermissionError
	assert.ErrorAs(t, err, &perm)
}

func TestCancelTwiceIsANoOp(t *testing.T) {
	env := newTestEnv(slotStart)

	b, _, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)
	require.NoError(t, env.svc.Cancel(context.Background(), b.ID, "req-1"))
	require.NoError(t, env.svc.Cancel(context.Background(), b.ID, "req-1"))

	_, cancelled, _ := env.notifier.counts()
	assert.Equal(t, 1, cancelled)
}

func TestCancelledIntervalBecomesBookableAgain(t *testing.T) {
	env := newTestEnv(slotStart)

	b, _, err := env.svc.Create(context.Background(), "req-1", validInput())
	require.NoError(t, err)
	require.NoError(t, env.svc.Confirm(context.Background(), b.ID, "pi_1"))
	require.NoError(t, env.svc.Cancel(context.Background(), b.ID, "req-1"))

	// A second requester can now take the same interval.
	b2, url, err := env.svc.Create(context.Background(), "req-2", validInput())
	require.NoError(t, err)
	assert.NotEqual(t, b.ID, b2.ID)
	assert.NotEmpty(t, url)
}
