// Package calendar is the adapter over external calendar providers. The
// variant (google, microsoft, ics feed, none) is selected once per connection
// here; callers never branch on the provider kind.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	calendarConnRepo "slotwise/database/repository/calendarconn"
	"slotwise/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrReadOnlyConnection is returned by the write path of connections that
// cannot create or delete events (subscribed ICS feeds).
var ErrReadOnlyConnection = errors.New("calendar connection is read-only")

// EventInput describes a session event to mirror into a provider calendar.
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	MeetingURL  string
}

// Client is the per-variant contract. ListBusy feeds the availability query;
// CreateEvent/DeleteEvent are used only by the booking orchestrator and the
// reschedule engine.
type Client interface {
	ListBusy(ctx context.Context, conn *models.CalendarConnection, from, to time.Time) ([]models.BusyInterval, error)
	CreateEvent(ctx context.Context, conn *models.CalendarConnection, in EventInput) (string, error)
	DeleteEvent(ctx context.Context, conn *models.CalendarConnection, eventID string) error
}

const busyCacheTTL = 60 * time.Second

// Adapter owns connection lookup, variant dispatch, token refresh persistence
// and short-lived busy-interval caching.
type Adapter struct {
	Conns   calendarConnRepo.CalendarConnRepository
	Cache   *redis.Client
	Logger  *zap.Logger
	Timeout time.Duration

	httpClient *http.Client
}

// NewAdapter constructs the adapter with a bounded-timeout HTTP client.
func NewAdapter(conns calendarConnRepo.CalendarConnRepository, cache *redis.Client, logger *zap.Logger, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Adapter{
		Conns:      conns,
		Cache:      cache,
		Logger:     logger,
		Timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// clientFor selects the variant implementation once per connection.
func (a *Adapter) clientFor(conn *models.CalendarConnection) Client {
	if conn == nil {
		return noneClient{}
	}
	switch conn.Kind {
	case models.CalendarKindGoogle:
		return &googleClient{adapter: a}
	case models.CalendarKindMicrosoft:
		return &microsoftClient{adapter: a}
	case models.CalendarKindICSFeed:
		return &icsFeedClient{adapter: a}
	default:
		return noneClient{}
	}
}

// ListBusy returns the provider's external busy intervals for the range. A
// provider without a connection yields no intervals. Errors are upstream
// degradation: the caller treats them as "no external busy data".
func (a *Adapter) ListBusy(ctx context.Context, providerID string, from, to time.Time) ([]models.BusyInterval, error) {
	conn, err := a.Conns.GetByProviderID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar connection: %w", err)
	}
	if conn == nil {
		return nil, nil
	}

	if cached, ok := a.cachedBusy(ctx, providerID, from, to); ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	busy, err := a.clientFor(conn).ListBusy(ctx, conn, from, to)
	if err != nil {
		return nil, err
	}
	a.storeBusy(ctx, providerID, from, to, busy)
	return busy, nil
}

// CreateEvent mirrors a booking into the provider's calendar. No-op for
// providers without a write-capable connection.
func (a *Adapter) CreateEvent(ctx context.Context, providerID string, in EventInput) (string, error) {
	conn, err := a.Conns.GetByProviderID(ctx, providerID)
	if err != nil {
		return "", fmt.Errorf("failed to load calendar connection: %w", err)
	}
	if !conn.Writable() {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()
	return a.clientFor(conn).CreateEvent(ctx, conn, in)
}

// DeleteEvent removes a previously mirrored event. No-op for providers
// without a write-capable connection or with an empty event id.
func (a *Adapter) DeleteEvent(ctx context.Context, providerID, eventID string) error {
	if eventID == "" {
		return nil
	}
	conn, err := a.Conns.GetByProviderID(ctx, providerID)
	if err != nil {
		return fmt.Errorf("failed to load calendar connection: %w", err)
	}
	if !conn.Writable() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()
	return a.clientFor(conn).DeleteEvent(ctx, conn, eventID)
}

func busyCacheKey(providerID string, from, to time.Time) string {
	return fmt.Sprintf("busy:%s:%d:%d", providerID, from.Unix(), to.Unix())
}

func (a *Adapter) cachedBusy(ctx context.Context, providerID string, from, to time.Time) ([]models.BusyInterval, bool) {
	if a.Cache == nil {
		return nil, false
	}
	raw, err := a.Cache.Get(ctx, busyCacheKey(providerID, from, to)).Result()
	if err != nil {
		return nil, false
	}
	var busy []models.BusyInterval
	if err := json.Unmarshal([]byte(raw), &busy); err != nil {
		return nil, false
	}
	return busy, true
}

func (a *Adapter) storeBusy(ctx context.Context, providerID string, from, to time.Time, busy []models.BusyInterval) {
	if a.Cache == nil {
		return
	}
	raw, err := json.Marshal(busy)
	if err != nil {
		return
	}
	if err := a.Cache.Set(ctx, busyCacheKey(providerID, from, to), raw, busyCacheTTL).Err(); err != nil {
		a.Logger.Debug("busy cache write failed", zap.Error(err))
	}
}

// noneClient serves providers with no external calendar.
type noneClient struct{}

func (noneClient) ListBusy(context.Context, *models.CalendarConnection, time.Time, time.Time) ([]models.BusyInterval, error) {
	return nil, nil
}

func (noneClient) CreateEvent(context.Context, *models.CalendarConnection, EventInput) (string, error) {
	return "", nil
}

func (noneClient) DeleteEvent(context.Context, *models.CalendarConnection, string) error {
	return nil
}
