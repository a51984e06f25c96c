package calendar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"slotwise/models"

	ics "github.com/arran4/golang-ical"
)

// icsFeedClient is the read-only variant over a subscribed iCalendar feed.
type icsFeedClient struct {
	adapter *Adapter
}

func (f *icsFeedClient) ListBusy(ctx context.Context, conn *models.CalendarConnection, from, to time.Time) ([]models.BusyInterval, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, conn.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url: %w", err)
	}
	resp, err := f.adapter.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ics feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ics feed returned status %d", resp.StatusCode)
	}

	cal, err := ics.ParseCalendar(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ics feed: %w", err)
	}
	return icsBusyFromCalendar(cal, from, to), nil
}

// icsBusyFromCalendar applies the busy filtering rules to feed events: only
// timed, non-cancelled, opaque entries inside the range count as busy.
// Date-only (all-day) entries and TRANSP:TRANSPARENT entries are skipped.
func icsBusyFromCalendar(cal *ics.Calendar, from, to time.Time) []models.BusyInterval {
	var busy []models.BusyInterval
	for _, ev := range cal.Events() {
		if icsAllDay(ev) {
			continue
		}
		if status := propValue(ev, ics.ComponentPropertyStatus); strings.EqualFold(status, "CANCELLED") {
			continue
		}
		if transp := propValue(ev, ics.ComponentProperty(ics.PropertyTransp)); strings.EqualFold(transp, "TRANSPARENT") {
			continue
		}

		start, err := ev.GetStartAt()
		if err != nil {
			continue
		}
		end, err := ev.GetEndAt()
		if err != nil {
			continue
		}
		start, end = start.UTC(), end.UTC()
		if !start.Before(to) || !end.After(from) {
			continue
		}
		busy = append(busy, models.BusyInterval{
			Start:  start,
			End:    end,
			Source: models.CalendarKindICSFeed,
		})
	}
	return busy
}

// icsAllDay reports whether the event's DTSTART is date-only, either via
// VALUE=DATE or a bare 8-digit value.
func icsAllDay(ev *ics.VEvent) bool {
	prop := ev.GetProperty(ics.ComponentPropertyDtStart)
	if prop == nil {
		return true
	}
	for _, v := range prop.ICalParameters["VALUE"] {
		if strings.EqualFold(v, "DATE") {
			return true
		}
	}
	return len(prop.Value) == 8
}

func propValue(ev *ics.VEvent, name ics.ComponentProperty) string {
	prop := ev.GetProperty(name)
	if prop == nil {
		return ""
	}
	return prop.Value
}

// The write path does not exist for subscribed feeds.

func (f *icsFeedClient) CreateEvent(context.Context, *models.CalendarConnection, EventInput) (string, error) {
	return "", ErrReadOnlyConnection
}

func (f *icsFeedClient) DeleteEvent(context.Context, *models.CalendarConnection, string) error {
	return ErrReadOnlyConnection
}
