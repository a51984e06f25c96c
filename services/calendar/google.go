package calendar

import (
	"context"
	"fmt"
	"time"

	"slotwise/config"
	"slotwise/models"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleOAuthConfig builds the OAuth2 config for the Google Calendar connect
// flow. Offline access is required so we receive a refresh token.
func GoogleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.AppConfig.GoogleClientID,
		ClientSecret: config.AppConfig.GoogleClientSecret,
		RedirectURL:  config.AppConfig.GoogleRedirectURL,
		Scopes:       []string{gcal.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
}

// googleClient is the OAuth read/write variant backed by the Calendar v3 API.
type googleClient struct {
	adapter *Adapter
}

// token opportunistically refreshes the access token when a refresh token is
// present. Refresh failure is soft: the stale token is kept and the call
// proceeds, since stale-but-available beats blocking bookability.
func (g *googleClient) token(ctx context.Context, conn *models.CalendarConnection) *oauth2.Token {
	current := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiry,
	}
	if conn.RefreshToken == "" {
		return current
	}

	refreshed, err := GoogleOAuthConfig().TokenSource(ctx, current).Token()
	if err != nil {
		g.adapter.Logger.Warn("google token refresh failed, using existing token",
			zap.String("providerId", conn.ProviderID), zap.Error(err))
		return current
	}
	if refreshed.AccessToken != conn.AccessToken {
		if err := g.adapter.Conns.UpdateAccessToken(ctx, conn.ProviderID, refreshed.AccessToken, refreshed.Expiry); err != nil {
			g.adapter.Logger.Warn("failed to persist refreshed google token",
				zap.String("providerId", conn.ProviderID), zap.Error(err))
		}
	}
	return refreshed
}

func (g *googleClient) service(ctx context.Context, conn *models.CalendarConnection) (*gcal.Service, error) {
	tok := g.token(ctx, conn)
	srv, err := gcal.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create google calendar service: %w", err)
	}
	return srv, nil
}

func (g *googleClient) ListBusy(ctx context.Context, conn *models.CalendarConnection, from, to time.Time) ([]models.BusyInterval, error) {
	srv, err := g.service(ctx, conn)
	if err != nil {
		return nil, err
	}

	events, err := srv.Events.List("primary").
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		MaxResults(250).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list google events: %w", err)
	}
	return googleBusyFromEvents(events.Items), nil
}

// googleBusyFromEvents applies the busy filtering rules: all-day (date-only)
// entries, transparent/"free" entries, cancelled entries and entries the
// provider declined do not block availability.
func googleBusyFromEvents(items []*gcal.Event) []models.BusyInterval {
	var busy []models.BusyInterval
	for _, item := range items {
		if item.Start == nil || item.Start.DateTime == "" || item.End == nil || item.End.DateTime == "" {
			continue // all-day or malformed
		}
		if item.Transparency == "transparent" {
			continue
		}
		if item.Status == "cancelled" {
			continue
		}
		if googleDeclined(item) {
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			continue
		}
		busy = append(busy, models.BusyInterval{
			Start:  start.UTC(),
			End:    end.UTC(),
			Source: models.CalendarKindGoogle,
		})
	}
	return busy
}

func googleDeclined(item *gcal.Event) bool {
	for _, att := range item.Attendees {
		if att.Self && att.ResponseStatus == "declined" {
			return true
		}
	}
	return false
}

func (g *googleClient) CreateEvent(ctx context.Context, conn *models.CalendarConnection, in EventInput) (string, error) {
	srv, err := g.service(ctx, conn)
	if err != nil {
		return "", err
	}

	description := in.Description
	if in.MeetingURL != "" {
		description = fmt.Sprintf("%s\n\nJoin: %s", description, in.MeetingURL)
	}
	event := &gcal.Event{
		Summary:     in.Summary,
		Description: description,
		Start:       &gcal.EventDateTime{DateTime: in.Start.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:         &gcal.EventDateTime{DateTime: in.End.UTC().Format(time.RFC3339), TimeZone: "UTC"},
	}
	created, err := srv.Events.Insert("primary", event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert google event: %w", err)
	}
	return created.Id, nil
}

func (g *googleClient) DeleteEvent(ctx context.Context, conn *models.CalendarConnection, eventID string) error {
	srv, err := g.service(ctx, conn)
	if err != nil {
		return err
	}
	if err := srv.Events.Delete("primary", eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete google event %s: %w", eventID, err)
	}
	return nil
}
