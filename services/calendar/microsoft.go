package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"slotwise/config"
	"slotwise/models"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// Graph returns event times as "2006-01-02T15:04:05.0000000" in the zone we
// request via the Prefer header (always UTC here).
const graphTimeLayout = "2006-01-02T15:04:05.9999999"

// MicrosoftOAuthConfig builds the OAuth2 config for the Microsoft 365 connect
// flow.
func MicrosoftOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.AppConfig.MicrosoftClientID,
		ClientSecret: config.AppConfig.MicrosoftClientSecret,
		RedirectURL:  config.AppConfig.MicrosoftRedirectURL,
		Scopes:       []string{"offline_access", "Calendars.ReadWrite"},
		Endpoint:     microsoft.AzureADEndpoint("common"),
	}
}

// microsoftClient is the OAuth read/write variant backed by the Graph REST API.
type microsoftClient struct {
	adapter *Adapter
}

// graphEvent is the subset of the Graph event resource we consume.
type graphEvent struct {
	ID             string `json:"id"`
	IsAllDay       bool   `json:"isAllDay"`
	IsCancelled    bool   `json:"isCancelled"`
	ShowAs         string `json:"showAs"`
	ResponseStatus struct {
		Response string `json:"response"`
	} `json:"responseStatus"`
	Start struct {
		DateTime string `json:"dateTime"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
	} `json:"end"`
}

func (m *microsoftClient) token(ctx context.Context, conn *models.CalendarConnection) *oauth2.Token {
	current := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiry,
	}
	if conn.RefreshToken == "" {
		return current
	}

	refreshed, err := MicrosoftOAuthConfig().TokenSource(ctx, current).Token()
	if err != nil {
		m.adapter.Logger.Warn("microsoft token refresh failed, using existing token",
			zap.String("providerId", conn.ProviderID), zap.Error(err))
		return current
	}
	if refreshed.AccessToken != conn.AccessToken {
		if err := m.adapter.Conns.UpdateAccessToken(ctx, conn.ProviderID, refreshed.AccessToken, refreshed.Expiry); err != nil {
			m.adapter.Logger.Warn("failed to persist refreshed microsoft token",
				zap.String("providerId", conn.ProviderID), zap.Error(err))
		}
	}
	return refreshed
}

func (m *microsoftClient) do(ctx context.Context, conn *models.CalendarConnection, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, graphBaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+m.token(ctx, conn).AccessToken)
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return m.adapter.httpClient.Do(req)
}

func (m *microsoftClient) ListBusy(ctx context.Context, conn *models.CalendarConnection, from, to time.Time) ([]models.BusyInterval, error) {
	path := fmt.Sprintf("/me/calendarview?startDateTime=%s&endDateTime=%s&$top=250",
		url.QueryEscape(from.UTC().Format(time.RFC3339)),
		url.QueryEscape(to.UTC().Format(time.RFC3339)))

	resp, err := m.do(ctx, conn, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query graph calendar view: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph calendar view returned status %d", resp.StatusCode)
	}

	var payload struct {
		Value []graphEvent `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode graph calendar view: %w", err)
	}
	return microsoftBusyFromEvents(payload.Value), nil
}

// microsoftBusyFromEvents applies the busy filtering rules to Graph events:
// all-day, free (showAs), cancelled and declined entries are not busy.
func microsoftBusyFromEvents(events []graphEvent) []models.BusyInterval {
	var busy []models.BusyInterval
	for _, ev := range events {
		if ev.IsAllDay || ev.IsCancelled {
			continue
		}
		if ev.ShowAs == "free" {
			continue
		}
		if ev.ResponseStatus.Response == "declined" {
			continue
		}
		start, err := time.Parse(graphTimeLayout, ev.Start.DateTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(graphTimeLayout, ev.End.DateTime)
		if err != nil {
			continue
		}
		busy = append(busy, models.BusyInterval{
			Start:  start.UTC(),
			End:    end.UTC(),
			Source: models.CalendarKindMicrosoft,
		})
	}
	return busy
}

func (m *microsoftClient) CreateEvent(ctx context.Context, conn *models.CalendarConnection, in EventInput) (string, error) {
	content := in.Description
	if in.MeetingURL != "" {
		content = fmt.Sprintf("%s\n\nJoin: %s", content, in.MeetingURL)
	}
	payload := map[string]interface{}{
		"subject": in.Summary,
		"body":    map[string]string{"contentType": "text", "content": content},
		"start":   map[string]string{"dateTime": in.Start.UTC().Format(graphTimeLayout), "timeZone": "UTC"},
		"end":     map[string]string{"dateTime": in.End.UTC().Format(graphTimeLayout), "timeZone": "UTC"},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	resp, err := m.do(ctx, conn, http.MethodPost, "/me/events", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to create graph event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("graph event create returned status %d", resp.StatusCode)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode graph event: %w", err)
	}
	return created.ID, nil
}

func (m *microsoftClient) DeleteEvent(ctx context.Context, conn *models.CalendarConnection, eventID string) error {
	resp, err := m.do(ctx, conn, http.MethodDelete, "/me/events/"+url.PathEscape(eventID), nil)
	if err != nil {
		return fmt.Errorf("failed to delete graph event %s: %w", eventID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("graph event delete returned status %d", resp.StatusCode)
	}
	return nil
}
