// Package meeting provisions external video meeting rooms. The provisioner
// is a best-effort collaborator: failures are reported to the caller, who
// logs and moves on.
package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"slotwise/config"
)

// Provisioner creates a meeting room and returns its join URL.
type Provisioner interface {
	CreateRoom(ctx context.Context, name string) (string, error)
}

// RESTProvisioner talks to the configured meeting-room API.
type RESTProvisioner struct {
	client *http.Client
}

// NewRESTProvisioner constructs the provisioner with a bounded timeout.
func NewRESTProvisioner() *RESTProvisioner {
	return &RESTProvisioner{
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *RESTProvisioner) CreateRoom(ctx context.Context, name string) (string, error) {
	payload, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		config.AppConfig.MeetingAPIURL+"/rooms", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+config.AppConfig.MeetingAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("meeting room request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("meeting room api returned status %d", resp.StatusCode)
	}

	var room struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return "", fmt.Errorf("failed to decode meeting room response: %w", err)
	}
	if room.URL == "" {
		return "", fmt.Errorf("meeting room api returned no url")
	}
	return room.URL, nil
}
