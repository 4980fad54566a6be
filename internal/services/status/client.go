// Package status polls the remote fleet API for device status and battery history.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/roelvg/fleetpulse-tui/internal/logger"
	"github.com/roelvg/fleetpulse-tui/internal/models"
)

const clientTimeout = 30 * time.Second

// Client talks to the remote fleet API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates an API client for the given base URL and bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: clientTimeout},
	}
}

// statusResponse is the wire format of the device status endpoint.
type statusResponse struct {
	DeviceID       string  `json:"deviceId"`
	Firmware       string  `json:"firmware"`
	LastSeen       int64   `json:"lastSeen"`
	PercentCharged float64 `json:"percentCharged"`
	BatteryVoltage float64 `json:"batteryVoltage"`
	IsCharging     bool    `json:"isCharging"`
	Online         bool    `json:"online"`
}

// readingsResponse is the wire format of the battery history endpoint.
type readingsResponse struct {
	Readings []struct {
		Timestamp      int64    `json:"timestamp"`
		PercentCharged float64  `json:"percentCharged"`
		BatteryVoltage *float64 `json:"batteryVoltage,omitempty"`
	} `json:"readings"`
}

// FetchStatus retrieves the current status of a device.
func (c *Client) FetchStatus(ctx context.Context, deviceID string) (*models.DeviceStatus, error) {
	endpoint := fmt.Sprintf("%s/v1/devices/%s/status", c.baseURL, url.PathEscape(deviceID))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var sr statusResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}

	st := &models.DeviceStatus{
		DeviceID:       deviceID,
		Firmware:       sr.Firmware,
		PercentCharged: sr.PercentCharged,
		BatteryVoltage: sr.BatteryVoltage,
		IsCharging:     sr.IsCharging,
		Online:         sr.Online,
		LastUpdated:    time.Now(),
	}
	if sr.LastSeen > 0 {
		st.LastSeen = time.UnixMilli(sr.LastSeen)
	}
	return st, nil
}

// FetchHistory retrieves battery readings for a device recorded at or after
// the given time. A zero since fetches the full available history.
func (c *Client) FetchHistory(ctx context.Context, deviceID string, since time.Time) ([]models.BatteryReading, error) {
	endpoint := fmt.Sprintf("%s/v1/devices/%s/readings", c.baseURL, url.PathEscape(deviceID))
	if !since.IsZero() {
		endpoint += "?since=" + strconv.FormatInt(since.UnixMilli(), 10)
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var rr readingsResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, fmt.Errorf("failed to parse readings response: %w", err)
	}

	readings := make([]models.BatteryReading, 0, len(rr.Readings))
	for _, r := range rr.Readings {
		readings = append(readings, models.BatteryReading{
			DeviceID:       deviceID,
			Timestamp:      r.Timestamp,
			PercentCharged: r.PercentCharged,
			BatteryVoltage: r.BatteryVoltage,
		})
	}
	return readings, nil
}

// get performs an authenticated GET and returns the response body.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("unauthorized: API token may be invalid")
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("device not found on remote API")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
