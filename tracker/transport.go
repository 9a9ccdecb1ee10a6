package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// TrackPayload is the body of the one ingestion call a controller makes
// per navigation.
type TrackPayload struct {
	SessionID string    `json:"sessionId"`
	PagePath  string    `json:"pagePath"`
	FullPath  string    `json:"fullPath,omitempty"`
	PageTitle string    `json:"pageTitle,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	UserAgent string    `json:"userAgent"`
	Timestamp time.Time `json:"timestamp"`
}

// Client issues the tracking calls for a navigation. Implementations must
// not retry: a failed call is dropped so a stale update can never arrive
// after a newer one.
type Client interface {
	Track(ctx context.Context, payload TrackPayload) (pageViewID string, err error)
	UpdateTime(ctx context.Context, pageViewID string, timeSpentSeconds int) error
}

// BeaconTransport is the fire-and-forget delivery used for the final flush
// on page teardown. Its only contract is "attempt delivery without blocking
// teardown"; there is no delivery confirmation.
type BeaconTransport interface {
	SendBeacon(pageViewID string, timeSpentSeconds int)
}

// HTTPClient talks to the analytics endpoints over HTTP with a short
// timeout. It implements both Client and BeaconTransport.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

type trackResponse struct {
	PageViewID string `json:"pageViewId"`
	Success    bool   `json:"success"`
}

func (c *HTTPClient) Track(ctx context.Context, payload TrackPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode track payload: %w", err)
	}

	resp, err := c.post(ctx, "/analytics/track", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("track request returned status %d", resp.StatusCode)
	}

	var tr trackResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode track response: %w", err)
	}
	if tr.PageViewID == "" {
		return "", fmt.Errorf("track response missing pageViewId")
	}
	return tr.PageViewID, nil
}

func (c *HTTPClient) UpdateTime(ctx context.Context, pageViewID string, timeSpentSeconds int) error {
	body, err := json.Marshal(map[string]interface{}{
		"pageViewId": pageViewID,
		"timeSpent":  timeSpentSeconds,
	})
	if err != nil {
		return fmt.Errorf("failed to encode update-time payload: %w", err)
	}

	resp, err := c.post(ctx, "/analytics/update-time", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update-time request returned status %d", resp.StatusCode)
	}
	return nil
}

// SendBeacon delivers one final update on a detached goroutine with its own
// deadline, so teardown never waits on the network. The outcome is ignored.
func (c *HTTPClient) SendBeacon(pageViewID string, timeSpentSeconds int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.UpdateTime(ctx, pageViewID, timeSpentSeconds); err != nil {
			log.Printf("tracker: final flush for %s dropped: %v", pageViewID, err)
		}
	}()
}

func (c *HTTPClient) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	return resp, nil
}
