// Package geo resolves coordinates to street addresses. Permission failures
// from the upstream are a distinct, retryable error variant so callers can
// route them to a permission prompt instead of a generic failure.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrPermissionDenied indicates the upstream refused the lookup for
// authorization reasons. Callers should offer a retry, not auto-retry.
var ErrPermissionDenied = errors.New("location permission denied")

// Place is a resolved location.
type Place struct {
	DisplayName string
	MapsURL     string
}

// Client performs reverse-geocoding lookups against a nominatim-style API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client with sane defaults.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// MapsURL derives the maps link for a coordinate pair. It is set whenever
// coordinates are known, even when the address lookup itself fails.
func MapsURL(lat, lon float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", lat, lon)
}

// Reverse resolves coordinates to an address in the requested language. On
// an address-lookup failure that is not permission-related, callers may
// still use MapsURL for the coordinates.
func (c *Client) Reverse(ctx context.Context, lat, lon float64, language string) (*Place, error) {
	endpoint := fmt.Sprintf("%s/reverse?lat=%v&lon=%v&format=json", c.baseURL, lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if language != "" {
		req.Header.Set("Accept-Language", language)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrPermissionDenied
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geocoder error: %s", body)
	}

	var payload struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &Place{
		DisplayName: payload.DisplayName,
		MapsURL:     MapsURL(lat, lon),
	}, nil
}
