package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Error classes surfaced by the direct-translate endpoint. The queued path
// never exposes these: it falls back silently.
var (
	// ErrRateLimited indicates the backend rejected the call for quota reasons.
	ErrRateLimited = errors.New("translation rate limited")
	// ErrPaymentRequired indicates the backend account is out of credit.
	ErrPaymentRequired = errors.New("translation payment required")
)

// Client calls the translation backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client with sane defaults.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate performs a single-text, single-target-language call.
func (c *Client) Translate(ctx context.Context, text string, target Language, authToken string) (string, error) {
	body, err := json.Marshal(translateRequest{Text: text, TargetLanguage: string(target)})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return "", ErrRateLimited
	case http.StatusPaymentRequired:
		return "", ErrPaymentRequired
	}
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translate backend error: %s", data)
	}

	var payload translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Error != "" {
		if strings.Contains(payload.Error, "Rate limit") {
			return "", ErrRateLimited
		}
		if strings.Contains(payload.Error, "Payment") {
			return "", ErrPaymentRequired
		}
		return "", fmt.Errorf("translate backend error: %s", payload.Error)
	}
	if payload.TranslatedText == "" {
		return "", errors.New("translate backend returned no text")
	}
	return payload.TranslatedText, nil
}
