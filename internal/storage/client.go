// Package storage provides the object-store client used for photo files.
// Files are stored under path references; time-limited signed URLs are
// minted on demand, batched for many paths in one call.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Client talks to the object-store HTTP API.
type Client struct {
	baseURL    string
	bucket     string
	httpClient *http.Client
}

// NewClient constructs a Client for one bucket with sane defaults.
func NewClient(baseURL, bucket string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Upload stores a blob under the given path and returns the stored path
// reference (never a signed URL).
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	endpoint := fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, url.PathEscape(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("storage upload error: %s", body)
	}
	return path, nil
}

type signRequest struct {
	Paths     []string `json:"paths"`
	ExpiresIn int      `json:"expiresIn"`
}

type signedEntry struct {
	Path      string `json:"path"`
	SignedURL string `json:"signedUrl"`
}

// SignedURLs resolves stored paths to time-limited URLs in a single batch
// call. Paths the store could not sign are absent from the result map.
func (c *Client) SignedURLs(ctx context.Context, paths []string, ttl time.Duration) (map[string]string, error) {
	if len(paths) == 0 {
		return map[string]string{}, nil
	}

	body, err := json.Marshal(signRequest{Paths: paths, ExpiresIn: int(ttl.Seconds())})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/object/sign/%s", c.baseURL, c.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("storage sign error: %s", data)
	}

	var entries []signedEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.Path != "" && entry.SignedURL != "" {
			out[entry.Path] = entry.SignedURL
		}
	}
	return out, nil
}

// IsPath reports whether a stored file reference is a path needing signed-URL
// resolution rather than an absolute URL.
func IsPath(fileURL string) bool {
	return !strings.HasPrefix(fileURL, "http")
}

var (
	extPattern  = regexp.MustCompile(`[^a-z0-9]`)
	basePattern = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// SanitizeFileName normalises an uploaded file name to a safe form,
// preserving a lowercase alphanumeric extension.
func SanitizeFileName(name string) string {
	ext := "jpg"
	base := name
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		if cleaned := extPattern.ReplaceAllString(strings.ToLower(name[idx+1:]), ""); cleaned != "" {
			ext = cleaned
		}
		base = name[:idx]
	}
	base = basePattern.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, ".")
	if len(base) > 200 {
		base = base[:200]
	}
	return base + "." + ext
}

// ObjectPath builds the storage path for an uploaded photo, namespaced by
// user and report.
func ObjectPath(userID, reportID, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%d-%s", userID, reportID, now.UnixMilli(), SanitizeFileName(fileName))
}
