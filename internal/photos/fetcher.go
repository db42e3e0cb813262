// Package photos retrieves photo bytes for document embedding.
package photos

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ilisirali/EA/internal/images"
)

// maxPhotoBytes caps a single photo download.
const maxPhotoBytes = 20 << 20

// Fetcher downloads photos and prepares them for embedding. Callers iterate
// photos one at a time to bound memory and keep grid ordering deterministic.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher constructs a Fetcher with sane defaults.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch downloads a photo and downscales it for embedding (max width 500,
// JPEG quality 60).
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("photo fetch failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, err
	}

	return images.Downscale(data, images.EmbedMaxWidth, images.EmbedQuality)
}
