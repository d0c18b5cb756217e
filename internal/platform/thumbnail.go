package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// ThumbnailFetcher downloads cover art images
type ThumbnailFetcher struct {
	Client *http.Client
}

// NewThumbnailFetcher creates a fetcher using client, or the default client when nil
func NewThumbnailFetcher(client *http.Client) *ThumbnailFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &ThumbnailFetcher{Client: client}
}

// FetchThumbnail writes the image at url to dst. A partial file is removed on failure.
func (f *ThumbnailFetcher) FetchThumbnail(ctx context.Context, url, dst string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("thumbnail request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch thumbnail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch thumbnail: unexpected status %s", resp.Status)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create thumbnail file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}
	return nil
}
