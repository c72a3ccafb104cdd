package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mr1hm/go-quake-scene/internal/models"
)

// DecodeBatch reads one JSON array of event records.
func DecodeBatch(r io.Reader) ([]*models.SeismicEvent, error) {
	var events []*models.SeismicEvent
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("error decoding batch: %w", err)
	}
	// A literal null inside the array decodes to a nil pointer.
	out := events[:0]
	for _, ev := range events {
		if ev != nil {
			out = append(out, ev)
		}
	}
	return out, nil
}

// HTTPSource fetches a batch document from a URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Name() string {
	return s.URL
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]*models.SeismicEvent, error) {
	body, err := get(ctx, s.Client, s.URL)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return DecodeBatch(body)
}

// FileSource reads a batch document from disk.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string {
	return s.Path
}

func (s *FileSource) Fetch(ctx context.Context) ([]*models.SeismicEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening batch file: %w", err)
	}
	defer f.Close()
	return DecodeBatch(f)
}

func get(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}
	return resp.Body, nil
}
