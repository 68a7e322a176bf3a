package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mr1hm/go-cyber-patrol/internal/fixtures"
	"github.com/mr1hm/go-cyber-patrol/internal/models"
)

const maxFeedBytes = 10 << 20

// Source yields a batch of records. Records already in the store are skipped
// by the manager, so a source may return its full set every time.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Record, error)
}

// FileSource reads a record file in the fixtures layout. An empty path
// selects the embedded mock data.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string {
	if s.Path == "" {
		return "fixtures"
	}
	return "file"
}

func (s FileSource) Fetch(ctx context.Context) ([]models.Record, error) {
	var (
		set *fixtures.Set
		err error
	)
	if s.Path == "" {
		set, err = fixtures.Default()
	} else {
		set, err = fixtures.LoadFile(s.Path)
	}
	if err != nil {
		return nil, err
	}
	return set.Records, nil
}

// FeedSource polls an upstream endpoint returning {"records": [...]}.
type FeedSource struct {
	URL    string
	Client *http.Client
}

func NewFeedSource(url string) *FeedSource {
	return &FeedSource{
		URL:    url,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *FeedSource) Name() string { return "feed" }

func (s *FeedSource) Fetch(ctx context.Context) ([]models.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	// JSON is valid YAML, so the fixture decoder validates feed payloads too
	set, err := fixtures.Decode(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, err
	}
	return set.Records, nil
}
