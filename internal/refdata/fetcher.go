package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/model"
)

// irsPDFBase is where the IRS publishes the documents our summaries come
// from; it is recorded as each entry's source.
const irsPDFBase = "https://www.irs.gov/pub/irs-pdf"

const (
	defaultRateLimit = 2.0 // upstream requests per second
	defaultBurst     = 4
)

// FetcherConfig configures the HTTP reference fetcher.
type FetcherConfig struct {
	// BaseURL of the summary endpoint. Empty means serve embedded seed
	// content instead of calling upstream.
	BaseURL string

	// RequestsPerSecond caps upstream calls; zero applies the default.
	RequestsPerSecond float64
	Burst             int
}

// HTTPFetcher retrieves reference summaries over HTTP, rate limited so
// cache sweeps cannot hammer upstream. With no base URL configured it
// degrades to the embedded seed dataset.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	seed    SeedFetcher
	logger  *slog.Logger
	baseURL string
}

// NewHTTPFetcher creates a fetcher with sensible limits.
func NewHTTPFetcher(cfg FetcherConfig) *HTTPFetcher {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRateLimit
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	return &HTTPFetcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  slog.Default().With("component", "reffetch"),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// summaryPayload is the upstream summary document shape.
type summaryPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Fetch implements service.ReferenceFetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, kind model.ReferenceKind, id string) (*model.ReferenceEntry, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if f.baseURL == "" {
		return f.seed.Fetch(ctx, kind, id)
	}

	url := fmt.Sprintf("%s/%ss/%s", f.baseURL, kind, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("building reference request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.logger.Warn("failed to close response body", "error", closeErr)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", common.ErrUnknownReference, kind, id)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: upstream throttled %s %s", common.ErrRateLimit, kind, id)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", common.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload summaryPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding summary: %v", common.ErrUpstreamUnavailable, err)
	}

	return &model.ReferenceEntry{
		Kind:      kind,
		ID:        id,
		Title:     payload.Title,
		Content:   payload.Content,
		Source:    SourceURL(kind, id),
		FetchedAt: time.Now().UTC(),
	}, nil
}

// SourceURL is the canonical IRS document behind an entry. Tax code
// section summaries derive from Publication 17; publication numbers pad
// to four digits in the IRS file layout.
func SourceURL(kind model.ReferenceKind, id string) string {
	if kind == model.KindSection {
		return irsPDFBase + "/p17.pdf"
	}
	return fmt.Sprintf("%s/p%s.pdf", irsPDFBase, padPublication(id))
}

func padPublication(id string) string {
	for _, r := range id {
		if r < '0' || r > '9' {
			return id
		}
	}
	for len(id) < 4 {
		id = "0" + id
	}
	return id
}
