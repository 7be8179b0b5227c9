// Package geo turns recommended place names into coordinates with the Mapbox
// geocoding API.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

	// MaxLocations bounds the lookups of one request.
	MaxLocations = 8
)

var (
	ErrNotConfigured = errors.New("Mapbox API key is not configured.")
	ErrNoLocations   = errors.New("Locations are required.")
)

type Result struct {
	Query       string  `json:"query"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"displayName"`
}

type Options struct {
	Token       string
	BaseURL     string
	CacheTTL    time.Duration
	Concurrency int
	Timeout     time.Duration
	Logger      *zap.Logger
}

type Geocoder struct {
	token       string
	baseURL     string
	concurrency int
	httpClient  *http.Client
	cache       *resultCache
	logger      *zap.Logger
}

func New(opts Options) *Geocoder {
	g := &Geocoder{
		token:       strings.TrimSpace(opts.Token),
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		concurrency: opts.Concurrency,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		cache:       newResultCache(opts.CacheTTL),
		logger:      opts.Logger,
	}
	if g.baseURL == "" {
		g.baseURL = DefaultBaseURL
	}
	if g.concurrency <= 0 {
		g.concurrency = 4
	}
	if g.httpClient.Timeout <= 0 {
		g.httpClient.Timeout = 10 * time.Second
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g
}

func (g *Geocoder) Configured() bool { return g.token != "" }

// Geocode looks up at most MaxLocations non-blank locations. Results keep the
// input order; lookups that fail or find nothing are left out.
func (g *Geocoder) Geocode(ctx context.Context, locations []string) ([]Result, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}
	if len(locations) == 0 {
		return nil, ErrNoLocations
	}

	queries := make([]string, 0, MaxLocations)
	for _, loc := range locations {
		if len(queries) == MaxLocations {
			break
		}
		if q := strings.TrimSpace(loc); q != "" {
			queries = append(queries, q)
		}
	}

	found := make([]*Result, len(queries))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, q := range queries {
		eg.Go(func() error {
			r, err := g.lookup(egCtx, q)
			if err != nil {
				g.logger.Debug("geocode lookup failed", zap.String("query", q), zap.Error(err))
				return nil
			}
			found[i] = r
			return nil
		})
	}
	_ = eg.Wait()

	results := make([]Result, 0, len(found))
	for _, r := range found {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, nil
}

type featureCollection struct {
	Features []struct {
		Center    []float64 `json:"center"`
		PlaceName string    `json:"place_name"`
	} `json:"features"`
}

func (g *Geocoder) lookup(ctx context.Context, query string) (*Result, error) {
	if r, ok := g.cache.get(query); ok {
		r.Query = query
		return &r, nil
	}

	endpoint := fmt.Sprintf("%s/%s.json?limit=1&access_token=%s",
		g.baseURL, url.PathEscape(query), url.QueryEscape(g.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("mapbox returned status %d", resp.StatusCode)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode mapbox response: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("no match for %q", query)
	}
	first := fc.Features[0]
	if len(first.Center) < 2 {
		return nil, fmt.Errorf("no coordinates for %q", query)
	}

	r := Result{Query: query, Lng: first.Center[0], Lat: first.Center[1], DisplayName: first.PlaceName}
	if r.DisplayName == "" {
		r.DisplayName = query
	}
	g.cache.set(query, r)
	return &r, nil
}
