package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Cache status values exposed through the X-Cache response header.
const (
	OddsCacheHit   = "HIT"
	OddsCacheMiss  = "MISS"
	OddsCacheStale = "STALE"
)

// oddsFreshTTL is how long a cached odds snapshot counts as fresh.
const oddsFreshTTL = 30 * time.Minute

// OddsService proxies the-odds-api with a per-sport snapshot cache.
// A fresh snapshot short-circuits the upstream call; an upstream failure
// degrades to the last good snapshot instead of erroring.
type OddsService struct {
	APIKey     string
	BaseURL    string
	Cache      OddsCache
	HTTPClient *http.Client
	Now        func() time.Time
}

// OddsResult carries the raw upstream payload plus response metadata.
type OddsResult struct {
	Data        []byte
	Remaining   string
	CacheStatus string
}

// NewOddsService wires an OddsService against the real upstream and the
// Postgres-backed snapshot cache.
func NewOddsService(apiKey string) *OddsService {
	return &OddsService{
		APIKey:     apiKey,
		BaseURL:    "https://api.the-odds-api.com",
		Cache:      dbOddsCache{},
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Now:        time.Now,
	}
}

// FetchOdds returns the odds board for a sport. Cache policy:
// fresh snapshot => HIT without contacting upstream; otherwise fetch and
// refresh => MISS; on fetch failure serve the last snapshot => STALE,
// or error when no snapshot exists.
func (s *OddsService) FetchOdds(ctx context.Context, sport string) (*OddsResult, error) {
	now := s.Now()

	cached, cachedAt, cacheErr := s.Cache.Get(ctx, sport)
	if cacheErr == nil && now.Sub(cachedAt) < oddsFreshTTL {
		return &OddsResult{Data: cached, CacheStatus: OddsCacheHit}, nil
	}

	data, remaining, err := s.fetchUpstream(ctx, sport)
	if err != nil {
		if cacheErr == nil {
			return &OddsResult{Data: cached, CacheStatus: OddsCacheStale}, nil
		}
		return nil, err
	}

	if err := s.Cache.Put(ctx, sport, data, now); err != nil {
		log.Printf("odds cache write failed sport=%s: %v", sport, err)
	}

	return &OddsResult{Data: data, Remaining: remaining, CacheStatus: OddsCacheMiss}, nil
}

func (s *OddsService) fetchUpstream(ctx context.Context, sport string) (data []byte, remaining string, err error) {
	url := fmt.Sprintf(
		"%s/v4/sports/%s/odds/?apiKey=%s&regions=us&markets=h2h,spreads,totals&oddsFormat=american&dateFormat=iso",
		s.BaseURL, sport, s.APIKey,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("odds fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("odds read failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("odds API error %d: %s", resp.StatusCode, truncateBody(body))
	}

	return body, resp.Header.Get("x-requests-remaining"), nil
}
