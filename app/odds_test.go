package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type memOddsCache struct {
	data     []byte
	cachedAt time.Time
	puts     int
}

func (m *memOddsCache) Get(_ context.Context, _ string) ([]byte, time.Time, error) {
	if m.data == nil {
		return nil, time.Time{}, errOddsCacheMiss
	}
	return m.data, m.cachedAt, nil
}

func (m *memOddsCache) Put(_ context.Context, _ string, data []byte, cachedAt time.Time) error {
	m.puts++
	m.data = data
	m.cachedAt = cachedAt
	return nil
}

func newTestOddsService(upstream *httptest.Server, cache *memOddsCache, now time.Time) *OddsService {
	s := &OddsService{
		APIKey:     "test-key",
		Cache:      cache,
		HTTPClient: http.DefaultClient,
		Now:        func() time.Time { return now },
	}
	if upstream != nil {
		s.BaseURL = upstream.URL
	} else {
		s.BaseURL = "http://127.0.0.1:0"
	}
	return s
}

func TestFetchOddsFreshCacheHit(t *testing.T) {
	upstreamCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	now := time.Date(2025, time.March, 14, 18, 0, 0, 0, time.UTC)
	cache := &memOddsCache{data: []byte(`[{"id":"g1"}]`), cachedAt: now.Add(-10 * time.Minute)}
	s := newTestOddsService(server, cache, now)

	result, err := s.FetchOdds(context.Background(), "basketball_nba")
	if err != nil {
		t.Fatalf("FetchOdds: %v", err)
	}
	if result.CacheStatus != OddsCacheHit {
		t.Fatalf("expected HIT, got %s", result.CacheStatus)
	}
	if string(result.Data) != `[{"id":"g1"}]` {
		t.Fatalf("expected cached payload, got %s", result.Data)
	}
	if upstreamCalls != 0 {
		t.Fatalf("fresh cache must not contact upstream, got %d calls", upstreamCalls)
	}
}

func TestFetchOddsExpiredCacheRefreshes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("apiKey"); got != "test-key" {
			t.Errorf("apiKey = %q", got)
		}
		if got := r.URL.Query().Get("markets"); got != "h2h,spreads,totals" {
			t.Errorf("markets = %q", got)
		}
		w.Header().Set("x-requests-remaining", "483")
		w.Write([]byte(`[{"id":"g2"}]`))
	}))
	defer server.Close()

	now := time.Date(2025, time.March, 14, 18, 0, 0, 0, time.UTC)
	cache := &memOddsCache{data: []byte(`[{"id":"old"}]`), cachedAt: now.Add(-2 * time.Hour)}
	s := newTestOddsService(server, cache, now)

	result, err := s.FetchOdds(context.Background(), "basketball_nba")
	if err != nil {
		t.Fatalf("FetchOdds: %v", err)
	}
	if result.CacheStatus != OddsCacheMiss {
		t.Fatalf("expected MISS, got %s", result.CacheStatus)
	}
	if result.Remaining != "483" {
		t.Fatalf("expected remaining header to pass through, got %q", result.Remaining)
	}
	if cache.puts != 1 || string(cache.data) != `[{"id":"g2"}]` {
		t.Fatalf("expected refreshed cache, puts=%d data=%s", cache.puts, cache.data)
	}
}

func TestFetchOddsUpstreamFailureServesStale(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	now := time.Date(2025, time.March, 14, 18, 0, 0, 0, time.UTC)
	cache := &memOddsCache{data: []byte(`[{"id":"old"}]`), cachedAt: now.Add(-3 * time.Hour)}
	s := newTestOddsService(server, cache, now)

	result, err := s.FetchOdds(context.Background(), "basketball_nba")
	if err != nil {
		t.Fatalf("FetchOdds: %v", err)
	}
	if result.CacheStatus != OddsCacheStale {
		t.Fatalf("expected STALE, got %s", result.CacheStatus)
	}
	if string(result.Data) != `[{"id":"old"}]` {
		t.Fatalf("expected stale payload, got %s", result.Data)
	}
	if cache.puts != 0 {
		t.Fatalf("failed fetch must not overwrite the cache, got %d puts", cache.puts)
	}
}

func TestFetchOddsUpstreamFailureNoCacheErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	now := time.Date(2025, time.March, 14, 18, 0, 0, 0, time.UTC)
	s := newTestOddsService(server, &memOddsCache{}, now)

	if _, err := s.FetchOdds(context.Background(), "basketball_nba"); err == nil {
		t.Fatalf("expected error when upstream fails and no snapshot exists")
	}
}

func TestFetchOddsColdCachePopulates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"g3"}]`))
	}))
	defer server.Close()

	now := time.Date(2025, time.March, 14, 18, 0, 0, 0, time.UTC)
	cache := &memOddsCache{}
	s := newTestOddsService(server, cache, now)

	result, err := s.FetchOdds(context.Background(), "americanfootball_nfl")
	if err != nil {
		t.Fatalf("FetchOdds: %v", err)
	}
	if result.CacheStatus != OddsCacheMiss {
		t.Fatalf("expected MISS, got %s", result.CacheStatus)
	}
	if cache.puts != 1 || !cache.cachedAt.Equal(now) {
		t.Fatalf("expected snapshot stored at %v, got puts=%d at=%v", now, cache.puts, cache.cachedAt)
	}
}
