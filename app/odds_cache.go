package app

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// OddsCache stores the last good odds payload per sport so upstream
// failures can degrade to stale data instead of erroring.
type OddsCache interface {
	Get(ctx context.Context, sport string) (data []byte, cachedAt time.Time, err error)
	Put(ctx context.Context, sport string, data []byte, cachedAt time.Time) error
}

var errOddsCacheMiss = errors.New("odds cache miss")

// dbOddsCache backs OddsCache with the odds_cache table, unique on sport.
type dbOddsCache struct{}

func (dbOddsCache) Get(ctx context.Context, sport string) ([]byte, time.Time, error) {
	if db == nil {
		return nil, time.Time{}, errOddsCacheMiss
	}

	var (
		data     []byte
		cachedAt time.Time
	)
	err := db.QueryRowContext(ctx, `
		SELECT data_json, cached_at
		FROM odds_cache
		WHERE sport = $1;
	`, sport).Scan(&data, &cachedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, errOddsCacheMiss
		}
		return nil, time.Time{}, err
	}
	return data, cachedAt, nil
}

func (dbOddsCache) Put(ctx context.Context, sport string, data []byte, cachedAt time.Time) error {
	if db == nil {
		return nil
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO odds_cache (sport, data_json, cached_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (sport) DO UPDATE
		SET data_json = EXCLUDED.data_json, cached_at = EXCLUDED.cached_at;
	`, sport, data, cachedAt)
	return err
}
