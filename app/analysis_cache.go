package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/klove-dev/fadeodds/app/models"
)

// AnalysisStore caches computed analyses keyed by (game id, UTC date).
// Yesterday's entries are simply never read again; no eviction runs.
type AnalysisStore interface {
	Get(ctx context.Context, gameID, date string) (*models.CachedAnalysis, error)
	Put(ctx context.Context, gameID, date, sport string, analysis models.Analysis) error
}

// dbAnalysisStore backs AnalysisStore with the analysis_cache table,
// unique on (game_id, date).
type dbAnalysisStore struct{}

func (dbAnalysisStore) Get(ctx context.Context, gameID, date string) (*models.CachedAnalysis, error) {
	if db == nil {
		return nil, nil
	}

	var (
		sport string
		raw   []byte
	)
	err := db.QueryRowContext(ctx, `
		SELECT sport, analysis_json
		FROM analysis_cache
		WHERE game_id = $1 AND date = $2;
	`, gameID, date).Scan(&sport, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var analysis models.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, err
	}

	return &models.CachedAnalysis{
		GameID:   gameID,
		Date:     date,
		Sport:    sport,
		Analysis: analysis,
	}, nil
}

func (dbAnalysisStore) Put(ctx context.Context, gameID, date, sport string, analysis models.Analysis) error {
	if db == nil {
		return nil
	}

	raw, err := json.Marshal(analysis)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO analysis_cache (game_id, date, sport, analysis_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id, date) DO UPDATE
		SET sport = EXCLUDED.sport, analysis_json = EXCLUDED.analysis_json;
	`, gameID, date, sport, raw)
	return err
}
