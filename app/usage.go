package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/klove-dev/fadeodds/app/models"
)

// Usage counter fields. The increment statement interpolates the column
// name, so only these two constants are accepted.
const (
	UsageFieldAnalyses  = "analyses_count"
	UsageFieldQuestions = "questions_count"
)

// UsageStore reads and increments per-user, per-day counters.
type UsageStore interface {
	GetUsage(ctx context.Context, userID, date string) (models.Usage, error)
	IncrementUsage(ctx context.Context, userID, date, field string) error
}

// dayKeyUTC normalizes a timestamp to the canonical usage day boundary.
func dayKeyUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// dbUsageStore backs UsageStore with the usage table, unique on (user_id, date).
type dbUsageStore struct{}

func (dbUsageStore) GetUsage(ctx context.Context, userID, date string) (models.Usage, error) {
	if db == nil {
		return models.Usage{}, nil
	}

	var usage models.Usage
	err := db.QueryRowContext(ctx, `
		SELECT analyses_count, questions_count
		FROM usage
		WHERE user_id = $1 AND date = $2;
	`, userID, date).Scan(&usage.Analyses, &usage.Questions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Usage{}, nil
		}
		return models.Usage{}, err
	}
	return usage, nil
}

// IncrementUsage creates the day's row on first write, otherwise adds one
// to the named counter. A single upsert statement keeps concurrent
// increments from the same user from losing updates.
func (dbUsageStore) IncrementUsage(ctx context.Context, userID, date, field string) error {
	if db == nil {
		return nil
	}
	if field != UsageFieldAnalyses && field != UsageFieldQuestions {
		return fmt.Errorf("unknown usage field %q", field)
	}

	q := fmt.Sprintf(`
		INSERT INTO usage (user_id, date, analyses_count, questions_count, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, date) DO UPDATE
		SET %s = usage.%s + 1, updated_at = now();
	`, field, field)

	analyses, questions := 0, 0
	if field == UsageFieldAnalyses {
		analyses = 1
	} else {
		questions = 1
	}

	_, err := db.ExecContext(ctx, q, userID, date, analyses, questions)
	return err
}

// limitsForTier resolves a tier against the injected table. Unknown or
// missing tiers map to the zero-quota tier.
func limitsForTier(table map[models.Tier]models.TierLimits, tier models.Tier) models.TierLimits {
	if limits, ok := table[tier]; ok {
		return limits
	}
	return models.TierLimits{}
}

// quotaExceeded reports whether used has reached the cap. The unlimited
// sentinel never exceeds.
func quotaExceeded(used, limit int) bool {
	if limit == models.UnlimitedQuota {
		return false
	}
	return used >= limit
}
