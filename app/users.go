package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/klove-dev/fadeodds/app/models"
	"github.com/klove-dev/fadeodds/auth"

	"github.com/lib/pq"
)

// UpsertUserFromClaims creates a user row on first authenticated contact.
// Existing rows keep their tier; only the email is refreshed.
func UpsertUserFromClaims(ctx context.Context, claims *auth.Claims) error {
	if db == nil {
		return nil
	}
	if claims == nil || claims.Subject == "" {
		return nil
	}

	const q = `
		INSERT INTO users (id, email, tier, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, updated_at = now();
	`

	_, err := db.ExecContext(ctx, q, claims.Subject, nullIfEmpty(claims.Email), models.TierNone)
	return err
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func getUserByID(ctx context.Context, userID string) (models.User, error) {
	var (
		user     models.User
		email    sql.NullString
		stripeID sql.NullString
	)
	err := db.QueryRowContext(ctx, `
		SELECT email, tier, stripe_customer_id
		FROM users
		WHERE id = $1;
	`, userID).Scan(&email, &user.Tier, &stripeID)
	if err != nil {
		return models.User{}, err
	}
	user.ID = userID
	user.Email = email.String
	user.StripeCustomerID = stripeID.String
	return user, nil
}

// getUserTier resolves a user's tier, defaulting to the zero-quota tier
// when the row is missing or unreadable.
func getUserTier(ctx context.Context, userID string) models.Tier {
	if db == nil {
		return models.TierNone
	}
	user, err := getUserByID(ctx, userID)
	if err != nil {
		return models.TierNone
	}
	if user.Tier == "" {
		return models.TierNone
	}
	return user.Tier
}

func updateUserTier(ctx context.Context, userID string, tier models.Tier) error {
	if db == nil {
		return errors.New("db not initialized")
	}
	_, err := db.ExecContext(ctx, `
		UPDATE users
		SET tier = $1, updated_at = now()
		WHERE id = $2;
	`, tier, userID)
	return err
}

func updateUserTierByStripeCustomer(ctx context.Context, stripeCustomerID string, tier models.Tier) error {
	if db == nil {
		return errors.New("db not initialized")
	}
	if stripeCustomerID == "" {
		return errors.New("missing stripe customer id")
	}
	_, err := db.ExecContext(ctx, `
		UPDATE users
		SET tier = $1, updated_at = now()
		WHERE stripe_customer_id = $2;
	`, tier, stripeCustomerID)
	return err
}

func getBettingState(ctx context.Context, userID string) (*string, error) {
	var state sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT betting_state
		FROM users
		WHERE id = $1;
	`, userID).Scan(&state)
	if err != nil {
		return nil, err
	}
	if !state.Valid {
		return nil, nil
	}
	return &state.String, nil
}

func saveBettingState(ctx context.Context, userID string, state *string) error {
	var v sql.NullString
	if state != nil {
		v = sql.NullString{String: *state, Valid: true}
	}
	_, err := db.ExecContext(ctx, `
		UPDATE users
		SET betting_state = $1, updated_at = now()
		WHERE id = $2;
	`, v, userID)
	return err
}

func getMyTeams(ctx context.Context, userID string) ([]string, error) {
	var teams pq.StringArray
	err := db.QueryRowContext(ctx, `
		SELECT COALESCE(my_teams, '{}')
		FROM users
		WHERE id = $1;
	`, userID).Scan(&teams)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []string{}, nil
		}
		return nil, err
	}
	return []string(teams), nil
}

func saveMyTeams(ctx context.Context, userID string, teamIDs []string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE users
		SET my_teams = $1, updated_at = now()
		WHERE id = $2;
	`, pq.Array(teamIDs), userID)
	return err
}
