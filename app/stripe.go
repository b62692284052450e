package app

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/klove-dev/fadeodds/app/config"
	"github.com/klove-dev/fadeodds/app/models"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/customer"
)

// priceTiers maps Stripe price ids onto subscription tiers. Populated by
// InitStripe from env config; unknown prices resolve to the zero-quota tier.
var priceTiers map[string]models.Tier

// InitStripe wires the Stripe API key and the price→tier table from config.
func InitStripe() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config for stripe: %v", err)
	}
	stripe.Key = cfg.Stripe.SecretKey
	priceTiers = buildPriceTiers(cfg.Stripe)
}

func buildPriceTiers(cfg config.StripeConfig) map[string]models.Tier {
	m := map[string]models.Tier{}
	if cfg.PriceBasic != "" {
		m[cfg.PriceBasic] = models.TierBasic
	}
	if cfg.PriceStandard != "" {
		m[cfg.PriceStandard] = models.TierStandard
	}
	if cfg.PriceUnlimited != "" {
		m[cfg.PriceUnlimited] = models.TierUnlimited
	}
	return m
}

// tierForPrice resolves a Stripe price id to a tier, defaulting to none.
func tierForPrice(priceID string) models.Tier {
	if tier, ok := priceTiers[priceID]; ok {
		return tier
	}
	return models.TierNone
}

// priceForTier is the reverse lookup used by checkout session creation.
func priceForTier(cfg config.StripeConfig, tier models.Tier) string {
	switch tier {
	case models.TierBasic:
		return cfg.PriceBasic
	case models.TierStandard:
		return cfg.PriceStandard
	case models.TierUnlimited:
		return cfg.PriceUnlimited
	default:
		return ""
	}
}

// ensureStripeCustomer finds or creates a Stripe Customer for the given
// user, storing the id on the users row.
func ensureStripeCustomer(ctx context.Context, userID, email string) (string, error) {
	if db == nil {
		return "", errors.New("db not initialized")
	}
	if userID == "" {
		return "", errors.New("missing user id")
	}

	var stripeID sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT stripe_customer_id
		FROM users
		WHERE id = $1;
	`, userID).Scan(&stripeID)
	if err != nil {
		return "", err
	}

	if stripeID.Valid && stripeID.String != "" {
		return stripeID.String, nil
	}

	params := &stripe.CustomerParams{
		Metadata: map[string]string{
			"user_id": userID,
		},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}

	_, err = db.ExecContext(ctx, `
		UPDATE users
		SET stripe_customer_id = $1, updated_at = now()
		WHERE id = $2;
	`, cust.ID, userID)
	if err != nil {
		return "", err
	}

	return cust.ID, nil
}
