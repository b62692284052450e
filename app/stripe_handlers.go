package app

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/klove-dev/fadeodds/app/config"
	"github.com/klove-dev/fadeodds/app/models"
	"github.com/klove-dev/fadeodds/auth"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	portal "github.com/stripe/stripe-go/v79/billingportal/session"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"
)

type checkoutRequest struct {
	Tier models.Tier `json:"tier"`
}

// CreateCheckoutSession starts a Stripe Checkout Session for the
// authenticated user on the requested tier.
func CreateCheckoutSession(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing tier"})
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("stripe checkout config load failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "billing not configured"})
		return
	}

	priceID := priceForTier(cfg.Stripe, req.Tier)
	frontendURL := strings.TrimRight(cfg.FrontendURL, "/")
	if priceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown tier: " + string(req.Tier)})
		return
	}
	if frontendURL == "" {
		log.Printf("missing Stripe config: frontend_url=false")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "billing not configured"})
		return
	}

	stripeCustomerID, err := ensureStripeCustomer(c.Request.Context(), claims.Subject, claims.Email)
	if err != nil {
		log.Printf("ensureStripeCustomer failed for user=%s: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare billing"})
		return
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(stripeCustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:          stripe.String(frontendURL + "/?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:           stripe.String(frontendURL + "/"),
		AllowPromotionCodes: stripe.Bool(true),
	}

	sess, err := session.New(params)
	if err != nil {
		log.Printf("stripe checkout session failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": sess.URL})
}

// CreatePortalSession creates a Stripe Customer Portal session for the
// authenticated user.
func CreatePortalSession(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db not initialized"})
		return
	}

	user, err := getUserByID(c.Request.Context(), claims.Subject)
	if err != nil {
		log.Printf("portal lookup failed user=%s: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customer"})
		return
	}
	if user.StripeCustomerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stripe customer missing for user"})
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("portal config load failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "billing not configured"})
		return
	}

	frontendURL := strings.TrimRight(cfg.FrontendURL, "/")
	if frontendURL == "" {
		log.Printf("missing Stripe config: frontend_url=false")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "billing not configured"})
		return
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(frontendURL + "/"),
	}

	sess, err := portal.New(params)
	if err != nil {
		log.Printf("stripe portal session failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": sess.URL})
}

// CheckSubscription resolves the authenticated user's current tier from
// their active Stripe subscription's price id.
func CheckSubscription(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	user, err := getUserByID(c.Request.Context(), claims.Subject)
	if err != nil || user.StripeCustomerID == "" {
		c.JSON(http.StatusOK, gin.H{"tier": models.TierNone})
		return
	}

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(user.StripeCustomerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Limit = stripe.Int64(1)
	params.AddExpand("data.items.data.price")

	iter := subscription.List(params)
	if !iter.Next() {
		if err := iter.Err(); err != nil {
			log.Printf("stripe subscription list failed customer=%s: %v", user.StripeCustomerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check subscription"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tier": models.TierNone})
		return
	}

	tier := tierForPrice(subscriptionPriceID(iter.Subscription()))
	if err := updateUserTier(c.Request.Context(), claims.Subject, tier); err != nil {
		log.Printf("tier update failed user=%s: %v", claims.Subject, err)
	}

	c.JSON(http.StatusOK, gin.H{"tier": tier})
}

type verifyRequest struct {
	SessionID string `json:"sessionId"`
}

// VerifySubscription confirms a completed checkout session and applies
// the purchased tier to the user row.
func VerifySubscription(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing sessionId"})
		return
	}

	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("subscription.items.data.price")

	sess, err := session.Get(req.SessionID, params)
	if err != nil {
		log.Printf("stripe session retrieve failed id=%s: %v", req.SessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify session"})
		return
	}

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid && sess.Status != stripe.CheckoutSessionStatusComplete {
		c.JSON(http.StatusOK, gin.H{"tier": models.TierNone})
		return
	}

	tier := models.TierNone
	if sess.Subscription != nil {
		tier = tierForPrice(subscriptionPriceID(sess.Subscription))
	}

	if err := updateUserTier(c.Request.Context(), claims.Subject, tier); err != nil {
		log.Printf("tier update failed user=%s: %v", claims.Subject, err)
	}

	c.JSON(http.StatusOK, gin.H{"tier": tier})
}

// StripeWebhook handles subscription lifecycle events and updates tiers.
func StripeWebhook(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		log.Printf("stripe webhook read failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("stripe webhook config load failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}

	endpointSecret := cfg.Stripe.WebhookSecret
	if endpointSecret == "" {
		log.Printf("stripe webhook secret missing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		sigHeader,
		endpointSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		log.Printf("stripe webhook signature failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("stripe session unmarshal failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session payload"})
			return
		}
		customerID := ""
		if sess.Customer != nil {
			customerID = sess.Customer.ID
		}
		if customerID == "" {
			log.Printf("stripe session missing customer id")
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing customer id"})
			return
		}

		// The webhook payload does not expand line items; re-fetch the
		// session to learn which price was purchased.
		params := &stripe.CheckoutSessionParams{}
		params.AddExpand("subscription.items.data.price")
		full, err := session.Get(sess.ID, params)
		if err != nil {
			log.Printf("stripe session refetch failed id=%s: %v", sess.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve tier"})
			return
		}

		tier := models.TierNone
		if full.Subscription != nil {
			tier = tierForPrice(subscriptionPriceID(full.Subscription))
		}

		if err := updateUserTierByStripeCustomer(c.Request.Context(), customerID, tier); err != nil {
			log.Printf("stripe tier upgrade failed customer=%s err=%v", customerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
			return
		}
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			log.Printf("stripe subscription unmarshal failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription payload"})
			return
		}
		customerID := ""
		if sub.Customer != nil {
			customerID = sub.Customer.ID
		}
		if customerID == "" {
			log.Printf("stripe subscription missing customer id")
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing customer id"})
			return
		}

		if err := updateUserTierByStripeCustomer(c.Request.Context(), customerID, models.TierNone); err != nil {
			log.Printf("stripe tier downgrade failed customer=%s err=%v", customerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
			return
		}
	default:
		// Intentionally ignore unhandled events.
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func subscriptionPriceID(sub *stripe.Subscription) string {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	item := sub.Items.Data[0]
	if item.Price == nil {
		return ""
	}
	return item.Price.ID
}
