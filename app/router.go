// Package app wires the shared HTTP routes for the FadeOdds API.
package app

import (
	"time"

	"github.com/klove-dev/fadeodds/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP router: public health/webhook endpoints plus
// the authenticated API surface.
func NewRouter() (*gin.Engine, error) {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", Health)
	router.POST("/api/stripe/webhook", StripeWebhook)

	verifier, err := auth.NewVerifierFromEnv()
	if err != nil && !auth.AuthDisabled() {
		return nil, err
	}

	protected := router.Group("/")
	protected.Use(auth.Middleware(verifier, auth.MiddlewareConfig{
		OnAuthenticated: func(c *gin.Context, claims *auth.Claims) error {
			return UpsertUserFromClaims(c.Request.Context(), claims)
		},
	}))
	protected.GET("/me", Me)
	protected.GET("/api/odds", GetOdds)
	protected.GET("/api/scores", GetScores)
	protected.GET("/api/injuries", GetInjuries)
	protected.POST("/api/analyze", AnalyzeGame)
	protected.GET("/api/state", GetBettingState)
	protected.POST("/api/state", SaveBettingState)
	protected.GET("/api/my-teams", GetMyTeams)
	protected.POST("/api/my-teams", SaveMyTeams)
	protected.GET("/api/bets", GetSavedBets)
	protected.POST("/api/bets", SaveBet)
	protected.DELETE("/api/bets", DeleteSavedBet)
	protected.POST("/api/billing/create-checkout-session", CreateCheckoutSession)
	protected.POST("/api/billing/portal-session", CreatePortalSession)
	protected.POST("/api/billing/check-subscription", CheckSubscription)
	protected.POST("/api/billing/verify-subscription", VerifySubscription)

	return router, nil
}
