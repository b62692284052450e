package app

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/klove-dev/fadeodds/app/models"
	"github.com/klove-dev/fadeodds/auth"

	"github.com/gin-gonic/gin"
)

// Health is a public health check endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Me returns tier and today's usage info for the authenticated user.
func Me(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	if db == nil {
		limits := models.DefaultTierLimits[models.TierNone]
		c.JSON(http.StatusOK, gin.H{
			"tier":          models.TierNone,
			"analysesUsed":  0,
			"questionsUsed": 0,
			"analysisLimit": limits.Analyses,
			"questionLimit": limits.Questions,
		})
		return
	}

	user, err := getUserByID(c.Request.Context(), claims.Subject)
	if err != nil {
		if err == sql.ErrNoRows {
			_ = UpsertUserFromClaims(c.Request.Context(), claims)
			user, err = getUserByID(c.Request.Context(), claims.Subject)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
			return
		}
	}

	limits := limitsForTier(models.DefaultTierLimits, user.Tier)
	today := dayKeyUTC(time.Now())
	usage, err := dbUsageStore{}.GetUsage(c.Request.Context(), claims.Subject, today)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load usage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tier":               user.Tier,
		"analysesUsed":       usage.Analyses,
		"questionsUsed":      usage.Questions,
		"analysisLimit":      limits.Analyses,
		"questionLimit":      limits.Questions,
		"analysesRemaining":  remaining(usage.Analyses, limits.Analyses),
		"questionsRemaining": remaining(usage.Questions, limits.Questions),
	})
}

// remaining is nil for unlimited tiers so the client hides the counter.
func remaining(used, limit int) any {
	if limit == models.UnlimitedQuota {
		return nil
	}
	left := limit - used
	if left < 0 {
		left = 0
	}
	return left
}
