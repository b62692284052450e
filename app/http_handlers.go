package app

import (
	"log"
	"net/http"

	"github.com/klove-dev/fadeodds/app/config"
	"github.com/klove-dev/fadeodds/app/models"
	"github.com/klove-dev/fadeodds/auth"

	"github.com/gin-gonic/gin"
)

var (
	analyzer  *Analyzer
	oddsSvc   *OddsService
	scoresSvc *ScoresService
)

// MustInitServices wires the gateway services from config. Call after
// MustInitDB so the Postgres-backed caches have a connection.
func MustInitServices() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	analyzer = NewAnalyzer(NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model))
	oddsSvc = NewOddsService(cfg.Odds.APIKey)
	scoresSvc = NewScoresService()
}

// AnalyzeGame runs the tier-gated analysis flow for the authenticated user.
func AnalyzeGame(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok || claims.Subject == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	identity := Identity{
		UserID: claims.Subject,
		Tier:   getUserTier(c.Request.Context(), claims.Subject),
	}

	result, reqErr := analyzer.Analyze(c.Request.Context(), identity, req)
	if reqErr != nil {
		payload := gin.H{"error": reqErr.Message}
		if reqErr.Code != "" {
			payload["code"] = reqErr.Code
		}
		c.JSON(reqErr.Status, payload)
		return
	}

	if result.Analysis != nil {
		c.JSON(http.StatusOK, result.Analysis)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": result.Text})
}

// GetOdds proxies the odds board for a sport, with stale-cache fallback.
func GetOdds(c *gin.Context) {
	sport := c.DefaultQuery("sport", "basketball_nba")

	result, err := oddsSvc.FetchOdds(c.Request.Context(), sport)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch odds: " + err.Error()})
		return
	}

	if result.Remaining != "" {
		c.Header("X-Requests-Remaining", result.Remaining)
	}
	c.Header("X-Cache", result.CacheStatus)
	c.Data(http.StatusOK, "application/json", result.Data)
}

// GetScores returns the normalized scoreboard for a sport.
func GetScores(c *gin.Context) {
	sport := c.DefaultQuery("sport", "basketball_nba")

	scores, err := scoresSvc.FetchScores(c.Request.Context(), sport)
	if err != nil {
		if err == errUnknownSport {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown sport"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, scores)
}

// GetInjuries returns the injury report for a sport. Failures degrade to
// an empty list so the analyze flow can still run.
func GetInjuries(c *gin.Context) {
	sport := c.DefaultQuery("sport", "basketball_nba")
	injuries := scoresSvc.FetchInjuries(c.Request.Context(), sport)
	c.JSON(http.StatusOK, gin.H{"injuries": injuries})
}
