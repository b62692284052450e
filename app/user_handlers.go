package app

import (
	"log"
	"net/http"

	"github.com/klove-dev/fadeodds/auth"

	"github.com/gin-gonic/gin"
)

// GetBettingState returns the user's persisted dashboard state blob.
func GetBettingState(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	state, err := getBettingState(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"state": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

type saveStateRequest struct {
	State *string `json:"state"`
}

// SaveBettingState persists the user's dashboard state blob.
func SaveBettingState(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req saveStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state value"})
		return
	}

	if err := saveBettingState(c.Request.Context(), claims.Subject, req.State); err != nil {
		log.Printf("save betting state failed user=%s: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save state"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetMyTeams returns the user's followed team ids.
func GetMyTeams(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	teamIDs, err := getMyTeams(c.Request.Context(), claims.Subject)
	if err != nil {
		log.Printf("get my teams failed user=%s: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load teams"})
		return
	}
	c.JSON(http.StatusOK, teamIDs)
}

type saveTeamsRequest struct {
	TeamIDs []string `json:"teamIds"`
}

// SaveMyTeams replaces the user's followed team ids.
func SaveMyTeams(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req saveTeamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.TeamIDs == nil {
		req.TeamIDs = []string{}
	}

	if err := saveMyTeams(c.Request.Context(), claims.Subject, req.TeamIDs); err != nil {
		log.Printf("save my teams failed user=%s: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save teams"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
