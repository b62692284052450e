package app

import (
	"context"
	"log"
	"net/http"

	"github.com/klove-dev/fadeodds/app/models"
	"github.com/klove-dev/fadeodds/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetSavedBets lists the authenticated user's saved bets, newest first.
func GetSavedBets(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	bets, err := listSavedBets(c.Request.Context(), claims.Subject)
	if err != nil {
		log.Printf("list saved bets failed user=%s: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bets"})
		return
	}
	c.JSON(http.StatusOK, bets)
}

// SaveBet stores one bet slip entry for the authenticated user.
func SaveBet(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var bet models.SavedBet
	if err := c.ShouldBindJSON(&bet); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	bet.ID = uuid.NewString()
	bet.UserID = claims.Subject

	if err := insertSavedBet(c.Request.Context(), bet); err != nil {
		log.Printf("save bet failed user=%s: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save bet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": bet.ID})
}

// DeleteSavedBet removes one of the authenticated user's bets by id.
func DeleteSavedBet(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	betID := c.Query("id")
	if betID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing bet id"})
		return
	}

	if err := deleteSavedBet(c.Request.Context(), claims.Subject, betID); err != nil {
		log.Printf("delete bet failed user=%s bet=%s: %v", claims.Subject, betID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete bet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func listSavedBets(ctx context.Context, userID string) ([]models.SavedBet, error) {
	if db == nil {
		return []models.SavedBet{}, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, book_name, teams, sport, commence_time, pick, created_at
		FROM saved_bets
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bets := []models.SavedBet{}
	for rows.Next() {
		var bet models.SavedBet
		if err := rows.Scan(
			&bet.ID,
			&bet.BookName,
			&bet.Teams,
			&bet.Sport,
			&bet.CommenceTime,
			&bet.Pick,
			&bet.CreatedAt,
		); err != nil {
			return nil, err
		}
		bet.UserID = userID
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

func insertSavedBet(ctx context.Context, bet models.SavedBet) error {
	if db == nil {
		return nil
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO saved_bets (id, user_id, book_name, teams, sport, commence_time, pick, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now());
	`, bet.ID, bet.UserID, bet.BookName, bet.Teams, bet.Sport, bet.CommenceTime, bet.Pick)
	return err
}

func deleteSavedBet(ctx context.Context, userID, betID string) error {
	if db == nil {
		return nil
	}
	_, err := db.ExecContext(ctx, `
		DELETE FROM saved_bets
		WHERE id = $1 AND user_id = $2;
	`, betID, userID)
	return err
}
