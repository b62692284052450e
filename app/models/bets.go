package models

import "time"

// SavedBet is one saved_bets row.
type SavedBet struct {
	ID           string    `json:"id"`
	UserID       string    `json:"-"`
	BookName     string    `json:"bookName"`
	Teams        string    `json:"teams"`
	Sport        string    `json:"sport"`
	CommenceTime string    `json:"commenceTime"`
	Pick         string    `json:"pick"`
	CreatedAt    time.Time `json:"createdAt"`
}
