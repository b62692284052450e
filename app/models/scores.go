package models

// Score is the normalized scoreboard entry returned to the frontend,
// flattened from ESPN's competition/competitor tree.
type Score struct {
	EspnID       string  `json:"espnId"`
	HomeTeam     string  `json:"homeTeam"`
	AwayTeam     string  `json:"awayTeam"`
	HomeScore    *string `json:"homeScore"`
	AwayScore    *string `json:"awayScore"`
	IsLive       bool    `json:"isLive"`
	IsFinal      bool    `json:"isFinal"`
	Period       int     `json:"period"`
	PeriodLabel  string  `json:"periodLabel"`
	DisplayClock string  `json:"displayClock"`
	StartTime    string  `json:"startTime"`
}

type Injury struct {
	Team   string `json:"team"`
	Player string `json:"player"`
	Status string `json:"status"`
	Injury string `json:"injury"`
}
