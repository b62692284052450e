package models

// Model received from the-odds-api v4.
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Link    string   `json:"link,omitempty"`
	Markets []Market `json:"markets"`
}

type Game struct {
	ID           string      `json:"id"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime string      `json:"commence_time"`
	AwayTeam     string      `json:"away_team"`
	HomeTeam     string      `json:"home_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}
