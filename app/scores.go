package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/klove-dev/fadeodds/app/models"
)

// espnPaths maps odds-api sport keys onto ESPN site API paths.
var espnPaths = map[string]string{
	"basketball_nba":       "basketball/nba",
	"basketball_ncaab":     "basketball/mens-college-basketball",
	"americanfootball_nfl": "football/nfl",
	"icehockey_nhl":        "hockey/nhl",
	"baseball_mlb":         "baseball/mlb",
}

// periodLabel renders a numeric period the way each sport displays it.
// Unrecognized sports fall back to a generic "P<n>" label.
func periodLabel(sport string, period int) string {
	if period == 0 {
		return ""
	}
	switch sport {
	case "basketball_nba":
		return fmt.Sprintf("Q%d", period)
	case "basketball_ncaab":
		if period <= 2 {
			return fmt.Sprintf("H%d", period)
		}
		return "OT"
	case "americanfootball_nfl":
		if period <= 4 {
			return fmt.Sprintf("Q%d", period)
		}
		return "OT"
	case "icehockey_nhl":
		return fmt.Sprintf("P%d", period)
	case "baseball_mlb":
		return fmt.Sprintf("Inn %d", period)
	default:
		return fmt.Sprintf("P%d", period)
	}
}

// ScoresService shapes ESPN's scoreboard and injuries feeds into the
// system's internal Score/Injury records.
type ScoresService struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewScoresService() *ScoresService {
	return &ScoresService{
		BaseURL:    "https://site.api.espn.com/apis/site/v2/sports",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// espnScoreboard mirrors the slice of ESPN's scoreboard payload we read.
type espnScoreboard struct {
	Events []struct {
		ID           string `json:"id"`
		Date         string `json:"date"`
		Competitions []struct {
			Status struct {
				Period       int    `json:"period"`
				DisplayClock string `json:"displayClock"`
				Type         struct {
					Name string `json:"name"`
				} `json:"type"`
			} `json:"status"`
			Competitors []struct {
				HomeAway string  `json:"homeAway"`
				Score    *string `json:"score"`
				Team     struct {
					DisplayName string `json:"displayName"`
				} `json:"team"`
			} `json:"competitors"`
		} `json:"competitions"`
	} `json:"events"`
}

var errUnknownSport = fmt.Errorf("unknown sport")

// FetchScores returns normalized scoreboard entries for a sport.
func (s *ScoresService) FetchScores(ctx context.Context, sport string) ([]models.Score, error) {
	espnPath, ok := espnPaths[sport]
	if !ok {
		return nil, errUnknownSport
	}

	var board espnScoreboard
	if err := s.getJSON(ctx, fmt.Sprintf("%s/%s/scoreboard", s.BaseURL, espnPath), &board); err != nil {
		return nil, err
	}

	scores := make([]models.Score, 0, len(board.Events))
	for _, event := range board.Events {
		if len(event.Competitions) == 0 {
			continue
		}
		comp := event.Competitions[0]

		score := models.Score{
			EspnID:       event.ID,
			StartTime:    event.Date,
			Period:       comp.Status.Period,
			PeriodLabel:  periodLabel(sport, comp.Status.Period),
			DisplayClock: comp.Status.DisplayClock,
			IsLive:       comp.Status.Type.Name == "STATUS_IN_PROGRESS",
			IsFinal:      comp.Status.Type.Name == "STATUS_FINAL",
		}
		for _, c := range comp.Competitors {
			switch c.HomeAway {
			case "home":
				score.HomeTeam = c.Team.DisplayName
				score.HomeScore = c.Score
			case "away":
				score.AwayTeam = c.Team.DisplayName
				score.AwayScore = c.Score
			}
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// espnInjuries mirrors ESPN's injuries payload. Field names vary between
// sports, so several fallbacks are read per item.
type espnInjuries struct {
	Items []struct {
		Status string `json:"status"`
		Type   struct {
			Description string `json:"description"`
		} `json:"type"`
		ShortComment string `json:"shortComment"`
		LongComment  string `json:"longComment"`
		Comment      string `json:"comment"`
		Athlete      struct {
			DisplayName string `json:"displayName"`
			FullName    string `json:"fullName"`
			Team        struct {
				DisplayName string `json:"displayName"`
				Name        string `json:"name"`
			} `json:"team"`
		} `json:"athlete"`
		Team struct {
			DisplayName string `json:"displayName"`
		} `json:"team"`
	} `json:"items"`
}

// FetchInjuries returns normalized injury records for a sport. Upstream
// failures degrade to an empty list so an analysis can still proceed.
func (s *ScoresService) FetchInjuries(ctx context.Context, sport string) []models.Injury {
	espnPath, ok := espnPaths[sport]
	if !ok {
		return []models.Injury{}
	}

	var payload espnInjuries
	if err := s.getJSON(ctx, fmt.Sprintf("%s/%s/injuries", s.BaseURL, espnPath), &payload); err != nil {
		return []models.Injury{}
	}

	injuries := make([]models.Injury, 0, len(payload.Items))
	for _, item := range payload.Items {
		player := firstNonEmpty(item.Athlete.DisplayName, item.Athlete.FullName)
		if player == "" {
			continue
		}
		injuries = append(injuries, models.Injury{
			Player: player,
			Team:   firstNonEmpty(item.Athlete.Team.DisplayName, item.Athlete.Team.Name, item.Team.DisplayName),
			Status: firstNonEmpty(item.Status, item.Type.Description),
			Injury: firstNonEmpty(item.ShortComment, item.LongComment, item.Comment),
		})
	}
	return injuries
}

func (s *ScoresService) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ESPN error: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
