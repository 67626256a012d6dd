package snapshot

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/cesargomez89/walkmlb/internal/domain"
)

type scheduleResponse struct {
	Dates []struct {
		Date  string         `json:"date"`
		Games []scheduleGame `json:"games"`
	} `json:"dates"`
}

type scheduleGame struct {
	GamePk   int64      `json:"gamePk"`
	GameDate string     `json:"gameDate"`
	Status   GameStatus `json:"status"`
	Teams    struct {
		Home struct {
			Team TeamName `json:"team"`
		} `json:"home"`
		Away struct {
			Team TeamName `json:"team"`
		} `json:"away"`
	} `json:"teams"`
}

// DecodeSchedule flattens a schedule response into its games. A response
// without dates is an empty, valid schedule.
func DecodeSchedule(raw []byte) ([]domain.ScheduledGame, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty schedule document", domain.ErrMalformedPayload)
	}
	var resp scheduleResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: schedule: %v", domain.ErrMalformedPayload, err)
	}

	var games []domain.ScheduledGame
	for _, d := range resp.Dates {
		for _, g := range d.Games {
			sg := domain.ScheduledGame{
				GamePk:        g.GamePk,
				DetailedState: g.Status.DetailedState,
				AbstractState: g.Status.AbstractGameState,
				HomeTeam:      g.Teams.Home.Team.Name,
				AwayTeam:      g.Teams.Away.Team.Name,
			}
			if t, err := time.Parse(time.RFC3339, g.GameDate); err == nil {
				sg.GameDate = t
			}
			games = append(games, sg)
		}
	}
	return games, nil
}
