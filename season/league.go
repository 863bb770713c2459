package season

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"league-engine/models"
)

// LeagueData is the raw input a season is initialized from, typically decoded
// from a JSON document by the caller.
type LeagueData struct {
	Year       int                  `json:"year,omitempty"`
	SalaryCap  int64                `json:"salary_cap,omitempty"`
	Teams      []TeamData           `json:"teams"`
	FreeAgents []models.PlayerInput `json:"free_agents,omitempty"`
}

// TeamData is one raw team record inside LeagueData.
type TeamData struct {
	ID         string               `json:"id,omitempty"`
	Name       string               `json:"name"`
	Mythology  string               `json:"mythology,omitempty"`
	Conference string               `json:"conference,omitempty"`
	Division   string               `json:"division,omitempty"`
	Players    []models.PlayerInput `json:"players"`
}

// buildTeams constructs all team and player entities with defaults applied
// once. Teams without a conference alternate EAST/WEST by position.
func buildTeams(data LeagueData, rng *rand.Rand) ([]*models.Team, error) {
	teams := make([]*models.Team, 0, len(data.Teams))
	seen := make(map[string]bool, len(data.Teams))

	for i, td := range data.Teams {
		if td.Name == "" {
			return nil, &models.ConfigError{Reason: fmt.Sprintf("team at index %d has no name", i)}
		}

		id := td.ID
		if id == "" {
			id = uuid.New().String()
		}
		if seen[id] {
			return nil, &models.ConfigError{Reason: fmt.Sprintf("duplicate team id %q", id)}
		}
		seen[id] = true

		conference := models.Conference(td.Conference)
		if !conference.Valid() {
			conference = models.East
			if i%2 == 1 {
				conference = models.West
			}
		}

		division := td.Division
		if division == "" {
			if conference == models.East {
				division = "Olympus"
			} else {
				division = "Underworld"
			}
		}

		team := &models.Team{
			ID:         id,
			Name:       td.Name,
			Mythology:  td.Mythology,
			Conference: conference,
			Division:   division,
			FormFactor: 1.0,
		}
		for _, pi := range td.Players {
			team.Players = append(team.Players, models.NewPlayer(pi, id, rng))
		}
		team.RefreshRotation()
		teams = append(teams, team)
	}

	return teams, nil
}
