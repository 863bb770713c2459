package season

import (
	"sort"

	"league-engine/models"
)

// Standing is one row of a ranked conference table. Rank is 1-based.
type Standing struct {
	Rank          int    `json:"rank"`
	TeamID        string `json:"team_id"`
	Name          string `json:"name"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PointsFor     int    `json:"points_for"`
	PointsAgainst int    `json:"points_against"`
	Diff          int    `json:"diff"`
	Streak        int    `json:"streak"`
}

// refreshStandings recomputes both conference tables and stamps the cache
// with the current generation.
func (s *Season) refreshStandings() {
	standings := make(map[models.Conference][]Standing, len(models.Conferences))

	for _, conf := range models.Conferences {
		teams := make([]*models.Team, 0, len(s.conferences[conf]))
		for _, id := range s.conferences[conf] {
			if t := s.teamsByID[id]; t != nil {
				teams = append(teams, t)
			}
		}

		sort.SliceStable(teams, func(i, j int) bool {
			a, b := teams[i], teams[j]
			if a.Stats.Wins != b.Stats.Wins {
				return a.Stats.Wins > b.Stats.Wins
			}
			if a.Stats.Diff() != b.Stats.Diff() {
				return a.Stats.Diff() > b.Stats.Diff()
			}
			return models.TeamPower(a, false) > models.TeamPower(b, false)
		})

		table := make([]Standing, len(teams))
		for i, t := range teams {
			table[i] = Standing{
				Rank:          i + 1,
				TeamID:        t.ID,
				Name:          t.Name,
				Wins:          t.Stats.Wins,
				Losses:        t.Stats.Losses,
				PointsFor:     t.Stats.PointsFor,
				PointsAgainst: t.Stats.PointsAgainst,
				Diff:          t.Stats.Diff(),
				Streak:        t.Stats.Streak,
			}
		}
		standings[conf] = table
	}

	s.standings = standings
	s.standingsGen = s.gen
}

// GetStandings returns the ranked table for one conference as a snapshot;
// mutating the returned slice does not touch season state.
func (s *Season) GetStandings(conf models.Conference) []Standing {
	if s.standings == nil || s.standingsGen != s.gen {
		s.refreshStandings()
	}
	table := s.standings[conf]
	out := make([]Standing, len(table))
	copy(out, table)
	return out
}

// GetAllStandings returns both conference tables keyed by conference.
func (s *Season) GetAllStandings() map[models.Conference][]Standing {
	out := make(map[models.Conference][]Standing, len(models.Conferences))
	for _, conf := range models.Conferences {
		out[conf] = s.GetStandings(conf)
	}
	return out
}
