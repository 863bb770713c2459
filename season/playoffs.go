package season

import (
	"github.com/sirupsen/logrus"

	"league-engine/models"
)

// prepareBracket seeds round 1 from the top eight of each conference table:
// 1v8, 4v5, 2v7, 3v6. Pairings with a missing seed are dropped.
func (s *Season) prepareBracket() {
	s.refreshStandings()
	s.bracket = nil
	s.roundHistory = nil

	for _, conf := range models.Conferences {
		table := s.standings[conf]
		seeds := table
		if len(seeds) > 8 {
			seeds = seeds[:8]
		}

		pairings := [][2]int{{0, 7}, {3, 4}, {1, 6}, {2, 5}}
		round := &models.Round{Number: 1, Conference: conf}
		for _, pair := range pairings {
			hi, lo := pair[0], pair[1]
			if hi >= len(seeds) || lo >= len(seeds) {
				continue
			}
			round.Series = append(round.Series, &models.Series{
				HigherSeedID: seeds[hi].TeamID,
				LowerSeedID:  seeds[lo].TeamID,
			})
		}
		if len(round.Series) > 0 {
			s.bracket = append(s.bracket, round)
		}
	}
}

// advancePlayoffs plays the next live playoff game. Decided rounds are
// consumed in the same call; once each conference is down to a single
// decided series the finals are prepared and nil is returned.
func (s *Season) advancePlayoffs() *GameSummary {
	for {
		if series, round := s.nextLiveSeries(); series != nil {
			return s.playSeriesGame(series, round)
		}

		progressed := false
		for i, round := range s.bracket {
			if round.Decided() && len(round.Series) > 1 {
				s.bracket[i] = s.buildNextRound(round)
				s.roundHistory = append(s.roundHistory, round)
				progressed = true
			}
		}
		if !progressed {
			s.prepareFinals()
			return nil
		}
	}
}

// nextLiveSeries scans the current rounds in conference order for the first
// undecided series.
func (s *Season) nextLiveSeries() (*models.Series, *models.Round) {
	for _, round := range s.bracket {
		for _, series := range round.Series {
			if !series.Decided() {
				return series, round
			}
		}
	}
	return nil, nil
}

// buildNextRound re-pairs the winners of a decided round: four winners form
// two series (1st-vs-4th, 2nd-vs-3rd by winner order), two form one.
func (s *Season) buildNextRound(round *models.Round) *models.Round {
	winners := round.Winners()
	next := &models.Round{Number: round.Number + 1, Conference: round.Conference}

	switch len(winners) {
	case 4:
		next.Series = []*models.Series{
			{HigherSeedID: winners[0], LowerSeedID: winners[3]},
			{HigherSeedID: winners[1], LowerSeedID: winners[2]},
		}
	case 2:
		next.Series = []*models.Series{
			{HigherSeedID: winners[0], LowerSeedID: winners[1]},
		}
	default:
		// 3 winners cannot happen from the seeded bracket shapes; fall
		// back to pairing the leading two and carrying the round.
		if len(winners) >= 2 {
			next.Series = []*models.Series{
				{HigherSeedID: winners[0], LowerSeedID: winners[1]},
			}
		}
	}
	return next
}

// playSeriesGame simulates one game of a live series. Home court alternates
// starting with the higher seed. A series whose team no longer resolves is
// decided for the side that does, without recording a game.
func (s *Season) playSeriesGame(series *models.Series, round *models.Round) *GameSummary {
	n := len(series.Games)
	homeID := series.HomeTeamID0(n)
	awayID := series.AwayTeamID0(n)

	home := s.teamsByID[homeID]
	away := s.teamsByID[awayID]
	if home == nil || away == nil {
		s.logger.WithFields(logrus.Fields{
			"home_team_id": homeID,
			"away_team_id": awayID,
		}).Warn("series references unknown team, auto-deciding")
		if s.teamsByID[series.HigherSeedID] != nil {
			series.WinsHigher = models.SeriesWinsNeeded
		} else {
			series.WinsLower = models.SeriesWinsNeeded
		}
		s.bump()
		return nil
	}

	out := s.engine.Simulate(home, away)
	series.RecordGame(models.SeriesGame{
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		Result:     out.Result,
	})

	s.applyPlayerEffects(home, away)
	s.finishGame()

	summary := s.summarize(PhasePlayoffs, round.Conference, round.Number, home, away, out)
	s.pushRecent(RecentGame{
		Phase:      PhasePlayoffs,
		Round:      round.Number,
		Conference: round.Conference,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		Result:     out.Result,
		Summary:    summary.Summary,
		Day:        s.day,
	})
	return summary
}

// conferenceChampion returns the decided champion of a conference, falling
// back to the top of the standings when the conference never had a bracket.
func (s *Season) conferenceChampion(conf models.Conference) string {
	for _, round := range s.bracket {
		if round.Conference == conf && len(round.Series) == 1 && round.Series[0].Decided() {
			return round.Series[0].WinnerID()
		}
	}
	table := s.GetStandings(conf)
	if len(table) > 0 {
		return table[0].TeamID
	}
	return ""
}

// Bracket returns a deep copy of the live playoff rounds.
func (s *Season) Bracket() []models.Round {
	out := make([]models.Round, 0, len(s.bracket))
	for _, round := range s.bracket {
		out = append(out, copyRound(round))
	}
	return out
}

func copyRound(round *models.Round) models.Round {
	out := models.Round{Number: round.Number, Conference: round.Conference}
	for _, series := range round.Series {
		c := *series
		c.Games = append([]models.SeriesGame{}, series.Games...)
		out.Series = append(out.Series, &c)
	}
	return out
}
