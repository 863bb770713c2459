package season

import (
	"github.com/sirupsen/logrus"

	"league-engine/models"
)

// prepareFinals builds the championship series between the two conference
// champions. The champion with the better regular-season record is the
// higher seed (point differential, then East, as tiebreaks) and hosts game 1.
func (s *Season) prepareFinals() {
	east := s.conferenceChampion(models.East)
	west := s.conferenceChampion(models.West)

	if east == "" || west == "" {
		// Degenerate league with a one-sided bracket: whoever exists is
		// champion outright.
		s.finals = &models.Finals{EastChampionID: east, WestChampionID: west}
		if east != "" {
			s.finals.ChampionID = east
		} else {
			s.finals.ChampionID = west
		}
		s.finishSeason()
		return
	}

	higher, lower := east, west
	if s.finalsSeedsWestFirst(east, west) {
		higher, lower = west, east
	}

	s.finals = &models.Finals{
		EastChampionID: east,
		WestChampionID: west,
		Series:         &models.Series{HigherSeedID: higher, LowerSeedID: lower},
	}
	s.phase = PhaseFinals

	s.logger.WithFields(logrus.Fields{
		"east": east,
		"west": west,
	}).Info("finals set")
}

func (s *Season) finalsSeedsWestFirst(east, west string) bool {
	e := s.teamsByID[east]
	w := s.teamsByID[west]
	if e == nil || w == nil {
		return false
	}
	if w.Stats.Wins != e.Stats.Wins {
		return w.Stats.Wins > e.Stats.Wins
	}
	return w.Stats.Diff() > e.Stats.Diff()
}

// advanceFinals plays the next finals game. The first side to the series
// majority is league champion, which finishes the season.
func (s *Season) advanceFinals() *GameSummary {
	if s.finals == nil || s.finals.Series == nil {
		s.finishSeason()
		return nil
	}
	series := s.finals.Series
	if series.Decided() {
		s.finals.ChampionID = series.WinnerID()
		s.finishSeason()
		return nil
	}

	n := len(series.Games)
	homeID := series.HomeTeamID0(n)
	awayID := series.AwayTeamID0(n)
	home := s.teamsByID[homeID]
	away := s.teamsByID[awayID]
	if home == nil || away == nil {
		if s.teamsByID[series.HigherSeedID] != nil {
			series.WinsHigher = models.SeriesWinsNeeded
		} else {
			series.WinsLower = models.SeriesWinsNeeded
		}
		s.finals.ChampionID = series.WinnerID()
		s.finishSeason()
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

	if series.Decided() {
		s.finals.ChampionID = series.WinnerID()
		s.finishSeason()
	}

	summary := s.summarize(PhaseFinals, "", 0, home, away, out)
	s.pushRecent(RecentGame{
		Phase:      PhaseFinals,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		Result:     out.Result,
		Summary:    summary.Summary,
		Day:        s.day,
	})
	return summary
}

// finishSeason moves the phase to finished and ages every contract by one
// year; expired contracts send the player to free agency.
func (s *Season) finishSeason() {
	if s.phase == PhaseFinished {
		return
	}
	s.phase = PhaseFinished

	if s.finals != nil && s.finals.ChampionID != "" {
		if champ := s.teamsByID[s.finals.ChampionID]; champ != nil {
			s.logger.WithField("champion", champ.Name).Info("season finished")
		}
	}

	for _, t := range s.teams {
		kept := t.Players[:0]
		for _, p := range t.Players {
			p.ContractYears--
			if p.ContractYears <= 0 {
				p.TeamID = ""
				p.ContractYears = 0
				s.freeAgents = append(s.freeAgents, p)
				continue
			}
			kept = append(kept, p)
		}
		t.Players = kept
		t.RefreshRotation()
	}

	s.bump()
	s.recomputePayrolls()
}

// Finals returns a copy of the finals state, or nil before the finals exist.
func (s *Season) Finals() *models.Finals {
	if s.finals == nil {
		return nil
	}
	out := *s.finals
	if s.finals.Series != nil {
		series := *s.finals.Series
		series.Games = append([]models.SeriesGame{}, s.finals.Series.Games...)
		out.Series = &series
	}
	return &out
}
