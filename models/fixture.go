package models

// Result is a final game score. Winner is always "home" or "away"; level
// scores are resolved in overtime before a Result is produced.
type Result struct {
	HomePoints int    `json:"home_points"`
	AwayPoints int    `json:"away_points"`
	Winner     string `json:"winner"`
}

// Fixture is one scheduled regular-season game. Identity (home/away pairing)
// is immutable after generation; only Played and Result change.
type Fixture struct {
	Conference Conference `json:"conference"`
	HomeTeamID string     `json:"home_team_id"`
	AwayTeamID string     `json:"away_team_id"`
	Played     bool       `json:"played"`
	Result     *Result    `json:"result,omitempty"`
}

// SeriesGame is one played game inside a playoff or finals series.
type SeriesGame struct {
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	Result     Result `json:"result"`
}

// Series is a best-of-N playoff contest between a higher and a lower seed.
type Series struct {
	HigherSeedID string       `json:"higher_seed_id"`
	LowerSeedID  string       `json:"lower_seed_id"`
	WinsHigher   int          `json:"wins_higher"`
	WinsLower    int          `json:"wins_lower"`
	Games        []SeriesGame `json:"games"`
}

// Decided reports whether either side has reached the series majority.
func (s *Series) Decided() bool {
	return s.WinsHigher >= SeriesWinsNeeded || s.WinsLower >= SeriesWinsNeeded
}

// WinnerID returns the winning side's team id, or "" while the series is live.
func (s *Series) WinnerID() string {
	switch {
	case s.WinsHigher >= SeriesWinsNeeded:
		return s.HigherSeedID
	case s.WinsLower >= SeriesWinsNeeded:
		return s.LowerSeedID
	default:
		return ""
	}
}

// HomeTeamID0 returns the home team for the game at 0-based index n: home
// court alternates every game starting with the higher seed.
func (s *Series) HomeTeamID0(n int) string {
	if n%2 == 0 {
		return s.HigherSeedID
	}
	return s.LowerSeedID
}

// AwayTeamID0 returns the away team for the game at 0-based index n.
func (s *Series) AwayTeamID0(n int) string {
	if n%2 == 0 {
		return s.LowerSeedID
	}
	return s.HigherSeedID
}

// RecordGame appends a played game and credits the series win.
func (s *Series) RecordGame(g SeriesGame) {
	s.Games = append(s.Games, g)
	homeWon := g.Result.Winner == "home"
	higherWasHome := g.HomeTeamID == s.HigherSeedID
	if homeWon == higherWasHome {
		s.WinsHigher++
	} else {
		s.WinsLower++
	}
}

// Round is one playoff round within a conference.
type Round struct {
	Number     int        `json:"number"`
	Conference Conference `json:"conference"`
	Series     []*Series  `json:"series"`
}

// Decided reports whether every series in the round has a winner.
func (r *Round) Decided() bool {
	for _, s := range r.Series {
		if !s.Decided() {
			return false
		}
	}
	return true
}

// Winners returns the series winners in series order.
func (r *Round) Winners() []string {
	winners := make([]string, 0, len(r.Series))
	for _, s := range r.Series {
		winners = append(winners, s.WinnerID())
	}
	return winners
}

// Finals is the cross-conference championship series.
type Finals struct {
	EastChampionID string  `json:"east_champion_id"`
	WestChampionID string  `json:"west_champion_id"`
	Series         *Series `json:"series"`
	ChampionID     string  `json:"champion_id,omitempty"`
}
