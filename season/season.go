// Package season owns the single source of truth for one league season: the
// teams, the schedule, the standings, the playoff bracket and the economy.
// A Season instance assumes exclusive single-writer access; callers that
// share one across goroutines must serialize commands themselves.
package season

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"league-engine/models"
	"league-engine/simulation"
)

// Phase is the season progression state.
type Phase string

const (
	PhaseRegularSeason Phase = "regular_season"
	PhasePlayoffs      Phase = "playoffs"
	PhaseFinals        Phase = "finals"
	PhaseFinished      Phase = "finished"
)

// Season holds all mutable season state. Derived values (standings, cap info)
// are cached against a generation counter and recomputed when any mutation
// has bumped the generation past the cached one.
type Season struct {
	year      int
	seed      int64
	phase     Phase
	day       int
	salaryCap int64

	teams       []*models.Team
	teamsByID   map[string]*models.Team
	conferences map[models.Conference][]string
	freeAgents  []*models.Player

	schedule []*models.Fixture
	cursor   int

	bracket      []*models.Round
	roundHistory []*models.Round
	finals       *models.Finals

	recent []RecentGame
	txLog  []models.Transaction

	gen          uint64
	standings    map[models.Conference][]Standing
	standingsGen uint64
	capInfo      map[string]models.CapInfo
	capGen       uint64
	capFresh     bool

	rng    *rand.Rand
	engine *simulation.Engine
	logger *logrus.Logger
}

// RecentGame is one entry of the bounded recent-results feed.
type RecentGame struct {
	Phase      Phase             `json:"phase"`
	Round      int               `json:"round,omitempty"`
	Conference models.Conference `json:"conference,omitempty"`
	HomeTeamID string            `json:"home_team_id"`
	AwayTeamID string            `json:"away_team_id"`
	Result     models.Result     `json:"result"`
	Summary    string            `json:"summary"`
	Day        int               `json:"day"`
}

// GameSummary is the result of one Advance call that simulated a game.
type GameSummary struct {
	Phase       Phase                             `json:"phase"`
	Conference  models.Conference                 `json:"conference,omitempty"`
	Round       int                               `json:"round,omitempty"`
	HomeTeamID  string                            `json:"home_team_id"`
	AwayTeamID  string                            `json:"away_team_id"`
	Result      models.Result                     `json:"result"`
	Home        simulation.TeamLine               `json:"home"`
	Away        simulation.TeamLine               `json:"away"`
	PlayerLines map[string]*simulation.PlayerLine `json:"player_lines"`
	Events      []simulation.Event                `json:"events"`
	Summary     string                            `json:"summary"`
}

// New builds a fully initialized season from league data: entities, regular
// season schedule, payrolls and initial standings. A zero seed picks one from
// the clock; any other seed makes the whole season reproducible. Returns a
// ConfigError when the league data cannot produce a season, leaving nothing
// partially initialized.
func New(data LeagueData, seed int64, logger *logrus.Logger) (*Season, error) {
	if len(data.Teams) == 0 {
		return nil, &models.ConfigError{Reason: "league data has no teams"}
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	rng := rand.New(rand.NewSource(seed))

	teams, err := buildTeams(data, rng)
	if err != nil {
		return nil, err
	}

	year := data.Year
	if year == 0 {
		year = time.Now().Year() + 1
	}
	salaryCap := data.SalaryCap
	if salaryCap == 0 {
		salaryCap = models.DefaultSalaryCap
	}

	s := &Season{
		year:        year,
		seed:        seed,
		phase:       PhaseRegularSeason,
		salaryCap:   salaryCap,
		teams:       teams,
		teamsByID:   make(map[string]*models.Team, len(teams)),
		conferences: make(map[models.Conference][]string),
		rng:         rng,
		logger:      logger,
	}
	s.engine = simulation.NewEngine(rng, logger)

	for _, t := range teams {
		s.teamsByID[t.ID] = t
		s.conferences[t.Conference] = append(s.conferences[t.Conference], t.ID)
	}
	for _, pi := range data.FreeAgents {
		s.freeAgents = append(s.freeAgents, models.NewPlayer(pi, "", rng))
	}

	s.schedule = generateRegularSeason(s.conferences)
	s.recomputePayrolls()
	s.refreshStandings()

	logger.WithFields(logrus.Fields{
		"year":     year,
		"teams":    len(teams),
		"fixtures": len(s.schedule),
	}).Info("season initialized")

	return s, nil
}

// bump invalidates every generation-cached derived value.
func (s *Season) bump() {
	s.gen++
}

// Phase returns the current season phase.
func (s *Season) Phase() Phase { return s.phase }

// Day returns the current day index (games played so far).
func (s *Season) Day() int { return s.day }

// Year returns the season year.
func (s *Season) Year() int { return s.year }

// ChampionID returns the league champion's team id, or "" before the finals
// are decided.
func (s *Season) ChampionID() string {
	if s.finals == nil {
		return ""
	}
	return s.finals.ChampionID
}

// Advance simulates the next unplayed unit of work for the current phase:
// one fixture, one playoff game or one finals game. It returns nil when the
// call only performed a phase transition, and keeps returning nil once the
// season is finished. Standings and cap info are consistent on return.
func (s *Season) Advance() *GameSummary {
	switch s.phase {
	case PhaseRegularSeason:
		return s.advanceRegular()
	case PhasePlayoffs:
		return s.advancePlayoffs()
	case PhaseFinals:
		return s.advanceFinals()
	default:
		return nil
	}
}

func (s *Season) advanceRegular() *GameSummary {
	for {
		if s.cursor >= len(s.schedule) {
			s.phase = PhasePlayoffs
			s.prepareBracket()
			s.logger.Info("regular season complete, playoffs seeded")
			return nil
		}
		fixture := s.schedule[s.cursor]
		if !fixture.Played {
			return s.playFixture(fixture)
		}
		s.cursor++
	}
}

func (s *Season) playFixture(fixture *models.Fixture) *GameSummary {
	home := s.teamsByID[fixture.HomeTeamID]
	away := s.teamsByID[fixture.AwayTeamID]
	if home == nil || away == nil {
		// Unresolvable pairing: auto-play with no result rather than
		// halting the season.
		s.logger.WithFields(logrus.Fields{
			"home_team_id": fixture.HomeTeamID,
			"away_team_id": fixture.AwayTeamID,
		}).Warn("fixture references unknown team, skipping")
		fixture.Played = true
		s.cursor++
		s.bump()
		return nil
	}

	out := s.engine.Simulate(home, away)
	fixture.Played = true
	result := out.Result
	fixture.Result = &result

	s.applyTeamRecords(home, away, out.Result)
	s.applyPlayerEffects(home, away)
	s.cursor++
	s.finishGame()

	summary := s.summarize(PhaseRegularSeason, fixture.Conference, 0, home, away, out)
	s.pushRecent(RecentGame{
		Phase:      PhaseRegularSeason,
		Conference: fixture.Conference,
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		Result:     out.Result,
		Summary:    summary.Summary,
		Day:        s.day,
	})
	return summary
}

// applyTeamRecords updates both season records from a final result.
func (s *Season) applyTeamRecords(home, away *models.Team, result models.Result) {
	homeWon := result.Winner == "home"
	home.RecordResult(homeWon, true, result.HomePoints, result.AwayPoints)
	away.RecordResult(!homeWon, false, result.AwayPoints, result.HomePoints)

	winner, loser := home, away
	if !homeWon {
		winner, loser = away, home
	}
	for _, p := range winner.Players {
		p.AdjustMorale(2)
	}
	for _, p := range loser.Players {
		p.AdjustMorale(-2)
	}
}

// Injury kinds rolled for in-game injuries.
var injuryKinds = []string{"sprained ankle", "sore knee", "bruised ribs", "tight hamstring"}

// applyPlayerEffects drains rotation energy, regenerates the bench, counts
// down existing injuries and rolls for new ones.
func (s *Season) applyPlayerEffects(teams ...*models.Team) {
	for _, t := range teams {
		inRotation := make(map[string]bool, len(t.Rotation))
		for _, p := range t.Rotation {
			inRotation[p.ID] = true
		}
		for _, p := range t.Players {
			if p.Injury != nil {
				p.Injury.GamesRemaining--
				if p.Injury.GamesRemaining <= 0 {
					p.Injury = nil
				}
				continue
			}
			if inRotation[p.ID] {
				p.AdjustEnergy(-(5 + s.rng.Intn(11)))
				if s.rng.Float64() < 0.015 {
					p.Injury = &models.Injury{
						Kind:           injuryKinds[s.rng.Intn(len(injuryKinds))],
						GamesRemaining: 1 + s.rng.Intn(4),
					}
					s.logger.WithFields(logrus.Fields{
						"player": p.Name,
						"team":   t.Name,
						"injury": p.Injury.Kind,
						"games":  p.Injury.GamesRemaining,
					}).Info("player injured")
				}
			} else {
				p.AdjustEnergy(10)
			}
		}
	}
}

// finishGame runs the bookkeeping every simulated game shares: day advance,
// cache invalidation and an eager standings refresh so observers always see
// consistent tables.
func (s *Season) finishGame() {
	s.day++
	s.bump()
	s.refreshStandings()
}

func (s *Season) pushRecent(g RecentGame) {
	s.recent = append(s.recent, g)
	if len(s.recent) > models.RecentGamesWindow {
		s.recent = s.recent[len(s.recent)-models.RecentGamesWindow:]
	}
}

func (s *Season) summarize(phase Phase, conf models.Conference, round int, home, away *models.Team, out *simulation.Outcome) *GameSummary {
	return &GameSummary{
		Phase:       phase,
		Conference:  conf,
		Round:       round,
		HomeTeamID:  home.ID,
		AwayTeamID:  away.ID,
		Result:      out.Result,
		Home:        out.Home,
		Away:        out.Away,
		PlayerLines: out.PlayerLines,
		Events:      out.Events,
		Summary:     fmt.Sprintf("%s %d - %d %s", home.Name, out.Result.HomePoints, out.Result.AwayPoints, away.Name),
	}
}
