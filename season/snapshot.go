package season

import (
	"io"
	"math/rand"

	"github.com/sirupsen/logrus"

	"league-engine/models"
	"league-engine/simulation"
)

// SeasonState is the plain serializable snapshot of a whole season. It holds
// no behavior; a persistence layer can marshal it opaquely.
type SeasonState struct {
	Year         int                  `json:"year"`
	Seed         int64                `json:"seed"`
	Phase        Phase                `json:"phase"`
	Day          int                  `json:"day"`
	SalaryCap    int64                `json:"salary_cap"`
	Teams        []*models.Team       `json:"teams"`
	FreeAgents   []*models.Player     `json:"free_agents,omitempty"`
	Schedule     []*models.Fixture    `json:"schedule"`
	Cursor       int                  `json:"cursor"`
	Bracket      []*models.Round      `json:"bracket,omitempty"`
	RoundHistory []*models.Round      `json:"round_history,omitempty"`
	Finals       *models.Finals       `json:"finals,omitempty"`
	Recent       []RecentGame         `json:"recent_games,omitempty"`
	Transactions []models.Transaction `json:"transactions,omitempty"`
}

// Snapshot returns a deep copy of the season as plain state.
func (s *Season) Snapshot() SeasonState {
	state := SeasonState{
		Year:      s.year,
		Seed:      s.seed,
		Phase:     s.phase,
		Day:       s.day,
		SalaryCap: s.salaryCap,
		Cursor:    s.cursor,
	}

	for _, t := range s.teams {
		state.Teams = append(state.Teams, copyTeam(t))
	}
	for _, p := range s.freeAgents {
		c := copyPlayer(p)
		state.FreeAgents = append(state.FreeAgents, &c)
	}
	for _, f := range s.schedule {
		c := *f
		if f.Result != nil {
			r := *f.Result
			c.Result = &r
		}
		state.Schedule = append(state.Schedule, &c)
	}
	for _, round := range s.bracket {
		c := copyRound(round)
		state.Bracket = append(state.Bracket, &c)
	}
	for _, round := range s.roundHistory {
		c := copyRound(round)
		state.RoundHistory = append(state.RoundHistory, &c)
	}
	state.Finals = s.Finals()
	state.Recent = append(state.Recent, s.recent...)
	state.Transactions = append(state.Transactions, s.txLog...)

	return state
}

// Restore rebuilds a Season from snapshot state. The random stream is
// re-seeded from the stored seed offset by the day index, so a restored
// season is self-consistent and reproducible from the restore point, though
// not a bit-for-bit continuation of the original stream.
func Restore(state SeasonState, logger *logrus.Logger) (*Season, error) {
	if len(state.Teams) == 0 {
		return nil, &models.ConfigError{Reason: "snapshot has no teams"}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	rng := rand.New(rand.NewSource(state.Seed + int64(state.Day)*1_000_003))

	s := &Season{
		year:         state.Year,
		seed:         state.Seed,
		phase:        state.Phase,
		day:          state.Day,
		salaryCap:    state.SalaryCap,
		cursor:       state.Cursor,
		teamsByID:    make(map[string]*models.Team, len(state.Teams)),
		conferences:  make(map[models.Conference][]string),
		bracket:      state.Bracket,
		roundHistory: state.RoundHistory,
		finals:       state.Finals,
		rng:          rng,
		logger:       logger,
	}
	s.engine = simulation.NewEngine(rng, logger)

	for _, t := range state.Teams {
		t.RefreshRotation()
		s.teams = append(s.teams, t)
		s.teamsByID[t.ID] = t
		s.conferences[t.Conference] = append(s.conferences[t.Conference], t.ID)
	}
	s.freeAgents = state.FreeAgents
	s.schedule = state.Schedule
	s.recent = state.Recent
	s.txLog = state.Transactions

	s.recomputePayrolls()
	s.refreshStandings()
	return s, nil
}

func copyTeam(t *models.Team) *models.Team {
	out := *t
	out.Players = nil
	out.Rotation = nil
	for _, p := range t.Players {
		c := copyPlayer(p)
		out.Players = append(out.Players, &c)
	}
	out.Form = append([]string{}, t.Form...)
	out.RefreshRotation()
	return &out
}
