package simulation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"league-engine/models"
)

// Tunable match constants. Possessions are per game, not per team; they are
// split between the sides by power share.
const (
	basePossessions     = 90
	overtimePossessions = 10
	maxOvertimes        = 25

	baseScoreProb    = 0.45
	scoreSensitivity = 0.3
	threePointProb   = 0.35
	assistProb       = 0.6
	turnoverProb     = 0.12
	defensiveProb    = 0.08
)

// Event types emitted into the play-by-play feed.
const (
	EventScore    = "score"
	EventRebound  = "rebound"
	EventTurnover = "turnover"
	EventSteal    = "steal"
	EventBlock    = "block"
)

// Event is one play-by-play entry, ordered chronologically as generated.
type Event struct {
	Type     string `json:"type"`
	Side     string `json:"side"`
	PlayerID string `json:"player_id"`
	Points   int    `json:"points,omitempty"`
	Text     string `json:"text"`
}

// TeamLine is a team box-score line.
type TeamLine struct {
	Points    int `json:"points"`
	Rebounds  int `json:"rebounds"`
	Assists   int `json:"assists"`
	Steals    int `json:"steals"`
	Blocks    int `json:"blocks"`
	Turnovers int `json:"turnovers"`
}

// PlayerLine is a per-player box-score line. The outcome map only holds lines
// for players involved in at least one event.
type PlayerLine struct {
	Points    int `json:"points"`
	FGM       int `json:"fgm"`
	FGA       int `json:"fga"`
	Rebounds  int `json:"rebounds"`
	Assists   int `json:"assists"`
	Steals    int `json:"steals"`
	Blocks    int `json:"blocks"`
	Turnovers int `json:"turnovers"`
}

// Outcome is the full product of one simulated game.
type Outcome struct {
	Result      models.Result          `json:"result"`
	Home        TeamLine               `json:"home"`
	Away        TeamLine               `json:"away"`
	PlayerLines map[string]*PlayerLine `json:"player_lines"`
	Events      []Event                `json:"events"`
	Overtimes   int                    `json:"overtimes"`
}

// Engine simulates games possession by possession. It is deterministic for a
// given random source and never mutates the teams it is handed; the engine is
// not safe for concurrent use because the source is not.
type Engine struct {
	rng    *rand.Rand
	logger *logrus.Logger
}

// NewEngine builds an engine around an injected random source. A fixed seed
// reproduces an identical game. The logger may be nil.
func NewEngine(rng *rand.Rand, logger *logrus.Logger) *Engine {
	return &Engine{rng: rng, logger: logger}
}

type sideState struct {
	name     string
	team     *models.Team
	rotation []*models.Player
	power    float64
	line     *TeamLine
}

// Simulate plays one game between home and away and returns the outcome.
// The winner is always one of "home"/"away": level scores after regulation
// are resolved by overtime periods.
func (e *Engine) Simulate(home, away *models.Team) *Outcome {
	out := &Outcome{PlayerLines: make(map[string]*PlayerLine)}

	h := &sideState{
		name:     "home",
		team:     home,
		rotation: activeRotation(home),
		power:    models.TeamPower(home, true) * formFactor(home),
		line:     &out.Home,
	}
	a := &sideState{
		name:     "away",
		team:     away,
		rotation: activeRotation(away),
		power:    models.TeamPower(away, false) * formFactor(away),
		line:     &out.Away,
	}

	e.playPeriod(out, h, a, basePossessions)

	for out.Home.Points == out.Away.Points {
		if out.Overtimes >= maxOvertimes {
			// Rotations that cannot score cannot break a tie by playing
			// more; settle on raw power, home court deciding the rest.
			if h.power >= a.power {
				out.Home.Points++
			} else {
				out.Away.Points++
			}
			break
		}
		out.Overtimes++
		e.playPeriod(out, h, a, overtimePossessions)
	}

	winner := "home"
	if out.Away.Points > out.Home.Points {
		winner = "away"
	}
	out.Result = models.Result{
		HomePoints: out.Home.Points,
		AwayPoints: out.Away.Points,
		Winner:     winner,
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"home":      home.Name,
			"away":      away.Name,
			"score":     fmt.Sprintf("%d-%d", out.Home.Points, out.Away.Points),
			"overtimes": out.Overtimes,
		}).Debug("game simulated")
	}
	return out
}

// playPeriod splits the possession budget by power share and plays every
// possession. Home possessions are budget*share rounded; away gets the rest,
// so the two always sum to the budget exactly.
func (e *Engine) playPeriod(out *Outcome, h, a *sideState, budget int) {
	homePoss, awayPoss := SplitPossessions(budget, h.power, a.power)
	for i := 0; i < homePoss; i++ {
		e.playPossession(out, h, a)
	}
	for i := 0; i < awayPoss; i++ {
		e.playPossession(out, a, h)
	}
}

// SplitPossessions divides a possession budget proportionally to the home
// side's share of combined power.
func SplitPossessions(budget int, homePower, awayPower float64) (home, away int) {
	total := homePower + awayPower
	if total <= 0 {
		total = 1
	}
	home = int(math.Round(float64(budget) * homePower / total))
	return home, budget - home
}

func (e *Engine) playPossession(out *Outcome, off, def *sideState) {
	offenseFactor := off.power / nonZero(off.power+def.power)

	shooter := weightedChoice(e.rng, off.rotation)
	if shooter == nil {
		return
	}

	scoreProb := baseScoreProb + (offenseFactor-0.5)*scoreSensitivity
	scored := e.rng.Float64() < scoreProb
	isThree := e.rng.Float64() < threePointProb

	if scored {
		points := 2
		if isThree {
			points = 3
		}
		off.line.Points += points

		line := out.playerLine(shooter.ID)
		line.Points += points
		line.FGM++
		line.FGA++

		if e.rng.Float64() < assistProb {
			if assister := weightedChoiceExcluding(e.rng, off.rotation, shooter); assister != nil {
				out.playerLine(assister.ID).Assists++
				off.line.Assists++
			}
		}

		out.Events = append(out.Events, Event{
			Type:     EventScore,
			Side:     off.name,
			PlayerID: shooter.ID,
			Points:   points,
			Text:     fmt.Sprintf("%s: %s scores %d", off.team.Name, shooter.Name, points),
		})
	} else {
		out.playerLine(shooter.ID).FGA++

		reboundSide := def
		if e.rng.Float64() < offenseFactor {
			reboundSide = off
		}
		if rebounder := weightedChoice(e.rng, reboundSide.rotation); rebounder != nil {
			out.playerLine(rebounder.ID).Rebounds++
			reboundSide.line.Rebounds++
			out.Events = append(out.Events, Event{
				Type:     EventRebound,
				Side:     reboundSide.name,
				PlayerID: rebounder.ID,
				Text:     fmt.Sprintf("%s: %s grabs the rebound", reboundSide.team.Name, rebounder.Name),
			})
		}
	}

	if e.rng.Float64() < turnoverProb {
		if loser := weightedChoice(e.rng, off.rotation); loser != nil {
			out.playerLine(loser.ID).Turnovers++
			off.line.Turnovers++
			out.Events = append(out.Events, Event{
				Type:     EventTurnover,
				Side:     off.name,
				PlayerID: loser.ID,
				Text:     fmt.Sprintf("%s: %s turns the ball over", off.team.Name, loser.Name),
			})
		}
	}

	if e.rng.Float64() < defensiveProb {
		if defender := weightedChoice(e.rng, def.rotation); defender != nil {
			line := out.playerLine(defender.ID)
			if e.rng.Float64() < 0.5 {
				line.Steals++
				def.line.Steals++
				out.Events = append(out.Events, Event{
					Type:     EventSteal,
					Side:     def.name,
					PlayerID: defender.ID,
					Text:     fmt.Sprintf("%s: %s with the steal", def.team.Name, defender.Name),
				})
			} else {
				line.Blocks++
				def.line.Blocks++
				out.Events = append(out.Events, Event{
					Type:     EventBlock,
					Side:     def.name,
					PlayerID: defender.ID,
					Text:     fmt.Sprintf("%s: %s blocks the shot", def.team.Name, defender.Name),
				})
			}
		}
	}
}

func (o *Outcome) playerLine(playerID string) *PlayerLine {
	line, ok := o.PlayerLines[playerID]
	if !ok {
		line = &PlayerLine{}
		o.PlayerLines[playerID] = line
	}
	return line
}

// activeRotation filters injured players out of the team rotation, falling
// back to healthy roster members when the whole rotation is out.
func activeRotation(t *models.Team) []*models.Player {
	rotation := t.Rotation
	if len(rotation) == 0 {
		rotation = t.Players
	}

	active := make([]*models.Player, 0, len(rotation))
	for _, p := range rotation {
		if !p.Injured() {
			active = append(active, p)
		}
	}
	if len(active) > 0 {
		return active
	}

	for _, p := range t.Players {
		if !p.Injured() {
			active = append(active, p)
			if len(active) == models.RotationSize {
				break
			}
		}
	}
	return active
}

func formFactor(t *models.Team) float64 {
	if t.FormFactor == 0 {
		return 1.0
	}
	return t.FormFactor
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
