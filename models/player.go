package models

import (
	"math/rand"

	"github.com/google/uuid"
)

// Attributes holds the six scouting attributes on a 0-99 scale.
type Attributes struct {
	Strength   int `json:"strength"`
	Technique  int `json:"technique"`
	Speed      int `json:"speed"`
	Creativity int `json:"creativity"`
	Discipline int `json:"discipline"`
	Aura       int `json:"aura"`
}

// Injury marks a player as unavailable for a number of games.
type Injury struct {
	Kind           string `json:"kind"`
	GamesRemaining int    `json:"games_remaining"`
}

// Player is a league player. A player with an empty TeamID is a free agent.
type Player struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Position      string     `json:"position"`
	TeamID        string     `json:"team_id,omitempty"`
	Attributes    Attributes `json:"attributes"`
	Morale        int        `json:"morale"`
	Energy        int        `json:"energy"`
	Salary        int64      `json:"salary"`
	ContractYears int        `json:"contract_years"`
	Injury        *Injury    `json:"injury,omitempty"`
}

// PlayerInput is the raw player record supplied by league data. Zero-valued
// attributes are treated as unset and default to the neutral midpoint; zero
// salary and contract years take the league defaults.
type PlayerInput struct {
	Name          string     `json:"name"`
	Position      string     `json:"position"`
	Attributes    Attributes `json:"attributes"`
	Salary        int64      `json:"salary,omitempty"`
	ContractYears int        `json:"contract_years,omitempty"`
}

// NewPlayer builds a Player from input data, applying all defaults exactly
// once. Morale is randomized in [70,90) from the supplied source.
func NewPlayer(in PlayerInput, teamID string, rng *rand.Rand) *Player {
	p := &Player{
		ID:            uuid.New().String(),
		Name:          in.Name,
		Position:      in.Position,
		TeamID:        teamID,
		Attributes:    normalizeAttributes(in.Attributes),
		Morale:        70 + rng.Intn(20),
		Energy:        100,
		Salary:        in.Salary,
		ContractYears: in.ContractYears,
	}
	if p.Salary == 0 {
		p.Salary = DefaultPlayerSalary
	}
	if p.ContractYears == 0 {
		p.ContractYears = DefaultContractYears
	}
	return p
}

// Injured reports whether the player is currently out with an injury.
func (p *Player) Injured() bool {
	return p.Injury != nil && p.Injury.GamesRemaining > 0
}

// normalizeAttributes defaults unset (zero) attributes to the midpoint and
// clamps everything to the valid range.
func normalizeAttributes(a Attributes) Attributes {
	return Attributes{
		Strength:   normalizeAttribute(a.Strength),
		Technique:  normalizeAttribute(a.Technique),
		Speed:      normalizeAttribute(a.Speed),
		Creativity: normalizeAttribute(a.Creativity),
		Discipline: normalizeAttribute(a.Discipline),
		Aura:       normalizeAttribute(a.Aura),
	}
}

func normalizeAttribute(v int) int {
	if v == 0 {
		return DefaultAttribute
	}
	if v < 0 {
		return 0
	}
	if v > AttributeMax {
		return AttributeMax
	}
	return v
}

func clampStat(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AdjustMorale shifts morale by delta, clamped to [0,100].
func (p *Player) AdjustMorale(delta int) {
	p.Morale = clampStat(p.Morale+delta, 0, 100)
}

// AdjustEnergy shifts energy by delta, clamped to [0,100].
func (p *Player) AdjustEnergy(delta int) {
	p.Energy = clampStat(p.Energy+delta, 0, 100)
}
