package models

import (
	"math"
	"testing"
)

func flatPlayer(value, energy int) *Player {
	return &Player{
		ID:     "p",
		Energy: energy,
		Attributes: Attributes{
			Strength:   value,
			Technique:  value,
			Speed:      value,
			Creativity: value,
			Discipline: value,
			Aura:       value,
		},
	}
}

// TestPlayerPower tests the weighted player rating
func TestPlayerPower(t *testing.T) {
	tests := []struct {
		name   string
		player *Player
		want   float64
	}{
		{"nil player", nil, 0},
		{"all-default attributes rate the midpoint", flatPlayer(50, 100), 50},
		{"flat elite attributes", flatPlayer(99, 100), 99},
		{"half energy halves the rating", flatPlayer(50, 50), 25},
		{"zero energy", flatPlayer(80, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlayerPower(tt.player)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PlayerPower() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestPlayerPowerInjured(t *testing.T) {
	p := flatPlayer(90, 100)
	p.Injury = &Injury{Kind: "sprain", GamesRemaining: 2}

	if got := PlayerPower(p); got != 0 {
		t.Errorf("Expected injured player to rate 0, got %f", got)
	}

	p.Injury.GamesRemaining = 0
	if got := PlayerPower(p); got == 0 {
		t.Error("Expected recovered player to rate above 0")
	}
}

func TestPlayerPowerBounds(t *testing.T) {
	for value := 0; value <= 99; value += 9 {
		for energy := 0; energy <= 100; energy += 20 {
			got := PlayerPower(flatPlayer(value, energy))
			if got < 0 || got > AttributeMax {
				t.Errorf("PlayerPower(value=%d, energy=%d) = %f, out of [0,%d]",
					value, energy, got, AttributeMax)
			}
		}
	}
}

func teamOf(players ...*Player) *Team {
	team := &Team{ID: "t", Name: "Test", Players: players}
	team.RefreshRotation()
	return team
}

// TestTeamPower tests rotation averaging, floor and home court
func TestTeamPower(t *testing.T) {
	tests := []struct {
		name string
		team *Team
		home bool
		want float64
	}{
		{"nil team rates neutral", nil, false, NeutralPower},
		{"empty roster rates neutral", teamOf(), false, NeutralPower},
		{"average of equal players", teamOf(flatPlayer(60, 100), flatPlayer(60, 100)), false, 60},
		{"home court multiplier", teamOf(flatPlayer(60, 100)), true, 60 * HomeCourtMultiplier},
		{"weak roster hits the floor", teamOf(flatPlayer(10, 100)), false, TeamPowerFloor},
		{"all injured hits the floor", teamOf(&Player{
			ID:         "inj",
			Energy:     100,
			Attributes: Attributes{Strength: 90, Technique: 90, Speed: 90, Creativity: 90, Discipline: 90, Aura: 90},
			Injury:     &Injury{Kind: "fracture", GamesRemaining: 5},
		}), false, TeamPowerFloor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TeamPower(tt.team, tt.home)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TeamPower() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestTeamPowerUsesRotationOnly(t *testing.T) {
	players := make([]*Player, 0, RotationSize+2)
	for i := 0; i < RotationSize; i++ {
		players = append(players, flatPlayer(70, 100))
	}
	// Bench players weaker than the rotation must not drag the rating down.
	players = append(players, flatPlayer(10, 100), flatPlayer(10, 100))

	team := teamOf(players...)
	if got := TeamPower(team, false); math.Abs(got-70) > 1e-9 {
		t.Errorf("TeamPower() = %f, want 70 from rotation only", got)
	}
}
