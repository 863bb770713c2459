package models

// Attribute weights for the power rating. Strength and technique count most,
// aura and discipline least. The weighted average of equal attributes equals
// that attribute, so an all-default player rates exactly 50.
const (
	weightStrength   = 1.2
	weightTechnique  = 1.1
	weightSpeed      = 1.0
	weightCreativity = 0.95
	weightDiscipline = 0.85
	weightAura       = 0.75
)

const weightSum = weightStrength + weightTechnique + weightSpeed +
	weightCreativity + weightDiscipline + weightAura

// PlayerPower derives the player's overall rating from attributes, scaled by
// current energy. An injured player rates zero. Pure: no mutation.
func PlayerPower(p *Player) float64 {
	if p == nil {
		return 0
	}
	if p.Injured() {
		return 0
	}

	a := p.Attributes
	weighted := float64(a.Strength)*weightStrength +
		float64(a.Technique)*weightTechnique +
		float64(a.Speed)*weightSpeed +
		float64(a.Creativity)*weightCreativity +
		float64(a.Discipline)*weightDiscipline +
		float64(a.Aura)*weightAura

	power := weighted / weightSum
	power *= float64(p.Energy) / 100.0
	if power < 0 {
		power = 0
	}
	if power > AttributeMax {
		power = AttributeMax
	}
	return power
}

// TeamPower averages PlayerPower over the team's active rotation, falling
// back to the leading roster slice when no rotation is set. A home side gets
// the home-court multiplier. The result is floored so no team is unplayable,
// and a team with no eligible players rates neutral. Pure: no mutation.
func TeamPower(t *Team, home bool) float64 {
	if t == nil {
		return NeutralPower
	}

	rotation := t.Rotation
	if len(rotation) == 0 {
		n := RotationSize
		if n > len(t.Players) {
			n = len(t.Players)
		}
		rotation = t.Players[:n]
	}
	if len(rotation) == 0 {
		return NeutralPower
	}

	var total float64
	for _, p := range rotation {
		total += PlayerPower(p)
	}
	power := total / float64(len(rotation))

	if home {
		power *= HomeCourtMultiplier
	}
	if power < TeamPowerFloor {
		power = TeamPowerFloor
	}
	return power
}
