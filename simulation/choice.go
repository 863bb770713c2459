package simulation

import (
	"math/rand"

	"league-engine/models"
)

// weightedChoice picks one player with probability proportional to power.
// Every candidate gets a weight floor of 1 so no player is unpickable.
// Returns nil only for an empty candidate list.
func weightedChoice(rng *rand.Rand, players []*models.Player) *models.Player {
	if len(players) == 0 {
		return nil
	}

	weights := make([]float64, len(players))
	var total float64
	for i, p := range players {
		w := models.PlayerPower(p)
		if w < 1 {
			w = 1
		}
		weights[i] = w
		total += w
	}

	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return players[i]
		}
		r -= w
	}
	return players[0]
}

// weightedChoiceExcluding picks a player as weightedChoice does, skipping one
// excluded player (typically the shooter when choosing an assister).
func weightedChoiceExcluding(rng *rand.Rand, players []*models.Player, exclude *models.Player) *models.Player {
	candidates := make([]*models.Player, 0, len(players))
	for _, p := range players {
		if p != exclude {
			candidates = append(candidates, p)
		}
	}
	return weightedChoice(rng, candidates)
}
