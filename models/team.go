package models

// TeamRecord accumulates a team's season results.
type TeamRecord struct {
	Games         int `json:"games"`
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	PointsFor     int `json:"points_for"`
	PointsAgainst int `json:"points_against"`
	// Streak is positive for a win streak, negative for a losing streak.
	Streak   int `json:"streak"`
	HomeWins int `json:"home_wins"`
	AwayWins int `json:"away_wins"`
}

// Diff returns the season point differential.
func (r TeamRecord) Diff() int {
	return r.PointsFor - r.PointsAgainst
}

// Team is a league franchise and the owner of its roster. Rotation is the
// slice of roster players used for simulation, refreshed on every roster
// change.
type Team struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Mythology  string     `json:"mythology,omitempty"`
	Conference Conference `json:"conference"`
	Division   string     `json:"division"`
	Players    []*Player  `json:"players"`
	Rotation   []*Player  `json:"-"`
	Stats      TeamRecord `json:"stats"`
	Form       []string   `json:"form"`
	FormFactor float64    `json:"form_factor"`
	DeadCap    int64      `json:"dead_cap"`
}

// RefreshRotation rebuilds the rotation as the leading roster slice.
func (t *Team) RefreshRotation() {
	n := RotationSize
	if n > len(t.Players) {
		n = len(t.Players)
	}
	t.Rotation = t.Players[:n]
}

// FindPlayer returns the roster player with the given id, or nil.
func (t *Team) FindPlayer(playerID string) *Player {
	for _, p := range t.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// Payroll returns the sum of active roster salaries plus dead cap.
func (t *Team) Payroll() int64 {
	total := t.DeadCap
	for _, p := range t.Players {
		total += p.Salary
	}
	return total
}

// RecordResult applies one game result to the team record and form buffer.
func (t *Team) RecordResult(won, home bool, pointsFor, pointsAgainst int) {
	t.Stats.Games++
	t.Stats.PointsFor += pointsFor
	t.Stats.PointsAgainst += pointsAgainst

	if won {
		t.Stats.Wins++
		if home {
			t.Stats.HomeWins++
		} else {
			t.Stats.AwayWins++
		}
		if t.Stats.Streak > 0 {
			t.Stats.Streak++
		} else {
			t.Stats.Streak = 1
		}
		t.Form = append(t.Form, "W")
	} else {
		t.Stats.Losses++
		if t.Stats.Streak < 0 {
			t.Stats.Streak--
		} else {
			t.Stats.Streak = -1
		}
		t.Form = append(t.Form, "L")
	}

	if len(t.Form) > FormWindow {
		t.Form = t.Form[len(t.Form)-FormWindow:]
	}
	t.FormFactor = 0.9 + float64(t.Stats.Wins)/float64(max(1, t.Stats.Games))*0.2
}
