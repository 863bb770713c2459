package season

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-engine/models"
)

func flatAttributes(value int) models.Attributes {
	return models.Attributes{
		Strength:   value,
		Technique:  value,
		Speed:      value,
		Creativity: value,
		Discipline: value,
		Aura:       value,
	}
}

// testLeagueData builds a deterministic league: teamsPerConf teams in each
// conference, playersPerTeam players each, with staggered ratings so the
// table is not degenerate.
func testLeagueData(teamsPerConf, playersPerTeam int) LeagueData {
	data := LeagueData{Year: 2026}
	for c, conf := range models.Conferences {
		for i := 0; i < teamsPerConf; i++ {
			td := TeamData{
				ID:         fmt.Sprintf("%s-%d", conf, i),
				Name:       fmt.Sprintf("%s Team %d", conf, i),
				Conference: string(conf),
			}
			for p := 0; p < playersPerTeam; p++ {
				rating := 40 + (i*7+p*3+c*5)%50
				td.Players = append(td.Players, models.PlayerInput{
					Name:       fmt.Sprintf("%s P%d", td.Name, p),
					Position:   "G",
					Attributes: flatAttributes(rating),
				})
			}
			data.Teams = append(data.Teams, td)
		}
	}
	return data
}

func newTestSeason(t *testing.T, teamsPerConf int) *Season {
	t.Helper()
	sea, err := New(testLeagueData(teamsPerConf, 10), 42, nil)
	require.NoError(t, err)
	return sea
}

func TestNewSeasonValidation(t *testing.T) {
	_, err := New(LeagueData{}, 1, nil)
	require.Error(t, err)
	var cfgErr *models.ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = New(LeagueData{Teams: []TeamData{{Name: ""}}}, 1, nil)
	assert.ErrorAs(t, err, &cfgErr)

	_, err = New(LeagueData{Teams: []TeamData{
		{ID: "dup", Name: "A"},
		{ID: "dup", Name: "B"},
	}}, 1, nil)
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNewSeasonDefaults(t *testing.T) {
	sea := newTestSeason(t, 4)

	assert.Equal(t, PhaseRegularSeason, sea.Phase())
	assert.Equal(t, 0, sea.Day())
	assert.Equal(t, 2026, sea.Year())
	assert.Equal(t, models.DefaultSalaryCap, sea.salaryCap)
	assert.Empty(t, sea.ChampionID())

	// 4 teams per conference, double round robin: 4*3 fixtures each.
	assert.Len(t, sea.Schedule(), 24)
}

func TestSeasonFullRun(t *testing.T) {
	sea := newTestSeason(t, 8)
	require.Len(t, sea.Schedule(), 2*8*7)

	seen := map[Phase]bool{sea.Phase(): true}
	games := 0
	for i := 0; i < 5000 && sea.Phase() != PhaseFinished; i++ {
		if g := sea.Advance(); g != nil {
			games++
			assert.NotEqual(t, g.Result.HomePoints, g.Result.AwayPoints)
		}
		seen[sea.Phase()] = true
	}

	require.Equal(t, PhaseFinished, sea.Phase(), "season did not finish")
	assert.True(t, seen[PhasePlayoffs], "playoffs phase never reached")
	assert.True(t, seen[PhaseFinals], "finals phase never reached")
	assert.GreaterOrEqual(t, games, 2*8*7, "every fixture should produce a game")

	for _, f := range sea.Schedule() {
		assert.True(t, f.Played)
		require.NotNil(t, f.Result)
	}

	champion := sea.ChampionID()
	require.NotEmpty(t, champion)
	_, ok := sea.teamsByID[champion]
	assert.True(t, ok, "champion must be a league team")

	// A finished season stays finished.
	assert.Nil(t, sea.Advance())
	assert.Equal(t, PhaseFinished, sea.Phase())
}

func TestSeasonReproducible(t *testing.T) {
	run := func() []Standing {
		sea, err := New(testLeagueData(4, 10), 7, nil)
		require.NoError(t, err)
		for i := 0; i < 2000 && sea.Phase() != PhaseFinished; i++ {
			sea.Advance()
		}
		return sea.GetStandings(models.East)
	}

	assert.Equal(t, run(), run(), "same seed must reproduce the same season")
}

func TestContractsRollOverAtSeasonEnd(t *testing.T) {
	sea := newTestSeason(t, 4)

	team := sea.teams[0]
	expiring := team.Players[0]
	expiring.ContractYears = 1
	keeper := team.Players[1]
	keeper.ContractYears = 3

	for i := 0; i < 2000 && sea.Phase() != PhaseFinished; i++ {
		sea.Advance()
	}
	require.Equal(t, PhaseFinished, sea.Phase())

	assert.Nil(t, team.FindPlayer(expiring.ID), "expired contract should leave the roster")
	assert.Empty(t, expiring.TeamID)
	found := false
	for _, p := range sea.freeAgents {
		if p.ID == expiring.ID {
			found = true
		}
	}
	assert.True(t, found, "expired player should join the free agent pool")

	require.NotNil(t, team.FindPlayer(keeper.ID))
	assert.Equal(t, 2, keeper.ContractYears)
}

func TestSnapshotRoundTrip(t *testing.T) {
	sea := newTestSeason(t, 4)
	for i := 0; i < 10; i++ {
		sea.Advance()
	}
	sea.ReleasePlayer(sea.teams[0].ID, sea.teams[0].Players[0].ID)

	state := sea.Snapshot()

	// The snapshot must survive JSON, the persistence format.
	blob, err := json.Marshal(state)
	require.NoError(t, err)
	var decoded SeasonState
	require.NoError(t, json.Unmarshal(blob, &decoded))

	restored, err := Restore(decoded, nil)
	require.NoError(t, err)

	assert.Equal(t, sea.Year(), restored.Year())
	assert.Equal(t, sea.Phase(), restored.Phase())
	assert.Equal(t, sea.Day(), restored.Day())
	assert.Equal(t, sea.salaryCap, restored.salaryCap)
	assert.Equal(t, sea.cursor, restored.cursor)
	assert.Equal(t, len(sea.freeAgents), len(restored.freeAgents))
	assert.Equal(t, sea.GetAllStandings(), restored.GetAllStandings())
	assert.Equal(t, sea.GetTransactionLog(), restored.GetTransactionLog())
	assert.Equal(t, sea.Schedule(), restored.Schedule())

	for _, team := range sea.teams {
		restoredTeam := restored.teamsByID[team.ID]
		require.NotNil(t, restoredTeam)
		assert.Equal(t, team.Stats, restoredTeam.Stats)
		assert.Equal(t, team.DeadCap, restoredTeam.DeadCap)
		assert.Len(t, restoredTeam.Players, len(team.Players))
	}

	// The restored season must be able to keep playing.
	for i := 0; i < 2000 && restored.Phase() != PhaseFinished; i++ {
		restored.Advance()
	}
	assert.Equal(t, PhaseFinished, restored.Phase())
	assert.NotEmpty(t, restored.ChampionID())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	sea := newTestSeason(t, 4)
	state := sea.Snapshot()

	state.Teams[0].Stats.Wins = 99
	state.Teams[0].Players[0].Salary = 1

	assert.Zero(t, sea.teams[0].Stats.Wins)
	assert.NotEqual(t, int64(1), sea.teams[0].Players[0].Salary)
}

func TestRestoreRejectsEmptyState(t *testing.T) {
	_, err := Restore(SeasonState{}, nil)
	require.Error(t, err)
	var cfgErr *models.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
