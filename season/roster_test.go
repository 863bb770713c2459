package season

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-engine/models"
)

func newRosterSeason(t *testing.T) *Season {
	t.Helper()
	data := testLeagueData(4, 10)
	data.FreeAgents = []models.PlayerInput{
		{Name: "FA One", Position: "G", Attributes: flatAttributes(60), Salary: 8_000_000},
		{Name: "FA Two", Position: "F", Attributes: flatAttributes(55), Salary: 4_000_000},
	}
	sea, err := New(data, 42, nil)
	require.NoError(t, err)
	return sea
}

func rosterIDs(team *models.Team) map[string]bool {
	ids := make(map[string]bool, len(team.Players))
	for _, p := range team.Players {
		ids[p.ID] = true
	}
	return ids
}

func TestProposeTradeSwapsPlayers(t *testing.T) {
	sea := newRosterSeason(t)
	from := sea.teams[0]
	to := sea.teams[1]
	fromPlayer := from.Players[0]
	toPlayer := to.Players[0]
	// Equal salaries always pass the balance rule.
	fromPlayer.Salary = 10_000_000
	toPlayer.Salary = 10_000_000

	res := sea.ProposeTrade(from.ID, to.ID, []string{fromPlayer.ID}, []string{toPlayer.ID})
	require.True(t, res.Success, res.Message)

	assert.True(t, rosterIDs(to)[fromPlayer.ID])
	assert.True(t, rosterIDs(from)[toPlayer.ID])
	assert.Equal(t, to.ID, fromPlayer.TeamID)
	assert.Equal(t, from.ID, toPlayer.TeamID)

	log := sea.GetTransactionLog()
	require.Len(t, log, 1)
	assert.Equal(t, models.TxTrade, log[0].Type)
	assert.NotEmpty(t, log[0].ID)
}

func TestProposeTradeSalaryBalance(t *testing.T) {
	sea := newRosterSeason(t)
	from := sea.teams[0]
	to := sea.teams[1]
	from.Players[0].Salary = 20_000_000
	to.Players[0].Salary = 10_000_000

	res := sea.ProposeTrade(from.ID, to.ID, []string{from.Players[0].ID}, []string{to.Players[0].ID})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "out of balance")

	// 15M against 20M is exactly the 75% boundary and legal.
	to.Players[0].Salary = 15_000_000
	res = sea.ProposeTrade(from.ID, to.ID, []string{from.Players[0].ID}, []string{to.Players[0].ID})
	assert.True(t, res.Success, res.Message)
}

func TestProposeTradeRejectsInvalidInput(t *testing.T) {
	sea := newRosterSeason(t)
	teamID := sea.teams[0].ID

	assert.False(t, sea.ProposeTrade("missing", teamID, nil, nil).Success)
	assert.False(t, sea.ProposeTrade(teamID, teamID, nil, nil).Success)
	assert.False(t, sea.ProposeTrade(teamID, sea.teams[1].ID, nil, nil).Success)
	assert.False(t, sea.ProposeTrade(teamID, sea.teams[1].ID, []string{"ghost"}, []string{"ghost"}).Success)
}

func TestProposeTradeAtomicOnFailure(t *testing.T) {
	sea := newRosterSeason(t)
	from := sea.teams[0]
	to := sea.teams[1]
	from.Players[0].Salary = 9_000_000
	from.Players[1].Salary = 9_000_000
	to.Players[0].Salary = 18_000_000

	// Fill the destination roster so a two-for-one blows its limit after
	// the salary rule has already passed.
	for i := len(to.Players); i < models.MaxRosterSize; i++ {
		to.Players = append(to.Players, &models.Player{
			ID:     fmt.Sprintf("filler-%d", i),
			Name:   fmt.Sprintf("Filler %d", i),
			TeamID: to.ID,
			Energy: 100,
			Salary: 1_000_000,
		})
	}
	to.RefreshRotation()
	sea.bump()
	fromBefore := rosterIDs(from)
	toBefore := rosterIDs(to)

	res := sea.ProposeTrade(from.ID, to.ID,
		[]string{from.Players[0].ID, from.Players[1].ID},
		[]string{to.Players[0].ID})
	require.False(t, res.Success)

	assert.Equal(t, fromBefore, rosterIDs(from))
	assert.Equal(t, toBefore, rosterIDs(to))
}

func TestSignFreeAgent(t *testing.T) {
	sea := newRosterSeason(t)
	team := sea.teams[0]
	agent := sea.freeAgents[0]

	// The league data roster of 10 leaves room to sign.
	res := sea.SignFreeAgent(team.ID, agent.ID, 8_000_000, 2)
	require.True(t, res.Success, res.Message)

	signed := team.FindPlayer(agent.ID)
	require.NotNil(t, signed)
	assert.Equal(t, int64(8_000_000), signed.Salary)
	assert.Equal(t, 2, signed.ContractYears)
	assert.Equal(t, team.ID, signed.TeamID)
	assert.Len(t, sea.GetFreeAgents(), 1)

	// Signing the same player twice fails: the pool no longer has them.
	assert.False(t, sea.SignFreeAgent(team.ID, agent.ID, 1_000_000, 1).Success)
}

func TestSignFreeAgentCapTolerance(t *testing.T) {
	sea := newRosterSeason(t)
	team := sea.teams[0]

	// Push payroll right up against the tolerance ceiling.
	ceiling := int64(float64(sea.salaryCap) * models.CapOverage)
	team.Players[0].Salary = ceiling - team.Payroll() + team.Players[0].Salary - 1_000_000
	sea.bump()

	res := sea.SignFreeAgent(team.ID, sea.freeAgents[0].ID, 5_000_000, 1)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "cap space")

	res = sea.SignFreeAgent(team.ID, sea.freeAgents[0].ID, 1_000_000, 1)
	assert.True(t, res.Success, res.Message)
}

func TestReleasePlayerDeadCap(t *testing.T) {
	sea := newRosterSeason(t)
	team := sea.teams[0]
	player := team.Players[0]
	player.Salary = 12_000_000
	sea.bump()

	payrollBefore, err := sea.GetTeamCapInfo(team.ID)
	require.NoError(t, err)

	res := sea.ReleasePlayer(team.ID, player.ID)
	require.True(t, res.Success, res.Message)

	assert.Nil(t, team.FindPlayer(player.ID))
	assert.Equal(t, int64(6_000_000), team.DeadCap)
	assert.Empty(t, player.TeamID)

	// Cap info reflects the release: roster salary gone, half kept as dead cap.
	payrollAfter, err := sea.GetTeamCapInfo(team.ID)
	require.NoError(t, err)
	assert.Equal(t, payrollBefore.Payroll-12_000_000+6_000_000, payrollAfter.Payroll)
	assert.Equal(t, team.Payroll(), payrollAfter.Payroll)

	// The released player is signable again.
	res = sea.SignFreeAgent(sea.teams[1].ID, player.ID, 3_000_000, 1)
	assert.True(t, res.Success, res.Message)

	assert.False(t, sea.ReleasePlayer(team.ID, "ghost").Success)
	assert.False(t, sea.ReleasePlayer("ghost", player.ID).Success)
}

func TestGetTeamCapInfo(t *testing.T) {
	sea := newRosterSeason(t)
	team := sea.teams[0]

	info, err := sea.GetTeamCapInfo(team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.Payroll(), info.Payroll)
	assert.Equal(t, sea.salaryCap-info.Payroll, info.Space)

	_, err = sea.GetTeamCapInfo("ghost")
	var nfErr *models.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestGetTeamSnapshotIsolated(t *testing.T) {
	sea := newRosterSeason(t)
	team := sea.teams[0]

	snap, err := sea.GetTeam(team.ID)
	require.NoError(t, err)
	require.NotEmpty(t, snap.Players)

	snap.Players[0].Salary = 1
	assert.NotEqual(t, int64(1), team.Players[0].Salary)

	_, err = sea.GetTeam("ghost")
	var nfErr *models.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestTransactionLogOrdered(t *testing.T) {
	sea := newRosterSeason(t)
	team := sea.teams[0]

	sea.ReleasePlayer(team.ID, team.Players[0].ID)
	sea.SignFreeAgent(team.ID, sea.freeAgents[0].ID, 2_000_000, 1)

	log := sea.GetTransactionLog()
	require.Len(t, log, 2)
	assert.Equal(t, models.TxRelease, log[0].Type)
	assert.Equal(t, models.TxSignFA, log[1].Type)
	for _, tx := range log {
		assert.Equal(t, sea.year, tx.Season)
		assert.NotEmpty(t, tx.ID)
	}
}
