package season

import (
	"fmt"

	"github.com/google/uuid"

	"league-engine/models"
)

// OpResult is the outcome of a roster or economy command. Rule violations
// come back as Success=false with a message, never as errors, so callers can
// branch without error handling.
type OpResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func failure(format string, args ...interface{}) OpResult {
	return OpResult{Success: false, Message: fmt.Sprintf(format, args...)}
}

// removeFromRoster detaches a player from the team roster and refreshes the
// rotation. Returns nil if the player is not on the team.
func removeFromRoster(team *models.Team, playerID string) *models.Player {
	for i, p := range team.Players {
		if p.ID == playerID {
			team.Players = append(team.Players[:i], team.Players[i+1:]...)
			p.TeamID = ""
			team.RefreshRotation()
			return p
		}
	}
	return nil
}

// addToRoster appends a player to the team roster and refreshes the
// rotation. Fails when the roster is already at the maximum size.
func addToRoster(team *models.Team, p *models.Player) bool {
	if len(team.Players) >= models.MaxRosterSize {
		return false
	}
	p.TeamID = team.ID
	team.Players = append(team.Players, p)
	team.RefreshRotation()
	return true
}

// recomputePayrolls rebuilds the cap cache for every team: payroll is the
// sum of roster salaries plus dead cap, recomputed fresh.
func (s *Season) recomputePayrolls() {
	info := make(map[string]models.CapInfo, len(s.teams))
	for _, t := range s.teams {
		payroll := t.Payroll()
		info[t.ID] = models.CapInfo{
			TeamID:        t.ID,
			Payroll:       payroll,
			Space:         s.salaryCap - payroll,
			OverCap:       payroll > s.salaryCap,
			OverLuxuryTax: float64(payroll) > float64(s.salaryCap)*models.LuxuryTaxMultiplier,
		}
	}
	s.capInfo = info
	s.capGen = s.gen
	s.capFresh = true
}

// GetTeamCapInfo returns the cap position for one team, recomputing the
// cache when any mutation has made it stale.
func (s *Season) GetTeamCapInfo(teamID string) (models.CapInfo, error) {
	if !s.capFresh || s.capGen != s.gen {
		s.recomputePayrolls()
	}
	info, ok := s.capInfo[teamID]
	if !ok {
		return models.CapInfo{}, &models.NotFoundError{Kind: "team", ID: teamID}
	}
	return info, nil
}

// ProposeTrade validates and, if legal, atomically executes a player trade
// between two teams. Either the whole trade applies or nothing does.
func (s *Season) ProposeTrade(fromTeamID, toTeamID string, fromPlayerIDs, toPlayerIDs []string) OpResult {
	fromTeam := s.teamsByID[fromTeamID]
	toTeam := s.teamsByID[toTeamID]
	if fromTeam == nil || toTeam == nil {
		return failure("team not found")
	}
	if fromTeamID == toTeamID {
		return failure("cannot trade with the same team")
	}

	fromPlayers := resolveRosterPlayers(fromTeam, fromPlayerIDs)
	toPlayers := resolveRosterPlayers(toTeam, toPlayerIDs)
	if len(fromPlayers) == 0 && len(toPlayers) == 0 {
		return failure("empty trade")
	}

	fromSalary := totalSalary(fromPlayers)
	toSalary := totalSalary(toPlayers)
	bigger, smaller := fromSalary, toSalary
	if toSalary > fromSalary {
		bigger, smaller = toSalary, fromSalary
	}
	if float64(smaller) < float64(bigger)*models.TradeSalaryTolerance {
		return failure("salaries out of balance (75%% rule)")
	}

	if len(fromTeam.Players)-len(fromPlayers)+len(toPlayers) > models.MaxRosterSize ||
		len(toTeam.Players)-len(toPlayers)+len(fromPlayers) > models.MaxRosterSize {
		return failure("trade would exceed roster limit")
	}

	// All rules passed; nothing below can fail, so the swap is atomic.
	for _, p := range fromPlayers {
		removeFromRoster(fromTeam, p.ID)
	}
	for _, p := range toPlayers {
		removeFromRoster(toTeam, p.ID)
	}
	for _, p := range fromPlayers {
		addToRoster(toTeam, p)
	}
	for _, p := range toPlayers {
		addToRoster(fromTeam, p)
	}

	s.bump()
	s.recomputePayrolls()
	s.logTransaction(models.Transaction{
		Type:       models.TxTrade,
		FromTeamID: fromTeamID,
		ToTeamID:   toTeamID,
		PlayerIDs:  append(append([]string{}, fromPlayerIDs...), toPlayerIDs...),
		FromSalary: fromSalary,
		ToSalary:   toSalary,
	})

	s.logger.WithFields(map[string]interface{}{
		"from": fromTeam.Name,
		"to":   toTeam.Name,
	}).Info("trade executed")
	return OpResult{Success: true, Message: "trade completed"}
}

// SignFreeAgent moves a pooled free agent onto a team roster with the given
// contract terms, respecting roster size and the cap overage tolerance.
func (s *Season) SignFreeAgent(teamID, playerID string, salary int64, years int) OpResult {
	team := s.teamsByID[teamID]
	if team == nil {
		return failure("team not found")
	}

	idx := -1
	for i, p := range s.freeAgents {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return failure("player is not a free agent")
	}

	if len(team.Players) >= models.MaxRosterSize {
		return failure("roster is full")
	}

	if float64(team.Payroll()+salary) > float64(s.salaryCap)*models.CapOverage {
		return failure("not enough cap space")
	}

	player := s.freeAgents[idx]
	player.Salary = salary
	player.ContractYears = years
	s.freeAgents = append(s.freeAgents[:idx], s.freeAgents[idx+1:]...)
	addToRoster(team, player)

	s.bump()
	s.recomputePayrolls()
	s.logTransaction(models.Transaction{
		Type:      models.TxSignFA,
		TeamID:    teamID,
		PlayerIDs: []string{playerID},
		Salary:    salary,
		Years:     years,
	})

	s.logger.WithFields(map[string]interface{}{
		"team":   team.Name,
		"player": player.Name,
		"salary": salary,
	}).Info("free agent signed")
	return OpResult{Success: true, Message: "player signed"}
}

// ReleasePlayer detaches a player into the free-agent pool. Half of the
// released salary stays on the team's books as dead cap for the season.
func (s *Season) ReleasePlayer(teamID, playerID string) OpResult {
	team := s.teamsByID[teamID]
	if team == nil {
		return failure("team not found")
	}

	player := removeFromRoster(team, playerID)
	if player == nil {
		return failure("player not found on team")
	}

	penalty := player.Salary / 2
	team.DeadCap += penalty
	s.freeAgents = append(s.freeAgents, player)

	s.bump()
	s.recomputePayrolls()
	s.logTransaction(models.Transaction{
		Type:      models.TxRelease,
		TeamID:    teamID,
		PlayerIDs: []string{playerID},
		Penalty:   penalty,
	})

	s.logger.WithFields(map[string]interface{}{
		"team":    team.Name,
		"player":  player.Name,
		"penalty": penalty,
	}).Info("player released")
	return OpResult{Success: true, Message: "player released"}
}

func (s *Season) logTransaction(tx models.Transaction) {
	tx.ID = uuid.New().String()
	tx.Day = s.day
	tx.Season = s.year
	s.txLog = append(s.txLog, tx)
}

// GetTransactionLog returns the ordered audit log as a snapshot.
func (s *Season) GetTransactionLog() []models.Transaction {
	out := make([]models.Transaction, len(s.txLog))
	copy(out, s.txLog)
	return out
}

// GetFreeAgents returns value copies of the free-agent pool.
func (s *Season) GetFreeAgents() []models.Player {
	out := make([]models.Player, len(s.freeAgents))
	for i, p := range s.freeAgents {
		out[i] = copyPlayer(p)
	}
	return out
}

// TeamSnapshot is a read-only view of one team, with derived values filled.
type TeamSnapshot struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Mythology  string            `json:"mythology,omitempty"`
	Conference models.Conference `json:"conference"`
	Division   string            `json:"division"`
	Players    []models.Player   `json:"players"`
	RotationID []string          `json:"rotation_ids"`
	Stats      models.TeamRecord `json:"stats"`
	Form       []string          `json:"form"`
	FormFactor float64           `json:"form_factor"`
	Power      float64           `json:"power"`
	Cap        models.CapInfo    `json:"cap"`
}

// GetTeam returns a snapshot of one team; the caller cannot reach internal
// state through it.
func (s *Season) GetTeam(teamID string) (*TeamSnapshot, error) {
	team := s.teamsByID[teamID]
	if team == nil {
		return nil, &models.NotFoundError{Kind: "team", ID: teamID}
	}

	capInfo, err := s.GetTeamCapInfo(teamID)
	if err != nil {
		return nil, err
	}

	snap := &TeamSnapshot{
		ID:         team.ID,
		Name:       team.Name,
		Mythology:  team.Mythology,
		Conference: team.Conference,
		Division:   team.Division,
		Stats:      team.Stats,
		Form:       append([]string{}, team.Form...),
		FormFactor: team.FormFactor,
		Power:      models.TeamPower(team, false),
		Cap:        capInfo,
	}
	for _, p := range team.Players {
		snap.Players = append(snap.Players, copyPlayer(p))
	}
	for _, p := range team.Rotation {
		snap.RotationID = append(snap.RotationID, p.ID)
	}
	return snap, nil
}

// Matchup returns independent deep copies of two teams, suitable for handing
// to code that runs outside the season's synchronization, such as forecast
// batches.
func (s *Season) Matchup(homeID, awayID string) (*models.Team, *models.Team, error) {
	home, ok := s.teamsByID[homeID]
	if !ok {
		return nil, nil, &models.NotFoundError{Kind: "team", ID: homeID}
	}
	away, ok := s.teamsByID[awayID]
	if !ok {
		return nil, nil, &models.NotFoundError{Kind: "team", ID: awayID}
	}
	return copyTeam(home), copyTeam(away), nil
}

// RecentGames returns the bounded recent-results feed, newest last.
func (s *Season) RecentGames() []RecentGame {
	out := make([]RecentGame, len(s.recent))
	copy(out, s.recent)
	return out
}

func resolveRosterPlayers(team *models.Team, ids []string) []*models.Player {
	players := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		if p := team.FindPlayer(id); p != nil {
			players = append(players, p)
		}
	}
	return players
}

func totalSalary(players []*models.Player) int64 {
	var total int64
	for _, p := range players {
		total += p.Salary
	}
	return total
}

func copyPlayer(p *models.Player) models.Player {
	out := *p
	if p.Injury != nil {
		inj := *p.Injury
		out.Injury = &inj
	}
	return out
}
