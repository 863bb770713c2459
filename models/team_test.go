package models

import (
	"math"
	"testing"
)

func TestRecordResultStreaks(t *testing.T) {
	team := &Team{ID: "t", Name: "Test"}

	team.RecordResult(true, true, 100, 90)
	team.RecordResult(true, false, 95, 80)
	if team.Stats.Streak != 2 {
		t.Errorf("Expected win streak 2, got %d", team.Stats.Streak)
	}

	team.RecordResult(false, true, 80, 95)
	if team.Stats.Streak != -1 {
		t.Errorf("Expected streak -1 after a loss, got %d", team.Stats.Streak)
	}
	team.RecordResult(false, false, 70, 95)
	if team.Stats.Streak != -2 {
		t.Errorf("Expected streak -2, got %d", team.Stats.Streak)
	}

	if team.Stats.Games != 4 || team.Stats.Wins != 2 || team.Stats.Losses != 2 {
		t.Errorf("Record = %d-%d over %d games, want 2-2 over 4",
			team.Stats.Wins, team.Stats.Losses, team.Stats.Games)
	}
	if team.Stats.HomeWins != 1 || team.Stats.AwayWins != 1 {
		t.Errorf("Home/away wins = %d/%d, want 1/1", team.Stats.HomeWins, team.Stats.AwayWins)
	}
	if got := team.Stats.Diff(); got != 345-360 {
		t.Errorf("Diff() = %d, want %d", got, 345-360)
	}
}

func TestRecordResultFormWindow(t *testing.T) {
	team := &Team{ID: "t", Name: "Test"}
	for i := 0; i < FormWindow+5; i++ {
		team.RecordResult(i%2 == 0, true, 100, 90)
	}
	if len(team.Form) != FormWindow {
		t.Errorf("Form buffer length = %d, want %d", len(team.Form), FormWindow)
	}
}

func TestRecordResultFormFactor(t *testing.T) {
	team := &Team{ID: "t", Name: "Test"}
	for i := 0; i < 10; i++ {
		team.RecordResult(true, true, 100, 90)
	}
	// A team winning everything sits at the top of the form band.
	if math.Abs(team.FormFactor-1.1) > 1e-9 {
		t.Errorf("FormFactor = %f, want 1.1 for a perfect record", team.FormFactor)
	}

	losing := &Team{ID: "l", Name: "Losing"}
	for i := 0; i < 10; i++ {
		losing.RecordResult(false, true, 80, 100)
	}
	if math.Abs(losing.FormFactor-0.9) > 1e-9 {
		t.Errorf("FormFactor = %f, want 0.9 for a winless record", losing.FormFactor)
	}
}

func TestPayrollIncludesDeadCap(t *testing.T) {
	team := &Team{
		ID:      "t",
		Name:    "Test",
		DeadCap: 3_000_000,
		Players: []*Player{
			{ID: "a", Salary: 10_000_000},
			{ID: "b", Salary: 7_500_000},
		},
	}
	if got := team.Payroll(); got != 20_500_000 {
		t.Errorf("Payroll() = %d, want 20500000", got)
	}
}

func TestRefreshRotationCapsAtRotationSize(t *testing.T) {
	team := &Team{ID: "t", Name: "Test"}
	for i := 0; i < MaxRosterSize; i++ {
		team.Players = append(team.Players, flatPlayer(50, 100))
	}
	team.RefreshRotation()
	if len(team.Rotation) != RotationSize {
		t.Errorf("Rotation size = %d, want %d", len(team.Rotation), RotationSize)
	}

	small := &Team{ID: "s", Name: "Small", Players: team.Players[:3]}
	small.RefreshRotation()
	if len(small.Rotation) != 3 {
		t.Errorf("Rotation size = %d, want 3 for a short roster", len(small.Rotation))
	}
}
