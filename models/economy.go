package models

// CapInfo is a derived salary-cap position for one team. It is a cache:
// callers read it through the season accessor, which recomputes when stale.
type CapInfo struct {
	TeamID        string `json:"team_id"`
	Payroll       int64  `json:"payroll"`
	Space         int64  `json:"space"`
	OverCap       bool   `json:"over_cap"`
	OverLuxuryTax bool   `json:"over_luxury_tax"`
}

// Transaction types appearing in the audit log.
const (
	TxTrade   = "trade"
	TxSignFA  = "sign_fa"
	TxRelease = "release"
)

// Transaction is one append-only audit record. The log is never consulted by
// simulation logic.
type Transaction struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Day        int      `json:"day"`
	Season     int      `json:"season"`
	TeamID     string   `json:"team_id,omitempty"`
	FromTeamID string   `json:"from_team_id,omitempty"`
	ToTeamID   string   `json:"to_team_id,omitempty"`
	PlayerIDs  []string `json:"player_ids,omitempty"`
	FromSalary int64    `json:"from_salary,omitempty"`
	ToSalary   int64    `json:"to_salary,omitempty"`
	Salary     int64    `json:"salary,omitempty"`
	Years      int      `json:"years,omitempty"`
	Penalty    int64    `json:"penalty,omitempty"`
}
