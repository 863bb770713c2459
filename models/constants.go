package models

// League-wide configuration constants. The economy rules (75% trade balance,
// 5% cap overage) are fixed fictional-league constants, not tunables.
const (
	PlayoffSeriesBestOf = 5
	SeriesWinsNeeded    = PlayoffSeriesBestOf/2 + 1

	DefaultSalaryCap     int64   = 120_000_000
	LuxuryTaxMultiplier          = 1.1
	CapOverage                   = 1.05
	TradeSalaryTolerance         = 0.75
	DefaultPlayerSalary  int64   = 5_000_000
	DefaultContractYears         = 3

	MaxRosterSize = 15
	MinRosterSize = 10
	RotationSize  = 8

	FormWindow        = 10
	RecentGamesWindow = 50

	HomeCourtMultiplier = 1.05
	TeamPowerFloor      = 40.0
	NeutralPower        = 50.0

	AttributeMax     = 99
	DefaultAttribute = 50
)

// Conference identifies one of the two league conferences.
type Conference string

const (
	East Conference = "EAST"
	West Conference = "WEST"
)

// Conferences lists the league conferences in canonical order.
var Conferences = []Conference{East, West}

// Valid reports whether c names a known conference.
func (c Conference) Valid() bool {
	return c == East || c == West
}
