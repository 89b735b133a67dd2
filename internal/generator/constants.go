package generator

// Session days drawn per ISO week.
const (
	minDaysPerWeek = 3
	maxDaysPerWeek = 4
	defaultPerDay  = 3
)

var defaultShooters = []string{ //nolint:gochecknoglobals // read-only squad list
	"Arjun", "Bilal", "Carlos", "Dawit", "Emeka", "Farid", "Goran", "Hiroshi",
	"Ivan", "Jonas", "Kofi", "Luca", "Mateo", "Nikhil", "Omar", "Pavel",
	"Quentin", "Rafael", "Sami", "Tariq", "Umar",
}

var defaultKeepers = []string{"Viktor", "Wesley"} //nolint:gochecknoglobals // read-only squad list

// Outcome weights in goal, saved, out order.
var outcomeProfiles = [][]float64{ //nolint:gochecknoglobals // read-only distribution pool
	{0.60, 0.20, 0.20}, {0.70, 0.15, 0.15}, {0.50, 0.30, 0.20}, {0.65, 0.20, 0.15},
	{0.75, 0.10, 0.15}, {0.55, 0.25, 0.20}, {0.80, 0.10, 0.10}, {0.60, 0.30, 0.10},
}

// Zone weights in model.Zones() order.
var zoneProfiles = [][]float64{ //nolint:gochecknoglobals // read-only distribution pool
	{0.20, 0.20, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10}, {0.10, 0.10, 0.20, 0.20, 0.10, 0.10, 0.10, 0.10},
	{0.10, 0.10, 0.10, 0.10, 0.20, 0.20, 0.10, 0.10}, {0.20, 0.10, 0.10, 0.10, 0.10, 0.10, 0.15, 0.15},
	{0.10, 0.20, 0.10, 0.10, 0.10, 0.10, 0.15, 0.15}, {0.15, 0.15, 0.10, 0.10, 0.10, 0.10, 0.10, 0.20},
	{0.10, 0.10, 0.15, 0.15, 0.10, 0.10, 0.20, 0.10}, {0.10, 0.10, 0.10, 0.10, 0.10, 0.20, 0.15, 0.25},
}
