// Package boss holds the static boss catalog the checklist is validated against.
package boss

// Cadence is how often a boss can be cleared.
type Cadence string

const (
	Weekly  Cadence = "weekly"
	Monthly Cadence = "monthly"
)

// Boss is one boss-difficulty instance.
type Boss struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Difficulty string  `json:"difficulty"`
	Cadence    Cadence `json:"cadence"`
}

var weekly = []Boss{
	{ID: "zakum-chaos", Name: "Zakum", Difficulty: "chaos", Cadence: Weekly},
	{ID: "magnus-hard", Name: "Magnus", Difficulty: "hard", Cadence: Weekly},
	{ID: "hilla-hard", Name: "Hilla", Difficulty: "hard", Cadence: Weekly},
	{ID: "papulatus-chaos", Name: "Papulatus", Difficulty: "chaos", Cadence: Weekly},
	{ID: "pierre-chaos", Name: "Pierre", Difficulty: "chaos", Cadence: Weekly},
	{ID: "vonbon-chaos", Name: "Von Bon", Difficulty: "chaos", Cadence: Weekly},
	{ID: "crimson-queen-chaos", Name: "Crimson Queen", Difficulty: "chaos", Cadence: Weekly},
	{ID: "vellum-chaos", Name: "Vellum", Difficulty: "chaos", Cadence: Weekly},
	{ID: "pink-bean-chaos", Name: "Pink Bean", Difficulty: "chaos", Cadence: Weekly},
	{ID: "cygnus-normal", Name: "Cygnus", Difficulty: "normal", Cadence: Weekly},
	{ID: "lotus-normal", Name: "Lotus", Difficulty: "normal", Cadence: Weekly},
	{ID: "lotus-hard", Name: "Lotus", Difficulty: "hard", Cadence: Weekly},
	{ID: "damien-normal", Name: "Damien", Difficulty: "normal", Cadence: Weekly},
	{ID: "damien-hard", Name: "Damien", Difficulty: "hard", Cadence: Weekly},
	{ID: "guardian-angel-slime-normal", Name: "Guardian Angel Slime", Difficulty: "normal", Cadence: Weekly},
	{ID: "lucid-normal", Name: "Lucid", Difficulty: "normal", Cadence: Weekly},
	{ID: "lucid-hard", Name: "Lucid", Difficulty: "hard", Cadence: Weekly},
	{ID: "will-normal", Name: "Will", Difficulty: "normal", Cadence: Weekly},
	{ID: "will-hard", Name: "Will", Difficulty: "hard", Cadence: Weekly},
	{ID: "gloom-normal", Name: "Gloom", Difficulty: "normal", Cadence: Weekly},
	{ID: "gloom-chaos", Name: "Gloom", Difficulty: "chaos", Cadence: Weekly},
	{ID: "darknell-normal", Name: "Darknell", Difficulty: "normal", Cadence: Weekly},
	{ID: "darknell-hard", Name: "Darknell", Difficulty: "hard", Cadence: Weekly},
	{ID: "verus-hilla-normal", Name: "Verus Hilla", Difficulty: "normal", Cadence: Weekly},
	{ID: "verus-hilla-hard", Name: "Verus Hilla", Difficulty: "hard", Cadence: Weekly},
	{ID: "seren-normal", Name: "Seren", Difficulty: "normal", Cadence: Weekly},
	{ID: "seren-hard", Name: "Seren", Difficulty: "hard", Cadence: Weekly},
	{ID: "kalos-normal", Name: "Kalos", Difficulty: "normal", Cadence: Weekly},
	{ID: "kaling-normal", Name: "Kaling", Difficulty: "normal", Cadence: Weekly},
}

// monthly order matters: the first entry receives legacy single-clear data.
var monthly = []Boss{
	{ID: "black-mage-hard", Name: "Black Mage", Difficulty: "hard", Cadence: Monthly},
	{ID: "black-mage-extreme", Name: "Black Mage", Difficulty: "extreme", Cadence: Monthly},
}

var byID = func() map[string]Boss {
	out := make(map[string]Boss, len(weekly)+len(monthly))
	for _, b := range weekly {
		out[b.ID] = b
	}
	for _, b := range monthly {
		out[b.ID] = b
	}
	return out
}()

// WeeklyBosses returns the weekly catalog in display order.
func WeeklyBosses() []Boss { return append([]Boss(nil), weekly...) }

// MonthlyBosses returns the monthly catalog in display order.
func MonthlyBosses() []Boss { return append([]Boss(nil), monthly...) }

// MonthlyIDs returns the known monthly boss IDs in catalog order.
func MonthlyIDs() []string {
	ids := make([]string, len(monthly))
	for i, b := range monthly {
		ids[i] = b.ID
	}
	return ids
}

// Lookup finds a boss by ID.
func Lookup(id string) (Boss, bool) {
	b, ok := byID[id]
	return b, ok
}

// IsWeekly reports whether id is a known weekly boss.
func IsWeekly(id string) bool {
	b, ok := byID[id]
	return ok && b.Cadence == Weekly
}

// IsMonthly reports whether id is a known monthly boss.
func IsMonthly(id string) bool {
	b, ok := byID[id]
	return ok && b.Cadence == Monthly
}
