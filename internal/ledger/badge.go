package ledger

// badgeTier pairs a badge name with the minimum score that earns it.
type badgeTier struct {
	Name      string
	Threshold int
}

// Tiers ordered highest first; the first threshold met wins. A score below
// every threshold is still an Eco Beginner.
var badgeTiers = []badgeTier{
	{"Climate Champion", 200},
	{"Eco Hero", 100},
	{"Green Achiever", 50},
	{"Planet Helper", 20},
	{"Eco Beginner", 0},
}

// BadgeFor maps a score to the highest tier it qualifies for. This is the
// single badge implementation: per-submission feedback and leaderboard rows
// both go through it.
func BadgeFor(score int) string {
	for _, t := range badgeTiers {
		if score >= t.Threshold {
			return t.Name
		}
	}
	return badgeTiers[len(badgeTiers)-1].Name
}
