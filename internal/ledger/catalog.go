package ledger

import "fmt"

// Action is one catalog entry: a label users pick and the points it earns.
type Action struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// catalog is the fixed action list. Immutable configuration, not user data.
var catalog = []Action{
	{Label: "Planted a tree or sapling", Points: 30},
	{Label: "Walked or cycled instead of driving", Points: 10},
	{Label: "Segregated your waste properly", Points: 10},
	{Label: "Saved water consciously", Points: 10},
	{Label: "Turned off unused appliances", Points: 5},
	{Label: "Reduced screen time", Points: 5},
	{Label: "Used reusable bags", Points: 10},
	{Label: "Avoided food waste", Points: 10},
	{Label: "Kept AC at 25C or used fan", Points: 5},
	{Label: "Used eco-friendly cleaners", Points: 5},
}

var pointsByLabel = func() map[string]int {
	m := make(map[string]int, len(catalog))
	for _, a := range catalog {
		m[a.Label] = a.Points
	}
	return m
}()

// Catalog returns the action list in its fixed order.
func Catalog() []Action {
	out := make([]Action, len(catalog))
	copy(out, catalog)
	return out
}

// ScoreActions sums the point values of the selected labels.
// Returns ErrEmptySelection for an empty list and ErrUnknownAction for any
// label not in the catalog.
func ScoreActions(selected []string) (int, error) {
	if len(selected) == 0 {
		return 0, ErrEmptySelection
	}

	total := 0
	for _, label := range selected {
		pts, ok := pointsByLabel[label]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownAction, label)
		}
		total += pts
	}
	return total, nil
}
