// Package ledger holds the eco-score domain: the append-only submission
// record, the action catalog, badge assignment, and impact estimates.
// Persistence lives in internal/storage; everything here is pure.
package ledger

import (
	"errors"
	"time"
)

// ErrDuplicateSubmission means an entry already exists for the (email, date)
// key. At most one submission per user per day is ever recorded.
var ErrDuplicateSubmission = errors.New("already submitted today")

// ErrEmptySelection means a submission carried no actions. Nothing is
// recorded for a zero-action day.
var ErrEmptySelection = errors.New("no actions selected")

// ErrUnknownAction means a submitted action label is not in the catalog.
var ErrUnknownAction = errors.New("unknown action")

// ScoreEntry is one scored submission. Identity for uniqueness is
// (Email, Date); Name is display-only and may be corrected later across
// all of an email's entries.
type ScoreEntry struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Date      time.Time `json:"date"`
	Score     int       `json:"score"`
	Actions   []string  `json:"actions"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryPoint is one (date, score) pair from a user's history.
type HistoryPoint struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// LeaderboardRow is a derived monthly aggregate, never stored.
type LeaderboardRow struct {
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
	Badge      string `json:"badge"`
}

// Impact estimates the day's environmental savings from a score. The
// factors are the original campaign's lifestyle averages.
type Impact struct {
	CO2SavedKg  float64 `json:"co2_saved_kg"`
	WaterSavedL int     `json:"water_saved_l"`
}

// ImpactFor converts a score into its estimated savings.
func ImpactFor(score int) Impact {
	return Impact{
		CO2SavedKg:  float64(score) * 0.2,
		WaterSavedL: score * 5,
	}
}
