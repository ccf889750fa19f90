// Package incident holds pollution-incident reports submitted by the
// public. Intake is a plain structured record; attachments are not
// accepted.
package incident

import "time"

// Categories accepted by the intake endpoint.
var Categories = []string{"air", "water", "waste", "noise", "other"}

// ValidCategory reports whether c is an accepted category.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Report is one submitted pollution incident.
type Report struct {
	ID          string    `json:"id"`
	Reporter    string    `json:"reporter,omitempty"`
	Location    string    `json:"location"`
	Region      string    `json:"region,omitempty"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
