package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/envsense/envsense/internal/ledger"
)

func TestBadgeFor_Thresholds(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "Eco Beginner"},
		{19, "Eco Beginner"},
		{20, "Planet Helper"},
		{49, "Planet Helper"},
		{50, "Green Achiever"},
		{99, "Green Achiever"},
		{100, "Eco Hero"},
		{199, "Eco Hero"},
		{200, "Climate Champion"},
		{1000, "Climate Champion"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ledger.BadgeFor(tt.score), "score %d", tt.score)
	}
}
