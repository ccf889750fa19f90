package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envsense/envsense/internal/ledger"
)

func TestScoreActions_SumsPoints(t *testing.T) {
	score, err := ledger.ScoreActions([]string{
		"Walked or cycled instead of driving",
		"Segregated your waste properly",
	})
	require.NoError(t, err)
	assert.Equal(t, 20, score)
}

func TestScoreActions_TreeIsTopScorer(t *testing.T) {
	score, err := ledger.ScoreActions([]string{"Planted a tree or sapling"})
	require.NoError(t, err)
	assert.Equal(t, 30, score)
}

func TestScoreActions_Empty(t *testing.T) {
	_, err := ledger.ScoreActions(nil)
	require.ErrorIs(t, err, ledger.ErrEmptySelection)

	_, err = ledger.ScoreActions([]string{})
	require.ErrorIs(t, err, ledger.ErrEmptySelection)
}

func TestScoreActions_UnknownLabel(t *testing.T) {
	_, err := ledger.ScoreActions([]string{"Flew a private jet"})
	require.ErrorIs(t, err, ledger.ErrUnknownAction)
}

func TestCatalog_IsCopied(t *testing.T) {
	first := ledger.Catalog()
	first[0].Points = 9999

	again := ledger.Catalog()
	assert.Equal(t, 30, again[0].Points, "mutating a returned catalog must not affect the source")
	assert.Len(t, again, 10)
}

func TestImpactFor(t *testing.T) {
	impact := ledger.ImpactFor(20)
	assert.InDelta(t, 4.0, impact.CO2SavedKg, 1e-9)
	assert.Equal(t, 100, impact.WaterSavedL)
}
