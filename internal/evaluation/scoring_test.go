package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/models"
)

func TestValidateCriteria(t *testing.T) {
	assert.NoError(t, ValidateCriteria(map[string]float64{"relevance": 1}))
	assert.NoError(t, ValidateCriteria(DefaultCriteria()))

	assert.ErrorIs(t, ValidateCriteria(nil), apperr.ErrInvalidCriteria)
	assert.ErrorIs(t, ValidateCriteria(map[string]float64{}), apperr.ErrInvalidCriteria)
	assert.ErrorIs(t, ValidateCriteria(map[string]float64{"relevance": 0}), apperr.ErrInvalidCriteria)
	assert.ErrorIs(t, ValidateCriteria(map[string]float64{"relevance": -1}), apperr.ErrInvalidCriteria)
	assert.ErrorIs(t, ValidateCriteria(map[string]float64{"": 1}), apperr.ErrInvalidCriteria)
}

func TestWeightedScoreNormalizes(t *testing.T) {
	criteria := map[string]float64{"relevance": 3, "accuracy": 1}
	scores := map[string]float64{"relevance": 8, "accuracy": 4}

	// (8*3 + 4*1) / 4 = 7
	assert.InDelta(t, 7.0, WeightedScore(scores, criteria), 1e-9)
}

func TestWeightedScoreMonotonic(t *testing.T) {
	criteria := DefaultCriteria()
	scores := map[string]float64{"relevance": 5, "accuracy": 5, "completeness": 5, "readability": 5}

	base := WeightedScore(scores, criteria)
	for name := range criteria {
		bumped := map[string]float64{}
		for k, v := range scores {
			bumped[k] = v
		}
		bumped[name] += 1

		assert.Greater(t, WeightedScore(bumped, criteria), base,
			"raising %s alone must raise the total", name)
	}
}

func TestWinnerPicksHighest(t *testing.T) {
	criteria := map[string]float64{"relevance": 1}
	matrix := models.ScoreMatrix{
		1: {"relevance": 8},
		2: {"relevance": 5},
	}

	winner, ok := Winner(matrix, criteria)
	require.True(t, ok)
	assert.Equal(t, int64(1), winner)
}

func TestWinnerTieBreaksOnLowerID(t *testing.T) {
	criteria := DefaultCriteria()
	tied := map[string]float64{"relevance": 7, "accuracy": 7, "completeness": 7, "readability": 7}
	matrix := models.ScoreMatrix{
		9: tied,
		3: tied,
		5: tied,
	}

	winner, ok := Winner(matrix, criteria)
	require.True(t, ok)
	assert.Equal(t, int64(3), winner)
}

func TestWinnerDeterministic(t *testing.T) {
	criteria := map[string]float64{"relevance": 0.6, "accuracy": 0.4}
	matrix := models.ScoreMatrix{
		10: {"relevance": 6.5, "accuracy": 8},
		11: {"relevance": 7, "accuracy": 7.2},
		12: {"relevance": 5, "accuracy": 9.9},
	}

	first, ok := Winner(matrix, criteria)
	require.True(t, ok)
	for i := 0; i < 50; i++ {
		again, ok := Winner(matrix, criteria)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestWinnerEmptyMatrix(t *testing.T) {
	_, ok := Winner(models.ScoreMatrix{}, DefaultCriteria())
	assert.False(t, ok)
}
