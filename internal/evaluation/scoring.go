// Package evaluation compares cohorts of executions against weighted
// criteria and picks a winner.
package evaluation

import (
	"sort"

	"github.com/promptarena/promptarena/internal/apperr"
	"github.com/promptarena/promptarena/internal/models"
)

// DefaultCriteria is applied when an evaluation is created without an
// explicit criteria mapping. Equal weights across the four standard axes.
func DefaultCriteria() map[string]float64 {
	return map[string]float64{
		"relevance":    0.25,
		"accuracy":     0.25,
		"completeness": 0.25,
		"readability":  0.25,
	}
}

// ValidateCriteria rejects empty mappings and non-positive weights.
func ValidateCriteria(criteria map[string]float64) error {
	if len(criteria) == 0 {
		return apperr.ErrInvalidCriteria
	}
	for name, weight := range criteria {
		if name == "" || weight <= 0 {
			return apperr.ErrInvalidCriteria
		}
	}
	return nil
}

// WeightedScore computes the normalized weighted sum for one execution:
// Σ_c scores[c]*criteria[c] / Σ_c criteria[c]. Criteria absent from scores
// contribute zero.
func WeightedScore(scores map[string]float64, criteria map[string]float64) float64 {
	var sum, totalWeight float64
	for name, weight := range criteria {
		sum += scores[name] * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return sum / totalWeight
}

// Winner picks the execution with the highest weighted score. Ties go to
// the lower execution id so re-scoring identical inputs is reproducible.
// Executions without any scores are skipped; ok is false when nothing is
// scored yet.
func Winner(matrix models.ScoreMatrix, criteria map[string]float64) (winner int64, ok bool) {
	ids := make([]int64, 0, len(matrix))
	for id := range matrix {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	best := -1.0
	for _, id := range ids {
		s := WeightedScore(matrix[id], criteria)
		if s > best {
			best = s
			winner = id
			ok = true
		}
	}
	return winner, ok
}
