package bayesian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movieModel(t *testing.T) (ClassStatistics, Priors) {
	stats, err := NewEstimator().Estimate(movieSamples)
	require.NoError(t, err)
	return stats, CountPriors(movieSamples)
}

func TestScorer_Score(t *testing.T) {
	stats, priors := movieModel(t)

	tests := []struct {
		name     string
		scorer   Scorer
		tokens   []string
		expected map[string]float64
	}{
		{
			name:     "seen in one class",
			scorer:   NewScorer(),
			tokens:   []string{"good"},
			expected: map[string]float64{"pos": 2 * 2.0 / 3, "neg": 1.0 / 3},
		},
		{
			name:     "seen in both classes",
			scorer:   NewScorer(),
			tokens:   []string{"good", "movie"},
			expected: map[string]float64{"pos": 2 * 1.5 * 2.0 / 3, "neg": 2 * 1.0 / 3},
		},
		{
			name:     "unknown tokens are neutral",
			scorer:   NewScorer(),
			tokens:   []string{"plot", "twist"},
			expected: map[string]float64{"pos": 2.0 / 3, "neg": 1.0 / 3},
		},
		{
			name:     "unknown token factor",
			scorer:   Scorer{UnknownTokenFactor: 0.001},
			tokens:   []string{"good"},
			expected: map[string]float64{"pos": 2 * 2.0 / 3, "neg": 0.001 / 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sv := tt.scorer.Score(tt.tokens, stats, priors)
			require.Len(t, sv, 2)

			assert.Equal(t, "pos", sv[0].Class)
			assert.Equal(t, "neg", sv[1].Class)
			for class, score := range sv.Map() {
				assert.InDelta(t, tt.expected[class], score, 1e-12, class)
			}
		})
	}
}

func TestScorer_Score_noTokens(t *testing.T) {
	stats, priors := movieModel(t)

	assert.Nil(t, NewScorer().Score(nil, stats, priors))
	assert.Nil(t, NewScorer().Score([]string{}, stats, priors))
}

func TestArgmax(t *testing.T) {
	tests := []struct {
		name     string
		sv       ScoreVector
		expected string
	}{
		{
			name:     "single",
			sv:       ScoreVector{{Class: "a", Score: 0.1}},
			expected: "a",
		},
		{
			name:     "max in the middle",
			sv:       ScoreVector{{"a", 0.1}, {"b", 0.7}, {"c", 0.2}},
			expected: "b",
		},
		{
			name:     "first wins ties",
			sv:       ScoreVector{{"a", 0.1}, {"b", 0.5}, {"c", 0.5}},
			expected: "b",
		},
		{
			name:     "all zero",
			sv:       ScoreVector{{"a", 0}, {"b", 0}},
			expected: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, err := Argmax(tt.sv)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, label)
		})
	}
}

func TestArgmax_empty(t *testing.T) {
	_, err := Argmax(nil)
	assert.ErrorIs(t, err, ErrEmptyScoreVector)
}
