package bayesian

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimuls/textclassifier/entity"
)

func numberedSamples(n int) []entity.TokenizedSample {
	samples := make([]entity.TokenizedSample, n)
	for i := range samples {
		samples[i] = entity.TokenizedSample{
			Tokens: []string{"t" + strconv.Itoa(i)},
			Label:  strconv.Itoa(i),
		}
	}
	return samples
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		ratio    float64
		training int
	}{
		{name: "four fifths", n: 10, ratio: 0.8, training: 8},
		{name: "floor", n: 7, ratio: 0.75, training: 5},
		{name: "all training", n: 3, ratio: 1, training: 3},
		{name: "no training", n: 3, ratio: 0.2, training: 0},
		{name: "empty", n: 0, ratio: 0.5, training: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := numberedSamples(tt.n)

			p, err := Split(samples, tt.ratio)
			require.NoError(t, err)

			assert.Len(t, p.Training, tt.training)
			assert.Len(t, p.Holdout, tt.n-tt.training)

			joined := append(append([]entity.TokenizedSample{}, p.Training...),
				p.Holdout...)
			assert.Equal(t, samples, joined)
		})
	}
}

func TestSplit_invalidRatio(t *testing.T) {
	for _, ratio := range []float64{0, -0.5, 1.01} {
		_, err := Split(numberedSamples(3), ratio)
		assert.ErrorIs(t, err, ErrInvalidTrainRatio, "ratio %v", ratio)
	}
}

func TestSplit_trainingAppendDoesNotClobberHoldout(t *testing.T) {
	p, err := Split(numberedSamples(4), 0.5)
	require.NoError(t, err)

	_ = append(p.Training, entity.TokenizedSample{Label: "x"})
	assert.Equal(t, "2", p.Holdout[0].Label)
}

func TestShuffle(t *testing.T) {
	samples := numberedSamples(50)
	original := append([]entity.TokenizedSample(nil), samples...)

	shuffled := Shuffle(samples)

	assert.Equal(t, original, samples, "input must not be mutated")
	assert.ElementsMatch(t, samples, shuffled)
}

func TestShuffleWith_seeded(t *testing.T) {
	samples := numberedSamples(20)

	a := ShuffleWith(samples, rand.New(rand.NewSource(42)))
	b := ShuffleWith(samples, rand.New(rand.NewSource(42)))

	assert.Equal(t, a, b)
	assert.NotEqual(t, samples, a)
}
