package bayesian

import (
	"math"
	"math/rand"
	"time"

	"github.com/dimuls/textclassifier/entity"
)

// DefaultTrainRatio is the share of a corpus used for training when the
// caller has no preference.
const DefaultTrainRatio = 0.8

// Partition is a corpus split into training and holdout samples.
type Partition struct {
	Training []entity.TokenizedSample
	Holdout  []entity.TokenizedSample
}

// Split puts the first floor(len(samples) * trainRatio) samples into the
// training set and the rest into the holdout set. Order is preserved.
func Split(samples []entity.TokenizedSample, trainRatio float64) (Partition, error) {
	if !(trainRatio > 0 && trainRatio <= 1) {
		return Partition{}, ErrInvalidTrainRatio
	}

	m := int(math.Floor(float64(len(samples)) * trainRatio))

	return Partition{
		Training: samples[:m:m],
		Holdout:  samples[m:],
	}, nil
}

// Shuffle returns a randomly permuted copy of samples using a freshly seeded
// source.
func Shuffle(samples []entity.TokenizedSample) []entity.TokenizedSample {
	return ShuffleWith(samples, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// ShuffleWith returns a copy of samples permuted by rng.
func ShuffleWith(samples []entity.TokenizedSample,
	rng *rand.Rand) []entity.TokenizedSample {

	shuffled := append([]entity.TokenizedSample(nil), samples...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
