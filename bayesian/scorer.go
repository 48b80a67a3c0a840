package bayesian

import "gonum.org/v1/gonum/floats"

// DefaultUnknownTokenFactor is the likelihood factor of a token never seen in
// a class. With 1 unseen tokens neither help nor hurt a class.
const DefaultUnknownTokenFactor float64 = 1

type ClassScore struct {
	Class string  `json:"class"`
	Score float64 `json:"score"`
}

// ScoreVector holds unnormalized class scores in class order.
type ScoreVector []ClassScore

func (sv ScoreVector) Map() map[string]float64 {
	m := make(map[string]float64, len(sv))
	for _, cs := range sv {
		m[cs.Class] = cs.Score
	}
	return m
}

type Scorer struct {
	UnknownTokenFactor float64
}

func NewScorer() Scorer {
	return Scorer{UnknownTokenFactor: DefaultUnknownTokenFactor}
}

// Score returns likelihood times prior for every class of priors, assuming
// tokens are independent given the class. It returns nil when there are no
// tokens to score.
func (s Scorer) Score(tokens []string, stats ClassStatistics,
	priors Priors) ScoreVector {

	if len(tokens) == 0 {
		return nil
	}

	sv := make(ScoreVector, 0, len(priors.Classes))

	for _, class := range priors.Classes {
		ft := stats[class]

		likelihood := 1.0
		for _, t := range tokens {
			if f, exists := ft[t]; exists {
				likelihood *= f
			} else {
				likelihood *= s.UnknownTokenFactor
			}
		}

		sv = append(sv, ClassScore{
			Class: class,
			Score: likelihood * priors.Prior(class),
		})
	}

	return sv
}

// Argmax returns the class with the highest score. The first of equally
// scored classes wins.
func Argmax(sv ScoreVector) (string, error) {
	if len(sv) == 0 {
		return "", ErrEmptyScoreVector
	}

	scores := make([]float64, len(sv))
	for i, cs := range sv {
		scores[i] = cs.Score
	}

	return sv[floats.MaxIdx(scores)].Class, nil
}
