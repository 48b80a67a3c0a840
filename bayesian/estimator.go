package bayesian

import "github.com/dimuls/textclassifier/entity"

// DefaultProbability is added to every observed token frequency.
const DefaultProbability float64 = 1

// FrequencyTable maps token to its smoothed frequency within a class. Tokens
// never observed in the class are absent.
type FrequencyTable map[string]float64

// ClassStatistics maps class label to its frequency table.
type ClassStatistics map[string]FrequencyTable

// Priors holds per-class sample counts. Classes keeps the order in which
// labels were first seen in the training set.
type Priors struct {
	Classes []string
	Counts  map[string]int
	Total   int
}

// Prior returns the share of training samples labeled with class.
func (p Priors) Prior(class string) float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Counts[class]) / float64(p.Total)
}

// Estimator computes class statistics from training samples. Samples without
// tokens carry no signal and are ignored.
type Estimator struct {
	DefaultProbability float64
}

func NewEstimator() Estimator {
	return Estimator{DefaultProbability: DefaultProbability}
}

// Estimate returns smoothed frequencies of every token per class. A token
// frequency is its occurrence count divided by the number of class samples.
func (e Estimator) Estimate(training []entity.TokenizedSample) (
	ClassStatistics, error) {

	groups := groupByClass(training)
	if len(groups) == 0 {
		return nil, ErrEmptyTrainingSet
	}

	stats := make(ClassStatistics, len(groups))
	for class, samples := range groups {
		stats[class] = e.smooth(countTokens(samples), len(samples))
	}

	return stats, nil
}

// CountPriors counts samples per class, ignoring samples without tokens.
func CountPriors(training []entity.TokenizedSample) Priors {
	p := Priors{Counts: map[string]int{}}
	for _, s := range training {
		if len(s.Tokens) == 0 {
			continue
		}
		if _, seen := p.Counts[s.Label]; !seen {
			p.Classes = append(p.Classes, s.Label)
		}
		p.Counts[s.Label]++
		p.Total++
	}
	return p
}

func groupByClass(training []entity.TokenizedSample) map[string][]entity.TokenizedSample {
	groups := map[string][]entity.TokenizedSample{}
	for _, s := range training {
		if len(s.Tokens) == 0 {
			continue
		}
		groups[s.Label] = append(groups[s.Label], s)
	}
	return groups
}

// countTokens returns `token -> occurrences` over all samples.
func countTokens(samples []entity.TokenizedSample) map[string]int {
	counts := map[string]int{}
	for _, s := range samples {
		for _, t := range s.Tokens {
			if t == "" {
				continue
			}
			counts[t]++
		}
	}
	return counts
}

func (e Estimator) smooth(counts map[string]int, samplesCount int) FrequencyTable {
	ft := make(FrequencyTable, len(counts))
	for t, n := range counts {
		ft[t] = float64(n)/float64(samplesCount) + e.DefaultProbability
	}
	return ft
}
