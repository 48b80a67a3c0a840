package bayesian

// Report is the outcome of predicting holdout samples.
type Report struct {
	Total        int `json:"total"`
	Correct      int `json:"correct"`
	Unclassified int `json:"unclassified"`

	// ClassTotals maps true label to its holdout samples count.
	ClassTotals map[string]int `json:"class_totals"`

	// Confusion maps true label to predicted label to count. Unclassified
	// samples are not in it.
	Confusion map[string]map[string]int `json:"confusion"`
}

func newReport() Report {
	return Report{
		ClassTotals: map[string]int{},
		Confusion:   map[string]map[string]int{},
	}
}

func (r *Report) add(actual, predicted string) {
	r.Total++
	r.ClassTotals[actual]++
	if actual == predicted {
		r.Correct++
	}
	if _, exists := r.Confusion[actual]; !exists {
		r.Confusion[actual] = map[string]int{}
	}
	r.Confusion[actual][predicted]++
}

func (r *Report) addUnclassified(actual string) {
	r.Total++
	r.ClassTotals[actual]++
	r.Unclassified++
}

// Accuracy is correct predictions count divided by total samples count.
func (r Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// ClassAccuracy returns accuracy per true label.
func (r Report) ClassAccuracy() map[string]float64 {
	acc := make(map[string]float64, len(r.ClassTotals))
	for class, total := range r.ClassTotals {
		acc[class] = float64(r.Confusion[class][class]) / float64(total)
	}
	return acc
}
