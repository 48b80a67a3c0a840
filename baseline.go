package classifier

import (
	"errors"
	"sync"

	"github.com/jbrukh/bayesian"
	"github.com/sirupsen/logrus"

	"github.com/dimuls/textclassifier/entity"
)

var (
	ErrBaselineNotTrained = errors.New("classifier: baseline is not trained")
	ErrBaselineFewClasses = errors.New("classifier: baseline needs at least two classes")
	ErrBaselineNoWords    = errors.New("classifier: no words to classify")
	ErrBaselineNoHoldout  = errors.New("classifier: no holdout samples")
)

// Baseline is a multinomial naive Bayes classifier from
// github.com/jbrukh/bayesian. It is trained on the same tokenized samples as
// the main classifier to compare accuracy.
type Baseline struct {
	classifier      *bayesian.Classifier
	classifierMutex sync.RWMutex

	log *logrus.Entry
}

func NewBaseline() *Baseline {
	return &Baseline{
		log: logrus.WithField("subsystem", "baseline_classifier"),
	}
}

func (b *Baseline) Train(training []entity.TokenizedSample) error {
	classesMap := map[string]struct{}{}
	var classes []bayesian.Class
	for _, s := range training {
		if len(s.Tokens) == 0 {
			continue
		}
		if _, exists := classesMap[s.Label]; !exists {
			classesMap[s.Label] = struct{}{}
			classes = append(classes, bayesian.Class(s.Label))
		}
	}

	if len(classes) < 2 {
		return ErrBaselineFewClasses
	}

	classifier := bayesian.NewClassifier(classes...)

	for _, s := range training {
		if len(s.Tokens) == 0 {
			continue
		}
		classifier.Learn(s.Tokens, bayesian.Class(s.Label))
	}

	b.classifierMutex.Lock()
	b.classifier = classifier
	b.classifierMutex.Unlock()

	b.log.WithField("classes", len(classes)).Info("trained")

	return nil
}

func (b *Baseline) Classify(tokens []string) (string, error) {
	b.classifierMutex.RLock()
	classifier := b.classifier
	b.classifierMutex.RUnlock()

	if classifier == nil {
		return "", ErrBaselineNotTrained
	}

	if len(tokens) == 0 {
		return "", ErrBaselineNoWords
	}

	_, i, _ := classifier.LogScores(tokens)

	return string(classifier.Classes[i]), nil
}

// Evaluate returns the share of holdout samples classified correctly.
// Samples without tokens count as misclassified.
func (b *Baseline) Evaluate(holdout []entity.TokenizedSample) (float64, error) {
	if len(holdout) == 0 {
		return 0, ErrBaselineNoHoldout
	}

	correct := 0
	for _, s := range holdout {
		class, err := b.Classify(s.Tokens)
		if err == ErrBaselineNoWords {
			continue
		}
		if err != nil {
			return 0, err
		}
		if class == s.Label {
			correct++
		}
	}

	return float64(correct) / float64(len(holdout)), nil
}
