package bayesian

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/dimuls/textclassifier/entity"
)

type Preprocessor interface {
	Process(text string) []string
	ProcessSamples(samples []entity.Sample) []entity.TokenizedSample
}

// Classifier is a naive Bayes text classifier. It is untrained until Train
// succeeds on a loaded corpus.
type Classifier struct {
	preprocessor Preprocessor
	estimator    Estimator
	scorer       Scorer
	rng          *rand.Rand

	partition Partition
	model     *model
	mx        sync.RWMutex

	// training counts running Train and Retrain calls.
	training int32

	log *logrus.Entry
}

type model struct {
	stats  ClassStatistics
	priors Priors
}

type Option func(c *Classifier)

func WithEstimator(e Estimator) Option {
	return func(c *Classifier) {
		c.estimator = e
	}
}

func WithScorer(s Scorer) Option {
	return func(c *Classifier) {
		c.scorer = s
	}
}

// WithRand makes corpus shuffling use rng instead of a freshly seeded source.
func WithRand(rng *rand.Rand) Option {
	return func(c *Classifier) {
		c.rng = rng
	}
}

func NewClassifier(p Preprocessor, opts ...Option) *Classifier {
	c := &Classifier{
		preprocessor: p,
		estimator:    NewEstimator(),
		scorer:       NewScorer(),
		log:          logrus.WithField("subsystem", "bayesian_classifier"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Prediction is a predicted label with the scores of all classes.
type Prediction struct {
	Label  string      `json:"label"`
	Scores ScoreVector `json:"scores"`
}

// Load preprocesses samples, optionally shuffles them and splits them into
// training and holdout sets. The classifier becomes untrained.
func (c *Classifier) Load(samples []entity.Sample, trainRatio float64,
	shuffle bool) error {

	p, err := c.partitionSamples(samples, trainRatio, shuffle)
	if err != nil {
		return err
	}

	c.mx.Lock()
	c.partition = p
	c.model = nil
	c.mx.Unlock()

	c.log.WithFields(logrus.Fields{
		"training_samples": len(p.Training),
		"holdout_samples":  len(p.Holdout),
		"shuffled":         shuffle,
	}).Info("corpus loaded")

	return nil
}

func (c *Classifier) partitionSamples(samples []entity.Sample,
	trainRatio float64, shuffle bool) (Partition, error) {

	tss := c.preprocessor.ProcessSamples(samples)

	if shuffle {
		c.mx.Lock()
		if c.rng != nil {
			tss = ShuffleWith(tss, c.rng)
		} else {
			tss = Shuffle(tss)
		}
		c.mx.Unlock()
	}

	p, err := Split(tss, trainRatio)
	if err != nil {
		return Partition{}, fmt.Errorf("split samples: %w", err)
	}

	return p, nil
}

// Train estimates class statistics from the training set. On failure the
// classifier keeps its previous state.
func (c *Classifier) Train() error {
	atomic.AddInt32(&c.training, 1)
	defer atomic.AddInt32(&c.training, -1)

	c.mx.RLock()
	p := c.partition
	c.mx.RUnlock()

	m, err := c.estimate(p.Training)
	if err != nil {
		return err
	}

	c.mx.Lock()
	c.model = m
	c.mx.Unlock()

	return nil
}

// Retrain loads samples and trains on them as one step: predictions keep
// using the previous model until the new one is ready, and the previous
// state is kept if training fails.
func (c *Classifier) Retrain(samples []entity.Sample, trainRatio float64,
	shuffle bool) error {

	atomic.AddInt32(&c.training, 1)
	defer atomic.AddInt32(&c.training, -1)

	p, err := c.partitionSamples(samples, trainRatio, shuffle)
	if err != nil {
		return err
	}

	m, err := c.estimate(p.Training)
	if err != nil {
		return err
	}

	c.mx.Lock()
	c.partition = p
	c.model = m
	c.mx.Unlock()

	return nil
}

func (c *Classifier) estimate(training []entity.TokenizedSample) (*model, error) {
	stats, err := c.estimator.Estimate(training)
	if err != nil {
		return nil, err
	}

	m := &model{
		stats:  stats,
		priors: CountPriors(training),
	}

	c.log.WithFields(logrus.Fields{
		"samples": m.priors.Total,
		"classes": len(m.priors.Classes),
	}).Info("trained")

	return m, nil
}

func (c *Classifier) Trained() bool {
	c.mx.RLock()
	defer c.mx.RUnlock()

	return c.model != nil
}

func (c *Classifier) Training() bool {
	return atomic.LoadInt32(&c.training) > 0
}

// Classes returns trained classes in the order they are scored.
func (c *Classifier) Classes() []string {
	c.mx.RLock()
	defer c.mx.RUnlock()

	if c.model == nil {
		return nil
	}
	return append([]string(nil), c.model.priors.Classes...)
}

func (c *Classifier) Partition() Partition {
	c.mx.RLock()
	defer c.mx.RUnlock()

	return c.partition
}

// Predict classifies text. It returns nil prediction without error when the
// text has no tokens to score.
func (c *Classifier) Predict(text string) (*Prediction, error) {
	return c.PredictTokens(c.preprocessor.Process(text))
}

// PredictTokens classifies already preprocessed tokens.
func (c *Classifier) PredictTokens(tokens []string) (*Prediction, error) {
	c.mx.RLock()
	m := c.model
	c.mx.RUnlock()

	if m == nil {
		return nil, ErrNotTrained
	}

	return c.predict(m, tokens)
}

func (c *Classifier) predict(m *model, tokens []string) (*Prediction, error) {
	sv := c.scorer.Score(tokens, m.stats, m.priors)
	if sv == nil {
		return nil, nil
	}

	label, err := Argmax(sv)
	if err != nil {
		return nil, err
	}

	return &Prediction{Label: label, Scores: sv}, nil
}

// Evaluate returns the share of holdout samples predicted correctly. Holdout
// samples that can not be classified count as mispredicted.
func (c *Classifier) Evaluate() (float64, error) {
	r, err := c.Report()
	if err != nil {
		return 0, err
	}
	return r.Accuracy(), nil
}

// Report predicts every holdout sample and collects the outcomes.
func (c *Classifier) Report() (Report, error) {
	c.mx.RLock()
	m := c.model
	holdout := c.partition.Holdout
	c.mx.RUnlock()

	if m == nil {
		return Report{}, ErrNotTrained
	}
	if len(holdout) == 0 {
		return Report{}, ErrEmptyHoldout
	}

	r := newReport()

	for _, s := range holdout {
		p, err := c.predict(m, s.Tokens)
		if err != nil {
			return Report{}, fmt.Errorf("predict holdout sample: %w", err)
		}
		if p == nil {
			r.addUnclassified(s.Label)
			continue
		}
		r.add(s.Label, p.Label)
	}

	c.log.WithFields(logrus.Fields{
		"tested":       r.Total,
		"correct":      r.Correct,
		"unclassified": r.Unclassified,
		"accuracy":     r.Accuracy(),
	}).Info("evaluated")

	return r, nil
}
