package main

import (
	"math/rand"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	classifier "github.com/dimuls/textclassifier"
	"github.com/dimuls/textclassifier/bayesian"
	"github.com/dimuls/textclassifier/corpus"
	"github.com/dimuls/textclassifier/entity"
	"github.com/dimuls/textclassifier/textprep"
)

func main() {
	var (
		src            corpusSource
		loaderOpts     corpus.Options
		trainRatio     float64
		shuffle        bool
		seed           int64
		foldDiacritics bool
		stemLanguage   string
		baseline       bool
		predict        []string
		classifierURI  string
		classifierID   string
		debug          bool
	)

	pflag.StringVar(&src.filePath, "corpus", "",
		"corpus file path (.csv or .json)")

	pflag.StringVar(&src.driver, "corpus-driver", "",
		"corpus database driver (sqlite3 or postgres)")

	pflag.StringVar(&src.dsn, "corpus-dsn", "",
		"corpus database data source name")

	pflag.StringVar(&src.query, "corpus-query", defaultCorpusQuery,
		"corpus database query returning text and label columns")

	pflag.BoolVar(&loaderOpts.Latin1, "latin1", false,
		"decode CSV corpus as ISO-8859-1")

	pflag.BoolVar(&loaderOpts.StripHTML, "strip-html", false,
		"strip HTML markup from corpus texts")

	pflag.Float64Var(&trainRatio, "train-ratio", bayesian.DefaultTrainRatio,
		"share of corpus used for training")

	pflag.BoolVar(&shuffle, "shuffle", false,
		"shuffle corpus before splitting")

	pflag.Int64Var(&seed, "seed", 0,
		"shuffle seed, random if 0")

	pflag.BoolVar(&foldDiacritics, "fold-diacritics", false,
		"fold diacritics before stripping special characters")

	pflag.StringVar(&stemLanguage, "stem", "",
		"stem tokens using snowball stemmer of given language")

	pflag.BoolVar(&baseline, "baseline", false,
		"compare accuracy with jbrukh/bayesian multinomial classifier")

	pflag.StringArrayVar(&predict, "predict", nil,
		"text to classify after training, repeatable")

	pflag.StringVar(&classifierURI, "classifier-uri", "",
		"classifier service base URI, evaluates locally if empty")

	pflag.StringVar(&classifierID, "classifier-id", "default",
		"classifier id used with classifier service")

	pflag.BoolVar(&debug, "debug", false, "debug logging")

	pflag.Parse()

	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	samples, err := loadCorpus(src, loaderOpts)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load corpus")
	}

	logStats(samples)

	if classifierURI != "" {
		testUsingService(classifierURI, classifierID, samples, trainRatio,
			shuffle, predict)
		return
	}

	var prepOpts []textprep.Option
	if foldDiacritics {
		prepOpts = append(prepOpts, textprep.WithDiacriticFolding())
	}
	if stemLanguage != "" {
		prepOpts = append(prepOpts, textprep.WithStemming(stemLanguage))
	}

	var opts []bayesian.Option
	if seed != 0 {
		opts = append(opts, bayesian.WithRand(rand.New(rand.NewSource(seed))))
	}

	c := bayesian.NewClassifier(textprep.NewPreprocessor(prepOpts...), opts...)

	err = c.Load(samples, trainRatio, shuffle)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load samples")
	}

	err = c.Train()
	if err != nil {
		logrus.WithError(err).Fatal("failed to train classifier")
	}

	r, err := c.Report()
	if err != nil {
		logrus.WithError(err).Error("failed to evaluate classifier")
	} else {
		logReport(r)
	}

	if baseline {
		testBaseline(c.Partition())
	}

	for _, text := range predict {
		p, err := c.Predict(text)
		if err != nil {
			logrus.WithError(err).Fatal("failed to predict")
		}
		logPrediction(text, p)
	}
}

func testBaseline(p bayesian.Partition) {
	b := classifier.NewBaseline()

	err := b.Train(p.Training)
	if err != nil {
		logrus.WithError(err).Error("failed to train baseline")
		return
	}

	acc, err := b.Evaluate(p.Holdout)
	if err != nil {
		logrus.WithError(err).Error("failed to evaluate baseline")
		return
	}

	logrus.WithField("accuracy", acc).Info("baseline stats")
}

func logStats(samples []entity.Sample) {
	classesMap := map[string]int{}
	samplesLengthMap := map[string]int{}

	for _, s := range samples {
		classesMap[s.Label]++
		samplesLengthMap[s.Label] += len(s.Text)
	}

	for c, count := range classesMap {
		samplesTotalLength := samplesLengthMap[c]
		logrus.WithFields(logrus.Fields{
			"class":               c,
			"samples":             count,
			"average_text_length": float64(samplesTotalLength) / float64(count),
		}).Info("class stats")
	}
}

func logReport(r bayesian.Report) {
	classAccuracy := r.ClassAccuracy()

	for c, total := range r.ClassTotals {
		logrus.WithFields(logrus.Fields{
			"class":       c,
			"total":       total,
			"correct":     r.Confusion[c][c],
			"predictions": r.Confusion[c],
			"accuracy":    classAccuracy[c],
		}).Info("class test stats")
	}

	logrus.WithFields(logrus.Fields{
		"total":        r.Total,
		"correct":      r.Correct,
		"unclassified": r.Unclassified,
		"accuracy":     r.Accuracy(),
	}).Info("total stats")
}

func logPrediction(text string, p *bayesian.Prediction) {
	if p == nil {
		logrus.WithField("text", text).Warning("could not classify text")
		return
	}
	logrus.WithFields(logrus.Fields{
		"text":   text,
		"label":  p.Label,
		"scores": p.Scores.Map(),
	}).Info("prediction")
}
