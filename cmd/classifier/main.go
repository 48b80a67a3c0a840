package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	classifier "github.com/dimuls/textclassifier"
	"github.com/dimuls/textclassifier/bayesian"
	"github.com/dimuls/textclassifier/textprep"
)

func main() {
	if os.Getenv("WEB_SERVER_DEBUG") == "1" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	var opts []textprep.Option
	if os.Getenv("TEXT_FOLD_DIACRITICS") == "1" {
		opts = append(opts, textprep.WithDiacriticFolding())
	}
	if lang := os.Getenv("TEXT_STEMMING_LANGUAGE"); lang != "" {
		opts = append(opts, textprep.WithStemming(lang))
	}

	dataPath := os.Getenv("CLASSIFIERS_DATA_PATH")
	if dataPath == "" {
		dataPath = "data"
	}

	service, err := classifier.NewService(
		dataPath,
		os.Getenv("WEB_SERVER_BIND_ADDR"),
		os.Getenv("WEB_SERVER_DEBUG") == "1",
		opts...)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create classifier service")
	}

	if corpusFilePath := os.Getenv("CORPUS_FILE_PATH"); corpusFilePath != "" {
		classifierID := os.Getenv("CORPUS_CLASSIFIER_ID")
		if classifierID == "" {
			classifierID = "default"
		}

		trainRatio := bayesian.DefaultTrainRatio
		if tr := os.Getenv("CORPUS_TRAIN_RATIO"); tr != "" {
			trainRatio, err = strconv.ParseFloat(tr, 64)
			if err != nil {
				logrus.WithError(err).Fatal("failed to parse corpus train ratio")
			}
		}

		err = service.Bootstrap(classifierID, corpusFilePath, trainRatio,
			os.Getenv("CORPUS_SHUFFLE") == "1")
		if err != nil {
			logrus.WithError(err).Fatal("failed to bootstrap classifier")
		}
	}

	service.Start()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	signal := <-signals

	logrus.Infof("captured %v signal, stopping", signal)

	startTime := time.Now()

	service.Stop()

	endTime := time.Now()

	logrus.Infof("stopped in %g seconds, exiting",
		endTime.Sub(startTime).Seconds())
}
