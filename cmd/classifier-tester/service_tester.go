package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dimuls/textclassifier/entity"
)

const trainingPollInterval = time.Second

func testUsingService(classifierURI, classifierID string,
	samples []entity.Sample, trainRatio float64, shuffle bool,
	predict []string) {

	log := logrus.WithFields(logrus.Fields{
		"classifier_uri": classifierURI,
		"classifier_id":  classifierID,
	})

	classifierURI += "/classifiers/" + url.PathEscape(classifierID)

	samplesJSON, err := json.Marshal(samples)
	if err != nil {
		log.WithError(err).Fatal("failed to JSON marshal samples")
	}

	query := url.Values{}
	query.Set("train_ratio", strconv.FormatFloat(trainRatio, 'f', -1, 64))
	if shuffle {
		query.Set("shuffle", "1")
	}

	res, err := http.Post(classifierURI+"?"+query.Encode(), "application/json",
		bytes.NewReader(samplesJSON))
	if err != nil {
		log.WithError(err).Fatal("failed to start training classifier")
	}
	res.Body.Close()

	if res.StatusCode != http.StatusAccepted {
		log.WithField("status_code", res.StatusCode).
			Fatal("not 202 (accepted) response code")
	}

	for {
		var training bool
		err := getJSON(classifierURI+"/training", &training)
		if err != nil {
			log.WithError(err).Fatal("failed to get classifier training")
		}
		if !training {
			break
		}
		time.Sleep(trainingPollInterval)
	}

	var ev struct {
		Accuracy      float64                   `json:"accuracy"`
		ClassAccuracy map[string]float64        `json:"class_accuracy"`
		Total         int                       `json:"total"`
		Correct       int                       `json:"correct"`
		Unclassified  int                       `json:"unclassified"`
		Confusion     map[string]map[string]int `json:"confusion"`
	}

	err = getJSON(classifierURI+"/evaluation", &ev)
	if err != nil {
		log.WithError(err).Error("failed to get classifier evaluation")
	} else {
		for c, acc := range ev.ClassAccuracy {
			log.WithFields(logrus.Fields{
				"class":       c,
				"predictions": ev.Confusion[c],
				"accuracy":    acc,
			}).Info("class test stats")
		}
		log.WithFields(logrus.Fields{
			"total":        ev.Total,
			"correct":      ev.Correct,
			"unclassified": ev.Unclassified,
			"accuracy":     ev.Accuracy,
		}).Info("total stats")
	}

	for _, text := range predict {
		textJSON, err := json.Marshal(struct {
			Text string `json:"text"`
		}{Text: text})
		if err != nil {
			log.WithError(err).Fatal("failed to JSON marshal text")
		}

		var p struct {
			Classified bool               `json:"classified"`
			Label      string             `json:"label"`
			Scores     map[string]float64 `json:"scores"`
		}

		err = postJSON(classifierURI+"/classify", textJSON, &p)
		if err != nil {
			log.WithError(err).Fatal("failed to post classify")
		}

		if !p.Classified {
			log.WithField("text", text).Warning("could not classify text")
			continue
		}
		log.WithFields(logrus.Fields{
			"text":   text,
			"label":  p.Label,
			"scores": p.Scores,
		}).Info("prediction")
	}
}

func getJSON(uri string, v interface{}) error {
	res, err := http.Get(uri)
	if err != nil {
		return fmt.Errorf("HTTP get: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("not OK status code: %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(v)
}

func postJSON(uri string, body []byte, v interface{}) error {
	res, err := http.Post(uri, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("HTTP post: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("not OK status code: %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(v)
}
