package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo"

	"github.com/dimuls/textclassifier/bayesian"
	"github.com/dimuls/textclassifier/entity"
)

type prediction struct {
	Classified bool               `json:"classified"`
	Label      string             `json:"label,omitempty"`
	Scores     map[string]float64 `json:"scores,omitempty"`
}

type evaluation struct {
	Accuracy      float64            `json:"accuracy"`
	ClassAccuracy map[string]float64 `json:"class_accuracy"`
	bayesian.Report
}

func (s *Server) postClassifier(c echo.Context) error {
	classifierID := c.Param("classifier_id")

	trainRatio := bayesian.DefaultTrainRatio
	if tr := c.QueryParam("train_ratio"); tr != "" {
		var err error
		trainRatio, err = strconv.ParseFloat(tr, 64)
		if err != nil || !(trainRatio > 0 && trainRatio <= 1) {
			return echo.NewHTTPError(http.StatusBadRequest,
				"train ratio must be in (0, 1]")
		}
	}

	shuffle := c.QueryParam("shuffle") == "1"

	var samples []entity.Sample

	err := json.NewDecoder(c.Request().Body).Decode(&samples)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			"JSON decode request body: "+err.Error())
	}

	if len(samples) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no samples")
	}

	classifier, _ := s.classifiersPool.Classifier(classifierID, true)
	if classifier == nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			"invalid classifier id")
	}

	if !s.startTraining(classifierID) {
		return echo.NewHTTPError(http.StatusServiceUnavailable,
			"classifier is training")
	}
	if classifier.Training() {
		s.finishTraining(classifierID)
		return echo.NewHTTPError(http.StatusServiceUnavailable,
			"classifier is training")
	}

	s.waitGroup.Add(1)
	go func() {
		defer s.waitGroup.Done()
		defer s.finishTraining(classifierID)
		err := s.classifiersPool.Train(classifierID, samples, trainRatio, shuffle)
		if err != nil {
			s.log.WithError(err).WithField("classifier_id", classifierID).
				Error("failed to train classifier")
		}
	}()

	return c.NoContent(http.StatusAccepted)
}

func (s *Server) getClassifierTraining(c echo.Context) error {
	classifierID := c.Param("classifier_id")
	classifier, exists := s.classifiersPool.Classifier(classifierID, false)
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound,
			"classifier with given id not found")
	}
	return c.JSON(http.StatusOK, s.training(classifierID, classifier))
}

func (s *Server) postClassifierClassify(c echo.Context) error {
	classifierID := c.Param("classifier_id")
	classifier, exists := s.classifiersPool.Classifier(classifierID, false)
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound,
			"classifier with given id not found")
	}

	if s.training(classifierID, classifier) {
		return echo.NewHTTPError(http.StatusServiceUnavailable,
			"classifier is training")
	}

	var doc struct {
		Text string `json:"text"`
	}

	err := json.NewDecoder(c.Request().Body).Decode(&doc)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			"JSON decode request body: "+err.Error())
	}

	p, err := classifier.Predict(doc.Text)
	if err != nil {
		if errors.Is(err, bayesian.ErrNotTrained) {
			return echo.NewHTTPError(http.StatusConflict,
				"classifier is not trained")
		}
		return fmt.Errorf("predict: %w", err)
	}

	if p == nil {
		return c.JSON(http.StatusOK, prediction{})
	}

	return c.JSON(http.StatusOK, prediction{
		Classified: true,
		Label:      p.Label,
		Scores:     p.Scores.Map(),
	})
}

func (s *Server) getClassifierEvaluation(c echo.Context) error {
	classifierID := c.Param("classifier_id")
	classifier, exists := s.classifiersPool.Classifier(classifierID, false)
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound,
			"classifier with given id not found")
	}

	if s.training(classifierID, classifier) {
		return echo.NewHTTPError(http.StatusServiceUnavailable,
			"classifier is training")
	}

	r, err := classifier.Report()
	switch {
	case errors.Is(err, bayesian.ErrNotTrained):
		return echo.NewHTTPError(http.StatusConflict,
			"classifier is not trained")
	case errors.Is(err, bayesian.ErrEmptyHoldout):
		return echo.NewHTTPError(http.StatusConflict,
			"classifier has no holdout samples")
	case err != nil:
		return fmt.Errorf("report: %w", err)
	}

	return c.JSON(http.StatusOK, evaluation{
		Accuracy:      r.Accuracy(),
		ClassAccuracy: r.ClassAccuracy(),
		Report:        r,
	})
}

func (s *Server) deleteClassifier(c echo.Context) error {
	err := s.classifiersPool.RemoveClassifier(c.Param("classifier_id"))
	if err != nil {
		if errors.Is(err, bayesian.ErrClassifierNotFound) {
			return echo.NewHTTPError(http.StatusNotFound,
				"classifier with given id not found")
		}
		return fmt.Errorf(
			"remove classifier from classifiers pool: %w", err)
	}
	return c.NoContent(http.StatusOK)
}
