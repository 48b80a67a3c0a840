package bayesian

import "errors"

var (
	ErrEmptyTrainingSet  = errors.New("bayesian: training set is empty")
	ErrNotTrained        = errors.New("bayesian: classifier is not trained")
	ErrEmptyScoreVector  = errors.New("bayesian: score vector is empty")
	ErrEmptyHoldout      = errors.New("bayesian: holdout set is empty")
	ErrInvalidTrainRatio = errors.New("bayesian: train ratio must be in (0, 1]")
)
