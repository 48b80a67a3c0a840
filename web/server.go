package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/sirupsen/logrus"

	"github.com/dimuls/textclassifier/bayesian"
	"github.com/dimuls/textclassifier/entity"
)

const headerXRequestID = "X-Request-ID"

type Classifier interface {
	Training() bool
	Trained() bool
	Predict(text string) (*bayesian.Prediction, error)
	Report() (bayesian.Report, error)
}

type ClassifiersPool interface {
	Classifier(classifierID string, create bool) (c Classifier, exists bool)
	Train(classifierID string, samples []entity.Sample, trainRatio float64,
		shuffle bool) error
	RemoveClassifier(classifierID string) error
}

type Server struct {
	bindAddr        string
	debug           bool
	classifiersPool ClassifiersPool

	echo *echo.Echo

	trainings      map[string]struct{}
	trainingsMutex sync.Mutex

	waitGroup sync.WaitGroup

	log *logrus.Entry
}

func NewServer(bindAddr string, cp ClassifiersPool, debug bool) *Server {
	return &Server{
		bindAddr:        bindAddr,
		debug:           debug,
		classifiersPool: cp,

		trainings: map[string]struct{}{},

		log: logrus.WithField("subsystem", "web_server"),
	}
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()

	e.Debug = s.debug

	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(logrusLogger)

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
		} else if e.Debug {
			msg = err.Error()
		} else {
			msg = http.StatusText(code)
		}
		if _, ok := msg.(string); !ok {
			msg = fmt.Sprintf("%v", msg)
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.String(code, msg.(string))
			}
			if err != nil {
				s.log.WithError(err).Error("failed to error response")
			}
		}
	}

	e.POST("/classifiers/:classifier_id", s.postClassifier)
	e.GET("/classifiers/:classifier_id/training", s.getClassifierTraining)
	e.POST("/classifiers/:classifier_id/classify", s.postClassifierClassify)
	e.GET("/classifiers/:classifier_id/evaluation", s.getClassifierEvaluation)
	e.DELETE("/classifiers/:classifier_id", s.deleteClassifier)

	return e
}

// startTraining marks the classifier as training and reports whether it was
// not training already.
func (s *Server) startTraining(classifierID string) bool {
	s.trainingsMutex.Lock()
	defer s.trainingsMutex.Unlock()

	if _, training := s.trainings[classifierID]; training {
		return false
	}
	s.trainings[classifierID] = struct{}{}
	return true
}

func (s *Server) finishTraining(classifierID string) {
	s.trainingsMutex.Lock()
	delete(s.trainings, classifierID)
	s.trainingsMutex.Unlock()
}

func (s *Server) training(classifierID string, c Classifier) bool {
	s.trainingsMutex.Lock()
	_, training := s.trainings[classifierID]
	s.trainingsMutex.Unlock()

	return training || c.Training()
}

func (s *Server) Start() {
	e := s.newEcho()

	s.echo = e

	s.waitGroup.Add(1)
	go func() {
		defer s.waitGroup.Done()
		err := e.Start(s.bindAddr)
		if err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("failed to start")
		}
	}()
}

// Stop shuts the server down and waits for running trainings.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.TODO(), 10*time.Second)
	defer cancel()

	err := s.echo.Shutdown(ctx)
	if err != nil {
		s.log.WithError(err).Error("failed to graceful stop")
	}

	s.waitGroup.Wait()
}

func logrusLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		req := c.Request()
		res := c.Response()

		requestID := req.Header.Get(headerXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		res.Header().Set(headerXRequestID, requestID)

		err := next(c)

		stop := time.Now()

		if err != nil {
			c.Error(err)
		}

		p := req.URL.Path
		if p == "" {
			p = "/"
		}

		bytesIn := req.Header.Get(echo.HeaderContentLength)
		if bytesIn == "" {
			bytesIn = "0"
		}

		entry := logrus.WithFields(map[string]interface{}{
			"subsystem":    "web_server",
			"request_id":   requestID,
			"remote_ip":    c.RealIP(),
			"host":         req.Host,
			"query_params": c.QueryParams(),
			"uri":          req.RequestURI,
			"method":       req.Method,
			"path":         p,
			"referer":      req.Referer(),
			"user_agent":   req.UserAgent(),
			"status":       res.Status,
			"latency":      stop.Sub(start).String(),
			"bytes_in":     bytesIn,
			"bytes_out":    strconv.FormatInt(res.Size, 10),
		})

		const msg = "request handled"

		if res.Status >= 500 {
			if err != nil {
				entry = entry.WithError(err)
			}
			entry.Error(msg)
		} else if res.Status >= 400 {
			entry.Warn(msg)
		} else {
			entry.Info(msg)
		}

		return nil
	}
}
