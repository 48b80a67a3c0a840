package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimuls/textclassifier/bayesian"
	"github.com/dimuls/textclassifier/textprep"
)

type poolAdapter struct {
	*bayesian.ClassifiersPool
}

func (a poolAdapter) Classifier(classifierID string, create bool) (Classifier, bool) {
	c, exists := a.ClassifiersPool.Classifier(classifierID, create)
	if c == nil {
		return nil, exists
	}
	return c, exists
}

func newTestServer(t *testing.T) (*Server, *bayesian.ClassifiersPool, *echo.Echo) {
	cp, err := bayesian.NewClassifiersPool(textprep.NewPreprocessor(), t.TempDir())
	require.NoError(t, err)

	s := NewServer("", poolAdapter{cp}, false)
	return s, cp, s.newEcho()
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const moviesCorpus = `[
	{"text": "good movie", "label": "pos"},
	{"text": "bad movie", "label": "neg"},
	{"text": "good actor", "label": "pos"},
	{"text": "good film", "label": "pos"}
]`

func TestServer_classifierLifecycle(t *testing.T) {
	s, _, e := newTestServer(t)

	rec := do(e, http.MethodPost, "/classifiers/movies?train_ratio=0.75", moviesCorpus)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerXRequestID))

	s.waitGroup.Wait()

	rec = do(e, http.MethodGet, "/classifiers/movies/training", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "false", rec.Body.String())

	rec = do(e, http.MethodPost, "/classifiers/movies/classify", `{"text": "Good!"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var p prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.True(t, p.Classified)
	assert.Equal(t, "pos", p.Label)
	assert.Greater(t, p.Scores["pos"], p.Scores["neg"])

	rec = do(e, http.MethodPost, "/classifiers/movies/classify", `{"text": "it is"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"classified": false}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/classifiers/movies/evaluation", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var ev struct {
		Accuracy float64 `json:"accuracy"`
		Total    int     `json:"total"`
		Correct  int     `json:"correct"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	assert.Equal(t, 1.0, ev.Accuracy)
	assert.Equal(t, 1, ev.Total)
	assert.Equal(t, 1, ev.Correct)

	rec = do(e, http.MethodDelete, "/classifiers/movies", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPost, "/classifiers/movies/classify", `{"text": "good"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodDelete, "/classifiers/movies", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_postClassifier_badRequests(t *testing.T) {
	_, cp, e := newTestServer(t)

	tests := []struct {
		name   string
		target string
		body   string
	}{
		{name: "zero train ratio", target: "/classifiers/x?train_ratio=0", body: moviesCorpus},
		{name: "big train ratio", target: "/classifiers/x?train_ratio=1.5", body: moviesCorpus},
		{name: "malformed train ratio", target: "/classifiers/x?train_ratio=abc", body: moviesCorpus},
		{name: "malformed body", target: "/classifiers/x", body: `{"text":`},
		{name: "no samples", target: "/classifiers/x", body: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	assert.Empty(t, cp.IDs())
}

func TestServer_untrainedClassifier(t *testing.T) {
	_, cp, e := newTestServer(t)

	_, _ = cp.Classifier("fresh", true)

	rec := do(e, http.MethodPost, "/classifiers/fresh/classify", `{"text": "good"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodGet, "/classifiers/fresh/evaluation", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodGet, "/classifiers/missing/evaluation", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/classifiers/missing/training", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_evaluationWithoutHoldout(t *testing.T) {
	s, _, e := newTestServer(t)

	rec := do(e, http.MethodPost, "/classifiers/movies?train_ratio=1", moviesCorpus)
	require.Equal(t, http.StatusAccepted, rec.Code)
	s.waitGroup.Wait()

	rec = do(e, http.MethodGet, "/classifiers/movies/evaluation", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_postClassifier_trainingInFlight(t *testing.T) {
	s, _, e := newTestServer(t)

	require.True(t, s.startTraining("movies"))

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodPost, "/classifiers/movies", moviesCorpus)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = do(e, http.MethodGet, "/classifiers/movies/training", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "true", rec.Body.String())
	}

	s.finishTraining("movies")

	rec := do(e, http.MethodGet, "/classifiers/movies/training", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "false", rec.Body.String())

	rec = do(e, http.MethodPost, "/classifiers/movies", moviesCorpus)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	s.waitGroup.Wait()
}
