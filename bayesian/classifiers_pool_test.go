package bayesian

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimuls/textclassifier/textprep"
)

func TestClassifiersPool(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), "classifiers")

	cp, err := NewClassifiersPool(textprep.NewPreprocessor(), dataPath)
	require.NoError(t, err)
	assert.Empty(t, cp.IDs())

	_, exists := cp.Classifier("movies", false)
	assert.False(t, exists)

	require.NoError(t, cp.Train("movies", movieCorpus, 1, false))
	assert.FileExists(t, filepath.Join(dataPath, "movies.bc"))

	restored, err := NewClassifiersPool(textprep.NewPreprocessor(), dataPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"movies"}, restored.IDs())

	c, exists := restored.Classifier("movies", false)
	require.True(t, exists)
	require.True(t, c.Trained())

	p, err := c.Predict("good")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "pos", p.Label)

	original, _ := cp.Classifier("movies", false)
	assert.Equal(t, original.Snapshot().Statistics, c.Snapshot().Statistics)
	assert.Equal(t, original.Snapshot().Priors, c.Snapshot().Priors)
	assert.Equal(t, original.Partition().Training, c.Partition().Training)

	require.NoError(t, restored.RemoveClassifier("movies"))
	assert.NoFileExists(t, filepath.Join(dataPath, "movies.bc"))
	assert.ErrorIs(t, restored.RemoveClassifier("movies"), ErrClassifierNotFound)
}

func TestClassifiersPool_untrainedSnapshot(t *testing.T) {
	dataPath := t.TempDir()

	cp, err := NewClassifiersPool(textprep.NewPreprocessor(), dataPath)
	require.NoError(t, err)

	c, exists := cp.Classifier("empty", true)
	require.False(t, exists)
	require.NotNil(t, c)
	require.NoError(t, cp.Save("empty"))

	restored, err := NewClassifiersPool(textprep.NewPreprocessor(), dataPath)
	require.NoError(t, err)

	c, exists = restored.Classifier("empty", false)
	require.True(t, exists)
	assert.False(t, c.Trained())
}

func TestClassifiersPool_invalidID(t *testing.T) {
	cp, err := NewClassifiersPool(textprep.NewPreprocessor(), t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", "..", "../escape", `a\b`} {
		assert.ErrorIs(t, cp.Train(id, movieCorpus, 1, false),
			ErrInvalidClassifierID, id)
	}
	assert.Empty(t, cp.IDs())
}

func TestClassifiersPool_trainFailure(t *testing.T) {
	dataPath := t.TempDir()
	cp, err := NewClassifiersPool(textprep.NewPreprocessor(), dataPath)
	require.NoError(t, err)

	err = cp.Train("movies", nil, 1, false)
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)

	_, err = os.Stat(filepath.Join(dataPath, "movies.bc"))
	assert.True(t, os.IsNotExist(err))
}

func TestClassifiersPool_corruptedSnapshot(t *testing.T) {
	dataPath := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataPath, "broken.bc"),
		[]byte("not a gob"), 0o644))

	_, err := NewClassifiersPool(textprep.NewPreprocessor(), dataPath)
	assert.Error(t, err)
}
