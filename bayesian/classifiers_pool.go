package bayesian

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dimuls/textclassifier/entity"
)

const (
	classifierFileExtension = "bc"
	classifierFileSuffix    = "." + classifierFileExtension
)

var (
	ErrClassifierNotFound  = errors.New("bayesian: classifier not found")
	ErrInvalidClassifierID = errors.New("bayesian: invalid classifier id")
)

// ClassifiersPool keeps named classifiers, each persisted as a snapshot file
// in the data path.
type ClassifiersPool struct {
	preprocessor Preprocessor
	opts         []Option
	dataPath     string
	classifiers  map[string]*Classifier
	mx           sync.Mutex

	log *logrus.Entry
}

// NewClassifiersPool creates the data path if needed and restores every
// classifier snapshot found in it.
func NewClassifiersPool(p Preprocessor, dataPath string,
	opts ...Option) (*ClassifiersPool, error) {

	cp := &ClassifiersPool{
		preprocessor: p,
		opts:         opts,
		dataPath:     dataPath,
		classifiers:  map[string]*Classifier{},
		log:          logrus.WithField("subsystem", "bayesian_classifiers_pool"),
	}

	err := os.MkdirAll(dataPath, 0o755)
	if err != nil {
		return nil, fmt.Errorf("create data path: %w", err)
	}

	err = filepath.Walk(dataPath, cp.walk)
	if err != nil {
		return nil, fmt.Errorf("walk data path: %w", err)
	}

	return cp, nil
}

func validClassifierID(classifierID string) bool {
	return classifierID != "" && classifierID != "." && classifierID != ".." &&
		!strings.ContainsAny(classifierID, `/\`)
}

func (cp *ClassifiersPool) filePath(classifierID string) string {
	return filepath.Join(cp.dataPath, classifierID+classifierFileSuffix)
}

// Classifier returns the classifier with given id and whether it existed.
// With create set a missing classifier is created untrained.
func (cp *ClassifiersPool) Classifier(classifierID string, create bool) (
	*Classifier, bool) {

	cp.mx.Lock()
	defer cp.mx.Unlock()

	c, exists := cp.classifiers[classifierID]
	if !exists && create && validClassifierID(classifierID) {
		c = NewClassifier(cp.preprocessor, cp.opts...)
		cp.classifiers[classifierID] = c
	}

	return c, exists
}

// IDs returns ids of all classifiers in the pool.
func (cp *ClassifiersPool) IDs() []string {
	cp.mx.Lock()
	defer cp.mx.Unlock()

	ids := make([]string, 0, len(cp.classifiers))
	for id := range cp.classifiers {
		ids = append(ids, id)
	}
	return ids
}

// Train retrains the classifier with given id on samples, creating it if
// needed, and saves its snapshot.
func (cp *ClassifiersPool) Train(classifierID string, samples []entity.Sample,
	trainRatio float64, shuffle bool) error {

	if !validClassifierID(classifierID) {
		return ErrInvalidClassifierID
	}

	c, _ := cp.Classifier(classifierID, true)

	err := c.Retrain(samples, trainRatio, shuffle)
	if err != nil {
		return fmt.Errorf("retrain classifier: %w", err)
	}

	return cp.Save(classifierID)
}

// Save writes the snapshot of the classifier with given id.
func (cp *ClassifiersPool) Save(classifierID string) error {
	c, exists := cp.Classifier(classifierID, false)
	if !exists {
		return ErrClassifierNotFound
	}

	err := saveSnapshot(cp.filePath(classifierID), c.Snapshot())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

func (cp *ClassifiersPool) RemoveClassifier(classifierID string) error {
	_, exists := cp.Classifier(classifierID, false)
	if !exists {
		return ErrClassifierNotFound
	}

	err := os.Remove(cp.filePath(classifierID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove classifier file: %w", err)
	}

	cp.mx.Lock()
	delete(cp.classifiers, classifierID)
	cp.mx.Unlock()

	return nil
}

func (cp *ClassifiersPool) walk(path string, info os.FileInfo, err error) error {
	if err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}
	if !strings.HasSuffix(info.Name(), classifierFileSuffix) {
		return nil
	}

	s, _, err := loadSnapshot(path)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", path, err)
	}

	c := NewClassifier(cp.preprocessor, cp.opts...)
	c.Restore(s)

	cID := strings.TrimSuffix(info.Name(), classifierFileSuffix)

	cp.classifiers[cID] = c

	cp.log.WithFields(logrus.Fields{
		"classifier_id": cID,
		"trained":       s.Trained,
	}).Info("classifier restored")

	return nil
}
