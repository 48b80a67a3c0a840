package classifier

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dimuls/textclassifier/bayesian"
	"github.com/dimuls/textclassifier/corpus"
	"github.com/dimuls/textclassifier/textprep"
	"github.com/dimuls/textclassifier/web"
)

type webClassifiersPoolAdapter struct {
	*bayesian.ClassifiersPool
}

func (a webClassifiersPoolAdapter) Classifier(classifierID string,
	create bool) (c web.Classifier, exists bool) {
	bc, exists := a.ClassifiersPool.Classifier(classifierID, create)
	if bc == nil {
		return nil, exists
	}
	return bc, exists
}

type Service struct {
	classifiersPool *bayesian.ClassifiersPool
	webServer       *web.Server

	log *logrus.Entry
}

func NewService(classifiersDataPath string, webServerBindAddr string,
	webServerDebug bool, opts ...textprep.Option) (*Service, error) {

	cp, err := bayesian.NewClassifiersPool(textprep.NewPreprocessor(opts...),
		classifiersDataPath)
	if err != nil {
		return nil, fmt.Errorf("new classifiers pool: %w", err)
	}

	return &Service{
		classifiersPool: cp,
		webServer: web.NewServer(webServerBindAddr,
			webClassifiersPoolAdapter{cp}, webServerDebug),
		log: logrus.WithField("subsystem", "service"),
	}, nil
}

// Bootstrap trains the classifier with given id on the corpus file unless the
// classifier was restored from its snapshot.
func (s *Service) Bootstrap(classifierID string, corpusFilePath string,
	trainRatio float64, shuffle bool) error {

	log := s.log.WithFields(logrus.Fields{
		"classifier_id": classifierID,
		"corpus_file":   corpusFilePath,
	})

	if c, exists := s.classifiersPool.Classifier(classifierID, false); exists && c.Trained() {
		log.Info("classifier already trained, skipping bootstrap")
		return nil
	}

	samples, err := corpus.NewLoader(corpus.Options{}).LoadFile(corpusFilePath)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	err = s.classifiersPool.Train(classifierID, samples, trainRatio, shuffle)
	if err != nil {
		return fmt.Errorf("train classifier: %w", err)
	}

	log.WithField("samples", len(samples)).Info("classifier bootstrapped")

	return nil
}

func (s *Service) Start() {
	s.webServer.Start()
}

func (s *Service) Stop() {
	s.webServer.Stop()

	for _, id := range s.classifiersPool.IDs() {
		err := s.classifiersPool.Save(id)
		if err != nil {
			s.log.WithError(err).WithField("classifier_id", id).
				Error("failed to save classifier")
		}
	}
}
