package bayesian

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Snapshot is the persistable state of a classifier.
type Snapshot struct {
	Partition  Partition
	Trained    bool
	Statistics ClassStatistics
	Priors     Priors
}

func (c *Classifier) Snapshot() Snapshot {
	c.mx.RLock()
	defer c.mx.RUnlock()

	s := Snapshot{Partition: c.partition}
	if c.model != nil {
		s.Trained = true
		s.Statistics = c.model.stats
		s.Priors = c.model.priors
	}
	return s
}

// Restore replaces the classifier state with the snapshot.
func (c *Classifier) Restore(s Snapshot) {
	var m *model
	if s.Trained {
		m = &model{stats: s.Statistics, priors: s.Priors}
	}

	c.mx.Lock()
	c.partition = s.Partition
	c.model = m
	c.mx.Unlock()
}

func loadSnapshot(filePath string) (Snapshot, bool, error) {
	var s Snapshot

	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, false, nil
		}
		return s, false, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	err = gob.NewDecoder(f).Decode(&s)
	if err != nil {
		return s, false, fmt.Errorf("gob decode: %w", err)
	}

	return s, true, nil
}

func saveSnapshot(filePath string, s Snapshot) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	err = gob.NewEncoder(f).Encode(s)
	if err != nil {
		f.Close()
		return fmt.Errorf("gob encode: %w", err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	return nil
}
