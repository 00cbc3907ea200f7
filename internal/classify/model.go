// Package classify wraps the pretrained specialty model and its label
// decoder behind an explicitly constructed, read-only service.
//
// The model ships as two gob-encoded artifacts on disk: the classifier blob
// (term vocabulary, per-class priors and per-class term log-weights) and the
// label blob (the ordered specialty names the class indices decode to). Both
// are loaded once at startup via [Load]; a missing or corrupt artifact keeps
// the system in degraded mode, it never crashes a request.
package classify

import (
	"encoding/gob"
	"fmt"
	"os"
)

// ModelBlob is the on-disk layout of the classifier artifact.
type ModelBlob struct {
	// Vocabulary maps a normalized term to its column in TermLogProb.
	Vocabulary map[string]int

	// ClassLogPrior holds the log prior probability per class index.
	ClassLogPrior []float64

	// TermLogProb holds the log term weight per [class][term column].
	TermLogProb [][]float64
}

// LabelBlob is the on-disk layout of the label decoder artifact. Classes is
// ordered: index i decodes class i of the model.
type LabelBlob struct {
	Classes []string
}

// ReadBlob gob-decodes the artifact at path into out.
func ReadBlob(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("classify: open artifact %q: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(out); err != nil {
		return fmt.Errorf("classify: decode artifact %q: %w", path, err)
	}
	return nil
}

// WriteBlob gob-encodes blob to path. Used by the artifact export tooling
// and by tests that build fixture models.
func WriteBlob(path string, blob any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("classify: create artifact %q: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(blob); err != nil {
		return fmt.Errorf("classify: encode artifact %q: %w", path, err)
	}
	return nil
}

// Load reads and cross-validates both artifacts and returns a ready
// [Classifier]. Callers treat any error as the degraded-mode signal: log it,
// keep the classifier nil, and let rule-based components carry on.
func Load(classifierPath, labelsPath string) (*Classifier, error) {
	var model ModelBlob
	if err := ReadBlob(classifierPath, &model); err != nil {
		return nil, err
	}
	var labels LabelBlob
	if err := ReadBlob(labelsPath, &labels); err != nil {
		return nil, err
	}

	n := len(labels.Classes)
	if n == 0 {
		return nil, fmt.Errorf("classify: label artifact %q holds no classes", labelsPath)
	}
	if len(model.ClassLogPrior) != n || len(model.TermLogProb) != n {
		return nil, fmt.Errorf("classify: artifact mismatch: %d labels, %d priors, %d weight rows",
			n, len(model.ClassLogPrior), len(model.TermLogProb))
	}
	for i, row := range model.TermLogProb {
		if len(row) != len(model.Vocabulary) {
			return nil, fmt.Errorf("classify: weight row %d has %d columns, vocabulary has %d terms",
				i, len(row), len(model.Vocabulary))
		}
	}

	return &Classifier{model: model, classes: labels.Classes}, nil
}
