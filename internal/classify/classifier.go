package classify

import (
	"errors"
	"math"
	"slices"
	"strings"
)

// topK is the number of alternative specialties reported alongside the
// prediction.
const topK = 3

// ErrEmptyInput is returned by [Classifier.Classify] for empty or
// whitespace-only text. The orchestrator rejects such input upstream, so
// hitting this error indicates a caller bug.
var ErrEmptyInput = errors.New("classify: empty input text")

// Prediction pairs a specialty with its probability.
type Prediction struct {
	Specialty   string  `json:"specialty"`
	Probability float64 `json:"probability"`
}

// Result is the outcome of one classification call. Distribution covers the
// full closed specialty set and sums to 1 within floating tolerance;
// Specialty is its argmax with ties broken by lowest class index.
type Result struct {
	Specialty    string             `json:"specialty"`
	Confidence   float64            `json:"confidence"`
	Distribution map[string]float64 `json:"distribution"`
	Top          []Prediction       `json:"top"`
}

// Classifier scores normalized symptom text against the loaded model. It is
// read-only after [Load] and therefore safe for concurrent use without
// locking.
type Classifier struct {
	model   ModelBlob
	classes []string
}

// Classes returns the ordered, closed specialty set the model predicts over.
func (c *Classifier) Classes() []string {
	return slices.Clone(c.classes)
}

// Classify maps normalized text to a probability distribution over the
// specialty set. The argmax, tie-broken by lowest class index, becomes the
// predicted specialty; the Top field holds the k=3 most probable
// specialties sorted descending, ties in original index order.
func (c *Classifier) Classify(normalizedText string) (Result, error) {
	if strings.TrimSpace(normalizedText) == "" {
		return Result{}, ErrEmptyInput
	}

	scores := slices.Clone(c.model.ClassLogPrior)
	for _, term := range strings.Fields(normalizedText) {
		col, ok := c.model.Vocabulary[term]
		if !ok {
			continue
		}
		for i := range scores {
			scores[i] += c.model.TermLogProb[i][col]
		}
	}

	probs := softmax(scores)

	// Argmax with strict > keeps the lowest index on ties.
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	dist := make(map[string]float64, len(probs))
	for i, p := range probs {
		dist[c.classes[i]] = p
	}

	return Result{
		Specialty:    c.classes[best],
		Confidence:   probs[best],
		Distribution: dist,
		Top:          c.top(probs),
	}, nil
}

// top returns the k most probable specialties. Sorting is stable over the
// original class order, so equal probabilities keep their index order.
func (c *Classifier) top(probs []float64) []Prediction {
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case probs[a] > probs[b]:
			return -1
		case probs[a] < probs[b]:
			return 1
		default:
			return 0
		}
	})

	k := min(topK, len(idx))
	out := make([]Prediction, 0, k)
	for _, i := range idx[:k] {
		out = append(out, Prediction{Specialty: c.classes[i], Probability: probs[i]})
	}
	return out
}

// softmax converts log scores to a probability distribution. The max score
// is subtracted first for numeric stability.
func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	probs := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(s - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
