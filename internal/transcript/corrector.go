// Package transcript repairs recognition errors in dictated symptom
// descriptions before they reach the analysis pipeline.
//
// Raw speech-to-text output is rarely perfect for clinical vocabulary —
// condition names, anatomical terms, and symptom phrases are frequently
// misheard ("takicardia" for "taquicardia"). The [Corrector] aligns each
// word, and each multi-word window, of the transcript against a known
// lexicon using phonetic matching, substituting the lexicon term when the
// match is confident.
//
// Each [Correction] records the substitution and its confidence, so callers
// can audit or display the changes.
package transcript

import (
	"strings"
	"unicode/utf8"

	"github.com/pvillacis/triaje593/internal/transcript/phonetic"
)

// minMatchRunes is the shortest window the corrector will try to match.
// Short function words ("de", "la", "con") carry no clinical signal and
// produce spurious phonetic hits.
const minMatchRunes = 5

// Symptom phrases often share a leading word ("dolor ..."), which inflates
// prefix-weighted similarity between unrelated terms. The corrector therefore
// demands much higher scores than the matcher's general-purpose defaults.
const (
	phoneticThreshold = 0.90
	fuzzyThreshold    = 0.93
)

// Correction captures a single substitution made by the corrector.
type Correction struct {
	// Original is the text as produced by the recognition service.
	Original string

	// Corrected is the lexicon term that replaced it.
	Corrected string

	// Confidence is the match score for this substitution (0.0–1.0).
	Confidence float64
}

// Corrector aligns transcript words against a clinical lexicon.
// It is safe for concurrent use; the lexicon is fixed at construction time.
type Corrector struct {
	matcher *phonetic.Matcher

	// termsByWords groups the lexicon by word count, so an n-word window is
	// only ever compared against n-word terms. Without this, a shared token
	// ("dolor") would pull a single word into a multi-word term.
	termsByWords map[int][]string
	maxTermWords int
}

// Option is a functional option for configuring a [Corrector].
type Option func(*Corrector)

// WithMatcher replaces the default phonetic matcher.
func WithMatcher(m *phonetic.Matcher) Option {
	return func(c *Corrector) {
		c.matcher = m
	}
}

// NewCorrector builds a [Corrector] over the given lexicon. Empty terms are
// ignored. With a nil or empty lexicon, Correct returns its input unchanged.
func NewCorrector(lexicon []string, opts ...Option) *Corrector {
	c := &Corrector{
		matcher: phonetic.New(
			phonetic.WithPhoneticThreshold(phoneticThreshold),
			phonetic.WithFuzzyThreshold(fuzzyThreshold),
		),
		termsByWords: make(map[int][]string),
	}
	for _, term := range lexicon {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		n := len(strings.Fields(term))
		c.termsByWords[n] = append(c.termsByWords[n], term)
		if n > c.maxTermWords {
			c.maxTermWords = n
		}
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Correct aligns text against the lexicon and returns the corrected text
// together with the list of substitutions applied.
//
// At each token position, n-gram windows are tried from the widest lexicon
// term down to a single word; the longest confident match wins and the
// cursor advances past the consumed tokens. Unmatched tokens pass through
// unchanged.
func (c *Corrector) Correct(text string) (string, []Correction) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 || c.maxTermWords == 0 {
		return text, nil
	}

	var (
		output      []string
		corrections []Correction
	)

	i := 0
	for i < len(tokens) {
		maxN := c.maxTermWords
		if i+maxN > len(tokens) {
			maxN = len(tokens) - i
		}

		matched := false
		for n := maxN; n >= 1; n-- {
			terms := c.termsByWords[n]
			if len(terms) == 0 {
				continue
			}
			window := strings.Join(tokens[i:i+n], " ")
			if utf8.RuneCountInString(window) < minMatchRunes {
				continue
			}

			term, conf, ok := c.matcher.Match(window, terms)
			if !ok {
				continue
			}

			output = append(output, strings.Fields(term)...)
			if !strings.EqualFold(window, term) {
				corrections = append(corrections, Correction{
					Original:   window,
					Corrected:  term,
					Confidence: conf,
				})
			}
			i += n
			matched = true
			break
		}

		if !matched {
			output = append(output, tokens[i])
			i++
		}
	}

	return strings.Join(output, " "), corrections
}
