// Package sentiment wraps the VADER lexicon analyzer behind the three-way
// classification used throughout the dashboard.
package sentiment

import (
	"github.com/jonreiter/govader"
)

// Label is the three-way sentiment classification of a text.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// Classification thresholds on the compound score. Values exactly at the
// boundary count as neutral.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Result holds the compound polarity score in [-1, 1] and its derived label.
type Result struct {
	Compound float64
	Label    Label
}

// Classify maps a compound score to its label.
func Classify(compound float64) Label {
	switch {
	case compound > positiveThreshold:
		return Positive
	case compound < negativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

// Scorer scores free text with the VADER lexicon. Scoring is deterministic
// and does no I/O; a single Scorer is safe to reuse across calls.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewScorer creates a Scorer with the standard VADER lexicon.
func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the compound polarity of text and its label.
func (s *Scorer) Score(text string) Result {
	polarity := s.analyzer.PolarityScores(text)
	return Result{
		Compound: polarity.Compound,
		Label:    Classify(polarity.Compound),
	}
}
