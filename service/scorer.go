package service

import (
	"errors"
	"fmt"
	"math"

	"loan-qualifier/domain"
)

// Scorer is a stage's scoring capability: it maps a feature record to a
// probability in [0,1]. Implementations must be safe for concurrent use.
type Scorer interface {
	Score(features domain.FeatureRecord) (float64, error)
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(features domain.FeatureRecord) (float64, error)

func (f ScorerFunc) Score(features domain.FeatureRecord) (float64, error) {
	return f(features)
}

// Stage pairs a scoring capability with its configuration. Both are loaded
// once and shared read-only across requests.
type Stage struct {
	Scorer Scorer
	Config domain.ScoringConfig
}

var errNoScorer = errors.New("no scoring capability configured")

// probability invokes the scorer once and checks the result is usable. A
// panicking scorer is reported as a ScoringError.
func probability(stage string, scorer Scorer, features domain.FeatureRecord) (p float64, err error) {
	if scorer == nil {
		return 0, &domain.ScoringError{Stage: stage, Err: errNoScorer}
	}

	defer func() {
		if r := recover(); r != nil {
			p, err = 0, &domain.ScoringError{Stage: stage, Err: fmt.Errorf("scorer panic: %v", r)}
		}
	}()

	p, err = scorer.Score(features)
	if err != nil {
		return 0, &domain.ScoringError{Stage: stage, Err: err}
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, &domain.ScoringError{
			Stage: stage,
			Err:   fmt.Errorf("probability %v outside [0,1]", p),
		}
	}
	return p, nil
}
