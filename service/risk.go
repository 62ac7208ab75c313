package service

import (
	"math"

	"loan-qualifier/domain"
)

const stage2Name = "stage2"

// ScoreDefault returns the stage-2 default probability.
func ScoreDefault(scorer Scorer, features domain.Stage2Features) (float64, error) {
	return probability(stage2Name, scorer, features.Record())
}

// BandThresholds derives the medium/high boundaries from the stage-2 config.
// A band policy boundary above the high threshold is not usable. Without a
// usable one the medium boundary is min(0.35, high), which leaves the Medium
// band empty when high < 0.35.
func BandThresholds(cfg domain.ScoringConfig) domain.BandThresholds {
	high := cfg.Threshold
	medium := math.Min(FallbackMediumThreshold, high)
	if cfg.LowMax != nil && *cfg.LowMax <= high {
		medium = *cfg.LowMax
	}
	return domain.BandThresholds{Medium: medium, High: high}
}

func ClassifyBand(p float64, t domain.BandThresholds) domain.RiskBand {
	switch {
	case p >= t.High:
		return domain.RiskBandHigh
	case p >= t.Medium:
		return domain.RiskBandMedium
	default:
		return domain.RiskBandLow
	}
}

// AssessRisk scores the stage-2 view and classifies it.
func AssessRisk(
	scorer Scorer,
	features domain.Stage2Features,
	cfg domain.ScoringConfig,
) (domain.Stage2Result, error) {

	p, err := ScoreDefault(scorer, features)
	if err != nil {
		return domain.Stage2Result{}, err
	}

	thresholds := BandThresholds(cfg)
	return domain.Stage2Result{
		DefaultProbability: p,
		RiskBand:           ClassifyBand(p, thresholds),
		Thresholds:         thresholds,
		InputsUsed:         features,
	}, nil
}
