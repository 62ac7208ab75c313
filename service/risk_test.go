package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-qualifier/domain"
)

func ptr(f float64) *float64 { return &f }

func TestBandThresholds(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.ScoringConfig
		want domain.BandThresholds
	}{
		{"policy", domain.ScoringConfig{Threshold: 0.5, LowMax: ptr(0.2)}, domain.BandThresholds{Medium: 0.2, High: 0.5}},
		{"fallback", domain.ScoringConfig{Threshold: 0.5}, domain.BandThresholds{Medium: 0.35, High: 0.5}},
		{"fallback capped by high", domain.ScoringConfig{Threshold: 0.3}, domain.BandThresholds{Medium: 0.3, High: 0.3}},
		{"policy above high falls back", domain.ScoringConfig{Threshold: 0.4, LowMax: ptr(0.6)}, domain.BandThresholds{Medium: 0.35, High: 0.4}},
		{"policy equal to high", domain.ScoringConfig{Threshold: 0.4, LowMax: ptr(0.4)}, domain.BandThresholds{Medium: 0.4, High: 0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BandThresholds(tt.cfg)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got.Medium, got.High)
		})
	}
}

func TestClassifyBand(t *testing.T) {
	th := domain.BandThresholds{Medium: 0.2, High: 0.5}

	assert.Equal(t, domain.RiskBandHigh, ClassifyBand(0.5, th))
	assert.Equal(t, domain.RiskBandHigh, ClassifyBand(0.99, th))
	assert.Equal(t, domain.RiskBandMedium, ClassifyBand(0.2, th))
	assert.Equal(t, domain.RiskBandMedium, ClassifyBand(0.49, th))
	assert.Equal(t, domain.RiskBandLow, ClassifyBand(0.19, th))
	assert.Equal(t, domain.RiskBandLow, ClassifyBand(0, th))
}

func TestClassifyBand_ZeroWidthMedium(t *testing.T) {
	th := BandThresholds(domain.ScoringConfig{Threshold: 0.3})

	for _, p := range []float64{0, 0.1, 0.29, 0.3, 0.31, 1} {
		band := ClassifyBand(p, th)
		assert.NotEqual(t, domain.RiskBandMedium, band, "p=%v", p)
	}
}

func TestClassifyBand_Properties(t *testing.T) {
	th := domain.BandThresholds{Medium: 0.35, High: 0.5}

	for i := 0; i <= 100; i++ {
		p := float64(i) / 100
		band := ClassifyBand(p, th)
		switch {
		case p >= th.High:
			assert.Equal(t, domain.RiskBandHigh, band)
		case p >= th.Medium:
			assert.Equal(t, domain.RiskBandMedium, band)
		default:
			assert.Equal(t, domain.RiskBandLow, band)
		}
	}
}

func TestAssessRisk(t *testing.T) {
	features := domain.Stage2Features{Purpose: "car", Term: 36}
	cfg := domain.ScoringConfig{Threshold: 0.5}

	res, err := AssessRisk(fixedScorer(0.4), features, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.4, res.DefaultProbability)
	assert.Equal(t, domain.RiskBandMedium, res.RiskBand)
	assert.Equal(t, domain.BandThresholds{Medium: 0.35, High: 0.5}, res.Thresholds)
	assert.Equal(t, features, res.InputsUsed)
	assert.False(t, res.Informational)
}

func TestAssessRisk_ScoringError(t *testing.T) {
	_, err := AssessRisk(fixedScorer(2), domain.Stage2Features{}, domain.ScoringConfig{Threshold: 0.5})

	var se *domain.ScoringError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "stage2", se.Stage)
}
