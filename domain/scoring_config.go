package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const DefaultThreshold = 0.5

// ScoringConfig is the per-stage configuration loaded with the model. Metrics
// and UIMetadata are passed through to clients untouched.
type ScoringConfig struct {
	Threshold float64
	// LowMax is band_policy.risk_bands.low.max; nil when absent or malformed.
	LowMax     *float64
	Metrics    map[string]any
	UIMetadata map[string]any
}

// NewScoringConfig reads the threshold and band policy out of a stage's
// metrics blob. A threshold that is present but not numeric is an error; a
// malformed band policy is not, the caller falls back instead.
func NewScoringConfig(metrics, uiMetadata map[string]any) (ScoringConfig, error) {
	if metrics == nil {
		metrics = map[string]any{}
	}
	if uiMetadata == nil {
		uiMetadata = map[string]any{}
	}

	cfg := ScoringConfig{
		Threshold:  DefaultThreshold,
		Metrics:    metrics,
		UIMetadata: uiMetadata,
	}

	if raw, ok := metrics["threshold"]; ok {
		t, ok := AsFloat(raw)
		if !ok {
			return ScoringConfig{}, fmt.Errorf("threshold must be numeric, got %v", raw)
		}
		cfg.Threshold = t
	}

	if lowMax, ok := lookupLowMax(metrics); ok {
		cfg.LowMax = &lowMax
	}

	return cfg, nil
}

func lookupLowMax(metrics map[string]any) (float64, bool) {
	node := any(metrics)
	for _, key := range []string{"band_policy", "risk_bands", "low", "max"} {
		m, ok := node.(map[string]any)
		if !ok {
			return 0, false
		}
		if node, ok = m[key]; !ok {
			return 0, false
		}
	}
	return AsFloat(node)
}

// AsFloat converts a decoded JSON/YAML scalar to a finite float. Numeric
// strings are accepted; booleans are not.
func AsFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
