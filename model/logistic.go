package model

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"loan-qualifier/domain"
)

// NumericTerm is one standardized linear term: coef * (x - mean) / scale.
type NumericTerm struct {
	Coef  float64 `json:"coef"`
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// CategoricalTerm holds one-hot weights; unseen categories contribute
// Default.
type CategoricalTerm struct {
	Weights map[string]float64 `json:"weights"`
	Default float64            `json:"default"`
}

// LogisticModel is a fitted logistic regression exported as JSON. It is
// read-only after loading and safe for concurrent use.
type LogisticModel struct {
	Name        string                     `json:"name"`
	Intercept   float64                    `json:"intercept"`
	Numeric     map[string]NumericTerm     `json:"numeric"`
	Categorical map[string]CategoricalTerm `json:"categorical"`

	// fixed summation order keeps scores bit-for-bit reproducible
	numericOrder     []string
	categoricalOrder []string
}

// prepare validates the terms and fixes their evaluation order.
func (m *LogisticModel) prepare() error {
	if len(m.Numeric) == 0 && len(m.Categorical) == 0 {
		return errors.New("model has no terms")
	}
	for name, term := range m.Numeric {
		if math.IsNaN(term.Coef) || math.IsInf(term.Coef, 0) {
			return errors.Errorf("coefficient for %s is not finite", name)
		}
		if term.Scale < 0 {
			return errors.Errorf("scale for %s must be >= 0", name)
		}
	}

	m.numericOrder = sortedKeys(m.Numeric)
	m.categoricalOrder = sortedKeys(m.Categorical)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Features lists the numeric inputs the model requires, sorted.
func (m *LogisticModel) Features() []string {
	return sortedKeys(m.Numeric)
}

// Score returns the positive-class probability for the record.
func (m *LogisticModel) Score(features domain.FeatureRecord) (float64, error) {
	z := m.Intercept

	numericOrder, categoricalOrder := m.numericOrder, m.categoricalOrder
	if len(numericOrder) != len(m.Numeric) || len(categoricalOrder) != len(m.Categorical) {
		numericOrder, categoricalOrder = sortedKeys(m.Numeric), sortedKeys(m.Categorical)
	}

	for _, name := range numericOrder {
		term := m.Numeric[name]
		x, ok := features.Numeric[name]
		if !ok {
			return 0, errors.Errorf("missing feature %q", name)
		}
		scale := term.Scale
		if scale == 0 {
			scale = 1
		}
		z += term.Coef * (x - term.Mean) / scale
	}

	for _, name := range categoricalOrder {
		term := m.Categorical[name]
		value, ok := features.Categorical[name]
		if !ok {
			return 0, errors.Errorf("missing feature %q", name)
		}
		if w, ok := term.Weights[value]; ok {
			z += w
		} else {
			z += term.Default
		}
	}

	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
