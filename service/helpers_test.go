package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"loan-qualifier/domain"
)

const baselineApplication = `{
	"loan_amount": 10000,
	"term": 36,
	"purpose": "debt_consolidation",
	"annual_income": 50000,
	"emp_length": 5,
	"dti": 15,
	"utilization": 20,
	"delinquencies": 0,
	"fico": 720
}`

func rawFromJSON(t *testing.T, body string) domain.RawApplication {
	t.Helper()
	var raw domain.RawApplication
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

// rawWith returns the baseline application with fields overridden; a nil
// value removes the key.
func rawWith(t *testing.T, overrides map[string]any) domain.RawApplication {
	t.Helper()
	m := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(baselineApplication), &m))
	for k, v := range overrides {
		if v == nil {
			delete(m, k)
			continue
		}
		m[k] = v
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return rawFromJSON(t, string(b))
}

func fixedScorer(p float64) Scorer {
	return ScorerFunc(func(domain.FeatureRecord) (float64, error) { return p, nil })
}
