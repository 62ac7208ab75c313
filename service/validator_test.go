package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-qualifier/domain"
)

func TestNormalizeApplication_Baseline(t *testing.T) {
	p, err := NormalizeApplication(rawFromJSON(t, baselineApplication), NormalizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.ApplicationPayload{
		LoanAmount:       10000,
		Term:             36,
		Purpose:          "debt_consolidation",
		AnnualIncome:     50000,
		EmpLength:        5,
		DTI:              15,
		Utilization:      20,
		Delinquencies:    0,
		Fico:             720,
		FicoPresent:      true,
		EmpLengthPresent: true,
	}, p)
}

func TestNormalizeApplication_Clamps(t *testing.T) {
	p, err := NormalizeApplication(rawWith(t, map[string]any{
		"dti":           120,
		"utilization":   -5,
		"fico":          900,
		"emp_length":    70,
		"delinquencies": 99,
		"annual_income": -1000,
	}), NormalizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 80.0, p.DTI)
	assert.Equal(t, 0.0, p.Utilization)
	assert.Equal(t, 850.0, p.Fico)
	assert.Equal(t, 50.0, p.EmpLength)
	assert.Equal(t, 50.0, p.Delinquencies)
	assert.Equal(t, 0.0, p.AnnualIncome)

	p, err = NormalizeApplication(rawWith(t, map[string]any{
		"fico":          100,
		"emp_length":    -3,
		"delinquencies": -1,
		"dti":           -2,
		"utilization":   250,
	}), NormalizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 300.0, p.Fico)
	assert.Equal(t, 0.0, p.EmpLength)
	assert.Equal(t, 0.0, p.Delinquencies)
	assert.Equal(t, 0.0, p.DTI)
	assert.Equal(t, 100.0, p.Utilization)
}

func TestNormalizeApplication_LoanAmountNotClamped(t *testing.T) {
	p, err := NormalizeApplication(rawWith(t, map[string]any{"loan_amount": 5_000_000}), NormalizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5_000_000.0, p.LoanAmount)
}

func TestNormalizeApplication_MissingFields(t *testing.T) {
	fields := []string{
		"loan_amount", "term", "purpose", "annual_income", "emp_length",
		"dti", "utilization", "delinquencies", "fico",
	}

	for _, field := range fields {
		t.Run(field, func(t *testing.T) {
			_, err := NormalizeApplication(rawWith(t, map[string]any{field: nil}), NormalizeOptions{})
			require.Error(t, err)

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, field, ve.Field)
			assert.Equal(t, domain.KindMissing, ve.Kind)
			assert.Equal(t, "Missing required field: "+field, err.Error())
		})
	}
}

func TestNormalizeApplication_EmptyRecordNamesFirstField(t *testing.T) {
	_, err := NormalizeApplication(rawFromJSON(t, `{}`), NormalizeOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loan_amount")
}

func TestNormalizeApplication_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		field     string
		kind      domain.ValidationKind
		msg       string
	}{
		{"term 45", map[string]any{"term": 45}, "term", domain.KindOutOfDomain, "term must be 36 or 60"},
		{"term text", map[string]any{"term": "sixty"}, "term", domain.KindMalformed, "term must be an integer"},
		{"negative loan", map[string]any{"loan_amount": -1}, "loan_amount", domain.KindOutOfDomain, "loan_amount must be >= 0"},
		{"empty purpose", map[string]any{"purpose": ""}, "purpose", domain.KindOutOfDomain, "purpose must be a non-empty string"},
		{"purpose object", map[string]any{"purpose": map[string]any{"a": 1}}, "purpose", domain.KindMalformed, "purpose must be a non-empty string"},
		{"dti text", map[string]any{"dti": "high"}, "dti", domain.KindMalformed, "dti must be a number"},
		{"purpose null", map[string]any{"purpose": json.RawMessage("null")}, "purpose", domain.KindMalformed, "purpose must be a non-empty string"},
		{"fico bool", map[string]any{"fico": true}, "fico", domain.KindMalformed, "fico must be a number"},
		{"income list", map[string]any{"annual_income": []int{1}}, "annual_income", domain.KindMalformed, "annual_income must be a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeApplication(rawWith(t, tt.overrides), NormalizeOptions{})
			require.Error(t, err)

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.kind, ve.Kind)
			assert.Equal(t, tt.msg, ve.Error())
		})
	}
}

// Solo la cadena vacía se rechaza; los espacios se conservan tal cual
func TestNormalizeApplication_BlankPurposeKept(t *testing.T) {
	p, err := NormalizeApplication(rawWith(t, map[string]any{"purpose": "   "}), NormalizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "   ", p.Purpose)
}

func TestNormalizeApplication_NullIsMalformed(t *testing.T) {
	raw := rawFromJSON(t, `{"loan_amount": null}`)
	_, err := NormalizeApplication(raw, NormalizeOptions{})

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, domain.KindMalformed, ve.Kind)
	assert.Equal(t, "loan_amount must be a number", ve.Msg)
}

func TestNormalizeApplication_Coercion(t *testing.T) {
	p, err := NormalizeApplication(rawWith(t, map[string]any{
		"loan_amount": "12500.50",
		"term":        "60",
		"dti":         " 22 ",
		"purpose":     7,
	}), NormalizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 12500.5, p.LoanAmount)
	assert.Equal(t, 60, p.Term)
	assert.Equal(t, 22.0, p.DTI)
	assert.Equal(t, "7", p.Purpose)

	p, err = NormalizeApplication(rawWith(t, map[string]any{"term": 36.9}), NormalizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 36, p.Term)
}

func TestNormalizeApplication_CoercionRunsBeforeDomainChecks(t *testing.T) {
	// term es inválido, pero dti falla antes en el orden de coerción
	_, err := NormalizeApplication(rawWith(t, map[string]any{"term": 45, "dti": "x"}), NormalizeOptions{})
	require.Error(t, err)
	assert.Equal(t, "dti must be a number", err.Error())
}

func TestNormalizeApplication_StrictRequiresFicoAndEmpLength(t *testing.T) {
	_, err := NormalizeApplication(rawWith(t, map[string]any{"fico": nil}), NormalizeOptions{})
	assert.EqualError(t, err, "Missing required field: fico")

	_, err = NormalizeApplication(rawWith(t, map[string]any{"emp_length": nil}), NormalizeOptions{})
	assert.EqualError(t, err, "Missing required field: emp_length")
}

func TestNormalizeApplication_ImputeMissing(t *testing.T) {
	opts := NormalizeOptions{ImputeMissing: true}

	p, err := NormalizeApplication(rawWith(t, map[string]any{"fico": nil, "emp_length": nil}), opts)
	require.NoError(t, err)
	assert.False(t, p.FicoPresent)
	assert.False(t, p.EmpLengthPresent)
	assert.Equal(t, DefaultFicoEstimate, p.Fico)
	assert.Equal(t, DefaultEmpLength, p.EmpLength)

	p, err = NormalizeApplication(rawFromJSON(t, `{
		"loan_amount": 1000, "term": 36, "purpose": "car", "annual_income": 1,
		"emp_length": null, "dti": 1, "utilization": 1, "delinquencies": 0, "fico": 700
	}`), opts)
	require.NoError(t, err)
	assert.False(t, p.EmpLengthPresent)
	assert.True(t, p.FicoPresent)

	// los demás campos siguen siendo obligatorios
	_, err = NormalizeApplication(rawWith(t, map[string]any{"dti": nil}), opts)
	assert.EqualError(t, err, "Missing required field: dti")

	// un fico presente pero inválido no se imputa
	_, err = NormalizeApplication(rawWith(t, map[string]any{"fico": "abc"}), opts)
	assert.EqualError(t, err, "fico must be a number")
}
