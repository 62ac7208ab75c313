package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"loan-qualifier/domain"
)

// NormalizeOptions controls how strictly the raw record is read.
type NormalizeOptions struct {
	// ImputeMissing lets fico and emp_length be omitted; they are then
	// imputed and flagged as missing for the feature projector.
	ImputeMissing bool
}

// NormalizeApplication validates the raw record and returns a clamped
// payload. Fields are checked in request order and the first failure wins.
func NormalizeApplication(
	raw domain.RawApplication,
	opts NormalizeOptions,
) (domain.ApplicationPayload, error) {

	var p domain.ApplicationPayload
	var err error

	if p.LoanAmount, err = requireFloat("loan_amount", raw.LoanAmount); err != nil {
		return domain.ApplicationPayload{}, err
	}
	if p.Term, err = requireInt("term", raw.Term); err != nil {
		return domain.ApplicationPayload{}, err
	}
	if p.Purpose, err = requireString("purpose", raw.Purpose); err != nil {
		return domain.ApplicationPayload{}, err
	}
	if p.AnnualIncome, err = requireFloat("annual_income", raw.AnnualIncome); err != nil {
		return domain.ApplicationPayload{}, err
	}

	p.EmpLength, p.EmpLengthPresent = DefaultEmpLength, false
	if !imputable(raw.EmpLength, opts) {
		if p.EmpLength, err = requireFloat("emp_length", raw.EmpLength); err != nil {
			return domain.ApplicationPayload{}, err
		}
		p.EmpLengthPresent = true
	}

	if p.DTI, err = requireFloat("dti", raw.DTI); err != nil {
		return domain.ApplicationPayload{}, err
	}
	if p.Utilization, err = requireFloat("utilization", raw.Utilization); err != nil {
		return domain.ApplicationPayload{}, err
	}
	if p.Delinquencies, err = requireFloat("delinquencies", raw.Delinquencies); err != nil {
		return domain.ApplicationPayload{}, err
	}

	p.Fico, p.FicoPresent = DefaultFicoEstimate, false
	if !imputable(raw.Fico, opts) {
		if p.Fico, err = requireFloat("fico", raw.Fico); err != nil {
			return domain.ApplicationPayload{}, err
		}
		p.FicoPresent = true
	}

	if p.LoanAmount < 0 {
		return domain.ApplicationPayload{}, outOfDomain("loan_amount", "loan_amount must be >= 0")
	}
	if !slices.Contains(AllowedTerms, p.Term) {
		return domain.ApplicationPayload{}, outOfDomain("term", "term must be 36 or 60")
	}
	if p.Purpose == "" {
		return domain.ApplicationPayload{}, outOfDomain("purpose", "purpose must be a non-empty string")
	}

	// Fuera de rango se trata como extremo, no como error
	p.DTI = clamp(p.DTI, MinDTI, MaxDTI)
	p.Utilization = clamp(p.Utilization, MinUtilization, MaxUtilization)
	p.Fico = clamp(p.Fico, MinFico, MaxFico)
	p.EmpLength = clamp(p.EmpLength, MinEmpLength, MaxEmpLength)
	p.Delinquencies = clamp(p.Delinquencies, MinDelinquencies, MaxDelinquencies)
	p.AnnualIncome = math.Max(0, p.AnnualIncome)

	return p, nil
}

func imputable(v domain.RawValue, opts NormalizeOptions) bool {
	return opts.ImputeMissing && (!v.Present() || v.IsNull())
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func decodeScalar(v domain.RawValue) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(v.Raw()))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func requireFloat(field string, v domain.RawValue) (float64, error) {
	if !v.Present() {
		return 0, domain.NewMissingFieldError(field)
	}
	scalar, err := decodeScalar(v)
	if err != nil {
		return 0, malformed(field, fmt.Sprintf("%s must be a number", field))
	}
	f, ok := domain.AsFloat(scalar)
	if !ok {
		return 0, malformed(field, fmt.Sprintf("%s must be a number", field))
	}
	return f, nil
}

// requireInt truncates fractional numbers toward zero; strings must hold an
// integer literal.
func requireInt(field string, v domain.RawValue) (int, error) {
	if !v.Present() {
		return 0, domain.NewMissingFieldError(field)
	}
	scalar, err := decodeScalar(v)
	if err != nil {
		return 0, malformed(field, fmt.Sprintf("%s must be an integer", field))
	}

	switch n := scalar.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
			return 0, malformed(field, fmt.Sprintf("%s must be an integer", field))
		}
		return int(math.Trunc(f)), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, malformed(field, fmt.Sprintf("%s must be an integer", field))
		}
		return i, nil
	}
	return 0, malformed(field, fmt.Sprintf("%s must be an integer", field))
}

func requireString(field string, v domain.RawValue) (string, error) {
	if !v.Present() {
		return "", domain.NewMissingFieldError(field)
	}
	scalar, err := decodeScalar(v)
	if err != nil {
		return "", malformed(field, fmt.Sprintf("%s must be a non-empty string", field))
	}

	switch s := scalar.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	}
	return "", malformed(field, fmt.Sprintf("%s must be a non-empty string", field))
}

func malformed(field, msg string) *domain.ValidationError {
	return &domain.ValidationError{Field: field, Kind: domain.KindMalformed, Msg: msg}
}

func outOfDomain(field, msg string) *domain.ValidationError {
	return &domain.ValidationError{Field: field, Kind: domain.KindOutOfDomain, Msg: msg}
}
