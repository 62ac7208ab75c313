package domain

import (
	"bytes"
	"encoding/json"
)

// RawValue keeps the undecoded JSON of a single request field together with
// whether the key appeared in the request at all.
type RawValue struct {
	raw     json.RawMessage
	present bool
}

// UnmarshalJSON records the field as present. A literal null is kept as-is
// so the validator can reject it.
func (v *RawValue) UnmarshalJSON(b []byte) error {
	v.raw = append(v.raw[:0], b...)
	v.present = true
	return nil
}

// MarshalJSON writes the raw value back, or null when absent.
func (v RawValue) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// Present reports whether the key was sent.
func (v RawValue) Present() bool {
	return v.present
}

// IsNull reports whether the key was sent with a JSON null.
func (v RawValue) IsNull() bool {
	return v.present && bytes.Equal(bytes.TrimSpace(v.raw), []byte("null"))
}

// Raw returns the undecoded JSON bytes.
func (v RawValue) Raw() json.RawMessage {
	return v.raw
}

// NewRawValue builds a present RawValue from any JSON-encodable value.
func NewRawValue(value any) (RawValue, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return RawValue{}, err
	}
	return RawValue{raw: b, present: true}, nil
}

// RawApplication is the application record as received from the client.
// Every field is optional at this level; NormalizeApplication decides what
// is required.
type RawApplication struct {
	LoanAmount    RawValue `json:"loan_amount"`
	Term          RawValue `json:"term"`
	Purpose       RawValue `json:"purpose"`
	AnnualIncome  RawValue `json:"annual_income"`
	EmpLength     RawValue `json:"emp_length"`
	DTI           RawValue `json:"dti"`
	Utilization   RawValue `json:"utilization"`
	Delinquencies RawValue `json:"delinquencies"`
	Fico          RawValue `json:"fico"`
}

// ApplicationPayload is the normalized application. All numeric fields are
// within their clamp ranges once built by the validator.
type ApplicationPayload struct {
	LoanAmount    float64 `json:"loan_amount"`
	Term          int     `json:"term"`
	Purpose       string  `json:"purpose"`
	AnnualIncome  float64 `json:"annual_income"`
	EmpLength     float64 `json:"emp_length"`
	DTI           float64 `json:"dti"`
	Utilization   float64 `json:"utilization"`
	Delinquencies float64 `json:"delinquencies"`
	Fico          float64 `json:"fico"`

	// Presence bits from the raw record, needed for missingness flags.
	FicoPresent      bool `json:"fico_present"`
	EmpLengthPresent bool `json:"emp_length_present"`
}
