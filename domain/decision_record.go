package domain

import "time"

// DecisionRecord is the audit entry kept for each qualification. It carries
// outcomes only, never the applicant's inputs beyond term and purpose.
type DecisionRecord struct {
	ID                 string    `json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	Decision           Decision  `json:"decision"`
	AcceptProbability  float64   `json:"accept_probability"`
	DefaultProbability float64   `json:"default_probability"`
	RiskBand           RiskBand  `json:"risk_band"`
	Term               int       `json:"term"`
	Purpose            string    `json:"purpose"`
}
