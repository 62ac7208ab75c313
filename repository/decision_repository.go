package repository

import "loan-qualifier/domain"

// DecisionRepository keeps the audit trail of qualification outcomes.
type DecisionRepository interface {
	Save(record domain.DecisionRecord) error
	// Recent returns up to limit records, most recent first.
	Recent(limit int) ([]domain.DecisionRecord, error)
}
