package repository

import (
	"sync"

	"loan-qualifier/domain"
)

const DefaultMemoryDecisionCapacity = 1000

// DecisionRepositoryMemory keeps the latest records in a bounded slice.
type DecisionRepositoryMemory struct {
	mu       sync.Mutex
	capacity int
	data     []domain.DecisionRecord
}

// NewDecisionRepositoryMemory creates an in-memory audit trail holding at
// most capacity records.
func NewDecisionRepositoryMemory(capacity int) *DecisionRepositoryMemory {
	if capacity <= 0 {
		capacity = DefaultMemoryDecisionCapacity
	}
	return &DecisionRepositoryMemory{
		capacity: capacity,
		data:     []domain.DecisionRecord{},
	}
}

// Save stores the record, dropping the oldest one when full.
func (r *DecisionRepositoryMemory) Save(record domain.DecisionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = append(r.data, record)
	if len(r.data) > r.capacity {
		r.data = r.data[len(r.data)-r.capacity:]
	}
	return nil
}

func (r *DecisionRepositoryMemory) Recent(limit int) ([]domain.DecisionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.data) {
		limit = len(r.data)
	}
	out := make([]domain.DecisionRecord, 0, limit)
	for i := len(r.data) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.data[i])
	}
	return out, nil
}
