package repository

import (
	"context"
	"sync"
	"time"

	"loan-simulator/domain"
)

// HistoryMemory is an in-memory implementation of HistoryRepository.
type HistoryMemory struct {
	mu   sync.RWMutex
	data []domain.SimulationRecord
}

// NewHistoryMemory creates an empty in-memory history.
func NewHistoryMemory() *HistoryMemory {
	return &HistoryMemory{
		data: []domain.SimulationRecord{},
	}
}

// Save appends the record.
func (r *HistoryMemory) Save(_ context.Context, rec domain.SimulationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = append(r.data, rec)
	return nil
}

func (r *HistoryMemory) Recent(_ context.Context, limit int) ([]domain.SimulationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.data) {
		limit = len(r.data)
	}

	out := make([]domain.SimulationRecord, 0, limit)
	for i := len(r.data) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.data[i])
	}
	return out, nil
}

func (r *HistoryMemory) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.data[:0]
	var removed int64
	for _, rec := range r.data {
		if rec.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	r.data = kept
	return removed, nil
}

func (r *HistoryMemory) Close() error { return nil }
