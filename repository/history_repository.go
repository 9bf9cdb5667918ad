package repository

import (
	"context"
	"time"

	"loan-simulator/domain"
)

// HistoryRepository keeps a log of the simulations served.
type HistoryRepository interface {
	Save(ctx context.Context, rec domain.SimulationRecord) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.SimulationRecord, error)
	// DeleteBefore removes records created before cutoff and reports how many.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}
