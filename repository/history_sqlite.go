package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"loan-simulator/domain"
	"loan-simulator/logger"
)

// HistorySQLite persists simulation records to a SQLite database.
type HistorySQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// NewHistorySQLite opens (or creates) the database and runs migrations.
func NewHistorySQLite(dbPath string) (*HistorySQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &HistorySQLite{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite history opened: %s", dbPath)
	return r, nil
}

func (r *HistorySQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS simulations (
			id                      TEXT PRIMARY KEY,
			created_at              INTEGER NOT NULL,
			property_value          REAL,
			down_payment_percentage REAL,
			term_months             INTEGER,
			apply_subsidy           INTEGER,
			result_count            INTEGER,
			best_bank               TEXT,
			best_method             TEXT,
			best_total_paid         REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_simulations_created ON simulations(created_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *HistorySQLite) Save(ctx context.Context, rec domain.SimulationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO simulations
		(id, created_at, property_value, down_payment_percentage, term_months,
		 apply_subsidy, result_count, best_bank, best_method, best_total_paid)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.CreatedAt.UnixMilli(),
		rec.PropertyValue, rec.DownPaymentPercentage, rec.TermMonths,
		boolToInt(rec.ApplySubsidy), rec.ResultCount,
		rec.BestBank, string(rec.BestMethod), rec.BestTotalPaid,
	)
	if err != nil {
		return fmt.Errorf("insert simulation %s: %w", rec.ID, err)
	}
	return nil
}

func (r *HistorySQLite) Recent(ctx context.Context, limit int) ([]domain.SimulationRecord, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	rows, err := r.db.QueryContext(ctx, `SELECT
		id, created_at, property_value, down_payment_percentage, term_months,
		apply_subsidy, result_count, best_bank, best_method, best_total_paid
		FROM simulations
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query simulations: %w", err)
	}
	defer rows.Close()

	out := []domain.SimulationRecord{}
	for rows.Next() {
		var (
			rec       domain.SimulationRecord
			createdAt int64
			subsidy   int
			method    string
		)
		if err := rows.Scan(
			&rec.ID, &createdAt, &rec.PropertyValue, &rec.DownPaymentPercentage, &rec.TermMonths,
			&subsidy, &rec.ResultCount, &rec.BestBank, &method, &rec.BestTotalPaid,
		); err != nil {
			return nil, fmt.Errorf("scan simulation: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		rec.ApplySubsidy = subsidy != 0
		rec.BestMethod = domain.Method(method)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *HistorySQLite) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM simulations WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete simulations: %w", err)
	}
	return res.RowsAffected()
}

func (r *HistorySQLite) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
