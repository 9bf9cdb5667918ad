package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"loan-simulator/domain"
	"loan-simulator/logger"
	"loan-simulator/repository"
)

type SimulationService struct {
	engine  *Engine
	repo    repository.HistoryRepository
	advisor *Advisor
	now     func() time.Time
	newID   func() string
}

// NewSimulationService creates a SimulationService. advisor may be nil.
func NewSimulationService(
	engine *Engine,
	repo repository.HistoryRepository,
	advisor *Advisor,
) *SimulationService {
	return &SimulationService{
		engine:  engine,
		repo:    repo,
		advisor: advisor,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Simulate runs the engine for every bank and both methods, picks the
// cheapest offer and records the request in the history.
func (s *SimulationService) Simulate(
	ctx context.Context,
	req domain.LoanRequest,
) (domain.Simulation, error) {
	results, err := s.engine.Simulate(req)
	if err != nil {
		return domain.Simulation{}, err
	}

	best, _ := BestOffer(results)

	sim := domain.Simulation{
		ID:        s.newID(),
		CreatedAt: s.now().UTC(),
		Request:   req,
		Results:   results,
		Best:      best,
	}

	if s.advisor != nil {
		sim.Explanation = s.advisor.Explain(ctx, req, best, results)
	}

	// Saving is not critical for the caller
	if err := s.repo.Save(ctx, domain.NewSimulationRecord(sim)); err != nil {
		logger.Warn("failed to save simulation %s: %v", sim.ID, err)
	}

	logger.Debug("simulation %s: %d results, best %s/%s", sim.ID, len(results), best.Bank, best.Method)
	return sim, nil
}

// Schedule returns the month-by-month installments for one bank and method.
func (s *SimulationService) Schedule(
	_ context.Context,
	req domain.LoanRequest,
	bank string,
	method string,
) ([]domain.Installment, error) {
	m, ok := domain.ParseMethod(method)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return s.engine.Schedule(req, bank, m)
}

// History lists recent simulations, newest first. limit is clamped to
// [1, MaxHistoryLimit]; zero or negative selects DefaultHistoryLimit.
func (s *SimulationService) History(ctx context.Context, limit int) ([]domain.SimulationRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	records, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return records, nil
}

func (s *SimulationService) Banks() []domain.BankOffer {
	return s.engine.Banks()
}
