package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-simulator/domain"
)

type MockHistoryRepository struct {
	SaveCalled bool
	ForceError bool
	Saved      []domain.SimulationRecord
	LastLimit  int
}

func (m *MockHistoryRepository) Save(_ context.Context, rec domain.SimulationRecord) error {
	m.SaveCalled = true
	if m.ForceError {
		return errors.New("save error")
	}
	m.Saved = append(m.Saved, rec)
	return nil
}

func (m *MockHistoryRepository) Recent(_ context.Context, limit int) ([]domain.SimulationRecord, error) {
	m.LastLimit = limit
	if m.ForceError {
		return nil, errors.New("recent error")
	}
	return m.Saved, nil
}

func (m *MockHistoryRepository) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (m *MockHistoryRepository) Close() error { return nil }

func newTestService(t *testing.T, repo *MockHistoryRepository, advisor *Advisor) *SimulationService {
	t.Helper()

	svc := NewSimulationService(newTestEngine(t), repo, advisor)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "sim-1" }
	return svc
}

func TestSimulationService_Simulate(t *testing.T) {
	repo := &MockHistoryRepository{}
	svc := newTestService(t, repo, nil)

	sim, err := svc.Simulate(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "sim-1", sim.ID)
	assert.Len(t, sim.Results, 8)
	assert.Equal(t, "Caixa", sim.Best.Bank)
	assert.Empty(t, sim.Explanation)

	require.True(t, repo.SaveCalled)
	require.Len(t, repo.Saved, 1)
	rec := repo.Saved[0]
	assert.Equal(t, "sim-1", rec.ID)
	assert.Equal(t, 8, rec.ResultCount)
	assert.Equal(t, "Caixa", rec.BestBank)
	assert.Equal(t, domain.MethodSAC, rec.BestMethod)
	assert.Equal(t, sim.Best.TotalPaid, rec.BestTotalPaid)
	assert.Equal(t, 360, rec.TermMonths)
}

func TestSimulationService_SaveErrorIsNotFatal(t *testing.T) {
	repo := &MockHistoryRepository{ForceError: true}
	svc := newTestService(t, repo, nil)

	sim, err := svc.Simulate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Len(t, sim.Results, 8)
	assert.True(t, repo.SaveCalled)
}

func TestSimulationService_InvalidRequest(t *testing.T) {
	repo := &MockHistoryRepository{}
	svc := newTestService(t, repo, nil)

	req := validRequest()
	req.PropertyValue = 49999

	_, err := svc.Simulate(context.Background(), req)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.False(t, repo.SaveCalled, "repository Save should NOT be called")
}

func TestSimulationService_FallbackExplanation(t *testing.T) {
	svc := newTestService(t, &MockHistoryRepository{}, NewAdvisor("", "", ""))

	sim, err := svc.Simulate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Contains(t, sim.Explanation, "Caixa")
	assert.Contains(t, sim.Explanation, "SAC")
}

func TestSimulationService_Schedule(t *testing.T) {
	svc := newTestService(t, &MockHistoryRepository{}, nil)

	rows, err := svc.Schedule(context.Background(), validRequest(), "Caixa", "SAC")
	require.NoError(t, err)
	assert.Len(t, rows, 360)

	_, err = svc.Schedule(context.Background(), validRequest(), "Caixa", "sac")
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = svc.Schedule(context.Background(), validRequest(), "Inter", "PRICE")
	assert.ErrorIs(t, err, ErrUnknownBank)
}

func TestSimulationService_HistoryLimit(t *testing.T) {
	repo := &MockHistoryRepository{}
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryLimit, repo.LastLimit)

	_, err = svc.History(ctx, 5000)
	require.NoError(t, err)
	assert.Equal(t, MaxHistoryLimit, repo.LastLimit)

	_, err = svc.History(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, repo.LastLimit)

	repo.ForceError = true
	_, err = svc.History(ctx, 7)
	assert.Error(t, err)
}

func TestSimulationService_Banks(t *testing.T) {
	svc := newTestService(t, &MockHistoryRepository{}, nil)

	banks := svc.Banks()
	require.Len(t, banks, 4)
	banks[0].AnnualRate = 1

	assert.Equal(t, 0.089, svc.Banks()[0].AnnualRate)
}
