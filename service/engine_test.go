package service

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-simulator/domain"
)

func TestNewEngine_Errors(t *testing.T) {
	_, err := NewEngine(domain.BankTable{}, DefaultSubsidyAmount)
	assert.ErrorIs(t, err, domain.ErrEmptyBankTable)

	table, err := domain.NewBankTable(testBanks())
	require.NoError(t, err)

	for _, subsidy := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := NewEngine(table, subsidy)
		assert.Error(t, err, "subsidy %v", subsidy)
	}
}

func TestSimulate_OrderAndCount(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Simulate(validRequest())
	require.NoError(t, err)
	require.Len(t, results, 2*len(testBanks()))

	for i, bank := range testBanks() {
		assert.Equal(t, bank.Name, results[2*i].Bank)
		assert.Equal(t, domain.MethodSAC, results[2*i].Method)
		assert.Equal(t, bank.Name, results[2*i+1].Bank)
		assert.Equal(t, domain.MethodPRICE, results[2*i+1].Method)
	}
}

func TestSimulate_Invariants(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Simulate(validRequest())
	require.NoError(t, err)

	for _, r := range results {
		assert.InDelta(t, r.FinancedAmount, r.TotalPaid-r.TotalInterest, 1e-6, "%s %s", r.Bank, r.Method)

		switch r.Method {
		case domain.MethodSAC:
			assert.Greater(t, r.FirstInstallment, r.LastInstallment)
		case domain.MethodPRICE:
			assert.Equal(t, r.FirstInstallment, r.LastInstallment)
		}
	}
}

func TestSimulate_ReferenceScenario(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Simulate(validRequest())
	require.NoError(t, err)

	annual := map[string]float64{}
	for _, b := range testBanks() {
		annual[b.Name] = b.AnnualRate
	}

	for _, r := range results {
		assert.Equal(t, 240000.0, r.FinancedAmount)

		monthly := math.Pow(1+annual[r.Bank], 1.0/12) - 1
		assert.InDelta(t, monthly, r.MonthlyRate, 1e-12)

		if r.Method == domain.MethodSAC {
			assert.InDelta(t, 240000.0/360+240000*monthly, r.FirstInstallment, 1e-6)
		}
	}
}

func TestSimulate_RejectsBelowMinimumProperty(t *testing.T) {
	engine := newTestEngine(t)

	req := validRequest()
	req.PropertyValue = 49999

	results, err := engine.Simulate(req)
	assert.Nil(t, results)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has(FieldPropertyValue))
	assert.Len(t, verr.Fields, 1)
}

func TestSimulate_ReportsEveryFailingField(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Simulate(domain.LoanRequest{
		PropertyValue:         1000,
		DownPaymentPercentage: 90,
		TermMonths:            6,
	})
	assert.Nil(t, results)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has(FieldPropertyValue))
	assert.True(t, verr.Has(FieldDownPaymentPercentage))
	assert.True(t, verr.Has(FieldTermMonths))
}

func TestSimulate_SubsidyFlooredAtZero(t *testing.T) {
	engine := newTestEngine(t)

	req := domain.LoanRequest{
		PropertyValue:         100000,
		DownPaymentPercentage: 80,
		TermMonths:            120,
		ApplySubsidy:          true,
	}

	results, err := engine.Simulate(req)
	require.NoError(t, err)

	for _, r := range results {
		if r.Bank == "Caixa" {
			assert.Equal(t, 0.0, r.FinancedAmount)
			assert.Equal(t, 0.0, r.FirstInstallment)
			assert.Equal(t, 0.0, r.LastInstallment)
			assert.Equal(t, 0.0, r.TotalPaid)
			assert.Equal(t, 0.0, r.TotalInterest)
			continue
		}
		assert.InDelta(t, 20000.0, r.FinancedAmount, 1e-9)
		assert.Greater(t, r.FirstInstallment, 0.0)
	}
}

func TestSimulate_SubsidyReducesEligibleBankOnly(t *testing.T) {
	engine := newTestEngine(t)

	without, err := engine.Simulate(validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.ApplySubsidy = true
	with, err := engine.Simulate(req)
	require.NoError(t, err)

	for i := range with {
		if with[i].Bank == "Caixa" {
			assert.Equal(t, without[i].FinancedAmount-DefaultSubsidyAmount, with[i].FinancedAmount)
		} else {
			assert.Equal(t, without[i], with[i])
		}
	}
}

func TestSimulate_Idempotent(t *testing.T) {
	engine := newTestEngine(t)

	first, err := engine.Simulate(validRequest())
	require.NoError(t, err)
	second, err := engine.Simulate(validRequest())
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, math.Float64bits(first[i].TotalPaid), math.Float64bits(second[i].TotalPaid))
		assert.Equal(t, math.Float64bits(first[i].FirstInstallment), math.Float64bits(second[i].FirstInstallment))
	}
	assert.Equal(t, first, second)
}

func TestSimulate_Concurrent(t *testing.T) {
	engine := newTestEngine(t)

	want, err := engine.Simulate(validRequest())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := engine.Simulate(validRequest())
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestEngineSchedule(t *testing.T) {
	engine := newTestEngine(t)

	rows, err := engine.Schedule(validRequest(), "Itaú", domain.MethodPRICE)
	require.NoError(t, err)
	assert.Len(t, rows, 360)

	_, err = engine.Schedule(validRequest(), "Nubank", domain.MethodSAC)
	assert.ErrorIs(t, err, ErrUnknownBank)

	bad := validRequest()
	bad.TermMonths = 500
	_, err = engine.Schedule(bad, "Itaú", domain.MethodSAC)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestBestOffer(t *testing.T) {
	_, ok := BestOffer(nil)
	assert.False(t, ok)

	results := []domain.SimulationResult{
		{Bank: "A", Method: domain.MethodSAC, TotalPaid: 300},
		{Bank: "A", Method: domain.MethodPRICE, TotalPaid: 200},
		{Bank: "B", Method: domain.MethodSAC, TotalPaid: 200},
	}
	best, ok := BestOffer(results)
	require.True(t, ok)
	assert.Equal(t, "A", best.Bank)
	assert.Equal(t, domain.MethodPRICE, best.Method)
}

func TestBestOffer_DefaultTable(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Simulate(validRequest())
	require.NoError(t, err)

	best, ok := BestOffer(results)
	require.True(t, ok)
	assert.Equal(t, "Caixa", best.Bank)
	assert.Equal(t, domain.MethodSAC, best.Method)
}

func TestSimulate_HugePropertyValueRejected(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Simulate(domain.LoanRequest{
		PropertyValue:         1e308,
		DownPaymentPercentage: 10,
		TermMonths:            420,
	})
	assert.Nil(t, results)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has(FieldPropertyValue))
}

func TestSimulate_MaxPropertyValueStaysFinite(t *testing.T) {
	engine := newTestEngine(t)

	results, err := engine.Simulate(domain.LoanRequest{
		PropertyValue:         MaxPropertyValue,
		DownPaymentPercentage: MinDownPaymentPercentage,
		TermMonths:            MaxTermMonths,
	})
	require.NoError(t, err)

	for _, r := range results {
		assert.False(t, math.IsInf(r.TotalPaid, 0), "%s %s", r.Bank, r.Method)
		assert.InEpsilon(t, r.FinancedAmount, r.TotalPaid-r.TotalInterest, 1e-9, "%s %s", r.Bank, r.Method)
	}
}

func TestSimulate_OverflowingRate(t *testing.T) {
	table, err := domain.NewBankTable([]domain.BankOffer{{Name: "Agiota", AnnualRate: 1e300}})
	require.NoError(t, err)
	engine, err := NewEngine(table, DefaultSubsidyAmount)
	require.NoError(t, err)

	results, err := engine.Simulate(validRequest())
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrOverflow)

	rows, err := engine.Schedule(validRequest(), "Agiota", domain.MethodPRICE)
	assert.Nil(t, rows)
	assert.ErrorIs(t, err, ErrOverflow)
}
