package service

import (
	"errors"
	"fmt"
	"math"

	"loan-simulator/domain"
)

var ErrUnknownBank = errors.New("banco desconhecido")

// Engine runs simulations against a fixed bank table. It keeps no state
// between calls and is safe for concurrent use.
type Engine struct {
	banks   domain.BankTable
	subsidy float64
}

// NewEngine binds the bank table and the subsidy deduction.
func NewEngine(banks domain.BankTable, subsidy float64) (*Engine, error) {
	if banks.Len() == 0 {
		return nil, domain.ErrEmptyBankTable
	}
	if math.IsNaN(subsidy) || math.IsInf(subsidy, 0) || subsidy < 0 {
		return nil, fmt.Errorf("subsídio inválido: %v", subsidy)
	}
	return &Engine{banks: banks, subsidy: subsidy}, nil
}

func (e *Engine) Banks() []domain.BankOffer {
	return e.banks.Offers()
}

func (e *Engine) Subsidy() float64 {
	return e.subsidy
}

// Simulate returns one SAC and one PRICE result per bank, in table order.
// An invalid request yields a *domain.ValidationError and no results.
func (e *Engine) Simulate(req domain.LoanRequest) ([]domain.SimulationResult, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	offers := e.banks.Offers()
	results := make([]domain.SimulationResult, 0, len(domain.Methods)*len(offers))

	for _, bank := range offers {
		monthlyRate, err := MonthlyRate(bank.AnnualRate)
		if err != nil {
			return nil, fmt.Errorf("banco %s: %w", bank.Name, err)
		}
		financed := FinancedAmount(req, bank, e.subsidy)

		for _, method := range domain.Methods {
			s, err := Summarize(method, financed, monthlyRate, req.TermMonths)
			if err != nil {
				return nil, err
			}
			if !s.finite() {
				return nil, fmt.Errorf("banco %s %s: %w", bank.Name, method, ErrOverflow)
			}
			results = append(results, domain.SimulationResult{
				Bank:             bank.Name,
				Method:           method,
				FinancedAmount:   financed,
				MonthlyRate:      monthlyRate,
				FirstInstallment: s.FirstInstallment,
				LastInstallment:  s.LastInstallment,
				TotalPaid:        s.TotalPaid,
				TotalInterest:    s.TotalInterest,
			})
		}
	}

	return results, nil
}

// Schedule lists the installments one bank would charge under one method.
func (e *Engine) Schedule(req domain.LoanRequest, bankName string, method domain.Method) ([]domain.Installment, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	bank, ok := e.banks.Lookup(bankName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBank, bankName)
	}

	monthlyRate, err := MonthlyRate(bank.AnnualRate)
	if err != nil {
		return nil, fmt.Errorf("banco %s: %w", bank.Name, err)
	}

	rows, err := Schedule(method, FinancedAmount(req, bank, e.subsidy), monthlyRate, req.TermMonths)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if math.IsNaN(row.Payment) || math.IsInf(row.Payment, 0) || math.IsNaN(row.Balance) || math.IsInf(row.Balance, 0) {
			return nil, fmt.Errorf("banco %s %s mês %d: %w", bank.Name, method, row.Month, ErrOverflow)
		}
	}
	return rows, nil
}

// BestOffer picks the result with the lowest total paid. Ties keep the
// earlier result.
func BestOffer(results []domain.SimulationResult) (domain.SimulationResult, bool) {
	if len(results) == 0 {
		return domain.SimulationResult{}, false
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.TotalPaid < best.TotalPaid {
			best = r
		}
	}
	return best, true
}
