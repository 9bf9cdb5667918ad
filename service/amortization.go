package service

import (
	"errors"
	"fmt"
	"math"

	"loan-simulator/domain"
)

var (
	ErrInvalidRate   = errors.New("taxa anual inválida")
	ErrUnknownMethod = errors.New("sistema de amortização desconhecido")
	ErrOverflow      = errors.New("resultado fora do intervalo numérico")
)

// Summary condenses an amortization schedule.
type Summary struct {
	FirstInstallment float64
	LastInstallment  float64
	TotalPaid        float64
	TotalInterest    float64
}

// MonthlyRate converts a nominal annual rate into the monthly rate that
// compounds back to it over twelve months.
func MonthlyRate(annualRate float64) (float64, error) {
	if math.IsNaN(annualRate) || annualRate <= -1 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRate, annualRate)
	}
	// (1+a)^(1/12) - 1 without losing digits for small a.
	return math.Expm1(math.Log1p(annualRate) / 12), nil
}

// FinancedAmount is the principal left after the down payment and, when the
// request asks for it and the bank honors it, the housing subsidy.
func FinancedAmount(req domain.LoanRequest, bank domain.BankOffer, subsidy float64) float64 {
	downPayment := req.PropertyValue * (req.DownPaymentPercentage / 100)
	principal := req.PropertyValue - downPayment

	if req.ApplySubsidy && bank.SubsidyEligible {
		principal = math.Max(0, principal-subsidy)
	}
	return principal
}

// SACSummary walks the constant-amortization schedule month by month.
func SACSummary(principal, monthlyRate float64, termMonths int) Summary {
	if termMonths < 1 {
		return Summary{}
	}

	amortization := principal / float64(termMonths)
	remaining := principal

	var s Summary
	for month := 1; month <= termMonths; month++ {
		interest := remaining * monthlyRate
		installment := amortization + interest

		if month == 1 {
			s.FirstInstallment = installment
		}
		if month == termMonths {
			s.LastInstallment = installment
		}

		s.TotalInterest += interest
		remaining -= amortization
	}

	s.TotalPaid = principal + s.TotalInterest
	return s
}

// PRICEInstallment is the constant payment of the French system.
func PRICEInstallment(principal, monthlyRate float64, termMonths int) float64 {
	if termMonths < 1 || principal == 0 {
		return 0
	}
	if monthlyRate == 0 {
		return principal / float64(termMonths)
	}

	factor := math.Pow(1+monthlyRate, float64(termMonths))
	return principal * (monthlyRate * factor) / (factor - 1)
}

// PRICESummary totals the constant-payment schedule in closed form.
func PRICESummary(principal, monthlyRate float64, termMonths int) Summary {
	if termMonths < 1 {
		return Summary{}
	}

	installment := PRICEInstallment(principal, monthlyRate, termMonths)
	total := installment * float64(termMonths)

	return Summary{
		FirstInstallment: installment,
		LastInstallment:  installment,
		TotalPaid:        total,
		TotalInterest:    total - principal,
	}
}

func (s Summary) finite() bool {
	for _, v := range []float64{s.FirstInstallment, s.LastInstallment, s.TotalPaid, s.TotalInterest} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Summarize dispatches to the summary of the given method.
func Summarize(method domain.Method, principal, monthlyRate float64, termMonths int) (Summary, error) {
	switch method {
	case domain.MethodSAC:
		return SACSummary(principal, monthlyRate, termMonths), nil
	case domain.MethodPRICE:
		return PRICESummary(principal, monthlyRate, termMonths), nil
	}
	return Summary{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// Schedule lists every installment of the loan. The final balance is snapped
// to zero when the floating-point residue is within ResidueTolerance.
func Schedule(method domain.Method, principal, monthlyRate float64, termMonths int) ([]domain.Installment, error) {
	var payment func(balance float64) (interest, amortization float64)

	switch method {
	case domain.MethodSAC:
		constant := 0.0
		if termMonths > 0 {
			constant = principal / float64(termMonths)
		}
		payment = func(balance float64) (float64, float64) {
			return balance * monthlyRate, constant
		}
	case domain.MethodPRICE:
		installment := PRICEInstallment(principal, monthlyRate, termMonths)
		payment = func(balance float64) (float64, float64) {
			interest := balance * monthlyRate
			return interest, installment - interest
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	if termMonths < 1 {
		return []domain.Installment{}, nil
	}

	rows := make([]domain.Installment, 0, termMonths)
	balance := principal
	for month := 1; month <= termMonths; month++ {
		interest, amortization := payment(balance)
		balance -= amortization

		if month == termMonths && math.Abs(balance) <= ResidueTolerance*math.Max(principal, 1) {
			balance = 0
		}

		rows = append(rows, domain.Installment{
			Month:        month,
			Payment:      amortization + interest,
			Interest:     interest,
			Amortization: amortization,
			Balance:      balance,
		})
	}
	return rows, nil
}
