package http

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"loan-simulator/domain"
	"loan-simulator/logger"
)

// Money values leave the API rounded to cents; rates keep eight places.
func money(v float64) decimal.Decimal { return roundedDecimal(v, 2) }
func rate(v float64) decimal.Decimal  { return roundedDecimal(v, 8) }

// roundedDecimal maps NaN and ±Inf to zero; decimal.NewFromFloat panics on them.
func roundedDecimal(v float64, places int32) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		logger.Warn("non-finite value %v in response, sending 0", v)
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(places)
}

type resultResponse struct {
	Bank             string          `json:"bank"`
	Method           domain.Method   `json:"method"`
	FinancedAmount   decimal.Decimal `json:"financedAmount"`
	MonthlyRate      decimal.Decimal `json:"monthlyRate"`
	FirstInstallment decimal.Decimal `json:"firstInstallment"`
	LastInstallment  decimal.Decimal `json:"lastInstallment"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	TotalInterest    decimal.Decimal `json:"totalInterest"`
}

type simulationResponse struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"createdAt"`
	Request     domain.LoanRequest `json:"request"`
	Results     []resultResponse   `json:"results"`
	Best        resultResponse     `json:"best"`
	Explanation string             `json:"explanation,omitempty"`
}

type installmentResponse struct {
	Month        int             `json:"month"`
	Payment      decimal.Decimal `json:"payment"`
	Interest     decimal.Decimal `json:"interest"`
	Amortization decimal.Decimal `json:"amortization"`
	Balance      decimal.Decimal `json:"balance"`
}

type scheduleRequest struct {
	domain.LoanRequest
	Bank   string `json:"bank"`
	Method string `json:"method"`
}

type scheduleResponse struct {
	Bank         string                `json:"bank"`
	Method       string                `json:"method"`
	Installments []installmentResponse `json:"installments"`
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

func toResultResponse(r domain.SimulationResult) resultResponse {
	return resultResponse{
		Bank:             r.Bank,
		Method:           r.Method,
		FinancedAmount:   money(r.FinancedAmount),
		MonthlyRate:      rate(r.MonthlyRate),
		FirstInstallment: money(r.FirstInstallment),
		LastInstallment:  money(r.LastInstallment),
		TotalPaid:        money(r.TotalPaid),
		TotalInterest:    money(r.TotalInterest),
	}
}

func toSimulationResponse(sim domain.Simulation) simulationResponse {
	results := make([]resultResponse, 0, len(sim.Results))
	for _, r := range sim.Results {
		results = append(results, toResultResponse(r))
	}
	return simulationResponse{
		ID:          sim.ID,
		CreatedAt:   sim.CreatedAt,
		Request:     sim.Request,
		Results:     results,
		Best:        toResultResponse(sim.Best),
		Explanation: sim.Explanation,
	}
}

func toInstallmentResponses(rows []domain.Installment) []installmentResponse {
	out := make([]installmentResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, installmentResponse{
			Month:        row.Month,
			Payment:      money(row.Payment),
			Interest:     money(row.Interest),
			Amortization: money(row.Amortization),
			Balance:      money(row.Balance),
		})
	}
	return out
}
