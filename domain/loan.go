package domain

import "time"

// Method identifies an amortization system.
type Method string

const (
	MethodSAC   Method = "SAC"
	MethodPRICE Method = "PRICE"
)

// Methods lists the amortization systems in the order they are reported.
var Methods = []Method{MethodSAC, MethodPRICE}

// ParseMethod accepts the method name case-sensitively, as the API exposes it.
func ParseMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodSAC, MethodPRICE:
		return Method(s), true
	}
	return "", false
}

type LoanRequest struct {
	PropertyValue         float64 `json:"propertyValue" validate:"finite,gte=50000,lte=1000000000000"`
	DownPaymentPercentage float64 `json:"downPaymentPercentage" validate:"finite,gte=10,lte=80"`
	TermMonths            int     `json:"termMonths" validate:"gte=12,lte=420"`
	ApplySubsidy          bool    `json:"applySubsidy"`
}

type SimulationResult struct {
	Bank             string  `json:"bank"`
	Method           Method  `json:"method"`
	FinancedAmount   float64 `json:"financedAmount"`
	MonthlyRate      float64 `json:"monthlyRate"`
	FirstInstallment float64 `json:"firstInstallment"`
	LastInstallment  float64 `json:"lastInstallment"`
	TotalPaid        float64 `json:"totalPaid"`
	TotalInterest    float64 `json:"totalInterest"`
}

// Installment is one row of a month-by-month schedule.
type Installment struct {
	Month        int     `json:"month"`
	Payment      float64 `json:"payment"`
	Interest     float64 `json:"interest"`
	Amortization float64 `json:"amortization"`
	Balance      float64 `json:"balance"`
}

// Simulation is the envelope returned to callers of the simulation service.
type Simulation struct {
	ID          string
	CreatedAt   time.Time
	Request     LoanRequest
	Results     []SimulationResult
	Best        SimulationResult
	Explanation string
}

// SimulationRecord is the persisted summary of one simulation.
type SimulationRecord struct {
	ID                    string    `json:"id"`
	CreatedAt             time.Time `json:"createdAt"`
	PropertyValue         float64   `json:"propertyValue"`
	DownPaymentPercentage float64   `json:"downPaymentPercentage"`
	TermMonths            int       `json:"termMonths"`
	ApplySubsidy          bool      `json:"applySubsidy"`
	ResultCount           int       `json:"resultCount"`
	BestBank              string    `json:"bestBank"`
	BestMethod            Method    `json:"bestMethod"`
	BestTotalPaid         float64   `json:"bestTotalPaid"`
}

// NewSimulationRecord summarizes a simulation for the history log.
func NewSimulationRecord(sim Simulation) SimulationRecord {
	return SimulationRecord{
		ID:                    sim.ID,
		CreatedAt:             sim.CreatedAt,
		PropertyValue:         sim.Request.PropertyValue,
		DownPaymentPercentage: sim.Request.DownPaymentPercentage,
		TermMonths:            sim.Request.TermMonths,
		ApplySubsidy:          sim.Request.ApplySubsidy,
		ResultCount:           len(sim.Results),
		BestBank:              sim.Best.Bank,
		BestMethod:            sim.Best.Method,
		BestTotalPaid:         sim.Best.TotalPaid,
	}
}
