package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"loan-simulator/domain"
)

func testBanks() []domain.BankOffer {
	return []domain.BankOffer{
		{Name: "Caixa", AnnualRate: 0.089, SubsidyEligible: true},
		{Name: "Bradesco", AnnualRate: 0.0935},
		{Name: "Itaú", AnnualRate: 0.0925},
		{Name: "Santander", AnnualRate: 0.094},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	table, err := domain.NewBankTable(testBanks())
	require.NoError(t, err)

	engine, err := NewEngine(table, DefaultSubsidyAmount)
	require.NoError(t, err)
	return engine
}

func validRequest() domain.LoanRequest {
	return domain.LoanRequest{
		PropertyValue:         300000,
		DownPaymentPercentage: 20,
		TermMonths:            360,
		ApplySubsidy:          false,
	}
}
