package service

// Request limits. The validate tags on domain.LoanRequest carry the same
// bounds; validation_test.go checks that they agree.
const (
	MinPropertyValue         = 50_000.0
	MaxPropertyValue         = 1_000_000_000_000.0
	MinDownPaymentPercentage = 10.0
	MaxDownPaymentPercentage = 80.0
	MinTermMonths            = 12
	MaxTermMonths            = 420 // 35 anos

	// DefaultSubsidyAmount is the Minha Casa Minha Vida deduction (R$ 30.000).
	DefaultSubsidyAmount = 30_000.0

	// ResidueTolerance is the accepted leftover balance, relative to the principal,
	// after an iterative schedule reaches its last month.
	ResidueTolerance = 1e-6

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

// Field names reported in validation errors. They match the JSON keys.
const (
	FieldPropertyValue         = "propertyValue"
	FieldDownPaymentPercentage = "downPaymentPercentage"
	FieldTermMonths            = "termMonths"
)
