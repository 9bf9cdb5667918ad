package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyBankTable = errors.New("bank table is empty")
	ErrDuplicateBank  = errors.New("duplicate bank name")
	ErrInvalidRate    = errors.New("annual rate must be positive")
)

type BankOffer struct {
	Name            string  `json:"name" yaml:"name"`
	AnnualRate      float64 `json:"annualRate" yaml:"annual_rate"`
	SubsidyEligible bool    `json:"subsidyEligible" yaml:"subsidy_eligible"`
}

// BankTable is the read-only set of offers every simulation runs against.
// The zero value is an empty table; build one with NewBankTable.
type BankTable struct {
	offers []BankOffer
}

// NewBankTable copies offers into an immutable table, keeping their order.
func NewBankTable(offers []BankOffer) (BankTable, error) {
	if len(offers) == 0 {
		return BankTable{}, ErrEmptyBankTable
	}

	seen := make(map[string]bool, len(offers))
	for _, o := range offers {
		if o.Name == "" {
			return BankTable{}, errors.New("bank name cannot be empty")
		}
		if seen[o.Name] {
			return BankTable{}, fmt.Errorf("%w: %s", ErrDuplicateBank, o.Name)
		}
		seen[o.Name] = true

		if !(o.AnnualRate > 0) || math.IsInf(o.AnnualRate, 0) {
			return BankTable{}, fmt.Errorf("%w: %s has %v", ErrInvalidRate, o.Name, o.AnnualRate)
		}
	}

	cp := make([]BankOffer, len(offers))
	copy(cp, offers)
	return BankTable{offers: cp}, nil
}

// Offers returns a copy of the table in configuration order.
func (t BankTable) Offers() []BankOffer {
	cp := make([]BankOffer, len(t.offers))
	copy(cp, t.offers)
	return cp
}

func (t BankTable) Len() int { return len(t.offers) }

// Lookup finds an offer by its exact name.
func (t BankTable) Lookup(name string) (BankOffer, bool) {
	for _, o := range t.offers {
		if o.Name == name {
			return o, true
		}
	}
	return BankOffer{}, false
}
