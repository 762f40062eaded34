package entities

import "github.com/shopspring/decimal"

// advanceRate is the share of the price collected up front on the advance
// payment option. The balance is due on completion.
var advanceRate = decimal.NewFromFloat(0.7)

// Price returns the amount all payment math is based on: the admin-set
// actual price when present, otherwise the estimate, otherwise zero.
func (r Request) Price() int64 {
	if r.ActualPrice > 0 {
		return r.ActualPrice
	}
	if r.EstimatedPrice > 0 {
		return r.EstimatedPrice
	}
	return 0
}

// AdvanceAmount is the 70% advance, rounded half-up to the nearest minor
// currency unit.
func (r Request) AdvanceAmount() int64 {
	return decimal.NewFromInt(r.Price()).Mul(advanceRate).Round(0).IntPart()
}

// RemainingAmount is the balance left after the advance.
func (r Request) RemainingAmount() int64 {
	return r.Price() - r.AdvanceAmount()
}

// Due returns the amount payable now for the given option. Once the advance
// is captured only the outstanding balance is due, whichever option the
// caller picks; quoting the advance twice would overcharge.
func (r Request) Due(option PaymentOption) int64 {
	if r.PaymentStatus == PaymentStatePartial {
		return r.RemainingAmount()
	}
	if option == PaymentOptionAdvance {
		return r.AdvanceAmount()
	}
	return r.Price()
}
