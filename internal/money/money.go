// Package money provides fixed-point currency arithmetic for the platform.
// All amounts are integer minor units (cents) with an explicit currency code;
// binary floating point is never used for money.
package money

import (
	"errors"
	"fmt"
)

// Commission rates in basis points (1/100th of a percent).
const (
	// RepairCommissionBps is the platform commission on repair work (7.5%).
	RepairCommissionBps int64 = 750
	// DeliveryCommissionBps is the platform commission on delivery (5%).
	DeliveryCommissionBps int64 = 500

	// bpsDenominator converts basis points to a fraction.
	bpsDenominator int64 = 10000
)

// DefaultCurrency is assumed when an amount is created without a currency code.
const DefaultCurrency = "EUR"

// ErrCurrencyMismatch indicates two amounts with different currency codes
// were combined.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Amount is a monetary value in minor units of a single currency.
type Amount struct {
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"`
}

// New returns an Amount in the given currency, defaulting to DefaultCurrency
// when the code is empty.
func New(cents int64, currency string) Amount {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Amount{Cents: cents, Currency: currency}
}

// Add returns a+b, failing with ErrCurrencyMismatch on differing currencies.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.Currency, b.Currency)
	}
	return Amount{Cents: a.Cents + b.Cents, Currency: a.Currency}, nil
}

// Sub returns a-b, failing with ErrCurrencyMismatch on differing currencies.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.Currency, b.Currency)
	}
	return Amount{Cents: a.Cents - b.Cents, Currency: a.Currency}, nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.Cents > 0
}

// SameCurrency reports whether both amounts carry the same currency code.
func (a Amount) SameCurrency(b Amount) bool {
	return a.Currency == b.Currency
}

// String formats the amount in major units with its currency code.
func (a Amount) String() string {
	sign := ""
	cents := a.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, a.Currency)
}

// roundBps multiplies cents by a basis-point rate, rounding half-up to the
// nearest cent. Half-away-from-zero for negative inputs.
func roundBps(cents, bps int64) int64 {
	n := cents * bps
	if n >= 0 {
		return (n + bpsDenominator/2) / bpsDenominator
	}
	return -((-n + bpsDenominator/2) / bpsDenominator)
}

// ServiceFee is the platform service fee charged to the customer on top of
// the repair amount.
func ServiceFee(amount Amount) Amount {
	return Amount{Cents: roundBps(amount.Cents, RepairCommissionBps), Currency: amount.Currency}
}

// DeliveryCommission is the platform cut of a delivery cost.
func DeliveryCommission(deliveryCost Amount) Amount {
	return Amount{Cents: roundBps(deliveryCost.Cents, DeliveryCommissionBps), Currency: deliveryCost.Currency}
}

// CustomerTotal is the repair amount plus the service fee.
func CustomerTotal(repairAmount Amount) Amount {
	fee := ServiceFee(repairAmount)
	return Amount{Cents: repairAmount.Cents + fee.Cents, Currency: repairAmount.Currency}
}

// Commission applies a basis-point commission rate to a gross amount.
func Commission(gross Amount, bps int64) Amount {
	return Amount{Cents: roundBps(gross.Cents, bps), Currency: gross.Currency}
}

// NetPayout is the gross amount minus the commission at the given rate.
func NetPayout(gross Amount, bps int64) Amount {
	commission := Commission(gross, bps)
	return Amount{Cents: gross.Cents - commission.Cents, Currency: gross.Currency}
}
