package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceFee(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		expected int64
	}{
		{
			name:     "Whole amount",
			cents:    10000,
			expected: 750,
		},
		{
			name:     "Rounds half up",
			cents:    10,
			expected: 1, // 0.75 -> 1
		},
		{
			name:     "Rounds down below half",
			cents:    6,
			expected: 0, // 0.45 -> 0
		},
		{
			name:     "Zero amount",
			cents:    0,
			expected: 0,
		},
		{
			name:     "Large amount",
			cents:    1999999,
			expected: 150000, // 149999.925 -> 150000
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee := ServiceFee(New(tt.cents, "EUR"))
			assert.Equal(t, tt.expected, fee.Cents)
			assert.Equal(t, "EUR", fee.Currency)
		})
	}
}

func TestCustomerTotal(t *testing.T) {
	total := CustomerTotal(New(10000, "EUR"))
	assert.Equal(t, int64(10750), total.Cents)
	assert.Equal(t, "107.50 EUR", total.String())

	// total is always amount + fee for positive amounts
	for _, cents := range []int64{1, 99, 100, 12345, 10000000} {
		amount := New(cents, "USD")
		total := CustomerTotal(amount)
		fee := ServiceFee(amount)
		assert.Equal(t, amount.Cents+fee.Cents, total.Cents)
	}
}

func TestDeliveryCommission(t *testing.T) {
	c := DeliveryCommission(New(2000, "EUR"))
	assert.Equal(t, int64(100), c.Cents)

	// 0.05 * 30 = 1.5 -> rounds up
	c = DeliveryCommission(New(30, "EUR"))
	assert.Equal(t, int64(2), c.Cents)
}

func TestNetPayout(t *testing.T) {
	net := NetPayout(New(10000, "EUR"), RepairCommissionBps)
	assert.Equal(t, int64(9250), net.Cents)

	// gross = commission + net always holds
	for _, cents := range []int64{1, 10, 1234, 99999} {
		gross := New(cents, "EUR")
		commission := Commission(gross, RepairCommissionBps)
		net := NetPayout(gross, RepairCommissionBps)
		assert.Equal(t, gross.Cents, commission.Cents+net.Cents)
	}
}

func TestAmount_AddSub(t *testing.T) {
	a := New(1000, "EUR")
	b := New(250, "EUR")

	sum, err := a.Add(b)
	assert.NoError(t, err)
	assert.Equal(t, int64(1250), sum.Cents)

	diff, err := a.Sub(b)
	assert.NoError(t, err)
	assert.Equal(t, int64(750), diff.Cents)

	// mismatched currencies are rejected, never silently combined
	c := New(250, "USD")
	_, err = a.Add(c)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = a.Sub(c)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestNew_DefaultCurrency(t *testing.T) {
	a := New(100, "")
	assert.Equal(t, DefaultCurrency, a.Currency)
}

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "107.50 EUR", New(10750, "EUR").String())
	assert.Equal(t, "0.05 USD", New(5, "USD").String())
	assert.Equal(t, "-1.25 EUR", New(-125, "EUR").String())
}
