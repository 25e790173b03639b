package procurement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateInvoicePending(t *testing.T) {
	t.Run("plain subtraction", func(t *testing.T) {
		assert.True(t, d("50").Equal(CalculateInvoicePending(d("100"), d("40"), d("10"))))
	})

	t.Run("overpayment stays negative", func(t *testing.T) {
		pending := CalculateInvoicePending(d("100"), d("120"), d("5"))
		assert.True(t, d("-25").Equal(pending), "got %s", pending)
	})

	t.Run("settled is zero", func(t *testing.T) {
		assert.True(t, CalculateInvoicePending(d("100"), d("90"), d("10")).IsZero())
	})
}

func billWith(invoice, received, deducted string) Bill {
	return Bill{
		LoaID:          uuid.New(),
		InvoiceAmount:  d(invoice),
		AmountReceived: d(received),
		AmountDeducted: d(deducted),
		Status:         BillStatusRegistered,
	}
}

func TestAggregateInvoiceTotals(t *testing.T) {
	t.Run("empty set is all zero", func(t *testing.T) {
		totals := AggregateInvoiceTotals(nil)
		assert.True(t, totals.TotalBilled.IsZero())
		assert.True(t, totals.TotalReceived.IsZero())
		assert.True(t, totals.TotalDeducted.IsZero())
		assert.True(t, totals.TotalPending.IsZero())
	})

	t.Run("folds every bill", func(t *testing.T) {
		totals := AggregateInvoiceTotals([]Bill{
			billWith("100", "40", "10"),
			billWith("50", "50", "0"),
		})
		assert.True(t, d("150").Equal(totals.TotalBilled))
		assert.True(t, d("90").Equal(totals.TotalReceived))
		assert.True(t, d("10").Equal(totals.TotalDeducted))
		assert.True(t, d("50").Equal(totals.TotalPending))
	})

	t.Run("zero valued amounts count as zero", func(t *testing.T) {
		totals := AggregateInvoiceTotals([]Bill{{InvoiceAmount: d("75")}})
		assert.True(t, d("75").Equal(totals.TotalPending))
		assert.True(t, totals.TotalReceived.IsZero())
	})
}

func TestCalculatePendingPercentages(t *testing.T) {
	t.Run("zero total does not divide", func(t *testing.T) {
		p := CalculatePendingPercentages(decimal.Zero, decimal.Zero, decimal.Zero)
		assert.True(t, p.RecoverablePercentage.IsZero())
		assert.True(t, p.PaymentPercentage.IsZero())
	})

	t.Run("shares of total", func(t *testing.T) {
		p := CalculatePendingPercentages(d("100"), d("60"), d("40"))
		assert.True(t, d("60").Equal(p.RecoverablePercentage))
		assert.True(t, d("40").Equal(p.PaymentPercentage))
	})

	t.Run("uneven total", func(t *testing.T) {
		p := CalculatePendingPercentages(d("200"), d("50"), d("150"))
		assert.True(t, d("25").Equal(p.RecoverablePercentage))
		assert.True(t, d("75").Equal(p.PaymentPercentage))
	})
}
