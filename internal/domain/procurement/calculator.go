package procurement

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CalculateInvoicePending returns invoice - received - deducted.
// A negative result means the invoice was overpaid and is returned as is.
func CalculateInvoicePending(invoiceAmount, amountReceived, amountDeducted decimal.Decimal) decimal.Decimal {
	return invoiceAmount.Sub(amountReceived).Sub(amountDeducted)
}

// InvoiceTotals are the running totals over every bill of one LOA
type InvoiceTotals struct {
	TotalBilled   decimal.Decimal `json:"total_billed"`
	TotalReceived decimal.Decimal `json:"total_received"`
	TotalDeducted decimal.Decimal `json:"total_deducted"`
	TotalPending  decimal.Decimal `json:"total_pending"`
}

// AggregateInvoiceTotals folds bills into their totals. An empty slice yields all zeros.
func AggregateInvoiceTotals(bills []Bill) InvoiceTotals {
	totals := InvoiceTotals{
		TotalBilled:   decimal.Zero,
		TotalReceived: decimal.Zero,
		TotalDeducted: decimal.Zero,
		TotalPending:  decimal.Zero,
	}
	for i := range bills {
		b := &bills[i]
		totals.TotalBilled = totals.TotalBilled.Add(b.InvoiceAmount)
		totals.TotalReceived = totals.TotalReceived.Add(b.AmountReceived)
		totals.TotalDeducted = totals.TotalDeducted.Add(b.AmountDeducted)
		totals.TotalPending = totals.TotalPending.Add(b.AmountPending())
	}
	return totals
}

// PendingPercentages is the share of a pending total held by each component
type PendingPercentages struct {
	RecoverablePercentage decimal.Decimal `json:"recoverable_percentage"`
	PaymentPercentage     decimal.Decimal `json:"payment_percentage"`
}

// CalculatePendingPercentages returns (part/total)*100 for each component,
// or zero for both when the total is zero
func CalculatePendingPercentages(totalPending, recoverablePending, paymentPending decimal.Decimal) PendingPercentages {
	if totalPending.IsZero() {
		return PendingPercentages{
			RecoverablePercentage: decimal.Zero,
			PaymentPercentage:     decimal.Zero,
		}
	}
	return PendingPercentages{
		RecoverablePercentage: recoverablePending.Div(totalPending).Mul(hundred),
		PaymentPercentage:     paymentPending.Div(totalPending).Mul(hundred),
	}
}
