package procurement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PendingSplitTolerance is the largest difference allowed between a total
// pending amount and the sum of its recoverable and payment components
var PendingSplitTolerance = decimal.RequireFromString("0.01")

// ValidationResult is the outcome of an amount check
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func valid() ValidationResult {
	return ValidationResult{Valid: true}
}

func invalid(format string, args ...any) ValidationResult {
	return ValidationResult{Valid: false, Error: fmt.Sprintf(format, args...)}
}

// ValidateInvoiceAmounts checks that all amounts are non-negative and that the
// received and deducted amounts together do not exceed the invoice amount
func ValidateInvoiceAmounts(invoiceAmount, amountReceived, amountDeducted decimal.Decimal) ValidationResult {
	if invoiceAmount.IsNegative() {
		return invalid("invoice amount cannot be negative (got %s)", invoiceAmount)
	}
	if amountReceived.IsNegative() {
		return invalid("amount received cannot be negative (got %s)", amountReceived)
	}
	if amountDeducted.IsNegative() {
		return invalid("amount deducted cannot be negative (got %s)", amountDeducted)
	}
	if amountReceived.Add(amountDeducted).GreaterThan(invoiceAmount) {
		return invalid("amount received (%s) plus amount deducted (%s) cannot exceed invoice amount (%s)",
			amountReceived, amountDeducted, invoiceAmount)
	}
	return valid()
}

// ValidatePendingSplit checks that a pending total splits into non-negative
// recoverable and payment parts that sum back to the total within PendingSplitTolerance
func ValidatePendingSplit(totalPending, recoverablePending, paymentPending decimal.Decimal) ValidationResult {
	if recoverablePending.IsNegative() {
		return invalid("recoverable pending cannot be negative (got %s)", recoverablePending)
	}
	if paymentPending.IsNegative() {
		return invalid("payment pending cannot be negative (got %s)", paymentPending)
	}
	sum := recoverablePending.Add(paymentPending)
	if sum.Sub(totalPending).Abs().GreaterThan(PendingSplitTolerance) {
		return invalid("recoverable pending (%s) plus payment pending (%s) must equal total pending (%s)",
			recoverablePending, paymentPending, totalPending)
	}
	return valid()
}
