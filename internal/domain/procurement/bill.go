package procurement

import (
	"strings"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillStatus represents the status of a bill
type BillStatus string

const (
	BillStatusRegistered  BillStatus = "REGISTERED"
	BillStatusReturned    BillStatus = "RETURNED"
	BillStatusPaymentMade BillStatus = "PAYMENT_MADE"
)

// IsValid checks if the bill status is valid
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusRegistered, BillStatusReturned, BillStatusPaymentMade:
		return true
	}
	return false
}

// String returns the string representation
func (s BillStatus) String() string {
	return string(s)
}

const (
	maxInvoiceNumberLength = 100
	maxDeductionReason     = 500
)

// Bill is an invoice raised against an LOA
type Bill struct {
	shared.BaseEntity
	LoaID           uuid.UUID
	InvoiceNumber   string
	InvoiceAmount   decimal.Decimal
	AmountReceived  decimal.Decimal
	AmountDeducted  decimal.Decimal
	DeductionReason string
	BillLinks       string
	Remarks         string
	Status          BillStatus
	InvoicePdfURL   *string
}

// BillParams are the inputs of a new bill. Nil received or deducted amounts
// default to zero and an empty status defaults to REGISTERED.
type BillParams struct {
	InvoiceNumber   string
	InvoiceAmount   decimal.Decimal
	AmountReceived  *decimal.Decimal
	AmountDeducted  *decimal.Decimal
	DeductionReason string
	BillLinks       string
	Remarks         string
	Status          BillStatus
}

// NewBill creates a bill for an LOA and validates it
func NewBill(loaID uuid.UUID, params BillParams) (*Bill, error) {
	status := params.Status
	if status == "" {
		status = BillStatusRegistered
	}

	bill := &Bill{
		BaseEntity:      shared.NewBaseEntity(),
		LoaID:           loaID,
		InvoiceNumber:   strings.TrimSpace(params.InvoiceNumber),
		InvoiceAmount:   params.InvoiceAmount,
		AmountReceived:  orZero(params.AmountReceived),
		AmountDeducted:  orZero(params.AmountDeducted),
		DeductionReason: strings.TrimSpace(params.DeductionReason),
		BillLinks:       strings.TrimSpace(params.BillLinks),
		Remarks:         params.Remarks,
		Status:          status,
	}

	if err := bill.Validate(); err != nil {
		return nil, err
	}
	return bill, nil
}

// AmountPending is derived on every call and never stored
func (b *Bill) AmountPending() decimal.Decimal {
	return CalculateInvoicePending(b.InvoiceAmount, b.AmountReceived, b.AmountDeducted)
}

// IsOverpaid reports whether more was received and deducted than invoiced
func (b *Bill) IsOverpaid() bool {
	return b.AmountPending().IsNegative()
}

// SetStatus changes the bill status
func (b *Bill) SetStatus(status BillStatus) error {
	if !status.IsValid() {
		return shared.NewFieldValidationError("status", "invalid bill status: "+string(status))
	}
	b.Status = status
	b.Touch()
	return nil
}

// ReplaceInvoicePdf points the bill at a newly uploaded invoice document
// and returns the URL it replaced, if any
func (b *Bill) ReplaceInvoicePdf(url string) *string {
	previous := b.InvoicePdfURL
	b.InvoicePdfURL = &url
	b.Touch()
	return previous
}

// Validate checks the bill's full current state and reports every problem found
func (b *Bill) Validate() error {
	var errs shared.ValidationErrors

	if b.LoaID == uuid.Nil {
		errs.Add("loa_id", "LOA ID is required")
	}
	if len(b.InvoiceNumber) > maxInvoiceNumberLength {
		errs.Addf("invoice_number", "invoice number must be at most %d characters", maxInvoiceNumberLength)
	}
	if result := ValidateInvoiceAmounts(b.InvoiceAmount, b.AmountReceived, b.AmountDeducted); !result.Valid {
		errs.Add("amounts", result.Error)
	}
	if b.AmountDeducted.IsPositive() && strings.TrimSpace(b.DeductionReason) == "" {
		errs.Add("deduction_reason", "deduction reason is required when amount deducted is greater than zero")
	}
	if len(b.DeductionReason) > maxDeductionReason {
		errs.Addf("deduction_reason", "deduction reason must be at most %d characters", maxDeductionReason)
	}
	if !b.Status.IsValid() {
		errs.Add("status", "status must be one of REGISTERED, RETURNED, PAYMENT_MADE")
	}

	return errs.Err("Bill validation failed")
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
