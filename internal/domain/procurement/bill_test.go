package procurement

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestBillStatus_IsValid(t *testing.T) {
	tests := []struct {
		status   BillStatus
		expected bool
	}{
		{BillStatusRegistered, true},
		{BillStatusReturned, true},
		{BillStatusPaymentMade, true},
		{BillStatus("PAID"), false},
		{BillStatus(""), false},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.IsValid())
		})
	}
}

func TestNewBill(t *testing.T) {
	loaID := uuid.New()

	t.Run("defaults received and deducted to zero", func(t *testing.T) {
		bill, err := NewBill(loaID, BillParams{InvoiceNumber: "INV-1", InvoiceAmount: d("1000")})
		require.NoError(t, err)
		assert.Equal(t, loaID, bill.LoaID)
		assert.True(t, bill.AmountReceived.IsZero())
		assert.True(t, bill.AmountDeducted.IsZero())
		assert.Equal(t, BillStatusRegistered, bill.Status)
		assert.True(t, d("1000").Equal(bill.AmountPending()))
	})

	t.Run("deduction without reason fails", func(t *testing.T) {
		_, err := NewBill(loaID, BillParams{
			InvoiceNumber:  "INV-2",
			InvoiceAmount:  d("100"),
			AmountDeducted: ptr("50"),
		})
		require.Error(t, err)

		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "deduction_reason", verr.Fields[0].Field)
	})

	t.Run("deduction with reason succeeds", func(t *testing.T) {
		bill, err := NewBill(loaID, BillParams{
			InvoiceNumber:   "INV-3",
			InvoiceAmount:   d("100"),
			AmountDeducted:  ptr("50"),
			DeductionReason: "damage",
		})
		require.NoError(t, err)
		assert.Equal(t, "damage", bill.DeductionReason)
	})

	t.Run("received plus deducted above invoice fails", func(t *testing.T) {
		_, err := NewBill(loaID, BillParams{
			InvoiceNumber:   "INV-4",
			InvoiceAmount:   d("100"),
			AmountReceived:  ptr("80"),
			AmountDeducted:  ptr("30"),
			DeductionReason: "penalty",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("explicit status is kept", func(t *testing.T) {
		bill, err := NewBill(loaID, BillParams{InvoiceAmount: d("10"), Status: BillStatusReturned})
		require.NoError(t, err)
		assert.Equal(t, BillStatusReturned, bill.Status)
	})

	t.Run("unknown status fails with amounts", func(t *testing.T) {
		_, err := NewBill(loaID, BillParams{
			InvoiceAmount:  d("10"),
			AmountReceived: ptr("20"),
			Status:         BillStatus("PAID"),
		})
		assert.ElementsMatch(t, []string{"amounts", "status"}, fieldsOf(t, err))
	})

	t.Run("missing LOA fails", func(t *testing.T) {
		_, err := NewBill(uuid.Nil, BillParams{InvoiceNumber: "INV-5", InvoiceAmount: d("1")})
		require.Error(t, err)
	})
}

func TestBill_Validate_CollectsAllErrors(t *testing.T) {
	bill := &Bill{
		LoaID:          uuid.New(),
		InvoiceAmount:  d("10"),
		AmountReceived: d("-1"),
		AmountDeducted: d("5"),
		Status:         BillStatus("BOGUS"),
	}

	err := bill.Validate()
	require.Error(t, err)

	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"amounts", "deduction_reason", "status"}, fields)
}

func TestBill_Overpaid(t *testing.T) {
	bill := billWith("100", "110", "0")
	assert.True(t, bill.IsOverpaid())
	assert.True(t, d("-10").Equal(bill.AmountPending()))

	settled := billWith("100", "100", "0")
	assert.False(t, settled.IsOverpaid())
}

func TestBill_ReplaceInvoicePdf(t *testing.T) {
	bill := billWith("100", "0", "0")
	assert.Nil(t, bill.ReplaceInvoicePdf("https://files/a.pdf"))

	previous := bill.ReplaceInvoicePdf("https://files/b.pdf")
	require.NotNil(t, previous)
	assert.Equal(t, "https://files/a.pdf", *previous)
	assert.Equal(t, "https://files/b.pdf", *bill.InvoicePdfURL)
}

func TestBill_SetStatus(t *testing.T) {
	bill := billWith("100", "0", "0")
	require.NoError(t, bill.SetStatus(BillStatusPaymentMade))
	assert.Equal(t, BillStatusPaymentMade, bill.Status)

	assert.Error(t, bill.SetStatus(BillStatus("DONE")))
	assert.Equal(t, BillStatusPaymentMade, bill.Status)
}
