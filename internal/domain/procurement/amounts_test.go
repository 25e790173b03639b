package procurement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidateInvoiceAmounts(t *testing.T) {
	tests := []struct {
		name     string
		invoice  string
		received string
		deducted string
		valid    bool
	}{
		{"all zero", "0", "0", "0", true},
		{"partially received", "100", "40", "10", true},
		{"exactly settled", "100", "90", "10", true},
		{"fully received", "50", "50", "0", true},
		{"sum exceeds invoice", "100", "95", "10", false},
		{"received alone exceeds", "100", "100.01", "0", false},
		{"negative invoice", "-1", "0", "0", false},
		{"negative received", "100", "-5", "0", false},
		{"negative deducted", "100", "0", "-0.01", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := ValidateInvoiceAmounts(d(tc.invoice), d(tc.received), d(tc.deducted))
			assert.Equal(t, tc.valid, result.Valid)
			if tc.valid {
				assert.Empty(t, result.Error)
			} else {
				assert.NotEmpty(t, result.Error)
			}
		})
	}
}

func TestValidateInvoiceAmounts_ErrorNamesValues(t *testing.T) {
	result := ValidateInvoiceAmounts(d("100"), d("95"), d("10"))
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "95")
	assert.Contains(t, result.Error, "10")
	assert.Contains(t, result.Error, "100")
}

func TestValidatePendingSplit(t *testing.T) {
	tests := []struct {
		name        string
		total       string
		recoverable string
		payment     string
		valid       bool
	}{
		{"exact split", "100", "60", "40", true},
		{"within tolerance above", "100", "60.005", "40", true},
		{"at tolerance", "100", "60.01", "40", true},
		{"within tolerance below", "100", "59.995", "40", true},
		{"beyond tolerance", "100", "60.02", "40", false},
		{"missing share", "100", "50", "40", false},
		{"zero everything", "0", "0", "0", true},
		{"negative recoverable", "100", "-10", "110", false},
		{"negative payment", "100", "110", "-10", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := ValidatePendingSplit(d(tc.total), d(tc.recoverable), d(tc.payment))
			assert.Equal(t, tc.valid, result.Valid, result.Error)
		})
	}
}
