package procurement

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Field limits for a purchase order
const (
	PoNumberMinLength = 3
	PoNumberMaxLength = 50
)

// PurchaseOrder is an order placed with a vendor against an LOA.
// While any exist the LOA cannot be deleted.
type PurchaseOrder struct {
	shared.BaseEntity
	LoaID       uuid.UUID
	PoNumber    string
	VendorName  string
	PoValue     decimal.Decimal
	Description string
}

// NewPurchaseOrder creates a purchase order under an LOA
func NewPurchaseOrder(loaID uuid.UUID, poNumber, vendorName string, poValue decimal.Decimal) (*PurchaseOrder, error) {
	po := &PurchaseOrder{
		BaseEntity: shared.NewBaseEntity(),
		LoaID:      loaID,
		PoNumber:   strings.TrimSpace(poNumber),
		VendorName: strings.TrimSpace(vendorName),
		PoValue:    poValue,
	}

	var errs shared.ValidationErrors
	if loaID == uuid.Nil {
		errs.Add("loa_id", "LOA ID is required")
	}
	n := utf8.RuneCountInString(po.PoNumber)
	if n < PoNumberMinLength || n > PoNumberMaxLength {
		errs.Addf("po_number", "PO number must be between %d and %d characters", PoNumberMinLength, PoNumberMaxLength)
	}
	if po.VendorName == "" {
		errs.Add("vendor_name", "vendor name is required")
	}
	if !poValue.IsPositive() {
		errs.Add("po_value", "PO value must be greater than zero")
	}
	if err := errs.Err("Purchase order validation failed"); err != nil {
		return nil, err
	}
	return po, nil
}
