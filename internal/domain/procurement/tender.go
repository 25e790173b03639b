package procurement

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TenderStatus represents the status of a tender
type TenderStatus string

const (
	TenderStatusActive    TenderStatus = "ACTIVE"
	TenderStatusClosed    TenderStatus = "CLOSED"
	TenderStatusCancelled TenderStatus = "CANCELLED"
)

// IsValid checks if the tender status is valid
func (s TenderStatus) IsValid() bool {
	switch s {
	case TenderStatusActive, TenderStatusClosed, TenderStatusCancelled:
		return true
	}
	return false
}

// Field limits for a tender
const (
	TenderNumberMinLength = 3
	TenderNumberMaxLength = 50
)

// Tender is the bid an LOA is awarded from. Its EMD settings seed new LOAs.
type Tender struct {
	shared.BaseEntity
	TenderNumber string
	Description  string
	HasEMD       bool
	EMDAmount    *decimal.Decimal
	DueDate      *time.Time
	Status       TenderStatus
	Tags         []string
}

// NewTender creates an ACTIVE tender
func NewTender(tenderNumber, description string, hasEMD bool, emdAmount *decimal.Decimal) (*Tender, error) {
	t := &Tender{
		BaseEntity:   shared.NewBaseEntity(),
		TenderNumber: strings.TrimSpace(tenderNumber),
		Description:  strings.TrimSpace(description),
		HasEMD:       hasEMD,
		EMDAmount:    emdAmount,
		Status:       TenderStatusActive,
		Tags:         []string{},
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the tender's fields
func (t *Tender) Validate() error {
	var errs shared.ValidationErrors
	n := utf8.RuneCountInString(t.TenderNumber)
	if n < TenderNumberMinLength || n > TenderNumberMaxLength {
		errs.Addf("tender_number", "tender number must be between %d and %d characters",
			TenderNumberMinLength, TenderNumberMaxLength)
	}
	if t.HasEMD && (t.EMDAmount == nil || !t.EMDAmount.IsPositive()) {
		errs.Add("emd_amount", "EMD amount must be greater than zero when the tender has an EMD")
	}
	if !t.HasEMD && t.EMDAmount != nil {
		errs.Add("emd_amount", "EMD amount must not be set when the tender has no EMD")
	}
	if !t.Status.IsValid() {
		errs.Add("status", "invalid tender status: "+string(t.Status))
	}
	return errs.Err("Tender validation failed")
}
