package procurement

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Field limits for an LOA
const (
	LoaNumberMinLength       = 3
	LoaNumberMaxLength       = 50
	WorkDescriptionMinLength = 10
	WorkDescriptionMaxLength = 1000
)

// DeliveryPeriod is the window in which the LOA's supply or work is due
type DeliveryPeriod struct {
	Start time.Time
	End   time.Time
}

// IsOrdered reports whether Start is strictly before End
func (p DeliveryPeriod) IsOrdered() bool {
	return p.Start.Before(p.End)
}

// LOA is a Letter of Authorization, the contract record that bills,
// amendments, documents and purchase orders hang off.
type LOA struct {
	shared.BaseEntity
	LoaNumber       string
	LoaValue        decimal.Decimal
	DeliveryPeriod  DeliveryPeriod
	WorkDescription string
	SiteID          uuid.UUID
	Status          LoaStatus
	HasEMD          bool
	EMDAmount       *decimal.Decimal
	SdFdrID         *uuid.UUID
	PgFdrID         *uuid.UUID
	TenderID        *uuid.UUID
	DocumentURL     *string
	Tags            []string
	Remarks         string
}

// NewLOA creates an LOA in the NOT_STARTED status. Call Validate once deposit
// and tender linkage has been resolved.
func NewLOA(loaNumber string, loaValue decimal.Decimal, period DeliveryPeriod, workDescription string, siteID uuid.UUID) *LOA {
	return &LOA{
		BaseEntity:      shared.NewBaseEntity(),
		LoaNumber:       strings.TrimSpace(loaNumber),
		LoaValue:        loaValue,
		DeliveryPeriod:  period,
		WorkDescription: strings.TrimSpace(workDescription),
		SiteID:          siteID,
		Status:          LoaStatusNotStarted,
		Tags:            []string{},
	}
}

// Validate checks the LOA's full state and returns a *shared.ValidationError
// listing every failing field
func (l *LOA) Validate() error {
	var errs shared.ValidationErrors
	l.CollectErrors(&errs)
	return errs.Err("LOA validation failed")
}

// CollectErrors appends every field error of the LOA to errs
func (l *LOA) CollectErrors(errs *shared.ValidationErrors) {
	l.CollectCoreErrors(errs)
	l.CollectEMDErrors(errs)
}

// CollectCoreErrors checks every field except the EMD pair
func (l *LOA) CollectCoreErrors(errs *shared.ValidationErrors) {
	n := utf8.RuneCountInString(l.LoaNumber)
	if n < LoaNumberMinLength || n > LoaNumberMaxLength {
		errs.Addf("loa_number", "LOA number must be between %d and %d characters", LoaNumberMinLength, LoaNumberMaxLength)
	}
	if !l.LoaValue.IsPositive() {
		errs.Add("loa_value", "LOA value must be greater than zero")
	}
	if l.DeliveryPeriod.Start.IsZero() || l.DeliveryPeriod.End.IsZero() {
		errs.Add("delivery_period", "delivery period start and end are required")
	} else if !l.DeliveryPeriod.IsOrdered() {
		errs.Add("delivery_period", "delivery period start must be before end")
	}
	d := utf8.RuneCountInString(l.WorkDescription)
	if d < WorkDescriptionMinLength || d > WorkDescriptionMaxLength {
		errs.Addf("work_description", "work description must be between %d and %d characters",
			WorkDescriptionMinLength, WorkDescriptionMaxLength)
	}
	if l.SiteID == uuid.Nil && !errs.Has("site_id") {
		errs.Add("site_id", "site is required")
	}
	if !l.Status.IsValid() {
		errs.Add("status", "invalid status: "+string(l.Status))
	}
}

// CollectEMDErrors checks that an EMD amount is present and positive exactly when HasEMD is set
func (l *LOA) CollectEMDErrors(errs *shared.ValidationErrors) {
	switch {
	case l.HasEMD && l.EMDAmount == nil:
		errs.Add("emd_amount", "EMD amount is required when the LOA has an EMD")
	case l.HasEMD && !l.EMDAmount.IsPositive():
		errs.Add("emd_amount", "EMD amount must be greater than zero")
	case !l.HasEMD && l.EMDAmount != nil:
		errs.Add("emd_amount", "EMD amount must not be set when the LOA has no EMD")
	}
}

// UpdateStatus moves the LOA to status. Unknown statuses are rejected and leave the LOA untouched.
func (l *LOA) UpdateStatus(status LoaStatus) error {
	if !l.Status.CanTransitionTo(status) {
		return shared.NewFieldValidationError("status", "invalid status: "+string(status))
	}
	l.Status = status
	l.Touch()
	return nil
}

// SetEMD sets or clears the earnest money deposit
func (l *LOA) SetEMD(hasEMD bool, amount *decimal.Decimal) {
	l.HasEMD = hasEMD
	l.EMDAmount = amount
	l.Touch()
}

// AdoptTenderEMD seeds the LOA's EMD from its tender. Values the caller
// supplied explicitly are never overridden: hasEMDGiven and amountGiven say
// which of the two were supplied.
func (l *LOA) AdoptTenderEMD(tender *Tender, hasEMDGiven, amountGiven bool) {
	if hasEMDGiven || tender == nil || !tender.HasEMD {
		return
	}
	l.HasEMD = true
	if !amountGiven && tender.EMDAmount != nil {
		amount := *tender.EMDAmount
		l.EMDAmount = &amount
	}
}

// LinkSecurityDeposit resolves the security deposit link. Absent leaves the
// current link, an explicit null unlinks, a value relinks.
func (l *LOA) LinkSecurityDeposit(fdr shared.Optional[uuid.UUID]) {
	l.SdFdrID = fdr.Apply(l.SdFdrID)
}

// LinkPerformanceGuarantee resolves the performance guarantee link with the same rules as LinkSecurityDeposit
func (l *LOA) LinkPerformanceGuarantee(fdr shared.Optional[uuid.UUID]) {
	l.PgFdrID = fdr.Apply(l.PgFdrID)
}

// ReplaceDocument points the LOA at a newly uploaded document and returns the URL it replaced
func (l *LOA) ReplaceDocument(url string) *string {
	previous := l.DocumentURL
	l.DocumentURL = &url
	l.Touch()
	return previous
}

// ClearDocument removes the LOA's document reference and returns the URL it held
func (l *LOA) ClearDocument() *string {
	previous := l.DocumentURL
	l.DocumentURL = nil
	l.Touch()
	return previous
}

// SetTags replaces the LOA's tags
func (l *LOA) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	l.Tags = tags
	l.Touch()
}
