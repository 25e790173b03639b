package procurement

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
)

// Field limits for an amendment
const (
	AmendmentNumberMinLength = 3
	AmendmentNumberMaxLength = 50
)

// Amendment is a dated modification record attached to an LOA
type Amendment struct {
	shared.BaseEntity
	LoaID           uuid.UUID
	AmendmentNumber string
	DocumentURL     *string
	Tags            []string
}

// NewAmendment creates an amendment for an LOA
func NewAmendment(loaID uuid.UUID, amendmentNumber string) (*Amendment, error) {
	a := &Amendment{
		BaseEntity:      shared.NewBaseEntity(),
		LoaID:           loaID,
		AmendmentNumber: strings.TrimSpace(amendmentNumber),
		Tags:            []string{},
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the amendment's fields
func (a *Amendment) Validate() error {
	var errs shared.ValidationErrors
	if a.LoaID == uuid.Nil {
		errs.Add("loa_id", "LOA ID is required")
	}
	n := utf8.RuneCountInString(a.AmendmentNumber)
	if n < AmendmentNumberMinLength || n > AmendmentNumberMaxLength {
		errs.Addf("amendment_number", "amendment number must be between %d and %d characters",
			AmendmentNumberMinLength, AmendmentNumberMaxLength)
	}
	return errs.Err("Amendment validation failed")
}

// Rename changes the amendment number
func (a *Amendment) Rename(amendmentNumber string) error {
	previous := a.AmendmentNumber
	a.AmendmentNumber = strings.TrimSpace(amendmentNumber)
	if err := a.Validate(); err != nil {
		a.AmendmentNumber = previous
		return err
	}
	a.Touch()
	return nil
}

// ReplaceDocument points the amendment at a newly uploaded document and returns the URL it replaced
func (a *Amendment) ReplaceDocument(url string) *string {
	previous := a.DocumentURL
	a.DocumentURL = &url
	a.Touch()
	return previous
}

// SetTags replaces the amendment's tags
func (a *Amendment) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	a.Tags = tags
	a.Touch()
}
