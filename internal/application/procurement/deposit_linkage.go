package procurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/domain/shared"
)

// DepositLinkage resolves the tender an LOA is awarded from and the deposit
// records (EMD, SD and PG FDRs) linked to it
type DepositLinkage struct {
	tenderRepo procurement.TenderRepository
}

// NewDepositLinkage creates a new DepositLinkage
func NewDepositLinkage(tenderRepo procurement.TenderRepository) *DepositLinkage {
	return &DepositLinkage{tenderRepo: tenderRepo}
}

// ResolveTender loads a tender, failing with NOT_FOUND if it does not exist
func (d *DepositLinkage) ResolveTender(ctx context.Context, tenderID uuid.UUID) (*procurement.Tender, error) {
	tender, err := d.tenderRepo.FindByID(ctx, tenderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Tender", tenderID.String())
		}
		return nil, fmt.Errorf("failed to load tender: %w", err)
	}
	return tender, nil
}

// LinkOnCreate attaches the tender to a new LOA and seeds the LOA's EMD from
// it. hasEMDGiven and amountGiven say which EMD fields the caller supplied;
// those are never overridden. This runs only at creation.
func (d *DepositLinkage) LinkOnCreate(ctx context.Context, loa *procurement.LOA, tenderID *uuid.UUID, hasEMDGiven, amountGiven bool) error {
	if tenderID == nil {
		return nil
	}
	tender, err := d.ResolveTender(ctx, *tenderID)
	if err != nil {
		return err
	}
	id := *tenderID
	loa.TenderID = &id
	loa.AdoptTenderEMD(tender, hasEMDGiven, amountGiven)
	return nil
}

// LinkOnUpdate applies tender and deposit changes to an existing LOA. Absent
// fields keep their links, explicit nulls unlink, and a changed tender must
// exist. EMD values are not re-seeded from the tender.
func (d *DepositLinkage) LinkOnUpdate(
	ctx context.Context,
	loa *procurement.LOA,
	tenderID, sdFdrID, pgFdrID shared.Optional[uuid.UUID],
) error {
	if tenderID.Set {
		next := tenderID.Ptr()
		if next != nil && (loa.TenderID == nil || *loa.TenderID != *next) {
			if _, err := d.ResolveTender(ctx, *next); err != nil {
				return err
			}
		}
		loa.TenderID = next
	}
	loa.LinkSecurityDeposit(sdFdrID)
	loa.LinkPerformanceGuarantee(pgFdrID)
	return nil
}

// parseRef parses a required reference, recording a field error when it is missing or malformed
func parseRef(errs *shared.ValidationErrors, field, raw string) uuid.UUID {
	if raw == "" {
		errs.Add(field, "is required")
		return uuid.Nil
	}
	id, err := shared.ParseID(raw)
	if err != nil {
		errs.Add(field, "must be a valid UUID")
		return uuid.Nil
	}
	return id
}

// parseOptionalRef parses an optional reference; nil stays nil
func parseOptionalRef(errs *shared.ValidationErrors, field string, raw *string) *uuid.UUID {
	if raw == nil || *raw == "" {
		return nil
	}
	id, err := shared.ParseID(*raw)
	if err != nil {
		errs.Add(field, "must be a valid UUID")
		return nil
	}
	return &id
}

// parseNullableRef parses a tri-state reference, keeping absent and null distinct
func parseNullableRef(errs *shared.ValidationErrors, field string, raw shared.Optional[string]) shared.Optional[uuid.UUID] {
	if !raw.Set {
		return shared.Optional[uuid.UUID]{}
	}
	if raw.Null || raw.Value == "" {
		return shared.Null[uuid.UUID]()
	}
	id, err := shared.ParseID(raw.Value)
	if err != nil {
		errs.Add(field, "must be a valid UUID")
		return shared.Optional[uuid.UUID]{}
	}
	return shared.Some(id)
}
