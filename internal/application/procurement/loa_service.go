package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LoaService drives the LOA lifecycle: creation with deposit linkage, document
// upload and initial billing, partial updates, status changes and deletion
type LoaService struct {
	loaRepo       procurement.LoaRepository
	billRepo      procurement.BillRepository
	amendmentRepo procurement.AmendmentRepository
	documentRepo  procurement.OtherDocumentRepository
	poRepo        procurement.PurchaseOrderRepository
	uow           procurement.UnitOfWork
	deposits      *DepositLinkage
	docs          documentUploader
	metrics       *telemetry.ProcurementMetrics
	logger        *zap.Logger
}

// NewLoaService creates a new LoaService
func NewLoaService(
	repos procurement.Repositories,
	uow procurement.UnitOfWork,
	storage ObjectStorage,
	logger *zap.Logger,
) *LoaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoaService{
		loaRepo:       repos.Loas,
		billRepo:      repos.Bills,
		amendmentRepo: repos.Amendments,
		documentRepo:  repos.Documents,
		poRepo:        repos.PurchaseOrders,
		uow:           uow,
		deposits:      NewDepositLinkage(repos.Tenders),
		docs:          documentUploader{storage: storage, logger: logger},
		logger:        logger,
	}
}

// SetMetrics enables business metrics. Services built without it record nothing.
func (s *LoaService) SetMetrics(m *telemetry.ProcurementMetrics) {
	s.metrics = m
	s.docs.metrics = m
}

// CreateLoa validates and stores a new LOA.
//
// Steps run in order: field validation (all errors reported together), LOA
// number uniqueness, tender and deposit linkage, tag normalisation, document
// uploads, then the LOA and its optional initial bill are saved in one
// transaction. Uploaded files are deleted again if a later step fails.
func (s *LoaService) CreateLoa(ctx context.Context, req CreateLoaRequest) (*LoaMutationResult, error) {
	var errs shared.ValidationErrors

	siteID := parseRef(&errs, "site_id", strings.TrimSpace(req.SiteID))
	tenderID := parseOptionalRef(&errs, "tender_id", req.TenderID)
	sdFdrID := parseOptionalRef(&errs, "sd_fdr_id", req.SdFdrID)
	pgFdrID := parseOptionalRef(&errs, "pg_fdr_id", req.PgFdrID)

	loa := procurement.NewLOA(
		req.LoaNumber,
		req.LoaValue,
		procurement.DeliveryPeriod{Start: req.DeliveryStart, End: req.DeliveryEnd},
		req.WorkDescription,
		siteID,
	)
	if status := strings.TrimSpace(req.Status); status != "" {
		loa.Status = procurement.LoaStatus(status)
	}
	if req.HasEMD != nil {
		loa.HasEMD = *req.HasEMD
	}
	loa.EMDAmount = req.EMDAmount
	loa.SdFdrID = sdFdrID
	loa.PgFdrID = pgFdrID
	loa.Remarks = strings.TrimSpace(req.Remarks)

	loa.CollectCoreErrors(&errs)
	// Without a tender nothing can switch HasEMD on later, so the EMD fields
	// are final here. With one, an absent HasEMD may still be adopted.
	if req.HasEMD != nil || tenderID == nil {
		loa.CollectEMDErrors(&errs)
	} else if req.EMDAmount != nil && !req.EMDAmount.IsPositive() {
		errs.Add("emd_amount", "EMD amount must be greater than zero")
	}

	var bill *procurement.Bill
	if req.Billing.Present() {
		var err error
		bill, err = newBillFromRequest(loa.ID, billRequestFromBilling(req.Billing))
		if err != nil {
			if !appendValidation(&errs, err) {
				return nil, err
			}
		}
	}

	if err := errs.Err("LOA validation failed"); err != nil {
		return nil, err
	}

	exists, err := s.loaRepo.ExistsByLoaNumber(ctx, loa.LoaNumber, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check LOA number: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "LOA number already exists: "+loa.LoaNumber)
	}

	if err := s.deposits.LinkOnCreate(ctx, loa, tenderID, req.HasEMD != nil, req.EMDAmount != nil); err != nil {
		return nil, err
	}
	if err := loa.Validate(); err != nil {
		return nil, err
	}

	result := &LoaMutationResult{}
	tags, warning := procurement.NormalizeTags(req.Tags)
	loa.SetTags(tags)
	if warning != nil {
		s.logger.Warn("Ignoring undecodable LOA tags",
			zap.String("loa_number", loa.LoaNumber),
			zap.String("raw", warning.Raw),
			zap.String("reason", warning.Reason),
		)
		result.Warnings = append(result.Warnings, warning.Message())
	}

	comp := s.docs.compensator()
	if req.Document != nil {
		url, err := s.docs.upload(ctx, comp, loa.ID, DocumentKindLoa, req.Document)
		if err != nil {
			comp.Compensate(ctx)
			return nil, err
		}
		loa.ReplaceDocument(url)
	}
	if bill != nil && req.Billing.InvoicePdf != nil {
		url, err := s.docs.upload(ctx, comp, loa.ID, DocumentKindInvoice, req.Billing.InvoicePdf)
		if err != nil {
			comp.Compensate(ctx)
			return nil, err
		}
		bill.ReplaceInvoicePdf(url)
	}

	err = s.uow.WithinTx(ctx, func(r procurement.Repositories) error {
		if err := r.Loas.Save(ctx, loa); err != nil {
			return fmt.Errorf("failed to save LOA: %w", err)
		}
		if bill != nil {
			if err := r.Bills.Save(ctx, bill); err != nil {
				return fmt.Errorf("failed to save initial bill: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		comp.Compensate(ctx)
		s.logger.Error("LOA creation failed",
			zap.String("loa_number", loa.LoaNumber),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordLoaCreated(ctx, loa.Status.String())
	if bill != nil {
		s.metrics.RecordBillCreated(ctx)
	}
	s.logger.Info("LOA created",
		zap.String("loa_id", loa.ID.String()),
		zap.String("loa_number", loa.LoaNumber),
		zap.Bool("initial_bill", bill != nil),
	)

	result.Loa = ToLoaResponse(loa)
	if bill != nil {
		b := ToBillResponse(bill)
		result.Bill = &b
	}
	return result, nil
}

// UpdateLoa applies a partial update. Omitted fields are left alone, explicit
// nulls clear deposit and tender links, and billing fields update the LOA's
// bill: the one named by BillID, else its only bill, else a new one. An LOA
// with several bills and no BillID is rejected.
func (s *LoaService) UpdateLoa(ctx context.Context, rawID string, req UpdateLoaRequest) (*LoaMutationResult, error) {
	id, err := shared.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	loa, err := s.loaRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("LOA", rawID)
		}
		return nil, fmt.Errorf("failed to load LOA: %w", err)
	}
	originalNumber := loa.LoaNumber

	var errs shared.ValidationErrors
	if req.LoaNumber != nil {
		loa.LoaNumber = strings.TrimSpace(*req.LoaNumber)
	}
	if req.LoaValue != nil {
		loa.LoaValue = *req.LoaValue
	}
	if req.DeliveryStart != nil {
		loa.DeliveryPeriod.Start = *req.DeliveryStart
	}
	if req.DeliveryEnd != nil {
		loa.DeliveryPeriod.End = *req.DeliveryEnd
	}
	if req.WorkDescription != nil {
		loa.WorkDescription = strings.TrimSpace(*req.WorkDescription)
	}
	if req.SiteID != nil {
		if siteID := parseRef(&errs, "site_id", strings.TrimSpace(*req.SiteID)); siteID != uuid.Nil {
			loa.SiteID = siteID
		}
	}
	if req.Remarks != nil {
		loa.Remarks = strings.TrimSpace(*req.Remarks)
	}
	if req.HasEMD != nil {
		loa.HasEMD = *req.HasEMD
		if !loa.HasEMD && !req.EMDAmount.Set {
			loa.EMDAmount = nil
		}
	}
	if req.EMDAmount.Set {
		loa.EMDAmount = req.EMDAmount.Ptr()
	}

	tenderID := parseNullableRef(&errs, "tender_id", req.TenderID)
	sdFdrID := parseNullableRef(&errs, "sd_fdr_id", req.SdFdrID)
	pgFdrID := parseNullableRef(&errs, "pg_fdr_id", req.PgFdrID)

	loa.CollectErrors(&errs)
	if err := errs.Err("LOA validation failed"); err != nil {
		return nil, err
	}

	if loa.LoaNumber != originalNumber {
		exists, err := s.loaRepo.ExistsByLoaNumber(ctx, loa.LoaNumber, &loa.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check LOA number: %w", err)
		}
		if exists {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "LOA number already exists: "+loa.LoaNumber)
		}
	}

	if err := s.deposits.LinkOnUpdate(ctx, loa, tenderID, sdFdrID, pgFdrID); err != nil {
		return nil, err
	}

	result := &LoaMutationResult{}
	if req.Tags.IsSet() {
		tags, warning := procurement.NormalizeTags(req.Tags)
		loa.SetTags(tags)
		if warning != nil {
			s.logger.Warn("Ignoring undecodable LOA tags",
				zap.String("loa_id", loa.ID.String()),
				zap.String("raw", warning.Raw),
				zap.String("reason", warning.Reason),
			)
			result.Warnings = append(result.Warnings, warning.Message())
		}
	}

	var bill *procurement.Bill
	if req.Billing.Touched() {
		bill, err = s.applyBilling(ctx, loa.ID, req.Billing)
		if err != nil {
			return nil, err
		}
	}

	comp := s.docs.compensator()
	var replaced []*string
	if req.Document != nil {
		url, err := s.docs.upload(ctx, comp, loa.ID, DocumentKindLoa, req.Document)
		if err != nil {
			comp.Compensate(ctx)
			return nil, err
		}
		replaced = append(replaced, loa.ReplaceDocument(url))
	} else if req.RemoveDocument {
		replaced = append(replaced, loa.ClearDocument())
	}
	if bill != nil && req.Billing.InvoicePdf != nil {
		url, err := s.docs.upload(ctx, comp, loa.ID, DocumentKindInvoice, req.Billing.InvoicePdf)
		if err != nil {
			comp.Compensate(ctx)
			return nil, err
		}
		replaced = append(replaced, bill.ReplaceInvoicePdf(url))
	}

	loa.Touch()
	err = s.uow.WithinTx(ctx, func(r procurement.Repositories) error {
		if err := r.Loas.Save(ctx, loa); err != nil {
			return fmt.Errorf("failed to save LOA: %w", err)
		}
		if bill != nil {
			if err := r.Bills.Save(ctx, bill); err != nil {
				return fmt.Errorf("failed to save bill: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		comp.Compensate(ctx)
		s.logger.Error("LOA update failed", zap.String("loa_id", loa.ID.String()), zap.Error(err))
		return nil, err
	}
	for _, url := range replaced {
		s.docs.discard(ctx, url)
	}

	result.Loa = ToLoaResponse(loa)
	if bill != nil {
		b := ToBillResponse(bill)
		result.Bill = &b
	}
	return result, nil
}

// applyBilling resolves which bill the billing shortcut targets and applies the fields to it
func (s *LoaService) applyBilling(ctx context.Context, loaID uuid.UUID, billing *BillingInput) (*procurement.Bill, error) {
	if billing.BillID != nil {
		billID, err := shared.ParseID(*billing.BillID)
		if err != nil {
			return nil, shared.NewFieldValidationError("bill_id", "bill_id must be a valid UUID")
		}
		bill, err := s.billRepo.FindByID(ctx, billID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewNotFoundError("Bill", *billing.BillID)
			}
			return nil, fmt.Errorf("failed to load bill: %w", err)
		}
		if bill.LoaID != loaID {
			return nil, shared.NewFieldValidationError("bill_id", "bill does not belong to this LOA")
		}
		if err := mergeBillUpdate(bill, billUpdateFromBilling(billing)); err != nil {
			return nil, err
		}
		return bill, nil
	}

	bills, err := s.billRepo.FindByLoaID(ctx, loaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}

	switch len(bills) {
	case 0:
		if !billing.Present() {
			return nil, shared.NewFieldValidationError("billing",
				"invoice_number, invoice_amount or bill_links is required to create a bill")
		}
		return newBillFromRequest(loaID, billRequestFromBilling(billing))
	case 1:
		bill := &bills[0]
		if err := mergeBillUpdate(bill, billUpdateFromBilling(billing)); err != nil {
			return nil, err
		}
		return bill, nil
	default:
		return nil, shared.NewConflictError(fmt.Sprintf(
			"LOA has %d bills; bill_id is required to choose which one to update", len(bills)))
	}
}

// UpdateStatus moves an LOA to status. The status is checked first and an
// unknown value leaves the stored LOA untouched.
func (s *LoaService) UpdateStatus(ctx context.Context, rawID string, req UpdateLoaStatusRequest) (*LoaResponse, error) {
	status, err := procurement.ParseLoaStatus(req.Status)
	if err != nil {
		return nil, err
	}
	id, err := shared.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	loa, err := s.loaRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("LOA", rawID)
		}
		return nil, fmt.Errorf("failed to load LOA: %w", err)
	}

	previous := loa.Status
	if err := loa.UpdateStatus(status); err != nil {
		return nil, err
	}
	if err := s.loaRepo.Save(ctx, loa); err != nil {
		return nil, fmt.Errorf("failed to save LOA status: %w", err)
	}

	s.metrics.RecordStatusChange(ctx, previous.String(), status.String())
	s.logger.Info("LOA status changed",
		zap.String("loa_id", loa.ID.String()),
		zap.String("from", previous.String()),
		zap.String("to", status.String()),
	)

	response := ToLoaResponse(loa)
	return &response, nil
}

// DeleteLoa deletes an LOA that has no purchase orders. Amendments go first,
// then supporting documents and bills, then the LOA, all in one transaction.
func (s *LoaService) DeleteLoa(ctx context.Context, rawID string) error {
	id, err := shared.ParseID(rawID)
	if err != nil {
		return err
	}

	loa, err := s.loaRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("LOA", rawID)
		}
		return fmt.Errorf("failed to load LOA: %w", err)
	}

	var stored []*string
	err = s.uow.WithinTx(ctx, func(r procurement.Repositories) error {
		poCount, err := r.PurchaseOrders.CountByLoaID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count purchase orders: %w", err)
		}
		if poCount > 0 {
			return shared.NewConflictError(fmt.Sprintf(
				"LOA %s cannot be deleted while it has %d purchase order(s)", loa.LoaNumber, poCount))
		}

		amendments, err := r.Amendments.FindByLoaID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load amendments: %w", err)
		}
		docs, err := r.Documents.FindByLoaID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load documents: %w", err)
		}
		bills, err := r.Bills.FindByLoaID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load bills: %w", err)
		}

		if err := r.Amendments.DeleteByLoaID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete amendments: %w", err)
		}
		if err := r.Documents.DeleteByLoaID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete documents: %w", err)
		}
		if err := r.Bills.DeleteByLoaID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete bills: %w", err)
		}
		if err := r.Loas.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete LOA: %w", err)
		}

		for i := range amendments {
			stored = append(stored, amendments[i].DocumentURL)
		}
		for i := range docs {
			url := docs[i].DocumentURL
			stored = append(stored, &url)
		}
		for i := range bills {
			stored = append(stored, bills[i].InvoicePdfURL)
		}
		stored = append(stored, loa.DocumentURL)
		return nil
	})
	if err != nil {
		return err
	}

	for _, url := range stored {
		s.docs.discard(ctx, url)
	}
	s.logger.Info("LOA deleted", zap.String("loa_id", id.String()), zap.String("loa_number", loa.LoaNumber))
	return nil
}

// GetLoa returns an LOA with its bills, amendments, documents and invoice totals
func (s *LoaService) GetLoa(ctx context.Context, rawID string) (*LoaDetailResponse, error) {
	id, err := shared.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	loa, err := s.loaRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("LOA", rawID)
		}
		return nil, fmt.Errorf("failed to load LOA: %w", err)
	}

	bills, err := s.billRepo.FindByLoaID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	amendments, err := s.amendmentRepo.FindByLoaID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load amendments: %w", err)
	}
	docs, err := s.documentRepo.FindByLoaID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	poCount, err := s.poRepo.CountByLoaID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count purchase orders: %w", err)
	}

	return &LoaDetailResponse{
		LoaResponse:        ToLoaResponse(loa),
		Bills:              ToBillResponses(bills),
		Amendments:         ToAmendmentResponses(amendments),
		OtherDocuments:     ToOtherDocumentResponses(docs),
		PurchaseOrderCount: poCount,
		InvoiceTotals:      procurement.AggregateInvoiceTotals(bills),
	}, nil
}

// ListLoas returns one page of LOAs and the total match count. The page and
// the count are independent reads and are fetched concurrently.
func (s *LoaService) ListLoas(ctx context.Context, filter LoaListFilter) ([]LoaResponse, int64, error) {
	domainFilter, err := s.buildLoaFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	var (
		loas  []procurement.LOA
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		loas, err = s.loaRepo.FindAll(gctx, domainFilter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.loaRepo.Count(gctx, domainFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("failed to list LOAs: %w", err)
	}

	return ToLoaResponses(loas), total, nil
}

func (s *LoaService) buildLoaFilter(filter LoaListFilter) (procurement.LoaFilter, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	var errs shared.ValidationErrors
	result := procurement.LoaFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		},
		HasEMD:   filter.HasEMD,
		MinValue: filter.MinValue,
		MaxValue: filter.MaxValue,
	}
	if filter.Status != "" {
		status := procurement.LoaStatus(filter.Status)
		if !status.IsValid() {
			errs.Add("status", "invalid status: "+filter.Status)
		} else {
			result.Status = &status
		}
	}
	if filter.SiteID != "" {
		result.SiteID = parseOptionalRef(&errs, "site_id", &filter.SiteID)
	}
	if filter.TenderID != "" {
		result.TenderID = parseOptionalRef(&errs, "tender_id", &filter.TenderID)
	}
	if filter.MinValue != nil && filter.MaxValue != nil && filter.MinValue.GreaterThan(*filter.MaxValue) {
		errs.Add("min_value", "min_value cannot be greater than max_value")
	}
	if err := errs.Err("Invalid LOA filter"); err != nil {
		return procurement.LoaFilter{}, err
	}
	return result, nil
}

// appendValidation copies the field errors of a *shared.ValidationError into
// errs and reports whether err was one
func appendValidation(errs *shared.ValidationErrors, err error) bool {
	var verr *shared.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	for _, f := range verr.Fields {
		errs.Add(f.Field, f.Message)
	}
	return true
}
