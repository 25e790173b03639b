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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillService manages the bills of an LOA
type BillService struct {
	loaRepo  procurement.LoaRepository
	billRepo procurement.BillRepository
	docs     documentUploader
	metrics  *telemetry.ProcurementMetrics
	logger   *zap.Logger
}

// NewBillService creates a new BillService
func NewBillService(
	loaRepo procurement.LoaRepository,
	billRepo procurement.BillRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *BillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillService{
		loaRepo:  loaRepo,
		billRepo: billRepo,
		docs:     documentUploader{storage: storage, logger: logger},
		logger:   logger,
	}
}

// SetMetrics enables business metrics for bills and their uploads
func (s *BillService) SetMetrics(m *telemetry.ProcurementMetrics) {
	s.metrics = m
	s.docs.metrics = m
}

// CreateBill creates a bill under an LOA. The invoice PDF, when given, is
// uploaded only after the bill has passed validation.
func (s *BillService) CreateBill(ctx context.Context, rawLoaID string, req CreateBillRequest) (*BillResponse, error) {
	loaID, err := shared.ParseID(rawLoaID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loaRepo.FindByID(ctx, loaID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("LOA", rawLoaID)
		}
		return nil, fmt.Errorf("failed to load LOA: %w", err)
	}

	bill, err := newBillFromRequest(loaID, req)
	if err != nil {
		return nil, err
	}

	comp := s.docs.compensator()
	if req.InvoicePdf != nil {
		url, err := s.docs.upload(ctx, comp, loaID, DocumentKindInvoice, req.InvoicePdf)
		if err != nil {
			return nil, err
		}
		bill.ReplaceInvoicePdf(url)
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		comp.Compensate(ctx)
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}

	s.metrics.RecordBillCreated(ctx)
	s.logger.Info("Bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.String("loa_id", loaID.String()),
	)

	response := ToBillResponse(bill)
	return &response, nil
}

// UpdateBill merges req over the stored bill and validates the result as a whole
func (s *BillService) UpdateBill(ctx context.Context, rawID string, req UpdateBillRequest) (*BillResponse, error) {
	id, err := shared.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Bill", rawID)
		}
		return nil, fmt.Errorf("failed to load bill: %w", err)
	}

	if err := mergeBillUpdate(bill, req); err != nil {
		return nil, err
	}

	comp := s.docs.compensator()
	var replaced *string
	if req.InvoicePdf != nil {
		url, err := s.docs.upload(ctx, comp, bill.LoaID, DocumentKindInvoice, req.InvoicePdf)
		if err != nil {
			return nil, err
		}
		replaced = bill.ReplaceInvoicePdf(url)
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		comp.Compensate(ctx)
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	s.docs.discard(ctx, replaced)

	response := ToBillResponse(bill)
	return &response, nil
}

// GetBill returns one bill
func (s *BillService) GetBill(ctx context.Context, rawID string) (*BillResponse, error) {
	id, err := shared.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Bill", rawID)
		}
		return nil, fmt.Errorf("failed to load bill: %w", err)
	}
	response := ToBillResponse(bill)
	return &response, nil
}

// GetBillsByLoaID returns every bill of an LOA, newest first
func (s *BillService) GetBillsByLoaID(ctx context.Context, rawLoaID string) ([]BillResponse, error) {
	loaID, err := shared.ParseID(rawLoaID)
	if err != nil {
		return nil, err
	}
	bills, err := s.billRepo.FindByLoaID(ctx, loaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	return ToBillResponses(bills), nil
}

// DeleteBill hard-deletes a bill. The owning LOA is not touched since its
// totals are always derived from the remaining bills.
func (s *BillService) DeleteBill(ctx context.Context, rawID string) error {
	id, err := shared.ParseID(rawID)
	if err != nil {
		return err
	}
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Bill", rawID)
		}
		return fmt.Errorf("failed to load bill: %w", err)
	}
	if err := s.billRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	s.docs.discard(ctx, bill.InvoicePdfURL)
	return nil
}

// newBillFromRequest builds and validates a bill from a create request
func newBillFromRequest(loaID uuid.UUID, req CreateBillRequest) (*procurement.Bill, error) {
	invoiceAmount := decimal.Zero
	if req.InvoiceAmount != nil {
		invoiceAmount = *req.InvoiceAmount
	}
	return procurement.NewBill(loaID, procurement.BillParams{
		InvoiceNumber:   req.InvoiceNumber,
		InvoiceAmount:   invoiceAmount,
		AmountReceived:  req.AmountReceived,
		AmountDeducted:  req.AmountDeducted,
		DeductionReason: req.DeductionReason,
		BillLinks:       req.BillLinks,
		Remarks:         req.Remarks,
		Status:          procurement.BillStatus(strings.TrimSpace(req.Status)),
	})
}

// mergeBillUpdate applies req to bill and validates the merged state. On
// failure the bill is restored to its previous values.
func mergeBillUpdate(bill *procurement.Bill, req UpdateBillRequest) error {
	before := *bill

	if req.InvoiceNumber != nil {
		bill.InvoiceNumber = strings.TrimSpace(*req.InvoiceNumber)
	}
	if req.InvoiceAmount != nil {
		bill.InvoiceAmount = *req.InvoiceAmount
	}
	if req.AmountReceived != nil {
		bill.AmountReceived = *req.AmountReceived
	}
	if req.AmountDeducted != nil {
		bill.AmountDeducted = *req.AmountDeducted
	}
	if req.DeductionReason != nil {
		bill.DeductionReason = strings.TrimSpace(*req.DeductionReason)
	}
	if req.BillLinks != nil {
		bill.BillLinks = strings.TrimSpace(*req.BillLinks)
	}
	if req.Remarks != nil {
		bill.Remarks = *req.Remarks
	}
	if req.Status != nil {
		bill.Status = procurement.BillStatus(strings.TrimSpace(*req.Status))
	}

	if err := bill.Validate(); err != nil {
		*bill = before
		return err
	}
	bill.Touch()
	return nil
}

// billRequestFromBilling maps the LOA billing shortcut onto a bill create request
func billRequestFromBilling(b *BillingInput) CreateBillRequest {
	req := CreateBillRequest{
		InvoiceAmount:  b.InvoiceAmount,
		AmountReceived: b.AmountReceived,
		AmountDeducted: b.AmountDeducted,
	}
	if b.InvoiceNumber != nil {
		req.InvoiceNumber = *b.InvoiceNumber
	}
	if b.BillLinks != nil {
		req.BillLinks = *b.BillLinks
	}
	if b.DeductionReason != nil {
		req.DeductionReason = *b.DeductionReason
	}
	return req
}

// billUpdateFromBilling maps the LOA billing shortcut onto a bill update request
func billUpdateFromBilling(b *BillingInput) UpdateBillRequest {
	return UpdateBillRequest{
		InvoiceNumber:   b.InvoiceNumber,
		InvoiceAmount:   b.InvoiceAmount,
		AmountReceived:  b.AmountReceived,
		AmountDeducted:  b.AmountDeducted,
		DeductionReason: b.DeductionReason,
		BillLinks:       b.BillLinks,
	}
}
