package procurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/domain/shared"
)

// FinancialCalculationService derives invoice totals for an LOA. Totals are
// always computed from the bills on demand; nothing is cached on the LOA.
type FinancialCalculationService struct {
	loaRepo  procurement.LoaRepository
	billRepo procurement.BillRepository
}

// NewFinancialCalculationService creates a new FinancialCalculationService
func NewFinancialCalculationService(loaRepo procurement.LoaRepository, billRepo procurement.BillRepository) *FinancialCalculationService {
	return &FinancialCalculationService{
		loaRepo:  loaRepo,
		billRepo: billRepo,
	}
}

// AggregateInvoiceTotals sums billed, received, deducted and pending amounts over every bill of an LOA
func (s *FinancialCalculationService) AggregateInvoiceTotals(ctx context.Context, loaID uuid.UUID) (procurement.InvoiceTotals, error) {
	bills, err := s.billRepo.FindByLoaID(ctx, loaID)
	if err != nil {
		return procurement.InvoiceTotals{}, fmt.Errorf("failed to load bills for LOA %s: %w", loaID, err)
	}
	return procurement.AggregateInvoiceTotals(bills), nil
}

// GetFinancialSummary reports an LOA's billing position. When split is given it
// is validated against the pending total and broken down into percentages.
func (s *FinancialCalculationService) GetFinancialSummary(ctx context.Context, rawID string, split *PendingSplitInput) (*FinancialSummaryResponse, error) {
	loaID, err := shared.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	loa, err := s.loaRepo.FindByID(ctx, loaID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("LOA", rawID)
		}
		return nil, fmt.Errorf("failed to load LOA: %w", err)
	}

	bills, err := s.billRepo.FindByLoaID(ctx, loaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills for LOA %s: %w", loaID, err)
	}

	totals := procurement.AggregateInvoiceTotals(bills)
	overpaid := make([]BillResponse, 0)
	for i := range bills {
		if bills[i].IsOverpaid() {
			overpaid = append(overpaid, ToBillResponse(&bills[i]))
		}
	}

	summary := &FinancialSummaryResponse{
		LoaID:         loa.ID,
		LoaValue:      loa.LoaValue,
		Totals:        totals,
		UnbilledValue: loa.LoaValue.Sub(totals.TotalBilled),
		BillCount:     len(bills),
		OverpaidBills: overpaid,
	}

	if split != nil {
		result := procurement.ValidatePendingSplit(totals.TotalPending, split.RecoverablePending, split.PaymentPending)
		summary.PendingSplit = &PendingSplitResponse{
			RecoverablePending: split.RecoverablePending,
			PaymentPending:     split.PaymentPending,
			Percentages: procurement.CalculatePendingPercentages(
				totals.TotalPending, split.RecoverablePending, split.PaymentPending),
			Valid: result.Valid,
			Error: result.Error,
		}
	}

	return summary, nil
}
