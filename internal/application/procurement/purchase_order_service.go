package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PurchaseOrderService manages purchase orders raised against LOAs
type PurchaseOrderService struct {
	loaRepo procurement.LoaRepository
	poRepo  procurement.PurchaseOrderRepository
	logger  *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(loaRepo procurement.LoaRepository, poRepo procurement.PurchaseOrderRepository, logger *zap.Logger) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{loaRepo: loaRepo, poRepo: poRepo, logger: logger}
}

// CreatePurchaseOrder raises a purchase order under an existing LOA
func (s *PurchaseOrderService) CreatePurchaseOrder(ctx context.Context, rawLoaID string, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
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

	po, err := procurement.NewPurchaseOrder(loaID, req.PoNumber, req.VendorName, req.PoValue)
	if err != nil {
		return nil, err
	}
	po.Description = strings.TrimSpace(req.Description)

	exists, err := s.poRepo.ExistsByPoNumber(ctx, po.PoNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check PO number: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "PO number already exists: "+po.PoNumber)
	}

	if err := s.poRepo.Save(ctx, po); err != nil {
		return nil, fmt.Errorf("failed to save purchase order: %w", err)
	}
	s.logger.Info("Purchase order created",
		zap.String("po_id", po.ID.String()),
		zap.String("loa_id", loaID.String()),
		zap.String("po_number", po.PoNumber),
	)

	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// GetPurchaseOrder returns one purchase order
func (s *PurchaseOrderService) GetPurchaseOrder(ctx context.Context, rawID string) (*PurchaseOrderResponse, error) {
	id, err := shared.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Purchase order", rawID)
		}
		return nil, fmt.Errorf("failed to load purchase order: %w", err)
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// ListPurchaseOrders returns the purchase orders of an LOA
func (s *PurchaseOrderService) ListPurchaseOrders(ctx context.Context, rawLoaID string) ([]PurchaseOrderResponse, error) {
	loaID, err := shared.ParseID(rawLoaID)
	if err != nil {
		return nil, err
	}
	pos, err := s.poRepo.FindByLoaID(ctx, loaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	responses := make([]PurchaseOrderResponse, len(pos))
	for i := range pos {
		responses[i] = ToPurchaseOrderResponse(&pos[i])
	}
	return responses, nil
}

// DeletePurchaseOrder deletes a purchase order
func (s *PurchaseOrderService) DeletePurchaseOrder(ctx context.Context, rawID string) error {
	id, err := shared.ParseID(rawID)
	if err != nil {
		return err
	}
	if _, err := s.poRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Purchase order", rawID)
		}
		return fmt.Errorf("failed to load purchase order: %w", err)
	}
	if err := s.poRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete purchase order: %w", err)
	}
	return nil
}
