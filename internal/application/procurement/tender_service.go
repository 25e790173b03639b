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

// TenderService manages the tenders LOAs are awarded from
type TenderService struct {
	tenderRepo procurement.TenderRepository
	loaRepo    procurement.LoaRepository
	logger     *zap.Logger
}

// NewTenderService creates a new TenderService
func NewTenderService(tenderRepo procurement.TenderRepository, loaRepo procurement.LoaRepository, logger *zap.Logger) *TenderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenderService{
		tenderRepo: tenderRepo,
		loaRepo:    loaRepo,
		logger:     logger,
	}
}

// CreateTender registers a tender. Tender numbers are unique.
func (s *TenderService) CreateTender(ctx context.Context, req CreateTenderRequest) (*TenderResponse, error) {
	tender, err := procurement.NewTender(req.TenderNumber, req.Description, req.HasEMD, req.EMDAmount)
	if err != nil {
		return nil, err
	}
	tender.DueDate = req.DueDate

	exists, err := s.tenderRepo.ExistsByTenderNumber(ctx, tender.TenderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check tender number: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "tender number already exists: "+tender.TenderNumber)
	}

	tags, warning := procurement.NormalizeTags(req.Tags)
	tender.Tags = tags

	if err := s.tenderRepo.Save(ctx, tender); err != nil {
		return nil, fmt.Errorf("failed to save tender: %w", err)
	}
	s.logger.Info("Tender created", zap.String("tender_id", tender.ID.String()), zap.String("tender_number", tender.TenderNumber))

	response := ToTenderResponse(tender)
	if warning != nil {
		response.Warnings = []string{warning.Message()}
	}
	return &response, nil
}

// GetTender returns one tender
func (s *TenderService) GetTender(ctx context.Context, rawID string) (*TenderResponse, error) {
	id, err := shared.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	tender, err := s.tenderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Tender", rawID)
		}
		return nil, fmt.Errorf("failed to load tender: %w", err)
	}
	response := ToTenderResponse(tender)
	return &response, nil
}

// ListTenders returns one page of tenders and the total match count
func (s *TenderService) ListTenders(ctx context.Context, filter TenderListFilter) ([]TenderResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = strings.TrimSpace(filter.Search)
	if filter.Status != "" {
		status := procurement.TenderStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewFieldValidationError("status", "invalid status: "+filter.Status)
		}
		domainFilter.Filters["status"] = string(status)
	}

	tenders, err := s.tenderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tenders: %w", err)
	}
	total, err := s.tenderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tenders: %w", err)
	}

	responses := make([]TenderResponse, len(tenders))
	for i := range tenders {
		responses[i] = ToTenderResponse(&tenders[i])
	}
	return responses, total, nil
}

// DeleteTender deletes a tender no LOA refers to
func (s *TenderService) DeleteTender(ctx context.Context, rawID string) error {
	id, err := shared.ParseID(rawID)
	if err != nil {
		return err
	}
	if _, err := s.tenderRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Tender", rawID)
		}
		return fmt.Errorf("failed to load tender: %w", err)
	}

	count, err := s.loaRepo.CountByTenderID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count LOAs for tender: %w", err)
	}
	if count > 0 {
		return shared.NewConflictError(fmt.Sprintf("tender is referenced by %d LOA(s)", count))
	}

	if err := s.tenderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tender: %w", err)
	}
	return nil
}
