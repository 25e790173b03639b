package procurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AmendmentService handles amendments filed against an LOA
type AmendmentService struct {
	loaRepo       procurement.LoaRepository
	amendmentRepo procurement.AmendmentRepository
	docs          documentUploader
	logger        *zap.Logger
}

// NewAmendmentService creates a new AmendmentService
func NewAmendmentService(
	loaRepo procurement.LoaRepository,
	amendmentRepo procurement.AmendmentRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *AmendmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmendmentService{
		loaRepo:       loaRepo,
		amendmentRepo: amendmentRepo,
		docs:          documentUploader{storage: storage, logger: logger},
		logger:        logger,
	}
}

// SetMetrics enables upload metrics
func (s *AmendmentService) SetMetrics(m *telemetry.ProcurementMetrics) {
	s.docs.metrics = m
}

// CreateAmendment adds an amendment to an LOA
func (s *AmendmentService) CreateAmendment(ctx context.Context, rawLoaID string, req CreateAmendmentRequest) (*AmendmentResponse, error) {
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

	amendment, err := procurement.NewAmendment(loaID, req.AmendmentNumber)
	if err != nil {
		return nil, err
	}
	tags, warning := procurement.NormalizeTags(req.Tags)
	amendment.SetTags(tags)

	comp := s.docs.compensator()
	if req.Document != nil {
		url, err := s.docs.upload(ctx, comp, loaID, DocumentKindAmendment, req.Document)
		if err != nil {
			return nil, err
		}
		amendment.ReplaceDocument(url)
	}

	if err := s.amendmentRepo.Save(ctx, amendment); err != nil {
		comp.Compensate(ctx)
		return nil, fmt.Errorf("failed to save amendment: %w", err)
	}

	response := ToAmendmentResponse(amendment)
	if warning != nil {
		response.Warnings = []string{warning.Message()}
	}
	return &response, nil
}

// UpdateAmendment renames an amendment, replaces its tags or its document
func (s *AmendmentService) UpdateAmendment(ctx context.Context, rawID string, req UpdateAmendmentRequest) (*AmendmentResponse, error) {
	amendment, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}

	if req.AmendmentNumber != nil {
		if err := amendment.Rename(*req.AmendmentNumber); err != nil {
			return nil, err
		}
	}
	var warning *procurement.TagsDecodeWarning
	if req.Tags.IsSet() {
		var tags []string
		tags, warning = procurement.NormalizeTags(req.Tags)
		amendment.SetTags(tags)
	}

	comp := s.docs.compensator()
	var replaced *string
	if req.Document != nil {
		url, err := s.docs.upload(ctx, comp, amendment.LoaID, DocumentKindAmendment, req.Document)
		if err != nil {
			return nil, err
		}
		replaced = amendment.ReplaceDocument(url)
	}

	if err := s.amendmentRepo.Save(ctx, amendment); err != nil {
		comp.Compensate(ctx)
		return nil, fmt.Errorf("failed to save amendment: %w", err)
	}
	s.docs.discard(ctx, replaced)

	response := ToAmendmentResponse(amendment)
	if warning != nil {
		response.Warnings = []string{warning.Message()}
	}
	return &response, nil
}

// GetAmendment returns one amendment
func (s *AmendmentService) GetAmendment(ctx context.Context, rawID string) (*AmendmentResponse, error) {
	amendment, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	response := ToAmendmentResponse(amendment)
	return &response, nil
}

// ListAmendments returns the amendments of an LOA
func (s *AmendmentService) ListAmendments(ctx context.Context, rawLoaID string) ([]AmendmentResponse, error) {
	loaID, err := shared.ParseID(rawLoaID)
	if err != nil {
		return nil, err
	}
	amendments, err := s.amendmentRepo.FindByLoaID(ctx, loaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list amendments: %w", err)
	}
	return ToAmendmentResponses(amendments), nil
}

// DeleteAmendment deletes an amendment and its stored document
func (s *AmendmentService) DeleteAmendment(ctx context.Context, rawID string) error {
	amendment, err := s.find(ctx, rawID)
	if err != nil {
		return err
	}
	if err := s.amendmentRepo.Delete(ctx, amendment.ID); err != nil {
		return fmt.Errorf("failed to delete amendment: %w", err)
	}
	s.docs.discard(ctx, amendment.DocumentURL)
	return nil
}

func (s *AmendmentService) find(ctx context.Context, rawID string) (*procurement.Amendment, error) {
	id, err := shared.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	amendment, err := s.amendmentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Amendment", rawID)
		}
		return nil, fmt.Errorf("failed to load amendment: %w", err)
	}
	return amendment, nil
}
