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

// OtherDocumentService handles supporting documents filed against an LOA
type OtherDocumentService struct {
	loaRepo      procurement.LoaRepository
	documentRepo procurement.OtherDocumentRepository
	docs         documentUploader
	logger       *zap.Logger
}

// NewOtherDocumentService creates a new OtherDocumentService
func NewOtherDocumentService(
	loaRepo procurement.LoaRepository,
	documentRepo procurement.OtherDocumentRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *OtherDocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OtherDocumentService{
		loaRepo:      loaRepo,
		documentRepo: documentRepo,
		docs:         documentUploader{storage: storage, logger: logger},
		logger:       logger,
	}
}

// SetMetrics enables upload metrics
func (s *OtherDocumentService) SetMetrics(m *telemetry.ProcurementMetrics) {
	s.docs.metrics = m
}

// CreateDocument uploads a file and records it against an LOA. The title is
// checked before anything is uploaded.
func (s *OtherDocumentService) CreateDocument(ctx context.Context, rawLoaID string, req CreateOtherDocumentRequest) (*OtherDocumentResponse, error) {
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

	// validate with a placeholder so title errors surface before the upload
	placeholder := ""
	if req.Document != nil {
		placeholder = req.Document.Filename
	}
	if _, err := procurement.NewOtherDocument(loaID, req.Title, placeholder); err != nil {
		return nil, err
	}

	comp := s.docs.compensator()
	url, err := s.docs.upload(ctx, comp, loaID, DocumentKindSupporting, req.Document)
	if err != nil {
		return nil, err
	}
	doc, err := procurement.NewOtherDocument(loaID, req.Title, url)
	if err != nil {
		comp.Compensate(ctx)
		return nil, err
	}

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		comp.Compensate(ctx)
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	response := ToOtherDocumentResponse(doc)
	return &response, nil
}

// UpdateDocument retitles a document or replaces its file
func (s *OtherDocumentService) UpdateDocument(ctx context.Context, rawID string, req UpdateOtherDocumentRequest) (*OtherDocumentResponse, error) {
	doc, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if err := doc.Retitle(*req.Title); err != nil {
			return nil, err
		}
	}

	comp := s.docs.compensator()
	var replaced *string
	if req.Document != nil {
		url, err := s.docs.upload(ctx, comp, doc.LoaID, DocumentKindSupporting, req.Document)
		if err != nil {
			return nil, err
		}
		previous := doc.ReplaceDocument(url)
		replaced = &previous
	}

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		comp.Compensate(ctx)
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	s.docs.discard(ctx, replaced)

	response := ToOtherDocumentResponse(doc)
	return &response, nil
}

// GetDocument returns one supporting document
func (s *OtherDocumentService) GetDocument(ctx context.Context, rawID string) (*OtherDocumentResponse, error) {
	doc, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	response := ToOtherDocumentResponse(doc)
	return &response, nil
}

// ListDocuments returns the supporting documents of an LOA
func (s *OtherDocumentService) ListDocuments(ctx context.Context, rawLoaID string) ([]OtherDocumentResponse, error) {
	loaID, err := shared.ParseID(rawLoaID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documentRepo.FindByLoaID(ctx, loaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return ToOtherDocumentResponses(docs), nil
}

// DeleteDocument deletes a supporting document and its stored file
func (s *OtherDocumentService) DeleteDocument(ctx context.Context, rawID string) error {
	doc, err := s.find(ctx, rawID)
	if err != nil {
		return err
	}
	if err := s.documentRepo.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	url := doc.DocumentURL
	s.docs.discard(ctx, &url)
	return nil
}

func (s *OtherDocumentService) find(ctx context.Context, rawID string) (*procurement.OtherDocument, error) {
	id, err := shared.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	doc, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Document", rawID)
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return doc, nil
}
