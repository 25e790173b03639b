package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	procurementapp "github.com/procurement/backend/internal/application/procurement"
	"github.com/procurement/backend/internal/interfaces/http/dto"
)

// OtherDocumentService manages supporting documents filed against an LOA
type OtherDocumentService interface {
	CreateDocument(ctx context.Context, loaID string, req procurementapp.CreateOtherDocumentRequest) (*procurementapp.OtherDocumentResponse, error)
	UpdateDocument(ctx context.Context, id string, req procurementapp.UpdateOtherDocumentRequest) (*procurementapp.OtherDocumentResponse, error)
	GetDocument(ctx context.Context, id string) (*procurementapp.OtherDocumentResponse, error)
	ListDocuments(ctx context.Context, loaID string) ([]procurementapp.OtherDocumentResponse, error)
	DeleteDocument(ctx context.Context, id string) error
}

// OtherDocumentHandler handles supporting document endpoints. Every request
// carrying a file is multipart/form-data with a "document" part.
type OtherDocumentHandler struct {
	BaseHandler
	documents   OtherDocumentService
	maxFileSize int64
}

// NewOtherDocumentHandler creates a new OtherDocumentHandler
func NewOtherDocumentHandler(documents OtherDocumentService, maxFileSize int64) *OtherDocumentHandler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &OtherDocumentHandler{documents: documents, maxFileSize: maxFileSize}
}

// UpdateOtherDocumentRequest is the JSON body for renaming a document
type UpdateOtherDocumentRequest struct {
	Title *string `json:"title"`
}

// Create handles POST /api/v1/loas/:id/documents (file a supporting document against an LOA)
func (h *OtherDocumentHandler) Create(c *gin.Context) {
	if !isMultipart(c) {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeBadRequest, "Expected multipart/form-data with a document file")
		return
	}
	f, err := newFormReader(c, h.maxFileSize)
	if err != nil {
		h.requestError(c, bindErr{err})
		return
	}
	req := procurementapp.CreateOtherDocumentRequest{
		Title:    f.str("title"),
		Document: f.file("document"),
	}
	if err := f.err(); err != nil {
		h.HandleError(c, err)
		return
	}

	doc, err := h.documents.CreateDocument(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// Update renames a document or replaces its file
func (h *OtherDocumentHandler) Update(c *gin.Context) {
	var req procurementapp.UpdateOtherDocumentRequest
	if isMultipart(c) {
		f, err := newFormReader(c, h.maxFileSize)
		if err != nil {
			h.requestError(c, bindErr{err})
			return
		}
		req.Title = f.strPtr("title")
		req.Document = f.file("document")
		if err := f.err(); err != nil {
			h.HandleError(c, err)
			return
		}
	} else {
		var body UpdateOtherDocumentRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			h.BindError(c, err)
			return
		}
		req.Title = body.Title
	}

	doc, err := h.documents.UpdateDocument(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Get returns one document
func (h *OtherDocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// ListByLoa returns the documents filed against an LOA
func (h *OtherDocumentHandler) ListByLoa(c *gin.Context) {
	docs, err := h.documents.ListDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, docs)
}

// Delete removes a document and its stored file
func (h *OtherDocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
