package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	procurementapp "github.com/procurement/backend/internal/application/procurement"
	"github.com/procurement/backend/internal/domain/procurement"
)

// AmendmentService manages LOA amendments
type AmendmentService interface {
	CreateAmendment(ctx context.Context, loaID string, req procurementapp.CreateAmendmentRequest) (*procurementapp.AmendmentResponse, error)
	UpdateAmendment(ctx context.Context, id string, req procurementapp.UpdateAmendmentRequest) (*procurementapp.AmendmentResponse, error)
	GetAmendment(ctx context.Context, id string) (*procurementapp.AmendmentResponse, error)
	ListAmendments(ctx context.Context, loaID string) ([]procurementapp.AmendmentResponse, error)
	DeleteAmendment(ctx context.Context, id string) error
}

// AmendmentHandler handles amendment API endpoints
type AmendmentHandler struct {
	BaseHandler
	amendments  AmendmentService
	maxFileSize int64
}

// NewAmendmentHandler creates a new AmendmentHandler
func NewAmendmentHandler(amendments AmendmentService, maxFileSize int64) *AmendmentHandler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &AmendmentHandler{amendments: amendments, maxFileSize: maxFileSize}
}

// AmendmentRequest is the JSON body for creating or updating an amendment
type AmendmentRequest struct {
	AmendmentNumber *string              `json:"amendment_number"`
	Tags            procurement.TagInput `json:"tags"`
}

func (h *AmendmentHandler) read(c *gin.Context) (AmendmentRequest, *procurementapp.FileUpload, error) {
	if !isMultipart(c) {
		var body AmendmentRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			return body, nil, bindErr{err}
		}
		return body, nil, nil
	}

	f, err := newFormReader(c, h.maxFileSize)
	if err != nil {
		return AmendmentRequest{}, nil, bindErr{err}
	}
	body := AmendmentRequest{
		AmendmentNumber: f.strPtr("amendment_number"),
		Tags:            f.tags("tags"),
	}
	doc := f.file("document")
	return body, doc, f.err()
}

// Create adds an amendment to an LOA, with an optional "document" file
func (h *AmendmentHandler) Create(c *gin.Context) {
	body, doc, err := h.read(c)
	if err != nil {
		h.requestError(c, err)
		return
	}

	req := procurementapp.CreateAmendmentRequest{Tags: body.Tags, Document: doc}
	if body.AmendmentNumber != nil {
		req.AmendmentNumber = *body.AmendmentNumber
	}
	amendment, err := h.amendments.CreateAmendment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, amendment)
}

// Update changes an amendment's number, tags or document
func (h *AmendmentHandler) Update(c *gin.Context) {
	body, doc, err := h.read(c)
	if err != nil {
		h.requestError(c, err)
		return
	}

	amendment, err := h.amendments.UpdateAmendment(c.Request.Context(), c.Param("id"), procurementapp.UpdateAmendmentRequest{
		AmendmentNumber: body.AmendmentNumber,
		Tags:            body.Tags,
		Document:        doc,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, amendment)
}

// Get returns one amendment
func (h *AmendmentHandler) Get(c *gin.Context) {
	amendment, err := h.amendments.GetAmendment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, amendment)
}

// ListByLoa returns the amendments of an LOA
func (h *AmendmentHandler) ListByLoa(c *gin.Context) {
	amendments, err := h.amendments.ListAmendments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, amendments)
}

// Delete removes an amendment and its stored document
func (h *AmendmentHandler) Delete(c *gin.Context) {
	if err := h.amendments.DeleteAmendment(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
