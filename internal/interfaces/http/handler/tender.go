package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	procurementapp "github.com/procurement/backend/internal/application/procurement"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// TenderService manages tenders
type TenderService interface {
	CreateTender(ctx context.Context, req procurementapp.CreateTenderRequest) (*procurementapp.TenderResponse, error)
	GetTender(ctx context.Context, id string) (*procurementapp.TenderResponse, error)
	ListTenders(ctx context.Context, filter procurementapp.TenderListFilter) ([]procurementapp.TenderResponse, int64, error)
	DeleteTender(ctx context.Context, id string) error
}

// TenderHandler handles tender API endpoints
type TenderHandler struct {
	BaseHandler
	tenders TenderService
}

// NewTenderHandler creates a new TenderHandler
func NewTenderHandler(tenders TenderService) *TenderHandler {
	return &TenderHandler{tenders: tenders}
}

// CreateTenderRequest is the JSON body for registering a tender
type CreateTenderRequest struct {
	TenderNumber string               `json:"tender_number" binding:"required,max=50"`
	Description  string               `json:"description" binding:"max=1000"`
	HasEMD       bool                 `json:"has_emd"`
	EMDAmount    *decimal.Decimal     `json:"emd_amount"`
	DueDate      *string              `json:"due_date"`
	Tags         procurement.TagInput `json:"tags"`
}

// TenderListQuery holds the tender list filters
type TenderListQuery struct {
	dto.ListRequest
	Status string `form:"status"`
}

// Create registers a tender
func (h *TenderHandler) Create(c *gin.Context) {
	var body CreateTenderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}

	req := procurementapp.CreateTenderRequest{
		TenderNumber: body.TenderNumber,
		Description:  body.Description,
		HasEMD:       body.HasEMD,
		EMDAmount:    body.EMDAmount,
		Tags:         body.Tags,
	}
	if body.DueDate != nil && strings.TrimSpace(*body.DueDate) != "" {
		var errs shared.ValidationErrors
		due := jsonDate(&errs, "due_date", *body.DueDate)
		if err := errs.Err("Request validation failed"); err != nil {
			h.HandleError(c, err)
			return
		}
		req.DueDate = &due
	}

	tender, err := h.tenders.CreateTender(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tender)
}

// Get returns one tender
func (h *TenderHandler) Get(c *gin.Context) {
	tender, err := h.tenders.GetTender(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tender)
}

// List returns a page of tenders
func (h *TenderHandler) List(c *gin.Context) {
	var q TenderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	q.Normalize()

	tenders, total, err := h.tenders.ListTenders(c.Request.Context(), procurementapp.TenderListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Search:   strings.TrimSpace(q.Search),
		Status:   q.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, tenders, total, q.Page, q.PageSize)
}

// Delete removes a tender. Tenders referenced by an LOA cannot be deleted.
func (h *TenderHandler) Delete(c *gin.Context) {
	if err := h.tenders.DeleteTender(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

