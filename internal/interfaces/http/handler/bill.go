package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	procurementapp "github.com/procurement/backend/internal/application/procurement"
	"github.com/shopspring/decimal"
)

// BillService is the bill ledger the handler drives
type BillService interface {
	CreateBill(ctx context.Context, loaID string, req procurementapp.CreateBillRequest) (*procurementapp.BillResponse, error)
	UpdateBill(ctx context.Context, id string, req procurementapp.UpdateBillRequest) (*procurementapp.BillResponse, error)
	GetBill(ctx context.Context, id string) (*procurementapp.BillResponse, error)
	GetBillsByLoaID(ctx context.Context, loaID string) ([]procurementapp.BillResponse, error)
	DeleteBill(ctx context.Context, id string) error
}

// BillHandler handles bill API endpoints
type BillHandler struct {
	BaseHandler
	bills       BillService
	maxFileSize int64
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(bills BillService, maxFileSize int64) *BillHandler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &BillHandler{bills: bills, maxFileSize: maxFileSize}
}

// CreateBillRequest is the JSON body for a new bill.
// Received and deducted amounts default to zero.
type CreateBillRequest struct {
	InvoiceNumber   string           `json:"invoice_number" binding:"max=50"`
	InvoiceAmount   *decimal.Decimal `json:"invoice_amount" binding:"required"`
	AmountReceived  *decimal.Decimal `json:"amount_received"`
	AmountDeducted  *decimal.Decimal `json:"amount_deducted"`
	DeductionReason string           `json:"deduction_reason"`
	BillLinks       string           `json:"bill_links" binding:"max=2000"`
	Remarks         string           `json:"remarks" binding:"max=1000"`
	Status          string           `json:"status" binding:"omitempty,billstatus"`
}

// UpdateBillRequest is the JSON body for a partial bill update
type UpdateBillRequest struct {
	InvoiceNumber   *string          `json:"invoice_number" binding:"omitempty,max=50"`
	InvoiceAmount   *decimal.Decimal `json:"invoice_amount"`
	AmountReceived  *decimal.Decimal `json:"amount_received"`
	AmountDeducted  *decimal.Decimal `json:"amount_deducted"`
	DeductionReason *string          `json:"deduction_reason"`
	BillLinks       *string          `json:"bill_links" binding:"omitempty,max=2000"`
	Remarks         *string          `json:"remarks" binding:"omitempty,max=1000"`
	Status          *string          `json:"status" binding:"omitempty,billstatus"`
}

// Create handles POST /api/v1/loas/:id/bills (register a bill against an LOA)
// JSON, or multipart/form-data with an optional "invoice_pdf" file
func (h *BillHandler) Create(c *gin.Context) {
	var req procurementapp.CreateBillRequest
	if isMultipart(c) {
		f, err := newFormReader(c, h.maxFileSize)
		if err != nil {
			h.requestError(c, bindErr{err})
			return
		}
		req = procurementapp.CreateBillRequest{
			InvoiceNumber:   f.str("invoice_number"),
			InvoiceAmount:   f.decimal("invoice_amount"),
			AmountReceived:  f.decimal("amount_received"),
			AmountDeducted:  f.decimal("amount_deducted"),
			DeductionReason: f.str("deduction_reason"),
			BillLinks:       f.str("bill_links"),
			Remarks:         f.str("remarks"),
			Status:          f.str("status"),
			InvoicePdf:      f.file("invoice_pdf"),
		}
		if req.InvoiceAmount == nil && !f.errs.Has("invoice_amount") {
			f.errs.Add("invoice_amount", "This field is required")
		}
		if err := f.err(); err != nil {
			h.HandleError(c, err)
			return
		}
	} else {
		var body CreateBillRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			h.BindError(c, err)
			return
		}
		req = procurementapp.CreateBillRequest{
			InvoiceNumber:   body.InvoiceNumber,
			InvoiceAmount:   body.InvoiceAmount,
			AmountReceived:  body.AmountReceived,
			AmountDeducted:  body.AmountDeducted,
			DeductionReason: body.DeductionReason,
			BillLinks:       body.BillLinks,
			Remarks:         body.Remarks,
			Status:          body.Status,
		}
	}

	bill, err := h.bills.CreateBill(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// Update handles PUT /api/v1/bills/:id (update a bill)
// Fields are merged over the stored bill and the result is validated as a whole.
// The invoice PDF is replaced only when a new "invoice_pdf" file is sent.
func (h *BillHandler) Update(c *gin.Context) {
	var req procurementapp.UpdateBillRequest
	if isMultipart(c) {
		f, err := newFormReader(c, h.maxFileSize)
		if err != nil {
			h.requestError(c, bindErr{err})
			return
		}
		req = procurementapp.UpdateBillRequest{
			InvoiceNumber:   f.strPtr("invoice_number"),
			InvoiceAmount:   f.decimal("invoice_amount"),
			AmountReceived:  f.decimal("amount_received"),
			AmountDeducted:  f.decimal("amount_deducted"),
			DeductionReason: f.strPtr("deduction_reason"),
			BillLinks:       f.strPtr("bill_links"),
			Remarks:         f.strPtr("remarks"),
			Status:          f.nonEmpty("status"),
			InvoicePdf:      f.file("invoice_pdf"),
		}
		if err := f.err(); err != nil {
			h.HandleError(c, err)
			return
		}
	} else {
		var body UpdateBillRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			h.BindError(c, err)
			return
		}
		req = procurementapp.UpdateBillRequest{
			InvoiceNumber:   body.InvoiceNumber,
			InvoiceAmount:   body.InvoiceAmount,
			AmountReceived:  body.AmountReceived,
			AmountDeducted:  body.AmountDeducted,
			DeductionReason: body.DeductionReason,
			BillLinks:       body.BillLinks,
			Remarks:         body.Remarks,
			Status:          body.Status,
		}
	}

	bill, err := h.bills.UpdateBill(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// Get handles GET /api/v1/bills/:id (get a bill)
func (h *BillHandler) Get(c *gin.Context) {
	bill, err := h.bills.GetBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// ListByLoa returns the bills of an LOA, newest first
func (h *BillHandler) ListByLoa(c *gin.Context) {
	bills, err := h.bills.GetBillsByLoaID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bills)
}

// Delete removes a bill. The LOA is not affected.
func (h *BillHandler) Delete(c *gin.Context) {
	if err := h.bills.DeleteBill(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
