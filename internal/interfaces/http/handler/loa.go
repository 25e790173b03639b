package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	procurementapp "github.com/procurement/backend/internal/application/procurement"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// LoaService is the LOA lifecycle the handler drives
type LoaService interface {
	CreateLoa(ctx context.Context, req procurementapp.CreateLoaRequest) (*procurementapp.LoaMutationResult, error)
	UpdateLoa(ctx context.Context, id string, req procurementapp.UpdateLoaRequest) (*procurementapp.LoaMutationResult, error)
	UpdateStatus(ctx context.Context, id string, req procurementapp.UpdateLoaStatusRequest) (*procurementapp.LoaResponse, error)
	DeleteLoa(ctx context.Context, id string) error
	GetLoa(ctx context.Context, id string) (*procurementapp.LoaDetailResponse, error)
	ListLoas(ctx context.Context, filter procurementapp.LoaListFilter) ([]procurementapp.LoaResponse, int64, error)
}

// FinancialSummaryService computes the billing position of an LOA
type FinancialSummaryService interface {
	GetFinancialSummary(ctx context.Context, id string, split *procurementapp.PendingSplitInput) (*procurementapp.FinancialSummaryResponse, error)
}

// LoaHandler handles LOA API endpoints
type LoaHandler struct {
	BaseHandler
	loas        LoaService
	finance     FinancialSummaryService
	maxFileSize int64
}

// NewLoaHandler creates a new LoaHandler
func NewLoaHandler(loas LoaService, finance FinancialSummaryService, maxFileSize int64) *LoaHandler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &LoaHandler{
		loas:        loas,
		finance:     finance,
		maxFileSize: maxFileSize,
	}
}

// BillingFields are the invoice fields accepted on LOA create and update.
// Supplying invoice_number, invoice_amount or bill_links creates or updates a bill.
type BillingFields struct {
	BillID          *string          `json:"bill_id"`
	InvoiceNumber   *string          `json:"invoice_number" binding:"omitempty,max=50"`
	InvoiceAmount   *decimal.Decimal `json:"invoice_amount"`
	BillLinks       *string          `json:"bill_links" binding:"omitempty,max=2000"`
	AmountReceived  *decimal.Decimal `json:"amount_received"`
	AmountDeducted  *decimal.Decimal `json:"amount_deducted"`
	DeductionReason *string          `json:"deduction_reason"`
}

func (b BillingFields) toInput(pdf *procurementapp.FileUpload) *procurementapp.BillingInput {
	input := &procurementapp.BillingInput{
		BillID:          b.BillID,
		InvoiceNumber:   b.InvoiceNumber,
		InvoiceAmount:   b.InvoiceAmount,
		BillLinks:       b.BillLinks,
		AmountReceived:  b.AmountReceived,
		AmountDeducted:  b.AmountDeducted,
		DeductionReason: b.DeductionReason,
		InvoicePdf:      pdf,
	}
	if !input.Touched() {
		return nil
	}
	return input
}

// CreateLoaRequest is the JSON body for creating an LOA. Dates accept
// YYYY-MM-DD or RFC 3339.
type CreateLoaRequest struct {
	LoaNumber       string               `json:"loa_number"`
	LoaValue        decimal.Decimal      `json:"loa_value"`
	DeliveryStart   string               `json:"delivery_start"`
	DeliveryEnd     string               `json:"delivery_end"`
	WorkDescription string               `json:"work_description"`
	SiteID          string               `json:"site_id"`
	Status          string               `json:"status" binding:"omitempty,loastatus"`
	TenderID        *string              `json:"tender_id"`
	HasEMD          *bool                `json:"has_emd"`
	EMDAmount       *decimal.Decimal     `json:"emd_amount"`
	SdFdrID         *string              `json:"sd_fdr_id"`
	PgFdrID         *string              `json:"pg_fdr_id"`
	Tags            procurement.TagInput `json:"tags"`
	Remarks         string               `json:"remarks" binding:"max=1000"`
	BillingFields
}

// UpdateLoaRequest is the JSON body for a partial LOA update. tender_id,
// emd_amount, sd_fdr_id and pg_fdr_id distinguish a missing key from null.
type UpdateLoaRequest struct {
	LoaNumber       *string                          `json:"loa_number"`
	LoaValue        *decimal.Decimal                 `json:"loa_value"`
	DeliveryStart   *string                          `json:"delivery_start"`
	DeliveryEnd     *string                          `json:"delivery_end"`
	WorkDescription *string                          `json:"work_description"`
	SiteID          *string                          `json:"site_id"`
	TenderID        shared.Optional[string]          `json:"tender_id"`
	HasEMD          *bool                            `json:"has_emd"`
	EMDAmount       shared.Optional[decimal.Decimal] `json:"emd_amount"`
	SdFdrID         shared.Optional[string]          `json:"sd_fdr_id"`
	PgFdrID         shared.Optional[string]          `json:"pg_fdr_id"`
	Tags            procurement.TagInput             `json:"tags"`
	Remarks         *string                          `json:"remarks" binding:"omitempty,max=1000"`
	RemoveDocument  bool                             `json:"remove_document"`
	BillingFields
}

// UpdateLoaStatusRequest is the body of a status change
type UpdateLoaStatusRequest struct {
	Status string `json:"status" binding:"required,loastatus"`
}

// LoaListQuery holds the LOA list filters
type LoaListQuery struct {
	dto.ListRequest
	Status   string `form:"status" binding:"omitempty,loastatus"`
	SiteID   string `form:"site_id" binding:"omitempty,uuid"`
	TenderID string `form:"tender_id" binding:"omitempty,uuid"`
	HasEMD   *bool  `form:"has_emd"`
	MinValue string `form:"min_value"`
	MaxValue string `form:"max_value"`
}

// Create handles POST /api/v1/loas (create an LOA)
// Accepts JSON, or multipart/form-data with optional "document" and "invoice_pdf" files.
// Billing fields create the LOA's first bill. Honours Idempotency-Key.
func (h *LoaHandler) Create(c *gin.Context) {
	var (
		req procurementapp.CreateLoaRequest
		err error
	)
	if isMultipart(c) {
		req, err = h.createFromForm(c)
	} else {
		req, err = h.createFromJSON(c)
	}
	if err != nil {
		h.requestError(c, err)
		return
	}

	result, err := h.loas.CreateLoa(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

func (h *LoaHandler) createFromJSON(c *gin.Context) (procurementapp.CreateLoaRequest, error) {
	var body CreateLoaRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return procurementapp.CreateLoaRequest{}, bindErr{err}
	}

	var errs shared.ValidationErrors
	req := procurementapp.CreateLoaRequest{
		LoaNumber:       body.LoaNumber,
		LoaValue:        body.LoaValue,
		DeliveryStart:   jsonDate(&errs, "delivery_start", body.DeliveryStart),
		DeliveryEnd:     jsonDate(&errs, "delivery_end", body.DeliveryEnd),
		WorkDescription: body.WorkDescription,
		SiteID:          body.SiteID,
		Status:          body.Status,
		TenderID:        body.TenderID,
		HasEMD:          body.HasEMD,
		EMDAmount:       body.EMDAmount,
		SdFdrID:         body.SdFdrID,
		PgFdrID:         body.PgFdrID,
		Tags:            body.Tags,
		Remarks:         body.Remarks,
		Billing:         body.BillingFields.toInput(nil),
	}
	return req, errs.Err("Request validation failed")
}

func (h *LoaHandler) createFromForm(c *gin.Context) (procurementapp.CreateLoaRequest, error) {
	f, err := newFormReader(c, h.maxFileSize)
	if err != nil {
		return procurementapp.CreateLoaRequest{}, bindErr{err}
	}

	req := procurementapp.CreateLoaRequest{
		LoaNumber:       f.str("loa_number"),
		WorkDescription: f.str("work_description"),
		SiteID:          f.str("site_id"),
		Status:          f.str("status"),
		TenderID:        f.nonEmpty("tender_id"),
		HasEMD:          f.boolPtr("has_emd"),
		EMDAmount:       f.decimal("emd_amount"),
		SdFdrID:         f.nonEmpty("sd_fdr_id"),
		PgFdrID:         f.nonEmpty("pg_fdr_id"),
		Tags:            f.tags("tags"),
		Remarks:         f.str("remarks"),
		Document:        f.file("document"),
	}
	if v := f.decimal("loa_value"); v != nil {
		req.LoaValue = *v
	}
	if t := f.date("delivery_start"); t != nil {
		req.DeliveryStart = *t
	}
	if t := f.date("delivery_end"); t != nil {
		req.DeliveryEnd = *t
	}
	req.Billing = formBilling(f).toInput(f.file("invoice_pdf"))
	return req, f.err()
}

// Update handles PUT /api/v1/loas/:id (update an LOA)
// Partial update; JSON or multipart/form-data. Billing fields update the LOA's
// bill selected by bill_id, or its only bill, or create one when it has none.
func (h *LoaHandler) Update(c *gin.Context) {
	var (
		req procurementapp.UpdateLoaRequest
		err error
	)
	if isMultipart(c) {
		req, err = h.updateFromForm(c)
	} else {
		req, err = h.updateFromJSON(c)
	}
	if err != nil {
		h.requestError(c, err)
		return
	}

	result, err := h.loas.UpdateLoa(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *LoaHandler) updateFromJSON(c *gin.Context) (procurementapp.UpdateLoaRequest, error) {
	var body UpdateLoaRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return procurementapp.UpdateLoaRequest{}, bindErr{err}
	}

	var errs shared.ValidationErrors
	req := procurementapp.UpdateLoaRequest{
		LoaNumber:       body.LoaNumber,
		LoaValue:        body.LoaValue,
		WorkDescription: body.WorkDescription,
		SiteID:          body.SiteID,
		TenderID:        body.TenderID,
		HasEMD:          body.HasEMD,
		EMDAmount:       body.EMDAmount,
		SdFdrID:         body.SdFdrID,
		PgFdrID:         body.PgFdrID,
		Tags:            body.Tags,
		Remarks:         body.Remarks,
		RemoveDocument:  body.RemoveDocument,
		Billing:         body.BillingFields.toInput(nil),
	}
	if body.DeliveryStart != nil {
		t := jsonDate(&errs, "delivery_start", *body.DeliveryStart)
		req.DeliveryStart = &t
	}
	if body.DeliveryEnd != nil {
		t := jsonDate(&errs, "delivery_end", *body.DeliveryEnd)
		req.DeliveryEnd = &t
	}
	return req, errs.Err("Request validation failed")
}

func (h *LoaHandler) updateFromForm(c *gin.Context) (procurementapp.UpdateLoaRequest, error) {
	f, err := newFormReader(c, h.maxFileSize)
	if err != nil {
		return procurementapp.UpdateLoaRequest{}, bindErr{err}
	}

	req := procurementapp.UpdateLoaRequest{
		LoaNumber:       f.strPtr("loa_number"),
		LoaValue:        f.decimal("loa_value"),
		DeliveryStart:   f.date("delivery_start"),
		DeliveryEnd:     f.date("delivery_end"),
		WorkDescription: f.strPtr("work_description"),
		SiteID:          f.strPtr("site_id"),
		TenderID:        f.optional("tender_id"),
		HasEMD:          f.boolPtr("has_emd"),
		EMDAmount:       f.optionalDecimal("emd_amount"),
		SdFdrID:         f.optional("sd_fdr_id"),
		PgFdrID:         f.optional("pg_fdr_id"),
		Tags:            f.tags("tags"),
		Remarks:         f.strPtr("remarks"),
		Document:        f.file("document"),
	}
	if remove := f.boolPtr("remove_document"); remove != nil {
		req.RemoveDocument = *remove
	}
	req.Billing = formBilling(f).toInput(f.file("invoice_pdf"))
	return req, f.err()
}

func formBilling(f *formReader) BillingFields {
	return BillingFields{
		BillID:          f.nonEmpty("bill_id"),
		InvoiceNumber:   f.nonEmpty("invoice_number"),
		InvoiceAmount:   f.decimal("invoice_amount"),
		BillLinks:       f.nonEmpty("bill_links"),
		AmountReceived:  f.decimal("amount_received"),
		AmountDeducted:  f.decimal("amount_deducted"),
		DeductionReason: f.nonEmpty("deduction_reason"),
	}
}

// UpdateStatus handles PATCH /api/v1/loas/:id/status (change an LOA's status)
func (h *LoaHandler) UpdateStatus(c *gin.Context) {
	var body UpdateLoaStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}

	loa, err := h.loas.UpdateStatus(c.Request.Context(), c.Param("id"), procurementapp.UpdateLoaStatusRequest{
		Status: body.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loa)
}

// Delete handles DELETE /api/v1/loas/:id (delete an LOA)
// Removes the LOA with its bills, amendments and documents. Refused while purchase orders exist.
func (h *LoaHandler) Delete(c *gin.Context) {
	if err := h.loas.DeleteLoa(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Get handles GET /api/v1/loas/:id (get an LOA with its bills, amendments and documents)
func (h *LoaHandler) Get(c *gin.Context) {
	loa, err := h.loas.GetLoa(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loa)
}

// List handles GET /api/v1/loas (list LOAs)
func (h *LoaHandler) List(c *gin.Context) {
	var q LoaListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	q.Normalize()

	var errs shared.ValidationErrors
	filter := procurementapp.LoaListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Search:   strings.TrimSpace(q.Search),
		Status:   q.Status,
		SiteID:   q.SiteID,
		TenderID: q.TenderID,
		HasEMD:   q.HasEMD,
		MinValue: queryDecimal(&errs, "min_value", q.MinValue),
		MaxValue: queryDecimal(&errs, "max_value", q.MaxValue),
	}
	if err := errs.Err("Request validation failed"); err != nil {
		h.HandleError(c, err)
		return
	}

	loas, total, err := h.loas.ListLoas(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, loas, total, q.Page, q.PageSize)
}

// FinancialSummary handles GET /api/v1/loas/:id/financial-summary (billing position of an LOA)
// Invoice totals, unbilled value and overpaid bills. Supplying both
// recoverable_pending and payment_pending also validates that split.
func (h *LoaHandler) FinancialSummary(c *gin.Context) {
	var errs shared.ValidationErrors
	recoverable := queryDecimal(&errs, "recoverable_pending", c.Query("recoverable_pending"))
	payment := queryDecimal(&errs, "payment_pending", c.Query("payment_pending"))
	if (recoverable == nil) != (payment == nil) && !errs.HasErrors() {
		errs.Add("pending_split", "recoverable_pending and payment_pending must be supplied together")
	}
	if err := errs.Err("Request validation failed"); err != nil {
		h.HandleError(c, err)
		return
	}

	var split *procurementapp.PendingSplitInput
	if recoverable != nil {
		split = &procurementapp.PendingSplitInput{
			RecoverablePending: *recoverable,
			PaymentPending:     *payment,
		}
	}

	summary, err := h.finance.GetFinancialSummary(c.Request.Context(), c.Param("id"), split)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

func jsonDate(errs *shared.ValidationErrors, field, raw string) time.Time {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}
	}
	t, err := parseDate(raw)
	if err != nil {
		errs.Add(field, "must be a date (YYYY-MM-DD or RFC 3339)")
	}
	return t
}

func queryDecimal(errs *shared.ValidationErrors, field, raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		errs.Add(field, "must be a number")
		return nil
	}
	return &d
}
