package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ==================== LOA DTOs ====================

// BillingInput carries the billing shortcut fields accepted on LOA create and update
type BillingInput struct {
	// BillID selects the bill to update when the LOA has more than one (update only)
	BillID          *string
	InvoiceNumber   *string
	InvoiceAmount   *decimal.Decimal
	BillLinks       *string
	AmountReceived  *decimal.Decimal
	AmountDeducted  *decimal.Decimal
	DeductionReason *string
	InvoicePdf      *FileUpload
}

// Present reports whether any field that triggers bill creation was supplied
func (b *BillingInput) Present() bool {
	if b == nil {
		return false
	}
	return b.InvoiceNumber != nil || b.InvoiceAmount != nil || b.BillLinks != nil
}

// Touched reports whether any billing field at all was supplied
func (b *BillingInput) Touched() bool {
	if b == nil {
		return false
	}
	return b.Present() || b.BillID != nil || b.AmountReceived != nil || b.AmountDeducted != nil ||
		b.DeductionReason != nil || b.InvoicePdf != nil
}

// CreateLoaRequest represents a request to create an LOA.
// Identifiers arrive as text so that malformed ones are reported with the other field errors.
type CreateLoaRequest struct {
	LoaNumber       string
	LoaValue        decimal.Decimal
	DeliveryStart   time.Time
	DeliveryEnd     time.Time
	WorkDescription string
	SiteID          string
	Status          string
	TenderID        *string
	HasEMD          *bool
	EMDAmount       *decimal.Decimal
	SdFdrID         *string
	PgFdrID         *string
	Tags            procurement.TagInput
	Remarks         string
	Document        *FileUpload
	Billing         *BillingInput
}

// UpdateLoaRequest represents a partial update of an LOA. Nil pointers and
// unset Optionals leave the stored value untouched; an Optional set to null clears it.
type UpdateLoaRequest struct {
	LoaNumber       *string
	LoaValue        *decimal.Decimal
	DeliveryStart   *time.Time
	DeliveryEnd     *time.Time
	WorkDescription *string
	SiteID          *string
	TenderID        shared.Optional[string]
	HasEMD          *bool
	EMDAmount       shared.Optional[decimal.Decimal]
	SdFdrID         shared.Optional[string]
	PgFdrID         shared.Optional[string]
	Tags            procurement.TagInput
	Remarks         *string
	Document        *FileUpload
	RemoveDocument  bool
	Billing         *BillingInput
}

// LoaListFilter represents filter options for listing LOAs
type LoaListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Status   string
	SiteID   string
	TenderID string
	HasEMD   *bool
	MinValue *decimal.Decimal
	MaxValue *decimal.Decimal
}

// LoaResponse represents an LOA in API responses
type LoaResponse struct {
	ID              uuid.UUID        `json:"id"`
	LoaNumber       string           `json:"loa_number"`
	LoaValue        decimal.Decimal  `json:"loa_value"`
	DeliveryStart   time.Time        `json:"delivery_start"`
	DeliveryEnd     time.Time        `json:"delivery_end"`
	WorkDescription string           `json:"work_description"`
	SiteID          uuid.UUID        `json:"site_id"`
	Status          string           `json:"status"`
	HasEMD          bool             `json:"has_emd"`
	EMDAmount       *decimal.Decimal `json:"emd_amount"`
	SdFdrID         *uuid.UUID       `json:"sd_fdr_id"`
	PgFdrID         *uuid.UUID       `json:"pg_fdr_id"`
	TenderID        *uuid.UUID       `json:"tender_id"`
	DocumentURL     *string          `json:"document_url"`
	Tags            []string         `json:"tags"`
	Remarks         string           `json:"remarks,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// LoaDetailResponse is an LOA with its sub-resources and invoice totals
type LoaDetailResponse struct {
	LoaResponse
	Bills              []BillResponse            `json:"bills"`
	Amendments         []AmendmentResponse       `json:"amendments"`
	OtherDocuments     []OtherDocumentResponse   `json:"other_documents"`
	PurchaseOrderCount int64                     `json:"purchase_order_count"`
	InvoiceTotals      procurement.InvoiceTotals `json:"invoice_totals"`
}

// LoaMutationResult is returned from LOA create and update. Warnings carries
// non-fatal problems such as tags that could not be decoded.
type LoaMutationResult struct {
	Loa      LoaResponse   `json:"loa"`
	Bill     *BillResponse `json:"bill,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// UpdateLoaStatusRequest represents a status change
type UpdateLoaStatusRequest struct {
	Status string
}

// ToLoaResponse converts a domain LOA to a response
func ToLoaResponse(l *procurement.LOA) LoaResponse {
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	return LoaResponse{
		ID:              l.ID,
		LoaNumber:       l.LoaNumber,
		LoaValue:        l.LoaValue,
		DeliveryStart:   l.DeliveryPeriod.Start,
		DeliveryEnd:     l.DeliveryPeriod.End,
		WorkDescription: l.WorkDescription,
		SiteID:          l.SiteID,
		Status:          string(l.Status),
		HasEMD:          l.HasEMD,
		EMDAmount:       l.EMDAmount,
		SdFdrID:         l.SdFdrID,
		PgFdrID:         l.PgFdrID,
		TenderID:        l.TenderID,
		DocumentURL:     l.DocumentURL,
		Tags:            tags,
		Remarks:         l.Remarks,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// ToLoaResponses converts a slice of LOAs
func ToLoaResponses(loas []procurement.LOA) []LoaResponse {
	responses := make([]LoaResponse, len(loas))
	for i := range loas {
		responses[i] = ToLoaResponse(&loas[i])
	}
	return responses
}

// ==================== Bill DTOs ====================

// CreateBillRequest represents a request to create a bill. Nil received and
// deducted amounts default to zero; an empty status defaults to REGISTERED.
type CreateBillRequest struct {
	InvoiceNumber   string
	InvoiceAmount   *decimal.Decimal
	AmountReceived  *decimal.Decimal
	AmountDeducted  *decimal.Decimal
	DeductionReason string
	BillLinks       string
	Remarks         string
	Status          string
	InvoicePdf      *FileUpload
}

// UpdateBillRequest represents a partial bill update. Fields are merged over
// the stored bill before validation.
type UpdateBillRequest struct {
	InvoiceNumber   *string
	InvoiceAmount   *decimal.Decimal
	AmountReceived  *decimal.Decimal
	AmountDeducted  *decimal.Decimal
	DeductionReason *string
	BillLinks       *string
	Remarks         *string
	Status          *string
	InvoicePdf      *FileUpload
}

// BillResponse represents a bill in API responses. AmountPending is derived.
type BillResponse struct {
	ID              uuid.UUID       `json:"id"`
	LoaID           uuid.UUID       `json:"loa_id"`
	InvoiceNumber   string          `json:"invoice_number"`
	InvoiceAmount   decimal.Decimal `json:"invoice_amount"`
	AmountReceived  decimal.Decimal `json:"amount_received"`
	AmountDeducted  decimal.Decimal `json:"amount_deducted"`
	AmountPending   decimal.Decimal `json:"amount_pending"`
	IsOverpaid      bool            `json:"is_overpaid"`
	DeductionReason string          `json:"deduction_reason,omitempty"`
	BillLinks       string          `json:"bill_links,omitempty"`
	Remarks         string          `json:"remarks,omitempty"`
	Status          string          `json:"status"`
	InvoicePdfURL   *string         `json:"invoice_pdf_url"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToBillResponse converts a domain bill to a response, recomputing its pending amount
func ToBillResponse(b *procurement.Bill) BillResponse {
	return BillResponse{
		ID:              b.ID,
		LoaID:           b.LoaID,
		InvoiceNumber:   b.InvoiceNumber,
		InvoiceAmount:   b.InvoiceAmount,
		AmountReceived:  b.AmountReceived,
		AmountDeducted:  b.AmountDeducted,
		AmountPending:   b.AmountPending(),
		IsOverpaid:      b.IsOverpaid(),
		DeductionReason: b.DeductionReason,
		BillLinks:       b.BillLinks,
		Remarks:         b.Remarks,
		Status:          string(b.Status),
		InvoicePdfURL:   b.InvoicePdfURL,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// ToBillResponses converts a slice of bills
func ToBillResponses(bills []procurement.Bill) []BillResponse {
	responses := make([]BillResponse, len(bills))
	for i := range bills {
		responses[i] = ToBillResponse(&bills[i])
	}
	return responses
}

// ==================== Financial DTOs ====================

// PendingSplitInput is an optional breakdown of the pending total supplied by the caller
type PendingSplitInput struct {
	RecoverablePending decimal.Decimal
	PaymentPending     decimal.Decimal
}

// PendingSplitResponse reports a pending split and its percentages
type PendingSplitResponse struct {
	RecoverablePending decimal.Decimal                `json:"recoverable_pending"`
	PaymentPending     decimal.Decimal                `json:"payment_pending"`
	Percentages        procurement.PendingPercentages `json:"percentages"`
	Valid              bool                           `json:"valid"`
	Error              string                         `json:"error,omitempty"`
}

// FinancialSummaryResponse summarises the billing position of one LOA
type FinancialSummaryResponse struct {
	LoaID         uuid.UUID                 `json:"loa_id"`
	LoaValue      decimal.Decimal           `json:"loa_value"`
	Totals        procurement.InvoiceTotals `json:"totals"`
	UnbilledValue decimal.Decimal           `json:"unbilled_value"`
	BillCount     int                       `json:"bill_count"`
	OverpaidBills []BillResponse            `json:"overpaid_bills"`
	PendingSplit  *PendingSplitResponse     `json:"pending_split,omitempty"`
}

// ==================== Amendment DTOs ====================

// CreateAmendmentRequest represents a request to add an amendment to an LOA
type CreateAmendmentRequest struct {
	AmendmentNumber string
	Tags            procurement.TagInput
	Document        *FileUpload
}

// UpdateAmendmentRequest represents a partial amendment update
type UpdateAmendmentRequest struct {
	AmendmentNumber *string
	Tags            procurement.TagInput
	Document        *FileUpload
}

// AmendmentResponse represents an amendment in API responses
type AmendmentResponse struct {
	ID              uuid.UUID `json:"id"`
	LoaID           uuid.UUID `json:"loa_id"`
	AmendmentNumber string    `json:"amendment_number"`
	DocumentURL     *string   `json:"document_url"`
	Tags            []string  `json:"tags"`
	Warnings        []string  `json:"warnings,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToAmendmentResponse converts a domain amendment to a response
func ToAmendmentResponse(a *procurement.Amendment) AmendmentResponse {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return AmendmentResponse{
		ID:              a.ID,
		LoaID:           a.LoaID,
		AmendmentNumber: a.AmendmentNumber,
		DocumentURL:     a.DocumentURL,
		Tags:            tags,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// ToAmendmentResponses converts a slice of amendments
func ToAmendmentResponses(amendments []procurement.Amendment) []AmendmentResponse {
	responses := make([]AmendmentResponse, len(amendments))
	for i := range amendments {
		responses[i] = ToAmendmentResponse(&amendments[i])
	}
	return responses
}

// ==================== Other Document DTOs ====================

// CreateOtherDocumentRequest represents a request to file a supporting document
type CreateOtherDocumentRequest struct {
	Title    string
	Document *FileUpload
}

// UpdateOtherDocumentRequest represents a partial document update
type UpdateOtherDocumentRequest struct {
	Title    *string
	Document *FileUpload
}

// OtherDocumentResponse represents a supporting document in API responses
type OtherDocumentResponse struct {
	ID          uuid.UUID `json:"id"`
	LoaID       uuid.UUID `json:"loa_id"`
	Title       string    `json:"title"`
	DocumentURL string    `json:"document_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToOtherDocumentResponse converts a domain document to a response
func ToOtherDocumentResponse(d *procurement.OtherDocument) OtherDocumentResponse {
	return OtherDocumentResponse{
		ID:          d.ID,
		LoaID:       d.LoaID,
		Title:       d.Title,
		DocumentURL: d.DocumentURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// ToOtherDocumentResponses converts a slice of documents
func ToOtherDocumentResponses(docs []procurement.OtherDocument) []OtherDocumentResponse {
	responses := make([]OtherDocumentResponse, len(docs))
	for i := range docs {
		responses[i] = ToOtherDocumentResponse(&docs[i])
	}
	return responses
}

// ==================== Tender DTOs ====================

// CreateTenderRequest represents a request to register a tender
type CreateTenderRequest struct {
	TenderNumber string
	Description  string
	HasEMD       bool
	EMDAmount    *decimal.Decimal
	DueDate      *time.Time
	Tags         procurement.TagInput
}

// TenderListFilter represents filter options for listing tenders
type TenderListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Status   string
}

// TenderResponse represents a tender in API responses
type TenderResponse struct {
	ID           uuid.UUID        `json:"id"`
	TenderNumber string           `json:"tender_number"`
	Description  string           `json:"description,omitempty"`
	HasEMD       bool             `json:"has_emd"`
	EMDAmount    *decimal.Decimal `json:"emd_amount"`
	DueDate      *time.Time       `json:"due_date"`
	Status       string           `json:"status"`
	Tags         []string         `json:"tags"`
	Warnings     []string         `json:"warnings,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ToTenderResponse converts a domain tender to a response
func ToTenderResponse(t *procurement.Tender) TenderResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return TenderResponse{
		ID:           t.ID,
		TenderNumber: t.TenderNumber,
		Description:  t.Description,
		HasEMD:       t.HasEMD,
		EMDAmount:    t.EMDAmount,
		DueDate:      t.DueDate,
		Status:       string(t.Status),
		Tags:         tags,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to raise a purchase order against an LOA
type CreatePurchaseOrderRequest struct {
	PoNumber    string
	VendorName  string
	PoValue     decimal.Decimal
	Description string
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID          uuid.UUID       `json:"id"`
	LoaID       uuid.UUID       `json:"loa_id"`
	PoNumber    string          `json:"po_number"`
	VendorName  string          `json:"vendor_name"`
	PoValue     decimal.Decimal `json:"po_value"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToPurchaseOrderResponse converts a domain purchase order to a response
func ToPurchaseOrderResponse(po *procurement.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:          po.ID,
		LoaID:       po.LoaID,
		PoNumber:    po.PoNumber,
		VendorName:  po.VendorName,
		PoValue:     po.PoValue,
		Description: po.Description,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
}
