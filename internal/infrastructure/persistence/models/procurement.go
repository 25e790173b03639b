package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// modelLogger resolves the global logger on every call so ReplaceGlobals
// after package init is honoured
func modelLogger() *zap.Logger {
	return zap.L().Named("procurement.models")
}

// LoaModel is the persistence model for the LOA aggregate root.
type LoaModel struct {
	BaseModel
	LoaNumber       string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	LoaValue        decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	DeliveryStart   time.Time             `gorm:"not null"`
	DeliveryEnd     time.Time             `gorm:"not null"`
	WorkDescription string                `gorm:"type:text;not null"`
	SiteID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status          procurement.LoaStatus `gorm:"type:varchar(30);not null;default:'NOT_STARTED';index"`
	HasEMD          bool                  `gorm:"column:has_emd;not null;default:false"`
	EMDAmount       *decimal.Decimal      `gorm:"column:emd_amount;type:decimal(18,2)"`
	SdFdrID         *uuid.UUID            `gorm:"column:sd_fdr_id;type:uuid"`
	PgFdrID         *uuid.UUID            `gorm:"column:pg_fdr_id;type:uuid"`
	TenderID        *uuid.UUID            `gorm:"type:uuid;index"`
	DocumentURL     *string               `gorm:"type:text"`
	TagsJSON        string                `gorm:"column:tags;type:jsonb;default:'[]'"`
	Remarks         string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (LoaModel) TableName() string {
	return "loas"
}

// ToDomain converts the persistence model to a domain LOA
func (m *LoaModel) ToDomain() *procurement.LOA {
	return &procurement.LOA{
		BaseEntity:      m.BaseModel.ToDomain(),
		LoaNumber:       m.LoaNumber,
		LoaValue:        m.LoaValue,
		DeliveryPeriod:  procurement.DeliveryPeriod{Start: m.DeliveryStart, End: m.DeliveryEnd},
		WorkDescription: m.WorkDescription,
		SiteID:          m.SiteID,
		Status:          m.Status,
		HasEMD:          m.HasEMD,
		EMDAmount:       m.EMDAmount,
		SdFdrID:         m.SdFdrID,
		PgFdrID:         m.PgFdrID,
		TenderID:        m.TenderID,
		DocumentURL:     m.DocumentURL,
		Tags:            decodeTags(m.TagsJSON, m.ID),
		Remarks:         m.Remarks,
	}
}

// FromDomain populates the persistence model from a domain LOA
func (m *LoaModel) FromDomain(l *procurement.LOA) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.LoaNumber = l.LoaNumber
	m.LoaValue = l.LoaValue
	m.DeliveryStart = l.DeliveryPeriod.Start
	m.DeliveryEnd = l.DeliveryPeriod.End
	m.WorkDescription = l.WorkDescription
	m.SiteID = l.SiteID
	m.Status = l.Status
	m.HasEMD = l.HasEMD
	m.EMDAmount = l.EMDAmount
	m.SdFdrID = l.SdFdrID
	m.PgFdrID = l.PgFdrID
	m.TenderID = l.TenderID
	m.DocumentURL = l.DocumentURL
	m.TagsJSON = encodeTags(l.Tags)
	m.Remarks = l.Remarks
}

// LoaModelFromDomain creates a new persistence model from a domain LOA
func LoaModelFromDomain(l *procurement.LOA) *LoaModel {
	m := &LoaModel{}
	m.FromDomain(l)
	return m
}

// BillModel is the persistence model for a bill (invoice) under an LOA.
// The pending amount is derived and has no column.
type BillModel struct {
	BaseModel
	LoaID           uuid.UUID              `gorm:"type:uuid;not null;index"`
	InvoiceNumber   string                 `gorm:"type:varchar(100)"`
	InvoiceAmount   decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	AmountReceived  decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	AmountDeducted  decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	DeductionReason string                 `gorm:"type:varchar(500)"`
	BillLinks       string                 `gorm:"type:text"`
	Remarks         string                 `gorm:"type:text"`
	Status          procurement.BillStatus `gorm:"type:varchar(20);not null;default:'REGISTERED'"`
	InvoicePdfURL   *string                `gorm:"column:invoice_pdf_url;type:text"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill
func (m *BillModel) ToDomain() *procurement.Bill {
	return &procurement.Bill{
		BaseEntity:      m.BaseModel.ToDomain(),
		LoaID:           m.LoaID,
		InvoiceNumber:   m.InvoiceNumber,
		InvoiceAmount:   m.InvoiceAmount,
		AmountReceived:  m.AmountReceived,
		AmountDeducted:  m.AmountDeducted,
		DeductionReason: m.DeductionReason,
		BillLinks:       m.BillLinks,
		Remarks:         m.Remarks,
		Status:          m.Status,
		InvoicePdfURL:   m.InvoicePdfURL,
	}
}

// BillModelFromDomain creates a new persistence model from a domain Bill
func BillModelFromDomain(b *procurement.Bill) *BillModel {
	m := &BillModel{
		LoaID:           b.LoaID,
		InvoiceNumber:   b.InvoiceNumber,
		InvoiceAmount:   b.InvoiceAmount,
		AmountReceived:  b.AmountReceived,
		AmountDeducted:  b.AmountDeducted,
		DeductionReason: b.DeductionReason,
		BillLinks:       b.BillLinks,
		Remarks:         b.Remarks,
		Status:          b.Status,
		InvoicePdfURL:   b.InvoicePdfURL,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}

// AmendmentModel is the persistence model for an LOA amendment
type AmendmentModel struct {
	BaseModel
	LoaID           uuid.UUID `gorm:"type:uuid;not null;index"`
	AmendmentNumber string    `gorm:"type:varchar(50);not null"`
	DocumentURL     *string   `gorm:"type:text"`
	TagsJSON        string    `gorm:"column:tags;type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (AmendmentModel) TableName() string {
	return "amendments"
}

// ToDomain converts the persistence model to a domain Amendment
func (m *AmendmentModel) ToDomain() *procurement.Amendment {
	return &procurement.Amendment{
		BaseEntity:      m.BaseModel.ToDomain(),
		LoaID:           m.LoaID,
		AmendmentNumber: m.AmendmentNumber,
		DocumentURL:     m.DocumentURL,
		Tags:            decodeTags(m.TagsJSON, m.ID),
	}
}

// AmendmentModelFromDomain creates a new persistence model from a domain Amendment
func AmendmentModelFromDomain(a *procurement.Amendment) *AmendmentModel {
	m := &AmendmentModel{
		LoaID:           a.LoaID,
		AmendmentNumber: a.AmendmentNumber,
		DocumentURL:     a.DocumentURL,
		TagsJSON:        encodeTags(a.Tags),
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// OtherDocumentModel is the persistence model for a supporting document
type OtherDocumentModel struct {
	BaseModel
	LoaID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"type:varchar(100);not null"`
	DocumentURL string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (OtherDocumentModel) TableName() string {
	return "other_documents"
}

// ToDomain converts the persistence model to a domain OtherDocument
func (m *OtherDocumentModel) ToDomain() *procurement.OtherDocument {
	return &procurement.OtherDocument{
		BaseEntity:  m.BaseModel.ToDomain(),
		LoaID:       m.LoaID,
		Title:       m.Title,
		DocumentURL: m.DocumentURL,
	}
}

// OtherDocumentModelFromDomain creates a new persistence model from a domain OtherDocument
func OtherDocumentModelFromDomain(d *procurement.OtherDocument) *OtherDocumentModel {
	m := &OtherDocumentModel{
		LoaID:       d.LoaID,
		Title:       d.Title,
		DocumentURL: d.DocumentURL,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}

// TenderModel is the persistence model for a tender
type TenderModel struct {
	BaseModel
	TenderNumber string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description  string                   `gorm:"type:text"`
	HasEMD       bool                     `gorm:"column:has_emd;not null;default:false"`
	EMDAmount    *decimal.Decimal         `gorm:"column:emd_amount;type:decimal(18,2)"`
	DueDate      *time.Time               `gorm:"index"`
	Status       procurement.TenderStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	TagsJSON     string                   `gorm:"column:tags;type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (TenderModel) TableName() string {
	return "tenders"
}

// ToDomain converts the persistence model to a domain Tender
func (m *TenderModel) ToDomain() *procurement.Tender {
	return &procurement.Tender{
		BaseEntity:   m.BaseModel.ToDomain(),
		TenderNumber: m.TenderNumber,
		Description:  m.Description,
		HasEMD:       m.HasEMD,
		EMDAmount:    m.EMDAmount,
		DueDate:      m.DueDate,
		Status:       m.Status,
		Tags:         decodeTags(m.TagsJSON, m.ID),
	}
}

// TenderModelFromDomain creates a new persistence model from a domain Tender
func TenderModelFromDomain(t *procurement.Tender) *TenderModel {
	m := &TenderModel{
		TenderNumber: t.TenderNumber,
		Description:  t.Description,
		HasEMD:       t.HasEMD,
		EMDAmount:    t.EMDAmount,
		DueDate:      t.DueDate,
		Status:       t.Status,
		TagsJSON:     encodeTags(t.Tags),
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// PurchaseOrderModel is the persistence model for a purchase order under an LOA
type PurchaseOrderModel struct {
	BaseModel
	LoaID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PoNumber    string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	VendorName  string          `gorm:"type:varchar(200);not null"`
	PoValue     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Description string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	return &procurement.PurchaseOrder{
		BaseEntity:  m.BaseModel.ToDomain(),
		LoaID:       m.LoaID,
		PoNumber:    m.PoNumber,
		VendorName:  m.VendorName,
		PoValue:     m.PoValue,
		Description: m.Description,
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(po *procurement.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		LoaID:       po.LoaID,
		PoNumber:    po.PoNumber,
		VendorName:  po.VendorName,
		PoValue:     po.PoValue,
		Description: po.Description,
	}
	m.FromDomainBaseEntity(po.BaseEntity)
	return m
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeTags never fails: a corrupt column reads back as no tags
func decodeTags(raw string, owner uuid.UUID) []string {
	tags := make([]string, 0)
	if raw == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		modelLogger().Warn("Failed to decode stored tags",
			zap.String("owner_id", owner.String()),
			zap.Error(err),
		)
		return make([]string, 0)
	}
	return tags
}
