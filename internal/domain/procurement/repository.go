package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LoaFilter narrows an LOA listing. Nil fields do not filter.
type LoaFilter struct {
	shared.Filter
	Status   *LoaStatus
	SiteID   *uuid.UUID
	TenderID *uuid.UUID
	HasEMD   *bool
	MinValue *decimal.Decimal
	MaxValue *decimal.Decimal
}

// LoaRepository defines the interface for LOA persistence
type LoaRepository interface {
	// FindByID finds an LOA by ID, returning shared.ErrNotFound if absent
	FindByID(ctx context.Context, id uuid.UUID) (*LOA, error)

	// FindByLoaNumber finds an LOA by its unique number
	FindByLoaNumber(ctx context.Context, loaNumber string) (*LOA, error)

	// FindAll finds LOAs matching the filter, one page at a time
	FindAll(ctx context.Context, filter LoaFilter) ([]LOA, error)

	// Count counts LOAs matching the filter, ignoring pagination
	Count(ctx context.Context, filter LoaFilter) (int64, error)

	// ExistsByLoaNumber checks whether another LOA already uses loaNumber.
	// excludeID, when set, is ignored so an LOA does not collide with itself.
	ExistsByLoaNumber(ctx context.Context, loaNumber string, excludeID *uuid.UUID) (bool, error)

	// CountByTenderID counts LOAs awarded from a tender
	CountByTenderID(ctx context.Context, tenderID uuid.UUID) (int64, error)

	// Save creates or updates an LOA
	Save(ctx context.Context, loa *LOA) error

	// Delete deletes an LOA
	Delete(ctx context.Context, id uuid.UUID) error
}

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// FindByLoaID returns every bill of an LOA, most recently created first
	FindByLoaID(ctx context.Context, loaID uuid.UUID) ([]Bill, error)

	CountByLoaID(ctx context.Context, loaID uuid.UUID) (int64, error)
	Save(ctx context.Context, bill *Bill) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByLoaID(ctx context.Context, loaID uuid.UUID) error
}

// AmendmentRepository defines the interface for amendment persistence
type AmendmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Amendment, error)
	FindByLoaID(ctx context.Context, loaID uuid.UUID) ([]Amendment, error)
	Save(ctx context.Context, amendment *Amendment) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByLoaID(ctx context.Context, loaID uuid.UUID) error
}

// OtherDocumentRepository defines the interface for supporting document persistence
type OtherDocumentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OtherDocument, error)
	FindByLoaID(ctx context.Context, loaID uuid.UUID) ([]OtherDocument, error)
	Save(ctx context.Context, doc *OtherDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByLoaID(ctx context.Context, loaID uuid.UUID) error
}

// TenderRepository defines the interface for tender persistence
type TenderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tender, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Tender, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByTenderNumber(ctx context.Context, tenderNumber string) (bool, error)
	Save(ctx context.Context, tender *Tender) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByLoaID(ctx context.Context, loaID uuid.UUID) ([]PurchaseOrder, error)

	// CountByLoaID counts purchase orders referencing an LOA; a non-zero count blocks LOA deletion
	CountByLoaID(ctx context.Context, loaID uuid.UUID) (int64, error)

	ExistsByPoNumber(ctx context.Context, poNumber string) (bool, error)
	Save(ctx context.Context, po *PurchaseOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories groups the repositories bound to one transaction
type Repositories struct {
	Loas           LoaRepository
	Bills          BillRepository
	Amendments     AmendmentRepository
	Documents      OtherDocumentRepository
	Tenders        TenderRepository
	PurchaseOrders PurchaseOrderRepository
}

// UnitOfWork runs fn with repositories that share a single transaction.
// Returning an error from fn rolls everything back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}
