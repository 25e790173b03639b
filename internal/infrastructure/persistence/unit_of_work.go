package persistence

import (
	"context"

	"github.com/procurement/backend/internal/domain/procurement"
	"gorm.io/gorm"
)

// NewRepositories binds every procurement repository to db
func NewRepositories(db *gorm.DB) procurement.Repositories {
	return procurement.Repositories{
		Loas:           NewGormLoaRepository(db),
		Bills:          NewGormBillRepository(db),
		Amendments:     NewGormAmendmentRepository(db),
		Documents:      NewGormOtherDocumentRepository(db),
		Tenders:        NewGormTenderRepository(db),
		PurchaseOrders: NewGormPurchaseOrderRepository(db),
	}
}

// GormUnitOfWork runs work inside a single GORM transaction
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// WithinTx calls fn with repositories bound to a new transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (u *GormUnitOfWork) WithinTx(ctx context.Context, fn func(r procurement.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

var _ procurement.UnitOfWork = (*GormUnitOfWork)(nil)
