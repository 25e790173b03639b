package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Purchase order")
	}
	return model.ToDomain(), nil
}

// FindByLoaID finds the purchase orders raised against an LOA
func (r *GormPurchaseOrderRepository) FindByLoaID(ctx context.Context, loaID uuid.UUID) ([]procurement.PurchaseOrder, error) {
	var orderModels []models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Where("loa_id = ?", loaID).
		Order("created_at DESC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]procurement.PurchaseOrder, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// CountByLoaID counts purchase orders referencing an LOA
func (r *GormPurchaseOrderRepository) CountByLoaID(ctx context.Context, loaID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("loa_id = ?", loaID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByPoNumber checks if a PO number is taken
func (r *GormPurchaseOrderRepository) ExistsByPoNumber(ctx context.Context, poNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("po_number = ?", poNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a purchase order
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *procurement.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(po)
	return translateError(r.db.WithContext(ctx).Save(model).Error, "Purchase order")
}

// Delete deletes a purchase order
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PurchaseOrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "Purchase order")
	}
	return nil
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
