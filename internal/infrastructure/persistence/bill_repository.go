package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillRepository implements BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Bill")
	}
	return model.ToDomain(), nil
}

// FindByLoaID returns every bill of an LOA, most recently created first
func (r *GormBillRepository) FindByLoaID(ctx context.Context, loaID uuid.UUID) ([]procurement.Bill, error) {
	var billModels []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("loa_id = ?", loaID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	bills := make([]procurement.Bill, len(billModels))
	for i, model := range billModels {
		bills[i] = *model.ToDomain()
	}
	return bills, nil
}

// CountByLoaID counts the bills of an LOA
func (r *GormBillRepository) CountByLoaID(ctx context.Context, loaID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BillModel{}).
		Where("loa_id = ?", loaID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a bill
func (r *GormBillRepository) Save(ctx context.Context, bill *procurement.Bill) error {
	model := models.BillModelFromDomain(bill)
	return translateError(r.db.WithContext(ctx).Save(model).Error, "Bill")
}

// Delete deletes a bill
func (r *GormBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BillModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "Bill")
	}
	return nil
}

// DeleteByLoaID deletes every bill of an LOA
func (r *GormBillRepository) DeleteByLoaID(ctx context.Context, loaID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BillModel{}, "loa_id = ?", loaID).Error
}

// Ensure GormBillRepository implements BillRepository
var _ procurement.BillRepository = (*GormBillRepository)(nil)
