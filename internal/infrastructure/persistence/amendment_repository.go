package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAmendmentRepository implements AmendmentRepository using GORM
type GormAmendmentRepository struct {
	db *gorm.DB
}

// NewGormAmendmentRepository creates a new GormAmendmentRepository
func NewGormAmendmentRepository(db *gorm.DB) *GormAmendmentRepository {
	return &GormAmendmentRepository{db: db}
}

// FindByID finds an amendment by its ID
func (r *GormAmendmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Amendment, error) {
	var model models.AmendmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Amendment")
	}
	return model.ToDomain(), nil
}

// FindByLoaID returns the amendments of an LOA in filing order
func (r *GormAmendmentRepository) FindByLoaID(ctx context.Context, loaID uuid.UUID) ([]procurement.Amendment, error) {
	var amendmentModels []models.AmendmentModel
	if err := r.db.WithContext(ctx).
		Where("loa_id = ?", loaID).
		Order("created_at ASC").
		Find(&amendmentModels).Error; err != nil {
		return nil, err
	}
	amendments := make([]procurement.Amendment, len(amendmentModels))
	for i, model := range amendmentModels {
		amendments[i] = *model.ToDomain()
	}
	return amendments, nil
}

// Save creates or updates an amendment
func (r *GormAmendmentRepository) Save(ctx context.Context, amendment *procurement.Amendment) error {
	model := models.AmendmentModelFromDomain(amendment)
	return translateError(r.db.WithContext(ctx).Save(model).Error, "Amendment")
}

// Delete deletes an amendment
func (r *GormAmendmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AmendmentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "Amendment")
	}
	return nil
}

// DeleteByLoaID deletes every amendment of an LOA
func (r *GormAmendmentRepository) DeleteByLoaID(ctx context.Context, loaID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.AmendmentModel{}, "loa_id = ?", loaID).Error
}

// Ensure GormAmendmentRepository implements AmendmentRepository
var _ procurement.AmendmentRepository = (*GormAmendmentRepository)(nil)
