package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOtherDocumentRepository implements OtherDocumentRepository using GORM
type GormOtherDocumentRepository struct {
	db *gorm.DB
}

// NewGormOtherDocumentRepository creates a new GormOtherDocumentRepository
func NewGormOtherDocumentRepository(db *gorm.DB) *GormOtherDocumentRepository {
	return &GormOtherDocumentRepository{db: db}
}

func (r *GormOtherDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.OtherDocument, error) {
	var model models.OtherDocumentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Document")
	}
	return model.ToDomain(), nil
}

func (r *GormOtherDocumentRepository) FindByLoaID(ctx context.Context, loaID uuid.UUID) ([]procurement.OtherDocument, error) {
	var docModels []models.OtherDocumentModel
	if err := r.db.WithContext(ctx).
		Where("loa_id = ?", loaID).
		Order("created_at ASC").
		Find(&docModels).Error; err != nil {
		return nil, err
	}
	docs := make([]procurement.OtherDocument, len(docModels))
	for i, model := range docModels {
		docs[i] = *model.ToDomain()
	}
	return docs, nil
}

func (r *GormOtherDocumentRepository) Save(ctx context.Context, doc *procurement.OtherDocument) error {
	model := models.OtherDocumentModelFromDomain(doc)
	return translateError(r.db.WithContext(ctx).Save(model).Error, "Document")
}

func (r *GormOtherDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OtherDocumentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "Document")
	}
	return nil
}

func (r *GormOtherDocumentRepository) DeleteByLoaID(ctx context.Context, loaID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.OtherDocumentModel{}, "loa_id = ?", loaID).Error
}

var _ procurement.OtherDocumentRepository = (*GormOtherDocumentRepository)(nil)
