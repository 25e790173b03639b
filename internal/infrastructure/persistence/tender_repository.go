package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenderRepository implements TenderRepository using GORM
type GormTenderRepository struct {
	db *gorm.DB
}

// NewGormTenderRepository creates a new GormTenderRepository
func NewGormTenderRepository(db *gorm.DB) *GormTenderRepository {
	return &GormTenderRepository{db: db}
}

// FindByID finds a tender by its ID
func (r *GormTenderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Tender, error) {
	var model models.TenderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Tender")
	}
	return model.ToDomain(), nil
}

// FindAll finds one page of tenders matching the filter
func (r *GormTenderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.Tender, error) {
	var tenderModels []models.TenderModel
	query := r.db.WithContext(ctx).Model(&models.TenderModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&tenderModels).Error; err != nil {
		return nil, err
	}
	tenders := make([]procurement.Tender, len(tenderModels))
	for i, model := range tenderModels {
		tenders[i] = *model.ToDomain()
	}
	return tenders, nil
}

// Count counts tenders matching the filter
func (r *GormTenderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.TenderModel{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByTenderNumber checks if a tender number is taken
func (r *GormTenderRepository) ExistsByTenderNumber(ctx context.Context, tenderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TenderModel{}).
		Where("tender_number = ?", tenderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a tender
func (r *GormTenderRepository) Save(ctx context.Context, tender *procurement.Tender) error {
	model := models.TenderModelFromDomain(tender)
	return translateError(r.db.WithContext(ctx).Save(model).Error, "Tender")
}

// Delete deletes a tender
func (r *GormTenderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TenderModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "Tender")
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "Tender")
	}
	return nil
}

func (r *GormTenderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, TenderSortFields, "created_at")
	return query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormTenderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(strings.ToLower(filter.Search))
		query = query.Where(
			`(LOWER(tender_number) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
			pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "has_emd":
			query = query.Where("has_emd = ?", value)
		}
	}
	return query
}

// Ensure GormTenderRepository implements TenderRepository
var _ procurement.TenderRepository = (*GormTenderRepository)(nil)
