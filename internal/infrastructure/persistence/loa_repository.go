package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLoaRepository implements LoaRepository using GORM
type GormLoaRepository struct {
	db *gorm.DB
}

// NewGormLoaRepository creates a new GormLoaRepository
func NewGormLoaRepository(db *gorm.DB) *GormLoaRepository {
	return &GormLoaRepository{db: db}
}

// FindByID finds an LOA by its ID
func (r *GormLoaRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.LOA, error) {
	var model models.LoaModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "LOA")
	}
	return model.ToDomain(), nil
}

// FindByLoaNumber finds an LOA by its unique number
func (r *GormLoaRepository) FindByLoaNumber(ctx context.Context, loaNumber string) (*procurement.LOA, error) {
	var model models.LoaModel
	if err := r.db.WithContext(ctx).Where("loa_number = ?", loaNumber).First(&model).Error; err != nil {
		return nil, translateError(err, "LOA")
	}
	return model.ToDomain(), nil
}

// FindAll finds one page of LOAs matching the filter
func (r *GormLoaRepository) FindAll(ctx context.Context, filter procurement.LoaFilter) ([]procurement.LOA, error) {
	var loaModels []models.LoaModel
	query := r.db.WithContext(ctx).Model(&models.LoaModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&loaModels).Error; err != nil {
		return nil, err
	}
	loas := make([]procurement.LOA, len(loaModels))
	for i, model := range loaModels {
		loas[i] = *model.ToDomain()
	}
	return loas, nil
}

// Count counts LOAs matching the filter, ignoring pagination
func (r *GormLoaRepository) Count(ctx context.Context, filter procurement.LoaFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.LoaModel{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByLoaNumber checks whether an LOA other than excludeID uses loaNumber
func (r *GormLoaRepository) ExistsByLoaNumber(ctx context.Context, loaNumber string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.LoaModel{}).Where("loa_number = ?", loaNumber)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByTenderID counts LOAs awarded from a tender
func (r *GormLoaRepository) CountByTenderID(ctx context.Context, tenderID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LoaModel{}).
		Where("tender_id = ?", tenderID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an LOA
func (r *GormLoaRepository) Save(ctx context.Context, loa *procurement.LOA) error {
	model := models.LoaModelFromDomain(loa)
	return translateError(r.db.WithContext(ctx).Save(model).Error, "LOA")
}

// Delete deletes an LOA
func (r *GormLoaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LoaModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "LOA")
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "LOA")
	}
	return nil
}

// applyFilter applies filter options, ordering and pagination
func (r *GormLoaRepository) applyFilter(query *gorm.DB, filter procurement.LoaFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	// Apply ordering with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, LoaSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder).Order("id " + sortOrder)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLoaRepository) applyFilterWithoutPagination(query *gorm.DB, filter procurement.LoaFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(strings.ToLower(filter.Search))
		query = query.Where(
			`(LOWER(loa_number) LIKE ? ESCAPE '\' OR LOWER(work_description) LIKE ? ESCAPE '\')`,
			pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SiteID != nil {
		query = query.Where("site_id = ?", *filter.SiteID)
	}
	if filter.TenderID != nil {
		query = query.Where("tender_id = ?", *filter.TenderID)
	}
	if filter.HasEMD != nil {
		query = query.Where("has_emd = ?", *filter.HasEMD)
	}
	if filter.MinValue != nil {
		query = query.Where("loa_value >= ?", *filter.MinValue)
	}
	if filter.MaxValue != nil {
		query = query.Where("loa_value <= ?", *filter.MaxValue)
	}
	return query
}

// Ensure GormLoaRepository implements LoaRepository
var _ procurement.LoaRepository = (*GormLoaRepository)(nil)
