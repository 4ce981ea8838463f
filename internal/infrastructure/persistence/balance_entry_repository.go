package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormBalanceEntryRepository implements BalanceEntryRepository using GORM.
// Entries are append-only, so the repository exposes no update or delete.
type GormBalanceEntryRepository struct {
	db *gorm.DB
}

// NewGormBalanceEntryRepository creates a new GORM-based balance entry repository
func NewGormBalanceEntryRepository(db *gorm.DB) *GormBalanceEntryRepository {
	return &GormBalanceEntryRepository{db: db}
}

// Save persists a new balance entry
func (r *GormBalanceEntryRepository) Save(ctx context.Context, entry *partner.BalanceEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByEntity finds entries for one customer or supplier, newest first
func (r *GormBalanceEntryRepository) FindByEntity(ctx context.Context, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID, filter shared.Filter) ([]partner.BalanceEntry, error) {
	var entries []partner.BalanceEntry
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_kind = ? AND entity_id = ?", tenantID, kind, entityID)
	query = r.applyFilter(query, filter)
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindBySource finds entries originating from one document
func (r *GormBalanceEntryRepository) FindBySource(ctx context.Context, tenantID, sourceID uuid.UUID) ([]partner.BalanceEntry, error) {
	var entries []partner.BalanceEntry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_id = ?", tenantID, sourceID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByEntity counts entries for one customer or supplier
func (r *GormBalanceEntryRepository) CountByEntity(ctx context.Context, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&partner.BalanceEntry{}).
		Where("tenant_id = ? AND entity_kind = ? AND entity_id = ?", tenantID, kind, entityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumDeltasSince sums entry deltas for an entity recorded after a point in time
func (r *GormBalanceEntryRepository) SumDeltasSince(ctx context.Context, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}

	if err := r.db.WithContext(ctx).
		Model(&partner.BalanceEntry{}).
		Select("COALESCE(SUM(delta), 0) as total").
		Where("tenant_id = ? AND entity_kind = ? AND entity_id = ? AND created_at > ?",
			tenantID, kind, entityID, since).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}

	return result.Total, nil
}

// applyFilter applies filter options to the query
func (r *GormBalanceEntryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "entry_type":
			query = query.Where("entry_type = ?", value)
		case "since":
			query = query.Where("created_at >= ?", value)
		case "until":
			query = query.Where("created_at <= ?", value)
		}
	}

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering with whitelist validation to prevent SQL injection
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, BalanceEntrySortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			// Default ordering if invalid field
			query = query.Order("created_at DESC")
		}
	} else {
		// Default ordering
		query = query.Order("created_at DESC")
	}

	return query
}

// Ensure GormBalanceEntryRepository implements BalanceEntryRepository
var _ partner.BalanceEntryRepository = (*GormBalanceEntryRepository)(nil)
