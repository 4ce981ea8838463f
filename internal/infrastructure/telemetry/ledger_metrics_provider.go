// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOutboxBacklogProvider implements OutboxBacklogProvider using GORM.
// It queries the outbox_events table directly for aggregated backlog counts.
type GormOutboxBacklogProvider struct {
	db *gorm.DB
}

// NewGormOutboxBacklogProvider creates a new GormOutboxBacklogProvider.
func NewGormOutboxBacklogProvider(db *gorm.DB) *GormOutboxBacklogProvider {
	return &GormOutboxBacklogProvider{db: db}
}

// BacklogByStatus returns the number of undelivered outbox entries per status.
func (p *GormOutboxBacklogProvider) BacklogByStatus(ctx context.Context) (map[string]int64, error) {
	type result struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("outbox_events").
		Select("status, count(*) as count").
		Where("status <> ?", "SENT").
		Group("status").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(results))
	for _, r := range results {
		m[r.Status] = r.Count
	}

	return m, nil
}

// GormStockMetricsProvider implements StockMetricsProvider using GORM.
type GormStockMetricsProvider struct {
	db *gorm.DB
}

// NewGormStockMetricsProvider creates a new GormStockMetricsProvider.
func NewGormStockMetricsProvider(db *gorm.DB) *GormStockMetricsProvider {
	return &GormStockMetricsProvider{db: db}
}

// GetOutOfStockCount returns the number of active items with no stock left for a tenant.
func (p *GormStockMetricsProvider) GetOutOfStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("items").
		Where("tenant_id = ? AND status = ?", tenantID, "active").
		Where("quantity <= 0").
		Count(&count).Error

	return count, err
}

// GormTenantProvider implements TenantProvider using GORM.
// Tenants are derived from the data itself; there is no separate registry.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns all tenant IDs that own at least one item.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("items").
		Distinct("tenant_id").
		Find(&ids).Error

	return ids, err
}
