package repository

import (
	"context"

	"github.com/buslane/buslane/internal/domain"
	"gorm.io/gorm"
)

// AuditRepository persists and lists import audit records.
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts one audit record.
func (r *AuditRepository) Create(ctx context.Context, audit *domain.ImportAudit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

// List retrieves audit records newest first, with pagination.
func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]domain.ImportAudit, error) {
	var audits []domain.ImportAudit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}

// ListBySchema retrieves audit records for one schema, newest first.
func (r *AuditRepository) ListBySchema(ctx context.Context, schemaID string, limit, offset int) ([]domain.ImportAudit, error) {
	var audits []domain.ImportAudit
	if err := r.db.WithContext(ctx).
		Where("schema_id = ?", schemaID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}
