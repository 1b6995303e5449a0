package repositories

import (
	"context"

	"filadex/internal/logger"
	. "filadex/internal/models"

	"gorm.io/gorm"
)

type TaxonomyRepository interface {
	GetByKind(ctx context.Context, tx *gorm.DB, kind TaxonomyKind) ([]*TaxonomyLabel, error)
	EnsureLabel(ctx context.Context, tx *gorm.DB, kind TaxonomyKind, name string) (*TaxonomyLabel, error)
}

type taxonomyRepository struct{}

func NewTaxonomyRepository() TaxonomyRepository {
	return &taxonomyRepository{}
}

// GetByKind lists one label set in display order; the sentinel's sort value
// keeps it last.
func (r *taxonomyRepository) GetByKind(
	ctx context.Context,
	tx *gorm.DB,
	kind TaxonomyKind,
) ([]*TaxonomyLabel, error) {
	log := logger.NewWithContext(ctx, "taxonomyRepository").Function("GetByKind")

	var labels []*TaxonomyLabel
	if err := tx.WithContext(ctx).
		Where(TaxonomyLabel{Kind: kind}).
		Order("sort ASC, created_at ASC").
		Find(&labels).Error; err != nil {
		return nil, log.Err("failed to get taxonomy labels", err, "kind", kind)
	}

	return labels, nil
}

// EnsureLabel inserts a label if it is not already present. Re-adding an
// existing label is a no-op, which makes custom-label addition idempotent.
// New labels sort after every builtin but before the sentinel.
func (r *taxonomyRepository) EnsureLabel(
	ctx context.Context,
	tx *gorm.DB,
	kind TaxonomyKind,
	name string,
) (*TaxonomyLabel, error) {
	log := logger.NewWithContext(ctx, "taxonomyRepository").Function("EnsureLabel")

	var existing TaxonomyLabel
	err := tx.WithContext(ctx).
		Where(TaxonomyLabel{Kind: kind, Name: name}).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, log.Err("failed to look up taxonomy label", err, "kind", kind, "name", name)
	}

	var maxSort int
	err = tx.WithContext(ctx).
		Model(&TaxonomyLabel{}).
		Where("kind = ? AND sort < ?", kind, SentinelSort).
		Select("COALESCE(MAX(sort), -1)").
		Scan(&maxSort).Error
	if err != nil {
		return nil, log.Err("failed to compute label sort", err, "kind", kind)
	}

	label := TaxonomyLabel{
		Kind: kind,
		Name: name,
		Sort: maxSort + 1,
	}
	if err := tx.WithContext(ctx).Create(&label).Error; err != nil {
		return nil, log.Err("failed to create taxonomy label", err, "kind", kind, "name", name)
	}

	log.Info("Taxonomy label created", "kind", kind, "name", name)
	return &label, nil
}
