package repositories

import (
	"context"
	"time"

	"filadex/internal/database"
	"filadex/internal/logger"
	. "filadex/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MATERIALS_CACHE_KEY    = "materials"
	MATERIALS_CACHE_EXPIRY = 24 * time.Hour
)

type MaterialRepository interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*Material, error)
	GetAvailable(ctx context.Context, tx *gorm.DB) ([]*Material, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Material, error)
	Create(ctx context.Context, tx *gorm.DB, material *Material) error
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) (*Material, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	SetRemainingWeight(ctx context.Context, tx *gorm.DB, id uuid.UUID, grams float64) error
	Consume(
		ctx context.Context,
		tx *gorm.DB,
		id uuid.UUID,
		requestedGrams float64,
	) (actualGrams float64, clamped bool, err error)
}

type materialRepository struct {
	cache database.CacheClient
}

func NewMaterialRepository(cache database.CacheClient) MaterialRepository {
	return &materialRepository{
		cache: cache,
	}
}

func (r *materialRepository) GetAll(ctx context.Context, tx *gorm.DB) ([]*Material, error) {
	log := logger.NewWithContext(ctx, "materialRepository").Function("GetAll")

	var cached []*Material
	found, err := database.NewCacheBuilder(r.cache, "all").
		WithContext(ctx).
		WithHash(MATERIALS_CACHE_KEY).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get materials from cache", "error", err)
	}

	if found {
		return cached, nil
	}

	var materials []*Material
	if err := tx.WithContext(ctx).
		Order("purchase_date DESC, created_at DESC").
		Find(&materials).Error; err != nil {
		return nil, log.Err("failed to get materials", err)
	}

	err = database.NewCacheBuilder(r.cache, "all").
		WithContext(ctx).
		WithHash(MATERIALS_CACHE_KEY).
		WithStruct(materials).
		WithTTL(MATERIALS_CACHE_EXPIRY).
		Set()
	if err != nil {
		log.Warn("failed to set materials in cache", "error", err)
	}

	return materials, nil
}

// GetAvailable lists spools with weight left, already-opened spools first,
// then newest purchases. The opened-first rule is the "prefer opened spools"
// business rule, not a display whim.
func (r *materialRepository) GetAvailable(ctx context.Context, tx *gorm.DB) ([]*Material, error) {
	log := logger.NewWithContext(ctx, "materialRepository").Function("GetAvailable")

	var materials []*Material
	if err := tx.WithContext(ctx).
		Where("remaining_weight_grams > 0").
		Order("(initial_weight_grams - remaining_weight_grams > 0) DESC, purchase_date DESC").
		Find(&materials).Error; err != nil {
		return nil, log.Err("failed to get available materials", err)
	}

	return materials, nil
}

func (r *materialRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Material, error) {
	log := logger.NewWithContext(ctx, "materialRepository").Function("GetByID")

	var material Material
	if err := tx.WithContext(ctx).Where("id = ?", id).First(&material).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, log.Err("failed to get material", err, "materialID", id)
	}

	return &material, nil
}

func (r *materialRepository) Create(ctx context.Context, tx *gorm.DB, material *Material) error {
	log := logger.NewWithContext(ctx, "materialRepository").Function("Create")

	if err := tx.WithContext(ctx).Create(material).Error; err != nil {
		return log.Err(
			"failed to create material",
			err,
			"brand", material.Brand,
			"name", material.Name,
		)
	}

	r.clearMaterialCache(ctx)

	log.Info("Material created", "materialID", material.ID, "name", material.Name)
	return nil
}

func (r *materialRepository) Update(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	updates map[string]any,
) (*Material, error) {
	log := logger.NewWithContext(ctx, "materialRepository").Function("Update")

	result := tx.WithContext(ctx).
		Model(&Material{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, log.Err("failed to update material", result.Error, "materialID", id)
	}

	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	r.clearMaterialCache(ctx)

	return r.GetByID(ctx, tx, id)
}

func (r *materialRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := logger.NewWithContext(ctx, "materialRepository").Function("Delete")

	result := tx.WithContext(ctx).Where("id = ?", id).Delete(&Material{})
	if result.Error != nil {
		return log.Err("failed to delete material", result.Error, "materialID", id)
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.clearMaterialCache(ctx)

	log.Info("Material deleted", "materialID", id)
	return nil
}

func (r *materialRepository) SetRemainingWeight(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	grams float64,
) error {
	log := logger.NewWithContext(ctx, "materialRepository").Function("SetRemainingWeight")

	result := tx.WithContext(ctx).
		Model(&Material{}).
		Where("id = ?", id).
		Update("remaining_weight_grams", grams)
	if result.Error != nil {
		return log.Err("failed to set remaining weight", result.Error, "materialID", id)
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.clearMaterialCache(ctx)

	return nil
}

// Consume draws up to requestedGrams from the spool and reports what was
// actually applied. Over-consumption clamps to the remaining weight instead
// of failing; callers must read actualGrams, not assume the request was fully
// honored. Runs inside the caller's transaction so the read and decrement
// stay atomic.
func (r *materialRepository) Consume(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	requestedGrams float64,
) (float64, bool, error) {
	log := logger.NewWithContext(ctx, "materialRepository").Function("Consume")

	material, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return 0, false, err
	}

	actual := requestedGrams
	if actual < 0 {
		actual = 0
	}

	clamped := false
	if actual > material.RemainingWeightGrams {
		actual = material.RemainingWeightGrams
		clamped = true
	}

	if actual > 0 {
		err := tx.WithContext(ctx).
			Model(&Material{}).
			Where("id = ?", id).
			Update("remaining_weight_grams", gorm.Expr("remaining_weight_grams - ?", actual)).
			Error
		if err != nil {
			return 0, false, log.Err(
				"failed to decrement remaining weight",
				err,
				"materialID", id,
				"requested", requestedGrams,
			)
		}
	}

	r.clearMaterialCache(ctx)

	if clamped {
		log.Warn(
			"consumption clamped to remaining weight",
			"materialID", id,
			"requested", requestedGrams,
			"actual", actual,
		)
	}

	return actual, clamped, nil
}

func (r *materialRepository) clearMaterialCache(ctx context.Context) {
	log := logger.NewWithContext(ctx, "materialRepository").Function("clearMaterialCache")

	err := database.NewCacheBuilder(r.cache, "all").
		WithContext(ctx).
		WithHash(MATERIALS_CACHE_KEY).
		Delete()
	if err != nil {
		log.Warn("failed to clear material cache", "error", err)
	}
}
