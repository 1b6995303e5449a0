package repositories

import (
	"context"
	"strings"
	"time"

	"filadex/internal/database"
	"filadex/internal/logger"
	. "filadex/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PRESETS_CACHE_KEY    = "presets"
	PRESETS_CACHE_EXPIRY = 24 * time.Hour
)

type PresetRepository interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*MaterialPreset, error)
	GetByTaxonomy(
		ctx context.Context,
		tx *gorm.DB,
		brand, mainCategory, subCategory string,
	) ([]*MaterialPreset, error)
	Search(ctx context.Context, tx *gorm.DB, term string) ([]*MaterialPreset, error)
	Create(ctx context.Context, tx *gorm.DB, preset *MaterialPreset) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type presetRepository struct {
	cache database.CacheClient
}

func NewPresetRepository(cache database.CacheClient) PresetRepository {
	return &presetRepository{
		cache: cache,
	}
}

func (r *presetRepository) GetAll(ctx context.Context, tx *gorm.DB) ([]*MaterialPreset, error) {
	log := logger.NewWithContext(ctx, "presetRepository").Function("GetAll")

	var cached []*MaterialPreset
	found, err := database.NewCacheBuilder(r.cache, "all").
		WithContext(ctx).
		WithHash(PRESETS_CACHE_KEY).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get presets from cache", "error", err)
	}

	if found {
		return cached, nil
	}

	var presets []*MaterialPreset
	if err := tx.WithContext(ctx).
		Order("brand ASC, main_category ASC, sub_category ASC, color_name ASC").
		Find(&presets).Error; err != nil {
		return nil, log.Err("failed to get presets", err)
	}

	err = database.NewCacheBuilder(r.cache, "all").
		WithContext(ctx).
		WithHash(PRESETS_CACHE_KEY).
		WithStruct(presets).
		WithTTL(PRESETS_CACHE_EXPIRY).
		Set()
	if err != nil {
		log.Warn("failed to set presets in cache", "error", err)
	}

	return presets, nil
}

// GetByTaxonomy is the exact-match filter behind "pick a known color" UIs.
func (r *presetRepository) GetByTaxonomy(
	ctx context.Context,
	tx *gorm.DB,
	brand, mainCategory, subCategory string,
) ([]*MaterialPreset, error) {
	log := logger.NewWithContext(ctx, "presetRepository").Function("GetByTaxonomy")

	var presets []*MaterialPreset
	err := tx.WithContext(ctx).
		Where(MaterialPreset{
			Brand:        brand,
			MainCategory: mainCategory,
			SubCategory:  subCategory,
		}).
		Order("color_name ASC, created_at ASC").
		Find(&presets).Error
	if err != nil {
		return nil, log.Err(
			"failed to get presets by taxonomy",
			err,
			"brand", brand,
			"mainCategory", mainCategory,
			"subCategory", subCategory,
		)
	}

	return presets, nil
}

// Search matches a free-text term against brand, both categories and the
// color name. lower() keeps it portable between sqlite and postgres.
func (r *presetRepository) Search(
	ctx context.Context,
	tx *gorm.DB,
	term string,
) ([]*MaterialPreset, error) {
	log := logger.NewWithContext(ctx, "presetRepository").Function("Search")

	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"

	var presets []*MaterialPreset
	err := tx.WithContext(ctx).
		Where(
			"lower(brand) LIKE ? OR lower(main_category) LIKE ? OR lower(sub_category) LIKE ? OR lower(color_name) LIKE ?",
			pattern, pattern, pattern, pattern,
		).
		Order("brand ASC, color_name ASC").
		Find(&presets).Error
	if err != nil {
		return nil, log.Err("failed to search presets", err, "term", term)
	}

	return presets, nil
}

func (r *presetRepository) Create(ctx context.Context, tx *gorm.DB, preset *MaterialPreset) error {
	log := logger.NewWithContext(ctx, "presetRepository").Function("Create")

	if err := tx.WithContext(ctx).Create(preset).Error; err != nil {
		return log.Err(
			"failed to create preset",
			err,
			"brand", preset.Brand,
			"colorName", preset.ColorName,
		)
	}

	r.clearPresetCache(ctx)

	log.Info("Preset created", "presetID", preset.ID, "colorName", preset.ColorName)
	return nil
}

func (r *presetRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := logger.NewWithContext(ctx, "presetRepository").Function("Delete")

	result := tx.WithContext(ctx).Where("id = ?", id).Delete(&MaterialPreset{})
	if result.Error != nil {
		return log.Err("failed to delete preset", result.Error, "presetID", id)
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.clearPresetCache(ctx)

	log.Info("Preset deleted", "presetID", id)
	return nil
}

func (r *presetRepository) clearPresetCache(ctx context.Context) {
	log := logger.NewWithContext(ctx, "presetRepository").Function("clearPresetCache")

	err := database.NewCacheBuilder(r.cache, "all").
		WithContext(ctx).
		WithHash(PRESETS_CACHE_KEY).
		Delete()
	if err != nil {
		log.Warn("failed to clear preset cache", "error", err)
	}
}
