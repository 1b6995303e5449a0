package presetController

import (
	"context"
	"errors"
	"strings"

	"filadex/config"
	"filadex/internal/database"
	"filadex/internal/events"
	"filadex/internal/logger"
	. "filadex/internal/models"
	"filadex/internal/repositories"
	"filadex/internal/services"
	"filadex/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

type PresetController struct {
	presetRepo         repositories.PresetRepository
	taxonomyRepo       repositories.TaxonomyRepository
	transactionService *services.TransactionService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

type AddPresetRequest struct {
	Brand            string   `json:"brand"        validate:"required"`
	MainCategory     string   `json:"mainCategory" validate:"required"`
	SubCategory      string   `json:"subCategory"  validate:"required"`
	ColorName        string   `json:"colorName"    validate:"required"`
	ColorHex         string   `json:"colorHex,omitempty"`
	GradientStartHex *string  `json:"gradientStartHex,omitempty"`
	GradientEndHex   *string  `json:"gradientEndHex,omitempty"`
	GradientStops    []string `json:"gradientStops,omitempty"`
}

// PresetFilter narrows the preset listing. Exact taxonomy fields and the
// free-text term are mutually exclusive; the term wins when both are set.
type PresetFilter struct {
	Brand        string
	MainCategory string
	SubCategory  string
	Term         string
}

func (f PresetFilter) exact() bool {
	return f.Brand != "" || f.MainCategory != "" || f.SubCategory != ""
}

type PresetControllerInterface interface {
	GetPresets(ctx context.Context, filter PresetFilter) ([]*MaterialPreset, error)
	AddPreset(ctx context.Context, request *AddPresetRequest) (*MaterialPreset, error)
	DeletePreset(ctx context.Context, id uuid.UUID) error
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) PresetControllerInterface {
	return &PresetController{
		presetRepo:         repos.Preset,
		taxonomyRepo:       repos.Taxonomy,
		transactionService: services.Transaction,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
		log:                logger.New("presetController"),
	}
}

func (c *PresetController) GetPresets(
	ctx context.Context,
	filter PresetFilter,
) ([]*MaterialPreset, error) {
	log := c.log.Function("GetPresets")

	var presets []*MaterialPreset
	var err error

	switch {
	case strings.TrimSpace(filter.Term) != "":
		presets, err = c.presetRepo.Search(ctx, c.db.SQL, filter.Term)
	case filter.exact():
		presets, err = c.presetRepo.GetByTaxonomy(
			ctx,
			c.db.SQL,
			filter.Brand,
			filter.MainCategory,
			filter.SubCategory,
		)
	default:
		presets, err = c.presetRepo.GetAll(ctx, c.db.SQL)
	}

	if err != nil {
		return nil, log.Err("failed to get presets", err)
	}

	return presets, nil
}

// AddPreset appends unconditionally. Duplicate color names under the same
// taxonomy triple are allowed; both stay listed.
func (c *PresetController) AddPreset(
	ctx context.Context,
	request *AddPresetRequest,
) (*MaterialPreset, error) {
	log := c.log.Function("AddPreset")

	if request.Brand == "" || request.MainCategory == "" || request.SubCategory == "" {
		return nil, log.ErrorWithType(ErrValidation, "brand, mainCategory and subCategory are required")
	}
	if request.ColorName == "" {
		return nil, log.ErrorWithType(ErrValidation, "colorName is required")
	}
	if len(request.GradientStops) == 1 {
		return nil, log.ErrorWithType(ErrValidation, "a gradient needs at least two stops")
	}
	for _, stop := range request.GradientStops {
		if !utils.ValidHex(stop) {
			return nil, log.ErrorWithType(ErrValidation, "invalid color hex", "hex", stop)
		}
	}
	if request.ColorHex != "" && !utils.ValidHex(request.ColorHex) {
		return nil, log.ErrorWithType(ErrValidation, "invalid color hex", "hex", request.ColorHex)
	}

	preset := &MaterialPreset{
		Brand:            request.Brand,
		MainCategory:     request.MainCategory,
		SubCategory:      request.SubCategory,
		ColorName:        request.ColorName,
		ColorHex:         utils.NormalizeHex(request.ColorHex),
		GradientStartHex: normalizeHexPtr(request.GradientStartHex),
		GradientEndHex:   normalizeHexPtr(request.GradientEndHex),
		GradientStops:    datatypes.NewJSONSlice(utils.NormalizeHexSlice(request.GradientStops)),
	}

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		for kind, name := range map[TaxonomyKind]string{
			TaxonomyKindBrand:        preset.Brand,
			TaxonomyKindMainCategory: preset.MainCategory,
			TaxonomyKindSubCategory:  preset.SubCategory,
		} {
			if _, err := c.taxonomyRepo.EnsureLabel(ctx, tx, kind, name); err != nil {
				return err
			}
		}

		return c.presetRepo.Create(ctx, tx, preset)
	})
	if err != nil {
		return nil, err
	}

	c.publish(events.PRESET_CREATED, preset.ID)

	log.Info("Preset added", "presetID", preset.ID, "colorName", preset.ColorName)
	return preset, nil
}

func normalizeHexPtr(hex *string) *string {
	if hex == nil {
		return nil
	}
	normalized := utils.NormalizeHex(*hex)
	return &normalized
}

func (c *PresetController) DeletePreset(ctx context.Context, id uuid.UUID) error {
	log := c.log.Function("DeletePreset")

	if id == uuid.Nil {
		return log.ErrorWithType(ErrValidation, "preset id is required")
	}

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.presetRepo.Delete(ctx, tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return log.ErrorWithType(ErrNotFound, "preset not found", "presetID", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.publish(events.PRESET_DELETED, id)

	log.Info("Preset deleted", "presetID", id)
	return nil
}

func (c *PresetController) publish(messageType events.MessageType, id uuid.UUID) {
	if c.eventBus == nil {
		return
	}

	err := c.eventBus.Publish(events.STORE_CHANNEL, events.Event{
		Type: messageType,
		Data: map[string]any{"id": id.String()},
	})
	if err != nil {
		c.log.Function("publish").Warn("failed to publish event", "type", messageType, "error", err)
	}
}
