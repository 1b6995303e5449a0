package inventoryController

import (
	"context"
	"errors"
	"time"

	"filadex/config"
	"filadex/internal/database"
	"filadex/internal/events"
	"filadex/internal/logger"
	. "filadex/internal/models"
	"filadex/internal/repositories"
	"filadex/internal/services"
	"filadex/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

type InventoryController struct {
	materialRepo       repositories.MaterialRepository
	taxonomyRepo       repositories.TaxonomyRepository
	transactionService *services.TransactionService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

type AddMaterialRequest struct {
	Brand                string   `json:"brand"                      validate:"required"`
	MainCategory         string   `json:"mainCategory"               validate:"required"`
	SubCategory          string   `json:"subCategory"                validate:"required"`
	Name                 string   `json:"name"                       validate:"required"`
	ShortCode            *string  `json:"shortCode,omitempty"`
	PurchaseDate         *string  `json:"purchaseDate,omitempty"`
	PriceCurrency        string   `json:"priceCurrency,omitempty"`
	Price                string   `json:"price"                      validate:"required"`
	InitialWeightGrams   float64  `json:"initialWeightGrams"         validate:"required"`
	RemainingWeightGrams *float64 `json:"remainingWeightGrams,omitempty"`
	ColorHex             string   `json:"colorHex,omitempty"`
	GradientStartHex     *string  `json:"gradientStartHex,omitempty"`
	GradientEndHex       *string  `json:"gradientEndHex,omitempty"`
	GradientStops        []string `json:"gradientStops,omitempty"`
}

type UpdateMaterialRequest struct {
	Brand        *string `json:"brand,omitempty"`
	MainCategory *string `json:"mainCategory,omitempty"`
	SubCategory  *string `json:"subCategory,omitempty"`
	Name         *string `json:"name,omitempty"`
	ShortCode    *string `json:"shortCode,omitempty"`
	PurchaseDate *string `json:"purchaseDate,omitempty"`
	Price        *string `json:"price,omitempty"`
	ColorHex     *string `json:"colorHex,omitempty"`
}

type InventoryControllerInterface interface {
	GetMaterials(ctx context.Context) ([]*Material, error)
	GetAvailableMaterials(ctx context.Context) ([]*Material, error)
	GetMaterial(ctx context.Context, id uuid.UUID) (*Material, error)
	AddMaterial(ctx context.Context, request *AddMaterialRequest) (*Material, error)
	UpdateMaterial(
		ctx context.Context,
		id uuid.UUID,
		request *UpdateMaterialRequest,
	) (*Material, error)
	DeleteMaterial(ctx context.Context, id uuid.UUID) error
	MarkAsDepleted(ctx context.Context, id uuid.UUID) (*Material, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) InventoryControllerInterface {
	return &InventoryController{
		materialRepo:       repos.Material,
		taxonomyRepo:       repos.Taxonomy,
		transactionService: services.Transaction,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
		log:                logger.New("inventoryController"),
	}
}

func (c *InventoryController) GetMaterials(ctx context.Context) ([]*Material, error) {
	log := c.log.Function("GetMaterials")

	materials, err := c.materialRepo.GetAll(ctx, c.db.SQL)
	if err != nil {
		return nil, log.Err("failed to get materials", err)
	}

	return materials, nil
}

func (c *InventoryController) GetAvailableMaterials(ctx context.Context) ([]*Material, error) {
	log := c.log.Function("GetAvailableMaterials")

	materials, err := c.materialRepo.GetAvailable(ctx, c.db.SQL)
	if err != nil {
		return nil, log.Err("failed to get available materials", err)
	}

	return materials, nil
}

func (c *InventoryController) GetMaterial(ctx context.Context, id uuid.UUID) (*Material, error) {
	log := c.log.Function("GetMaterial")

	material, err := c.materialRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, log.ErrorWithType(ErrNotFound, "material not found", "materialID", id)
		}
		return nil, log.Err("failed to get material", err, "materialID", id)
	}

	return material, nil
}

// AddMaterial registers a new spool. Taxonomy labels referenced by the spool
// are created on first use, so a custom brand typed once is selectable for
// every later spool.
func (c *InventoryController) AddMaterial(
	ctx context.Context,
	request *AddMaterialRequest,
) (*Material, error) {
	log := c.log.Function("AddMaterial")

	material, err := c.materialFromRequest(request)
	if err != nil {
		return nil, err
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		for kind, name := range map[TaxonomyKind]string{
			TaxonomyKindBrand:        material.Brand,
			TaxonomyKindMainCategory: material.MainCategory,
			TaxonomyKindSubCategory:  material.SubCategory,
		} {
			if _, err := c.taxonomyRepo.EnsureLabel(ctx, tx, kind, name); err != nil {
				return err
			}
		}

		if err := c.materialRepo.Create(ctx, tx, material); err != nil {
			if errors.Is(err, gorm.ErrInvalidValue) {
				return log.ErrorWithType(ErrValidation, "invalid material", "name", material.Name)
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(events.MATERIAL_CREATED, material.ID)

	log.Info("Material added", "materialID", material.ID, "name", material.Name)
	return material, nil
}

func (c *InventoryController) materialFromRequest(
	request *AddMaterialRequest,
) (*Material, error) {
	log := c.log.Function("materialFromRequest")

	if request.Brand == "" || request.MainCategory == "" || request.SubCategory == "" {
		return nil, log.ErrorWithType(ErrValidation, "brand, mainCategory and subCategory are required")
	}
	if request.Name == "" {
		return nil, log.ErrorWithType(ErrValidation, "name is required")
	}

	price, err := decimal.NewFromString(request.Price)
	if err != nil {
		return nil, log.ErrorWithType(ErrValidation, "invalid price", "price", request.Price)
	}
	if !price.IsPositive() {
		return nil, log.ErrorWithType(ErrValidation, "price must be positive", "price", request.Price)
	}

	if request.InitialWeightGrams <= 0 {
		return nil, log.ErrorWithType(
			ErrValidation,
			"initialWeightGrams must be positive",
			"initialWeightGrams", request.InitialWeightGrams,
		)
	}

	material := &Material{
		Brand:              request.Brand,
		MainCategory:       request.MainCategory,
		SubCategory:        request.SubCategory,
		Name:               request.Name,
		ShortCode:          request.ShortCode,
		PriceCurrency:      request.PriceCurrency,
		Price:              price,
		InitialWeightGrams: request.InitialWeightGrams,
		ColorHex:           utils.NormalizeHex(request.ColorHex),
		GradientStartHex:   normalizeHexPtr(request.GradientStartHex),
		GradientEndHex:     normalizeHexPtr(request.GradientEndHex),
		GradientStops:      datatypes.NewJSONSlice(utils.NormalizeHexSlice(request.GradientStops)),
	}

	if request.RemainingWeightGrams != nil {
		if *request.RemainingWeightGrams <= 0 ||
			*request.RemainingWeightGrams > request.InitialWeightGrams {
			return nil, log.ErrorWithType(
				ErrValidation,
				"remainingWeightGrams must be greater than 0 and at most initialWeightGrams; register the spool and mark it depleted to record an empty one",
			)
		}
		material.RemainingWeightGrams = *request.RemainingWeightGrams
	}

	if request.PurchaseDate != nil {
		purchaseDate, err := time.Parse(time.RFC3339, *request.PurchaseDate)
		if err != nil {
			return nil, log.ErrorWithType(ErrValidation, "invalid purchaseDate", "error", err)
		}
		material.PurchaseDate = purchaseDate
	}

	if len(material.ColorStops()) == 0 {
		return nil, log.ErrorWithType(ErrValidation, "a color or gradient is required")
	}
	if len(request.GradientStops) == 1 {
		return nil, log.ErrorWithType(ErrValidation, "a gradient needs at least two stops")
	}
	for _, stop := range material.ColorStops() {
		if !utils.ValidHex(stop) {
			return nil, log.ErrorWithType(ErrValidation, "invalid color hex", "hex", stop)
		}
	}

	return material, nil
}

func normalizeHexPtr(hex *string) *string {
	if hex == nil {
		return nil
	}
	normalized := utils.NormalizeHex(*hex)
	return &normalized
}

// UpdateMaterial patches descriptive fields. Price changes take effect
// immediately for every record costed against this spool because cost is
// always derived from the current material row.
func (c *InventoryController) UpdateMaterial(
	ctx context.Context,
	id uuid.UUID,
	request *UpdateMaterialRequest,
) (*Material, error) {
	log := c.log.Function("UpdateMaterial")

	if id == uuid.Nil {
		return nil, log.ErrorWithType(ErrValidation, "material id is required")
	}

	updates := make(map[string]any)

	if request.Brand != nil {
		updates["brand"] = *request.Brand
	}
	if request.MainCategory != nil {
		updates["main_category"] = *request.MainCategory
	}
	if request.SubCategory != nil {
		updates["sub_category"] = *request.SubCategory
	}
	if request.Name != nil {
		if *request.Name == "" {
			return nil, log.ErrorWithType(ErrValidation, "name cannot be empty")
		}
		updates["name"] = *request.Name
	}
	if request.ShortCode != nil {
		updates["short_code"] = *request.ShortCode
	}
	if request.PurchaseDate != nil {
		purchaseDate, err := time.Parse(time.RFC3339, *request.PurchaseDate)
		if err != nil {
			return nil, log.ErrorWithType(ErrValidation, "invalid purchaseDate", "error", err)
		}
		updates["purchase_date"] = purchaseDate
	}
	if request.Price != nil {
		price, err := decimal.NewFromString(*request.Price)
		if err != nil || !price.IsPositive() {
			return nil, log.ErrorWithType(ErrValidation, "invalid price", "price", *request.Price)
		}
		updates["price"] = price
	}
	if request.ColorHex != nil {
		hex := utils.NormalizeHex(*request.ColorHex)
		if !utils.ValidHex(hex) {
			return nil, log.ErrorWithType(ErrValidation, "invalid color hex", "hex", *request.ColorHex)
		}
		updates["color_hex"] = hex
	}

	if len(updates) == 0 {
		return nil, log.ErrorWithType(ErrValidation, "no fields to update")
	}

	var material *Material
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		updated, err := c.materialRepo.Update(ctx, tx, id, updates)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return log.ErrorWithType(ErrNotFound, "material not found", "materialID", id)
			}
			return err
		}
		material = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(events.MATERIAL_UPDATED, id)

	log.Info("Material updated", "materialID", id)
	return material, nil
}

// DeleteMaterial removes a spool. Print records that reference it survive as
// orphans; their listed weights stay and their cost contribution drops to
// zero.
func (c *InventoryController) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	log := c.log.Function("DeleteMaterial")

	if id == uuid.Nil {
		return log.ErrorWithType(ErrValidation, "material id is required")
	}

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.materialRepo.Delete(ctx, tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return log.ErrorWithType(ErrNotFound, "material not found", "materialID", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.publish(events.MATERIAL_DELETED, id)

	log.Info("Material deleted", "materialID", id)
	return nil
}

// MarkAsDepleted forces the remaining weight to zero regardless of the
// current value, for spools that ran out off the books.
func (c *InventoryController) MarkAsDepleted(ctx context.Context, id uuid.UUID) (*Material, error) {
	log := c.log.Function("MarkAsDepleted")

	if id == uuid.Nil {
		return nil, log.ErrorWithType(ErrValidation, "material id is required")
	}

	var material *Material
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.materialRepo.SetRemainingWeight(ctx, tx, id, 0); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return log.ErrorWithType(ErrNotFound, "material not found", "materialID", id)
			}
			return err
		}

		depleted, err := c.materialRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		material = depleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(events.MATERIAL_DEPLETED, id)

	log.Info("Material marked as depleted", "materialID", id)
	return material, nil
}

func (c *InventoryController) publish(messageType events.MessageType, id uuid.UUID) {
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
