package taxonomyController

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

	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

type TaxonomyController struct {
	taxonomyRepo       repositories.TaxonomyRepository
	transactionService *services.TransactionService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

type AddCustomLabelRequest struct {
	Name string `json:"name" validate:"required"`
}

type TaxonomyControllerInterface interface {
	GetLabels(ctx context.Context, kind TaxonomyKind) ([]*TaxonomyLabel, error)
	AddCustomLabel(
		ctx context.Context,
		kind TaxonomyKind,
		request *AddCustomLabelRequest,
	) (*TaxonomyLabel, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) TaxonomyControllerInterface {
	return &TaxonomyController{
		taxonomyRepo:       repos.Taxonomy,
		transactionService: services.Transaction,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
		log:                logger.New("taxonomyController"),
	}
}

func (c *TaxonomyController) GetLabels(
	ctx context.Context,
	kind TaxonomyKind,
) ([]*TaxonomyLabel, error) {
	log := c.log.Function("GetLabels")

	if !ValidTaxonomyKind(kind) {
		return nil, log.ErrorWithType(ErrNotFound, "unknown taxonomy kind", "kind", kind)
	}

	labels, err := c.taxonomyRepo.GetByKind(ctx, c.db.SQL, kind)
	if err != nil {
		return nil, log.Err("failed to get taxonomy labels", err, "kind", kind)
	}

	return labels, nil
}

// AddCustomLabel registers a user-typed label. Re-adding an existing name is
// a no-op returning the existing label, and the sentinel stays last because
// new labels sort below it.
func (c *TaxonomyController) AddCustomLabel(
	ctx context.Context,
	kind TaxonomyKind,
	request *AddCustomLabelRequest,
) (*TaxonomyLabel, error) {
	log := c.log.Function("AddCustomLabel")

	if !ValidTaxonomyKind(kind) {
		return nil, log.ErrorWithType(ErrNotFound, "unknown taxonomy kind", "kind", kind)
	}

	name := strings.TrimSpace(request.Name)
	if name == "" {
		return nil, log.ErrorWithType(ErrValidation, "name is required")
	}
	if name == SentinelCustomLabel {
		return nil, log.ErrorWithType(ErrValidation, "name is reserved", "name", name)
	}

	var label *TaxonomyLabel
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		ensured, err := c.taxonomyRepo.EnsureLabel(ctx, tx, kind, name)
		if err != nil {
			return err
		}
		label = ensured
		return nil
	})
	if err != nil {
		return nil, err
	}

	if c.eventBus != nil {
		err := c.eventBus.Publish(events.STORE_CHANNEL, events.Event{
			Type: events.LABEL_ADDED,
			Data: map[string]any{"kind": string(kind), "name": name},
		})
		if err != nil {
			log.Warn("failed to publish event", "error", err)
		}
	}

	log.Info("Custom label ensured", "kind", kind, "name", name)
	return label, nil
}
