package controllers

import (
	"filadex/config"
	"filadex/internal/database"
	"filadex/internal/events"
	"filadex/internal/repositories"
	"filadex/internal/services"

	inventoryController "filadex/internal/controllers/inventory"
	ledgerController "filadex/internal/controllers/ledger"
	presetController "filadex/internal/controllers/preset"
	taxonomyController "filadex/internal/controllers/taxonomy"
)

type Controllers struct {
	Inventory inventoryController.InventoryControllerInterface
	Ledger    ledgerController.LedgerControllerInterface
	Preset    presetController.PresetControllerInterface
	Taxonomy  taxonomyController.TaxonomyControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Inventory: inventoryController.New(repos, services, eventBus, config, db),
		Ledger:    ledgerController.New(repos, services, eventBus, config, db),
		Preset:    presetController.New(repos, services, eventBus, config, db),
		Taxonomy:  taxonomyController.New(repos, services, eventBus, config, db),
	}
}
