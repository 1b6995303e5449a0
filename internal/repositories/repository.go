package repositories

import (
	"filadex/internal/database"
)

type Repository struct {
	Material    MaterialRepository
	Preset      PresetRepository
	PrintRecord PrintRecordRepository
	Taxonomy    TaxonomyRepository
}

func New(db database.DB) Repository {
	return Repository{
		Material:    NewMaterialRepository(db.Cache.General),
		Preset:      NewPresetRepository(db.Cache.General),
		PrintRecord: NewPrintRecordRepository(),
		Taxonomy:    NewTaxonomyRepository(),
	}
}
