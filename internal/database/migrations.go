package database

import (
	"filadex/internal/logger"
	"filadex/internal/models"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.Material{},
		&models.MaterialPreset{},
		&models.PrintRecord{},
		&models.MaterialUsage{},
		&models.TaxonomyLabel{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			log.Error("Failed to migrate model", "model", model, "error", err)
			return err
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// SeedTaxonomy inserts the builtin vocabulary and the "Custom" sentinel for
// every kind. Safe to run on every start: existing labels are left alone.
func (db *DB) SeedTaxonomy() error {
	log := logger.New("database").Function("SeedTaxonomy")

	for kind, names := range models.BuiltinTaxonomy {
		for i, name := range names {
			label := models.TaxonomyLabel{
				Kind:    kind,
				Name:    name,
				Builtin: true,
				Sort:    i,
			}
			err := db.SQL.
				Where(models.TaxonomyLabel{Kind: kind, Name: name}).
				FirstOrCreate(&label).Error
			if err != nil {
				return log.Err("failed to seed taxonomy label", err, "kind", kind, "name", name)
			}
		}

		sentinel := models.TaxonomyLabel{
			Kind:    kind,
			Name:    models.SentinelCustomLabel,
			Builtin: true,
			Sort:    models.SentinelSort,
		}
		err := db.SQL.
			Where(models.TaxonomyLabel{Kind: kind, Name: models.SentinelCustomLabel}).
			FirstOrCreate(&sentinel).Error
		if err != nil {
			return log.Err("failed to seed sentinel label", err, "kind", kind)
		}
	}

	log.Info("Taxonomy seed completed")
	return nil
}
