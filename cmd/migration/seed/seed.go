package seed

import (
	"filadex/config"
	"filadex/internal/logger"
	. "filadex/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

// Seed loads a small development dataset: a few presets and spools to click
// around with. Production data comes in through the API, never from here.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	presets := []MaterialPreset{
		{
			Brand:        "Bambu Lab",
			MainCategory: "PLA",
			SubCategory:  "Matte",
			ColorName:    "Charcoal",
			ColorHex:     "#333333",
		},
		{
			Brand:        "eSUN",
			MainCategory: "PLA",
			SubCategory:  "Basic",
			ColorName:    "Fire Engine Red",
			ColorHex:     "#cc0000",
		},
		{
			Brand:            "SUNLU",
			MainCategory:     "PLA",
			SubCategory:      "Gradient",
			ColorName:        "Sunset",
			GradientStartHex: stringPtr("#ff8800"),
			GradientEndHex:   stringPtr("#8800ff"),
		},
	}

	for _, preset := range presets {
		if err := db.Create(&preset).Error; err != nil {
			log.Er("failed to seed preset", err, "colorName", preset.ColorName)
		}
	}

	materials := []Material{
		{
			Brand:              "Bambu Lab",
			MainCategory:       "PLA",
			SubCategory:        "Matte",
			Name:               "Matte Charcoal",
			Price:              decimal.RequireFromString("129.00"),
			InitialWeightGrams: 1000,
			ColorHex:           "#333333",
		},
		{
			Brand:              "eSUN",
			MainCategory:       "PETG",
			SubCategory:        "Translucent",
			Name:               "PETG Clear Blue",
			Price:              decimal.RequireFromString("95.00"),
			InitialWeightGrams: 1000,
			ColorHex:           "#66aadd",
		},
	}

	for _, material := range materials {
		if err := db.Create(&material).Error; err != nil {
			log.Er("failed to seed material", err, "name", material.Name)
		}
	}

	return nil
}
