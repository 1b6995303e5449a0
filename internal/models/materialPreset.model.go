package models

import (
	"filadex/internal/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaterialPreset is a reusable named color template scoped to a taxonomy
// triple. Presets prefill new materials and never touch existing inventory;
// duplicate color names under one triple are allowed.
type MaterialPreset struct {
	BaseUUIDModel
	Brand        string `gorm:"type:text;not null;index:idx_presets_taxonomy" json:"brand"`
	MainCategory string `gorm:"type:text;not null;index:idx_presets_taxonomy" json:"mainCategory"`
	SubCategory  string `gorm:"type:text;not null;index:idx_presets_taxonomy" json:"subCategory"`
	ColorName    string `gorm:"type:text;not null"                            json:"colorName"`

	ColorHex         string                      `gorm:"type:text" json:"colorHex"`
	GradientStartHex *string                     `gorm:"type:text" json:"gradientStartHex,omitempty"`
	GradientEndHex   *string                     `gorm:"type:text" json:"gradientEndHex,omitempty"`
	GradientStops    datatypes.JSONSlice[string] `gorm:"type:json" json:"gradientStops,omitempty"`
}

func (p *MaterialPreset) BeforeCreate(tx *gorm.DB) error {
	if err := p.BaseUUIDModel.BeforeCreate(tx); err != nil {
		return err
	}
	if p.Brand == "" || p.MainCategory == "" || p.SubCategory == "" || p.ColorName == "" {
		return gorm.ErrInvalidValue
	}
	if len(p.GradientStops) == 1 {
		return gorm.ErrInvalidValue
	}
	for _, stop := range p.GradientStops {
		if !utils.ValidHex(stop) {
			return gorm.ErrInvalidValue
		}
	}
	if p.ColorHex != "" && !utils.ValidHex(p.ColorHex) {
		return gorm.ErrInvalidValue
	}
	return nil
}

// ColorStops resolves colors the same way Material does: multi-stop list
// first, legacy pair second, solid color last.
func (p *MaterialPreset) ColorStops() []string {
	if len(p.GradientStops) >= 2 {
		return p.GradientStops
	}
	if p.GradientStartHex != nil && p.GradientEndHex != nil {
		return []string{*p.GradientStartHex, *p.GradientEndHex}
	}
	if p.ColorHex != "" {
		return []string{p.ColorHex}
	}
	return nil
}

func (p *MaterialPreset) SwatchHex() string {
	return utils.MidpointHex(p.ColorStops())
}
