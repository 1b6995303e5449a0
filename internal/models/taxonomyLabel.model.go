package models

import "gorm.io/gorm"

type TaxonomyKind string

const (
	TaxonomyKindBrand        TaxonomyKind = "brand"
	TaxonomyKindMainCategory TaxonomyKind = "mainCategory"
	TaxonomyKindSubCategory  TaxonomyKind = "subCategory"
)

// SentinelCustomLabel is the literal label meaning "user will type a custom
// value now". It is seeded into every kind and always sorts last.
const SentinelCustomLabel = "Custom"

// SentinelSort keeps the sentinel after every real label.
const SentinelSort = 9999

// TaxonomyLabel is one entry of the brand / main-category / sub-category
// vocabulary. Labels are value data: once introduced they persist for reuse
// even after every referencing material or preset is gone.
type TaxonomyLabel struct {
	BaseModel
	Kind    TaxonomyKind `gorm:"type:text;not null;uniqueIndex:idx_taxonomy_kind_name" json:"kind"`
	Name    string       `gorm:"type:text;not null;uniqueIndex:idx_taxonomy_kind_name" json:"name"`
	Builtin bool         `gorm:"type:bool;default:false;not null"                      json:"builtin"`
	Sort    int          `gorm:"type:int;default:0;not null"                           json:"sort"`
}

func (l *TaxonomyLabel) BeforeCreate(tx *gorm.DB) error {
	if l.Kind == "" || l.Name == "" {
		return gorm.ErrInvalidValue
	}
	return nil
}

func (l *TaxonomyLabel) IsSentinel() bool {
	return l.Name == SentinelCustomLabel
}

// ValidTaxonomyKind reports whether the kind names one of the three label sets.
func ValidTaxonomyKind(kind TaxonomyKind) bool {
	switch kind {
	case TaxonomyKindBrand, TaxonomyKindMainCategory, TaxonomyKindSubCategory:
		return true
	}
	return false
}

// BuiltinTaxonomy is the seeded vocabulary per kind, sentinel excluded.
var BuiltinTaxonomy = map[TaxonomyKind][]string{
	TaxonomyKindBrand: {
		"Bambu Lab", "eSUN", "Polymaker", "SUNLU", "Overture", "Kingroon",
	},
	TaxonomyKindMainCategory: {
		"PLA", "PETG", "ABS", "TPU", "PLA-CF", "PETG-CF",
	},
	TaxonomyKindSubCategory: {
		"Basic", "Matte", "Silk", "Gradient", "Translucent", "Sparkle",
	},
}
