package models

import (
	"time"

	"filadex/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultCurrency = "CNY"

// Material is a physical filament spool with a depletable weight counter and
// a cost basis. RemainingWeightGrams only decreases through ledger consumption
// or an explicit mark-as-depleted; deleting a print record never restores it.
type Material struct {
	BaseUUIDModel
	Brand        string    `gorm:"type:text;not null;index:idx_materials_taxonomy" json:"brand"`
	MainCategory string    `gorm:"type:text;not null;index:idx_materials_taxonomy" json:"mainCategory"`
	SubCategory  string    `gorm:"type:text;not null;index:idx_materials_taxonomy" json:"subCategory"`
	Name         string    `gorm:"type:text;not null"                              json:"name"`
	ShortCode    *string   `gorm:"type:text"                                       json:"shortCode,omitempty"`
	PurchaseDate time.Time `gorm:"type:timestamp;not null;index"                   json:"purchaseDate"`

	PriceCurrency        string          `gorm:"type:text;default:'CNY'"   json:"priceCurrency"`
	Price                decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	InitialWeightGrams   float64         `gorm:"type:real;not null"          json:"initialWeightGrams"`
	RemainingWeightGrams float64         `gorm:"type:real;not null"          json:"remainingWeightGrams"`

	// Solid spools carry ColorHex. Gradient spools keep the legacy two-stop
	// pair alongside the multi-stop list; the list is authoritative when it
	// has at least two entries.
	ColorHex         string                      `gorm:"type:text"  json:"colorHex"`
	GradientStartHex *string                     `gorm:"type:text"  json:"gradientStartHex,omitempty"`
	GradientEndHex   *string                     `gorm:"type:text"  json:"gradientEndHex,omitempty"`
	GradientStops    datatypes.JSONSlice[string] `gorm:"type:json"  json:"gradientStops,omitempty"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if err := m.BaseUUIDModel.BeforeCreate(tx); err != nil {
		return err
	}
	if m.Brand == "" || m.MainCategory == "" || m.SubCategory == "" || m.Name == "" {
		return gorm.ErrInvalidValue
	}
	if m.Price.IsNegative() || m.Price.IsZero() {
		return gorm.ErrInvalidValue
	}
	if m.InitialWeightGrams <= 0 {
		return gorm.ErrInvalidValue
	}
	if m.PriceCurrency == "" {
		m.PriceCurrency = DefaultCurrency
	}
	if m.PurchaseDate.IsZero() {
		m.PurchaseDate = time.Now()
	}
	// Zero means unset here; callers that need an empty spool go through
	// SetRemainingWeight after creation.
	if m.RemainingWeightGrams == 0 {
		m.RemainingWeightGrams = m.InitialWeightGrams
	}
	if m.RemainingWeightGrams < 0 || m.RemainingWeightGrams > m.InitialWeightGrams {
		return gorm.ErrInvalidValue
	}
	return m.validateColors()
}

func (m *Material) validateColors() error {
	if len(m.GradientStops) == 1 {
		return gorm.ErrInvalidValue
	}
	for _, stop := range m.GradientStops {
		if !utils.ValidHex(stop) {
			return gorm.ErrInvalidValue
		}
	}
	if len(m.GradientStops) == 0 && m.GradientStartHex == nil && m.ColorHex == "" {
		return gorm.ErrInvalidValue
	}
	if m.ColorHex != "" && !utils.ValidHex(m.ColorHex) {
		return gorm.ErrInvalidValue
	}
	if m.GradientStartHex != nil && !utils.ValidHex(*m.GradientStartHex) {
		return gorm.ErrInvalidValue
	}
	if m.GradientEndHex != nil && !utils.ValidHex(*m.GradientEndHex) {
		return gorm.ErrInvalidValue
	}
	return nil
}

// ColorStops resolves the authoritative color representation: the multi-stop
// list when present, otherwise the legacy start/end pair, otherwise the solid
// color as a single stop.
func (m *Material) ColorStops() []string {
	if len(m.GradientStops) >= 2 {
		return m.GradientStops
	}
	if m.GradientStartHex != nil && m.GradientEndHex != nil {
		return []string{*m.GradientStartHex, *m.GradientEndHex}
	}
	if m.ColorHex != "" {
		return []string{m.ColorHex}
	}
	return nil
}

func (m *Material) IsGradient() bool {
	return len(m.ColorStops()) >= 2
}

// SwatchHex is the single display color for compact listings.
func (m *Material) SwatchHex() string {
	return utils.MidpointHex(m.ColorStops())
}

func (m *Material) IsAvailable() bool {
	return m.RemainingWeightGrams > 0
}

// IsOpened reports whether any weight has ever been drawn from the spool.
func (m *Material) IsOpened() bool {
	return m.InitialWeightGrams-m.RemainingWeightGrams > 0
}

func (m *Material) UsedWeightGrams() float64 {
	return m.InitialWeightGrams - m.RemainingWeightGrams
}

// UnitPrice is the amortized price per gram used to cost consumed portions.
// A spool without a sane initial weight costs nothing rather than dividing
// by zero.
func (m *Material) UnitPrice() decimal.Decimal {
	if m.InitialWeightGrams <= 0 {
		return decimal.Zero
	}
	return m.Price.Div(decimal.NewFromFloat(m.InitialWeightGrams))
}
