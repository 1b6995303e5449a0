package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMaterial() *Material {
	return &Material{
		Brand:              "Bambu Lab",
		MainCategory:       "PLA",
		SubCategory:        "Matte",
		Name:               "Matte Ivory White",
		Price:              decimal.NewFromInt(100),
		InitialWeightGrams: 1000,
		ColorHex:           "#e6dddb",
	}
}

func TestMaterialBeforeCreate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Material)
		expectError bool
	}{
		{name: "Valid solid color", mutate: func(m *Material) {}},
		{
			name: "Valid multi-stop gradient",
			mutate: func(m *Material) {
				m.ColorHex = ""
				m.GradientStops = datatypes.JSONSlice[string]{"#ff0000", "#00ff00", "#0000ff"}
			},
		},
		{
			name: "Valid legacy gradient pair",
			mutate: func(m *Material) {
				m.ColorHex = ""
				start, end := "#ff0000", "#0000ff"
				m.GradientStartHex = &start
				m.GradientEndHex = &end
			},
		},
		{
			name:        "Missing brand",
			mutate:      func(m *Material) { m.Brand = "" },
			expectError: true,
		},
		{
			name:        "Zero price",
			mutate:      func(m *Material) { m.Price = decimal.Zero },
			expectError: true,
		},
		{
			name:        "Negative price",
			mutate:      func(m *Material) { m.Price = decimal.NewFromInt(-5) },
			expectError: true,
		},
		{
			name:        "Non-positive initial weight",
			mutate:      func(m *Material) { m.InitialWeightGrams = 0 },
			expectError: true,
		},
		{
			name:        "No color at all",
			mutate:      func(m *Material) { m.ColorHex = "" },
			expectError: true,
		},
		{
			name:        "Malformed solid hex",
			mutate:      func(m *Material) { m.ColorHex = "#zzz" },
			expectError: true,
		},
		{
			name: "Single gradient stop",
			mutate: func(m *Material) {
				m.GradientStops = datatypes.JSONSlice[string]{"#ff0000"}
			},
			expectError: true,
		},
		{
			name: "Malformed gradient stop",
			mutate: func(m *Material) {
				m.GradientStops = datatypes.JSONSlice[string]{"#ff0000", "bad"}
			},
			expectError: true,
		},
		{
			name:        "Remaining above initial",
			mutate:      func(m *Material) { m.RemainingWeightGrams = 1500 },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			material := validMaterial()
			tt.mutate(material)

			err := material.BeforeCreate(nil)
			if tt.expectError {
				assert.ErrorIs(t, err, gorm.ErrInvalidValue)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaterialBeforeCreateDefaults(t *testing.T) {
	material := validMaterial()
	require.NoError(t, material.BeforeCreate(nil))

	assert.Equal(t, material.InitialWeightGrams, material.RemainingWeightGrams)
	assert.Equal(t, DefaultCurrency, material.PriceCurrency)
	assert.False(t, material.PurchaseDate.IsZero())
	assert.NotEqual(t, "", material.ID.String())
}

func TestColorStopsPrecedence(t *testing.T) {
	start, end := "#111111", "#222222"

	material := validMaterial()
	material.GradientStartHex = &start
	material.GradientEndHex = &end
	material.GradientStops = datatypes.JSONSlice[string]{"#aaaaaa", "#bbbbbb", "#cccccc"}

	// Multi-stop list wins over the legacy pair and the solid color
	assert.Equal(t, []string{"#aaaaaa", "#bbbbbb", "#cccccc"}, material.ColorStops())
	assert.True(t, material.IsGradient())

	material.GradientStops = nil
	assert.Equal(t, []string{"#111111", "#222222"}, material.ColorStops())

	material.GradientStartHex = nil
	material.GradientEndHex = nil
	assert.Equal(t, []string{"#e6dddb"}, material.ColorStops())
	assert.False(t, material.IsGradient())
}

func TestUnitPrice(t *testing.T) {
	material := validMaterial()
	material.Price = decimal.NewFromInt(100)
	material.InitialWeightGrams = 1000

	assert.True(t, decimal.RequireFromString("0.1").Equal(material.UnitPrice()))

	material.InitialWeightGrams = 0
	assert.True(t, material.UnitPrice().IsZero())
}

func TestAvailabilityAndUsage(t *testing.T) {
	material := validMaterial()
	material.RemainingWeightGrams = 1000

	assert.True(t, material.IsAvailable())
	assert.False(t, material.IsOpened())
	assert.Equal(t, 0.0, material.UsedWeightGrams())

	material.RemainingWeightGrams = 400
	assert.True(t, material.IsAvailable())
	assert.True(t, material.IsOpened())
	assert.Equal(t, 600.0, material.UsedWeightGrams())

	material.RemainingWeightGrams = 0
	assert.False(t, material.IsAvailable())
	assert.True(t, material.IsOpened())
}
