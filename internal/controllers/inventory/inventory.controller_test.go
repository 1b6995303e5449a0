package inventoryController

import (
	"context"
	"fmt"
	"testing"
	"time"

	"filadex/config"
	"filadex/internal/database"
	. "filadex/internal/models"
	"filadex/internal/repositories"
	"filadex/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (InventoryControllerInterface, database.DB) {
	t.Helper()

	gdb, err := gorm.Open(
		sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())),
		&gorm.Config{},
	)
	require.NoError(t, err)

	db := database.DB{SQL: gdb}
	require.NoError(t, db.MigrateModels())
	require.NoError(t, db.SeedTaxonomy())

	repos := repositories.New(db)
	svc := services.Service{Transaction: services.NewTransactionService(db)}

	return New(repos, svc, nil, config.Config{}, db), db
}

func validRequest() *AddMaterialRequest {
	return &AddMaterialRequest{
		Brand:              "Bambu Lab",
		MainCategory:       "PLA",
		SubCategory:        "Matte",
		Name:               "Matte Charcoal",
		Price:              "129.00",
		InitialWeightGrams: 1000,
		ColorHex:           "#333333",
	}
}

func TestAddMaterialDefaults(t *testing.T) {
	controller, _ := setupTest(t)
	ctx := context.Background()

	material, err := controller.AddMaterial(ctx, validRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, material.ID)
	assert.Equal(t, material.InitialWeightGrams, material.RemainingWeightGrams)
	assert.Equal(t, "CNY", material.PriceCurrency)
	assert.False(t, material.PurchaseDate.IsZero())
}

func TestAddMaterialValidation(t *testing.T) {
	controller, _ := setupTest(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*AddMaterialRequest)
	}{
		{"missing brand", func(r *AddMaterialRequest) { r.Brand = "" }},
		{"missing name", func(r *AddMaterialRequest) { r.Name = "" }},
		{"non-numeric price", func(r *AddMaterialRequest) { r.Price = "abc" }},
		{"zero price", func(r *AddMaterialRequest) { r.Price = "0" }},
		{"negative price", func(r *AddMaterialRequest) { r.Price = "-5" }},
		{"zero weight", func(r *AddMaterialRequest) { r.InitialWeightGrams = 0 }},
		{"no color", func(r *AddMaterialRequest) { r.ColorHex = "" }},
		{"invalid hex", func(r *AddMaterialRequest) { r.ColorHex = "#zzzzzz" }},
		{"single gradient stop", func(r *AddMaterialRequest) {
			r.ColorHex = ""
			r.GradientStops = []string{"#ff0000"}
		}},
		{"bad purchase date", func(r *AddMaterialRequest) {
			raw := "2024-01-15 14:30:00"
			r.PurchaseDate = &raw
		}},
		{"zero remaining weight", func(r *AddMaterialRequest) {
			zero := 0.0
			r.RemainingWeightGrams = &zero
		}},
		{"negative remaining weight", func(r *AddMaterialRequest) {
			negative := -10.0
			r.RemainingWeightGrams = &negative
		}},
		{"remaining above initial", func(r *AddMaterialRequest) {
			tooMuch := r.InitialWeightGrams + 1
			r.RemainingWeightGrams = &tooMuch
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := validRequest()
			tt.mutate(request)

			_, err := controller.AddMaterial(ctx, request)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAddMaterialPartialRemaining(t *testing.T) {
	controller, db := setupTest(t)
	ctx := context.Background()

	request := validRequest()
	remaining := 250.0
	request.RemainingWeightGrams = &remaining

	material, err := controller.AddMaterial(ctx, request)
	require.NoError(t, err)

	// The provided partial weight survives creation instead of snapping
	// back to the full spool weight.
	assert.Equal(t, 250.0, material.RemainingWeightGrams)

	var stored Material
	require.NoError(t, db.SQL.First(&stored, "id = ?", material.ID).Error)
	assert.Equal(t, 250.0, stored.RemainingWeightGrams)
	assert.Equal(t, 1000.0, stored.InitialWeightGrams)
}

func TestAddMaterialRegistersCustomLabels(t *testing.T) {
	controller, db := setupTest(t)
	ctx := context.Background()

	request := validRequest()
	request.Brand = "Elegoo"

	_, err := controller.AddMaterial(ctx, request)
	require.NoError(t, err)

	var labels []TaxonomyLabel
	require.NoError(t, db.SQL.
		Where(TaxonomyLabel{Kind: TaxonomyKindBrand, Name: "Elegoo"}).
		Find(&labels).Error)
	require.Len(t, labels, 1)
	assert.Less(t, labels[0].Sort, SentinelSort)

	// A second spool under the same custom brand must not duplicate the label.
	second := validRequest()
	second.Brand = "Elegoo"
	second.Name = "PLA Red"
	second.ColorHex = "#cc0000"
	_, err = controller.AddMaterial(ctx, second)
	require.NoError(t, err)

	require.NoError(t, db.SQL.
		Where(TaxonomyLabel{Kind: TaxonomyKindBrand, Name: "Elegoo"}).
		Find(&labels).Error)
	assert.Len(t, labels, 1)
}

func TestAddMaterialGradient(t *testing.T) {
	controller, _ := setupTest(t)
	ctx := context.Background()

	request := validRequest()
	request.SubCategory = "Gradient"
	request.ColorHex = ""
	request.GradientStops = []string{"#ff0000", "#00ff00", "#0000ff"}

	material, err := controller.AddMaterial(ctx, request)
	require.NoError(t, err)

	assert.True(t, material.IsGradient())
	assert.Equal(t, []string{"#ff0000", "#00ff00", "#0000ff"}, material.ColorStops())
}

func TestAddMaterialNormalizesColors(t *testing.T) {
	controller, db := setupTest(t)
	ctx := context.Background()

	request := validRequest()
	request.SubCategory = "Gradient"
	request.ColorHex = ""
	request.GradientStops = []string{"FF0000", "#00FF00"}
	start := "FF0000"
	end := "00FF00"
	request.GradientStartHex = &start
	request.GradientEndHex = &end

	material, err := controller.AddMaterial(ctx, request)
	require.NoError(t, err)

	// Hash-less and uppercase inputs persist in the canonical "#rrggbb"
	// form so equivalent colors compare equal across spools.
	var stored Material
	require.NoError(t, db.SQL.First(&stored, "id = ?", material.ID).Error)
	assert.Equal(t, []string{"#ff0000", "#00ff00"}, []string(stored.GradientStops))
	require.NotNil(t, stored.GradientStartHex)
	require.NotNil(t, stored.GradientEndHex)
	assert.Equal(t, "#ff0000", *stored.GradientStartHex)
	assert.Equal(t, "#00ff00", *stored.GradientEndHex)
}

func TestUpdateMaterial(t *testing.T) {
	controller, _ := setupTest(t)
	ctx := context.Background()

	material, err := controller.AddMaterial(ctx, validRequest())
	require.NoError(t, err)

	newPrice := "200.00"
	newName := "Matte Graphite"
	updated, err := controller.UpdateMaterial(ctx, material.ID, &UpdateMaterialRequest{
		Price: &newPrice,
		Name:  &newName,
	})
	require.NoError(t, err)

	assert.Equal(t, "Matte Graphite", updated.Name)
	assert.Equal(t, "200", updated.Price.String())
	// Weight is untouched by descriptive updates.
	assert.Equal(t, material.RemainingWeightGrams, updated.RemainingWeightGrams)
}

func TestUpdateMaterialErrors(t *testing.T) {
	controller, _ := setupTest(t)
	ctx := context.Background()

	material, err := controller.AddMaterial(ctx, validRequest())
	require.NoError(t, err)

	_, err = controller.UpdateMaterial(ctx, material.ID, &UpdateMaterialRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	badPrice := "-10"
	_, err = controller.UpdateMaterial(ctx, material.ID, &UpdateMaterialRequest{Price: &badPrice})
	assert.ErrorIs(t, err, ErrValidation)

	name := "Ghost"
	_, err = controller.UpdateMaterial(ctx, uuid.Must(uuid.NewV7()), &UpdateMaterialRequest{
		Name: &name,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkAsDepleted(t *testing.T) {
	controller, _ := setupTest(t)
	ctx := context.Background()

	material, err := controller.AddMaterial(ctx, validRequest())
	require.NoError(t, err)
	require.Equal(t, 1000.0, material.RemainingWeightGrams)

	depleted, err := controller.MarkAsDepleted(ctx, material.ID)
	require.NoError(t, err)

	assert.Equal(t, 0.0, depleted.RemainingWeightGrams)
	assert.Equal(t, 1000.0, depleted.InitialWeightGrams)
	assert.False(t, depleted.IsAvailable())

	_, err = controller.MarkAsDepleted(ctx, uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMaterial(t *testing.T) {
	controller, _ := setupTest(t)
	ctx := context.Background()

	material, err := controller.AddMaterial(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, controller.DeleteMaterial(ctx, material.ID))

	_, err = controller.GetMaterial(ctx, material.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = controller.DeleteMaterial(ctx, material.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAvailableMaterialsOrdering(t *testing.T) {
	controller, db := setupTest(t)
	ctx := context.Background()

	addSpool := func(name string, purchased time.Time) *Material {
		request := validRequest()
		request.Name = name
		raw := purchased.Format(time.RFC3339)
		request.PurchaseDate = &raw
		material, err := controller.AddMaterial(ctx, request)
		require.NoError(t, err)
		return material
	}

	now := time.Now().UTC().Truncate(time.Second)
	sealedOld := addSpool("sealed old", now.Add(-72*time.Hour))
	sealedNew := addSpool("sealed new", now)
	opened := addSpool("opened", now.Add(-48*time.Hour))
	empty := addSpool("empty", now.Add(-24*time.Hour))

	// Open one spool partially and drain another completely.
	require.NoError(t, db.SQL.Model(&Material{}).
		Where("id = ?", opened.ID).
		Update("remaining_weight_grams", 400).Error)
	_, err := controller.MarkAsDepleted(ctx, empty.ID)
	require.NoError(t, err)

	available, err := controller.GetAvailableMaterials(ctx)
	require.NoError(t, err)

	require.Len(t, available, 3)
	// Opened spools lead regardless of purchase date, then newest first.
	assert.Equal(t, opened.ID, available[0].ID)
	assert.Equal(t, sealedNew.ID, available[1].ID)
	assert.Equal(t, sealedOld.ID, available[2].ID)
}
