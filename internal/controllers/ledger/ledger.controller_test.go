package ledgerController

import (
	"context"
	"fmt"
	"testing"

	"filadex/config"
	"filadex/internal/database"
	. "filadex/internal/models"
	"filadex/internal/repositories"
	"filadex/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (LedgerControllerInterface, repositories.Repository, database.DB) {
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

	return New(repos, svc, nil, config.Config{}, db), repos, db
}

func createSpool(
	t *testing.T,
	db database.DB,
	name string,
	price string,
	initialGrams float64,
) *Material {
	t.Helper()

	material := &Material{
		Brand:              "eSUN",
		MainCategory:       "PLA",
		SubCategory:        "Basic",
		Name:               name,
		Price:              decimal.RequireFromString(price),
		InitialWeightGrams: initialGrams,
		ColorHex:           "#0055aa",
	}
	require.NoError(t, db.SQL.Create(material).Error)
	return material
}

func remainingGrams(t *testing.T, db database.DB, id uuid.UUID) float64 {
	t.Helper()

	var material Material
	require.NoError(t, db.SQL.Where("id = ?", id).First(&material).Error)
	return material.RemainingWeightGrams
}

func TestCreateSingleMaterialRecord(t *testing.T) {
	controller, _, db := setupTest(t)
	ctx := context.Background()

	spool := createSpool(t, db, "PLA Blue", "100.00", 1000)

	record, err := controller.CreateSingleMaterialRecord(ctx, &CreateSingleMaterialRecordRequest{
		ModelName:      "Benchy",
		MaterialID:     spool.ID,
		RequestedGrams: 200,
	})
	require.NoError(t, err)

	require.NotNil(t, record.MaterialID)
	assert.Equal(t, spool.ID, *record.MaterialID)
	require.NotNil(t, record.MaterialName)
	assert.Equal(t, "PLA Blue", *record.MaterialName)
	require.NotNil(t, record.WeightUsedGrams)
	assert.Equal(t, 200.0, *record.WeightUsedGrams)
	assert.False(t, record.IsMultiMaterial())

	assert.Equal(t, 800.0, remainingGrams(t, db, spool.ID))
}

func TestCreateSingleMaterialRecordClamps(t *testing.T) {
	controller, _, db := setupTest(t)
	ctx := context.Background()

	spool := createSpool(t, db, "PLA Blue", "100.00", 1000)
	require.NoError(t, db.SQL.Model(&Material{}).
		Where("id = ?", spool.ID).
		Update("remaining_weight_grams", 40).Error)

	record, err := controller.CreateSingleMaterialRecord(ctx, &CreateSingleMaterialRecordRequest{
		ModelName:      "Big Vase",
		MaterialID:     spool.ID,
		RequestedGrams: 50,
	})
	require.NoError(t, err)

	// The stored weight is what was actually drawn, not what was asked for.
	require.NotNil(t, record.WeightUsedGrams)
	assert.Equal(t, 40.0, *record.WeightUsedGrams)
	assert.Equal(t, 0.0, remainingGrams(t, db, spool.ID))
}

func TestCreateSingleMaterialRecordMissingMaterial(t *testing.T) {
	controller, _, db := setupTest(t)
	ctx := context.Background()

	_, err := controller.CreateSingleMaterialRecord(ctx, &CreateSingleMaterialRecordRequest{
		ModelName:      "Benchy",
		MaterialID:     uuid.Must(uuid.NewV7()),
		RequestedGrams: 50,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.SQL.Model(&PrintRecord{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCreateMultiMaterialRecord(t *testing.T) {
	controller, _, db := setupTest(t)
	ctx := context.Background()

	spoolA := createSpool(t, db, "PLA Red", "100.00", 1000)
	spoolB := createSpool(t, db, "PLA White", "80.00", 1000)
	require.NoError(t, db.SQL.Model(&Material{}).
		Where("id = ?", spoolA.ID).
		Update("remaining_weight_grams", 40).Error)

	record, err := controller.CreateMultiMaterialRecord(ctx, &CreateMultiMaterialRecordRequest{
		ModelName: "Two-Tone Dragon",
		Usages: []UsageRequest{
			{MaterialID: spoolA.ID, RequestedGrams: 50},
			{MaterialID: spoolB.ID, RequestedGrams: 30},
		},
	})
	require.NoError(t, err)

	require.Len(t, record.Usages, 2)
	// Spool A had only 40g left, so the 50g request is clamped; B is honored.
	assert.Equal(t, 40.0, record.Usages[0].WeightUsedGrams)
	assert.Equal(t, 30.0, record.Usages[1].WeightUsedGrams)
	assert.Equal(t, 0.0, remainingGrams(t, db, spoolA.ID))
	assert.Equal(t, 970.0, remainingGrams(t, db, spoolB.ID))
	assert.Equal(t, 70.0, record.TotalWeightGrams())
}

func TestCreateMultiMaterialRecordSkipsMissing(t *testing.T) {
	controller, _, db := setupTest(t)
	ctx := context.Background()

	spool := createSpool(t, db, "PLA Red", "100.00", 1000)

	record, err := controller.CreateMultiMaterialRecord(ctx, &CreateMultiMaterialRecordRequest{
		ModelName: "Patchwork",
		Usages: []UsageRequest{
			{MaterialID: uuid.Must(uuid.NewV7()), RequestedGrams: 25},
			{MaterialID: spool.ID, RequestedGrams: 100},
		},
	})
	require.NoError(t, err)

	// The missing material is skipped, not fatal; the record keeps the rest.
	require.Len(t, record.Usages, 1)
	assert.Equal(t, spool.ID, record.Usages[0].MaterialID)
	assert.Equal(t, 900.0, remainingGrams(t, db, spool.ID))
}

func TestAddPrintRecordDoesNotConsume(t *testing.T) {
	controller, _, db := setupTest(t)
	ctx := context.Background()

	spool := createSpool(t, db, "PLA Red", "100.00", 1000)
	weight := 150.0
	name := "PLA Red"

	record, err := controller.AddPrintRecord(ctx, &AddPrintRecordRequest{
		ModelName:       "Imported Benchy",
		MaterialID:      &spool.ID,
		MaterialName:    &name,
		WeightUsedGrams: &weight,
	})
	require.NoError(t, err)

	assert.Equal(t, 150.0, record.TotalWeightGrams())
	assert.Equal(t, 1000.0, remainingGrams(t, db, spool.ID))
}

func TestDeletePrintRecordKeepsConsumption(t *testing.T) {
	controller, _, db := setupTest(t)
	ctx := context.Background()

	spool := createSpool(t, db, "PLA Red", "100.00", 1000)

	record, err := controller.CreateSingleMaterialRecord(ctx, &CreateSingleMaterialRecordRequest{
		ModelName:      "Mistake",
		MaterialID:     spool.ID,
		RequestedGrams: 300,
	})
	require.NoError(t, err)
	require.Equal(t, 700.0, remainingGrams(t, db, spool.ID))

	require.NoError(t, controller.DeletePrintRecord(ctx, record.ID))

	// Deleting the record is bookkeeping only; the spool stays drained.
	assert.Equal(t, 700.0, remainingGrams(t, db, spool.ID))

	records, err := controller.GetPrintRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	var usageCount int64
	require.NoError(t, db.SQL.Model(&MaterialUsage{}).Count(&usageCount).Error)
	assert.Equal(t, int64(0), usageCount)

	err = controller.DeletePrintRecord(ctx, record.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCostForRecordIsLive(t *testing.T) {
	controller, repos, db := setupTest(t)
	ctx := context.Background()

	spool := createSpool(t, db, "PLA Red", "100.00", 1000)

	record, err := controller.CreateSingleMaterialRecord(ctx, &CreateSingleMaterialRecordRequest{
		ModelName:      "Benchy",
		MaterialID:     spool.ID,
		RequestedGrams: 200,
	})
	require.NoError(t, err)

	cost, err := controller.GetCostForRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "20.00", cost.Cost.StringFixed(2))
	assert.Equal(t, "CNY", cost.Currency)

	// Repricing the spool retroactively changes what the record reports.
	_, err = repos.Material.Update(ctx, db.SQL, spool.ID, map[string]any{
		"price": decimal.RequireFromString("200.00"),
	})
	require.NoError(t, err)

	cost, err = controller.GetCostForRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "40.00", cost.Cost.StringFixed(2))
}

func TestGetCostForRecordOrphanedUsage(t *testing.T) {
	controller, repos, db := setupTest(t)
	ctx := context.Background()

	spoolA := createSpool(t, db, "PLA Red", "100.00", 1000)
	spoolB := createSpool(t, db, "PLA White", "50.00", 1000)

	record, err := controller.CreateMultiMaterialRecord(ctx, &CreateMultiMaterialRecordRequest{
		ModelName: "Two-Tone",
		Usages: []UsageRequest{
			{MaterialID: spoolA.ID, RequestedGrams: 100},
			{MaterialID: spoolB.ID, RequestedGrams: 100},
		},
	})
	require.NoError(t, err)

	require.NoError(t, repos.Material.Delete(ctx, db.SQL, spoolA.ID))

	// The orphaned usage still renders with its snapshot but costs nothing.
	fetched, err := controller.GetPrintRecords(ctx)
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	assert.Equal(t, 200.0, fetched[0].TotalWeightGrams())

	cost, err := controller.GetCostForRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.00", cost.Cost.StringFixed(2))
}

func TestGetCostForRecordCurrency(t *testing.T) {
	controller, _, db := setupTest(t)
	ctx := context.Background()

	spoolA := createSpool(t, db, "PLA Red", "100.00", 1000)
	spoolB := createSpool(t, db, "PLA White", "50.00", 1000)
	require.NoError(t, db.SQL.Model(&Material{}).
		Where("id = ?", spoolA.ID).
		Update("price_currency", "USD").Error)

	record, err := controller.CreateMultiMaterialRecord(ctx, &CreateMultiMaterialRecordRequest{
		ModelName: "Two-Tone",
		Usages: []UsageRequest{
			{MaterialID: spoolA.ID, RequestedGrams: 100},
			{MaterialID: spoolB.ID, RequestedGrams: 100},
		},
	})
	require.NoError(t, err)

	// The first usage's currency labels the whole record; later usages never
	// flip the label even when their spool is priced differently.
	cost, err := controller.GetCostForRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "USD", cost.Currency)
	assert.Equal(t, "15.00", cost.Cost.StringFixed(2))
}

func TestAggregateQueries(t *testing.T) {
	controller, _, db := setupTest(t)
	ctx := context.Background()

	spoolA := createSpool(t, db, "PLA Red", "100.00", 1000)
	spoolB := createSpool(t, db, "PLA White", "50.00", 500)

	_, err := controller.CreateSingleMaterialRecord(ctx, &CreateSingleMaterialRecordRequest{
		ModelName:      "First",
		MaterialID:     spoolA.ID,
		RequestedGrams: 100,
	})
	require.NoError(t, err)

	_, err = controller.CreateMultiMaterialRecord(ctx, &CreateMultiMaterialRecordRequest{
		ModelName: "Second",
		Usages: []UsageRequest{
			{MaterialID: spoolA.ID, RequestedGrams: 200},
			{MaterialID: spoolB.ID, RequestedGrams: 50},
		},
	})
	require.NoError(t, err)

	weight, err := controller.TotalConsumedWeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, 350.0, weight)

	// 300g at 0.10/g plus 50g at 0.10/g.
	cost, err := controller.TotalConsumedCost(ctx)
	require.NoError(t, err)
	assert.Equal(t, "35.00", cost.StringFixed(2))
}

func TestCreateRecordValidation(t *testing.T) {
	controller, _, db := setupTest(t)
	ctx := context.Background()

	spool := createSpool(t, db, "PLA Red", "100.00", 1000)

	_, err := controller.CreateSingleMaterialRecord(ctx, &CreateSingleMaterialRecordRequest{
		MaterialID:     spool.ID,
		RequestedGrams: 10,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = controller.CreateSingleMaterialRecord(ctx, &CreateSingleMaterialRecordRequest{
		ModelName:      "Benchy",
		MaterialID:     spool.ID,
		RequestedGrams: -1,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = controller.CreateMultiMaterialRecord(ctx, &CreateMultiMaterialRecordRequest{
		Usages: []UsageRequest{{MaterialID: spool.ID, RequestedGrams: 5}},
	})
	assert.ErrorIs(t, err, ErrValidation)
}
