package taxonomyController

import (
	"context"
	"fmt"
	"testing"

	"filadex/config"
	"filadex/internal/database"
	. "filadex/internal/models"
	"filadex/internal/repositories"
	"filadex/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) TaxonomyControllerInterface {
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

	return New(repos, svc, nil, config.Config{}, db)
}

func labelNames(labels []*TaxonomyLabel) []string {
	names := make([]string, len(labels))
	for i, label := range labels {
		names[i] = label.Name
	}
	return names
}

func TestSeededLabels(t *testing.T) {
	controller := setupTest(t)
	ctx := context.Background()

	for _, kind := range []TaxonomyKind{
		TaxonomyKindBrand,
		TaxonomyKindMainCategory,
		TaxonomyKindSubCategory,
	} {
		labels, err := controller.GetLabels(ctx, kind)
		require.NoError(t, err)
		require.NotEmpty(t, labels)

		names := labelNames(labels)
		assert.Equal(t, SentinelCustomLabel, names[len(names)-1], "kind %s", kind)

		for _, builtin := range BuiltinTaxonomy[kind] {
			assert.Contains(t, names, builtin)
		}
	}
}

func TestAddCustomLabelIdempotent(t *testing.T) {
	controller := setupTest(t)
	ctx := context.Background()

	first, err := controller.AddCustomLabel(ctx, TaxonomyKindBrand, &AddCustomLabelRequest{
		Name: "Elegoo",
	})
	require.NoError(t, err)

	second, err := controller.AddCustomLabel(ctx, TaxonomyKindBrand, &AddCustomLabelRequest{
		Name: "Elegoo",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	labels, err := controller.GetLabels(ctx, TaxonomyKindBrand)
	require.NoError(t, err)

	names := labelNames(labels)
	occurrences := 0
	for _, name := range names {
		if name == "Elegoo" {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences)

	// New labels slot in above the sentinel, never past it.
	assert.Equal(t, SentinelCustomLabel, names[len(names)-1])
	assert.Equal(t, "Elegoo", names[len(names)-2])
}

func TestAddCustomLabelPerKind(t *testing.T) {
	controller := setupTest(t)
	ctx := context.Background()

	_, err := controller.AddCustomLabel(ctx, TaxonomyKindMainCategory, &AddCustomLabelRequest{
		Name: "ASA",
	})
	require.NoError(t, err)

	mains, err := controller.GetLabels(ctx, TaxonomyKindMainCategory)
	require.NoError(t, err)
	assert.Contains(t, labelNames(mains), "ASA")

	// The label is scoped to one kind.
	brands, err := controller.GetLabels(ctx, TaxonomyKindBrand)
	require.NoError(t, err)
	assert.NotContains(t, labelNames(brands), "ASA")
}

func TestAddCustomLabelValidation(t *testing.T) {
	controller := setupTest(t)
	ctx := context.Background()

	_, err := controller.AddCustomLabel(ctx, TaxonomyKindBrand, &AddCustomLabelRequest{Name: ""})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = controller.AddCustomLabel(ctx, TaxonomyKindBrand, &AddCustomLabelRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = controller.AddCustomLabel(ctx, TaxonomyKindBrand, &AddCustomLabelRequest{
		Name: SentinelCustomLabel,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = controller.AddCustomLabel(ctx, TaxonomyKind("flavor"), &AddCustomLabelRequest{
		Name: "Vanilla",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = controller.GetLabels(ctx, TaxonomyKind("flavor"))
	assert.ErrorIs(t, err, ErrNotFound)
}
