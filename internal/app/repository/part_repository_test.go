package repository

import (
	"context"
	"testing"

	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/internal/db"
	apperrors "github.com/ikkim/lego-inventory-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPartTest(t *testing.T) (*gorm.DB, PartRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, NewPartRepository(testDB)
}

func newPart(itemID int64, partID, name string) *model.Part {
	return &model.Part{
		ItemID:     itemID,
		PartID:     partID,
		Name:       name,
		Quantity:   1,
		BsStandard: model.BsStandardBS,
	}
}

func TestPartRepository_CreateRejectsDuplicateKey(t *testing.T) {
	_, repo := setupPartTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newPart(1, "3001", "Brick 2x4")))

	err := repo.Create(ctx, newPart(1, "3001", "Brick 2x4 again"))
	require.Error(t, err)
	assert.True(t, apperrors.IsUniqueViolation(err))
}

func TestPartRepository_UpsertUpdatesExistingRow(t *testing.T) {
	testDB, repo := setupPartTest(t)
	ctx := context.Background()

	first := newPart(1, "3001", "Brick 2x4")
	first.Inventory = 7
	require.NoError(t, repo.Upsert(ctx, first, []string{"name", "weight", "updated_at"}))
	require.NotZero(t, first.ID)

	second := newPart(1, "3001", "Brick 2 x 4")
	second.Weight = 2.3
	second.Inventory = 0
	require.NoError(t, repo.Upsert(ctx, second, []string{"name", "weight", "updated_at"}))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Brick 2 x 4", second.Name)
	assert.Equal(t, 2.3, second.Weight)
	assert.Equal(t, 7, second.Inventory, "columns outside the update list keep their stored value")

	var count int64
	testDB.Model(&model.Part{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestPartRepository_FindByKey(t *testing.T) {
	_, repo := setupPartTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newPart(2, "3020", "Plate 2x4")))

	found, err := repo.FindByKey(ctx, 2, "3020")
	require.NoError(t, err)
	assert.Equal(t, "Plate 2x4", found.Name)

	_, err = repo.FindByKey(ctx, 2, "9999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPartRepository_UpdateFields(t *testing.T) {
	_, repo := setupPartTest(t)
	ctx := context.Background()

	part := newPart(1, "3001", "Brick")
	require.NoError(t, repo.Create(ctx, part))

	require.NoError(t, repo.UpdateFields(ctx, part.ID, map[string]interface{}{"color": "Red", "inventory": 4}))

	found, err := repo.FindByID(ctx, part.ID)
	require.NoError(t, err)
	assert.Equal(t, "Red", found.Color)
	assert.Equal(t, 4, found.Inventory)

	err = repo.UpdateFields(ctx, 999, map[string]interface{}{"color": "Blue"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPartRepository_BulkUpdateFields(t *testing.T) {
	_, repo := setupPartTest(t)
	ctx := context.Background()

	a := newPart(1, "3001", "Brick")
	b := newPart(2, "3002", "Brick 2x3")
	c := newPart(3, "3003", "Brick 2x2")
	for _, p := range []*model.Part{a, b, c} {
		require.NoError(t, repo.Create(ctx, p))
	}

	matched, err := repo.BulkUpdateFields(ctx, []uint{a.ID, c.ID, 999}, map[string]interface{}{"ordered": 5})
	require.NoError(t, err)
	assert.Equal(t, int64(2), matched)

	parts, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, 5, parts[0].Ordered)
	assert.Equal(t, 0, parts[1].Ordered)
	assert.Equal(t, 5, parts[2].Ordered)
}

func TestPartRepository_DeleteRemovesSetSlots(t *testing.T) {
	testDB, repo := setupPartTest(t)
	ctx := context.Background()

	part := newPart(1, "3001", "Brick")
	require.NoError(t, repo.Create(ctx, part))

	set := &model.LegoSet{SetID: "SET-0001", SetName: "Castle", NumberOfSets: 1, XValue: 1, YValue: 1}
	require.NoError(t, NewLegoSetRepository(testDB).Create(ctx, set, []uint{part.ID}))

	require.NoError(t, repo.Delete(ctx, part.ID))

	var slots int64
	testDB.Model(&model.LegoSetPart{}).Count(&slots)
	assert.Zero(t, slots)

	var sets int64
	testDB.Model(&model.LegoSet{}).Count(&sets)
	assert.Equal(t, int64(1), sets)

	assert.ErrorIs(t, repo.Delete(ctx, part.ID), gorm.ErrRecordNotFound)
}

func TestPartRepository_FindOrphans(t *testing.T) {
	testDB, repo := setupPartTest(t)
	ctx := context.Background()

	used := newPart(1, "3001", "Brick")
	orphan := newPart(2, "3002", "Loose brick")
	require.NoError(t, repo.Create(ctx, used))
	require.NoError(t, repo.Create(ctx, orphan))

	set := &model.LegoSet{SetID: "SET-0001", SetName: "Castle", NumberOfSets: 1, XValue: 1, YValue: 1}
	require.NoError(t, NewLegoSetRepository(testDB).Create(ctx, set, []uint{used.ID}))

	orphans, err := repo.FindOrphans(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, orphan.ID, orphans[0].ID)
}
