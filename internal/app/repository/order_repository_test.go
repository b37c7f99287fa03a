package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/internal/db"
	apperrors "github.com/ikkim/lego-inventory-backend/internal/errors"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, NewOrderRepository(testDB)
}

func newDetails(orderID int64) *model.OrderDetails {
	return &model.OrderDetails{
		OrderID:      orderID,
		OrderDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Seller:       "brickshop",
		BaseCurrency: "USD",
		OrderTotal:   model.Money{Amount: 12.5, Currency: "USD"},
	}
}

func newItems(n int) []model.OrderItem {
	items := make([]model.OrderItem, n)
	for i := range items {
		items[i] = model.OrderItem{
			Condition:       model.ConditionNew,
			ItemDescription: "Brick",
			Qty:             i + 1,
			Each:            0.1,
			ItemNumber:      "3001",
		}
	}
	return items
}

func TestOrderRepository_Create(t *testing.T) {
	_, repo := setupOrderTest(t)
	ctx := context.Background()

	items := newItems(3)
	order, err := repo.Create(ctx, newDetails(1001), items)
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.NotZero(t, order.OrderDetailsID)
	assert.Len(t, order.Items, 3)
	assert.Zero(t, items[0].OrderID, "input items are copied, not mutated")

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), found.OrderDetails.OrderID)
	assert.Equal(t, 12.5, found.OrderDetails.OrderTotal.Amount)
	require.Len(t, found.Items, 3)
	for i, item := range found.Items {
		assert.Equal(t, i, item.Position)
		assert.Equal(t, i+1, item.Qty)
	}
}

func TestOrderRepository_CreateDuplicateWritesNothing(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, newDetails(1001), newItems(1))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newDetails(1001), newItems(2))
	require.Error(t, err)
	assert.True(t, apperrors.IsUniqueViolation(err))

	var orders, items int64
	testDB.Model(&model.Order{}).Count(&orders)
	testDB.Model(&model.OrderItem{}).Count(&items)
	assert.Equal(t, int64(1), orders)
	assert.Equal(t, int64(1), items)
}

func TestOrderRepository_CreateDuplicateLogsWarning(t *testing.T) {
	_, repo := setupOrderTest(t)
	ctx := context.Background()

	var buf bytes.Buffer
	logger.Initialize(logger.Config{Level: "warn", Format: "json", Output: &buf})
	t.Cleanup(func() {
		logger.Initialize(logger.Config{Level: "info", Format: "console"})
	})

	_, err := repo.Create(ctx, newDetails(1001), newItems(1))
	require.NoError(t, err)
	require.Zero(t, buf.Len())

	_, err = repo.Create(ctx, newDetails(1001), newItems(1))
	require.Error(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Failed to create order in database", entry["message"])
	assert.Equal(t, float64(1001), entry["order_id"])
	assert.NotEmpty(t, entry["error"])
}

func TestOrderRepository_ExistsByOrderID(t *testing.T) {
	_, repo := setupOrderTest(t)
	ctx := context.Background()

	exists, err := repo.ExistsByOrderID(ctx, 1001)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Create(ctx, newDetails(1001), nil)
	require.NoError(t, err)

	exists, err = repo.ExistsByOrderID(ctx, 1001)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOrderRepository_UpdateReplacesItems(t *testing.T) {
	_, repo := setupOrderTest(t)
	ctx := context.Background()

	order, err := repo.Create(ctx, newDetails(1001), newItems(3))
	require.NoError(t, err)

	order.OrderDetails.Seller = "another shop"
	order.Items = []model.OrderItem{{Condition: model.ConditionUsed, ItemDescription: "Plate", Qty: 9}}
	require.NoError(t, repo.Update(ctx, order, true))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "another shop", found.OrderDetails.Seller)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Plate", found.Items[0].ItemDescription)
	assert.Equal(t, model.ConditionUsed, found.Items[0].Condition)
}

func TestOrderRepository_UpdateKeepsItems(t *testing.T) {
	_, repo := setupOrderTest(t)
	ctx := context.Background()

	order, err := repo.Create(ctx, newDetails(1001), newItems(2))
	require.NoError(t, err)

	order.OrderDetails.TrackingNo = "TRACK-1"
	order.Items = nil
	require.NoError(t, repo.Update(ctx, order, false))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "TRACK-1", found.OrderDetails.TrackingNo)
	assert.Len(t, found.Items, 2)
}

func TestOrderRepository_DeleteRemovesDetails(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	ctx := context.Background()

	order, err := repo.Create(ctx, newDetails(1001), newItems(2))
	require.NoError(t, err)
	kept, err := repo.Create(ctx, newDetails(1002), newItems(1))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, order.ID))

	var details, items int64
	testDB.Model(&model.OrderDetails{}).Count(&details)
	testDB.Model(&model.OrderItem{}).Count(&items)
	assert.Equal(t, int64(1), details)
	assert.Equal(t, int64(1), items)

	orders, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, kept.ID, orders[0].ID)

	assert.ErrorIs(t, repo.Delete(ctx, order.ID), gorm.ErrRecordNotFound)
}
