package repository

import (
	"context"

	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, details *model.OrderDetails, items []model.OrderItem) (*model.Order, error)
	FindAll(ctx context.Context) ([]model.Order, error)
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	ExistsByOrderID(ctx context.Context, orderID int64) (bool, error)
	Update(ctx context.Context, order *model.Order, replaceItems bool) error
	Delete(ctx context.Context, id uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.Preload("OrderDetails").Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// positioned copies items so every order owns its own slice, numbering them in input order
func positioned(orderID uint, items []model.OrderItem) []model.OrderItem {
	out := make([]model.OrderItem, len(items))
	for i, item := range items {
		item.ID = 0
		item.OrderID = orderID
		item.Position = i
		out[i] = item
	}
	return out
}

// Create writes the details, the order and its items in one transaction.
// A duplicate orderId fails on the details insert and nothing is written.
func (r *orderRepository) Create(ctx context.Context, details *model.OrderDetails, items []model.OrderItem) (*model.Order, error) {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_id": details.OrderID,
		"items":    len(items),
	})

	var order model.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(details).Error; err != nil {
			return err
		}

		order = model.Order{OrderDetailsID: details.ID}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		if len(items) > 0 {
			order.Items = positioned(order.ID, items)
			if err := tx.Create(&order.Items).Error; err != nil {
				return err
			}
		} else {
			order.Items = []model.OrderItem{}
		}
		return nil
	})
	if err != nil {
		logWriteError("Failed to create order in database", err, map[string]interface{}{
			"order_id": details.OrderID,
		})
		return nil, err
	}
	order.OrderDetails = *details

	logger.Debug("Order created in database", map[string]interface{}{
		"id":       order.ID,
		"order_id": details.OrderID,
		"items":    len(order.Items),
	})
	return &order, nil
}

func (r *orderRepository) FindAll(ctx context.Context) ([]model.Order, error) {
	logger.Debug("Finding all orders", nil)

	var orders []model.Order
	if err := preloadOrder(r.db.WithContext(ctx)).Order("id ASC").Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders", err)
		return nil, err
	}

	logger.Debug("Orders found", map[string]interface{}{
		"count": len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID", map[string]interface{}{
		"id": id,
	})

	var order model.Order
	if err := preloadOrder(r.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find order by ID", err, map[string]interface{}{
				"id": id,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ExistsByOrderID(ctx context.Context, orderID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OrderDetails{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to look up order details", err, map[string]interface{}{
			"order_id": orderID,
		})
		return false, err
	}
	return count > 0, nil
}

// Update saves the order's details and, when replaceItems is set, swaps its item
// list for order.Items.
func (r *orderRepository) Update(ctx context.Context, order *model.Order, replaceItems bool) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"id":            order.ID,
		"order_id":      order.OrderDetails.OrderID,
		"replace_items": replaceItems,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&order.OrderDetails).Error; err != nil {
			return err
		}

		if replaceItems {
			if err := tx.Where("order_id = ?", order.ID).Delete(&model.OrderItem{}).Error; err != nil {
				return err
			}
			order.Items = positioned(order.ID, order.Items)
			if len(order.Items) > 0 {
				if err := tx.Create(&order.Items).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&model.Order{}).Where("id = ?", order.ID).
			Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
	})
	if err != nil {
		logWriteError("Failed to update order in database", err, map[string]interface{}{
			"id": order.ID,
		})
		return err
	}

	logger.Debug("Order updated in database", map[string]interface{}{
		"id": order.ID,
	})
	return nil
}

// Delete removes the order, its items and its details
func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	logger.Debug("Deleting order", map[string]interface{}{
		"id": id,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.First(&order, id).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&order).Error; err != nil {
			return err
		}
		return tx.Delete(&model.OrderDetails{}, order.OrderDetailsID).Error
	})
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to delete order", err, map[string]interface{}{
				"id": id,
			})
		}
		return err
	}

	logger.Debug("Order deleted", map[string]interface{}{
		"id": id,
	})
	return nil
}
