package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/lego-inventory-backend/internal/app/service"
	apperrors "github.com/ikkim/lego-inventory-backend/internal/errors"
	"github.com/ikkim/lego-inventory-backend/internal/middleware"
)

const ordersBodyMessage = "Invalid request body, expected array of orders"

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

func importResponse(result *service.ImportResult) gin.H {
	return gin.H{
		"success":       true,
		"message":       "Orders processed successfully",
		"createdCount":  result.CreatedCount,
		"skippedCount":  result.SkippedCount,
		"skippedOrders": result.SkippedOrders,
		"orders":        result.Orders,
	}
}

// CreateOrders imports a batch of {orderData, items}; known order ids are skipped
// POST /api/orders/new
func (ctrl *OrderController) CreateOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var raw []map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		_ = c.Error(invalidBody(c, err, ordersBodyMessage))
		return
	}
	if raw == nil {
		_ = c.Error(apperrors.BadRequest(apperrors.ValidationInvalidFormat, ordersBodyMessage))
		return
	}

	inputs, err := service.ParseOrderInputs(raw)
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := ctrl.orderService.ImportOrders(c.Request.Context(), inputs)
	if err != nil {
		_ = c.Error(err)
		return
	}

	log.Info("Order batch processed", map[string]interface{}{
		"created": result.CreatedCount,
		"skipped": result.SkippedCount,
	})

	c.JSON(http.StatusCreated, importResponse(result))
}

// ImportOrders imports an uploaded order export workbook
// POST /api/orders/import
func (ctrl *OrderController) ImportOrders(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(invalidBody(c, err, "An order workbook is required in the 'file' field"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(apperrors.Wrap(err, http.StatusBadRequest, apperrors.ImportInvalidFile, "Unable to read uploaded file"))
		return
	}
	defer file.Close()

	result, err := ctrl.orderService.ImportOrdersFromSpreadsheet(c.Request.Context(), file)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, importResponse(result))
}

// GetAllOrders returns every order with details and items
// GET /api/orders
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := ctrl.orderService.GetAllOrders(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  orders,
	})
}

// GetOrderByID returns one order
// GET /api/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	order, err := ctrl.orderService.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
	})
}

// UpdateOrder merges orderData and replaces items when given
// PUT /api/orders/:id
func (ctrl *OrderController) UpdateOrder(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var patch service.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		_ = c.Error(invalidBody(c, err, "Invalid order data"))
		return
	}

	order, err := ctrl.orderService.UpdateOrder(c.Request.Context(), id, patch)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order updated successfully",
		"order":   order,
	})
}

// DeleteOrder removes the order and its details
// DELETE /api/orders/:id
func (ctrl *OrderController) DeleteOrder(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := ctrl.orderService.DeleteOrder(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted successfully",
	})
}
